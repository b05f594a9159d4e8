package sim

// TreatmentScheduler decides which drugs are administered on a given day.
//
// Day t is a dosing day iff t >= StartDay and (t - StartDay) is a multiple of
// Interval. On a dosing day the whole repertoire is on for that day only;
// every other day all drugs are off. There is no carryover between days.
type TreatmentScheduler struct {
	startDay   int
	interval   int
	repertoire []DrugID
}

// NewTreatmentScheduler builds a scheduler. Callers validate the arguments
// through Config.Validate; interval < 1 is treated as 1.
func NewTreatmentScheduler(startDay, interval int, repertoire []DrugID) *TreatmentScheduler {
	if interval < 1 {
		interval = 1
	}
	drugs := make([]DrugID, len(repertoire))
	copy(drugs, repertoire)
	return &TreatmentScheduler{startDay: startDay, interval: interval, repertoire: drugs}
}

// IsDosingDay reports whether drugs are administered on day.
func (s *TreatmentScheduler) IsDosingDay(day int) bool {
	return day >= s.startDay && (day-s.startDay)%s.interval == 0
}

// ActiveDrugs returns the drugs administered on day, or nil on a non-dosing day.
// The returned slice is a fresh copy.
func (s *TreatmentScheduler) ActiveDrugs(day int) []DrugID {
	if !s.IsDosingDay(day) || len(s.repertoire) == 0 {
		return nil
	}
	out := make([]DrugID, len(s.repertoire))
	copy(out, s.repertoire)
	return out
}

// Repertoire returns the configured drugs in configuration order.
func (s *TreatmentScheduler) Repertoire() []DrugID {
	out := make([]DrugID, len(s.repertoire))
	copy(out, s.repertoire)
	return out
}

// NextDosingDay returns the first dosing day >= day.
func (s *TreatmentScheduler) NextDosingDay(day int) int {
	if day <= s.startDay {
		return s.startDay
	}
	offset := (day - s.startDay) % s.interval
	if offset == 0 {
		return day
	}
	return day + s.interval - offset
}
