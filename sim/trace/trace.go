package trace

// TraceLevel controls how much per-day data is retained.
type TraceLevel string

const (
	// TraceLevelNone disables per-day recording (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDaily records one DayRecord per simulated day.
	TraceLevelDaily TraceLevel = "daily"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelDaily: true,
	"":              true, // empty defaults to daily
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	Drugs []string // drug columns, in reporting order
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level != TraceLevelNone
}

// SimulationTrace collects per-day population records during a run.
type SimulationTrace struct {
	Config TraceConfig
	Days   []DayRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	drugs := make([]string, len(config.Drugs))
	copy(drugs, config.Drugs)
	config.Drugs = drugs
	return &SimulationTrace{
		Config: config,
		Days:   make([]DayRecord, 0),
	}
}

// RecordDay appends a day record. No-op when tracing is disabled.
func (st *SimulationTrace) RecordDay(record DayRecord) {
	if !st.Config.Enabled() {
		return
	}
	st.Days = append(st.Days, record)
}

// Last returns the most recent record.
func (st *SimulationTrace) Last() (DayRecord, bool) {
	if st == nil || len(st.Days) == 0 {
		return DayRecord{}, false
	}
	return st.Days[len(st.Days)-1], true
}
