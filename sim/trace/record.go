// Package trace provides per-day population records for a resistance simulation run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// DayRecord captures the population at the end of one simulated day.
//
// Day is the clock value after the step (the initial population is Day 0).
// Dosed and ActiveDrugs describe the treatment applied during the step that
// ended at Day, i.e. scheduler day Day-1.
type DayRecord struct {
	Day         int
	Dosed       bool
	ActiveDrugs []string

	Total       int
	Replicating int
	Persister   int
	Susceptible int            // replicating and resistant to nothing
	Resistant   map[string]int // drug -> agents resistant to it
	MDR         int            // agents resistant to two or more drugs

	Births             int
	Deaths             int
	BlockedReplication int // replications that found no free cell
	EnteredPersistence int
	ExitedPersistence  int
}

// ResistantTo returns the resistant count for drug (0 when absent).
func (r DayRecord) ResistantTo(drug string) int {
	return r.Resistant[drug]
}
