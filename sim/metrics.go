// Tracks run-wide counters such as births, deaths and acquired resistances.

package sim

import "fmt"

// DayCounters holds the event counts of a single day.
type DayCounters struct {
	Births             int
	Deaths             int
	BlockedReplication int
	EnteredPersistence int
	ExitedPersistence  int
}

// Metrics aggregates statistics about the run for final reporting.
type Metrics struct {
	Births             int // offspring placed on the grid
	Deaths             int // agents killed by drugs
	BlockedReplication int // replications that found no free cell
	EnteredPersistence int
	ExitedPersistence  int
	DosingDays         int
	PeakPopulation     int
	PeakDay            int

	Mutations map[DrugID]int // drug -> offspring that acquired resistance to it
}

// NewMetrics returns zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{Mutations: make(map[DrugID]int)}
}

func (m *Metrics) add(day DayCounters) {
	m.Births += day.Births
	m.Deaths += day.Deaths
	m.BlockedReplication += day.BlockedReplication
	m.EnteredPersistence += day.EnteredPersistence
	m.ExitedPersistence += day.ExitedPersistence
}

func (m *Metrics) observePopulation(day, n int) {
	if n > m.PeakPopulation {
		m.PeakPopulation = n
		m.PeakDay = day
	}
}

// Print displays aggregated metrics at the end of the run.
func (m *Metrics) Print(day int, living int) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Days Simulated       : %d\n", day)
	fmt.Printf("Dosing Days          : %d\n", m.DosingDays)
	fmt.Printf("Final Population     : %d\n", living)
	fmt.Printf("Peak Population      : %d (day %d)\n", m.PeakPopulation, m.PeakDay)
	fmt.Printf("Births               : %d\n", m.Births)
	fmt.Printf("Drug Kills           : %d\n", m.Deaths)
	fmt.Printf("Blocked Replications : %d\n", m.BlockedReplication)
	fmt.Printf("Persister Entries    : %d\n", m.EnteredPersistence)
	fmt.Printf("Persister Exits      : %d\n", m.ExitedPersistence)
	for _, d := range sortedDrugIDs(m.Mutations) {
		fmt.Printf("Mutations %-10s : %d\n", string(d), m.Mutations[d])
	}
}
