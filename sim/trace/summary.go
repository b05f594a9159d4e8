package trace

import (
	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Days             int // number of recorded days after the initial record
	InitialTotal     int
	FinalTotal       int
	PeakTotal        int
	PeakDay          int
	ExtinctionDay    int // first day with zero population; -1 if never
	MeanTotal        float64
	StdDevTotal      float64
	TotalBirths      int
	TotalDeaths      int
	DosingDays       int
	FirstResistance  map[string]int // drug -> first day with a resistant agent; absent if never
	FinalResistant   map[string]int
	FinalMDR         int
	FinalPersister   int
	FinalSusceptible int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields, ExtinctionDay = -1).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ExtinctionDay:   -1,
		FirstResistance: make(map[string]int),
		FinalResistant:  make(map[string]int),
	}
	if st == nil || len(st.Days) == 0 {
		return summary
	}

	totals := make([]float64, len(st.Days))
	for i, d := range st.Days {
		totals[i] = float64(d.Total)
		if d.Total > summary.PeakTotal {
			summary.PeakTotal = d.Total
			summary.PeakDay = d.Day
		}
		if d.Total == 0 && summary.ExtinctionDay < 0 {
			summary.ExtinctionDay = d.Day
		}
		summary.TotalBirths += d.Births
		summary.TotalDeaths += d.Deaths
		if d.Dosed {
			summary.DosingDays++
		}
		for drug, n := range d.Resistant {
			if n == 0 {
				continue
			}
			if _, seen := summary.FirstResistance[drug]; !seen {
				summary.FirstResistance[drug] = d.Day
			}
		}
	}

	first, last := st.Days[0], st.Days[len(st.Days)-1]
	summary.Days = last.Day - first.Day
	summary.InitialTotal = first.Total
	summary.FinalTotal = last.Total
	summary.FinalMDR = last.MDR
	summary.FinalPersister = last.Persister
	summary.FinalSusceptible = last.Susceptible
	for drug, n := range last.Resistant {
		summary.FinalResistant[drug] = n
	}
	summary.MeanTotal, summary.StdDevTotal = stat.MeanStdDev(totals, nil)
	if len(totals) == 1 {
		summary.StdDevTotal = 0
	}
	return summary
}
