package sim

import (
	"testing"
)

func int64Ptr(v int64) *int64 { return &v }

// alwaysKills is a drug whose kill probability rounds to exactly 1.0:
// rate = 1000 * 1/(1+1) = 500 and 1 - exp(-500) == 1 in float64.
var alwaysKills = DrugParams{KMax: 1000, EC50: 1, Hill: 1, Concentration: 1, MutationRate: 0}

// newTestConfig returns a small, fully deterministic configuration with no
// phenotype switching, no treatment and a single-drug catalog.
func newTestConfig(seed int64) Config {
	return Config{
		Grid:            NewGridConfig(10, 10),
		Population:      NewPopulationConfig(1, 0),
		Phenotype:       NewPhenotypeConfig(0, 0, 0),
		Treatment:       NewTreatmentConfig(nil, 0, 1),
		Drugs:           map[DrugID]DrugParams{Rifampicin: alwaysKills},
		ReplicationProb: 0,
		Seed:            int64Ptr(seed),
	}
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// onlyAgent returns the single living agent; fails the test otherwise.
func onlyAgent(t *testing.T, e *Engine) AgentView {
	t.Helper()
	agents := e.Agents()
	if len(agents) != 1 {
		t.Fatalf("expected exactly 1 agent, got %d", len(agents))
	}
	return agents[0]
}

// resistanceCounts returns the per-drug resistant counts in catalog order.
func resistanceCounts(e *Engine) []int {
	drugs := e.Drugs()
	out := make([]int, len(drugs))
	for i, d := range drugs {
		d := d
		out[i] = e.Count(func(a AgentView) bool { return a.Resistance.IsResistant(d) })
	}
	return out
}
