package sim

import (
	"fmt"

	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// AgentView is a read-only copy of an agent's state for reporting collaborators.
// Resistance has no exported mutators, so sharing it does not expose engine state.
type AgentView struct {
	ID         AgentID
	Pos        Position
	Phenotype  Phenotype
	Resistance ResistanceProfile
	BornDay    int
	ParentID   AgentID // 0 for founders
}

func viewOf(b *Bacterium) AgentView {
	return AgentView{ID: b.ID, Pos: b.Pos, Phenotype: b.Phenotype, Resistance: b.Resistance, BornDay: b.BornDay, ParentID: b.ParentID}
}

// Day returns the number of completed steps.
func (e *Engine) Day() int { return e.day }

// Seed returns the key the run's random stream was seeded with.
func (e *Engine) Seed() SimulationKey { return e.key }

// Living returns the population size.
func (e *Engine) Living() int { return len(e.population) }

// Width returns the grid width.
func (e *Engine) Width() int { return e.grid.Width() }

// Height returns the grid height.
func (e *Engine) Height() int { return e.grid.Height() }

// Capacity returns the grid capacity.
func (e *Engine) Capacity() int { return e.grid.Capacity() }

// Drugs returns the catalog drugs every agent tracks resistance to, sorted.
func (e *Engine) Drugs() []DrugID {
	out := make([]DrugID, len(e.drugOrder))
	copy(out, e.drugOrder)
	return out
}

// Regimen returns the drugs administered on dosing days.
func (e *Engine) Regimen() []DrugID { return e.scheduler.Repertoire() }

// IsDosingDay reports whether drugs are administered on day.
func (e *Engine) IsDosingDay(day int) bool { return e.scheduler.IsDosingDay(day) }

// NextDosingDay returns the first dosing day >= day. The result is only a
// dosing day if the regimen is non-empty.
func (e *Engine) NextDosingDay(day int) int { return e.scheduler.NextDosingDay(day) }

// Warnings returns the non-fatal conditions recovered during construction.
func (e *Engine) Warnings() []string {
	out := make([]string, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// Count returns the number of living agents matching pred.
func (e *Engine) Count(pred func(AgentView) bool) int {
	n := 0
	for _, b := range e.population {
		if pred(viewOf(b)) {
			n++
		}
	}
	return n
}

// Agents returns views of every living agent in population order.
func (e *Engine) Agents() []AgentView {
	out := make([]AgentView, len(e.population))
	for i, b := range e.population {
		out[i] = viewOf(b)
	}
	return out
}

// OccupantAt returns the agent in the cell at pos, if any.
func (e *Engine) OccupantAt(pos Position) (AgentView, bool) {
	b := e.grid.At(pos)
	if b == nil {
		return AgentView{}, false
	}
	return viewOf(b), true
}

// CheckInvariants verifies the population/grid bijection: every living agent
// sits in the cell recorded on it and the occupied cell count equals the
// population size.
func (e *Engine) CheckInvariants() error {
	if occ := e.grid.OccupiedCount(); occ != len(e.population) {
		return fmt.Errorf("population %d != occupied cells %d", len(e.population), occ)
	}
	if len(e.population) > e.grid.Capacity() {
		return fmt.Errorf("population %d exceeds capacity %d", len(e.population), e.grid.Capacity())
	}
	for i, b := range e.population {
		if !b.alive {
			return fmt.Errorf("dead agent %d still in population", b.ID)
		}
		if e.grid.At(b.Pos) != b {
			return fmt.Errorf("agent %d not found at its position %v", b.ID, b.Pos)
		}
		if e.popIdx[b.ID] != i {
			return fmt.Errorf("agent %d index %d, recorded %d", b.ID, i, e.popIdx[b.ID])
		}
	}
	return nil
}

// Census returns the population counts as of the last completed step, with
// that step's dosing and event counters. It does not depend on the trace level.
func (e *Engine) Census() trace.DayRecord {
	rec := trace.DayRecord{
		Day:                e.day,
		Dosed:              e.env.AnyDrugActive(),
		Total:              len(e.population),
		Resistant:          make(map[string]int, len(e.drugOrder)),
		Births:             e.today.Births,
		Deaths:             e.today.Deaths,
		BlockedReplication: e.today.BlockedReplication,
		EnteredPersistence: e.today.EnteredPersistence,
		ExitedPersistence:  e.today.ExitedPersistence,
	}
	for _, d := range e.env.ActiveDrugs() {
		rec.ActiveDrugs = append(rec.ActiveDrugs, string(d))
	}
	for _, d := range e.drugOrder {
		rec.Resistant[string(d)] = 0
	}
	for _, b := range e.population {
		switch b.Phenotype {
		case Persister:
			rec.Persister++
		case Replicating:
			rec.Replicating++
			if b.Resistance.IsSusceptible() {
				rec.Susceptible++
			}
		}
		for _, d := range e.drugOrder {
			if b.Resistance.IsResistant(d) {
				rec.Resistant[string(d)]++
			}
		}
		if b.Resistance.IsMDR() {
			rec.MDR++
		}
	}
	return rec
}

// recordDay appends the end-of-day census to the trace.
func (e *Engine) recordDay() {
	e.Trace.RecordDay(e.Census())
}
