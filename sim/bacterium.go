// Defines the Bacterium agent and its per-day state machine:
// phenotype switch -> kill evaluation -> replication with mutation.

package sim

import "fmt"

// AgentID identifies a bacterium for the lifetime of a run. IDs start at 1
// and are never reused.
type AgentID int64

// Phenotype is the non-heritable growth state of a bacterium.
// A single field makes "replicating and persister at once" unrepresentable.
type Phenotype int

const (
	Replicating Phenotype = iota
	Persister
)

func (p Phenotype) String() string {
	switch p {
	case Replicating:
		return "replicating"
	case Persister:
		return "persister"
	default:
		return fmt.Sprintf("Phenotype(%d)", int(p))
	}
}

// ResistanceProfile records per-drug genetic resistance. Flags only ever go
// from false to true: there is no operation that clears one.
type ResistanceProfile struct {
	resistant map[DrugID]bool
}

// NewResistanceProfile returns a profile resistant to exactly the given drugs.
func NewResistanceProfile(drugs ...DrugID) ResistanceProfile {
	p := ResistanceProfile{resistant: make(map[DrugID]bool, len(drugs))}
	for _, d := range drugs {
		p.resistant[d] = true
	}
	return p
}

// IsResistant reports whether the profile carries resistance to drug.
func (p ResistanceProfile) IsResistant(drug DrugID) bool {
	return p.resistant[drug]
}

// Count returns the number of drugs the profile is resistant to.
func (p ResistanceProfile) Count() int {
	return len(p.resistant)
}

// IsSusceptible reports whether the profile carries no resistance at all.
func (p ResistanceProfile) IsSusceptible() bool {
	return len(p.resistant) == 0
}

// IsMDR reports resistance to two or more drugs.
func (p ResistanceProfile) IsMDR() bool {
	return len(p.resistant) >= 2
}

// Drugs returns the drugs the profile is resistant to, sorted.
func (p ResistanceProfile) Drugs() []DrugID {
	return sortedDrugIDs(p.resistant)
}

// clone returns an independent copy so offspring mutations never touch the parent.
func (p ResistanceProfile) clone() ResistanceProfile {
	c := ResistanceProfile{resistant: make(map[DrugID]bool, len(p.resistant))}
	for d := range p.resistant {
		c.resistant[d] = true
	}
	return c
}

func (p *ResistanceProfile) markResistant(drug DrugID) {
	if p.resistant == nil {
		p.resistant = make(map[DrugID]bool)
	}
	p.resistant[drug] = true
}

// Bacterium is one individual of the population.
type Bacterium struct {
	ID         AgentID
	Pos        Position // Unplaced when not on the grid
	Phenotype  Phenotype
	Resistance ResistanceProfile
	BornDay    int // day of creation; 0 for the initial population
	ParentID   AgentID
	alive      bool
}

// Alive reports whether the agent is part of the living population.
func (b *Bacterium) Alive() bool { return b.alive }

// IsPersister is shorthand for Phenotype == Persister.
func (b *Bacterium) IsPersister() bool { return b.Phenotype == Persister }

// IsReplicating is shorthand for Phenotype == Replicating.
func (b *Bacterium) IsReplicating() bool { return b.Phenotype == Replicating }

// StepOutcome describes what happened to one agent during its activation.
type StepOutcome struct {
	EnteredPersistence bool
	ExitedPersistence  bool
	Killed             bool
	Offspring          *Bacterium // nil unless replication succeeded
	Mutations          []DrugID   // resistances newly acquired by Offspring
	Blocked            bool       // replication sampled but no free cell was available
}

// Step runs the agent's transitions for one day, strictly in order:
//  1. phenotype switch
//  2. kill evaluation (replicating agents only; persisters are tolerant)
//  3. replication (survivors that are replicating)
//
// A killed agent is removed from the grid and population immediately and does
// nothing else this day. A persister created in step 1 is exempt from step 2.
func (b *Bacterium) Step(env Environment, e *Engine) StepOutcome {
	var out StepOutcome
	rng := e.rng
	drugOn := env.AnyDrugActive()

	// 1. Phenotype switch.
	switch b.Phenotype {
	case Replicating:
		if drugOn && bernoulli(rng, e.cfg.Phenotype.ToPersister) {
			b.Phenotype = Persister
			out.EnteredPersistence = true
		}
	case Persister:
		p := e.cfg.Phenotype.ToReplicatingNoDrug
		if drugOn {
			p = e.cfg.Phenotype.ToReplicatingDrug
		}
		if bernoulli(rng, p) {
			b.Phenotype = Replicating
			out.ExitedPersistence = true
		}
	}

	if b.Phenotype != Replicating {
		return out
	}

	// 2. Kill evaluation.
	if killP := env.KillProbabilityFor(b.Resistance); killP > 0 && bernoulli(rng, killP) {
		e.removeAgent(b)
		out.Killed = true
		return out
	}

	// 3. Replication.
	if !bernoulli(rng, e.cfg.ReplicationProb) {
		return out
	}
	childProfile := b.Resistance.clone()
	for _, drug := range e.drugOrder {
		if b.Resistance.IsResistant(drug) {
			continue
		}
		if bernoulli(rng, e.cfg.Drugs[drug].MutationRate) {
			childProfile.markResistant(drug)
			out.Mutations = append(out.Mutations, drug)
		}
	}

	pos, ok := e.offspringCell(b)
	if !ok {
		out.Blocked = true
		out.Mutations = nil
		return out
	}
	out.Offspring = e.addAgent(Replicating, childProfile, pos, b.ID)
	return out
}
