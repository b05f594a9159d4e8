package sim

// Environment is the immutable per-day view of treatment conditions handed to
// every agent. It is built once at the start of a day, so no agent can observe
// drug flags changing mid-day.
type Environment struct {
	Day    int
	active []DrugID
	params map[DrugID]DrugParams
}

// NewEnvironment builds the snapshot for day from the drugs active that day.
// Only params for active drugs are retained.
func NewEnvironment(day int, active []DrugID, catalog map[DrugID]DrugParams) Environment {
	env := Environment{
		Day:    day,
		active: make([]DrugID, 0, len(active)),
		params: make(map[DrugID]DrugParams, len(active)),
	}
	for _, id := range active {
		p, ok := catalog[id]
		if !ok {
			continue
		}
		env.active = append(env.active, id)
		env.params[id] = p
	}
	return env
}

// AnyDrugActive reports whether at least one drug is on today.
func (e Environment) AnyDrugActive() bool { return len(e.active) > 0 }

// ActiveDrugs returns a copy of today's active drugs.
func (e Environment) ActiveDrugs() []DrugID {
	out := make([]DrugID, len(e.active))
	copy(out, e.active)
	return out
}

// KillProbabilityFor returns the daily kill probability for a replicating agent
// with the given resistance profile: the maximal rate over active drugs the
// agent is not resistant to, mapped through KillProbability.
func (e Environment) KillProbabilityFor(profile ResistanceProfile) float64 {
	var exposed []DrugParams
	for _, id := range e.active {
		if profile.IsResistant(id) {
			continue
		}
		exposed = append(exposed, e.params[id])
	}
	if len(exposed) == 0 {
		return 0
	}
	return KillProbability(MaxKillRate(exposed))
}
