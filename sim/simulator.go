// sim/simulator.go
package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// Engine owns the grid, the living population and the day counter.
// It is single-threaded: one Step runs to completion before the next.
type Engine struct {
	cfg       Config
	key       SimulationKey
	rng       *rand.Rand
	grid      *SpatialGrid
	scheduler *TreatmentScheduler
	drugOrder []DrugID // catalog drugs, sorted; fixes the mutation draw order

	population []*Bacterium
	popIdx     map[AgentID]int
	nextID     AgentID

	day      int
	today    DayCounters
	env      Environment
	warnings []string

	Metrics *Metrics
	Trace   *trace.SimulationTrace
}

// NewEngine validates cfg, builds the grid and scheduler and places the
// initial population. On error no engine is returned.
//
// A nil cfg.Drugs selects the built-in catalog. Treatment drugs that are
// well-formed but unknown are dropped with a warning. An initial population
// larger than the grid is clamped to capacity with a warning.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Drugs == nil {
		cfg.Drugs = defaultDrugCatalog()
	} else {
		catalog := make(map[DrugID]DrugParams, len(cfg.Drugs))
		for id, p := range cfg.Drugs {
			catalog[id] = p
		}
		cfg.Drugs = catalog
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	regimen, err := normalizeDrugIDs(cfg.Treatment.Drugs, cfg.Drugs)
	if err != nil {
		return nil, err
	}

	key := keyFromClock()
	if cfg.Seed != nil {
		key = NewSimulationKey(*cfg.Seed)
	} else {
		logrus.Infof("no seed configured; using seed %d", int64(key))
	}

	e := &Engine{
		cfg:       cfg,
		key:       key,
		rng:       NewSimulationRNG(key),
		grid:      NewSpatialGrid(cfg.Grid.Width, cfg.Grid.Height),
		scheduler: NewTreatmentScheduler(cfg.Treatment.StartDay, cfg.Treatment.Interval, regimen),
		drugOrder: sortedDrugIDs(cfg.Drugs),
		popIdx:    make(map[AgentID]int),
		nextID:    1,
		Metrics:   NewMetrics(),
	}
	drugNames := make([]string, len(e.drugOrder))
	for i, d := range e.drugOrder {
		drugNames[i] = string(d)
	}
	level := cfg.TraceLevel
	if level == "" {
		level = trace.TraceLevelDaily
	}
	e.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: level, Drugs: drugNames})

	e.populate(cfg.Population)
	e.env = NewEnvironment(0, nil, cfg.Drugs)
	e.recordDay()
	return e, nil
}

// populate places the founders on distinct random cells.
func (e *Engine) populate(pc PopulationConfig) {
	n := pc.Initial
	if capacity := e.grid.Capacity(); n > capacity {
		msg := fmt.Sprintf("initial population %d exceeds grid capacity %d; clamping to %d", n, capacity, capacity)
		logrus.Warn(msg)
		e.warnings = append(e.warnings, msg)
		n = capacity
	}
	for i := 0; i < n; i++ {
		phenotype := Replicating
		if bernoulli(e.rng, pc.PersisterFraction) {
			phenotype = Persister
		}
		pos, ok := e.grid.RandomEmpty(e.rng)
		if !ok {
			// unreachable after clamping
			panic(fmt.Sprintf("populate: no empty cell for founder %d of %d", i, n))
		}
		e.addAgent(phenotype, NewResistanceProfile(), pos, 0)
	}
	e.Metrics.observePopulation(0, len(e.population))
}

// Step advances the simulation by one day:
//
//	a. build today's Environment from the scheduler
//	b. activate every agent alive at the start of the day once, in a fresh random order
//	c. advance the day counter
//
// Offspring born during the pass join the population but are not activated until tomorrow.
func (e *Engine) Step() {
	e.env = NewEnvironment(e.day, e.scheduler.ActiveDrugs(e.day), e.cfg.Drugs)
	e.today = DayCounters{}
	if e.env.AnyDrugActive() {
		e.Metrics.DosingDays++
	}

	order := make([]*Bacterium, len(e.population))
	copy(order, e.population)
	e.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, b := range order {
		if !b.alive {
			continue
		}
		e.tally(b.Step(e.env, e))
	}

	e.Metrics.add(e.today)
	e.day++
	e.Metrics.observePopulation(e.day, len(e.population))
	logrus.Debugf("[day %05d] drugs=%v living=%d births=%d deaths=%d blocked=%d",
		e.day, e.env.ActiveDrugs(), len(e.population), e.today.Births, e.today.Deaths, e.today.BlockedReplication)
	e.recordDay()
}

// Run steps the engine for days days. afterStep is called after every step
// and stops the run by returning true; a nil afterStep runs the full span.
// Returns the number of steps taken.
func (e *Engine) Run(days int, afterStep func(*Engine) bool) int {
	for i := 0; i < days; i++ {
		e.Step()
		if afterStep != nil && afterStep(e) {
			return i + 1
		}
	}
	return days
}

// Extinct is a stop condition for Run: the population is empty.
func Extinct(e *Engine) bool { return e.Living() == 0 }

func (e *Engine) tally(out StepOutcome) {
	if out.EnteredPersistence {
		e.today.EnteredPersistence++
	}
	if out.ExitedPersistence {
		e.today.ExitedPersistence++
	}
	if out.Killed {
		e.today.Deaths++
	}
	if out.Blocked {
		e.today.BlockedReplication++
	}
	if out.Offspring != nil {
		e.today.Births++
		for _, d := range out.Mutations {
			e.Metrics.Mutations[d]++
		}
	}
}

// addAgent creates an agent at pos. An occupied pos means the grid and the
// population disagree, which is unrecoverable.
func (e *Engine) addAgent(phenotype Phenotype, profile ResistanceProfile, pos Position, parent AgentID) *Bacterium {
	b := &Bacterium{
		ID:         e.nextID,
		Pos:        Unplaced,
		Phenotype:  phenotype,
		Resistance: profile,
		BornDay:    e.day,
		ParentID:   parent,
		alive:      true,
	}
	if err := e.grid.Place(b, pos); err != nil {
		panic(fmt.Errorf("invariant violated placing agent %d: %w", b.ID, err))
	}
	e.nextID++
	e.popIdx[b.ID] = len(e.population)
	e.population = append(e.population, b)
	return b
}

// removeAgent frees the agent's cell and drops it from the population.
func (e *Engine) removeAgent(b *Bacterium) {
	idx, ok := e.popIdx[b.ID]
	if !ok {
		return
	}
	e.grid.Remove(b)
	last := len(e.population) - 1
	moved := e.population[last]
	e.population[idx] = moved
	e.popIdx[moved.ID] = idx
	e.population = e.population[:last]
	delete(e.popIdx, b.ID)
	b.alive = false
}

// offspringCell picks where a child of b goes: b's own cell if it is free,
// otherwise a uniformly random free Moore neighbor. Returns false when none is free.
func (e *Engine) offspringCell(b *Bacterium) (Position, bool) {
	if e.grid.IsEmpty(b.Pos) {
		return b.Pos, true
	}
	free := e.grid.EmptyNeighbors(b.Pos)
	if len(free) == 0 {
		return Unplaced, false
	}
	return free[e.rng.Intn(len(free))], true
}
