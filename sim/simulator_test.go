package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resistance-sim/resistance-sim/sim/internal/testutil"
	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// mixedConfig exercises every transition: switching, a lethal regimen from
// day 5, and mutation rates high enough to see resistance in a short run.
func mixedConfig(seed int64) Config {
	catalog := map[DrugID]DrugParams{
		Rifampicin: {KMax: 2, EC50: 1, Hill: 1, Concentration: 1, MutationRate: 0.05},
		Isoniazid:  {KMax: 1, EC50: 1, Hill: 2, Concentration: 1, MutationRate: 0.02},
	}
	return Config{
		Grid:            NewGridConfig(30, 30),
		Population:      NewPopulationConfig(40, 0.1),
		Phenotype:       NewPhenotypeConfig(0.05, 0.2, 0.05),
		Treatment:       NewTreatmentConfig([]string{"rif", "INH"}, 5, 2),
		Drugs:           catalog,
		ReplicationProb: 0.6,
		Seed:            int64Ptr(seed),
	}
}

func TestNewEngine_InitialState(t *testing.T) {
	e := mustEngine(t, mixedConfig(1))
	assert.Equal(t, 0, e.Day())
	assert.Equal(t, 40, e.Living())
	assert.Equal(t, 900, e.Capacity())
	assert.Equal(t, NewSimulationKey(1), e.Seed())
	assert.Equal(t, []DrugID{Isoniazid, Rifampicin}, e.Drugs())
	assert.Equal(t, []DrugID{Rifampicin, Isoniazid}, e.Regimen())
	assert.Empty(t, e.Warnings())
	require.NoError(t, e.CheckInvariants())

	// founders are distinct, in bounds, susceptible and born on day 0
	seen := make(map[Position]bool)
	for _, a := range e.Agents() {
		assert.False(t, seen[a.Pos], "two founders share %v", a.Pos)
		seen[a.Pos] = true
		assert.True(t, e.grid.InBounds(a.Pos))
		assert.True(t, a.Resistance.IsSusceptible())
		assert.Equal(t, 0, a.BornDay)
		assert.Equal(t, AgentID(0), a.ParentID)
	}
	require.Len(t, e.Trace.Days, 1)
	assert.Equal(t, 40, e.Trace.Days[0].Total)
}

func TestNewEngine_NilCatalogUsesDefaults(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Drugs = nil
	e := mustEngine(t, cfg)
	assert.Equal(t, KnownDrugs(), e.Drugs())
}

func TestNewEngine_DoesNotAliasCallerCatalog(t *testing.T) {
	cfg := newTestConfig(1)
	e := mustEngine(t, cfg)
	cfg.Drugs[Isoniazid] = alwaysKills
	assert.Equal(t, []DrugID{Rifampicin}, e.Drugs())
}

func TestNewEngine_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero interval", func(c *Config) { c.Treatment.Interval = 0 }, "treatment.interval"},
		{"unparseable drug token", func(c *Config) { c.Treatment.Drugs = []string{"R!F"} }, "treatment.drugs"},
		{"zero width", func(c *Config) { c.Grid.Width = 0 }, "grid.width"},
		{"negative founders", func(c *Config) { c.Population.Initial = -5 }, "population.initial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(1)
			tt.mutate(&cfg)
			e, err := NewEngine(cfg)
			assert.Nil(t, e)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewEngine_UnknownDrugFilteredWithWarning(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Treatment = NewTreatmentConfig([]string{"RIF", "XYZ"}, 0, 1)

	var e *Engine
	out := testutil.CaptureLogOutput(func() { e = mustEngine(t, cfg) })

	assert.Equal(t, []DrugID{Rifampicin}, e.Regimen())
	assert.Contains(t, out, "XYZ")
}

func TestNewEngine_OnlyUnknownDrugs_NoTreatment(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Treatment = NewTreatmentConfig([]string{"XYZ"}, 0, 1)
	cfg.ReplicationProb = 1
	var e *Engine
	testutil.CaptureLogOutput(func() { e = mustEngine(t, cfg) })
	e.Run(3, nil)
	assert.Equal(t, 0, e.Metrics.DosingDays)
	assert.Equal(t, 0, e.Metrics.Deaths)
}

func TestNewEngine_InitialPopulationClampedToCapacity(t *testing.T) {
	// GIVEN 10 founders for a 2x2 grid
	cfg := newTestConfig(1)
	cfg.Grid = NewGridConfig(2, 2)
	cfg.Population = NewPopulationConfig(10, 0)

	// WHEN the engine is built
	var e *Engine
	out := testutil.CaptureLogOutput(func() { e = mustEngine(t, cfg) })

	// THEN the grid is full and the clamp was reported
	assert.Equal(t, 4, e.Living())
	assert.Equal(t, 0, e.grid.EmptyCount())
	require.Len(t, e.Warnings(), 1)
	assert.Contains(t, e.Warnings()[0], "exceeds grid capacity")
	assert.Contains(t, out, "exceeds grid capacity")
}

func TestNewEngine_ZeroFounders(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Population = NewPopulationConfig(0, 0)
	e := mustEngine(t, cfg)
	assert.Equal(t, 0, e.Living())
	assert.Equal(t, 1, e.Run(10, Extinct))
}

func TestNewEngine_PersisterFractionExtremes(t *testing.T) {
	isPersister := func(a AgentView) bool { return a.Phenotype == Persister }

	cfg := newTestConfig(1)
	cfg.Population = NewPopulationConfig(50, 0)
	assert.Equal(t, 0, mustEngine(t, cfg).Count(isPersister))

	cfg.Population = NewPopulationConfig(50, 1)
	assert.Equal(t, 50, mustEngine(t, cfg).Count(isPersister))
}

func TestEngine_UnseededRunStillWorks(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Seed = nil
	e := mustEngine(t, cfg)
	e.Run(3, nil)
	assert.Equal(t, 3, e.Day())
}

func TestEngine_GrowthWithoutDrugsFillsGrid(t *testing.T) {
	// GIVEN one founder on a 10x10 grid, certain replication and no drugs
	cfg := newTestConfig(11)
	cfg.ReplicationProb = 1
	e := mustEngine(t, cfg)

	// WHEN 200 days pass
	prev := e.Living()
	for i := 0; i < 200; i++ {
		e.Step()
		// THEN the population never shrinks or exceeds capacity
		require.GreaterOrEqual(t, e.Living(), prev)
		require.LessOrEqual(t, e.Living(), 100)
		prev = e.Living()
	}
	// AND the grid ends full
	assert.Equal(t, 100, e.Living())
	assert.Equal(t, 0, e.Metrics.Deaths)
	assert.Positive(t, e.Metrics.BlockedReplication)
}

func TestEngine_OffspringNotActivatedOnBirthDay(t *testing.T) {
	cfg := newTestConfig(12)
	cfg.Grid = NewGridConfig(5, 5)
	cfg.ReplicationProb = 1
	e := mustEngine(t, cfg)

	e.Step()
	assert.Equal(t, 2, e.Living(), "only the founder replicates on day 1")
	e.Step()
	assert.Equal(t, 4, e.Living(), "founder and day-1 child replicate on day 2")
}

func TestEngine_Determinism_SameSeedSameRun(t *testing.T) {
	// GIVEN two engines with identical configuration and seed
	a := mustEngine(t, mixedConfig(42))
	b := mustEngine(t, mixedConfig(42))

	// WHEN both run in lockstep
	for i := 0; i < 40; i++ {
		a.Step()
		b.Step()
		// THEN every observable matches after every step
		require.Equal(t, a.Day(), b.Day())
		require.Equal(t, a.Living(), b.Living(), "day %d", a.Day())
		require.Equal(t, resistanceCounts(a), resistanceCounts(b), "day %d", a.Day())
	}
	assert.Equal(t, a.Trace.Days, b.Trace.Days)
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.Agents(), b.Agents())
}

func TestEngine_Determinism_DifferentSeedsDiverge(t *testing.T) {
	a := mustEngine(t, mixedConfig(1))
	b := mustEngine(t, mixedConfig(2))
	a.Run(30, nil)
	b.Run(30, nil)
	assert.NotEqual(t, a.Agents(), b.Agents())
}

func TestEngine_InvariantsHoldEveryStep(t *testing.T) {
	e := mustEngine(t, mixedConfig(7))
	for i := 0; i < 60; i++ {
		e.Step()
		require.NoError(t, e.CheckInvariants(), "day %d", e.Day())
		for _, a := range e.Agents() {
			require.Contains(t, []Phenotype{Replicating, Persister}, a.Phenotype)
		}
	}
}

func TestEngine_ResistanceIsMonotonicPerAgent(t *testing.T) {
	// GIVEN a run where resistance appears quickly
	e := mustEngine(t, mixedConfig(3))
	seen := make(map[AgentID][]DrugID)

	// WHEN tracking each agent across days
	for i := 0; i < 40; i++ {
		e.Step()
		for _, a := range e.Agents() {
			// THEN a flag once set is never cleared
			for _, d := range seen[a.ID] {
				require.True(t, a.Resistance.IsResistant(d), "agent %d lost %s on day %d", a.ID, d, e.Day())
			}
			seen[a.ID] = a.Resistance.Drugs()
		}
	}
	assert.Positive(t, e.Metrics.Mutations[Rifampicin]+e.Metrics.Mutations[Isoniazid])
}

func TestEngine_ResistantAgentSurvivesLethalDrug(t *testing.T) {
	// GIVEN a founder resistant to the only administered drug
	cfg := newTestConfig(13)
	cfg.Treatment = NewTreatmentConfig([]string{"RIF"}, 0, 1)
	e := mustEngine(t, cfg)
	founder := e.population[0]
	founder.Resistance = NewResistanceProfile(Rifampicin)

	// WHEN dosing every day
	e.Run(10, nil)

	// THEN it survives
	assert.Equal(t, 1, e.Living())
	assert.Equal(t, 0, e.Metrics.Deaths)
}

func TestEngine_ScheduleDrivesDosing(t *testing.T) {
	cfg := newTestConfig(14)
	cfg.Treatment = NewTreatmentConfig([]string{"RIF"}, 3, 4)
	cfg.Population = NewPopulationConfig(0, 0)
	e := mustEngine(t, cfg)
	e.Run(12, nil)

	var dosed []int
	for _, rec := range e.Trace.Days[1:] {
		if rec.Dosed {
			// the record at Day d describes the step that ran on scheduler day d-1
			dosed = append(dosed, rec.Day-1)
			assert.Equal(t, []string{"RIF"}, rec.ActiveDrugs)
		} else {
			assert.Empty(t, rec.ActiveDrugs)
		}
	}
	assert.Equal(t, []int{3, 7, 11}, dosed)
	assert.Equal(t, 3, e.Metrics.DosingDays)
	assert.True(t, e.IsDosingDay(7))
	assert.False(t, e.IsDosingDay(8))
}

func TestEngine_RunStopsOnExtinction(t *testing.T) {
	cfg := newTestConfig(15)
	cfg.Population = NewPopulationConfig(5, 0)
	cfg.Treatment = NewTreatmentConfig([]string{"RIF"}, 2, 1)
	e := mustEngine(t, cfg)

	steps := e.Run(100, Extinct)

	// drugs start on scheduler day 2, which is the third step
	assert.Equal(t, 3, steps)
	assert.Equal(t, 3, e.Day())
	assert.Equal(t, 0, e.Living())
	assert.Len(t, e.Trace.Days, 4)
}

func TestEngine_TraceHasOneRecordPerDay(t *testing.T) {
	e := mustEngine(t, mixedConfig(5))
	e.Run(25, nil)
	require.Len(t, e.Trace.Days, 26)
	for i, rec := range e.Trace.Days {
		assert.Equal(t, i, rec.Day)
		assert.Equal(t, rec.Replicating+rec.Persister, rec.Total)
		assert.LessOrEqual(t, rec.Susceptible, rec.Replicating)
		assert.Len(t, rec.Resistant, 2)
	}
	last, ok := e.Trace.Last()
	require.True(t, ok)
	assert.Equal(t, e.Living(), last.Total)
	assert.Equal(t, resistanceCounts(e), []int{last.ResistantTo("INH"), last.ResistantTo("RIF")})
}

func TestEngine_OccupantAt(t *testing.T) {
	e := mustEngine(t, newTestConfig(16))
	a := onlyAgent(t, e)
	got, ok := e.OccupantAt(a.Pos)
	require.True(t, ok)
	assert.Equal(t, a, got)

	empty, ok := e.grid.RandomEmpty(e.rng)
	require.True(t, ok)
	_, ok = e.OccupantAt(empty)
	assert.False(t, ok)
}

func TestEngine_CountPredicate(t *testing.T) {
	cfg := newTestConfig(17)
	cfg.Population = NewPopulationConfig(20, 0.5)
	e := mustEngine(t, cfg)
	persisters := e.Count(func(a AgentView) bool { return a.Phenotype == Persister })
	replicating := e.Count(func(a AgentView) bool { return a.Phenotype == Replicating })
	assert.Equal(t, 20, persisters+replicating)
	assert.Equal(t, 20, e.Count(func(AgentView) bool { return true }))
}

func TestEngine_AddAgentOnOccupiedCellPanics(t *testing.T) {
	// GIVEN an engine whose single founder occupies a cell
	e := mustEngine(t, newTestConfig(18))
	pos := onlyAgent(t, e).Pos

	// WHEN another agent is forced onto that cell
	defer func() {
		// THEN the engine panics with the placement error wrapped
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var occ *OccupiedCellError
		require.True(t, errors.As(err, &occ))
		assert.Equal(t, pos, occ.Pos)
	}()
	e.addAgent(Replicating, NewResistanceProfile(), pos, 0)
}

func TestEngine_RemoveAgentKeepsIndexConsistent(t *testing.T) {
	cfg := newTestConfig(19)
	cfg.Population = NewPopulationConfig(10, 0)
	e := mustEngine(t, cfg)
	victim := e.population[3]

	e.removeAgent(victim)
	e.removeAgent(victim) // second removal is a no-op

	assert.Equal(t, 9, e.Living())
	assert.False(t, victim.Alive())
	assert.Equal(t, Unplaced, victim.Pos)
	require.NoError(t, e.CheckInvariants())
}

func TestEngine_TraceLevelNone_KeepsNoRecords(t *testing.T) {
	// GIVEN an engine with per-day recording disabled
	cfg := mixedConfig(20)
	cfg.TraceLevel = trace.TraceLevelNone
	e := mustEngine(t, cfg)

	// WHEN it runs
	e.Run(5, nil)

	// THEN the trace stays empty but the census is still available
	assert.Empty(t, e.Trace.Days)
	_, ok := e.Trace.Last()
	assert.False(t, ok)
	census := e.Census()
	assert.Equal(t, 5, census.Day)
	assert.Equal(t, e.Living(), census.Total)
}

func TestEngine_CensusMatchesLastRecord(t *testing.T) {
	e := mustEngine(t, mixedConfig(21))
	e.Run(12, nil)
	last, ok := e.Trace.Last()
	require.True(t, ok)
	assert.Equal(t, last, e.Census())
}

func TestEngine_NextDosingDay(t *testing.T) {
	cfg := newTestConfig(22)
	cfg.Treatment = NewTreatmentConfig([]string{"RIF"}, 21, 10)
	e := mustEngine(t, cfg)
	assert.Equal(t, 21, e.NextDosingDay(0))
	assert.Equal(t, 31, e.NextDosingDay(22))
	assert.True(t, e.IsDosingDay(e.NextDosingDay(e.Day())))
}

func TestEngine_RunCallsAfterStepEveryDay(t *testing.T) {
	e := mustEngine(t, newTestConfig(23))
	var seen []int
	steps := e.Run(4, func(e *Engine) bool {
		seen = append(seen, e.Day())
		return false
	})
	assert.Equal(t, 4, steps)
	assert.Equal(t, []int{1, 2, 3, 4}, seen)
}
