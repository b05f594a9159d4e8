package sim

import (
	"math"

	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// GridConfig groups lattice dimensions.
type GridConfig struct {
	Width  int // columns (must be > 0)
	Height int // rows (must be > 0)
}

// PopulationConfig groups initial population parameters.
type PopulationConfig struct {
	Initial           int     // agents placed at day 0; clamped to grid capacity
	PersisterFraction float64 // probability each initial agent starts as a persister
}

// PhenotypeConfig groups the daily phenotype-switch probabilities.
type PhenotypeConfig struct {
	ToPersister         float64 // replicating -> persister, only on days with a drug active
	ToReplicatingNoDrug float64 // persister -> replicating on drug-free days
	ToReplicatingDrug   float64 // persister -> replicating on dosing days
}

// TreatmentConfig groups the dosing schedule.
type TreatmentConfig struct {
	Drugs    []string // drug identifiers as given by the user; normalized by NewEngine
	StartDay int      // first dosing day (>= 0)
	Interval int      // days between doses (>= 1)
}

// Config is the full construction configuration of an Engine.
type Config struct {
	Grid            GridConfig
	Population      PopulationConfig
	Phenotype       PhenotypeConfig
	Treatment       TreatmentConfig
	Drugs           map[DrugID]DrugParams // catalog of known drugs; every agent tracks resistance to each
	ReplicationProb float64               // daily replication probability of a replicating agent
	Seed            *int64                // nil = derive from wall clock
	TraceLevel      trace.TraceLevel      // per-day record retention; "" = daily
}

// NewGridConfig creates a GridConfig.
func NewGridConfig(width, height int) GridConfig {
	return GridConfig{Width: width, Height: height}
}

// NewPopulationConfig creates a PopulationConfig.
func NewPopulationConfig(initial int, persisterFraction float64) PopulationConfig {
	return PopulationConfig{Initial: initial, PersisterFraction: persisterFraction}
}

// NewPhenotypeConfig creates a PhenotypeConfig.
func NewPhenotypeConfig(toPersister, toReplicatingNoDrug, toReplicatingDrug float64) PhenotypeConfig {
	return PhenotypeConfig{
		ToPersister:         toPersister,
		ToReplicatingNoDrug: toReplicatingNoDrug,
		ToReplicatingDrug:   toReplicatingDrug,
	}
}

// NewTreatmentConfig creates a TreatmentConfig.
func NewTreatmentConfig(drugs []string, startDay, interval int) TreatmentConfig {
	return TreatmentConfig{Drugs: drugs, StartDay: startDay, Interval: interval}
}

// baseGrowthRatePerHour is the maximal intracellular growth rate.
const baseGrowthRatePerHour = 0.033

// DefaultReplicationProb is the daily replication probability derived from
// the hourly growth rate: 1 - exp(-rate*24).
var DefaultReplicationProb = 1 - math.Exp(-baseGrowthRatePerHour*hoursPerDay)

// DefaultConfig returns the reference scenario: the four first-line drugs on a
// 250x250 grid with 200 founders, treatment daily from day 21.
func DefaultConfig() Config {
	return Config{
		Grid:            NewGridConfig(250, 250),
		Population:      NewPopulationConfig(200, 0.01),
		Phenotype:       NewPhenotypeConfig(0.001, 0.01, 0.0001),
		Treatment:       NewTreatmentConfig([]string{"RIF", "INH", "PZA", "EMB"}, 21, 1),
		Drugs:           defaultDrugCatalog(),
		ReplicationProb: DefaultReplicationProb,
		TraceLevel:      trace.TraceLevelDaily,
	}
}

// Validate checks every parameter range. It does not filter unknown drugs;
// that happens in NewEngine so the warning is emitted once per construction.
func (c *Config) Validate() error {
	if c.Grid.Width <= 0 {
		return configErrorf("grid.width", "must be positive, got %d", c.Grid.Width)
	}
	if c.Grid.Height <= 0 {
		return configErrorf("grid.height", "must be positive, got %d", c.Grid.Height)
	}
	if c.Population.Initial < 0 {
		return configErrorf("population.initial", "must be non-negative, got %d", c.Population.Initial)
	}
	if err := validateProbability("population.persister_fraction", c.Population.PersisterFraction); err != nil {
		return err
	}
	if err := validateProbability("phenotype.to_persister", c.Phenotype.ToPersister); err != nil {
		return err
	}
	if err := validateProbability("phenotype.to_replicating_no_drug", c.Phenotype.ToReplicatingNoDrug); err != nil {
		return err
	}
	if err := validateProbability("phenotype.to_replicating_drug", c.Phenotype.ToReplicatingDrug); err != nil {
		return err
	}
	if c.Treatment.StartDay < 0 {
		return configErrorf("treatment.start_day", "must be non-negative, got %d", c.Treatment.StartDay)
	}
	if c.Treatment.Interval < 1 {
		return configErrorf("treatment.interval", "must be at least 1, got %d", c.Treatment.Interval)
	}
	for _, tok := range c.Treatment.Drugs {
		if !drugIDPattern.MatchString(tok) {
			return configErrorf("treatment.drugs", "unparseable drug identifier %q", tok)
		}
	}
	for _, id := range sortedDrugIDs(c.Drugs) {
		if err := validateDrugParams(id, c.Drugs[id]); err != nil {
			return err
		}
	}
	if err := validateProbability("replication_prob", c.ReplicationProb); err != nil {
		return err
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return configErrorf("trace_level", "unknown level %q; want %q or %q", c.TraceLevel, trace.TraceLevelNone, trace.TraceLevelDaily)
	}
	return nil
}
