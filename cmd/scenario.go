package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	sim "github.com/resistance-sim/resistance-sim/sim"
	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// Scenario is a YAML overlay on sim.DefaultConfig.
// Nil pointer fields mean "not set in YAML"; they leave the default in place.
type Scenario struct {
	Grid            GridSpec            `yaml:"grid"`
	Population      PopulationSpec      `yaml:"population"`
	Phenotype       PhenotypeSpec       `yaml:"phenotype"`
	Treatment       TreatmentSpec       `yaml:"treatment"`
	Drugs           map[string]DrugSpec `yaml:"drugs"`
	ReplicationProb *float64            `yaml:"replication_prob"`
	Seed            *int64              `yaml:"seed"`
	Days            *int                `yaml:"days"`
	TraceLevel      *string             `yaml:"trace_level"`
}

type GridSpec struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type PopulationSpec struct {
	Initial           *int     `yaml:"initial"`
	PersisterFraction *float64 `yaml:"persister_fraction"`
}

type PhenotypeSpec struct {
	ToPersister         *float64 `yaml:"to_persister"`
	ToReplicatingNoDrug *float64 `yaml:"to_replicating_no_drug"`
	ToReplicatingDrug   *float64 `yaml:"to_replicating_drug"`
}

// TreatmentSpec holds the dosing schedule. A nil Drugs list keeps the default
// regimen; an explicit empty list means no treatment.
type TreatmentSpec struct {
	Drugs    []string `yaml:"drugs"`
	StartDay *int     `yaml:"start_day"`
	Interval *int     `yaml:"interval"`
}

// DrugSpec overrides individual parameters of a catalog drug. Keys naming a
// drug outside the built-in catalog add it; all its fields must then be set.
type DrugSpec struct {
	KMax          *float64 `yaml:"k_max"`
	EC50          *float64 `yaml:"ec50"`
	Hill          *float64 `yaml:"hill"`
	Concentration *float64 `yaml:"concentration"`
	MutationRate  *float64 `yaml:"mutation_rate"`
}

// LoadScenario reads a scenario file. Unknown keys are errors so typos never
// silently fall back to defaults. An empty file is a valid empty scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &s, nil
}

// Apply overlays every set field onto cfg.
func (s *Scenario) Apply(cfg *sim.Config) {
	setInt(&cfg.Grid.Width, s.Grid.Width)
	setInt(&cfg.Grid.Height, s.Grid.Height)
	setInt(&cfg.Population.Initial, s.Population.Initial)
	setFloat(&cfg.Population.PersisterFraction, s.Population.PersisterFraction)
	setFloat(&cfg.Phenotype.ToPersister, s.Phenotype.ToPersister)
	setFloat(&cfg.Phenotype.ToReplicatingNoDrug, s.Phenotype.ToReplicatingNoDrug)
	setFloat(&cfg.Phenotype.ToReplicatingDrug, s.Phenotype.ToReplicatingDrug)
	if s.Treatment.Drugs != nil {
		cfg.Treatment.Drugs = append([]string(nil), s.Treatment.Drugs...)
	}
	setInt(&cfg.Treatment.StartDay, s.Treatment.StartDay)
	setInt(&cfg.Treatment.Interval, s.Treatment.Interval)
	setFloat(&cfg.ReplicationProb, s.ReplicationProb)
	if s.Seed != nil {
		seed := *s.Seed
		cfg.Seed = &seed
	}
	if s.TraceLevel != nil {
		cfg.TraceLevel = trace.TraceLevel(*s.TraceLevel)
	}

	if len(s.Drugs) > 0 && cfg.Drugs == nil {
		cfg.Drugs = make(map[sim.DrugID]sim.DrugParams)
	}
	for key, spec := range s.Drugs {
		id := sim.DrugID(strings.ToUpper(key))
		p := cfg.Drugs[id]
		setFloat(&p.KMax, spec.KMax)
		setFloat(&p.EC50, spec.EC50)
		setFloat(&p.Hill, spec.Hill)
		setFloat(&p.Concentration, spec.Concentration)
		setFloat(&p.MutationRate, spec.MutationRate)
		cfg.Drugs[id] = p
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
