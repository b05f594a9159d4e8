package sim

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DrugID identifies a drug by its upper-case abbreviation (e.g. "RIF").
type DrugID string

// DrugParams holds the fixed pharmacodynamic and genetic constants of one drug.
// Concentration is a constant "on" level while the drug is active; there is no decay curve.
type DrugParams struct {
	KMax          float64 `yaml:"k_max"`         // maximal daily kill rate
	EC50          float64 `yaml:"ec50"`          // concentration producing half-maximal effect
	Hill          float64 `yaml:"hill"`          // Hill coefficient (curve steepness)
	Concentration float64 `yaml:"concentration"` // active concentration on a dosing day
	MutationRate  float64 `yaml:"mutation_rate"` // per-replication probability of acquiring resistance
}

// Built-in drugs of the first-line tuberculosis regimen.
const (
	Rifampicin   DrugID = "RIF"
	Isoniazid    DrugID = "INH"
	Pyrazinamide DrugID = "PZA"
	Ethambutol   DrugID = "EMB"
)

// hoursPerDay converts hourly rate constants into daily ones.
const hoursPerDay = 24

// defaultDrugCatalog returns the built-in drug constants. Kill rates are
// expressed per hour in the literature and scaled to per-day here.
func defaultDrugCatalog() map[DrugID]DrugParams {
	return map[DrugID]DrugParams{
		Rifampicin:   {KMax: 0.055 * hoursPerDay, EC50: 18.4, Hill: 1.0, Concentration: 50.0, MutationRate: 3.3e-6},
		Isoniazid:    {KMax: 0.041 * hoursPerDay, EC50: 32.1, Hill: 1.0, Concentration: 50.0, MutationRate: 3.2e-7},
		Pyrazinamide: {KMax: 0.043 * hoursPerDay, EC50: 45.5e6, Hill: 1.0, Concentration: 60000.0, MutationRate: 1e-5},
		Ethambutol:   {KMax: 0.053 * hoursPerDay, EC50: 79.5, Hill: 1.0, Concentration: 100.0, MutationRate: 6.4e-7},
	}
}

// KnownDrugs returns the built-in drug catalog sorted by identifier.
func KnownDrugs() []DrugID {
	return sortedDrugIDs(defaultDrugCatalog())
}

// DefaultDrugParams returns the built-in constants for id, if it is a known drug.
func DefaultDrugParams(id DrugID) (DrugParams, bool) {
	p, ok := defaultDrugCatalog()[id]
	return p, ok
}

func sortedDrugIDs[V any](m map[DrugID]V) []DrugID {
	ids := make([]DrugID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var drugIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ParseDrugList turns a free-form list ("RIF inh, PZA") into catalog drug identifiers.
//
// Tokens are separated by spaces or commas and compared case-insensitively.
// A token that is not a well-formed identifier is a *ConfigurationError.
// Well-formed tokens absent from catalog are filtered out with a warning.
// Duplicates are collapsed; the result preserves first-seen order.
func ParseDrugList(input string, catalog map[DrugID]DrugParams) ([]DrugID, error) {
	tokens := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	return normalizeDrugIDs(tokens, catalog)
}

func normalizeDrugIDs(tokens []string, catalog map[DrugID]DrugParams) ([]DrugID, error) {
	seen := make(map[DrugID]bool, len(tokens))
	out := make([]DrugID, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if !drugIDPattern.MatchString(tok) {
			return nil, configErrorf("treatment.drugs", "unparseable drug identifier %q", tok)
		}
		id := DrugID(strings.ToUpper(tok))
		if _, ok := catalog[id]; !ok {
			logrus.Warnf("unknown drug %q ignored; known drugs: %v", tok, sortedDrugIDs(catalog))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func validateDrugParams(id DrugID, p DrugParams) error {
	prefix := "drugs." + string(id)
	if !drugIDPattern.MatchString(string(id)) || strings.ToUpper(string(id)) != string(id) {
		return configErrorf(prefix, "drug identifier must be upper-case alphanumeric")
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"k_max", p.KMax},
		{"ec50", p.EC50},
		{"hill", p.Hill},
		{"concentration", p.Concentration},
	} {
		if err := validateFinitePositive(prefix+"."+f.name, f.val); err != nil {
			return err
		}
	}
	return validateProbability(prefix+".mutation_rate", p.MutationRate)
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return configErrorf(name, "must be a finite number, got %f", val)
	}
	if val <= 0 {
		return configErrorf(name, "must be positive, got %f", val)
	}
	return nil
}

func validateProbability(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return configErrorf(name, "must be a probability in [0, 1], got %f", val)
	}
	return nil
}
