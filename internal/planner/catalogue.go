package planner

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed catalogue.json
var defaultCatalogueJSON []byte

//go:embed catalogue_schema.json
var catalogueSchemaJSON []byte

// SignalEntry is one weighted (area, symptom) pair in an archetype's matrix.
type SignalEntry struct {
	Area    string  `json:"area"`
	Symptom string  `json:"symptom"`
	Weight  float64 `json:"weight"`
}

// FoundationProfile declares how strongly an archetype depends on documented
// process knowledge and reliable data. Values are Low, Medium, or High.
type FoundationProfile struct {
	KnowledgeDependency string `json:"knowledgeDependency"`
	DataDependency      string `json:"dataDependency"`
}

// FeasibilityRequirements are the minimum maturity levels an archetype needs
// to be a sensible starting point.
type FeasibilityRequirements struct {
	MinAIAdoption int `json:"minAiAdoption"`
	MinTechLevel  int `json:"minTechLevel"`
}

// Archetype describes one workflow category a firm can be scored against.
// Catalogue order is the explicit tie-break priority for ranking.
type Archetype struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	PainSignals   []string                `json:"painSignals"`
	Prerequisites []string                `json:"prerequisites"`
	GoalAlignment map[string]float64      `json:"goalAlignment"`
	SignalMatrix  []SignalEntry           `json:"signalMatrix"`
	Foundation    FoundationProfile       `json:"foundationProfile"`
	RecoveryRate  float64                 `json:"recoveryRate"`
	Feasibility   FeasibilityRequirements `json:"feasibilityRequirements"`
}

// LevelOption maps an answer value to a numeric maturity level.
type LevelOption struct {
	Value string `json:"value"`
	Level int    `json:"level"`
}

// MidpointOption maps a bucketed answer value to its numeric midpoint.
type MidpointOption struct {
	Value    string  `json:"value"`
	Midpoint float64 `json:"midpoint"`
}

// Weights holds the scoring and business-case constants.
type Weights struct {
	GoalPrimary         float64 `json:"goalPrimary"`
	GoalSecondary       float64 `json:"goalSecondary"`
	FeasibilityBonus    float64 `json:"feasibilityBonus"`
	FeasibilityPenalty  float64 `json:"feasibilityPenalty"`
	FoundationPenalty   float64 `json:"foundationPenalty"`
	SecondSymptomFactor float64 `json:"secondSymptomFactor"`
	WorkingWeeksPerYear float64 `json:"workingWeeksPerYear"`
	HoursPerWeek        float64 `json:"hoursPerWeek"`
	EmployerCostUplift  float64 `json:"employerCostUplift"`
	RecoverySpread      float64 `json:"recoverySpread"`
	RecoveryFloor       float64 `json:"recoveryFloor"`
	RecoveryCeiling     float64 `json:"recoveryCeiling"`
}

// Catalogue is the full scoring configuration: the archetype taxonomy, answer
// level tables, sizing midpoints, and weighting constants. It is supplied as
// configuration rather than compiled in, with an embedded default.
type Catalogue struct {
	Archetypes             []Archetype      `json:"archetypes"`
	AIAdoptionLevels       []LevelOption    `json:"aiAdoptionLevels"`
	TechEnvironmentLevels  []LevelOption    `json:"techEnvironmentLevels"`
	ProcessKnowledgeLevels []LevelOption    `json:"processKnowledgeLevels"`
	DataFoundationsLevels  []LevelOption    `json:"dataFoundationsLevels"`
	DependencyLevels       map[string]int   `json:"dependencyLevels"`
	PeopleInvolved         []MidpointOption `json:"peopleInvolved"`
	WeeklyHours            []MidpointOption `json:"weeklyHours"`
	CostPerPerson          []MidpointOption `json:"costPerPerson"`
	Weights                Weights          `json:"weights"`
}

var (
	defaultCatalogue     *Catalogue
	defaultCatalogueOnce sync.Once
	defaultCatalogueErr  error
)

// DefaultCatalogue returns the embedded catalogue, parsed and schema-checked once.
func DefaultCatalogue() (*Catalogue, error) {
	defaultCatalogueOnce.Do(func() {
		defaultCatalogue, defaultCatalogueErr = parseCatalogue(defaultCatalogueJSON)
	})
	return defaultCatalogue, defaultCatalogueErr
}

// LoadCatalogue reads and validates a catalogue JSON file.
func LoadCatalogue(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file %s: %w", path, err)
	}
	cat, err := parseCatalogue(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalogue file %s: %w", path, err)
	}
	return cat, nil
}

func parseCatalogue(data []byte) (*Catalogue, error) {
	if err := ValidateCatalogueJSON(data); err != nil {
		return nil, err
	}
	var cat Catalogue
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue JSON: %w", err)
	}
	return &cat, nil
}

// ValidateCatalogueJSON checks raw catalogue JSON against the embedded schema.
func ValidateCatalogueJSON(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(catalogueSchemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("catalogue schema validation failed to run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	fe := make(FieldErrors, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fe[field] = desc.Description()
	}
	return fe
}

// Archetype returns the archetype with the given ID, or nil.
func (c *Catalogue) Archetype(id string) *Archetype {
	for i := range c.Archetypes {
		if c.Archetypes[i].ID == id {
			return &c.Archetypes[i]
		}
	}
	return nil
}

// neutralLevel is the contribution used for missing or unrecognised answers,
// so absent data neither depresses nor inflates a score.
const neutralLevel = 1

func levelFor(value string, options []LevelOption) int {
	for _, o := range options {
		if o.Value == value {
			return o.Level
		}
	}
	return neutralLevel
}

// AIAdoptionLevel maps an AI-adoption answer to its maturity level.
func (c *Catalogue) AIAdoptionLevel(value string) int {
	return levelFor(value, c.AIAdoptionLevels)
}

// TechLevel maps a tech-environment answer to its maturity level.
func (c *Catalogue) TechLevel(value string) int {
	return levelFor(value, c.TechEnvironmentLevels)
}

// ProcessKnowledgeLevel maps a process-knowledge answer to its readiness level.
func (c *Catalogue) ProcessKnowledgeLevel(value string) int {
	return levelFor(value, c.ProcessKnowledgeLevels)
}

// DataFoundationsLevel maps a data-foundations answer to its readiness level.
func (c *Catalogue) DataFoundationsLevel(value string) int {
	return levelFor(value, c.DataFoundationsLevels)
}

// Midpoint resolves a bucketed answer to its numeric midpoint, 0 if unknown.
func Midpoint(value string, options []MidpointOption) float64 {
	for _, o := range options {
		if o.Value == value {
			return o.Midpoint
		}
	}
	return 0
}

// RecoveryRange returns the recovery percentage range for an archetype,
// centred on its recovery rate and clamped to the configured floor/ceiling.
func (c *Catalogue) RecoveryRange(archetypeID string) Range {
	rate := 0.5
	if a := c.Archetype(archetypeID); a != nil {
		rate = a.RecoveryRate
	}
	w := c.Weights
	low := rate - w.RecoverySpread
	if low < w.RecoveryFloor {
		low = w.RecoveryFloor
	}
	high := rate + w.RecoverySpread
	if high > w.RecoveryCeiling {
		high = w.RecoveryCeiling
	}
	return Range{Low: low, High: high}
}
