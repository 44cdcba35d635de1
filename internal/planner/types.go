// Package planner provides the data model for the AI deployment planner:
// qualification and diagnostic inputs, scoring results, and generated reports.
package planner

import (
	"time"
)

// QualificationData is the lead-qualification form input. It is used once to
// compute qualification and forwarded to the CRM; it is only persisted as part
// of a StoredReport.
type QualificationData struct {
	Name           string `json:"name" validate:"required,min=1,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Company        string `json:"company" validate:"required,min=1,max=100"`
	CompanyWebsite string `json:"companyWebsite,omitempty" validate:"max=200"`
	Role           string `json:"role" validate:"required,oneof=founder-ceo c-suite director-vp head-of manager other"`
	RoleOther      string `json:"roleOther,omitempty" validate:"max=100"`
	Turnover       string `json:"turnover" validate:"required,oneof=under-1m 1m-5m 5m-10m 10m-20m 20m-50m 50m-plus prefer-not-to-say"`
	ConsentGiven   bool   `json:"consentGiven" validate:"required,eq=true"`
}

// Qualified reports whether the lead proceeds to the full diagnostic flow.
func (q *QualificationData) Qualified() bool {
	return q.Turnover != "under-1m"
}

// DisplayRole returns the free-text role when "other" was selected.
func (q *QualificationData) DisplayRole() string {
	if q.RoleOther != "" {
		return q.RoleOther
	}
	return q.Role
}

// PainPoint pairs a workflow area with the symptom observed there.
type PainPoint struct {
	Area    string `json:"area" validate:"required"`
	Symptom string `json:"symptom" validate:"required"`
}

// StrategicFocus holds the primary and secondary business goals.
type StrategicFocus struct {
	Primary   string `json:"primary" validate:"required"`
	Secondary string `json:"secondary" validate:"required"`
}

// DiagnosticData is the full diagnostic survey input to the scoring engine.
type DiagnosticData struct {
	FirmType         string         `json:"firmType" validate:"required"`
	TeamSize         string         `json:"teamSize" validate:"required"`
	StrategicFocus   StrategicFocus `json:"strategicFocus"`
	PainPoints       []PainPoint    `json:"painPoints" validate:"min=2,max=6,dive"`
	AIAdoption       string         `json:"aiAdoption" validate:"required"`
	TechEnvironment  string         `json:"techEnvironment" validate:"required"`
	ProcessKnowledge string         `json:"processKnowledge" validate:"required"`
	DataFoundations  string         `json:"dataFoundations" validate:"required"`
	BillableSplit    float64        `json:"billableSplit" validate:"min=0,max=100"`
}

// SizingEntry quantifies one priority workflow for the business case.
type SizingEntry struct {
	ArchetypeID    string `json:"archetypeId" validate:"required"`
	PeopleInvolved string `json:"peopleInvolved" validate:"required"`
	WeeklyHours    string `json:"weeklyHours" validate:"required"`
	CostPerPerson  string `json:"costPerPerson" validate:"required"`
	FreeText       string `json:"freeText,omitempty" validate:"max=500"`
}

// MatchedSignal records an (area, symptom) pair that contributed to an
// archetype's signal score, with the effective weight applied.
type MatchedSignal struct {
	Area    string  `json:"area"`
	Symptom string  `json:"symptom"`
	Weight  float64 `json:"weight"`
}

// RankedArchetype is one archetype's scored fit against the diagnostic.
type RankedArchetype struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Score               float64         `json:"score"` // normalised 0-100
	CompositeScore      float64         `json:"compositeScore"`
	SignalScore         float64         `json:"signalScore"`
	GoalScore           float64         `json:"goalScore"`
	FeasibilityModifier float64         `json:"feasibilityModifier"`
	FoundationModifier  float64         `json:"foundationModifier"`
	MatchedSignals      []MatchedSignal `json:"matchedSignals"`
}

// ScoringResult is the pure output of the scoring engine.
type ScoringResult struct {
	TopArchetypes []RankedArchetype  `json:"topArchetypes"`
	AllScores     map[string]float64 `json:"allScores"` // normalised 0-100 per archetype ID
}

// Range is a low/high pair used for recovery estimates.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// AreaBusinessCase holds the annualised figures for one sized workflow.
type AreaBusinessCase struct {
	ArchetypeID   string  `json:"archetypeId"`
	AnnualHours   float64 `json:"annualHours"`
	AnnualCost    float64 `json:"annualCost"`
	RecoveryRange Range   `json:"recoveryRange"`
}

// BusinessCase aggregates the sized workflows into headline figures.
type BusinessCase struct {
	PerArea              []AreaBusinessCase `json:"perArea"`
	TotalAnnualHours     float64            `json:"totalAnnualHours"`
	TotalAnnualCost      float64            `json:"totalAnnualCost"`
	ConservativeRecovery Range              `json:"conservativeRecovery"`
	WeeklyHoursRecovered Range              `json:"weeklyHoursRecovered"`
	RevenueFraming       bool               `json:"revenueFraming"`
}

// ConditionLevel is a traffic-light rating used in the three-conditions check.
type ConditionLevel string

// Condition levels.
const (
	ConditionGreen ConditionLevel = "green"
	ConditionAmber ConditionLevel = "amber"
	ConditionRed   ConditionLevel = "red"
)

// ConditionsCheck rates a workflow on impact, complexity, and learning value.
type ConditionsCheck struct {
	Impact     ConditionLevel `json:"impact"`
	Complexity ConditionLevel `json:"complexity"`
	Learning   ConditionLevel `json:"learning"`
}

// WorkflowReport is the recommendation content for one priority workflow.
type WorkflowReport struct {
	ArchetypeID              string          `json:"archetypeId"`
	Name                     string          `json:"name"`
	WhyThisMatters           string          `json:"whyThisMatters"`
	ImpactPotential          string          `json:"impactPotential"`
	ImplementationComplexity string          `json:"implementationComplexity"`
	ThreeConditionsCheck     ConditionsCheck `json:"threeConditionsCheck"`
	CurrentState             string          `json:"currentState"`
	FutureState              string          `json:"futureState"`
	Considerations           string          `json:"considerations"`
	Prerequisites            []string        `json:"prerequisites"`
	Pitfalls                 []string        `json:"pitfalls"`
}

// Readiness lists organisational strengths and gaps for AI deployment.
type Readiness struct {
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// GeneratedReport is the assembled report. Produced once per generation and
// immutable thereafter.
type GeneratedReport struct {
	ID               string           `json:"id"`
	SituationSummary string           `json:"situationSummary"`
	PriorityMapIntro string           `json:"priorityMapIntro,omitempty"`
	Workflows        []WorkflowReport `json:"workflows"`
	BusinessCase     BusinessCase     `json:"businessCase"`
	QuickWins        []string         `json:"quickWins,omitempty"`
	Readiness        Readiness        `json:"readiness"`
	NextSteps        []string         `json:"nextSteps"`
	CompanyContext   string           `json:"companyContext,omitempty"`
	GeneratedAt      string           `json:"generatedAt"`
}

// StoredReport is the persisted record, keyed by the opaque report identifier.
// The identifier is the sole access credential: anyone holding the UUID can
// fetch the rendered PDF until the record expires. This is a deliberate design
// choice for a low-sensitivity, time-boxed artifact.
type StoredReport struct {
	Report         GeneratedReport    `json:"report"`
	Email          string             `json:"email"`
	Company        string             `json:"company"`
	Name           string             `json:"name"`
	Qualification  *QualificationData `json:"qualification,omitempty"`
	Diagnostic     *DiagnosticData    `json:"diagnostic,omitempty"`
	CompanyContext string             `json:"companyContext,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}
