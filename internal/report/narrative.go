package report

import (
	"fmt"
	"strings"

	"github.com/leomayn/planner/internal/planner"
)

// teamSizeAtLeast31 reports whether the bucketed team size answer means 31
// or more people.
func teamSizeAtLeast31(teamSize string) bool {
	switch teamSize {
	case "31-75", "76-150", "150-plus":
		return true
	}
	return false
}

// fallbackNarrative assembles a complete report from the catalogue and the
// scoring output alone. It is used whenever no narrative model is configured
// or the model's output fails validation, so report generation never depends
// on an upstream AI service being available.
func fallbackNarrative(
	cat *planner.Catalogue,
	q *planner.QualificationData,
	d *planner.DiagnosticData,
	top []planner.RankedArchetype,
) *planner.GeneratedReport {
	rep := &planner.GeneratedReport{
		SituationSummary: fallbackSummary(q, d, top),
		PriorityMapIntro: fmt.Sprintf(
			"Based on the pain points you selected, three workflows stand out for %s. They are ordered by how strongly your answers point at them.",
			q.Company),
		Workflows: make([]planner.WorkflowReport, 0, len(top)),
		Readiness: fallbackReadiness(d),
		NextSteps: fallbackNextSteps(q, top),
	}

	aiLevel := cat.AIAdoptionLevel(d.AIAdoption)
	techLevel := cat.TechLevel(d.TechEnvironment)

	for _, ranked := range top {
		a := cat.Archetype(ranked.ID)
		if a == nil {
			continue
		}
		rep.Workflows = append(rep.Workflows, fallbackWorkflow(a, &ranked, d, aiLevel, techLevel))
	}

	if hasFoundationGap(top) {
		rep.QuickWins = []string{
			"Map one of the recommended workflows end to end on a whiteboard with the people who run it",
			"Interview two or three team members about where the workflow slows down and why",
			"Run a retrospective on the last three pieces of work that hit handoff problems",
		}
	}
	return rep
}

func fallbackSummary(q *planner.QualificationData, d *planner.DiagnosticData, top []planner.RankedArchetype) string {
	areas := make([]string, 0, len(d.PainPoints))
	seen := map[string]bool{}
	for _, p := range d.PainPoints {
		if !seen[p.Area] {
			seen[p.Area] = true
			areas = append(areas, p.Area)
		}
	}

	lead := ""
	if len(top) > 0 {
		lead = fmt.Sprintf(" The strongest signal points at %s.", strings.ToLower(top[0].Name))
	}
	return fmt.Sprintf(
		"%s, from what you have described, %s is a %s with a team of %s, and the friction you reported concentrates in %s.%s The recommendations below are directional: they show where your answers suggest the work should start, not a finished plan.",
		q.Name, q.Company, d.FirmType, d.TeamSize, strings.Join(areas, ", "), lead)
}

func fallbackWorkflow(a *planner.Archetype, ranked *planner.RankedArchetype, d *planner.DiagnosticData, aiLevel, techLevel int) planner.WorkflowReport {
	conditions := planner.ConditionsCheck{
		Impact:     impactCondition(ranked, d),
		Complexity: complexityCondition(aiLevel, techLevel),
		Learning:   learningCondition(aiLevel),
	}

	why := fmt.Sprintf("Your answers matched %d signal(s) against this workflow.", len(ranked.MatchedSignals))
	if len(ranked.MatchedSignals) > 0 {
		pairs := make([]string, 0, len(ranked.MatchedSignals))
		for _, m := range ranked.MatchedSignals {
			pairs = append(pairs, m.Area+"/"+m.Symptom)
		}
		why = fmt.Sprintf("The symptoms you reported in %s all route through this workflow, which is why it ranks where it does.", strings.Join(pairs, ", "))
	}

	current := "From what you have described, this work runs on individual effort and ad-hoc coordination."
	if len(a.PainSignals) > 0 {
		current = fmt.Sprintf("The pattern we would expect from your answers: %s.", strings.ToLower(strings.TrimSuffix(a.PainSignals[0], ".")))
	}

	return planner.WorkflowReport{
		ArchetypeID:              a.ID,
		Name:                     a.Name,
		WhyThisMatters:           why,
		ImpactPotential:          levelFromCondition(conditions.Impact),
		ImplementationComplexity: complexityLevel(conditions.Complexity),
		ThreeConditionsCheck:     conditions,
		CurrentState:             current,
		FutureState:              fmt.Sprintf("%s The aim is to free that time for client work rather than eliminate roles.", a.Description),
		Considerations:           considerationFor(ranked),
		Prerequisites:            a.Prerequisites,
		Pitfalls: []string{
			"Automating the workflow before the underlying process is agreed",
			"Rolling out to the whole team before one owner has proven the redesign",
		},
	}
}

func impactCondition(ranked *planner.RankedArchetype, d *planner.DiagnosticData) planner.ConditionLevel {
	if len(ranked.MatchedSignals) == 0 {
		return planner.ConditionRed
	}
	if teamSizeAtLeast31(d.TeamSize) {
		return planner.ConditionGreen
	}
	return planner.ConditionAmber
}

func complexityCondition(aiLevel, techLevel int) planner.ConditionLevel {
	if aiLevel >= 2 && techLevel >= 2 {
		return planner.ConditionGreen
	}
	if aiLevel == 0 && techLevel == 0 {
		return planner.ConditionRed
	}
	return planner.ConditionAmber
}

func learningCondition(aiLevel int) planner.ConditionLevel {
	switch {
	case aiLevel <= 1:
		return planner.ConditionGreen
	case aiLevel == 2:
		return planner.ConditionAmber
	default:
		return planner.ConditionRed
	}
}

func levelFromCondition(c planner.ConditionLevel) string {
	switch c {
	case planner.ConditionGreen:
		return "high"
	case planner.ConditionAmber:
		return "medium"
	default:
		return "low"
	}
}

func complexityLevel(c planner.ConditionLevel) string {
	// A green complexity condition means the ground is prepared, so the
	// implementation itself is the easy kind.
	switch c {
	case planner.ConditionGreen:
		return "low"
	case planner.ConditionAmber:
		return "medium"
	default:
		return "high"
	}
}

func considerationFor(ranked *planner.RankedArchetype) string {
	if ranked.FoundationModifier < 0 {
		return "For this workflow to deliver full value you will need to close the process knowledge or data gaps your answers flagged. That is where the work starts, not a reason to wait."
	}
	return "Your foundations look ready for this workflow. The main decision is who owns the redesign and how much of their week it gets."
}

func fallbackReadiness(d *planner.DiagnosticData) planner.Readiness {
	var r planner.Readiness

	switch d.ProcessKnowledge {
	case "well-documented":
		r.Strengths = append(r.Strengths, "Your processes are documented, which shortens the path from diagnosis to redesign.")
	case "partially-documented":
		r.Strengths = append(r.Strengths, "Partial process documentation gives redesign work a head start.")
	default:
		r.Gaps = append(r.Gaps, "Process knowledge is largely undocumented; capturing it is an early, low-cost step.")
	}

	switch d.DataFoundations {
	case "strong":
		r.Strengths = append(r.Strengths, "Strong data foundations mean automation can trust the numbers it reads.")
	case "mixed":
		r.Strengths = append(r.Strengths, "Your data foundations are workable for a first deployment.")
	default:
		r.Gaps = append(r.Gaps, "Data foundations need attention; this improves through the engagement, it is not a prerequisite to it.")
	}

	switch d.AIAdoption {
	case "embedded", "partial":
		r.Strengths = append(r.Strengths, "The team already works with AI tools, so adoption is about direction rather than persuasion.")
	default:
		r.Gaps = append(r.Gaps, "AI adoption is early; the first workflow doubles as the team's structured introduction.")
	}

	if len(r.Strengths) == 0 {
		r.Strengths = append(r.Strengths, "You know where the friction is, which is the scarce ingredient.")
	}
	if len(r.Gaps) == 0 {
		r.Gaps = append(r.Gaps, "No structural gaps surfaced; the constraint will be ownership and focus.")
	}
	return r
}

func fallbackNextSteps(q *planner.QualificationData, top []planner.RankedArchetype) []string {
	steps := []string{
		"Agree which of the three workflows to start with and name a single owner",
	}
	if len(top) > 0 {
		steps = append(steps, fmt.Sprintf("Walk the current %s process with the people who run it and write down every handoff", strings.ToLower(top[0].Name)))
	}
	steps = append(steps,
		"Decide what a successful first quarter looks like in hours recovered, not tools deployed",
		fmt.Sprintf("%s, book a working session to pressure-test this plan against what the questionnaire could not see", q.Name),
	)
	return steps
}

func hasFoundationGap(top []planner.RankedArchetype) bool {
	for _, a := range top {
		if a.FoundationModifier < 0 {
			return true
		}
	}
	return false
}
