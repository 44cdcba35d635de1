package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/leomayn/planner/internal/crm"
	"github.com/leomayn/planner/internal/planner"
)

var controlChars = regexp.MustCompile(`[\x00-\x09\x0B\x0C\x0E-\x1F\x7F]`)

const maxFreeText = 200

// sanitiseFreeText strips control characters and truncates user-supplied
// prose before it is embedded in a prompt.
func sanitiseFreeText(input string) string {
	cleaned := controlChars.ReplaceAllString(input, "")
	if len(cleaned) > maxFreeText {
		cleaned = strings.ToValidUTF8(cleaned[:maxFreeText], "")
	}
	return cleaned
}

// wrapUserContext wraps user text in delimiters instructing the model to
// treat it as descriptive context only.
func wrapUserContext(label, text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf(`<USER_CONTEXT label=%q>%s</USER_CONTEXT>`, label, sanitiseFreeText(text))
}

func recoveryTierLabel(rate float64) string {
	switch {
	case rate >= 0.75:
		return "High (75%): largely data entry and reconciliation, most automatable"
	case rate >= 0.50:
		return "Medium (50%): AI assists significantly, human judgment at key decision points"
	default:
		return "Low (25%): capture is automatable, action and follow-through still need people"
	}
}

// buildSystemPrompt assembles the methodology, voice rules, archetype
// context, and output contract for the narrative model.
func buildSystemPrompt(cat *planner.Catalogue, top []planner.RankedArchetype, companyContext string) string {
	var archetypeContext strings.Builder
	for _, ranked := range top {
		a := cat.Archetype(ranked.ID)
		if a == nil {
			continue
		}
		fmt.Fprintf(&archetypeContext, "### %s\nDescription: %s\nPain signals: %s\nPrerequisites: %s\n\n",
			a.Name, a.Description,
			strings.Join(a.PainSignals, "; "),
			strings.Join(a.Prerequisites, "; "))
	}

	personalisation := ""
	if companyContext != "" {
		personalisation = "\n## Company personalisation\nUse the provided company context to reference their specific services in the situation summary and make currentState descriptions feel specific to their work. Do not fabricate details. Only use what is provided.\n"
	}

	return `## Confidence calibration

Everything you know about this prospect comes from a structured questionnaire. When describing their current situation, use probabilistic framing: "from what you have described", "the data suggests". When recommending workflows, stay confident. When presenting the business case, always "estimated" and "directional", never a forecast.

You are Leomayn's diagnostic engine. You produce personalised AI deployment reports for operations leaders in professional services firms.

## Methodology

Understand and fix the work before applying AI to scale it. Automating a broken process produces faster broken output. Every recommendation addresses the workflow, not the tool. Name invisible work specifically using the prospect's language. Distinguish velocity gains (existing work faster) from capability gains (new things possible). Frame recommendations as freeing capacity for higher-value work.

## Diagnostic conditions

For each recommended workflow, rate impact, complexity, and learning value as "green", "amber", or "red". Do not use checkbox language. Ratings must vary across the three workflows.

Impact: green when a direct pain signal matches the workflow's area and the team is 31+; amber for cross-cutting signal or smaller teams; red when no clear signal connects.
Complexity: green when AI adoption is partial or higher and the tech environment is integrated or higher; amber when adoption is individual or systems are disconnected; red when adoption is not-started and the environment is basic.
Learning value: green when adoption is early and the workflow involves structured collaboration or process redesign; amber for partial adoption or automation with some transferable discipline; red when adoption is embedded and the workflow is mechanical automation only.

## Voice rules
- UK English only (prioritise, organisation, programme, centre)
- Confident, no hedging, no hype
- Short sentences, paragraphs of 2-3 sentences
- Never fabricate statistics
- Never use em dashes
- Do not use: "leverage", "transform", "seamless", "synergies", "game-changer", "cutting-edge"
- Use the prospect's name at least twice, once in the situation summary and once in the next steps
- The report should read as if a consultant wrote it after a conversation

## Guardrails
- Never recommend "getting your data sorted" as step one
- Never position AI as a headcount reduction opportunity
- Never promise transformation or suggest full automation of client-facing decisions
- Never imply the client must wait until conditions are perfect

## Top 3 workflow archetypes for this prospect
` + archetypeContext.String() + personalisation + `
## Output format
Return ONLY valid JSON matching this exact structure. No markdown, no code fences, no commentary outside the JSON:

{
  "situationSummary": "5-8 sentences reflecting their situation",
  "priorityMapIntro": "1-2 sentences connecting the recommendations to their inputs",
  "workflows": [
    {
      "archetypeId": "string",
      "name": "string",
      "whyThisMatters": "2-3 sentences",
      "impactPotential": "high|medium|low (must vary across the three workflows)",
      "implementationComplexity": "high|medium|low (must vary across the three workflows)",
      "threeConditionsCheck": { "impact": "green|amber|red", "complexity": "green|amber|red", "learning": "green|amber|red" },
      "currentState": "2-3 sentences",
      "futureState": "2-3 sentences",
      "considerations": "2-3 sentences",
      "prerequisites": ["list of prerequisites"],
      "pitfalls": ["common pitfalls for this workflow"]
    }
  ],
  "quickWins": ["zero-cost discovery action for this week"],
  "readiness": {
    "strengths": ["what is working for them"],
    "gaps": ["where they need to build foundations"]
  },
  "nextSteps": ["4-6 concrete decisions and actions"]
}

workflows must contain exactly 3 items matching the archetypes provided. threeConditionsCheck values must be "green", "amber", or "red", not booleans.`
}

// buildUserPrompt lays out the prospect's answers, the scoring output, and
// presentation guidance keyed off the score gaps.
func buildUserPrompt(
	cat *planner.Catalogue,
	q *planner.QualificationData,
	d *planner.DiagnosticData,
	sizing []planner.SizingEntry,
	top []planner.RankedArchetype,
	bc *planner.BusinessCase,
	allScores map[string]float64,
	companyContext string,
) string {
	var painPoints strings.Builder
	for _, p := range d.PainPoints {
		fmt.Fprintf(&painPoints, "  - %s (symptom: %s)\n", p.Area, p.Symptom)
	}

	var scored strings.Builder
	for _, a := range top {
		rec := cat.Archetype(a.ID)
		tier := "Medium (50%)"
		if rec != nil {
			tier = recoveryTierLabel(rec.RecoveryRate)
		}
		fmt.Fprintf(&scored, "  - %s: composite %.1f (signal %.1f, goal %.1f, feasibility %+.1f, foundation %+.1f), recovery tier: %s\n",
			a.Name, a.CompositeScore, a.SignalScore, a.GoalScore, a.FeasibilityModifier, a.FoundationModifier, tier)
		for _, m := range a.MatchedSignals {
			fmt.Fprintf(&scored, "      matched signal: %s/%s (weight %.1f)\n", m.Area, m.Symptom, m.Weight)
		}
	}

	type idScore struct {
		id    string
		score float64
	}
	ranked := make([]idScore, 0, len(allScores))
	for id, s := range allScores {
		ranked = append(ranked, idScore{id, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	gap12Framing := "Tight race: frame as two equally strong starting points"
	if len(top) >= 2 {
		switch gap := top[0].CompositeScore - top[1].CompositeScore; {
		case gap >= 5:
			gap12Framing = "Large gap: present #1 with confidence as the clearest starting point"
		case gap >= 2:
			gap12Framing = "Moderate gap: present in order, distinct recommendations"
		}
	}

	var sizingSection strings.Builder
	for _, s := range sizing {
		fmt.Fprintf(&sizingSection, "  - %s: people %s, weekly hours %s, cost per person %s\n",
			s.ArchetypeID, s.PeopleInvolved, s.WeeklyHours, s.CostPerPerson)
		if ctxText := wrapUserContext("sizing-note", s.FreeText); ctxText != "" {
			sizingSection.WriteString("    " + ctxText + "\n")
		}
	}

	contextSection := ""
	if companyContext != "" {
		contextSection = "\n## Company context (from their website)\n" + wrapUserContext("company-website", companyContext) + "\n"
	}

	return fmt.Sprintf(`## Prospect
Name: %s
Company: %s
Role: %s
Firm type: %s
Team size: %s
Strategic focus: %s (primary), %s (secondary)
Billable split: %.0f%% client-facing

## Pain points
%s
## Foundations
Process knowledge: %s
Data foundations: %s
AI adoption: %s
Tech environment: %s

## Scoring output (top 3)
%s
## Presentation guidance
%s

## Sizing
%s
## Outline business case (already calculated, do not restate the numbers as your own)
Total annual hours: %.0f
Total annual cost: %s
Estimated recovery: %s to %s
%s
Produce the report JSON now.`,
		q.Name, q.Company, q.DisplayRole(),
		d.FirmType, d.TeamSize,
		d.StrategicFocus.Primary, d.StrategicFocus.Secondary,
		d.BillableSplit,
		painPoints.String(),
		d.ProcessKnowledge, d.DataFoundations, d.AIAdoption, d.TechEnvironment,
		scored.String(),
		gap12Framing,
		sizingSection.String(),
		bc.TotalAnnualHours,
		crm.FormatGBP(bc.TotalAnnualCost),
		crm.FormatGBP(bc.ConservativeRecovery.Low), crm.FormatGBP(bc.ConservativeRecovery.High),
		contextSection,
	)
}
