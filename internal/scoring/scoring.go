// Package scoring ranks workflow archetypes against a diagnostic survey and
// builds the annualised business case. All functions are pure: the same
// catalogue and inputs always produce the same output.
package scoring

import (
	"math"
	"sort"

	"github.com/leomayn/planner/internal/planner"
)

// Engine scores diagnostics against a catalogue. The catalogue carries all
// weights, so alternative weightings are supplied by loading a different
// catalogue rather than by changing code.
type Engine struct {
	cat *planner.Catalogue
}

// NewEngine returns an engine bound to the given catalogue.
func NewEngine(cat *planner.Catalogue) *Engine {
	return &Engine{cat: cat}
}

// Score ranks every archetype in the catalogue against the diagnostic and
// returns the top three plus normalised scores for all. Ties on composite
// score resolve in catalogue order.
func (e *Engine) Score(d *planner.DiagnosticData) planner.ScoringResult {
	aiLevel := e.cat.AIAdoptionLevel(d.AIAdoption)
	techLevel := e.cat.TechLevel(d.TechEnvironment)

	allScores := make(map[string]float64, len(e.cat.Archetypes))
	scored := make([]planner.RankedArchetype, 0, len(e.cat.Archetypes))

	for i := range e.cat.Archetypes {
		a := &e.cat.Archetypes[i]

		signal, matched := e.signalScore(d.PainPoints, a)
		goal := e.goalScore(d.StrategicFocus, a)
		feasibility := e.feasibilityModifier(aiLevel, techLevel, a)
		foundation := e.foundationModifier(d.ProcessKnowledge, d.DataFoundations, a)

		composite := signal + goal + feasibility + foundation
		normalised := e.normalise(composite, a)
		allScores[a.ID] = normalised

		scored = append(scored, planner.RankedArchetype{
			ID:                  a.ID,
			Name:                a.Name,
			Description:         a.Description,
			Score:               normalised,
			CompositeScore:      composite,
			SignalScore:         signal,
			GoalScore:           goal,
			FeasibilityModifier: feasibility,
			FoundationModifier:  foundation,
			MatchedSignals:      matched,
		})
	}

	// Stable sort keeps catalogue order for equal composites.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})

	top := scored
	if len(top) > 3 {
		top = top[:3]
	}
	return planner.ScoringResult{TopArchetypes: top, AllScores: allScores}
}

// signalScore sums the matrix weights for matched (area, symptom) pairs. Per
// area the strongest match keeps its full weight and each further match is
// dampened, so stacking symptoms in one area cannot dominate the ranking.
func (e *Engine) signalScore(pairs []planner.PainPoint, a *planner.Archetype) (float64, []planner.MatchedSignal) {
	type hit struct {
		symptom string
		weight  float64
	}
	byArea := make(map[string][]hit)
	areaOrder := make([]string, 0, len(pairs))

	for _, p := range pairs {
		for _, s := range a.SignalMatrix {
			if s.Area == p.Area && s.Symptom == p.Symptom {
				if _, seen := byArea[p.Area]; !seen {
					areaOrder = append(areaOrder, p.Area)
				}
				byArea[p.Area] = append(byArea[p.Area], hit{p.Symptom, s.Weight})
				break
			}
		}
	}

	var score float64
	var matched []planner.MatchedSignal
	for _, area := range areaOrder {
		hits := byArea[area]
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].weight > hits[j].weight })
		for i, h := range hits {
			effective := h.weight
			if i > 0 {
				effective *= e.cat.Weights.SecondSymptomFactor
			}
			score += effective
			matched = append(matched, planner.MatchedSignal{Area: area, Symptom: h.symptom, Weight: effective})
		}
	}
	return score, matched
}

// goalScore weights the archetype's alignment with the primary and secondary
// strategic focus.
func (e *Engine) goalScore(focus planner.StrategicFocus, a *planner.Archetype) float64 {
	w := e.cat.Weights
	return a.GoalAlignment[focus.Primary]*w.GoalPrimary + a.GoalAlignment[focus.Secondary]*w.GoalSecondary
}

// feasibilityModifier rewards archetypes whose minimum maturity requirements
// the firm meets and penalises those it does not.
func (e *Engine) feasibilityModifier(aiLevel, techLevel int, a *planner.Archetype) float64 {
	if aiLevel >= a.Feasibility.MinAIAdoption && techLevel >= a.Feasibility.MinTechLevel {
		return e.cat.Weights.FeasibilityBonus
	}
	return e.cat.Weights.FeasibilityPenalty
}

// foundationModifier penalises archetypes that depend on process knowledge or
// data quality the firm has not yet built.
func (e *Engine) foundationModifier(processKnowledge, dataFoundations string, a *planner.Archetype) float64 {
	knowledgeGap := e.cat.DependencyLevels[a.Foundation.KnowledgeDependency] - e.cat.ProcessKnowledgeLevel(processKnowledge)
	dataGap := e.cat.DependencyLevels[a.Foundation.DataDependency] - e.cat.DataFoundationsLevel(dataFoundations)
	if knowledgeGap < 0 {
		knowledgeGap = 0
	}
	if dataGap < 0 {
		dataGap = 0
	}
	return -float64(knowledgeGap+dataGap) * e.cat.Weights.FoundationPenalty
}

// normalise maps a raw composite onto 0-100 against the archetype's own
// theoretical best and worst case, so scores are comparable across archetypes
// with different matrix densities.
func (e *Engine) normalise(composite float64, a *planner.Archetype) float64 {
	max := e.maxComposite(a)
	min := e.minComposite(a)
	if max <= min {
		return 0
	}
	n := (composite - min) / (max - min) * 100
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return math.Round(n)
}

// maxComposite is the best score the archetype can reach: its three strongest
// areas each matched twice, the two best-aligned goals selected, and the
// feasibility bonus earned with no foundation gap.
func (e *Engine) maxComposite(a *planner.Archetype) float64 {
	w := e.cat.Weights

	best := make(map[string]float64)
	second := make(map[string]float64)
	for _, s := range a.SignalMatrix {
		switch {
		case s.Weight > best[s.Area]:
			second[s.Area] = best[s.Area]
			best[s.Area] = s.Weight
		case s.Weight > second[s.Area]:
			second[s.Area] = s.Weight
		}
	}
	areaTotals := make([]float64, 0, len(best))
	for area, b := range best {
		areaTotals = append(areaTotals, b+second[area]*w.SecondSymptomFactor)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(areaTotals)))
	var maxSignal float64
	for i, t := range areaTotals {
		if i == 3 {
			break
		}
		maxSignal += t
	}

	goals := make([]float64, 0, len(a.GoalAlignment))
	for _, v := range a.GoalAlignment {
		goals = append(goals, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(goals)))
	var maxGoal float64
	if len(goals) > 0 {
		maxGoal = goals[0] * w.GoalPrimary
	}
	if len(goals) > 1 {
		maxGoal += goals[1] * w.GoalSecondary
	}

	return maxSignal + maxGoal + w.FeasibilityBonus
}

// minComposite is the worst score: no signals, no goal alignment, the
// feasibility penalty, and the archetype's full foundation gap.
func (e *Engine) minComposite(a *planner.Archetype) float64 {
	w := e.cat.Weights
	knowledgeGap := e.cat.DependencyLevels[a.Foundation.KnowledgeDependency] - 1
	dataGap := e.cat.DependencyLevels[a.Foundation.DataDependency] - 1
	if knowledgeGap < 0 {
		knowledgeGap = 0
	}
	if dataGap < 0 {
		dataGap = 0
	}
	return w.FeasibilityPenalty - float64(knowledgeGap+dataGap)*w.FoundationPenalty
}
