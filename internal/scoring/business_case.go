package scoring

import (
	"math"

	"github.com/leomayn/planner/internal/planner"
)

// Fallback recovery fractions when total cost is zero and no average can be
// derived from the sized areas.
const (
	defaultRecoveryLow  = 0.35
	defaultRecoveryHigh = 0.65
)

// BusinessCase annualises the sized workflows into hours and fully loaded
// cost, applies each archetype's recovery range, and aggregates headline
// figures. Recovery amounts are currency, not fractions.
func (e *Engine) BusinessCase(sizing []planner.SizingEntry, d *planner.DiagnosticData) planner.BusinessCase {
	w := e.cat.Weights

	perArea := make([]planner.AreaBusinessCase, 0, len(sizing))
	for _, entry := range sizing {
		people := planner.Midpoint(entry.PeopleInvolved, e.cat.PeopleInvolved)
		weeklyHours := planner.Midpoint(entry.WeeklyHours, e.cat.WeeklyHours)
		baseSalary := planner.Midpoint(entry.CostPerPerson, e.cat.CostPerPerson)
		fullyLoaded := baseSalary * (1 + w.EmployerCostUplift)

		annualHours := people * weeklyHours * w.WorkingWeeksPerYear
		hourlyRate := fullyLoaded / (w.WorkingWeeksPerYear * w.HoursPerWeek)
		annualCost := annualHours * hourlyRate

		recovery := e.cat.RecoveryRange(entry.ArchetypeID)

		perArea = append(perArea, planner.AreaBusinessCase{
			ArchetypeID: entry.ArchetypeID,
			AnnualHours: math.Round(annualHours),
			AnnualCost:  math.Round(annualCost),
			RecoveryRange: planner.Range{
				Low:  math.Round(annualCost * recovery.Low),
				High: math.Round(annualCost * recovery.High),
			},
		})
	}

	var totalHours, totalCost, recoveryLow, recoveryHigh float64
	for _, a := range perArea {
		totalHours += a.AnnualHours
		totalCost += a.AnnualCost
		recoveryLow += a.RecoveryRange.Low
		recoveryHigh += a.RecoveryRange.High
	}

	avgLow, avgHigh := defaultRecoveryLow, defaultRecoveryHigh
	if totalCost > 0 {
		avgLow = recoveryLow / totalCost
		avgHigh = recoveryHigh / totalCost
	}

	return planner.BusinessCase{
		PerArea:          perArea,
		TotalAnnualHours: totalHours,
		TotalAnnualCost:  totalCost,
		ConservativeRecovery: planner.Range{
			Low:  recoveryLow,
			High: recoveryHigh,
		},
		WeeklyHoursRecovered: planner.Range{
			Low:  math.Round(totalHours * avgLow / w.WorkingWeeksPerYear),
			High: math.Round(totalHours * avgHigh / w.WorkingWeeksPerYear),
		},
		RevenueFraming: d.BillableSplit >= 70,
	}
}
