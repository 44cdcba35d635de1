package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leomayn/planner/internal/planner"
)

func TestBusinessCaseAnnualisation(t *testing.T) {
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)
	e := NewEngine(cat)

	sizing := []planner.SizingEntry{
		{
			ArchetypeID:    "time-invoicing",
			PeopleInvolved: "4-8",
			WeeklyHours:    "5-15",
			CostPerPerson:  "50k-75k",
		},
	}
	d := baseDiagnostic()

	bc := e.BusinessCase(sizing, d)
	require.Len(t, bc.PerArea, 1)
	area := bc.PerArea[0]

	// 6 people x 10 h/week x 45 weeks.
	assert.Equal(t, 2700.0, area.AnnualHours)
	// 62500 x 1.25 uplift / (45 x 37.5) = 46.296../h, x 2700 h = 125000.
	assert.Equal(t, 125000.0, area.AnnualCost)

	// time-invoicing recovers 0.75 +/- 0.075.
	assert.Equal(t, 84375.0, area.RecoveryRange.Low)
	assert.Equal(t, 103125.0, area.RecoveryRange.High)

	assert.Equal(t, area.AnnualHours, bc.TotalAnnualHours)
	assert.Equal(t, area.AnnualCost, bc.TotalAnnualCost)
	assert.Equal(t, area.RecoveryRange.Low, bc.ConservativeRecovery.Low)
	assert.Equal(t, area.RecoveryRange.High, bc.ConservativeRecovery.High)

	// 2700 h x 0.675 / 45 weeks and 2700 x 0.825 / 45.
	assert.Equal(t, 41.0, bc.WeeklyHoursRecovered.Low)
	assert.Equal(t, 50.0, bc.WeeklyHoursRecovered.High)
}

func TestBusinessCaseAggregatesAcrossAreas(t *testing.T) {
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)
	e := NewEngine(cat)

	sizing := []planner.SizingEntry{
		{ArchetypeID: "time-invoicing", PeopleInvolved: "1-3", WeeklyHours: "under-5", CostPerPerson: "under-30k"},
		{ArchetypeID: "client-onboarding", PeopleInvolved: "4-8", WeeklyHours: "5-15", CostPerPerson: "30k-50k"},
		{ArchetypeID: "proposal-scoping", PeopleInvolved: "9-15", WeeklyHours: "15-30", CostPerPerson: "50k-75k"},
	}

	bc := e.BusinessCase(sizing, baseDiagnostic())
	require.Len(t, bc.PerArea, 3)

	var hours, cost float64
	for _, a := range bc.PerArea {
		hours += a.AnnualHours
		cost += a.AnnualCost
	}
	assert.Equal(t, hours, bc.TotalAnnualHours)
	assert.Equal(t, cost, bc.TotalAnnualCost)
	assert.Greater(t, bc.ConservativeRecovery.High, bc.ConservativeRecovery.Low)
}

func TestBusinessCaseUnknownBucketsYieldZero(t *testing.T) {
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)
	e := NewEngine(cat)

	sizing := []planner.SizingEntry{
		{ArchetypeID: "time-invoicing", PeopleInvolved: "lots", WeeklyHours: "many", CostPerPerson: "plenty"},
	}

	bc := e.BusinessCase(sizing, baseDiagnostic())
	require.Len(t, bc.PerArea, 1)
	assert.Equal(t, 0.0, bc.PerArea[0].AnnualHours)
	assert.Equal(t, 0.0, bc.PerArea[0].AnnualCost)
	assert.Equal(t, 0.0, bc.TotalAnnualCost)
	// Zero cost falls back to the default recovery band for the weekly figure.
	assert.Equal(t, 0.0, bc.WeeklyHoursRecovered.Low)
	assert.Equal(t, 0.0, bc.WeeklyHoursRecovered.High)
}

func TestRevenueFramingThreshold(t *testing.T) {
	cat, err := planner.DefaultCatalogue()
	require.NoError(t, err)
	e := NewEngine(cat)

	d := baseDiagnostic()
	d.BillableSplit = 70
	assert.True(t, e.BusinessCase(nil, d).RevenueFraming)

	d.BillableSplit = 69.9
	assert.False(t, e.BusinessCase(nil, d).RevenueFraming)
}
