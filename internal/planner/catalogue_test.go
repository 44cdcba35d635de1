package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogueLoads(t *testing.T) {
	cat, err := DefaultCatalogue()
	require.NoError(t, err)

	assert.Len(t, cat.Archetypes, 9)
	assert.NotNil(t, cat.Archetype("time-invoicing"))
	assert.Nil(t, cat.Archetype("no-such-archetype"))

	// Every archetype needs the pieces the scorer reads.
	for _, a := range cat.Archetypes {
		assert.NotEmpty(t, a.SignalMatrix, "archetype %s", a.ID)
		assert.NotEmpty(t, a.GoalAlignment, "archetype %s", a.ID)
		assert.Contains(t, cat.DependencyLevels, a.Foundation.KnowledgeDependency, "archetype %s", a.ID)
		assert.Contains(t, cat.DependencyLevels, a.Foundation.DataDependency, "archetype %s", a.ID)
		assert.Greater(t, a.RecoveryRate, 0.0, "archetype %s", a.ID)
	}
}

func TestLevelLookups(t *testing.T) {
	cat, err := DefaultCatalogue()
	require.NoError(t, err)

	assert.Equal(t, 3, cat.AIAdoptionLevel("embedded"))
	assert.Equal(t, 0, cat.AIAdoptionLevel("not-started"))
	assert.Equal(t, 2, cat.TechLevel("integrated"))
	assert.Equal(t, 1, cat.ProcessKnowledgeLevel("dont-know"))
	assert.Equal(t, 1, cat.DataFoundationsLevel("dont-know"))

	// Unknown answers resolve to the neutral level.
	assert.Equal(t, 1, cat.AIAdoptionLevel("something-else"))
	assert.Equal(t, 1, cat.TechLevel(""))
}

func TestMidpointLookups(t *testing.T) {
	cat, err := DefaultCatalogue()
	require.NoError(t, err)

	assert.Equal(t, 6.0, Midpoint("4-8", cat.PeopleInvolved))
	assert.Equal(t, 22.5, Midpoint("15-30", cat.WeeklyHours))
	assert.Equal(t, 175000.0, Midpoint("over-150k", cat.CostPerPerson))
	assert.Equal(t, 0.0, Midpoint("unknown", cat.PeopleInvolved))
}

func TestRecoveryRangeClamping(t *testing.T) {
	cat, err := DefaultCatalogue()
	require.NoError(t, err)

	r := cat.RecoveryRange("time-invoicing")
	assert.InDelta(t, 0.675, r.Low, 1e-9)
	assert.InDelta(t, 0.825, r.High, 1e-9)

	// Unknown archetypes fall back to the middle rate.
	r = cat.RecoveryRange("no-such-archetype")
	assert.InDelta(t, 0.425, r.Low, 1e-9)
	assert.InDelta(t, 0.575, r.High, 1e-9)
}

func TestValidateCatalogueJSONRejectsBadDocuments(t *testing.T) {
	cat, err := DefaultCatalogue()
	require.NoError(t, err)

	// Round-trip the default catalogue and break one required field.
	raw, err := json.Marshal(cat)
	require.NoError(t, err)
	require.NoError(t, ValidateCatalogueJSON(raw))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	delete(doc, "weights")
	broken, err := json.Marshal(doc)
	require.NoError(t, err)

	verr := ValidateCatalogueJSON(broken)
	require.Error(t, verr)
	_, ok := verr.(FieldErrors)
	assert.True(t, ok, "expected FieldErrors, got %T", verr)
}

func TestValidateCatalogueJSONRejectsMalformedJSON(t *testing.T) {
	assert.Error(t, ValidateCatalogueJSON([]byte("{not json")))
}
