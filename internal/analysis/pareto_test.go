package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescope/internal/fields"
)

func TestPareto_RanksAndMarksCore(t *testing.T) {
	entities := []Entity{
		{Name: "C", Profit: 10},
		{Name: "A", Profit: 60},
		{Name: "B", Profit: 25},
		{Name: "D", Profit: 5},
	}
	fieldMap := fields.Map{fields.RoleProduct: "产品", fields.RoleProfit: "毛利"}

	result, err := pareto(entities, TypeProduct, "", fieldMap)
	require.NoError(t, err)

	assert.Equal(t, DimensionProfit, result.Dimension)
	assert.InDelta(t, 100.0, result.Total, 1e-9)
	require.Len(t, result.Entries, 4)

	assert.Equal(t, "A", result.Entries[0].Name)
	assert.Equal(t, "B", result.Entries[1].Name)
	assert.Equal(t, "C", result.Entries[2].Name)
	assert.Equal(t, "D", result.Entries[3].Name)

	// Cumulative percentages are monotonically non-decreasing and end
	// at 100.
	prev := 0.0
	for _, entry := range result.Entries {
		assert.GreaterOrEqual(t, entry.CumulativePercent, prev)
		prev = entry.CumulativePercent
	}
	assert.InDelta(t, 100.0, prev, 1e-9)

	// A=60%, A+B=85% crosses the threshold: the core is A and B.
	assert.True(t, result.Entries[0].Core)
	assert.True(t, result.Entries[1].Core)
	assert.False(t, result.Entries[2].Core)
	assert.Equal(t, 2, result.CoreCount)
	assert.InDelta(t, 50.0, result.CoreCountPercent, 1e-9)
}

func TestPareto_StableOnTies(t *testing.T) {
	entities := []Entity{
		{Name: "先", Profit: 10},
		{Name: "后", Profit: 10},
	}
	fieldMap := fields.Map{fields.RoleProfit: "毛利"}

	result, err := pareto(entities, TypeProduct, DimensionProfit, fieldMap)
	require.NoError(t, err)
	assert.Equal(t, "先", result.Entries[0].Name)
	assert.Equal(t, "后", result.Entries[1].Name)
}

func TestPareto_NonPositiveTotal(t *testing.T) {
	entities := []Entity{
		{Name: "A", Profit: 0},
		{Name: "B", Profit: -5},
	}
	fieldMap := fields.Map{fields.RoleProfit: "毛利"}

	result, err := pareto(entities, TypeProduct, DimensionProfit, fieldMap)
	require.NoError(t, err)

	assert.Zero(t, result.CoreCount)
	for _, entry := range result.Entries {
		assert.False(t, entry.Core)
		assert.Zero(t, entry.CumulativePercent)
	}
}

func TestPareto_SingleEntity(t *testing.T) {
	entities := []Entity{{Name: "独苗", Amount: 42}}
	fieldMap := fields.Map{fields.RoleAmount: "金额"}

	result, err := pareto(entities, TypeCustomer, "", fieldMap)
	require.NoError(t, err)

	assert.Equal(t, DimensionAmount, result.Dimension)
	require.Len(t, result.Entries, 1)
	assert.True(t, result.Entries[0].Core)
	assert.InDelta(t, 100.0, result.Entries[0].CumulativePercent, 1e-9)
	assert.Equal(t, 1, result.CoreCount)
}

func TestPareto_UnavailableDimensionFallsBack(t *testing.T) {
	entities := []Entity{{Name: "A", Amount: 10, Profit: 2}}
	// No quantity column detected.
	fieldMap := fields.Map{fields.RoleAmount: "金额", fields.RoleProfit: "毛利"}

	result, err := pareto(entities, TypeCustomer, DimensionQuantity, fieldMap)
	require.NoError(t, err)

	assert.Equal(t, DimensionAmount, result.Dimension)
	assert.Equal(t, []Dimension{DimensionAmount, DimensionProfit}, result.Available)
}

func TestPareto_NoDimensionAvailable(t *testing.T) {
	entities := []Entity{{Name: "A"}}
	fieldMap := fields.Map{fields.RoleProduct: "产品"}

	_, err := pareto(entities, TypeProduct, "", fieldMap)
	assert.Error(t, err)
}

func TestDefaultParetoDimension(t *testing.T) {
	assert.Equal(t, DimensionProfit, defaultParetoDimension(TypeProduct))
	assert.Equal(t, DimensionAmount, defaultParetoDimension(TypeCustomer))
	assert.Equal(t, DimensionAmount, defaultParetoDimension(TypeRegion))
}
