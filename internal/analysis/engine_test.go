package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescope/internal/fields"
	"salescope/internal/table"
)

func sampleTable() *table.Table {
	return table.New([]string{"产品名称", "客户名称", "数量", "销售金额", "毛利"}, []table.Row{
		{"产品名称": "螺纹钢", "客户名称": "华东贸易", "数量": 120.0, "销售金额": 48.0, "毛利": 6.0},
		{"产品名称": "螺纹钢", "客户名称": "南方建材", "数量": 80.0, "销售金额": 32.0, "毛利": 4.0},
		{"产品名称": "线材", "客户名称": "华东贸易", "数量": 30.0, "销售金额": 12.6, "毛利": 2.1},
		{"产品名称": "热轧卷板", "客户名称": "北方钢铁", "数量": 10.0, "销售金额": 4.4, "毛利": -0.6},
		{"产品名称": "冷轧卷板", "客户名称": "南方建材", "数量": 5.0, "销售金额": 2.8, "毛利": 0.9},
	})
}

func TestEngine_AnalyzeProduct(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Analyze(context.Background(), sampleTable(), tonWanYuanRequest(TypeProduct))
	require.NoError(t, err)

	assert.Equal(t, TypeProduct, result.Type)
	assert.Equal(t, 5, result.TotalRows)
	assert.Zero(t, result.RejectedRows)
	require.Len(t, result.Entities, 4)

	// The two 螺纹钢 rows merge.
	assert.Equal(t, "螺纹钢", result.Entities[0].Name)
	assert.InDelta(t, 200.0, result.Entities[0].Quantity, 1e-9)
	assert.InDelta(t, 10.0, result.Entities[0].Profit, 1e-9)
	assert.InDelta(t, 500.0, result.Entities[0].ProfitPerUnit, 1e-9)

	// Detected mapping is echoed back.
	assert.Equal(t, "产品名称", result.Fields[fields.RoleProduct])
	assert.Equal(t, "销售金额", result.Fields[fields.RoleAmount])

	// Every sub-analysis is populated; cost is absent without cost
	// columns.
	assert.Len(t, result.Quadrant.Quadrants, 4)
	assert.Equal(t, DimensionProfit, result.Pareto.Dimension)
	assert.NotEmpty(t, result.Distribution.Buckets)
	assert.Equal(t, 4, result.ProfitLoss.TotalCount)
	assert.Equal(t, 1, result.ProfitLoss.LossCount)
	assert.NotEmpty(t, result.Contribution.Metrics)
	assert.Nil(t, result.Cost)
}

func TestEngine_AnalyzeCustomerWithOverrides(t *testing.T) {
	engine := NewEngine(nil)

	req := tonWanYuanRequest(TypeCustomer)
	req.Overrides = fields.Map{fields.RoleCustomer: "客户名称"}

	result, err := engine.Analyze(context.Background(), sampleTable(), req)
	require.NoError(t, err)

	require.Len(t, result.Entities, 3)
	assert.Equal(t, "华东贸易", result.Entities[0].Name)
	assert.InDelta(t, 60.6, result.Entities[0].Amount, 1e-9)
	assert.Equal(t, DimensionAmount, result.Pareto.Dimension)
}

func TestEngine_MissingFields(t *testing.T) {
	engine := NewEngine(nil)

	tbl := table.New([]string{"备注", "数量"}, []table.Row{
		{"备注": "x", "数量": 1.0},
	})

	_, err := engine.Analyze(context.Background(), tbl, tonWanYuanRequest(TypeProduct))

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Roles, fields.RoleProduct)
	assert.NotEmpty(t, missing.Suggestions[fields.RoleProduct])
}

func TestEngine_EmptyDataset(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.Analyze(context.Background(), nil, tonWanYuanRequest(TypeProduct))
	assert.ErrorIs(t, err, ErrEmptyDataset)

	empty := table.New([]string{"产品名称"}, nil)
	_, err = engine.Analyze(context.Background(), empty, tonWanYuanRequest(TypeProduct))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestEngine_InvalidType(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.Analyze(context.Background(), sampleTable(), Request{Type: "supplier"})
	assert.Error(t, err)
}

func TestEngine_ReselectPareto(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Analyze(context.Background(), sampleTable(), tonWanYuanRequest(TypeProduct))
	require.NoError(t, err)

	reselected, err := engine.ReselectPareto(context.Background(), result, DimensionQuantity)
	require.NoError(t, err)

	assert.Equal(t, DimensionQuantity, reselected.Dimension)
	assert.Equal(t, "螺纹钢", reselected.Entries[0].Name)
	assert.InDelta(t, 245.0, reselected.Total, 1e-9)

	// Aggregation is untouched.
	assert.Len(t, result.Entities, 4)

	_, err = engine.ReselectPareto(context.Background(), result, DimensionAmount)
	assert.Error(t, err, "amount is not a product pareto dimension")
}

func TestEngine_ReselectParetoEmptyResult(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.ReselectPareto(context.Background(), nil, DimensionProfit)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
