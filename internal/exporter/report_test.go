package exporter

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salescope/internal/analysis"
	"salescope/internal/fields"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Type:         analysis.TypeProduct,
		TotalRows:    10,
		RejectedRows: 1,
		Entities: []analysis.Entity{
			{Name: "螺纹钢", Quantity: 200, Amount: 120, Profit: 10, ProfitPerUnit: 500, Margin: 0.083, RowCount: 3, Quadrant: 1},
			{Name: "线材", Quantity: 50, Amount: 30, Profit: -2, ProfitPerUnit: -400, Margin: -0.066, RowCount: 2, Quadrant: 4},
		},
		Quadrant: analysis.QuadrantResult{
			XLabel: "销量(吨)",
			YLabel: "吨毛利(元/吨)",
			XMean:  125,
			YMean:  320,
			Quadrants: []analysis.QuadrantStats{
				{ID: 1, Name: "明星", Count: 1, CountPercent: 50, Members: []string{"螺纹钢"}},
				{ID: 2, Name: "金牛"},
				{ID: 3, Name: "问题"},
				{ID: 4, Name: "瘦狗", Count: 1, CountPercent: 50, Members: []string{"线材"}},
			},
		},
		Pareto: analysis.ParetoResult{
			Dimension: analysis.DimensionProfit,
			Label:     "毛利",
			Unit:      "万元",
			Entries: []analysis.ParetoEntry{
				{Rank: 1, Name: "螺纹钢", Value: 10, Cumulative: 10, CumulativePercent: 125, Core: true},
				{Rank: 2, Name: "线材", Value: -2, Cumulative: 8, CumulativePercent: 100},
			},
			CoreCount:        1,
			CoreCountPercent: 50,
			TotalItems:       2,
		},
		Distribution: analysis.DistributionResult{
			Metric:   "quantity",
			Title:    "销量分布区间",
			Strategy: "fallback",
			Buckets: []analysis.Bucket{
				{Low: 0, High: 125, Label: "[0, 125)", Count: 1, CountPercent: 50, Members: []string{"线材"}},
				{Low: 125, High: 250, Label: "[125, 250)", Count: 1, CountPercent: 50, Members: []string{"螺纹钢"}},
			},
		},
		ProfitLoss: analysis.ProfitLossResult{
			TotalCount:        2,
			ProfitableCount:   1,
			LossCount:         1,
			ProfitablePercent: 50,
			LossPercent:       50,
			TotalProfit:       10,
			TotalLoss:         -2,
			NetProfit:         8,
			Profitable:        []string{"螺纹钢"},
			LossMaking:        []string{"线材"},
		},
		Contribution: analysis.ContributionResult{
			Metrics: []analysis.MetricContribution{
				{Dimension: analysis.DimensionProfit, Total: 8, Top: []analysis.Contributor{{Name: "螺纹钢", Value: 10, Percent: 125}}},
			},
		},
	}
}

func sampleResultWithCost() *analysis.Result {
	result := sampleResult()
	for i := range result.Entities {
		result.Entities[i].Cost = result.Entities[i].Amount * 0.8
		result.Entities[i].CostRate = 0.8
		result.Entities[i].HasCost = true
	}
	result.Cost = &analysis.CostResult{
		TotalCost:      120,
		AvgCostRate:    0.8,
		MedianCostRate: 0.8,
		Composition: []analysis.CostComponent{
			{Role: fields.RoleCost, Label: "成本", Value: 120, Percent: 100},
		},
		Efficiency: analysis.EfficiencyResult{
			XLabel:      "成本率",
			YLabel:      "销售金额(万元)",
			AvgCostRate: 0.8,
			Points: []analysis.EfficiencyPoint{
				{Name: "螺纹钢", CostRate: 0.8, Efficiency: 120, Class: analysis.EfficiencyEfficient},
			},
		},
	}
	return result
}

func TestReportWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	writer := NewReportWriter(testLogger())

	require.NoError(t, writer.Write(path, sampleResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		sheetOverview, sheetQuadrant, sheetPareto,
		sheetDistribution, sheetProfitLoss, sheetEntities,
	}, f.GetSheetList())

	got, err := f.GetCellValue(sheetOverview, "B1")
	require.NoError(t, err)
	assert.Equal(t, "产品分析", got)

	got, err = f.GetCellValue(sheetOverview, "B9")
	require.NoError(t, err)
	assert.Equal(t, "8.00", got)

	got, err = f.GetCellValue(sheetPareto, "B5")
	require.NoError(t, err)
	assert.Equal(t, "螺纹钢", got)

	got, err = f.GetCellValue(sheetEntities, "A2")
	require.NoError(t, err)
	assert.Equal(t, "螺纹钢", got)
}

func TestReportWriter_CostSheetOnlyWhenPresent(t *testing.T) {
	writer := NewReportWriter(nil)

	var withoutCost bytes.Buffer
	require.NoError(t, writer.WriteTo(&withoutCost, sampleResult()))
	f, err := excelize.OpenReader(bytes.NewReader(withoutCost.Bytes()))
	require.NoError(t, err)
	assert.NotContains(t, f.GetSheetList(), sheetCost)
	require.NoError(t, f.Close())

	var withCost bytes.Buffer
	require.NoError(t, writer.WriteTo(&withCost, sampleResultWithCost()))
	f, err = excelize.OpenReader(bytes.NewReader(withCost.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), sheetCost)

	got, err := f.GetCellValue(sheetCost, "A1")
	require.NoError(t, err)
	assert.Equal(t, "总成本(万元)", got)

	// Entity sheet grows cost columns when cost data exists.
	got, err = f.GetCellValue(sheetEntities, "I1")
	require.NoError(t, err)
	assert.Equal(t, "成本(万元)", got)
}

func TestReportWriter_ActiveSheetIsOverview(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportWriter(testLogger()).WriteTo(&buf, sampleResult()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, sheetOverview, f.GetSheetName(f.GetActiveSheetIndex()))
}

func TestCSVWriter_WriteEntities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.csv")
	writer := NewCSVWriter()

	require.NoError(t, writer.WriteEntities(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "BOM prefix missing")

	lines := bytes.Split(bytes.TrimSpace(data[3:]), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "名称,销量(吨),销售金额(万元),毛利(万元),吨毛利(元/吨),毛利率,行数,象限", string(bytes.TrimSpace(lines[0])))
	assert.Equal(t, "螺纹钢,200.00,120.00,10.00,500.00,0.08,3,1", string(bytes.TrimSpace(lines[1])))
}

func TestCSVWriter_WriteEntitiesWithCost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.csv")

	require.NoError(t, NewCSVWriter().WriteEntities(path, sampleResultWithCost()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data[3:]), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "成本率")
	assert.Contains(t, string(lines[1]), "96.00,0.80")
}

func TestCSVWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	writer := NewCSVWriter()

	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Headers: []string{"a", "b"},
		Records: [][]string{{"1", "2"}},
	}))
	require.NoError(t, writer.WriteCSV(path, WriteOptions{
		Records: [][]string{{"3", "4"}},
		Append:  true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}
