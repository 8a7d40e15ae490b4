package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"salescope/internal/analysis"
)

// Sheet names of the exported report, in workbook order.
const (
	sheetOverview     = "概览"
	sheetQuadrant     = "四象限分析"
	sheetPareto       = "帕累托分析"
	sheetDistribution = "分布区间"
	sheetProfitLoss   = "盈亏分析"
	sheetCost         = "成本分析"
	sheetEntities     = "明细数据"
)

var typeNames = map[analysis.Type]string{
	analysis.TypeProduct:  "产品分析",
	analysis.TypeCustomer: "客户分析",
	analysis.TypeRegion:   "地区分析",
}

// ReportWriter renders a finished analysis into a multi-sheet Excel
// workbook.
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates a report writer. A nil logger falls back to
// the default slog logger.
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{logger: logger}
}

// WriteTo streams the workbook to w.
func (rw *ReportWriter) WriteTo(w io.Writer, result *analysis.Result) error {
	f, err := rw.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Write saves the workbook to a file path.
func (rw *ReportWriter) Write(path string, result *analysis.Result) error {
	f, err := rw.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (rw *ReportWriter) build(result *analysis.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	steps := []func(*excelize.File, *analysis.Result) error{
		writeOverview,
		writeQuadrant,
		writePareto,
		writeDistribution,
		writeProfitLoss,
		writeCost,
		writeEntities,
	}
	for _, step := range steps {
		if err := step(f, result); err != nil {
			f.Close()
			return nil, err
		}
	}

	// The default sheet was renamed to the overview by the first step.
	index, err := f.GetSheetIndex(sheetOverview)
	if err == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	rw.logger.Info("report workbook built",
		slog.String("analysis_type", string(result.Type)),
		slog.Int("entities", len(result.Entities)))

	return f, nil
}

func writeOverview(f *excelize.File, result *analysis.Result) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetOverview); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"分析类型", typeNames[result.Type]},
		{"总行数", result.TotalRows},
		{"剔除行数", result.RejectedRows},
		{"实体数量", len(result.Entities)},
		{"盈利数量", result.ProfitLoss.ProfitableCount},
		{"亏损数量", result.ProfitLoss.LossCount},
		{"总盈利(万元)", formatFloat(result.ProfitLoss.TotalProfit)},
		{"总亏损(万元)", formatFloat(result.ProfitLoss.TotalLoss)},
		{"净利润(万元)", formatFloat(result.ProfitLoss.NetProfit)},
	}
	return writeRows(f, sheetOverview, rows)
}

func writeQuadrant(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetQuadrant); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"X轴", result.Quadrant.XLabel, "均值", formatFloat(result.Quadrant.XMean)},
		{"Y轴", result.Quadrant.YLabel, "均值", formatFloat(result.Quadrant.YMean)},
		{},
		{"象限", "名称", "说明", "策略", "数量", "数量占比%", "毛利合计", "毛利占比%", "成员"},
	}
	for _, q := range result.Quadrant.Quadrants {
		rows = append(rows, []interface{}{
			q.ID, q.Name, q.Description, q.Strategy,
			q.Count, formatFloat(q.CountPercent),
			formatFloat(q.ProfitSum), formatFloat(q.ProfitPercent),
			joinNames(q.Members),
		})
	}
	return writeRows(f, sheetQuadrant, rows)
}

func writePareto(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetPareto); err != nil {
		return err
	}

	p := result.Pareto
	rows := [][]interface{}{
		{"排序维度", p.Label, "单位", p.Unit},
		{"核心数量", p.CoreCount, "核心占比%", formatFloat(p.CoreCountPercent)},
		{},
		{"排名", "名称", "数值", "累计", "累计占比%", "核心"},
	}
	for _, entry := range p.Entries {
		rows = append(rows, []interface{}{
			entry.Rank, entry.Name,
			formatFloat(entry.Value), formatFloat(entry.Cumulative),
			formatFloat(entry.CumulativePercent), formatBool(entry.Core),
		})
	}
	return writeRows(f, sheetPareto, rows)
}

func writeDistribution(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetDistribution); err != nil {
		return err
	}

	d := result.Distribution
	rows := [][]interface{}{
		{d.Title},
		{},
		{"区间", "数量", "数量占比%", "合计", "合计占比%", "成员"},
	}
	for _, b := range d.Buckets {
		rows = append(rows, []interface{}{
			b.Label, b.Count, formatFloat(b.CountPercent),
			formatFloat(b.Sum), formatFloat(b.SumPercent),
			joinNames(b.Members),
		})
	}
	return writeRows(f, sheetDistribution, rows)
}

func writeProfitLoss(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetProfitLoss); err != nil {
		return err
	}

	pl := result.ProfitLoss
	rows := [][]interface{}{
		{"盈利数量", pl.ProfitableCount, "占比%", formatFloat(pl.ProfitablePercent)},
		{"亏损数量", pl.LossCount, "占比%", formatFloat(pl.LossPercent)},
		{"总盈利(万元)", formatFloat(pl.TotalProfit)},
		{"总亏损(万元)", formatFloat(pl.TotalLoss)},
		{"净利润(万元)", formatFloat(pl.NetProfit)},
		{},
		{"亏损清单", joinNames(pl.LossMaking)},
	}
	return writeRows(f, sheetProfitLoss, rows)
}

func writeCost(f *excelize.File, result *analysis.Result) error {
	if result.Cost == nil {
		return nil
	}
	if _, err := f.NewSheet(sheetCost); err != nil {
		return err
	}

	c := result.Cost
	rows := [][]interface{}{
		{"总成本(万元)", formatFloat(c.TotalCost)},
		{"平均成本率", formatFloat(c.AvgCostRate)},
		{"成本率中位数", formatFloat(c.MedianCostRate)},
		{},
		{"成本构成", "金额(万元)", "占比%"},
	}
	for _, comp := range c.Composition {
		rows = append(rows, []interface{}{
			comp.Label, formatFloat(comp.Value), formatFloat(comp.Percent),
		})
	}

	rows = append(rows, []interface{}{}, []interface{}{"名称", "成本率", "销售金额(万元)", "分类"})
	for _, point := range c.Efficiency.Points {
		rows = append(rows, []interface{}{
			point.Name, formatFloat(point.CostRate),
			formatFloat(point.Efficiency), point.Class,
		})
	}
	return writeRows(f, sheetCost, rows)
}

func writeEntities(f *excelize.File, result *analysis.Result) error {
	if _, err := f.NewSheet(sheetEntities); err != nil {
		return err
	}

	header := []interface{}{"名称", "销量(吨)", "销售金额(万元)", "毛利(万元)", "吨毛利(元/吨)", "毛利率", "行数", "象限"}
	hasCost := result.Cost != nil
	if hasCost {
		header = append(header, "成本(万元)", "成本率")
	}

	rows := [][]interface{}{header}
	for i := range result.Entities {
		e := &result.Entities[i]
		row := []interface{}{
			e.Name, formatFloat(e.Quantity), formatFloat(e.Amount),
			formatFloat(e.Profit), formatFloat(e.ProfitPerUnit),
			formatFloat(e.Margin), e.RowCount, e.Quadrant,
		}
		if hasCost {
			row = append(row, formatFloat(e.Cost), formatFloat(e.CostRate))
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheetEntities, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func joinNames(names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
