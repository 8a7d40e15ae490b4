package analysis

// quadrantLabel holds the display texts of one quadrant.
type quadrantLabel struct {
	name        string
	description string
	strategy    string
}

// Quadrant ids follow the Cartesian convention, counter-clockwise from
// the high-X/high-Y corner.
var quadrantLabels = map[Type][4]quadrantLabel{
	TypeProduct: {
		{"明星产品", "高毛利, 高销量", "重点保护与投入，保证产能、优先备货、加大营销"},
		{"潜力产品", "高毛利, 低销量", "精准营销与试错，分析销量低的原因"},
		{"瘦狗产品", "低毛利, 低销量", "简化或淘汰，评估战略保留价值"},
		{"金牛产品", "低毛利, 高销量", "优化成本与关联销售，审视生产流程，利用其流量"},
	},
	TypeCustomer: {
		{"核心客户", "高金额, 高毛利", "战略合作，VIP服务，高层互访，建立长期护城河"},
		{"成长客户", "低金额, 高毛利", "扶持与渗透，销售重点跟进，增加其采购份额和频次"},
		{"机会客户", "低金额, 低毛利", "标准化服务，降低服务成本，不投入过多资源"},
		{"增利客户", "高金额, 低毛利", "提升利润，引导采购高利润产品，审视折扣"},
	},
	TypeRegion: {
		{"核心市场", "高金额, 高毛利", "重点投入资源，建立区域壁垒，可作为新产品首发试点"},
		{"机会市场", "低金额, 高毛利", "精准定位高价值客户，加强市场渗透"},
		{"边缘市场", "低金额, 低毛利", "维持最低成本运营，标准化服务，定期复评"},
		{"规模市场", "高金额, 低毛利", "优化物流和渠道成本，引导销售高毛利产品组合"},
	},
}

var axisLabels = map[Type][2]string{
	TypeProduct:  {"销量(吨)", "吨毛利(元/吨)"},
	TypeCustomer: {"销售金额(万元)", "毛利贡献(万元)"},
	TypeRegion:   {"地区销售金额(万元)", "地区毛利贡献(万元)"},
}

// quadrantAxes returns the X and Y metric accessors for the analysis
// type. Product analyses split on quantity vs. per-unit profit, the
// other types on amount vs. profit.
func quadrantAxes(analysisType Type) (x, y func(*Entity) float64) {
	if analysisType == TypeProduct {
		return func(e *Entity) float64 { return e.Quantity },
			func(e *Entity) float64 { return e.ProfitPerUnit }
	}
	return func(e *Entity) float64 { return e.Amount },
		func(e *Entity) float64 { return e.Profit }
}

// classifyQuadrant places a point relative to the mean lines. The
// boundary is inclusive: values exactly on a mean land on the ≥ side.
func classifyQuadrant(x, y, xMean, yMean float64) int {
	switch {
	case x >= xMean && y >= yMean:
		return 1
	case x < xMean && y >= yMean:
		return 2
	case x < xMean && y < yMean:
		return 3
	default:
		return 4
	}
}

// classifyQuadrants assigns every entity to a quadrant by mean-split
// (the chart plots mean lines, so the cut points must match) and
// gathers per-quadrant statistics. Mutates entities' Quadrant field.
func classifyQuadrants(entities []Entity, analysisType Type) QuadrantResult {
	xOf, yOf := quadrantAxes(analysisType)

	xMean := meanOf(entities, xOf)
	yMean := meanOf(entities, yOf)
	if analysisType == TypeProduct {
		// The per-unit profit mean is quantity-weighted: total profit
		// over total quantity, matching the plotted mean line rather
		// than an unweighted average of ratios.
		totalProfit, totalQuantity := 0.0, 0.0
		for i := range entities {
			totalProfit += entities[i].Profit
			totalQuantity += entities[i].Quantity
		}
		if totalQuantity > 0 {
			yMean = totalProfit / totalQuantity * moneyPerUnitScale
		}
	}

	for i := range entities {
		entities[i].Quadrant = classifyQuadrant(xOf(&entities[i]), yOf(&entities[i]), xMean, yMean)
	}

	totalCount := len(entities)
	var totalProfit, totalAmount, totalQuantity float64
	for i := range entities {
		totalProfit += entities[i].Profit
		totalAmount += entities[i].Amount
		totalQuantity += entities[i].Quantity
	}

	labels := quadrantLabels[analysisType]
	quadrants := make([]QuadrantStats, 4)
	for q := 1; q <= 4; q++ {
		stats := QuadrantStats{
			ID:          q,
			Name:        labels[q-1].name,
			Description: labels[q-1].description,
			Strategy:    labels[q-1].strategy,
		}

		for i := range entities {
			if entities[i].Quadrant != q {
				continue
			}
			stats.Count++
			stats.ProfitSum += entities[i].Profit
			stats.AmountSum += entities[i].Amount
			stats.QuantitySum += entities[i].Quantity
			stats.Members = append(stats.Members, entities[i].Name)
		}

		stats.CountPercent = percent(float64(stats.Count), float64(totalCount))
		stats.ProfitPercent = percent(stats.ProfitSum, totalProfit)
		stats.AmountPercent = percent(stats.AmountSum, totalAmount)
		stats.QuantityPercent = percent(stats.QuantitySum, totalQuantity)

		if analysisType == TypeProduct && stats.QuantitySum > 0 {
			stats.ProfitPerUnit = stats.ProfitSum / stats.QuantitySum * moneyPerUnitScale
		}

		quadrants[q-1] = stats
	}

	axes := axisLabels[analysisType]
	return QuadrantResult{
		XLabel:    axes[0],
		YLabel:    axes[1],
		XMean:     xMean,
		YMean:     yMean,
		Quadrants: quadrants,
	}
}

func meanOf(entities []Entity, metric func(*Entity) float64) float64 {
	if len(entities) == 0 {
		return 0
	}
	sum := 0.0
	for i := range entities {
		sum += metric(&entities[i])
	}
	return sum / float64(len(entities))
}

// percent guards against zero and negative totals: percentages over a
// non-positive base are reported as 0 rather than dividing through.
func percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}
