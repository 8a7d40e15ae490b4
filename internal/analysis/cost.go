package analysis

import (
	"sort"

	"salescope/internal/fields"
)

var costComponentLabels = map[fields.Role]string{
	fields.RoleCost:        "成本",
	fields.RoleSeaFreight:  "海运费",
	fields.RoleLandFreight: "陆运费",
	fields.RoleAgencyFee:   "代理费",
}

// costAnalysis runs only when at least one cost column was detected.
// Entities without cost data are excluded from the rate statistics but
// still appear in the composition totals at zero.
func costAnalysis(entities []Entity, fieldMap fields.Map) *CostResult {
	if !fieldMap.HasCost() {
		return nil
	}

	result := &CostResult{}

	partTotals := map[fields.Role]float64{}
	for i := range entities {
		for role, v := range entities[i].CostParts {
			partTotals[role] += v
		}
		result.TotalCost += entities[i].Cost
	}

	for _, role := range fields.CostRoles {
		if fieldMap[role] == "" {
			continue
		}
		result.Composition = append(result.Composition, CostComponent{
			Role:    role,
			Label:   costComponentLabels[role],
			Value:   partTotals[role],
			Percent: percent(partTotals[role], result.TotalCost),
		})
	}

	withCost := make([]Entity, 0, len(entities))
	rates := make([]float64, 0, len(entities))
	for i := range entities {
		if entities[i].HasCost {
			withCost = append(withCost, entities[i])
			rates = append(rates, entities[i].CostRate)
		}
	}

	result.AvgCostRate = meanOf(withCost, func(e *Entity) float64 { return e.CostRate })
	result.MedianCostRate = medianOf(rates)
	result.RateDistribution = distribute(withCost, "cost_rate", "成本率分布区间",
		func(e *Entity) float64 { return e.CostRate })
	result.Efficiency = costEfficiency(withCost, result.AvgCostRate)

	return result
}

// costEfficiency places each costed entity on a cost-rate vs. sales
// scale plane and classifies it against the averages. Low cost rate
// with high sales is the efficient corner.
func costEfficiency(entities []Entity, avgRate float64) EfficiencyResult {
	avgAmount := meanOf(entities, func(e *Entity) float64 { return e.Amount })

	result := EfficiencyResult{
		XLabel:        "成本率",
		YLabel:        "销售金额(万元)",
		AvgCostRate:   avgRate,
		AvgEfficiency: avgAmount,
	}

	for i := range entities {
		e := &entities[i]
		class := EfficiencyInefficient
		switch {
		case e.CostRate <= avgRate && e.Amount >= avgAmount:
			class = EfficiencyEfficient
		case e.CostRate <= avgRate:
			class = EfficiencyLowVolume
		case e.Amount >= avgAmount:
			class = EfficiencyHighCost
		}
		result.Points = append(result.Points, EfficiencyPoint{
			Name:       e.Name,
			CostRate:   e.CostRate,
			Efficiency: e.Amount,
			Class:      class,
		})
	}

	return result
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
