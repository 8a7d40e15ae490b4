package analysis

// profitLoss partitions entities by profit sign. Zero profit counts as
// profitable: a break-even item is not losing money.
func profitLoss(entities []Entity) ProfitLossResult {
	result := ProfitLossResult{TotalCount: len(entities)}

	for i := range entities {
		e := &entities[i]
		if e.Profit >= 0 {
			result.ProfitableCount++
			result.TotalProfit += e.Profit
			result.Profitable = append(result.Profitable, e.Name)
		} else {
			result.LossCount++
			result.TotalLoss += e.Profit
			result.LossMaking = append(result.LossMaking, e.Name)
		}
	}

	result.ProfitablePercent = percent(float64(result.ProfitableCount), float64(result.TotalCount))
	result.LossPercent = percent(float64(result.LossCount), float64(result.TotalCount))
	result.NetProfit = result.TotalProfit + result.TotalLoss

	return result
}
