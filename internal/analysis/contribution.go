package analysis

import "sort"

const contributionTopN = 10

// contribution ranks the top entities per available dimension. It is a
// lighter cousin of the Pareto ranking: no cumulative curve, just the
// head of the list with shares of the total.
func contribution(entities []Entity, available []Dimension) ContributionResult {
	result := ContributionResult{}

	for _, dim := range available {
		metric := dimensionMetric(dim)

		total := 0.0
		for i := range entities {
			total += metric(&entities[i])
		}

		order := make([]int, len(entities))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return metric(&entities[order[a]]) > metric(&entities[order[b]])
		})

		top := order
		if len(top) > contributionTopN {
			top = top[:contributionTopN]
		}

		mc := MetricContribution{Dimension: dim, Total: total}
		for _, idx := range top {
			v := metric(&entities[idx])
			mc.Top = append(mc.Top, Contributor{
				Name:    entities[idx].Name,
				Value:   v,
				Percent: percent(v, total),
			})
		}
		result.Metrics = append(result.Metrics, mc)
	}

	return result
}
