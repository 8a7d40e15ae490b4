package analysis

import (
	"fmt"
	"sort"

	"salescope/internal/fields"
)

const paretoCoreThreshold = 80.0

// dimensionRole maps a Pareto dimension to the field role it requires.
var dimensionRole = map[Dimension]fields.Role{
	DimensionProfit:   fields.RoleProfit,
	DimensionAmount:   fields.RoleAmount,
	DimensionQuantity: fields.RoleQuantity,
}

// dimensionMetric resolves a dimension to the aggregated metric.
func dimensionMetric(dim Dimension) func(*Entity) float64 {
	switch dim {
	case DimensionAmount:
		return func(e *Entity) float64 { return e.Amount }
	case DimensionQuantity:
		return func(e *Entity) float64 { return e.Quantity }
	default:
		return func(e *Entity) float64 { return e.Profit }
	}
}

// defaultParetoDimension is the ranking dimension used when the caller
// does not pick one: products rank by profit, customers and regions by
// amount.
func defaultParetoDimension(analysisType Type) Dimension {
	if analysisType == TypeProduct {
		return DimensionProfit
	}
	return DimensionAmount
}

// candidateDimensions lists the dimensions offered per analysis type,
// in display order, before filtering by detected fields.
func candidateDimensions(analysisType Type) []Dimension {
	if analysisType == TypeProduct {
		return []Dimension{DimensionProfit, DimensionQuantity}
	}
	return []Dimension{DimensionAmount, DimensionProfit, DimensionQuantity}
}

// availableDimensions filters candidates to those whose underlying
// column was actually detected.
func availableDimensions(analysisType Type, fieldMap fields.Map) []Dimension {
	var available []Dimension
	for _, dim := range candidateDimensions(analysisType) {
		if fieldMap[dimensionRole[dim]] != "" {
			available = append(available, dim)
		}
	}
	return available
}

type dimensionInfo struct {
	label       string
	unit        string
	description string
}

var dimensionInfos = map[Dimension]map[Type]dimensionInfo{
	DimensionProfit: {
		TypeProduct:  {"毛利", "万元", "按产品毛利贡献排序"},
		TypeCustomer: {"毛利贡献", "万元", "按客户毛利贡献排序"},
		TypeRegion:   {"毛利贡献", "万元", "按地区毛利贡献排序"},
	},
	DimensionAmount: {
		TypeProduct:  {"销售金额", "万元", "按产品销售金额排序"},
		TypeCustomer: {"采购金额", "万元", "按客户采购金额排序"},
		TypeRegion:   {"销售金额", "万元", "按地区销售金额排序"},
	},
	DimensionQuantity: {
		TypeProduct:  {"销量", "吨", "按产品销量排序"},
		TypeCustomer: {"采购量", "吨", "按客户采购量排序"},
		TypeRegion:   {"销量", "吨", "按地区销量排序"},
	},
}

// pareto ranks entities descending by the chosen dimension and walks
// the cumulative-share curve. It only re-sorts and re-accumulates the
// already aggregated entities, so switching dimensions later never
// touches aggregation. The sort is stable: ties keep aggregation order.
func pareto(entities []Entity, analysisType Type, dim Dimension, fieldMap fields.Map) (ParetoResult, error) {
	available := availableDimensions(analysisType, fieldMap)

	if dim == "" {
		dim = defaultParetoDimension(analysisType)
	}
	if !dimensionAvailable(dim, available) {
		if len(available) == 0 {
			return ParetoResult{}, fmt.Errorf("no pareto dimension available for %s analysis", analysisType)
		}
		dim = available[0]
	}

	metric := dimensionMetric(dim)

	order := make([]int, len(entities))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return metric(&entities[order[a]]) > metric(&entities[order[b]])
	})

	total := 0.0
	for i := range entities {
		total += metric(&entities[i])
	}

	// A non-positive total (all-zero data, or losses outweighing
	// gains) makes cumulative shares meaningless; ranking is still
	// produced but percentages stay 0 and no core subset is claimed.
	shareable := total > 0

	entries := make([]ParetoEntry, 0, len(order))
	cumulative := 0.0
	coreCount := 0
	coreClosed := false

	for rank, idx := range order {
		value := metric(&entities[idx])
		cumulative += value

		entry := ParetoEntry{
			Rank:       rank + 1,
			Name:       entities[idx].Name,
			Value:      value,
			Cumulative: cumulative,
		}

		if shareable {
			entry.CumulativePercent = cumulative / total * 100
			if !coreClosed {
				entry.Core = true
				coreCount++
				if entry.CumulativePercent >= paretoCoreThreshold {
					coreClosed = true
				}
			}
		}

		entries = append(entries, entry)
	}

	info := dimensionInfos[dim][analysisType]

	return ParetoResult{
		Dimension:        dim,
		Label:            info.label,
		Unit:             info.unit,
		Description:      info.description,
		Available:        available,
		Total:            total,
		Entries:          entries,
		CoreCount:        coreCount,
		CoreCountPercent: percent(float64(coreCount), float64(len(entries))),
		TotalItems:       len(entries),
	}, nil
}

func dimensionAvailable(dim Dimension, available []Dimension) bool {
	for _, d := range available {
		if d == dim {
			return true
		}
	}
	return false
}
