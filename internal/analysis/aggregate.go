package analysis

import (
	"salescope/internal/fields"
	"salescope/internal/table"
)

const (
	costRateFloor   = 0.0
	costRateCeiling = 10.0 // 1000%, suppresses pathological outliers
)

// aggregate groups raw rows by the entity column and sums the metric
// columns into one Entity per distinct value, in unit-normalized form.
// Entities keep the insertion order of their first occurrence so output
// is deterministic for a given input file. Rows whose mapped numeric
// cells fail to parse are skipped per-cell and counted once in the
// rejected diagnostic; a bad cell never fails the run.
func aggregate(t *table.Table, fieldMap fields.Map, req Request) ([]Entity, int, error) {
	quantityFactor, moneyFactor, err := unitFactors(req.Units)
	if err != nil {
		return nil, 0, err
	}

	groupColumn := fieldMap[fields.GroupRole(string(req.Type))]

	index := make(map[string]int)
	var entities []Entity
	rejected := 0

	for _, row := range t.Rows {
		name := table.String(row[groupColumn])
		if name == "" {
			rejected++
			continue
		}

		i, seen := index[name]
		if !seen {
			i = len(entities)
			index[name] = i
			entities = append(entities, Entity{
				Name:    name,
				HasCost: fieldMap.HasCost(),
			})
			if fieldMap.HasCost() {
				entities[i].CostParts = make(map[fields.Role]float64)
			}
		}

		entity := &entities[i]
		entity.RowCount++
		rowRejected := false

		add := func(role fields.Role, factor float64, sink *float64) {
			column := fieldMap[role]
			if column == "" {
				return
			}
			cell, present := row[column]
			if !present || cell == nil {
				return
			}
			if s, isStr := cell.(string); isStr && s == "" {
				return
			}
			value, ok := table.Float(cell)
			if !ok {
				rowRejected = true
				return
			}
			*sink += value * factor
		}

		add(fields.RoleQuantity, quantityFactor, &entity.Quantity)
		add(fields.RoleAmount, moneyFactor, &entity.Amount)
		add(fields.RoleProfit, moneyFactor, &entity.Profit)

		if entity.HasCost {
			for _, role := range fields.CostRoles {
				part := entity.CostParts[role]
				add(role, moneyFactor, &part)
				entity.CostParts[role] = part
			}
		}

		if rowRejected {
			rejected++
		}
	}

	for i := range entities {
		derive(&entities[i])
	}

	return entities, rejected, nil
}

// derive fills the per-entity ratio metrics with zero-guards: a sum of
// zero yields a ratio of zero, never a division error.
func derive(e *Entity) {
	e.ProfitPerUnit = safeRatio(e.Profit, e.Quantity) * moneyPerUnitScale
	e.Margin = safeRatio(e.Profit, e.Amount)

	if e.HasCost {
		e.Cost = 0
		for _, part := range e.CostParts {
			e.Cost += part
		}
		e.CostRate = clamp(safeRatio(e.Cost, e.Amount), costRateFloor, costRateCeiling)
	}
}

func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
