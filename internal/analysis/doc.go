// Package analysis implements the classification pipeline: rows are
// aggregated into per-entity metrics, then classified by mean-split
// quadrants, Pareto cumulative share, interval distribution,
// profit/loss partition, contribution ranking, and the optional cost
// breakdown. All monetary values are normalized to 万元 and quantities
// to tons before any statistic is computed.
package analysis
