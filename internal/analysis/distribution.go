package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Binning strategy names, in the order they are attempted.
const (
	StrategyQuartile   = "quartile"
	StrategyEqualWidth = "equal_width"
	StrategyExtended   = "extended"
	StrategyFallback   = "fallback"
)

const (
	boundaryEpsilon  = 1e-9
	equalWidthBins   = 5
	minBoundaryCount = 3 // at least 2 buckets
)

// distributionConfig selects the bucketed metric per analysis type.
type distributionConfig struct {
	metric string
	title  string
	value  func(*Entity) float64
}

func distributionFor(analysisType Type) distributionConfig {
	if analysisType == TypeProduct {
		return distributionConfig{
			metric: "quantity",
			title:  "销量分布区间",
			value:  func(e *Entity) float64 { return e.Quantity },
		}
	}
	title := "采购金额分布区间"
	if analysisType == TypeRegion {
		title = "销售金额分布区间"
	}
	return distributionConfig{
		metric: "amount",
		title:  title,
		value:  func(e *Entity) float64 { return e.Amount },
	}
}

// boundaryStrategy produces a candidate boundary sequence. A strategy
// may fail on degenerate data; the orchestrator then moves on to the
// next one.
type boundaryStrategy struct {
	name  string
	build func(values []float64) []float64
}

var boundaryStrategies = []boundaryStrategy{
	{StrategyQuartile, quartileBoundaries},
	{StrategyEqualWidth, equalWidthBoundaries},
	{StrategyExtended, extendedBoundaries},
}

// distribute histograms entities over a metric. Strategies are tried in
// priority order and the first whose boundaries pass validation wins;
// when every strategy degenerates (near-constant data, single entity)
// the guaranteed-valid midpoint split is used. Binning never fails.
func distribute(entities []Entity, metric string, title string, value func(*Entity) float64) DistributionResult {
	values := make([]float64, 0, len(entities))
	for i := range entities {
		values = append(values, value(&entities[i]))
	}

	boundaries, strategy := selectBoundaries(values)
	buckets := fillBuckets(entities, value, boundaries)

	return DistributionResult{
		Metric:   metric,
		Title:    title,
		Strategy: strategy,
		Buckets:  buckets,
	}
}

// selectBoundaries walks the strategy chain and commits to the first
// boundary sequence that is strictly increasing with at least three
// points. The fallback cannot fail by construction.
func selectBoundaries(values []float64) ([]float64, string) {
	for _, strategy := range boundaryStrategies {
		boundaries := strategy.build(values)
		if validBoundaries(boundaries) {
			return boundaries, strategy.name
		}
	}
	return fallbackBoundaries(values), StrategyFallback
}

// validBoundaries enforces the strict-increase invariant. A violated
// sequence is the exact bug class binning must never surface, so the
// check runs before any strategy's output is accepted.
func validBoundaries(boundaries []float64) bool {
	if len(boundaries) < minBoundaryCount {
		return false
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return false
		}
	}
	return true
}

// quartileBoundaries: [min, Q25, Q50, Q75, max], deduplicated.
// Collapses below three points when the data is near-constant, which
// fails validation and moves the chain along.
func quartileBoundaries(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	candidates := []float64{
		sorted[0],
		quantile(sorted, 0.25),
		quantile(sorted, 0.50),
		quantile(sorted, 0.75),
		sorted[len(sorted)-1],
	}
	sort.Float64s(candidates)

	deduped := candidates[:1]
	for _, b := range candidates[1:] {
		if b > deduped[len(deduped)-1] {
			deduped = append(deduped, b)
		}
	}
	return deduped
}

// equalWidthBoundaries splits [min, max] into fixed-width ranges.
func equalWidthBoundaries(values []float64) []float64 {
	lo, hi, ok := minMax(values)
	if !ok || hi-lo <= 0 {
		return nil
	}
	width := (hi - lo) / equalWidthBins
	boundaries := make([]float64, 0, equalWidthBins+1)
	for i := 0; i <= equalWidthBins; i++ {
		boundaries = append(boundaries, lo+width*float64(i))
	}
	// Close the last bucket just past max so the maximum lands inside.
	boundaries[len(boundaries)-1] = hi + boundaryEpsilon
	return boundaries
}

// extendedBoundaries uses wide hand-tuned bands for heavily skewed
// data, the shape cost rates above 100% take: <50%, 50–100%, 100–200%,
// >200%. Bands outside the observed range are trimmed off.
func extendedBoundaries(values []float64) []float64 {
	lo, hi, ok := minMax(values)
	if !ok {
		return nil
	}

	bands := []float64{0.5, 1.0, 2.0}
	boundaries := []float64{lo - boundaryEpsilon}
	for _, band := range bands {
		if band > lo && band < hi {
			boundaries = append(boundaries, band)
		}
	}
	return append(boundaries, hi+boundaryEpsilon)
}

// fallbackBoundaries is the trivial two-bucket split around the
// midpoint. Valid even for a single repeated value: the pads guarantee
// strict increase.
func fallbackBoundaries(values []float64) []float64 {
	lo, hi, ok := minMax(values)
	if !ok {
		lo, hi = 0, 0
	}
	mid := (lo + hi) / 2
	return []float64{mid - 1, mid, mid + 1}
}

// fillBuckets assigns each entity to its half-open interval [lo, hi);
// the last bucket also includes its upper bound.
func fillBuckets(entities []Entity, value func(*Entity) float64, boundaries []float64) []Bucket {
	buckets := make([]Bucket, len(boundaries)-1)
	for i := range buckets {
		buckets[i] = Bucket{
			Low:   boundaries[i],
			High:  boundaries[i+1],
			Label: bucketLabel(boundaries[i], boundaries[i+1]),
		}
	}

	totalCount := len(entities)
	totalSum := 0.0

	for i := range entities {
		v := value(&entities[i])
		totalSum += v

		idx := bucketIndex(v, boundaries)
		if idx < 0 {
			continue
		}
		buckets[idx].Count++
		buckets[idx].Sum += v
		buckets[idx].Members = append(buckets[idx].Members, entities[i].Name)
	}

	for i := range buckets {
		buckets[i].CountPercent = percent(float64(buckets[i].Count), float64(totalCount))
		buckets[i].SumPercent = percent(buckets[i].Sum, totalSum)
	}

	return buckets
}

func bucketIndex(v float64, boundaries []float64) int {
	last := len(boundaries) - 2
	for i := 0; i <= last; i++ {
		if v >= boundaries[i] && v < boundaries[i+1] {
			return i
		}
	}
	if v == boundaries[len(boundaries)-1] {
		return last
	}
	return -1
}

func bucketLabel(lo, hi float64) string {
	return fmt.Sprintf("%.2f-%.2f", lo, hi)
}

// quantile computes the q-th quantile of sorted values with linear
// interpolation between the two nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func minMax(values []float64) (lo, hi float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, true
}
