package analysis

import (
	"salescope/internal/fields"
)

// Type selects the entity dimension of an analysis run.
type Type string

const (
	TypeProduct  Type = "product"
	TypeCustomer Type = "customer"
	TypeRegion   Type = "region"
)

// Valid reports whether the analysis type is one of the known values.
func (t Type) Valid() bool {
	return t == TypeProduct || t == TypeCustomer || t == TypeRegion
}

// Dimension selects the metric a Pareto ranking is computed over.
type Dimension string

const (
	DimensionProfit   Dimension = "profit"
	DimensionAmount   Dimension = "amount"
	DimensionQuantity Dimension = "quantity"
)

// Unit tokens confirmed by the user. Units are never guessed: a silent
// misread would corrupt every downstream number.
const (
	UnitKilogram = "kg"
	UnitTon      = "t"
	UnitYuan     = "yuan"
	UnitWanYuan  = "wan_yuan"
)

// Units carries the user-confirmed source units of the input columns.
type Units struct {
	Quantity string `json:"quantity" validate:"required,oneof=kg t"`
	Amount   string `json:"amount" validate:"required,oneof=yuan wan_yuan"`
}

// Request is the full set of parameters for one analysis run.
type Request struct {
	Type            Type       `json:"analysis_type" validate:"required,oneof=product customer region"`
	Units           Units      `json:"units"`
	ParetoDimension Dimension  `json:"pareto_dimension,omitempty" validate:"omitempty,oneof=profit amount quantity"`
	Overrides       fields.Map `json:"field_overrides,omitempty"`
}

// Entity is one aggregated row: all metrics for a single distinct
// product/customer/region, in normalized units (tons, 万元).
type Entity struct {
	Name string `json:"name"`

	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
	Profit   float64 `json:"profit"`

	// ProfitPerUnit is 元/吨: profit in 万元 over quantity in tons,
	// scaled by 10000. Zero when the entity moved no quantity.
	ProfitPerUnit float64 `json:"profit_per_unit"`
	// Margin is profit over amount, zero-guarded.
	Margin float64 `json:"margin"`

	Cost      float64                 `json:"cost,omitempty"`
	CostParts map[fields.Role]float64 `json:"cost_parts,omitempty"`
	// CostRate is cost over amount, clamped to [0, 10] so one corrupt
	// row cannot wreck downstream binning.
	CostRate float64 `json:"cost_rate,omitempty"`
	HasCost  bool    `json:"has_cost"`

	RowCount int `json:"row_count"`
	Quadrant int `json:"quadrant"`
}

// Result is the self-contained outcome of one analysis run. It is plain
// data: callers serialize it to JSON or feed it to the report exporter.
type Result struct {
	Type   Type       `json:"analysis_type"`
	Units  Units      `json:"units"`
	Fields fields.Map `json:"fields"`

	TotalRows    int `json:"total_rows"`
	RejectedRows int `json:"rejected_rows"`

	Entities []Entity `json:"entities"`

	Quadrant     QuadrantResult     `json:"quadrant_analysis"`
	Pareto       ParetoResult       `json:"pareto_analysis"`
	Distribution DistributionResult `json:"distribution_analysis"`
	ProfitLoss   ProfitLossResult   `json:"profit_loss_analysis"`
	Contribution ContributionResult `json:"contribution_analysis"`
	Cost         *CostResult        `json:"cost_analysis,omitempty"`
}

// QuadrantStats summarizes one quadrant of the mean-split chart.
type QuadrantStats struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Strategy    string `json:"strategy"`

	Count        int     `json:"count"`
	CountPercent float64 `json:"count_percentage"`

	ProfitSum       float64 `json:"profit_sum"`
	ProfitPercent   float64 `json:"profit_percentage"`
	AmountSum       float64 `json:"amount_sum"`
	AmountPercent   float64 `json:"amount_percentage"`
	QuantitySum     float64 `json:"quantity_sum"`
	QuantityPercent float64 `json:"quantity_percentage"`

	// ProfitPerUnit is filled for product analyses only.
	ProfitPerUnit float64 `json:"profit_per_unit,omitempty"`

	Members []string `json:"members"`
}

// QuadrantResult carries the full mean-split classification.
type QuadrantResult struct {
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
	XMean  float64 `json:"x_avg"`
	YMean  float64 `json:"y_avg"`

	// Quadrants is always length 4, ordered by quadrant id 1..4.
	Quadrants []QuadrantStats `json:"quadrants"`
}

// ParetoEntry is one ranked row of the cumulative-share curve.
type ParetoEntry struct {
	Rank              int     `json:"rank"`
	Name              string  `json:"name"`
	Value             float64 `json:"value"`
	Cumulative        float64 `json:"cumulative"`
	CumulativePercent float64 `json:"cumulative_percentage"`
	Core              bool    `json:"core"`
}

// ParetoResult is the 80/20 ranking over one dimension.
type ParetoResult struct {
	Dimension   Dimension   `json:"dimension"`
	Label       string      `json:"label"`
	Unit        string      `json:"unit"`
	Description string      `json:"description"`
	Available   []Dimension `json:"available_dimensions"`

	Total            float64       `json:"total"`
	Entries          []ParetoEntry `json:"entries"`
	CoreCount        int           `json:"core_items_count"`
	CoreCountPercent float64       `json:"core_items_percentage"`
	TotalItems       int           `json:"total_items"`
}

// Bucket is one value interval of a distribution. Low is inclusive and
// High exclusive, except for the last bucket which includes High.
type Bucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Label string  `json:"label"`

	Count        int     `json:"count"`
	CountPercent float64 `json:"count_percentage"`
	Sum          float64 `json:"sum"`
	SumPercent   float64 `json:"sum_percentage"`

	Members []string `json:"members"`
}

// DistributionResult is a histogram over one metric.
type DistributionResult struct {
	Metric   string   `json:"metric"`
	Title    string   `json:"title"`
	Strategy string   `json:"strategy"`
	Buckets  []Bucket `json:"buckets"`
}

// ProfitLossResult partitions entities by the sign of their profit.
type ProfitLossResult struct {
	TotalCount        int     `json:"total_count"`
	ProfitableCount   int     `json:"profitable_count"`
	LossCount         int     `json:"loss_count"`
	ProfitablePercent float64 `json:"profitable_percentage"`
	LossPercent       float64 `json:"loss_percentage"`

	TotalProfit float64 `json:"total_profit"`
	TotalLoss   float64 `json:"total_loss"`
	NetProfit   float64 `json:"net_profit"`

	Profitable []string `json:"profitable_items"`
	LossMaking []string `json:"loss_making_items"`
}

// Contributor is one entity's share of a metric total.
type Contributor struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percentage"`
}

// MetricContribution ranks the top contributors for one dimension.
type MetricContribution struct {
	Dimension Dimension     `json:"dimension"`
	Total     float64       `json:"total"`
	Top       []Contributor `json:"top_contributors"`
}

// ContributionResult covers all dimensions available in the data.
type ContributionResult struct {
	Metrics []MetricContribution `json:"metrics"`
}

// CostComponent is one slice of the cost composition breakdown.
type CostComponent struct {
	Role    fields.Role `json:"role"`
	Label   string      `json:"label"`
	Value   float64     `json:"value"`
	Percent float64     `json:"percentage"`
}

// EfficiencyPoint is one entity on the cost-efficiency plane.
type EfficiencyPoint struct {
	Name       string  `json:"name"`
	CostRate   float64 `json:"cost_rate"`
	Efficiency float64 `json:"efficiency_value"`
	Class      string  `json:"class"`
}

// EfficiencyResult is the cost-rate vs. efficiency quadrant.
type EfficiencyResult struct {
	XLabel        string            `json:"x_label"`
	YLabel        string            `json:"y_label"`
	AvgCostRate   float64           `json:"avg_cost_rate"`
	AvgEfficiency float64           `json:"avg_efficiency"`
	Points        []EfficiencyPoint `json:"points"`
}

// CostResult aggregates the optional cost sub-analyses.
type CostResult struct {
	Composition []CostComponent `json:"composition"`
	TotalCost   float64         `json:"total_cost"`

	AvgCostRate      float64            `json:"avg_cost_rate"`
	MedianCostRate   float64            `json:"median_cost_rate"`
	RateDistribution DistributionResult `json:"rate_distribution"`

	Efficiency EfficiencyResult `json:"efficiency"`
}

// Cost-efficiency classes.
const (
	EfficiencyEfficient   = "efficient"
	EfficiencyLowVolume   = "low_volume"
	EfficiencyHighCost    = "high_cost"
	EfficiencyInefficient = "inefficient"
)
