package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"salescope/internal/fields"
	"salescope/internal/table"
)

// Engine runs the full analysis pipeline over a parsed table. It is
// stateless and safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an analysis engine. A nil logger falls back to the
// default slog logger.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Analyze validates the request against the table, aggregates rows into
// entities, and runs every applicable sub-analysis. The returned Result
// is self-contained: reselecting a Pareto dimension later needs only
// the Result, not the source table.
func (e *Engine) Analyze(ctx context.Context, t *table.Table, req Request) (*Result, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown analysis type %q", req.Type)
	}
	if t == nil || t.IsEmpty() {
		return nil, ErrEmptyDataset
	}

	detection := fields.Detect(t)
	fieldMap := detection.Fields.Merge(req.Overrides)

	if missing := fieldMap.Missing(string(req.Type)); len(missing) > 0 {
		return nil, newMissingFieldsError(req.Type, missing)
	}

	entities, rejected, err := aggregate(t, fieldMap, req)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, ErrEmptyDataset
	}

	e.logger.InfoContext(ctx, "rows aggregated",
		slog.String("analysis_type", string(req.Type)),
		slog.Int("total_rows", len(t.Rows)),
		slog.Int("rejected_rows", rejected),
		slog.Int("entities", len(entities)))

	result := &Result{
		Type:         req.Type,
		Units:        req.Units,
		Fields:       fieldMap,
		TotalRows:    len(t.Rows),
		RejectedRows: rejected,
		Entities:     entities,
	}

	result.Quadrant = classifyQuadrants(result.Entities, req.Type)

	paretoResult, err := pareto(result.Entities, req.Type, req.ParetoDimension, fieldMap)
	if err != nil {
		return nil, err
	}
	result.Pareto = paretoResult

	dist := distributionFor(req.Type)
	result.Distribution = distribute(result.Entities, dist.metric, dist.title, dist.value)

	result.ProfitLoss = profitLoss(result.Entities)
	result.Contribution = contribution(result.Entities, paretoResult.Available)
	result.Cost = costAnalysis(result.Entities, fieldMap)

	e.logger.InfoContext(ctx, "analysis complete",
		slog.String("analysis_type", string(req.Type)),
		slog.String("pareto_dimension", string(result.Pareto.Dimension)),
		slog.String("distribution_strategy", result.Distribution.Strategy),
		slog.Bool("cost_analysis", result.Cost != nil))

	return result, nil
}

// ReselectPareto recomputes the Pareto ranking of a finished result
// over a different dimension. Aggregation is not repeated.
func (e *Engine) ReselectPareto(ctx context.Context, result *Result, dim Dimension) (ParetoResult, error) {
	if result == nil || len(result.Entities) == 0 {
		return ParetoResult{}, ErrEmptyDataset
	}
	if !dimensionAvailable(dim, availableDimensions(result.Type, result.Fields)) {
		return ParetoResult{}, fmt.Errorf("dimension %q is not available for %s analysis", dim, result.Type)
	}

	e.logger.InfoContext(ctx, "pareto dimension reselected",
		slog.String("analysis_type", string(result.Type)),
		slog.String("dimension", string(dim)))

	return pareto(result.Entities, result.Type, dim, result.Fields)
}
