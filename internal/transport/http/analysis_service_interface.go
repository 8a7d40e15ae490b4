package http

import (
	"context"
	"io"

	"salescope/internal/analysis"
	"salescope/internal/fields"
	"salescope/internal/services"
	"salescope/internal/sheets"
)

// AnalysisServiceInterface defines the service contract the handlers
// depend on. *services.AnalysisService is the production implementation.
type AnalysisServiceInterface interface {
	SaveUpload(ctx context.Context, filename string, r io.Reader) (*services.Session, error)
	ListSheets(ctx context.Context, sessionID string) ([]sheets.Info, error)
	DetectFields(ctx context.Context, sessionID, sheet string) (*fields.Detection, error)
	Analyze(ctx context.Context, sessionID, sheet string, req analysis.Request) (*services.StoredAnalysis, error)
	GetAnalysis(ctx context.Context, analysisID string) (*services.StoredAnalysis, error)
	ReselectPareto(ctx context.Context, analysisID string, dim analysis.Dimension) (analysis.ParetoResult, error)
	Export(ctx context.Context, analysisID, format string, w io.Writer) (string, error)
}
