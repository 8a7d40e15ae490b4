package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"salescope/internal/analysis"
	"salescope/internal/config"
	apierrors "salescope/internal/errors"
	"salescope/internal/exporter"
	"salescope/internal/fields"
	"salescope/internal/infrastructure"
	"salescope/internal/sheets"
	"salescope/internal/table"
)

// Export formats.
const (
	FormatExcel = "xlsx"
	FormatCSV   = "csv"
)

// AnalysisService owns the upload-to-export lifecycle: it stores
// uploaded spreadsheets, runs the analysis engine over them, and
// renders finished results into downloadable reports.
type AnalysisService struct {
	cfg     *config.Config
	store   *SessionStore
	engine  *analysis.Engine
	reports *exporter.ReportWriter
	csv     *exporter.CSVWriter
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewAnalysisService creates the service. metrics may be nil.
func NewAnalysisService(cfg *config.Config, store *SessionStore, metrics *infrastructure.Metrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cfg:     cfg,
		store:   store,
		engine:  analysis.NewEngine(logger),
		reports: exporter.NewReportWriter(logger),
		csv:     exporter.NewCSVWriter(),
		metrics: metrics,
		logger:  logger,
	}
}

// SaveUpload persists an uploaded spreadsheet to the upload directory
// and opens a session for it. The size limit is enforced while copying,
// so a lying Content-Length cannot bypass it.
func (s *AnalysisService) SaveUpload(ctx context.Context, filename string, r io.Reader) (*Session, error) {
	if !sheets.SupportedExtension(filename) {
		return nil, apierrors.ErrUnsupportedFormat
	}

	id := uuid.New().String()
	path := filepath.Join(s.cfg.UploadDir(), id+strings.ToLower(filepath.Ext(filename)))

	file, err := os.Create(path)
	if err != nil {
		return nil, apierrors.FileSystemError("upload", err)
	}

	limit := s.cfg.Upload.MaxFileBytes
	written, err := io.Copy(file, io.LimitReader(r, limit+1))
	closeErr := file.Close()
	switch {
	case err != nil:
		os.Remove(path)
		return nil, apierrors.FileSystemError("upload", err)
	case closeErr != nil:
		os.Remove(path)
		return nil, apierrors.FileSystemError("upload", closeErr)
	case written > limit:
		os.Remove(path)
		return nil, apierrors.ErrFileTooLarge
	}

	session := &Session{
		ID:         id,
		FileName:   filepath.Base(filename),
		Path:       path,
		Size:       written,
		UploadedAt: time.Now(),
	}
	s.store.PutSession(session)

	if s.metrics != nil {
		s.metrics.UploadsTotal.Inc()
		s.metrics.UploadBytes.Observe(float64(written))
	}

	s.logger.InfoContext(ctx, "file uploaded",
		slog.String("session_id", id),
		slog.String("file_name", session.FileName),
		slog.Int64("size", written))

	return session, nil
}

// ListSheets returns the worksheets of an uploaded file.
func (s *AnalysisService) ListSheets(ctx context.Context, sessionID string) ([]sheets.Info, error) {
	session, ok := s.store.GetSession(sessionID)
	if !ok {
		return nil, apierrors.ErrFileNotFound
	}

	infos, err := sheets.List(session.Path)
	if err != nil {
		return nil, apierrors.ParseErrorWithDetails(err)
	}
	return infos, nil
}

// DetectFields reads one worksheet and reports which columns were
// recognized, so the client can confirm or override the mapping before
// running an analysis.
func (s *AnalysisService) DetectFields(ctx context.Context, sessionID, sheet string) (*fields.Detection, error) {
	session, ok := s.store.GetSession(sessionID)
	if !ok {
		return nil, apierrors.ErrFileNotFound
	}

	t, err := s.readSheet(session, sheet)
	if err != nil {
		return nil, err
	}

	detection := fields.Detect(t)
	return &detection, nil
}

// Analyze runs the full pipeline over one worksheet and stores the
// result for later reselection and export.
func (s *AnalysisService) Analyze(ctx context.Context, sessionID, sheet string, req analysis.Request) (*StoredAnalysis, error) {
	session, ok := s.store.GetSession(sessionID)
	if !ok {
		return nil, apierrors.ErrFileNotFound
	}

	t, err := s.readSheet(session, sheet)
	if err != nil {
		return nil, err
	}

	if maxRows := s.cfg.Analysis.MaxRows; len(t.Rows) > maxRows {
		return nil, apierrors.NewWithDetails(
			apierrors.ErrUnprocessableEntity.StatusCode, "TOO_MANY_ROWS",
			fmt.Sprintf("Worksheet has %d rows, limit is %d", len(t.Rows), maxRows),
			map[string]int{"rows": len(t.Rows), "max_rows": maxRows})
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Analysis.RunTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.Analyze(runCtx, t, req)
	s.observeRun(req.Type, start, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && result.RejectedRows > 0 {
		s.metrics.RejectedRows.Add(float64(result.RejectedRows))
	}

	stored := &StoredAnalysis{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Result:    result,
		CreatedAt: time.Now(),
	}
	s.store.PutAnalysis(stored)

	s.logger.InfoContext(ctx, "analysis stored",
		slog.String("analysis_id", stored.ID),
		slog.String("session_id", sessionID),
		slog.String("analysis_type", string(req.Type)))

	return stored, nil
}

// GetAnalysis returns a stored analysis by id.
func (s *AnalysisService) GetAnalysis(ctx context.Context, analysisID string) (*StoredAnalysis, error) {
	stored, ok := s.store.GetAnalysis(analysisID)
	if !ok {
		return nil, apierrors.ErrAnalysisNotFound
	}
	return stored, nil
}

// ReselectPareto recomputes the Pareto ranking of a stored analysis
// over a different dimension and updates the stored result in place.
func (s *AnalysisService) ReselectPareto(ctx context.Context, analysisID string, dim analysis.Dimension) (analysis.ParetoResult, error) {
	stored, ok := s.store.GetAnalysis(analysisID)
	if !ok {
		return analysis.ParetoResult{}, apierrors.ErrAnalysisNotFound
	}

	pareto, err := s.engine.ReselectPareto(ctx, stored.Result, dim)
	if err != nil {
		return analysis.ParetoResult{}, err
	}

	stored.Result.Pareto = pareto
	return pareto, nil
}

// Export renders a stored analysis into w and returns a suggested file
// name. Supported formats are xlsx and csv.
func (s *AnalysisService) Export(ctx context.Context, analysisID, format string, w io.Writer) (string, error) {
	stored, ok := s.store.GetAnalysis(analysisID)
	if !ok {
		return "", apierrors.ErrAnalysisNotFound
	}

	var err error
	switch format {
	case FormatExcel, "":
		format = FormatExcel
		err = s.reports.WriteTo(w, stored.Result)
	case FormatCSV:
		err = s.csv.WriteEntitiesTo(w, stored.Result)
	default:
		return "", apierrors.NewWithDetails(
			apierrors.ErrInvalidParameter.StatusCode, "INVALID_PARAMETER",
			fmt.Sprintf("Unknown export format %q", format), format)
	}
	if err != nil {
		return "", apierrors.NewWithDetails(
			apierrors.ErrExportFailed.StatusCode, "EXPORT_FAILED", "Report export failed", err.Error())
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.Inc()
	}

	s.logger.InfoContext(ctx, "analysis exported",
		slog.String("analysis_id", analysisID),
		slog.String("format", format))

	name := fmt.Sprintf("analysis_%s_%s.%s", stored.Result.Type, stored.CreatedAt.Format("20060102_150405"), format)
	return name, nil
}

func (s *AnalysisService) readSheet(session *Session, sheet string) (*table.Table, error) {
	t, err := sheets.Read(session.Path, sheet)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "not found") {
			return nil, apierrors.ErrSheetNotFound
		}
		return nil, apierrors.ParseErrorWithDetails(err)
	}
	return t, nil
}

func (s *AnalysisService) observeRun(analysisType analysis.Type, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.AnalysesTotal.WithLabelValues(string(analysisType), outcome).Inc()
	s.metrics.AnalysisDuration.WithLabelValues(string(analysisType)).Observe(time.Since(start).Seconds())
}
