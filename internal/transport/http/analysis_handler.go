package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"salescope/internal/analysis"
	apierrors "salescope/internal/errors"
	"salescope/internal/infrastructure"
	appmw "salescope/internal/middleware"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing;
// larger uploads spill to temp files.
const maxMultipartMemory = 32 << 20

// AnalysisHandler exposes the upload, analysis, and export endpoints
// with RFC 7807 error responses.
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *appmw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates the handler.
func NewAnalysisHandler(service AnalysisServiceInterface, validator *appmw.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		logger:       infrastructure.WithComponent(logger, "analysis_handler"),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/files", h.Upload)
	r.Route("/files/{fileID}", func(r chi.Router) {
		r.Use(h.FileCtx)
		r.Get("/sheets", h.ListSheets)
		r.Get("/fields", h.DetectFields)
	})

	r.Post("/analyses", h.CreateAnalysis)
	r.Route("/analyses/{analysisID}", func(r chi.Router) {
		r.Use(h.AnalysisCtx)
		r.Get("/", h.GetAnalysis)
		r.Post("/pareto", h.ReselectPareto)
		r.Get("/export", h.Export)
	})

	r.Get("/units", h.Units)

	return r
}

// FileCtx validates the fileID path parameter.
func (h *AnalysisHandler) FileCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "fileID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("fileID", "File id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AnalysisCtx validates the analysisID path parameter.
func (h *AnalysisHandler) AnalysisCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "analysisID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("analysisID", "Analysis id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/files. The spreadsheet arrives as the
// multipart form field "file".
func (h *AnalysisHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	file, header, err := h.formFile(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("file_name", header.Filename),
		slog.Int64("declared_size", header.Size))

	session, err := h.service.SaveUpload(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   session,
	})
}

// ListSheets handles GET /api/files/{fileID}/sheets.
func (h *AnalysisHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.ListSheets(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   infos,
		"count":  len(infos),
	})
}

// DetectFields handles GET /api/files/{fileID}/fields. The optional
// "sheet" query parameter selects the worksheet.
func (h *AnalysisHandler) DetectFields(w http.ResponseWriter, r *http.Request) {
	detection, err := h.service.DetectFields(r.Context(), chi.URLParam(r, "fileID"), r.URL.Query().Get("sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   detection,
	})
}

// AnalyzeRequest is the body of POST /api/analyses.
type AnalyzeRequest struct {
	FileID string `json:"file_id" validate:"required"`
	Sheet  string `json:"sheet,omitempty" validate:"omitempty,sheetname"`

	analysis.Request
}

// CreateAnalysis handles POST /api/analyses.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file_id", req.FileID),
		slog.String("analysis_type", string(req.Type)))

	stored, err := h.service.Analyze(r.Context(), req.FileID, req.Sheet, req.Request)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stored,
	})
}

// GetAnalysis handles GET /api/analyses/{analysisID}.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	stored, err := h.service.GetAnalysis(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stored,
	})
}

// ParetoRequest is the body of POST /api/analyses/{analysisID}/pareto.
type ParetoRequest struct {
	Dimension analysis.Dimension `json:"dimension" validate:"required,oneof=profit amount quantity"`
}

// ReselectPareto handles POST /api/analyses/{analysisID}/pareto.
func (h *AnalysisHandler) ReselectPareto(w http.ResponseWriter, r *http.Request) {
	var req ParetoRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	pareto, err := h.service.ReselectPareto(r.Context(), chi.URLParam(r, "analysisID"), req.Dimension)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   pareto,
	})
}

// Export handles GET /api/analyses/{analysisID}/export. The "format"
// query parameter selects xlsx (default) or csv. The report is built
// into a buffer first so errors still produce a JSON problem response.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	var buf bytes.Buffer
	name, err := h.service.Export(r.Context(), chi.URLParam(r, "analysisID"), format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		infrastructure.WithError(h.logger, err).ErrorContext(r.Context(), "export write failed")
	}
}

// Units handles GET /api/units: the unit tokens a client may confirm
// for the quantity and amount columns.
func (h *AnalysisHandler) Units(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string][]string{
			"quantity": {analysis.UnitKilogram, analysis.UnitTon},
			"amount":   {analysis.UnitYuan, analysis.UnitWanYuan},
		},
	})
}

func (h *AnalysisHandler) formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apierrors.ErrValidation("file", "Multipart field \"file\" is required")
	}
	return file, header, nil
}
