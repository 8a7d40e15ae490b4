package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescope/internal/config"
	apierrors "salescope/internal/errors"
	appmw "salescope/internal/middleware"
	"salescope/internal/services"
)

const sampleCSV = `产品名称,客户名称,数量,销售金额,毛利
螺纹钢,华东贸易,100,60,5
线材,华北钢铁,50,30,-2
螺纹钢,华北钢铁,100,60,5
`

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Upload.Dir = t.TempDir()

	store := services.NewSessionStore(cfg.Upload.SessionTTL, logger, nil)
	service := services.NewAnalysisService(cfg, store, nil, logger)

	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := appmw.NewValidationMiddleware(logger, errorHandler)
	handler := NewAnalysisHandler(service, validator, logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	return r
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func uploadFile(t *testing.T, router chi.Router) string {
	t.Helper()
	body, contentType := multipartUpload(t, "sales.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func createAnalysis(t *testing.T, router chi.Router, fileID string) string {
	t.Helper()
	payload := `{"file_id":"` + fileID + `","analysis_type":"product","units":{"quantity":"t","amount":"wan_yuan"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	return resp.Data.ID
}

func TestUpload(t *testing.T) {
	router := testRouter(t)

	fileID := uploadFile(t, router)
	assert.NotEmpty(t, fileID)
}

func TestUpload_MissingFileField(t *testing.T) {
	router := testRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "sales"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartUpload(t, "report.pdf", "not a spreadsheet")
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestListSheets(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+fileID+"/sheets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
		Data  []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Sheet1", resp.Data[0].Name)
}

func TestListSheets_UnknownFile(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/files/unknown/sheets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestDetectFields(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/files/"+fileID+"/fields", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "产品名称", resp.Data.Fields["product"])
	assert.Equal(t, "毛利", resp.Data.Fields["profit"])
}

func TestCreateAnalysis(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)

	analysisID := createAnalysis(t, router, fileID)

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+analysisID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Result struct {
				Entities []struct {
					Name string `json:"name"`
				} `json:"entities"`
			} `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Result.Entities, 2)
	assert.Equal(t, "螺纹钢", resp.Data.Result.Entities[0].Name)
}

func TestCreateAnalysis_InvalidType(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)

	payload := `{"file_id":"` + fileID + `","analysis_type":"supplier","units":{"quantity":"t","amount":"wan_yuan"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAnalysis_MissingColumns(t *testing.T) {
	router := testRouter(t)

	body, contentType := multipartUpload(t, "bare.csv", "甲,乙\n1,2\n")
	upReq := httptest.NewRequest(http.MethodPost, "/api/files", body)
	upReq.Header.Set("Content-Type", contentType)
	upRec := httptest.NewRecorder()
	router.ServeHTTP(upRec, upReq)
	require.Equal(t, http.StatusCreated, upRec.Code)

	var upResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(upRec.Body.Bytes(), &upResp))

	payload := `{"file_id":"` + upResp.Data.ID + `","analysis_type":"product","units":{"quantity":"t","amount":"wan_yuan"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/fields/missing", problem["type"])
	assert.NotEmpty(t, problem["missing_roles"])
}

func TestReselectPareto(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)
	analysisID := createAnalysis(t, router, fileID)

	req := httptest.NewRequest(http.MethodPost, "/api/analyses/"+analysisID+"/pareto", strings.NewReader(`{"dimension":"quantity"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Dimension string  `json:"dimension"`
			Total     float64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quantity", resp.Data.Dimension)
	assert.InDelta(t, 250.0, resp.Data.Total, 1e-9)
}

func TestReselectPareto_BadDimension(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)
	analysisID := createAnalysis(t, router, fileID)

	req := httptest.NewRequest(http.MethodPost, "/api/analyses/"+analysisID+"/pareto", strings.NewReader(`{"dimension":"weight"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)
	analysisID := createAnalysis(t, router, fileID)

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+analysisID+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "analysis_product_")
	assert.NotZero(t, rec.Body.Len())
}

func TestExport_CSV(t *testing.T) {
	router := testRouter(t)
	fileID := uploadFile(t, router)
	analysisID := createAnalysis(t, router, fileID)

	req := httptest.NewRequest(http.MethodGet, "/api/analyses/"+analysisID+"/export?format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestUnits(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string][]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"kg", "t"}, resp.Data["quantity"])
	assert.Equal(t, []string{"yuan", "wan_yuan"}, resp.Data["amount"])
}

func TestHealthCheck(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := services.NewSessionStore(0, logger, nil)
	handler := NewHealthHandler(store, "1.0.0", logger)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "1.0.0", resp["version"])
}
