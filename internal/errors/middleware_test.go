package errors

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_RecoversPanics(t *testing.T) {
	mw := NewErrorMiddleware(testHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestErrorMiddleware_RestoresRequestBody(t *testing.T) {
	mw := NewErrorMiddleware(testHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	var seen string
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/analyses", strings.NewReader(`{"analysis_type":"product"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, `{"analysis_type":"product"}`, seen)
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "redacts sensitive fields",
			body: `{"token":"abc123"}`,
			want: `{"token":"[REDACTED]"}`,
		},
		{
			name: "passes plain fields through",
			body: `{"dimension":"profit"}`,
			want: `{"dimension":"profit"}`,
		},
		{
			name: "non-json untouched",
			body: "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeRequestBody(tt.body))
		})
	}
}
