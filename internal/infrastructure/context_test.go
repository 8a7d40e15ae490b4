package infrastructure

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTraceID_Unique(t *testing.T) {
	a := GenerateTraceID()
	b := GenerateTraceID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(slog.New(slog.NewJSONHandler(&buf, nil)), "session_store")

	logger.Info("hello")

	assert.Contains(t, buf.String(), `"component":"session_store"`)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithError(logger, assert.AnError).Warn("operation failed")
	assert.Contains(t, buf.String(), assert.AnError.Error())

	// A nil error must not add an error field.
	buf.Reset()
	WithError(logger, nil).Info("fine")
	assert.NotContains(t, buf.String(), `"error"`)
}
