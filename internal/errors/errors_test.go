package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	err := NewSchemaError("t12.xlsx", "no line matching NOI in %d rows", 40)
	assert.Equal(t, "schema error in document t12.xlsx: no line matching NOI in 40 rows", err.Error())
	assert.Equal(t, "t12.xlsx", err.DocumentID)

	bare := &SchemaError{Reason: "empty table"}
	assert.Equal(t, "schema error: empty table", bare.Error())
}

func TestAsSchemaErrorUnwraps(t *testing.T) {
	inner := NewSchemaError("roll.csv", "zero parsable rows")
	wrapped := fmt.Errorf("normalize rent roll: %w", inner)

	se, ok := AsSchemaError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "roll.csv", se.DocumentID)
	assert.True(t, IsSchemaError(wrapped))

	_, ok = AsSchemaError(io.ErrUnexpectedEOF)
	assert.False(t, ok)
	assert.False(t, IsSchemaError(nil))
}

func TestSchemaViolationResponse(t *testing.T) {
	apiErr := SchemaViolation(NewSchemaError("t12.xlsx", "no NOI line"))

	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "SCHEMA_ERROR", apiErr.ErrorCode)

	details, ok := apiErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "t12.xlsx", details["document_id"])
	assert.Equal(t, "no NOI line", details["reason"])
}

func TestHandleErrorMapsSchemaErrorsTo422(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/underwrite", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, fmt.Errorf("run pipeline: %w", NewSchemaError("t12.xlsx", "no NOI line")))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "SCHEMA_ERROR", resp.Error.ErrorCode)
}

func TestHandleErrorMapsUnknownErrorsTo500(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/underwrite", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, io.ErrUnexpectedEOF)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "PIPELINE_FAILED")
}

func TestHandleErrorPassesAPIErrorsThrough(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/underwrite", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, ErrValidation("Months", "must be between 1 and 12"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	assert.Contains(t, rec.Body.String(), "Months")
}
