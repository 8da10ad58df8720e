package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = stderrors.New("connection refused")

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "shape error is terminal",
			err:         NewInvalidAnswerShapeError(stderrors.New("expected 9 answers")),
			wantCode:    "INVALID_ANSWER_SHAPE",
			wantRetries: 0,
		},
		{
			name:        "unavailable catalog retries",
			err:         NewCatalogUnavailableError("postgres", errBackend),
			wantCode:    "CATALOG_UNAVAILABLE",
			wantRetries: 3,
		},
		{
			name:        "timeout retries twice",
			err:         NewCatalogTimeoutError("elasticsearch", errBackend),
			wantCode:    "CATALOG_TIMEOUT",
			wantRetries: 2,
		},
		{
			name:        "unencodable output is terminal",
			err:         NewOutputEncodingError(stderrors.New("json: unsupported value: +Inf")),
			wantCode:    "OUTPUT_ENCODING_FAILED",
			wantRetries: 0,
		},
		{
			name:        "load failure is terminal",
			err:         NewCatalogLoadFailedError("csv", errBackend),
			wantCode:    "CATALOG_LOAD_FAILED",
			wantRetries: 0,
		},
		{
			name:        "unmapped code falls through",
			err:         NewInternalError(errBackend),
			wantCode:    "INTERNAL_ERROR",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestStandardError_MetadataReachesVariables(t *testing.T) {
	err := NewInvalidCriteriaError("minCC missing").WithMetadata("field", "minCC")

	vars := ConvertToBPMNError(err).ToErrorVariables()
	assert.Equal(t, "minCC", vars["field"])
	assert.Equal(t, "INVALID_CRITERIA", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NewCatalogQueryFailedError("postgres", errBackend))

	std := Normalize(wrapped)
	assert.Equal(t, ErrCodeCatalogQueryFailed, std.Code)
	assert.ErrorIs(t, std, errBackend)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeCatalogTimeout))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidAnswerShape))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	require.True(t, IsRetryableErrorCode(ErrCodeCatalogUnavailable))
	require.False(t, IsRetryableErrorCode(ErrCodeInvalidAnswerShape))
}
