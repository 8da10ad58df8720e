package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidAnswerShape ErrorCode = "INVALID_ANSWER_SHAPE"
	ErrCodeInvalidCriteria    ErrorCode = "INVALID_CRITERIA"
	ErrCodeInvalidResults     ErrorCode = "INVALID_RESULTS"

	ErrCodeCatalogLoadFailed  ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeOutputEncoding ErrorCode = "OUTPUT_ENCODING_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape every worker reports. Cause keeps the
// underlying error reachable through errors.Is / errors.As.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata attaches a key/value that ends up in the BPMN error variables.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func NewInvalidAnswerShapeError(err error) *StandardError {
	return newError(ErrCodeInvalidAnswerShape, "Questionnaire answers have the wrong shape", causeText(err), false, err)
}

func NewInvalidCriteriaError(details string) *StandardError {
	return newError(ErrCodeInvalidCriteria, "Filter criteria are missing or malformed", details, false, nil)
}

func NewInvalidResultsError(details string) *StandardError {
	return newError(ErrCodeInvalidResults, "Matched records are missing or malformed", details, false, nil)
}

func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Catalog could not be parsed",
		fmt.Sprintf("source: %s, error: %s", source, causeText(err)), false, err)
}

func NewCatalogUnavailableError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Catalog backend unavailable",
		fmt.Sprintf("source: %s, error: %s", source, causeText(err)), true, err)
}

func NewCatalogQueryFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogQueryFailed, "Catalog query failed",
		fmt.Sprintf("source: %s, error: %s", source, causeText(err)), true, err)
}

func NewCatalogTimeoutError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogTimeout, "Catalog query timeout",
		fmt.Sprintf("source: %s", source), true, err)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Catalog cache unavailable", causeText(err), true, err)
}

func NewOutputEncodingError(err error) *StandardError {
	return newError(ErrCodeOutputEncoding, "Job output could not be encoded", causeText(err), false, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", causeText(err), false, err)
}

// BPMNErrorMapping names the BPMN error events the process model catches.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidAnswerShape: "INVALID_ANSWER_SHAPE",
	ErrCodeInvalidCriteria:    "INVALID_CRITERIA",
	ErrCodeInvalidResults:     "INVALID_RESULTS",
	ErrCodeCatalogLoadFailed:  "CATALOG_LOAD_FAILED",
	ErrCodeCatalogUnavailable: "CATALOG_UNAVAILABLE",
	ErrCodeCatalogQueryFailed: "CATALOG_QUERY_FAILED",
	ErrCodeCatalogTimeout:     "CATALOG_TIMEOUT",
	ErrCodeCacheUnavailable:   "CACHE_UNAVAILABLE",
	ErrCodeOutputEncoding:     "OUTPUT_ENCODING_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeCatalogQueryFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeCatalogTimeout:
		return 2

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
