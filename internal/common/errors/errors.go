// Package errors provides standardized error handling for the shopping
// pipeline. Every stage failure maps to one of these codes; only
// construction failures ever surface to the API caller.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeReasoningService ErrorCode = "REASONING_SERVICE_ERROR"
	ErrCodeReasoningParse   ErrorCode = "REASONING_PARSE_ERROR"

	ErrCodeDiscoveryProvider ErrorCode = "DISCOVERY_PROVIDER_ERROR"
	ErrCodePipelineTimeout   ErrorCode = "PIPELINE_TIMEOUT"
	ErrCodeEmptyBatch        ErrorCode = "EMPTY_BATCH"

	ErrCodeAnalysisData ErrorCode = "ANALYSIS_DATA_ERROR"

	ErrCodeSearchLogFailed ErrorCode = "SEARCH_LOG_FAILED"
	ErrCodeCacheFailed     ErrorCode = "CACHE_FAILED"

	ErrCodePipelineInit ErrorCode = "PIPELINE_INIT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code        ErrorCode              `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Recoverable bool                   `json:"recoverable"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewReasoningServiceError wraps a transport or HTTP-level failure of
// the reasoning service. Always recovered by a stage fallback.
func NewReasoningServiceError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeReasoningService,
		Message:     "Reasoning service call failed",
		Details:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewReasoningParseError wraps a malformed or schema-violating
// reasoning-service response. Always recovered by a stage fallback.
func NewReasoningParseError(details string) *StandardError {
	return &StandardError{
		Code:        ErrCodeReasoningParse,
		Message:     "Reasoning service returned unusable output",
		Details:     details,
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewDiscoveryProviderError wraps one provider's failure; the provider
// contributes zero items and the batch continues.
func NewDiscoveryProviderError(provider string, err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeDiscoveryProvider,
		Message:     "Discovery provider failed",
		Details:     fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Recoverable: true,
		Metadata:    map[string]interface{}{"provider": provider},
		Timestamp:   time.Now().UTC(),
	}
}

// NewPipelineTimeoutError marks the discovery batch deadline expiring.
// Partial results proceed; never surfaced to the caller.
func NewPipelineTimeoutError(pending int) *StandardError {
	return &StandardError{
		Code:        ErrCodePipelineTimeout,
		Message:     "Discovery batch deadline expired",
		Details:     fmt.Sprintf("abandoned calls: %d", pending),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewEmptyBatchError marks the terminal no-products condition.
func NewEmptyBatchError() *StandardError {
	return &StandardError{
		Code:        ErrCodeEmptyBatch,
		Message:     "No products survived discovery",
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewAnalysisDataError wraps a non-numeric or missing field on one
// item; the item gets default values and the batch continues.
func NewAnalysisDataError(field string, err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeAnalysisData,
		Message:     "Item carried unusable analysis data",
		Details:     fmt.Sprintf("field: %s, error: %s", field, err.Error()),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSearchLogFailedError wraps a best-effort search log write failure.
func NewSearchLogFailedError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeSearchLogFailed,
		Message:     "Search log write failed",
		Details:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewCacheFailedError wraps a discovery cache failure; treated as a
// cache miss.
func NewCacheFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeCacheFailed,
		Message:     "Discovery cache operation failed",
		Details:     fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Recoverable: true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewPipelineInitError is the only unrecoverable error: the pipeline
// could not be constructed at all.
func NewPipelineInitError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodePipelineInit,
		Message:     "Pipeline construction failed",
		Details:     err.Error(),
		Recoverable: false,
		Timestamp:   time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRecoverable reports whether err is a StandardError the pipeline
// absorbs locally. Unknown errors are treated as recoverable analysis
// noise; only explicit init failures abort a request.
func IsRecoverable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Recoverable
	}
	return true
}

// CodeOf extracts the ErrorCode from err, or empty when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetErrorCategory returns the coarse category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "REASONING"):
		return "AI"
	case strings.Contains(codeStr, "DISCOVERY") || strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "BATCH"):
		return "DISCOVERY"
	case strings.Contains(codeStr, "ANALYSIS"):
		return "ANALYSIS"
	case strings.Contains(codeStr, "LOG") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	default:
		return "OTHER"
	}
}
