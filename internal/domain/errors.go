package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeGatewayTimeout    = "GATEWAY_TIMEOUT"
	ErrCodeGatewaySchema     = "GATEWAY_SCHEMA_INVALID"
	ErrCodeTransportFailure  = "TRANSPORT_FAILURE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidSeverity           = NewDomainError(ErrCodeValidation, "invalid severity level")
	ErrInvalidContradictionLevel = NewDomainError(ErrCodeValidation, "invalid contradiction level")
	ErrInvalidConfidenceScore    = NewDomainError(ErrCodeValidation, "confidence score must be between 0 and 1")
	ErrInvalidSentimentScore     = NewDomainError(ErrCodeValidation, "sentiment score must be between -1 and 1")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrCompanyNotFound  = NewDomainError(ErrCodeNotFound, "company not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrAlertNotFound    = NewDomainError(ErrCodeNotFound, "alert not found")
)

// Already exists errors
var (
	ErrCompanyAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "company already exists")
)

// Index errors
var (
	ErrDimensionMismatch = NewDomainError(ErrCodeDimensionMismatch, "vector dimension does not match index")
)

// Gateway errors. These are always absorbed by the fallback scorer and
// never returned from Analyze.
var (
	ErrGatewayTimeout       = NewDomainError(ErrCodeGatewayTimeout, "reasoning provider timed out")
	ErrGatewaySchemaInvalid = NewDomainError(ErrCodeGatewaySchema, "reasoning provider returned an invalid response")
	ErrGatewayUnconfigured  = NewDomainError(ErrCodeGatewayTimeout, "no reasoning provider configured")
)

// Transport errors
var (
	ErrTransportFailure = NewDomainError(ErrCodeTransportFailure, "realtime connection failed")
)
