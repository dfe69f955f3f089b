package llm

import (
	"errors"
)

// Error represents a provider-neutral engine error.
type Error struct {
	Type        ErrorType
	Message     string
	Provider    string
	StatusCode  int
	ProviderErr error // Original provider-specific or wrapped error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeConfiguration        ErrorType = "configuration_error"
	ErrorTypeBudgetExceeded       ErrorType = "budget_exceeded"
	ErrorTypeTransport            ErrorType = "transport_error"
	ErrorTypeResponseParse        ErrorType = "response_parse_error"
	ErrorTypeStructuredExtraction ErrorType = "structured_extraction_error"
	ErrorTypeRunFailed            ErrorType = "run_failed"
	ErrorTypeRunTimeout           ErrorType = "run_timeout"
	ErrorTypeResourceState        ErrorType = "resource_state_error"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsBudgetExceededError checks if an error is a token budget error.
func IsBudgetExceededError(err error) bool {
	return hasType(err, ErrorTypeBudgetExceeded)
}

// IsTransportError checks if an error is a transport error.
func IsTransportError(err error) bool {
	return hasType(err, ErrorTypeTransport)
}

// IsResponseParseError checks if an error is a response parse error.
func IsResponseParseError(err error) bool {
	return hasType(err, ErrorTypeResponseParse)
}

// IsStructuredExtractionError checks if an error is a structured extraction error.
func IsStructuredExtractionError(err error) bool {
	return hasType(err, ErrorTypeStructuredExtraction)
}

// IsRunFailedError checks if an error is a failed run error.
func IsRunFailedError(err error) bool {
	return hasType(err, ErrorTypeRunFailed)
}

// IsRunTimeoutError checks if an error is a run timeout error.
func IsRunTimeoutError(err error) bool {
	return hasType(err, ErrorTypeRunTimeout)
}

// IsResourceStateError checks if an error is a resource state error.
func IsResourceStateError(err error) bool {
	return hasType(err, ErrorTypeResourceState)
}

func hasType(err error, t ErrorType) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == t
	}
	return false
}

// StatusCodeOf extracts the HTTP status code from an error, or 0 if none.
func StatusCodeOf(err error) int {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.StatusCode
	}
	return 0
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(message string) *Error {
	return &Error{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewBudgetExceededError creates a new token budget error.
func NewBudgetExceededError(message string) *Error {
	return &Error{
		Type:    ErrorTypeBudgetExceeded,
		Message: message,
	}
}

// NewTransportError creates a new transport error.
func NewTransportError(provider, message string, statusCode int, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeTransport,
		Message:     message,
		Provider:    provider,
		StatusCode:  statusCode,
		ProviderErr: providerErr,
	}
}

// NewResponseParseError creates a new response parse error.
func NewResponseParseError(provider, message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeResponseParse,
		Message:     message,
		Provider:    provider,
		ProviderErr: providerErr,
	}
}

// NewStructuredExtractionError creates a new structured extraction error.
// The wrapped error is the envelope-decode failure; the direct-decode
// failure that preceded it is carried in the message.
func NewStructuredExtractionError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeStructuredExtraction,
		Message:     message,
		ProviderErr: providerErr,
	}
}

// NewRunFailedError creates a new failed run error.
func NewRunFailedError(message string) *Error {
	return &Error{
		Type:    ErrorTypeRunFailed,
		Message: message,
	}
}

// NewRunTimeoutError creates a new run timeout error.
func NewRunTimeoutError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRunTimeout,
		Message:     message,
		ProviderErr: providerErr,
	}
}

// NewResourceStateError creates a new resource state error.
func NewResourceStateError(message string) *Error {
	return &Error{
		Type:    ErrorTypeResourceState,
		Message: message,
	}
}
