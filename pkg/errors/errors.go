package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeDataUnavailable represents missing rates, missing codes or missing settings
	ErrorTypeDataUnavailable ErrorType = "data_unavailable"
	// ErrorTypeParsing represents malformed documents (HTML, rate snapshots, settings JSON)
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeDOMQuery represents selector failures on malformed or foreign subtrees
	ErrorTypeDOMQuery ErrorType = "dom_query"
	// ErrorTypeHost represents failures reading the page location
	ErrorTypeHost ErrorType = "host"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeStorage represents settings storage errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// EngineError represents an error raised by one of the engine components
type EngineError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *EngineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeStorage, ErrorTypePublisher:
		return true
	default:
		return false
	}
}

// IsType reports whether err, or any error it wraps, is an EngineError of the given type
func IsType(err error, errType ErrorType) bool {
	var engineErr *EngineError
	if stderrors.As(err, &engineErr) {
		return engineErr.Type == errType
	}
	return false
}

// New creates a new EngineError
func New(errType ErrorType, component, message string, err error) *EngineError {
	return &EngineError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewDataUnavailable creates a new data-unavailable error
func NewDataUnavailable(component, message string, err error) *EngineError {
	return New(ErrorTypeDataUnavailable, component, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *EngineError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewDOMQuery creates a new DOM query error
func NewDOMQuery(component, message string, err error) *EngineError {
	return New(ErrorTypeDOMQuery, component, message, err)
}

// NewHost creates a new host environment error
func NewHost(component, message string, err error) *EngineError {
	return New(ErrorTypeHost, component, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(component, message string, err error) *EngineError {
	return New(ErrorTypeNetwork, component, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component string, duration time.Duration) *EngineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, component, message, nil)
}

// NewCache creates a new cache error
func NewCache(component, message string, err error) *EngineError {
	return New(ErrorTypeCache, component, message, err)
}

// NewStorage creates a new settings storage error
func NewStorage(component, message string, err error) *EngineError {
	return New(ErrorTypeStorage, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *EngineError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewValidation creates a new validation error
func NewValidation(component, message string) *EngineError {
	return New(ErrorTypeValidation, component, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *EngineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
