// Package core provides the normalized types and error taxonomy for the AI gateway.
package core

import (
	"fmt"
	"net/http"
)

// ErrorType classifies a gateway error so the route layer can map it to an
// HTTP status without string matching.
type ErrorType string

const (
	// ErrorTypeNotFound indicates the requested provider id is not configured
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeProviderDisabled indicates the provider exists but is disabled
	ErrorTypeProviderDisabled ErrorType = "provider_disabled_error"
	// ErrorTypeMissingCredential indicates the provider has no API key configured
	ErrorTypeMissingCredential ErrorType = "missing_credential_error"
	// ErrorTypeUnsupportedProvider indicates no adapter is registered for the provider id
	ErrorTypeUnsupportedProvider ErrorType = "unsupported_provider_error"
	// ErrorTypeInvalidRequest indicates a malformed client request (400)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeProvider indicates an upstream protocol error: non-success
	// status or an unexpected body shape (502)
	ErrorTypeProvider ErrorType = "provider_error"
	// ErrorTypeTransport indicates the upstream could not be reached (502)
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeTimeout indicates the upstream call exceeded its budget (504)
	ErrorTypeTimeout ErrorType = "timeout_error"
)

// GatewayError is the error type all gateway operations return.
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Provider   string    `json:"provider,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status code the route layer should send.
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeProviderDisabled, ErrorTypeMissingCredential,
		ErrorTypeUnsupportedProvider, ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeProvider, ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the wire shape sent to clients.
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":     e.Type,
			"message":  e.Message,
			"provider": e.Provider,
		},
	}
}

// NewNotFoundError reports a provider id absent from the configuration store.
func NewNotFoundError(providerID string) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeNotFound,
		Message:  fmt.Sprintf("provider not found: %s", providerID),
		Provider: providerID,
	}
}

// NewProviderDisabledError reports a provider whose enabled flag is off.
func NewProviderDisabledError(providerID string) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeProviderDisabled,
		Message:  fmt.Sprintf("provider is disabled: %s", providerID),
		Provider: providerID,
	}
}

// NewMissingCredentialError reports a provider without an API key.
func NewMissingCredentialError(providerID string) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeMissingCredential,
		Message:  fmt.Sprintf("API key not configured for: %s", providerID),
		Provider: providerID,
	}
}

// NewUnsupportedProviderError reports a descriptor with no registered adapter.
// Defensive: should not occur when descriptors are well-formed.
func NewUnsupportedProviderError(providerID string) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeUnsupportedProvider,
		Message:  fmt.Sprintf("unknown provider: %s", providerID),
		Provider: providerID,
	}
}

// NewInvalidRequestError creates a client error (400).
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeInvalidRequest,
		Message: message,
		Err:     err,
	}
}

// NewProviderError creates an upstream protocol error carrying the upstream
// status code and a truncated diagnostic body.
func NewProviderError(providerID string, statusCode int, message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeProvider,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Provider:   providerID,
		Err:        err,
	}
}

// NewTransportError creates an error for an unreachable upstream.
func NewTransportError(providerID string, err error) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeTransport,
		Message:  fmt.Sprintf("failed to reach upstream: %v", err),
		Provider: providerID,
		Err:      err,
	}
}

// NewTimeoutError creates an error for an upstream call that ran out of budget.
func NewTimeoutError(providerID string, err error) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeTimeout,
		Message:  "request timed out",
		Provider: providerID,
		Err:      err,
	}
}
