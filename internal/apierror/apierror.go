// Package apierror defines the error envelopes of the HTTP surface. Every
// 4xx/5xx answer of the sync and order endpoints goes through here, so ERP
// upstream errors and DB details never leak to a client verbatim.
package apierror

// APIError is the single-message envelope (busy cycle, upstream failure,
// order not found).
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries the per-field tags of a rejected request body,
// e.g. a measurement enqueue with a malformed order ID.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
