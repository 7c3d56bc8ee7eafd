// Package apierror defines the error envelopes returned by the API. Every
// 4xx/5xx body goes through here so clients can always count on a "detail"
// field and internals (SQL errors, stack traces) never leak out.
package apierror

type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field messages for 422 responses.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}
