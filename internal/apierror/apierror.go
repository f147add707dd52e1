// Package apierror provides the error envelope returned by every 4xx/5xx
// response. Messages are passed through verbatim so clients can show them
// as-is; Detalhes carries field errors or the underlying cause.
package apierror

// APIError is the canonical error envelope: {"ok":false,"error":"...","detalhes":...}.
type APIError struct {
	Ok       bool        `json:"ok"`
	Mensagem string      `json:"error"`
	Detalhes interface{} `json:"detalhes,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Mensagem: msg}
}

// WithDetails attaches technical details shown in the client's expandable panel.
func WithDetails(msg string, detalhes interface{}) *APIError {
	return &APIError{Mensagem: msg, Detalhes: detalhes}
}

// NewValidation wraps per-field validator failures.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Mensagem: "dados inválidos", Detalhes: fields}
}
