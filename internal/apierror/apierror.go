// Package apierror holds the JSON envelope of every 4xx/5xx response. Store
// and driver errors never reach clients; only Detail and a stable Codigo do.
package apierror

// APIError is the error body. Codigo is a stable snake_case identifier that
// clients can switch on; Detail is human readable (Spanish) and may change.
type APIError struct {
	Detail    string `json:"detail"`
	Codigo    string `json:"codigo,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Con returns a copy of e carrying a machine-readable code.
func (e *APIError) Con(codigo string) *APIError {
	out := *e
	out.Codigo = codigo
	return &out
}

// Interno is the opaque body of a 500; requestID lets support find the log line.
func Interno(requestID string) *APIError {
	return &APIError{Detail: "Error interno del servidor", Codigo: "interno", RequestID: requestID}
}

// ValidationError lists the failing fields by their JSON name and the rule
// that failed (required, min, datetime, ...).
type ValidationError struct {
	Detail string            `json:"detail"`
	Codigo string            `json:"codigo"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Codigo: "validacion", Fields: fields}
}
