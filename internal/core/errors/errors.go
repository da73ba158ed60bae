package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidRequestError   = "invalid_request"
	HttpInvalidRangeError     = "invalid_range"
	HttpParseError            = "field_parse_failed"
	HttpResolveError          = "dimension_resolve_failed"
	HttpNotFoundError         = "not_found"
	HttpInvalidReferenceError = "invalid_reference"
)

// ErrorResponse is the error response body shared by all HTTP surfaces.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
