package schema

var emptyMap = map[string]any{}

var (
	ErrInternal = &Error{
		Type:    "generic.internal",
		Message: "An internal error occurred.",
		Details: emptyMap,
	}
	ErrNotFound = &Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
		Details: emptyMap,
	}
	ErrMethodNotAllowed = &Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
		Details: emptyMap,
	}
	ErrTooManyRequests = &Error{
		Type:    "access.tooManyRequests",
		Message: "Too many failed login attempts, try again later.",
		Details: emptyMap,
	}
	ErrUpstream = &Error{
		Type:    "upstream.platformFailure",
		Message: "The conferencing platform could not process the request.",
		Details: emptyMap,
	}
	ErrUpstreamTimeout = &Error{
		Type:    "upstream.timeout",
		Message: "The conferencing platform did not respond in time.",
		Details: emptyMap,
	}
)

// ErrorResponse represents the response structure sent by the broker API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}
