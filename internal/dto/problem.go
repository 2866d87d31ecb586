package dto

const (
	ProblemTypeBadRequest   = "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	ProblemTypeUnauthorized = "https://tools.ietf.org/html/rfc9110#section-15.5.2"
	ProblemTypeForbidden    = "https://tools.ietf.org/html/rfc9110#section-15.5.4"
	ProblemTypeNotFound     = "https://tools.ietf.org/html/rfc9110#section-15.5.5"
	ProblemTypeTooMany      = "https://tools.ietf.org/html/rfc6585#section-4"
	ProblemTypeInternal     = "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.1"

	ValidationTitle = "One or more validation errors occurred."
	InternalTitle   = "Internal Server Error"
	InternalDetail  = "An unexpected error occurred while processing your request."
)

// Problem is an RFC 9457 problem details body.
type Problem struct {
	Type      string              `json:"type,omitempty"`
	Title     string              `json:"title"`
	Status    int                 `json:"status"`
	Detail    string              `json:"detail,omitempty"`
	Instance  string              `json:"instance,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}
