package errs

import "strings"

// FieldError represents a field-level validation error.
//
//	{ "field": "display_name", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRedirect tells the client to navigate to Value.
	ActionTypeRedirect ActionType = "redirect"
	// ActionTypeRetry tells the client the request can be retried later,
	// e.g. once OBS is reachable again.
	ActionTypeRetry ActionType = "retry"
)

// Action is an optional instruction for the client UI.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
//   - Code: machine-friendly code (e.g. "QUIZ_INVALID_TRANSITION").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: the UI may show Message verbatim.
//   - Errors: per-field validation errors.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError. It does not compare fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// WithAction returns a copy of e carrying the given client action.
func (e *HTTPError) WithAction(action *Action) *HTTPError {
	clone := *e
	clone.Action = action
	return &clone
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
