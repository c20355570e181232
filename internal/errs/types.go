package errs

import (
	"net/http"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusUnauthorized),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewForbiddenError creates a 403 Forbidden HTTPError.
func NewForbiddenError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusForbidden),
		Message:  message,
		Status:   http.StatusForbidden,
		Override: override,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default "BAD_REQUEST" when non-nil; errors carries
// field-level validation failures.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewConflictError creates a 409 Conflict HTTPError. It is used when a
// request is valid but not allowed in the current state, such as locking
// quiz answers that were never opened.
func NewConflictError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusConflict)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusConflict,
		Override: override,
	}
}

// NewServiceUnavailableError creates a 503 HTTPError for a dependency that
// is down (OBS, Redis). The client is told it may retry.
func NewServiceUnavailableError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusServiceUnavailable),
		Message:  message,
		Status:   http.StatusServiceUnavailable,
		Override: override,
		Action: &Action{
			Type:    ActionTypeRetry,
			Message: "Try again once the dependency is reachable",
		},
	}
}

// NewPayloadTooLargeError creates a 413 HTTPError for oversized uploads.
func NewPayloadTooLargeError(message string) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusRequestEntityTooLarge),
		Message:  message,
		Status:   http.StatusRequestEntityTooLarge,
		Override: true,
	}
}

// NewTooManyRequestsError creates a 429 HTTPError for rate limited clients.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusTooManyRequests),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
		Action: &Action{
			Type:    ActionTypeRetry,
			Message: "Wait a moment before sending more requests",
		},
	}
}

// NewInternalServerError creates a generic 500. The real cause is logged,
// never sent to the client.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ValidationError converts a generic validation error into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}
