package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves, usually by calling Struct(req) and adding
// cross-field rules as CustomValidationErrors.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a validation issue that cannot be expressed with
// validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that
// satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds path params, query params and the JSON body into
// payload, then validates it. Failures become a 400 *errs.HTTPError.
//
// payload must be a pointer so Bind can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	return Validate(payload)
}

// Validate runs payload.Validate and converts failures into a 400
// *errs.HTTPError. It is used where the payload does not come from Bind,
// e.g. action params decoded by the dispatcher.
func Validate(payload Validatable) error {
	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindErrorMessage extracts the human part of an echo bind error.
func bindErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request payload"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "request", Error: err.Error()}}
	}

	for _, e := range validationErrors {
		field := fieldPath(e)
		var msg string

		switch e.Tag() {
		case "required", "required_if", "required_without":
			msg = "is required"

		case "min":
			if isLengthKind(e.Kind()) {
				msg = fmt.Sprintf("must have at least %s %s", e.Param(), unit(e.Kind()))
			} else {
				msg = fmt.Sprintf("must be at least %s", e.Param())
			}

		case "max":
			if isLengthKind(e.Kind()) {
				msg = fmt.Sprintf("must not exceed %s %s", e.Param(), unit(e.Kind()))
			} else {
				msg = fmt.Sprintf("must not exceed %s", e.Param())
			}

		case "gte":
			msg = fmt.Sprintf("must be greater than or equal to %s", e.Param())

		case "lte":
			msg = fmt.Sprintf("must be less than or equal to %s", e.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", e.Param())

		case "url", "http_url":
			msg = "must be a valid URL"

		case "hexcolor":
			msg = "must be a hex color such as #1e293b"

		case "uuid", "uuid4":
			msg = "must be a valid UUID"

		case "settingkey":
			msg = "must be 1-64 lowercase letters, digits, '.', '_' or '-'"

		case "dive":
			msg = "some items are invalid"

		default:
			if e.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, e.Tag(), e.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, e.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// fieldPath returns the namespace without the root struct name and without
// embedded struct names, e.g. "settings.poster_rotation.interval_seconds".
func fieldPath(e validator.FieldError) string {
	parts := strings.Split(e.Namespace(), ".")
	if len(parts) < 2 {
		return e.Field()
	}

	path := make([]string, 0, len(parts)-1)
	for i, part := range parts[1:] {
		// Embedded payloads have no json name and keep their Go type name.
		if i < len(parts)-2 && part != "" && unicode.IsUpper(rune(part[0])) {
			continue
		}
		path = append(path, part)
	}
	return strings.Join(path, ".")
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map || k == reflect.Array
}

func unit(k reflect.Kind) string {
	if k == reflect.String {
		return "characters"
	}
	return "items"
}

// uuidRegex matches the standard UUID format.
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID checks whether a string matches UUID format.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(uuid)
}
