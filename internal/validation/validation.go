// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in
// struct tags and extracts validation errors into a format the
// client can understand.
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// settingKeyRe matches setting keys such as "obs" or "overlay.lower_third".
var settingKeyRe = regexp.MustCompile(`^[a-z0-9_.-]{1,64}$`)

// Validator returns the shared validator instance.
//
// Field names in errors are the json names ("display_name", not
// "DisplayName") so the UI can map them straight onto form inputs.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "param", "query", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		_ = v.RegisterValidation("settingkey", func(fl validator.FieldLevel) bool {
			return settingKeyRe.MatchString(fl.Field().String())
		})

		instance = v
	})
	return instance
}

// Struct validates s with the shared validator.
func Struct(s any) error {
	return Validator().Struct(s)
}
