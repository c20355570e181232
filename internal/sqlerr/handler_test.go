package sqlerr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestHandleErrorUniqueViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "themes",
		ConstraintName: "themes_name_key",
	})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusBadRequest {
		t.Fatalf("status = %d", httpErr.Status)
	}
	if httpErr.Code != "THEME_ALREADY_EXISTS" {
		t.Fatalf("code = %q", httpErr.Code)
	}
	if httpErr.Message != "A Theme with this Name already exists" {
		t.Fatalf("message = %q", httpErr.Message)
	}
}

func TestHandleErrorNotNullCarriesFieldError(t *testing.T) {
	err := HandleError(&pgconn.PgError{Code: "23502", TableName: "guests", ColumnName: "display_name"})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if len(httpErr.Errors) != 1 || httpErr.Errors[0].Field != "display_name" {
		t.Fatalf("field errors = %+v", httpErr.Errors)
	}
}

func TestHandleErrorNotFound(t *testing.T) {
	err := HandleError(WrapNotFound("quiz_questions", pgx.ErrNoRows))

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusNotFound {
		t.Fatalf("status = %d", httpErr.Status)
	}
	if httpErr.Message != "Quiz Question not found" {
		t.Fatalf("message = %q", httpErr.Message)
	}
}

func TestHandleErrorPassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewForbiddenError("nope", false)
	if got := HandleError(original); got != original {
		t.Fatalf("HTTPError was re-wrapped")
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	var httpErr *errs.HTTPError
	if !errors.As(HandleError(errors.New("boom")), &httpErr) || httpErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500")
	}
}

func TestWrapNotFoundLeavesOtherErrors(t *testing.T) {
	other := errors.New("connection reset")
	if WrapNotFound("guests", other) != other {
		t.Fatalf("non no-rows error should be returned unchanged")
	}
	if WrapNotFound("guests", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	tests := map[string]string{
		"unique_profiles_name": "name",
		"guests_slug_key":      "slug",
		"whatever":             "",
		"":                     "",
	}
	for in, want := range tests {
		if got := extractColumnForUniqueViolation(in); got != want {
			t.Fatalf("extractColumnForUniqueViolation(%q) = %q, want %q", in, got, want)
		}
	}
}
