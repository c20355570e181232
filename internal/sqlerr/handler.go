package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of err, or Other when err is not an *Error.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// notFoundError records which table a missing row belongs to so the
// client message can name the entity.
type notFoundError struct {
	table string
	err   error
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("table:%s: %v", e.table, e.err)
}

func (e *notFoundError) Unwrap() error {
	return e.err
}

// WrapNotFound tags err with its table when it is a no-rows error.
// Other errors are returned unchanged.
//
//	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Guest])
//	if err != nil {
//		return nil, sqlerr.WrapNotFound("guests", err)
//	}
func WrapNotFound(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return &notFoundError{table: table, err: err}
	}
	return err
}

// IsNotFound reports whether err is (or wraps) a no-rows error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// generateErrorCode builds codes like THEME_ALREADY_EXISTS from the table
// name and violation type.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(singular(tableName))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	case InvalidText:
		action = "MALFORMED"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column when the constraint name
		// tells us which one it is.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case InvalidText:
		return "One or more values are malformed"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers "<entity>_id" columns, then the table name, then
// "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		return humanizeText(singular(tableName))
	}

	return "record"
}

// singular drops a trailing "s" ("quiz_questions" -> "quiz_question").
func singular(name string) string {
	if strings.HasSuffix(strings.ToLower(name), "s") && len(name) > 1 {
		return name[:len(name)-1]
	}
	return name
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation infers the column from constraint names
// shaped "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an application error.
//
//   - *errs.HTTPError: returned unchanged
//   - *pgconn.PgError: 400 for constraint violations, 500 otherwise
//   - no rows: 404 naming the entity when WrapNotFound tagged it
//   - anything else: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

		case UniqueViolation:
			columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName)
			if columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{
				{
					Field: strings.ToLower(sqlErr.ColumnName),
					Error: "is required",
				},
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case CheckViolation, InvalidText:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		default:
			return errs.NewInternalServerError()
		}
	}

	if IsNotFound(err) {
		var nf *notFoundError
		if errors.As(err, &nf) {
			entityName := getEntityName(nf.table, "")
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
