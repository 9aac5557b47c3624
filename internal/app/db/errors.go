package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"seasnap/internal/app/account"
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// checkFields maps the users table check constraints to the profile field they guard.
var checkFields = map[string]struct {
	field     string
	violation account.Violation
}{
	"users_user_name_length":   {account.FieldUserName, account.ViolationTooLong},
	"users_profile_image_size": {account.FieldProfileImage, account.ViolationTooLarge},
}

func sqlState(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	pgErr, ok := sqlState(err)
	return ok && pgErr.Code == uniqueViolation
}

// IsCheckViolation reports whether err is a check constraint violation.
func IsCheckViolation(err error) bool {
	pgErr, ok := sqlState(err)
	return ok && pgErr.Code == checkViolation
}

// asValidationError turns a users check violation into the validation error the
// service would have raised. Other errors yield nil.
func asValidationError(err error) *account.ValidationError {
	if !IsCheckViolation(err) {
		return nil
	}
	pgErr, _ := sqlState(err)
	c, ok := checkFields[pgErr.ConstraintName]
	if !ok {
		return nil
	}
	return &account.ValidationError{Field: c.field, Violation: c.violation, Detail: "rejected by database"}
}
