/*
Package account contains the server-side account model and the resolver that binds
device identifiers to anonymous accounts.

An Account is created the first time a device identifier is provisioned, is mutated only
by profile updates, and is never hard-deleted.
*/
package account

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MaxDisplayNameLength is the maximum number of characters (runes) in a display name.
	MaxDisplayNameLength = 10

	// MaxProfileImageBytes is the maximum size of an encoded profile image.
	MaxProfileImageBytes = 100_000
)

var (
	// ErrNotFound is returned when no account is bound to a device identifier.
	ErrNotFound = errors.New("account not found")

	// ErrDeviceTaken is returned by a Store when the device identifier is already bound.
	ErrDeviceTaken = errors.New("device id already bound to an account")

	// ErrInvalidDeviceID is returned when a device identifier has an unacceptable shape.
	ErrInvalidDeviceID = errors.New("invalid device id")
)

// Account is the server-side record of an anonymous user.
// JSON names follow the users table columns.
type Account struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	UserName     *string   `json:"user_name"`
	ProfileImage *string   `json:"profile_image"`
	CreatedBy    *string   `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedBy    *string   `json:"updated_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Clone returns a deep copy of a; the optional columns do not share storage with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.UserName = cloneString(a.UserName)
	cp.ProfileImage = cloneString(a.ProfileImage)
	cp.CreatedBy = cloneString(a.CreatedBy)
	cp.UpdatedBy = cloneString(a.UpdatedBy)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ProfileUpdate carries the optional fields of a profile update.
// A nil field is left unchanged; a pointer to the empty string clears the column.
type ProfileUpdate struct {
	DisplayName *string
	Image       *string
}

// Empty reports whether the update carries no fields.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.Image == nil
}

// Violation classifies a failed validation rule.
type Violation string

const (
	ViolationTooLong  Violation = "too_long"
	ViolationTooLarge Violation = "too_large"
	ViolationInvalid  Violation = "invalid"
)

// Field names used in validation errors; they match the request JSON names.
const (
	FieldUserName     = "user_name"
	FieldProfileImage = "profile_image"
)

// ValidationError reports a profile field that violates a limit. No write is attempted
// when it is returned.
type ValidationError struct {
	Field     string
	Violation Violation
	Detail    string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("validation failed: %s %s", e.Field, e.Violation)
	}
	return fmt.Sprintf("validation failed: %s %s: %s", e.Field, e.Violation, e.Detail)
}
