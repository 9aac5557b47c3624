package errs

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrUserNotFound)

	assert.Equal(t, ErrUserNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.NotEmpty(t, err.Message)
}

func TestNewError_FormatsDetails(t *testing.T) {
	err := NewError(ErrUserNameTooLong, 10)

	assert.Equal(t, "User name must be 10 characters or less.", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(987654)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrUserNameTooLong, 3)
	again := NewError(ErrUserNameTooLong, 10)

	assert.Contains(t, again.Message, "10")
}

func TestWithField(t *testing.T) {
	base := NewError(ErrProfileImageTooLarge)
	withField := base.WithField("profile_image")

	assert.Equal(t, "profile_image", withField.Field)
	assert.Empty(t, base.Field)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewError(ErrRateLimitExceeded))

	ce, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrRateLimitExceeded, ce.Code)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestCustomError_Error(t *testing.T) {
	assert.Equal(t, "code 2201: User not found.", NewError(ErrUserNotFound).Error())
	assert.Equal(t, "code 2102 (profile_image): Profile image is too large.",
		NewError(ErrProfileImageTooLarge).WithField("profile_image").Error())
}

func TestErrorMap_Consistent(t *testing.T) {
	for code, e := range errorMap {
		assert.Equal(t, code, e.Code)
		assert.NotZero(t, e.Status, "code %d", code)
		assert.NotEmpty(t, e.Message, "code %d", code)
	}
}
