package handler

import (
	"errors"
	"net/http"

	"seasnap/internal/app/account"
	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
)

// accountError maps account resolver errors onto response errors.
// Unclassified errors are logged here and reported as ErrUnknown.
func accountError(r *http.Request, err error, fallback int) *errs.CustomError {
	var verr *account.ValidationError

	switch {
	case errors.Is(err, account.ErrNotFound):
		return errs.NewError(errs.ErrUserNotFound)
	case errors.Is(err, account.ErrInvalidDeviceID):
		return errs.NewError(errs.ErrDeviceIDInvalid)
	case errors.As(err, &verr):
		return validationError(verr)
	}

	logx.Ctx(r.Context()).Error().Err(err).Msg("Account operation failed")
	return errs.NewError(fallback)
}

func validationError(verr *account.ValidationError) *errs.CustomError {
	var e *errs.CustomError

	switch {
	case verr.Field == account.FieldUserName:
		e = errs.NewError(errs.ErrUserNameTooLong, account.MaxDisplayNameLength)
	case verr.Violation == account.ViolationTooLarge:
		e = errs.NewError(errs.ErrProfileImageTooLarge)
	default:
		e = errs.NewError(errs.ErrProfileImageInvalid)
	}

	return e.WithField(verr.Field)
}
