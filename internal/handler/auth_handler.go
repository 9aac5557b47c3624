/*
Package handler provides HTTP handler functions for anonymous provisioning and device-bound
account lookup and update.
*/
package handler

import (
	"net/http"

	"seasnap/internal/app/account"
	"seasnap/internal/pkg/auth/jwt"
	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/req"
	"seasnap/internal/pkg/resp"
)

type AnonymousInput struct {
	// DeviceID is the identifier to rebind; the server generates one when it is empty.
	DeviceID string `json:"device_id"`
}

type AnonymousOutput struct {
	AccountID   string `json:"account_id"`
	DeviceID    string `json:"device_id"`
	AccessToken string `json:"access_token,omitempty"`
}

// HandleAnonymous provisions an anonymous account for the supplied (or a generated)
// device identifier. An identifier that is already bound returns its existing account.
func HandleAnonymous(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input AnonymousInput
		if customErr := req.DecodeOptionalJSON(w, r, &input); customErr != nil {
			resp.Fail(w, r, customErr)
			return
		}

		out, err := deps.Accounts.Provision(r.Context(), input.DeviceID)
		if err != nil {
			resp.Fail(w, r, accountError(r, err, errs.ErrProvisionFailed))
			return
		}

		logx.Ctx(r.Context()).Info().Str("account_id", out.Account.ID).Msg("Anonymous account provisioned")

		resp.OK(w, r, AnonymousOutput{
			AccountID:   out.Account.ID,
			DeviceID:    out.Account.DeviceID,
			AccessToken: out.AccessToken,
		})
	}
}

type LookupInput struct {
	DeviceID string `json:"device_id"`
}

// HandleLookupUser returns the account row bound to a device identifier.
func HandleLookupUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LookupInput
		if customErr := req.DecodeJSON(w, r, &input); customErr != nil {
			resp.Fail(w, r, customErr)
			return
		}

		if input.DeviceID == "" {
			resp.Fail(w, r, errs.NewError(errs.ErrDeviceIDRequired))
			return
		}

		acc, err := deps.Accounts.ResolveByDeviceID(r.Context(), input.DeviceID)
		if err != nil {
			resp.Fail(w, r, accountError(r, err, errs.ErrUnknown))
			return
		}

		resp.OK(w, r, acc)
	}
}

type UpdateUserInput struct {
	DeviceID     string  `json:"device_id"`
	UserName     *string `json:"user_name"`
	ProfileImage *string `json:"profile_image"`
}

// HandleUpdateUser validates and applies a profile update to the account bound to the
// device identifier. An access token, when presented, must belong to the same device.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input UpdateUserInput
		if customErr := req.DecodeJSON(w, r, &input); customErr != nil {
			resp.Fail(w, r, customErr)
			return
		}

		if input.DeviceID == "" {
			resp.Fail(w, r, errs.NewError(errs.ErrDeviceIDRequired))
			return
		}

		if identity, ok := jwt.FromContext(r.Context()); ok && identity.DeviceID != input.DeviceID {
			logx.Ctx(r.Context()).Warn().Str("account_id", identity.AccountID).Msg("update_user: token bound to a different device")
			resp.Fail(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		imageLen := 0
		if input.ProfileImage != nil {
			imageLen = len(*input.ProfileImage)
		}
		logx.Ctx(r.Context()).Debug().
			Bool("has_user_name", input.UserName != nil).
			Int("profile_image_length", imageLen).
			Msg("update_user called")

		acc, err := deps.Accounts.UpdateProfile(r.Context(), input.DeviceID, account.ProfileUpdate{
			DisplayName: input.UserName,
			Image:       input.ProfileImage,
		})
		if err != nil {
			resp.Fail(w, r, accountError(r, err, errs.ErrUnknown))
			return
		}

		resp.OK(w, r, acc)
	}
}
