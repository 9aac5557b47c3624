package handler

import (
	"errors"
	"net/http"

	"seasnap/internal/app/storage"
	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/resp"
)

// HandleAvatar redirects to a time-limited download URL of the account's mirrored
// profile image. It answers ErrAvatarNotFound when mirroring is disabled or no image exists.
func HandleAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.URL.Query().Get("device_id")
		if deviceID == "" {
			resp.Fail(w, r, errs.NewError(errs.ErrDeviceIDRequired))
			return
		}

		if deps.Avatars == nil {
			resp.Fail(w, r, errs.NewError(errs.ErrAvatarNotFound))
			return
		}

		acc, err := deps.Accounts.ResolveByDeviceID(r.Context(), deviceID)
		if err != nil {
			resp.Fail(w, r, accountError(r, err, errs.ErrUnknown))
			return
		}

		url, err := deps.Avatars.PresignAvatar(r.Context(), acc.ID, AvatarURLDuration)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.Fail(w, r, errs.NewError(errs.ErrAvatarNotFound))
				return
			}
			logx.Ctx(r.Context()).Error().Err(err).Str("account_id", acc.ID).Msg("avatar: presign failed")
			resp.Fail(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
