package handler

import (
	"net/http"
	"time"

	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/req"
	"seasnap/internal/pkg/resp"
)

// HandleSeason returns the season and its keywords for the month query parameter,
// or for the current server month when it is omitted.
func HandleSeason(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, _, err := req.IntQuery(r, "month", 1, 12)
		if err != nil {
			resp.Fail(w, r, errs.NewError(errs.ErrInvalidMonth))
			return
		}

		overview, err := deps.Seasons.ForMonth(r.Context(), time.Month(m))
		if err != nil {
			logx.Ctx(r.Context()).Error().Err(err).Msg("season: overview failed")
			resp.Fail(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.OK(w, r, overview)
	}
}
