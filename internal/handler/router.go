/*
Package handler exposes the SeaSnap account API over HTTP.

Every route answers with the resp envelope. Requests may carry an access token, which is
attached to the context when valid but never required: the device identifier in the body
is the primary key for every account operation.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"seasnap/internal/configs"
	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/resp"
)

// corsOptions opens the API to any origin in development and to the configured
// origins otherwise. Outside development an empty list refuses every cross-origin request.
func corsOptions(cfg *configs.AppConfig) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	switch {
	case cfg.IsDevelopment():
		opts.AllowedOrigins = []string{"*"}
	case len(cfg.AllowedOrigins) == 0:
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return opts
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	resp.OK(w, r, map[string]string{"status": "ok", "service": "SeaSnap Server"})
}

// Router builds the HTTP handler for the whole API.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		cors.New(corsOptions(deps.Config)).Handler,
		middleware.RequestID,
		middleware.RealIP,
		logx.RequestLogger(),
		middleware.Recoverer,
		middleware.CleanPath,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp.Fail(w, r, errs.NewError(errs.ErrRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		resp.Fail(w, r, errs.NewError(errs.ErrMethodNotAllowed))
	})

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		if deps.Tokens != nil {
			r.Use(deps.Tokens.Middleware)
		}

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if deps.ProvisionLimiter != nil {
					r.Use(deps.ProvisionLimiter.Middleware)
				}
				r.Post("/anonymous", HandleAnonymous(deps))
			})

			r.Post("/user", HandleLookupUser(deps))
			r.Put("/user", HandleUpdateUser(deps))
			r.Get("/user/avatar", HandleAvatar(deps))
		})

		r.Get("/season", HandleSeason(deps))
	})

	return r
}
