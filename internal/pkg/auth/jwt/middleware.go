package jwt

import (
	"context"
	"net/http"
	"strings"

	"seasnap/internal/pkg/logx"
)

type claimsKey struct{}

// Middleware attaches the claims of a valid bearer token to the request context.
// Requests without a usable token pass through unchanged, since every endpoint also
// accepts a bare device identifier.
func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := i.Parse(raw)
		if err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Msg("Ignoring access token")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// FromContext returns the claims attached by Middleware, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
