package logx

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// healthPath requests are logged at debug level so probes do not flood the access log.
const healthPath = "/health"

// anonymizeIP masks a client address to its /24 (IPv4) or /64 (IPv6) network.
// Loopback addresses are kept as they are.
func anonymizeIP(remoteAddr string) string {
	var addr netip.Addr
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		addr = ap.Addr()
	} else if a, err := netip.ParseAddr(remoteAddr); err == nil {
		addr = a
	} else {
		return "unknown_ip"
	}

	addr = addr.Unmap()
	if addr.IsLoopback() {
		return addr.String()
	}

	bits := 64
	if addr.Is4() {
		bits = 24
	}
	return netip.PrefixFrom(addr, bits).Masked().Addr().String()
}

func completionLevel(path string, status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	case path == healthPath:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// RequestLogger attaches a request-scoped logger to every request and logs its completion.
// Only the path is recorded because query strings can carry device identifiers. The global
// logger is copied when the middleware is built, so later re-initialisation does not race
// with requests in flight.
func RequestLogger() func(next http.Handler) http.Handler {
	base := *Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger := base.With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", anonymizeIP(r.RemoteAddr)).
				Str("request_method", r.Method).
				Str("request_path", r.URL.Path).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			logger.WithLevel(completionLevel(r.URL.Path, ww.Status())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("Request completed")
		})
	}
}
