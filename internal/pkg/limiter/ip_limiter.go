/*
Package limiter throttles anonymous account provisioning per client IP.

Each address gets its own token bucket. Buckets that have refilled completely carry
no state worth keeping and are evicted periodically.
*/
package limiter

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"seasnap/internal/pkg/errs"
	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/resp"
)

// CleanupInterval is how often idle buckets are evicted.
const CleanupInterval = 3 * time.Minute

// PerIP holds one token bucket per client address.
type PerIP struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewPerIP allows each address limit events per second with bursts of burst.
// The eviction goroutine runs until Stop.
func NewPerIP(limit rate.Limit, burst int) *PerIP {
	p := &PerIP{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
		stop:    make(chan struct{}),
	}
	go p.evictLoop()
	return p
}

// Stop ends the eviction goroutine. It is safe to call more than once.
func (p *PerIP) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *PerIP) bucket(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[ip]
	if !ok {
		b = rate.NewLimiter(p.limit, p.burst)
		p.buckets[ip] = b
	}
	return b
}

// Allow takes a token for ip at now. When none is available it reports how long the
// caller should wait before the next token.
func (p *PerIP) Allow(ip string, now time.Time) (bool, time.Duration) {
	res := p.bucket(ip).ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// evictIdle drops buckets that are full at now.
func (p *PerIP) evictIdle(now time.Time) (removed, remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for ip, b := range p.buckets {
		if b.TokensAt(now) >= float64(p.burst) {
			delete(p.buckets, ip)
			removed++
		}
	}
	return removed, len(p.buckets)
}

func (p *PerIP) evictLoop() {
	t := time.NewTicker(CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-p.stop:
			return
		case now := <-t.C:
			removed, remaining := p.evictIdle(now)
			logx.Debug("Evicted idle rate limit buckets", "removed", removed, "remaining", remaining)
		}
	}
}

// clientIP keys requests by host. RealIP middleware upstream has already replaced
// RemoteAddr with the forwarded address when one is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint in seconds.
func (p *PerIP) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := p.Allow(clientIP(r), time.Now())
		if !ok {
			if wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			logx.Ctx(r.Context()).Warn().Dur("retry_after", wait).Msg("Provisioning rate limit exceeded")
			resp.Fail(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}
		next.ServeHTTP(w, r)
	})
}
