package textserver

import (
	"golang.org/x/time/rate"

	"github.com/keydenlabs/keyden/pkg/cmap"
)

// ipLimiter applies a token-bucket command budget per remote IP.
// Buckets are created on first sight of an IP and kept for the life of
// the server.
type ipLimiter struct {
	limiters *cmap.Map[*rate.Limiter]
	limit    rate.Limit
	burst    int
}

// newIPLimiter returns nil when perSecond is zero or negative; a nil
// limiter admits everything.
func newIPLimiter(perSecond, burst int) *ipLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perSecond
	}
	return &ipLimiter{
		limiters: cmap.New[*rate.Limiter](),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// allow burns one token from the bucket for ip.
func (l *ipLimiter) allow(ip string) bool {
	lim, ok := l.limiters.Get(ip)
	if !ok {
		lim, _ = l.limiters.GetOrSet(ip, rate.NewLimiter(l.limit, l.burst))
	}
	return lim.Allow()
}
