package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is the minimum idle time before a user's bucket is dropped.
const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter throttles requests per authenticated user with a token bucket.
// Buckets idle longer than it takes them to refill are swept.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[int]*userLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewUserRateLimiter allows perMinute requests per user with the given burst.
// A non-positive perMinute disables limiting.
func NewUserRateLimiter(perMinute, burst int) *UserRateLimiter {
	limit := rate.Inf
	if burst < 1 {
		burst = 1
	}
	ttl := limiterIdleTTL
	if perMinute > 0 {
		every := time.Minute / time.Duration(perMinute)
		limit = rate.Every(every)
		// a bucket is only safe to forget once it would be full again
		if refill := every * time.Duration(burst); refill > ttl {
			ttl = refill
		}
	}
	return &UserRateLimiter{
		limiters: make(map[int]*userLimiter),
		limit:    limit,
		burst:    burst,
		idleTTL:  ttl,
		now:      time.Now,
	}
}

// Allow reports whether userID may make another request now.
func (l *UserRateLimiter) Allow(userID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	ul, ok := l.limiters[userID]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.lim.AllowN(now, 1)
}

func (l *UserRateLimiter) sweep(now time.Time) {
	for id, ul := range l.limiters {
		if now.Sub(ul.lastSeen) >= l.idleTTL {
			delete(l.limiters, id)
		}
	}
	l.lastSweep = now
}

// tracked returns the number of users holding a bucket.
func (l *UserRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Limit must run after Authenticate.
func (l *UserRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.Next()
			return
		}
		if !l.Allow(identity.UserID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}
