// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/teams-backend/internal/core"
)

const (
	keyPrefix = "teams:ratelimit:"

	// TeamParam is the route parameter the default key function reads.
	TeamParam = "teamID"

	scopeTeam = "team"
	scopeUser = "user"
	scopeIP   = "ip"
)

var ErrRateLimited = errors.New("rate limited")

var decisionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "teams",
	Subsystem: "ratelimit",
	Name:      "decisions_total",
	Help:      "Rate limit decisions by bucket scope and outcome.",
}, []string{"scope", "outcome"})

// RateLimitConfig configures one limiter. KeyFunc defaults to
// KeyByTeam(TeamParam): a team route is bucketed per team, anything else
// per user and then per client address.
type RateLimitConfig struct {
	Limit      redis_rate.Limit
	KeyFunc    func(*http.Request) string
	FailOpen   bool
	BypassFunc func(*http.Request) bool
	Logger     *slog.Logger
}

// RateLimiter counts in Redis and drops to an in-process token bucket per
// key while Redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByTeam(TeamParam)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.config.BypassFunc != nil && rl.config.BypassFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := rl.config.KeyFunc(r)
		scope := keyScope(key)

		res, err := rl.allow(r.Context(), key)
		if err != nil {
			decisionCounter.WithLabelValues(scope, "error").Inc()
			if !rl.config.FailOpen {
				core.JSONError(w, core.NewAppError(err,
					"rate limiter unavailable", http.StatusServiceUnavailable, "UNAVAILABLE"))
				return
			}
			rl.config.Logger.WarnContext(r.Context(), "rate limiter failing open",
				"key", key,
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		writeLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			decisionCounter.WithLabelValues(scope, "limited").Inc()
			rl.config.Logger.DebugContext(r.Context(), "request rate limited",
				"scope", scope,
				"key", key,
				"retry_after", res.RetryAfter,
			)
			writeLimited(w, res)
			return
		}

		decisionCounter.WithLabelValues(scope, "allowed").Inc()
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err == nil {
		return res, nil
	}
	rl.config.Logger.DebugContext(ctx, "redis rate limit unavailable, using local bucket",
		"key", key,
		"error", err,
	)
	return rl.fallback.allow(key, rl.config.Limit)
}

// KeyByIP expects chi's RealIP to have already rewritten RemoteAddr.
func KeyByIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return keyPrefix + scopeIP + ":" + ip
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return keyPrefix + scopeUser + ":" + userID
	}
	return KeyByIP(r)
}

// KeyByTeam buckets requests against the team named in the route so one
// busy team cannot starve the rest. Outside a team route it keys by user.
func KeyByTeam(param string) func(*http.Request) string {
	return func(r *http.Request) string {
		if teamID := chi.URLParam(r, param); teamID != "" {
			return keyPrefix + scopeTeam + ":" + teamID
		}
		return KeyByUser(r)
	}
}

// BypassPaths skips limiting for exact path matches, e.g. health checks and
// metrics scrapes.
func BypassPaths(paths ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return slices.Contains(paths, r.URL.Path)
	}
}

func keyScope(key string) string {
	scope, _, ok := strings.Cut(strings.TrimPrefix(key, keyPrefix), ":")
	if !ok {
		return "custom"
	}
	switch scope {
	case scopeTeam, scopeUser, scopeIP:
		return scope
	}
	return "custom"
}

func writeLimitHeaders(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) {
	h := w.Header()
	h.Set("RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("RateLimit-Reset", strconv.Itoa(ceilSeconds(res.ResetAfter)))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

func writeLimited(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(ceilSeconds(res.RetryAfter), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(ErrRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

const (
	localSweepInterval = 5 * time.Minute
	localIdleTTL       = 10 * time.Minute
)

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter mirrors the Redis limit with one token bucket per key.
type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{buckets: make(map[string]*localBucket)}
	go l.sweep()
	return l
}

func (l *localLimiter) sweep() {
	ticker := time.NewTicker(localSweepInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.Sub(b.lastSeen) > localIdleTTL {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if limit.Rate <= 0 || limit.Period <= 0 {
		return nil, fmt.Errorf("local rate limit %s: invalid limit %v", key, limit)
	}
	interval := limit.Period / time.Duration(limit.Rate)
	now := time.Now()

	l.mu.Lock()
	if l.buckets == nil {
		l.buckets = make(map[string]*localBucket)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(interval), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(tokens), 0),
		RetryAfter: -1,
		ResetAfter: time.Duration((float64(limit.Burst) - tokens) * float64(interval)),
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration((1 - tokens) * float64(interval))
	}
	return res, nil
}

func PerMinute(requests, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: time.Minute,
	}
}
