package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitStore is the sliding-window persistence behind the limiter.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}

// IdentifierFunc extracts the value a rule keys its window on, usually the
// client IP of the login form submission.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one sliding-window limit, e.g. auth_login_ip allowing
// LoginMaxAttempts per window per client IP.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter wraps the store with the console's throttling rules.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// limitDecision is the outcome of checking one rule for one request.
type limitDecision struct {
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// RateLimitedResponse is the 429 payload, shaped like the console's other
// error envelopes so the login form renders it the same way.
type RateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// NewRateLimiter builds the limiter middleware helper.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock injects a clock, for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier keys the window on the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimit enforces the given rules. Rules whose identifier cannot be
// resolved are skipped, and a store failure fails open: a broken redis
// must not lock every admin out of the console.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if len(active) == 0 || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		var tightest *limitDecision

		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			key := fmt.Sprintf("%s:%s", rule.Name, identifier)

			decision, err := rl.evaluate(c.Request.Context(), rule, key, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", identifier),
					zap.Error(err))
				continue
			}

			if tightest == nil || decision.tighterThan(*tightest) {
				snapshot := decision
				tightest = &snapshot
			}

			if !decision.allowed {
				rl.writeHeaders(c, decision)
				rl.reject(c, decision)
				return
			}
		}

		if tightest != nil {
			rl.writeHeaders(c, *tightest)
		}

		c.Next()
	}
}

func (rl *RateLimiter) evaluate(ctx context.Context, rule RateLimitRule, key string, now time.Time) (limitDecision, error) {
	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return limitDecision{}, err
	}

	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return limitDecision{}, err
	}

	oldest, hasAttempts, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return limitDecision{}, err
	}

	decision := limitDecision{
		allowed: true,
		limit:   rule.Limit,
		reset:   now.Add(rule.Window),
	}
	if hasAttempts {
		decision.reset = oldest.Add(rule.Window)
	}

	if count >= rule.Limit {
		decision.allowed = false
		decision.retryAfter = max(decision.reset.Sub(now), 0)
		return decision, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return limitDecision{}, err
	}

	decision.remaining = max(rule.Limit-count-1, 0)
	decision.retryAfter = max(decision.reset.Sub(now), 0)
	if !hasAttempts {
		decision.reset = now.Add(rule.Window)
	}

	return decision, nil
}

// tighterThan reports whether d should supply the response headers instead
// of current: a denial beats an allowance, then fewer remaining attempts,
// then the earlier reset.
func (d limitDecision) tighterThan(current limitDecision) bool {
	if !d.allowed && current.allowed {
		return true
	}
	if d.allowed != current.allowed {
		return false
	}
	if d.remaining != current.remaining {
		return d.remaining < current.remaining
	}
	return d.reset.Before(current.reset)
}

func (rl *RateLimiter) writeHeaders(c *gin.Context, d limitDecision) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(d.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.remaining, 0)))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.reset.Unix(), 10))

	if !d.allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(d)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, d limitDecision) {
	seconds := retrySeconds(d)

	c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
		Error:      fmt.Sprintf("too many attempts, try again in %d seconds", seconds),
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}

func retrySeconds(d limitDecision) int {
	return max(int(math.Ceil(d.retryAfter.Seconds())), 0)
}
