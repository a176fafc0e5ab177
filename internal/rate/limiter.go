package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

// Limiter decide si un request entra.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// WindowLimiter: fixed window de Max hits sobre un Counter.
type WindowLimiter struct {
	Counter Counter
	Prefix  string
	Max     int64
	Window  time.Duration
}

// NewWindowLimiter permite max hits por key y ventana, sobre c.
func NewWindowLimiter(c Counter, prefix string, max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{Counter: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.Prefix + key
	hits, err := l.Counter.Increment(ctx, k)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   max(l.Max-hits, 0),
		CurrentHits: hits,
	}
	if !res.Allowed {
		ttl, err := l.Counter.RemainingWindow(ctx, k)
		if err != nil || ttl <= 0 {
			ttl = l.Window
		}
		res.RetryAfter = ttl
	}
	return res, nil
}
