// Package ratelimit bounds login attempts per client identifier within a
// fixed window. Two backends share the same semantics: an in-process map for
// single-instance deployments and a Redis counter for shared state.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Policy is the ceiling applied to each client identifier.
// The MaxAttempts-th call in a window still passes; the next one fails.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Window: DefaultWindow}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}

// Limiter records one attempt for key and reports whether it is within policy.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
