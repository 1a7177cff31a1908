package store

import (
	"context"
	"errors"
	"time"

	"github.com/ronmurphy/window-manager-electron-sub001/internal/infrastructure/resilience"
)

// Observer receives the outcome of every guarded store call
type Observer func(op string, duration time.Duration, err error)

// Guarded wraps a Store so every call is bounded by a timeout and passes
// through a circuit breaker. ErrNotFound is a normal answer and does not
// count against the breaker.
type Guarded struct {
	inner    Store
	breaker  *resilience.Breaker
	observer Observer
}

// GuardOptions configures a guarded store
type GuardOptions struct {
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
	Observer    Observer
	// OnStateChange is forwarded to the breaker
	OnStateChange func(name string, from, to resilience.State)
}

// NewGuarded wraps inner
func NewGuarded(inner Store, opts GuardOptions) *Guarded {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return &Guarded{
		inner: inner,
		breaker: resilience.New("store", resilience.Settings{
			CallTimeout: opts.Timeout,
			OpenTimeout: opts.OpenTimeout,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: opts.OnStateChange,
		}),
		observer: opts.Observer,
	}
}

// BreakerState reports the state of the underlying breaker
func (g *Guarded) BreakerState() resilience.State {
	return g.breaker.State()
}

// Get reads key through the breaker
func (g *Guarded) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		out      []byte
		notFound error
	)
	err := g.call(ctx, "get", func(ctx context.Context) error {
		v, err := g.inner.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			notFound = err
			return nil
		}
		out = v
		return err
	})
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return out, nil
}

// Set writes key through the breaker
func (g *Guarded) Set(ctx context.Context, key string, value []byte) error {
	return g.call(ctx, "set", func(ctx context.Context) error {
		return g.inner.Set(ctx, key, value)
	})
}

// Delete removes key through the breaker
func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.call(ctx, "delete", func(ctx context.Context) error {
		return g.inner.Delete(ctx, key)
	})
}

// Keys lists keys through the breaker
func (g *Guarded) Keys(ctx context.Context) ([]string, error) {
	var out []string
	err := g.call(ctx, "keys", func(ctx context.Context) error {
		keys, err := g.inner.Keys(ctx)
		out = keys
		return err
	})
	return out, err
}

func (g *Guarded) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := g.breaker.Execute(ctx, fn)
	if g.observer != nil {
		g.observer(op, time.Since(start), err)
	}
	return err
}
