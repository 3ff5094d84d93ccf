// Package bus is the synchronous in-process notification fan-out between the
// voting engine and its observers (audit log, live counters, dashboard).
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/awards/internal/domain"
	"github.com/marcelojr/awards/internal/platform/metrics"
)

// Listener reacts to a published notification. Listeners must be idempotent
// per actual cast/reset: delivery is at-least-once within a single call.
type Listener interface {
	Name() string
	Handle(ctx context.Context, n domain.Notification) error
}

// Bus invokes listeners synchronously, in registration order, inside the
// call that produced the notification. A listener error or panic is logged
// and counted but never reaches the publisher: a failing observer must not
// roll back an already-committed vote write.
type Bus struct {
	listeners []Listener
	logger    *slog.Logger

	// timeout bounds how long Publish waits per listener. Zero keeps the
	// observed behavior: Publish blocks until the listener returns, so a slow
	// observer directly extends the caller's latency.
	timeout time.Duration
}

type Option func(*Bus)

// WithListenerTimeout stops waiting for a listener after d. The listener
// goroutine keeps running to completion; only the publisher stops blocking.
func WithListenerTimeout(d time.Duration) Option {
	return func(b *Bus) { b.timeout = d }
}

func New(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe appends the listener. Registration order is dispatch order.
func (b *Bus) Subscribe(l Listener) {
	b.listeners = append(b.listeners, l)
}

func (b *Bus) Publish(ctx context.Context, n domain.Notification) {
	start := time.Now()
	for _, l := range b.listeners {
		b.dispatch(ctx, l, n)
	}
	metrics.ObservePublishDuration(n.Kind(), time.Since(start).Seconds())
}

func (b *Bus) dispatch(ctx context.Context, l Listener, n domain.Notification) {
	if b.timeout <= 0 {
		if err := b.invoke(ctx, l, n); err != nil {
			b.reportFailure(l, n, err)
		}
		return
	}

	lctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- b.invoke(lctx, l, n)
	}()

	select {
	case err := <-done:
		if err != nil {
			b.reportFailure(l, n, err)
		}
	case <-lctx.Done():
		b.reportFailure(l, n, fmt.Errorf("timed out after %s: %w", b.timeout, lctx.Err()))
	}
}

func (b *Bus) invoke(ctx context.Context, l Listener, n domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return l.Handle(ctx, n)
}

func (b *Bus) reportFailure(l Listener, n domain.Notification, err error) {
	metrics.IncListenerFailure(l.Name())
	b.logger.Error("listener failed", "listener", l.Name(), "notification", n.Kind(), "err", err)
}

var _ domain.Publisher = (*Bus)(nil)
