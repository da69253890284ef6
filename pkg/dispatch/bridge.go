package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// Bridge is a choice.Listener that forwards changes to a Dispatcher.
// Dispatch happens synchronously on the notifying goroutine, bounded by the
// bridge timeout; failures are logged and never reach the group.
type Bridge struct {
	d       Dispatcher
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithTimeout bounds each dispatch. Defaults to 5s; zero disables the bound.
func WithTimeout(d time.Duration) BridgeOption {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// WithBridgeLogger sets the logger for dispatch failures.
func WithBridgeLogger(l *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) BridgeOption {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBridge creates a bridge to d.
func NewBridge(d Dispatcher, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		d:       d,
		timeout: 5 * time.Second,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach subscribes the bridge to g and returns the unsubscribe function.
func (b *Bridge) Attach(g *choice.Group) func() {
	return g.Subscribe(b)
}

// ModelValueChanged implements choice.Listener.
func (b *Bridge) ModelValueChanged(c choice.Change) {
	ctx := context.Background()
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	env := NewEnvelope(c, b.now())
	if err := b.d.Dispatch(ctx, env); err != nil {
		b.logger.Error("dispatch: delivery failed",
			"group", c.Group, "seq", c.Seq, "envelope", env.ID, "error", err)
	}
}
