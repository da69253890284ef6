package dispatch

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/vango-dev/choicegroup/pkg/dispatch Dispatcher


import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// Envelope is the wire form of one settled group change.
type Envelope struct {
	ID       uuid.UUID `json:"id"`
	GroupID  uint64    `json:"groupId"`
	Group    string    `json:"group"`
	Seq      uint64    `json:"seq"`
	Value    any       `json:"value"`
	Previous any       `json:"previous"`
	At       time.Time `json:"at"`
}

// NewEnvelope wraps c with a fresh id and timestamp.
func NewEnvelope(c choice.Change, at time.Time) Envelope {
	return Envelope{
		ID:       uuid.New(),
		GroupID:  c.GroupID,
		Group:    c.Group,
		Seq:      c.Seq,
		Value:    c.Value,
		Previous: c.Previous,
		At:       at.UTC(),
	}
}

// Encode returns the JSON form of e.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Dispatcher delivers envelopes.
type Dispatcher interface {
	Dispatch(ctx context.Context, env Envelope) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, env Envelope) error

// Dispatch calls f(ctx, env).
func (f DispatcherFunc) Dispatch(ctx context.Context, env Envelope) error {
	return f(ctx, env)
}

// Multi dispatches to every dispatcher in order. All dispatchers run even
// when one fails; the errors are joined.
type Multi []Dispatcher

// Dispatch implements Dispatcher.
func (m Multi) Dispatch(ctx context.Context, env Envelope) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every envelope.
var Discard Dispatcher = DispatcherFunc(func(context.Context, Envelope) error { return nil })
