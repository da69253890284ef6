package choice

import "log/slog"

// Option configures a Group.
type Option func(*Group)

// WithName establishes the group name up front. Members with a different
// explicit name are then rejected.
func WithName(name string) Option {
	return func(g *Group) {
		if name != "" {
			g.name, g.named = name, true
		}
	}
}

// WithValue sets an initial model value. It is held back until the members
// it refers to are registered, or until Declare ends the initial
// registration, and then applied inside the registering batch. Values that
// still have no member wait for a matching member to register.
func WithValue(v any) Option {
	return func(g *Group) {
		g.pending, g.hasPending = v, true
	}
}

// WithValidator sets the validator run after every settled change.
func WithValidator(v Validator) Option {
	return func(g *Group) {
		g.validator = v
	}
}

// WithListener subscribes l from the start.
func WithListener(l Listener) Option {
	return func(g *Group) {
		if l != nil {
			g.listeners = append(g.listeners, listenerEntry{id: nextID(), l: l})
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Group) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDisabled creates the group disabled.
func WithDisabled(disabled bool) Option {
	return func(g *Group) {
		g.disabled = disabled
	}
}

// WithReadOnly creates the group read-only.
func WithReadOnly(readOnly bool) Option {
	return func(g *Group) {
		g.readOnly = readOnly
	}
}

// WithAutoCheckFirst makes a single-select group check its first member
// whenever registration settles with nothing checked.
func WithAutoCheckFirst() Option {
	return func(g *Group) {
		g.autoFirst = true
	}
}

// WithTag names the group kind and member kind used in registration errors,
// e.g. WithTag("radio-group", "radio").
func WithTag(tag, member string) Option {
	return func(g *Group) {
		g.tag, g.member = tag, member
	}
}
