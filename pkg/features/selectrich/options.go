package selectrich

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// InteractionMode selects platform specific keyboard behavior.
type InteractionMode int

const (
	// Windows moves the checked option together with the active one.
	Windows InteractionMode = iota

	// Mac only previews the active option; Enter commits it.
	Mac
)

// String returns "windows" or "mac".
func (m InteractionMode) String() string {
	if m == Mac {
		return "mac"
	}
	return "windows"
}

// ParseInteractionMode parses "windows", "mac" or "" (windows).
func ParseInteractionMode(s string) (InteractionMode, error) {
	switch s {
	case "", "windows":
		return Windows, nil
	case "mac":
		return Mac, nil
	}
	return Windows, fmt.Errorf("selectrich: unknown interaction mode %q", s)
}

// Option configures a Select.
type Option func(*Select)

// WithInteractionMode sets the interaction mode. Defaults to Windows.
func WithInteractionMode(m InteractionMode) Option {
	return func(s *Select) {
		s.mode = m
	}
}

// WithPresenter sets the overlay presenter. Defaults to a presenter that
// settles immediately.
func WithPresenter(p Presenter) Option {
	return func(s *Select) {
		if p != nil {
			s.presenter = p
		}
	}
}

// WithLabel sets the field label.
func WithLabel(label string) Option {
	return func(s *Select) {
		s.label = label
	}
}

// WithFieldName overrides the name used in validation messages.
func WithFieldName(name string) Option {
	return func(s *Select) {
		s.fieldName = name
	}
}

// WithGroupOptions passes options through to the underlying choice.Group.
func WithGroupOptions(opts ...choice.Option) Option {
	return func(s *Select) {
		s.groupOpts = append(s.groupOpts, opts...)
	}
}

// WithLogger sets the logger for the select and its group.
func WithLogger(l *slog.Logger) Option {
	return func(s *Select) {
		if l != nil {
			s.logger = l
		}
	}
}
