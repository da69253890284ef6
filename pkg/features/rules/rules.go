package rules

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// Rule is a single named check of a model value.
type Rule interface {
	// Name identifies the rule in choice.Feedback.
	Name() string

	// Severity is reported when the check fails.
	Severity() choice.Severity

	// Check returns true when modelValue passes. An error means the rule
	// could not be evaluated and is reported as a failure.
	Check(modelValue any) (bool, error)
}

// Option configures a built-in rule.
type Option func(*base)

// WithSeverity overrides the severity reported on failure.
func WithSeverity(s choice.Severity) Option {
	return func(b *base) {
		if s != "" {
			b.severity = s
		}
	}
}

// WithName overrides the rule name.
func WithName(name string) Option {
	return func(b *base) {
		if name != "" {
			b.name = name
		}
	}
}

type base struct {
	name     string
	severity choice.Severity
}

func newBase(name string, opts []Option) base {
	b := base{name: name, severity: choice.SeverityError}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b base) Name() string              { return b.name }
func (b base) Severity() choice.Severity { return b.severity }

type funcRule struct {
	base
	check func(selected []any) bool
}

func (r funcRule) Check(modelValue any) (bool, error) {
	return r.check(Selected(modelValue)), nil
}

// Required fails when nothing is selected.
func Required(opts ...Option) Rule {
	return funcRule{
		base:  newBase("Required", opts),
		check: func(selected []any) bool { return len(selected) > 0 },
	}
}

// MinSelected fails when fewer than n values are selected. An empty
// selection passes; combine with Required to demand one.
func MinSelected(n int, opts ...Option) Rule {
	return funcRule{
		base: newBase("MinSelected", opts),
		check: func(selected []any) bool {
			return len(selected) == 0 || len(selected) >= n
		},
	}
}

// MaxSelected fails when more than n values are selected.
func MaxSelected(n int, opts ...Option) Rule {
	return funcRule{
		base:  newBase("MaxSelected", opts),
		check: func(selected []any) bool { return len(selected) <= n },
	}
}

// OneOf fails when a selected value is not among allowed.
func OneOf(allowed []any, opts ...Option) Rule {
	return funcRule{
		base: newBase("OneOf", opts),
		check: func(selected []any) bool {
			for _, v := range selected {
				found := false
				for _, a := range allowed {
					if choice.Equal(v, a) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
	}
}

// Custom wraps fn as a rule.
func Custom(name string, fn func(modelValue any) bool, opts ...Option) Rule {
	return customRule{base: newBase(name, opts), fn: fn}
}

type customRule struct {
	base
	fn func(any) bool
}

func (r customRule) Check(modelValue any) (bool, error) { return r.fn(modelValue), nil }

// Selected returns the selected values of a model value: the elements of a
// multi-select value, the checked value of a single-select group, or nothing
// when the group is unchecked.
func Selected(modelValue any) []any {
	return choice.AsSequence(modelValue)
}

// variables is the environment shared by the expression rules.
func variables(modelValue any) map[string]any {
	selected := Selected(modelValue)
	value := modelValue
	if choice.IsUnchecked(value) {
		value = nil
	}
	return map[string]any{
		"value":    value,
		"selected": selected,
		"count":    len(selected),
	}
}

// Set is an ordered collection of rules. It implements choice.Validator.
type Set struct {
	rules  []Rule
	logger *slog.Logger
}

// New creates a Set of the given rules.
func New(rules ...Rule) *Set {
	return &Set{rules: rules, logger: slog.Default()}
}

// WithLogger sets the logger used to report rules that fail to evaluate.
func (s *Set) WithLogger(l *slog.Logger) *Set {
	if l != nil {
		s.logger = l
	}
	return s
}

// Add appends rules to the set.
func (s *Set) Add(rules ...Rule) *Set {
	s.rules = append(s.rules, rules...)
	return s
}

// Rules returns the rules in evaluation order.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Validate implements choice.Validator.
func (s *Set) Validate(modelValue any) choice.Feedback {
	fb := choice.Feedback{}
	for _, r := range s.rules {
		ok, err := r.Check(modelValue)
		if err != nil {
			s.logger.Error("rules: evaluation failed", "rule", r.Name(), "error", err)
			fb[r.Name()] = r.Severity()
			continue
		}
		if !ok {
			fb[r.Name()] = r.Severity()
		}
	}
	return fb
}

func asBool(engine string, out any) (bool, error) {
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rules: %s expression returned %T, want bool", engine, out)
	}
	return b, nil
}
