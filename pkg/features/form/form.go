package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

var (
	// ErrInvalid is matched by the error Submit returns for a form with
	// validation errors.
	ErrInvalid = errors.New("form: validation failed")

	// ErrDuplicateField is returned by Add for a second field with the same name.
	ErrDuplicateField = errors.New("form: duplicate field")

	// ErrUnnamedField is returned by Add for a field without a name.
	ErrUnnamedField = errors.New("form: field has no name")

	// ErrUnknownField is returned for operations on a missing field.
	ErrUnknownField = errors.New("form: unknown field")
)

// Field is a named choice field. *choice.Group and *selectrich.Select
// implement it.
type Field interface {
	Name() string
	ModelValue() any
	SetModelValue(v any)
	SerializedValue() any
	Feedback() choice.Feedback
}

// InvalidError lists the failing rules per field.
type InvalidError struct {
	Errors map[string][]string
}

func (e *InvalidError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("form: validation failed for %v", names)
}

// Is matches ErrInvalid.
func (e *InvalidError) Is(target error) bool { return target == ErrInvalid }

// Form is a set of named choice fields submitted together.
// A Form is not safe for concurrent use.
type Form struct {
	name    string
	fields  []Field
	byName  map[string]Field
	initial map[string]any

	errors     map[string][]string
	submitting bool

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates an empty form.
func New(name string, opts ...Option) *Form {
	f := &Form{
		name:    name,
		byName:  make(map[string]Field),
		initial: make(map[string]any),
		errors:  make(map[string][]string),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the form name.
func (f *Form) Name() string { return f.name }

// Add appends fields. Their current model values become the initial values
// used by Reset and IsDirty.
func (f *Form) Add(fields ...Field) error {
	for _, field := range fields {
		name := field.Name()
		if name == "" {
			return ErrUnnamedField
		}
		if _, ok := f.byName[name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateField, name)
		}
		f.fields = append(f.fields, field)
		f.byName[name] = field
		f.initial[name] = field.ModelValue()
	}
	return nil
}

// Field returns the field called name, or nil.
func (f *Form) Field(name string) Field { return f.byName[name] }

// Fields returns the fields in the order they were added.
func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Values returns the serialized value of every field.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		out[field.Name()] = field.SerializedValue()
	}
	return out
}

// ModelValues returns the model value of every field.
func (f *Form) ModelValues() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		out[field.Name()] = field.ModelValue()
	}
	return out
}

// Set assigns the model value of a field.
func (f *Form) Set(name string, v any) error {
	field, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	field.SetModelValue(v)
	return nil
}

// Reset restores every field to its initial value and clears errors.
func (f *Form) Reset() {
	for _, field := range f.fields {
		field.SetModelValue(f.initial[field.Name()])
	}
	f.errors = make(map[string][]string)
	f.submitting = false
}

// IsDirty reports whether any field differs from its initial value.
func (f *Form) IsDirty() bool {
	for _, field := range f.fields {
		if f.FieldDirty(field.Name()) {
			return true
		}
	}
	return false
}

// FieldDirty reports whether the named field differs from its initial value.
func (f *Form) FieldDirty(name string) bool {
	field, ok := f.byName[name]
	if !ok {
		return false
	}
	return !choice.Equal(field.ModelValue(), f.initial[name])
}

// Validate collects the error-severity feedback of every field and reports
// whether there was none.
func (f *Form) Validate() bool {
	all := make(map[string][]string)
	for _, field := range f.fields {
		var failed []string
		for rule, sev := range field.Feedback() {
			if sev == choice.SeverityError {
				failed = append(failed, rule)
			}
		}
		if len(failed) > 0 {
			sort.Strings(failed)
			all[field.Name()] = failed
		}
	}
	f.errors = all
	return len(all) == 0
}

// Errors returns the failing rules per field from the last Validate.
func (f *Form) Errors() map[string][]string {
	out := make(map[string][]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// FieldErrors returns the failing rules of one field.
func (f *Form) FieldErrors(name string) []string { return f.errors[name] }

// HasError reports whether the field failed validation.
func (f *Form) HasError(name string) bool { return len(f.errors[name]) > 0 }

// IsValid reports whether the last Validate found no errors.
func (f *Form) IsValid() bool { return len(f.errors) == 0 }

// IsSubmitting reports whether a Submit is in flight.
func (f *Form) IsSubmitting() bool { return f.submitting }

// Submit validates the form and saves its values to sink. A form with
// validation errors is not saved; the returned error then matches ErrInvalid
// and is an *InvalidError.
func (f *Form) Submit(ctx context.Context, sink Sink, opts ...SubmitOption) (Submission, error) {
	if !f.Validate() {
		return Submission{}, &InvalidError{Errors: f.Errors()}
	}

	sub := Submission{
		ID:          uuid.New(),
		Form:        f.name,
		SubmittedAt: f.now().UTC().Truncate(time.Millisecond),
		Values:      f.Values(),
	}
	for _, opt := range opts {
		opt(&sub)
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	if err := sink.Save(ctx, sub); err != nil {
		f.logger.Error("form: submit failed", "form", f.name, "submission", sub.ID, "error", err)
		return Submission{}, fmt.Errorf("form: save %s: %w", f.name, err)
	}
	f.logger.Info("form: submitted", "form", f.name, "submission", sub.ID)
	return sub, nil
}
