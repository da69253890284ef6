package choice

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is matched by registration failures caused by a
	// candidate whose model is not shaped like {value, checked}.
	ErrShapeMismatch = errors.New("choice: candidate is not a checkable choice")

	// ErrNameConflict is matched by registration failures caused by a
	// candidate carrying a name other than the group's.
	ErrNameConflict = errors.New("choice: candidate name conflicts with group name")
)

// RegistrationErrorKind classifies a RegistrationError.
type RegistrationErrorKind int

const (
	// ShapeMismatch means the candidate's model lacks a value paired with a
	// boolean checked flag.
	ShapeMismatch RegistrationErrorKind = iota + 1

	// NameConflict means the candidate has a non-empty name that differs
	// from the group's established name.
	NameConflict
)

// String returns the kind name.
func (k RegistrationErrorKind) String() string {
	switch k {
	case ShapeMismatch:
		return "ShapeMismatch"
	case NameConflict:
		return "NameConflict"
	}
	return "Unknown"
}

// RegistrationError is returned when a group refuses a candidate. The group
// is left exactly as it was before the call.
type RegistrationError struct {
	Kind RegistrationErrorKind

	// Tag is the group's kind, e.g. "radio-group".
	Tag string

	// Group is the group's name at the time of the failure.
	Group string

	// Member is the kind of member the group accepts, e.g. "radio".
	Member string

	// Name is the candidate's name (NameConflict).
	Name string

	// Model is the candidate's raw model (ShapeMismatch).
	Model any
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	switch e.Kind {
	case ShapeMismatch:
		return fmt.Sprintf(
			"the %s name=%q does not allow to register %s with .modelValue=%q - the modelValue should represent a type %s with { value: \"foo\", checked: false }",
			e.Tag, e.Group, e.Member, fmt.Sprint(e.Model), e.Member)
	case NameConflict:
		return fmt.Sprintf(
			"the %s name=%q does not allow to register %s with custom names (name=%q given)",
			e.Tag, e.Group, e.Member, e.Name)
	}
	return "choice: registration failed"
}

// Is makes RegistrationError match ErrShapeMismatch and ErrNameConflict.
func (e *RegistrationError) Is(target error) bool {
	switch target {
	case ErrShapeMismatch:
		return e.Kind == ShapeMismatch
	case ErrNameConflict:
		return e.Kind == NameConflict
	}
	return false
}
