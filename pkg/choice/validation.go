package choice

// Severity is the level of a validation result.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Feedback maps the identifiers of failing rules to their severity.
type Feedback map[string]Severity

// Has reports whether any rule failed with severity s.
func (f Feedback) Has(s Severity) bool {
	for _, sev := range f {
		if sev == s {
			return true
		}
	}
	return false
}

// Validator evaluates a settled model value. Implementations live outside
// this package; see pkg/features/rules.
type Validator interface {
	Validate(modelValue any) Feedback
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(modelValue any) Feedback

// Validate calls f(modelValue).
func (f ValidatorFunc) Validate(modelValue any) Feedback { return f(modelValue) }

// SetValidator replaces the group's validator and re-validates immediately.
func (g *Group) SetValidator(v Validator) {
	g.validator = v
	g.runValidation()
}

// Feedback returns a copy of the latest validation result.
func (g *Group) Feedback() Feedback {
	out := make(Feedback, len(g.feedback))
	for k, v := range g.feedback {
		out[k] = v
	}
	return out
}

// HasFeedbackFor reports whether the latest validation result contains a
// failure of severity s.
func (g *Group) HasFeedbackFor(s Severity) bool {
	return g.feedback.Has(s)
}

func (g *Group) runValidation() {
	if g.validator == nil {
		g.feedback = nil
		return
	}
	g.feedback = g.validator.Validate(g.ModelValue())
}
