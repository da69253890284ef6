package choice

// NewCheckboxGroup creates a multi-select group.
func NewCheckboxGroup(name string, opts ...Option) *Group {
	base := []Option{WithTag("checkbox-group", "checkbox"), WithName(name)}
	return New(ModeMulti, append(base, opts...)...)
}

// NewRadioGroup creates a single-select group.
func NewRadioGroup(name string, opts ...Option) *Group {
	base := []Option{WithTag("radio-group", "radio"), WithName(name)}
	return New(ModeSingle, append(base, opts...)...)
}
