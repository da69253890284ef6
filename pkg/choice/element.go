package choice

import "sync/atomic"

// Element is a single selectable unit: a value with a checked flag and a name.
//
// An Element is owned by whatever container created it. A Group only keeps a
// reference while the element is registered, and all checked writes on a
// registered element are routed through that group.
type Element struct {
	id       uint64
	model    any
	pair     Pair
	shaped   bool
	name     string
	label    string
	disabled bool

	// inherited is set when name was assigned by a group, which takes it back
	// on Deregister.
	inherited bool

	group atomic.Pointer[Group]
}

// ElementOption configures an Element.
type ElementOption func(*Element)

// Checked marks the element as initially checked.
func Checked() ElementOption {
	return func(e *Element) {
		e.pair.Checked = true
	}
}

// Named sets an explicit name on the element.
func Named(name string) ElementOption {
	return func(e *Element) {
		e.name = name
	}
}

// Labeled sets a human readable label, used by select invokers to display
// the checked option.
func Labeled(label string) ElementOption {
	return func(e *Element) {
		e.label = label
	}
}

// Disabled marks the element as disabled. Disabled elements ignore Click.
func Disabled() ElementOption {
	return func(e *Element) {
		e.disabled = true
	}
}

// NewChoice creates an element with the given choice value, unchecked unless
// the Checked option is passed.
func NewChoice(value any, opts ...ElementOption) *Element {
	e := &Element{id: nextID(), shaped: true}
	e.pair.Value = value
	for _, opt := range opts {
		opt(e)
	}
	e.model = e.pair
	return e
}

// NewElement creates an element from a raw model value. The model must have
// the {value, checked} shape (see AsPair) for the element to be accepted by a
// group; any other model is rejected at registration with ErrShapeMismatch.
func NewElement(model any, opts ...ElementOption) *Element {
	e := &Element{id: nextID(), model: model}
	if p, ok := AsPair(model); ok {
		e.pair = p
		e.shaped = true
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shaped {
		e.model = e.pair
	}
	return e
}

// ID returns the element's unique identifier.
func (e *Element) ID() uint64 { return e.id }

// Value returns the choice value, or nil for an element without the choice shape.
func (e *Element) Value() any { return e.pair.Value }

// Checked reports whether the element is checked.
func (e *Element) Checked() bool { return e.pair.Checked }

// Name returns the element's name. Registered elements carry their group's name.
func (e *Element) Name() string { return e.name }

// Label returns the element's label.
func (e *Element) Label() string { return e.label }

// ModelValue returns the element's model: a Pair for well-shaped elements,
// otherwise the raw model it was created with.
func (e *Element) ModelValue() any {
	if e.shaped {
		return e.pair
	}
	return e.model
}

// Group returns the group the element is registered with, or nil.
func (e *Element) Group() *Group { return e.group.Load() }

// Disabled reports whether the element or its group is disabled.
func (e *Element) Disabled() bool {
	if e.disabled {
		return true
	}
	if g := e.group.Load(); g != nil {
		return g.disabled
	}
	return false
}

// SetDisabled changes the element's own disabled flag.
func (e *Element) SetDisabled(disabled bool) {
	e.disabled = disabled
}

// SetChecked sets the checked flag. Setting the current value is a no-op.
// On a registered element the write goes through the group, which enforces
// its mode and notifies listeners once.
func (e *Element) SetChecked(checked bool) {
	if g := e.group.Load(); g != nil {
		g.setMemberChecked(e, checked)
		return
	}
	e.pair.Checked = checked
	e.model = e.pair
}

// Click simulates a user activation: checkboxes toggle, radios and options
// become checked. Disabled elements and read-only groups ignore clicks.
func (e *Element) Click() {
	if e.Disabled() {
		return
	}
	g := e.group.Load()
	if g == nil {
		e.SetChecked(!e.pair.Checked)
		return
	}
	if g.readOnly {
		return
	}
	if g.mode == ModeMulti {
		e.SetChecked(!e.pair.Checked)
		return
	}
	e.SetChecked(true)
}
