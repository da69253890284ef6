package choice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Mode selects how a group aggregates its members.
type Mode int

const (
	// ModeMulti allows any subset of members to be checked.
	ModeMulti Mode = iota

	// ModeSingle allows at most one checked member.
	ModeSingle
)

// String returns "multi" or "single".
func (m Mode) String() string {
	if m == ModeMulti {
		return "multi"
	}
	return "single"
}

// ParseMode parses "multi" or "single".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "multi", "checkbox":
		return ModeMulti, nil
	case "single", "radio":
		return ModeSingle, nil
	}
	return 0, fmt.Errorf("choice: unknown mode %q", s)
}

// Group reconciles a dynamic set of Elements into one model value.
type Group struct {
	id     uint64
	mode   Mode
	tag    string
	member string

	name  string
	named bool

	ledger       *ledger
	model        any
	modelVersion int

	pending     any
	hasPending  bool
	pendingLate bool
	autoFirst   bool

	batch batch
	seq   uint64

	listeners []listenerEntry
	validator Validator
	feedback  Feedback

	disabled bool
	readOnly bool

	ready     chan struct{}
	readyOnce sync.Once

	logger *slog.Logger
}

// New creates an empty group in the given mode.
func New(mode Mode, opts ...Option) *Group {
	g := &Group{
		id:     nextID(),
		mode:   mode,
		tag:    "choice-group",
		member: "element",
		ledger: newLedger(),
		ready:  make(chan struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.runValidation()
	return g
}

// ID returns the group's unique identifier.
func (g *Group) ID() uint64 { return g.id }

// Mode returns the aggregation mode.
func (g *Group) Mode() Mode { return g.mode }

// Name returns the group name, or "" while none is established.
func (g *Group) Name() string { return g.name }

// Tag returns the group's kind, e.g. "radio-group".
func (g *Group) Tag() string { return g.tag }

// Disabled reports whether the group is disabled.
func (g *Group) Disabled() bool { return g.disabled }

// SetDisabled disables or enables the group and, through delegation, all of
// its members.
func (g *Group) SetDisabled(disabled bool) { g.disabled = disabled }

// ReadOnly reports whether the group is read-only.
func (g *Group) ReadOnly() bool { return g.readOnly }

// SetReadOnly toggles read-only mode. Read-only groups ignore clicks but
// still accept programmatic changes.
func (g *Group) SetReadOnly(readOnly bool) { g.readOnly = readOnly }

// Ready is closed once the initial registration batch has settled.
func (g *Group) Ready() <-chan struct{} { return g.ready }

// WaitReady blocks until the group is ready or ctx is done.
func (g *Group) WaitReady(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Group) markReady() {
	g.readyOnce.Do(func() { close(g.ready) })
}

// Members returns the members in document order.
func (g *Group) Members() []*Element { return g.ledger.snapshot() }

// MembersByName groups the members by name. All members of a group share its
// name once it is established; array-style names like "colors[]" are kept
// verbatim.
func (g *Group) MembersByName() map[string][]*Element { return g.ledger.snapshotByName() }

// Len returns the number of members.
func (g *Group) Len() int { return len(g.ledger.members) }

// At returns the member at index i, or nil when out of range.
func (g *Group) At(i int) *Element {
	if i < 0 || i >= len(g.ledger.members) {
		return nil
	}
	return g.ledger.members[i]
}

// Index returns the position of e, or -1 when e is not a member.
func (g *Group) Index(e *Element) int { return g.ledger.indexOf(e) }

// CheckedIndex returns the position of the first checked member, or -1.
func (g *Group) CheckedIndex() int {
	for i, m := range g.ledger.members {
		if m.pair.Checked {
			return i
		}
	}
	return -1
}

// Register appends e to the group. See RegisterBefore.
func (g *Group) Register(e *Element) error {
	return g.RegisterBefore(e, nil)
}

// RegisterBefore inserts e in front of ref, or at the end when ref is nil or
// not a member. It fails with a *RegistrationError, leaving the group
// untouched, when e lacks the choice shape or carries a conflicting name.
//
// An accepted element without a name takes the group's name. In ModeSingle a
// checked element unchecks the previously checked member.
func (g *Group) RegisterBefore(e *Element, ref *Element) error {
	if e == nil {
		return nil
	}
	if _, _, err := g.admit(e, g.name, g.named); err != nil {
		return err
	}
	if g.ledger.indexOf(e) >= 0 {
		return nil
	}
	if other := e.group.Load(); other != nil && other != g {
		other.Deregister(e)
	}

	defer g.markReady()
	g.open("")
	defer g.close()
	g.attach(e, ref)
	g.settle(false)
	return nil
}

// Declare registers the group's initial members as one atomic batch. Either
// every element is accepted or none is. The value from WithValue is applied
// as far as it matches before the batch settles, and Ready is closed
// afterwards, so waiters observe the final aggregate only. Values without a
// member stay pending until a matching member registers.
func (g *Group) Declare(elems ...*Element) error {
	name, named := g.name, g.named
	for _, e := range elems {
		if e == nil {
			continue
		}
		var err error
		if name, named, err = g.admit(e, name, named); err != nil {
			return err
		}
	}

	defer g.markReady()
	g.open("declare")
	defer g.close()
	for _, e := range elems {
		if e == nil || g.ledger.indexOf(e) >= 0 {
			continue
		}
		if other := e.group.Load(); other != nil && other != g {
			other.Deregister(e)
		}
		g.attach(e, nil)
	}
	g.settle(true)
	return nil
}

// Deregister removes e from the group. Removing a non-member does nothing.
func (g *Group) Deregister(e *Element) {
	if e == nil || g.ledger.indexOf(e) < 0 {
		return
	}
	g.open("")
	defer g.close()
	g.ledger.remove(e)
	e.group.CompareAndSwap(g, nil)
	if e.inherited {
		e.name, e.inherited = "", false
	}
}

// admit checks e against the group's name rules without mutating anything.
// It returns the name state the group would have after accepting e.
func (g *Group) admit(e *Element, name string, named bool) (string, bool, error) {
	if !e.shaped {
		return name, named, &RegistrationError{
			Kind:   ShapeMismatch,
			Tag:    g.tag,
			Group:  name,
			Member: g.member,
			Model:  e.model,
		}
	}
	own := e.name
	if e.inherited && e.group.Load() != g {
		own = ""
	}
	if own == "" {
		return name, named, nil
	}
	if named && own != name {
		return name, named, &RegistrationError{
			Kind:   NameConflict,
			Tag:    g.tag,
			Group:  name,
			Member: g.member,
			Name:   own,
		}
	}
	return own, true, nil
}

// attach inserts an admitted element. Must run inside a batch.
func (g *Group) attach(e *Element, ref *Element) {
	if e.name != "" && !g.named {
		g.name, g.named = e.name, true
		g.ledger.rename(g.name)
	}
	if e.name == "" && g.named {
		e.name, e.inherited = g.name, true
	}
	g.ledger.insert(e, ref)
	e.group.Store(g)
	if g.mode == ModeSingle && e.pair.Checked {
		g.ledger.checkExclusive(e)
	}
}

// settle applies a pending initial value and, for groups created
// WithAutoCheckFirst, checks the first member when nothing is checked.
// final marks the end of the initial registration (Declare). Must run inside
// a batch.
func (g *Group) settle(final bool) {
	if g.hasPending {
		if g.mode == ModeMulti {
			g.settleMulti(final)
		} else if IsUnchecked(g.pending) || g.ledger.firstMatch(g.pending) != nil {
			g.apply(g.pending)
			g.dropPending()
		}
	}
	if g.autoFirst && g.mode == ModeSingle && (final || !g.hasPending) &&
		len(g.ledger.members) > 0 && g.CheckedIndex() < 0 {
		g.ledger.checkExclusive(g.ledger.members[0])
	}
}

// settleMulti applies a pending multi value. The first application waits
// until every value has a member or the initial registration ends, then
// checks exactly the matching members. Values still without a member stay
// pending and check late members as they register.
func (g *Group) settleMulti(final bool) {
	seq := AsSequence(g.pending)
	if !g.pendingLate {
		if !final && !g.covers(seq) {
			return
		}
		for _, m := range g.ledger.members {
			g.ledger.write(m, contains(seq, m.pair.Value))
		}
		g.pendingLate = true
	} else {
		for _, m := range g.ledger.members {
			if contains(seq, m.pair.Value) {
				g.ledger.write(m, true)
			}
		}
	}
	rest := make([]any, 0, len(seq))
	for _, v := range seq {
		if g.ledger.firstMatch(v) == nil {
			rest = append(rest, v)
		}
	}
	if len(rest) == 0 {
		g.dropPending()
		return
	}
	g.pending = rest
}

func (g *Group) dropPending() {
	g.pending, g.hasPending, g.pendingLate = nil, false, false
}

// setMemberChecked is the write path behind Element.SetChecked.
func (g *Group) setMemberChecked(e *Element, checked bool) {
	if e.pair.Checked == checked {
		return
	}
	if g.ledger.indexOf(e) < 0 {
		e.pair.Checked = checked
		e.model = e.pair
		return
	}
	g.open("")
	defer g.close()
	if checked && g.mode == ModeSingle {
		g.ledger.checkExclusive(e)
		return
	}
	g.ledger.write(e, checked)
}
