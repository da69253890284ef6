package choice

// Change describes one settled model value change of a group.
type Change struct {
	// GroupID is the unique id of the group that changed.
	GroupID uint64

	// Group is the group's name.
	Group string

	// Seq increases by one with every change of the same group.
	Seq uint64

	// Value is the new model value.
	Value any

	// Previous is the model value before the batch opened.
	Previous any
}

// Listener receives model value changes.
type Listener interface {
	ModelValueChanged(c Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c Change)

// ModelValueChanged calls f(c).
func (f ListenerFunc) ModelValueChanged(c Change) { f(c) }

type listenerEntry struct {
	id uint64
	l  Listener
}

// Subscribe registers l for change notifications and returns a function that
// removes it again.
func (g *Group) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	id := nextID()
	g.listeners = append(g.listeners, listenerEntry{id: id, l: l})
	return func() {
		for i, e := range g.listeners {
			if e.id == id {
				g.listeners = append(g.listeners[:i:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}

// OnChange is shorthand for Subscribe(ListenerFunc(fn)).
func (g *Group) OnChange(fn func(c Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return g.Subscribe(ListenerFunc(fn))
}

// emit notifies a snapshot of the current listeners, so listeners may
// subscribe or unsubscribe while being notified.
func (g *Group) emit(c Change) {
	subs := make([]listenerEntry, len(g.listeners))
	copy(subs, g.listeners)
	for _, s := range subs {
		s.l.ModelValueChanged(c)
	}
}
