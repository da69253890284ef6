package choice

// ledger is the membership record of a group: members in document order plus
// an index by name. It is the only place that mutates membership or a
// member's checked flag, so every write can be counted by the coalescer.
type ledger struct {
	members []*Element
	byName  map[string][]*Element

	// writes counts checked-flag writes that changed a member.
	writes int

	// version changes with every membership change or checked write.
	version int
}

func newLedger() *ledger {
	return &ledger{byName: make(map[string][]*Element)}
}

// indexOf returns the position of e, or -1.
func (l *ledger) indexOf(e *Element) int {
	for i, m := range l.members {
		if m == e {
			return i
		}
	}
	return -1
}

// insert places e before ref, or at the end when ref is nil or not a member.
func (l *ledger) insert(e *Element, ref *Element) {
	at := len(l.members)
	if ref != nil {
		if i := l.indexOf(ref); i >= 0 {
			at = i
		}
	}
	l.members = append(l.members, nil)
	copy(l.members[at+1:], l.members[at:])
	l.members[at] = e
	l.version++
	l.reindex()
}

// remove drops e and reports whether it was a member.
func (l *ledger) remove(e *Element) bool {
	i := l.indexOf(e)
	if i < 0 {
		return false
	}
	l.members = append(l.members[:i], l.members[i+1:]...)
	l.version++
	l.reindex()
	return true
}

// rename assigns name to every member that has none.
func (l *ledger) rename(name string) {
	for _, m := range l.members {
		if m.name == "" {
			m.name, m.inherited = name, true
		}
	}
	l.reindex()
}

func (l *ledger) reindex() {
	byName := make(map[string][]*Element, len(l.byName))
	for _, m := range l.members {
		byName[m.name] = append(byName[m.name], m)
	}
	l.byName = byName
}

// write sets the checked flag of e and reports whether it changed.
func (l *ledger) write(e *Element, checked bool) bool {
	if e.pair.Checked == checked {
		return false
	}
	e.pair.Checked = checked
	e.model = e.pair
	l.writes++
	l.version++
	return true
}

// checkExclusive checks e and unchecks every other member.
func (l *ledger) checkExclusive(e *Element) {
	for _, m := range l.members {
		if m != e {
			l.write(m, false)
		}
	}
	l.write(e, true)
}

// firstMatch returns the first member whose value equals v.
func (l *ledger) firstMatch(v any) *Element {
	for _, m := range l.members {
		if Equal(m.pair.Value, v) {
			return m
		}
	}
	return nil
}

func (l *ledger) snapshot() []*Element {
	out := make([]*Element, len(l.members))
	copy(out, l.members)
	return out
}

func (l *ledger) snapshotByName() map[string][]*Element {
	out := make(map[string][]*Element, len(l.byName))
	for name, ms := range l.byName {
		cp := make([]*Element, len(ms))
		copy(cp, ms)
		out[name] = cp
	}
	return out
}
