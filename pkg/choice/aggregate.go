package choice

// current returns the cached model value, recomputing it when membership or
// a checked flag changed since the last computation.
func (g *Group) current() any {
	if g.modelVersion != g.ledger.version || g.model == nil {
		g.model = g.recompute()
		g.modelVersion = g.ledger.version
	}
	return g.model
}

// recompute reduces the membership record to a model value.
func (g *Group) recompute() any {
	if g.mode == ModeMulti {
		values := make([]any, 0, len(g.ledger.members))
		for _, m := range g.ledger.members {
			if m.pair.Checked {
				values = append(values, m.pair.Value)
			}
		}
		return values
	}
	for _, m := range g.ledger.members {
		if m.pair.Checked {
			return m.pair.Value
		}
	}
	return Unchecked
}

// exposed returns a copy of v safe to hand to callers.
func (g *Group) exposed(v any) any {
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out
	}
	return v
}

// apply writes v onto the membership record and reports whether every
// requested value found a member. Must run inside a batch.
func (g *Group) apply(v any) bool {
	if g.mode == ModeMulti {
		seq := AsSequence(v)
		if len(seq) > 0 && !g.matchesAny(seq) {
			return false
		}
		for _, m := range g.ledger.members {
			g.ledger.write(m, contains(seq, m.pair.Value))
		}
		return g.covers(seq)
	}
	if IsUnchecked(v) {
		for _, m := range g.ledger.members {
			g.ledger.write(m, false)
		}
		return true
	}
	m := g.ledger.firstMatch(v)
	if m == nil {
		return false
	}
	g.ledger.checkExclusive(m)
	return true
}

// covers reports whether every value in seq matches a member.
func (g *Group) covers(seq []any) bool {
	for _, v := range seq {
		if g.ledger.firstMatch(v) == nil {
			return false
		}
	}
	return true
}

// matchesAny reports whether at least one value in seq matches a member.
func (g *Group) matchesAny(seq []any) bool {
	for _, v := range seq {
		if g.ledger.firstMatch(v) != nil {
			return true
		}
	}
	return false
}

// ModelValue returns the group's aggregate: a []any of checked values in
// membership order for ModeMulti, the checked value or Unchecked for
// ModeSingle.
func (g *Group) ModelValue() any {
	return g.exposed(g.current())
}

// SetModelValue applies v to the members. In ModeSingle the first member
// whose value equals v becomes checked and all others unchecked. In ModeMulti
// v is read as a sequence (a scalar counts as a one-element sequence) and
// every member is checked exactly when its value is in it.
//
// Assigning Unchecked unchecks every member. Assigning the current value
// does nothing. A value that matches no member
// (in ModeMulti: a non-empty sequence none of whose values match) is ignored
// and logged at warn level, leaving the group unchanged.
func (g *Group) SetModelValue(v any) {
	g.dropPending()
	if Equal(g.current(), v) {
		return
	}
	g.open("")
	defer g.close()
	if !g.apply(v) {
		g.logger.Warn("choice: model value matches no member",
			"group", g.name, "tag", g.tag, "value", v)
	}
}

// Clear unchecks every member as one change.
func (g *Group) Clear() {
	g.dropPending()
	g.open("")
	defer g.close()
	for _, m := range g.ledger.members {
		g.ledger.write(m, false)
	}
}

// SerializedValue returns the submission form of the group. ModeSingle yields
// the checked member as Pair{Value, true} or "" when nothing is checked;
// ModeMulti yields a []Pair of the checked members in membership order.
func (g *Group) SerializedValue() any {
	if g.mode == ModeMulti {
		out := make([]Pair, 0, len(g.ledger.members))
		for _, m := range g.ledger.members {
			if m.pair.Checked {
				out = append(out, Pair{Value: m.pair.Value, Checked: true})
			}
		}
		return out
	}
	for _, m := range g.ledger.members {
		if m.pair.Checked {
			return Pair{Value: m.pair.Value, Checked: true}
		}
	}
	return ""
}
