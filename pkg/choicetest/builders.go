package choicetest

import "github.com/vango-dev/choicegroup/pkg/choice"

// Choices creates one unchecked element per value.
func Choices(values ...any) []*choice.Element {
	out := make([]*choice.Element, len(values))
	for i, v := range values {
		out[i] = choice.NewChoice(v)
	}
	return out
}

// ChoicesChecked creates one element per value, checking those at the given
// indexes.
func ChoicesChecked(values []any, checked ...int) []*choice.Element {
	out := Choices(values...)
	for _, i := range checked {
		if i >= 0 && i < len(out) {
			out[i].SetChecked(true)
		}
	}
	return out
}

// MustDeclare declares elems on g and panics on registration errors.
func MustDeclare(g *choice.Group, elems ...*choice.Element) *choice.Group {
	if err := g.Declare(elems...); err != nil {
		panic(err)
	}
	return g
}
