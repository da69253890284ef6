package choice

import (
	"reflect"
	"time"
)

// Pair is the checkable-choice shape: a value paired with a checked flag.
// It is also the serialized form of a checked member.
type Pair struct {
	Value   any  `json:"value"`
	Checked bool `json:"checked"`
}

// Checkable is implemented by candidate models that expose the choice shape
// through methods instead of a Pair.
type Checkable interface {
	ChoiceValue() any
	ChoiceChecked() bool
}

// AsPair reports whether model has the checkable-choice shape and returns it
// normalized. Accepted shapes are Pair, *Pair, Checkable, and a
// map[string]any holding a "value" key and a boolean "checked" key.
func AsPair(model any) (Pair, bool) {
	switch m := model.(type) {
	case Pair:
		return m, true
	case *Pair:
		if m == nil {
			return Pair{}, false
		}
		return *m, true
	case Checkable:
		if isNil(m) {
			return Pair{}, false
		}
		return Pair{Value: m.ChoiceValue(), Checked: m.ChoiceChecked()}, true
	case map[string]any:
		v, hasValue := m["value"]
		checked, isBool := m["checked"].(bool)
		if !hasValue || !isBool {
			return Pair{}, false
		}
		return Pair{Value: v, Checked: checked}, true
	}
	return Pair{}, false
}

// isNil reports whether v holds a nil pointer, map, slice, func or channel.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// NoSelection is the type of Unchecked.
type NoSelection struct{}

// String returns the empty string, the serialized form of no selection.
func (NoSelection) String() string { return "" }

// MarshalJSON encodes no selection as an empty string.
func (NoSelection) MarshalJSON() ([]byte, error) { return []byte(`""`), nil }

// Unchecked is the model value of a single-select group with no checked
// member. It is distinct from the empty string, which is a valid choice value.
var Unchecked = NoSelection{}

// IsUnchecked reports whether v is the no-selection sentinel.
func IsUnchecked(v any) bool {
	_, ok := v.(NoSelection)
	return ok
}

// Equal reports whether a and b are structurally equal choice values.
//
// Numbers compare by value across numeric kinds, so a value decoded from JSON
// as float64 matches an int member. time.Time compares by instant. Slices,
// arrays and maps compare element by element with the same rules; everything
// else falls back to reflect.DeepEqual. Zero values and the empty string are
// ordinary values and only equal themselves.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && na == nb
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice, reflect.Array:
		if vb.Kind() != reflect.Slice && vb.Kind() != reflect.Array {
			return false
		}
		if va.Len() != vb.Len() {
			return false
		}
		for i := range va.Len() {
			if !Equal(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if vb.Kind() != reflect.Map || va.Len() != vb.Len() {
			return false
		}
		keyType := vb.Type().Key()
		iter := va.MapRange()
		for iter.Next() {
			k := iter.Key()
			if !k.Type().AssignableTo(keyType) {
				return false
			}
			other := vb.MapIndex(k)
			if !other.IsValid() {
				return false
			}
			if !Equal(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// toNumber widens any Go numeric value to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// AsSequence returns v as an ordered []any. Slices and arrays are copied
// element by element, nil and Unchecked become an empty sequence, and any
// other value becomes a one-element sequence.
func AsSequence(v any) []any {
	if v == nil || IsUnchecked(v) {
		return []any{}
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// contains reports whether seq holds a value equal to v.
func contains(seq []any, v any) bool {
	for _, s := range seq {
		if Equal(s, v) {
			return true
		}
	}
	return false
}
