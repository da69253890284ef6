// Package choice provides the state engine behind choice group widgets:
// checkbox groups, radio groups and rich selects.
//
// A Group aggregates the checked state of its member Elements into a single
// model value and applies an assigned model value back onto its members.
//
// # Modes
//
// ModeMulti aggregates to an ordered []any of the values of every checked
// member, in membership order:
//
//	g := choice.NewCheckboxGroup("sports[]")
//	_ = g.Declare(
//	    choice.NewChoice("running"),
//	    choice.NewChoice("swimming", choice.Checked()),
//	)
//	g.ModelValue() // []any{"swimming"}
//
// ModeSingle keeps at most one member checked and aggregates to that
// member's value, or to Unchecked when nothing is checked:
//
//	g := choice.NewRadioGroup("gender")
//	_ = g.Declare(choice.NewChoice("male"), choice.NewChoice("female"))
//	g.SetModelValue("female")
//
// # Registration
//
// Members join through Register, RegisterBefore or the atomic initial batch
// Declare. A candidate whose model is not shaped like {value, checked} fails
// with ErrShapeMismatch; a candidate carrying a name other than the group's
// fails with ErrNameConflict. Failed registrations leave the group untouched.
//
// # Notifications
//
// Every mutation runs inside a batch. The group snapshots its model value when
// the outermost batch opens and compares it when the batch closes; listeners
// are notified at most once per batch, and only when the value changed:
//
//	g.Batch(func() {
//	    male.SetChecked(true)
//	    other.SetChecked(true)
//	}) // one notification
//
// # Concurrency
//
// A Group belongs to a single event loop. Its methods are not safe for
// concurrent use; callers that share a group across goroutines must serialize
// access themselves.
package choice
