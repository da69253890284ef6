// Package selectrich implements a rich select: a single-select choice group
// with a listbox overlay.
//
// The Select keeps the value semantics of a choice.Group created in
// ModeSingle and adds presentation state on top of it: whether the listbox
// is opened, which option is active (highlighted), and how keys and clicks
// translate into opening, closing and checking.
//
// Showing and hiding the listbox is delegated to a Presenter. Open waits for
// the presenter to settle; when the context is cancelled first, the select
// reverts to closed and the model value is left untouched.
//
//	sel := selectrich.New("color",
//	    selectrich.WithInteractionMode(selectrich.Mac),
//	    selectrich.WithPresenter(overlay),
//	)
//	_ = sel.Declare(
//	    choice.NewChoice("red", choice.Labeled("Red")),
//	    choice.NewChoice("hotpink", choice.Labeled("Hotpink")),
//	)
//	sel.ModelValue() // "red": the first option is checked when none is
//
// Like choice.Group, a Select is not safe for concurrent use.
package selectrich
