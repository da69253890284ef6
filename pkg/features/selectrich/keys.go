package selectrich

import "context"

// Key is a keyboard key name as reported by KeyboardEvent.key.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeySpace     Key = " "
	KeyEscape    Key = "Escape"
	KeyTab       Key = "Tab"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyHome      Key = "Home"
	KeyEnd       Key = "End"
)

// KeyUp handles a key release on the invoker or the listbox.
//
// Closed: Enter and Space open the listbox; in Mac mode the arrow keys open
// it too, in Windows mode they move the checked option.
//
// Opened: Enter closes, committing the active option first in Mac mode;
// Escape closes; arrows, Home and End move the active option.
func (s *Select) KeyUp(ctx context.Context, key Key) error {
	if !s.opened {
		switch key {
		case KeyEnter, KeySpace:
			return s.ClickInvoker(ctx)
		case KeyArrowUp, KeyArrowDown:
			if s.mode == Mac {
				return s.ClickInvoker(ctx)
			}
			if s.interactive() {
				s.move(key)
			}
		}
		return nil
	}

	switch key {
	case KeyEnter, KeySpace:
		if s.mode == Mac {
			s.Commit()
		}
		return s.Close(ctx)
	case KeyEscape:
		return s.Close(ctx)
	case KeyArrowUp, KeyArrowDown, KeyHome, KeyEnd:
		s.move(key)
	}
	return nil
}

// KeyDown handles a key press. Tab closes an opened listbox.
func (s *Select) KeyDown(ctx context.Context, key Key) error {
	if key == KeyTab && s.opened {
		return s.Close(ctx)
	}
	return nil
}

// move shifts the active option, skipping disabled options.
func (s *Select) move(key Key) {
	n := s.group.Len()
	if n == 0 {
		return
	}
	start, step := s.active, 1
	switch key {
	case KeyArrowUp:
		step = -1
	case KeyHome:
		start = -1
	case KeyEnd:
		start, step = n, -1
	}
	for i := start + step; i >= 0 && i < n; i += step {
		if !s.group.At(i).Disabled() {
			s.SetActiveIndex(i)
			return
		}
	}
}
