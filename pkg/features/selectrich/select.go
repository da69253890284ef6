package selectrich

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vango-dev/choicegroup/pkg/choice"
)

// ErrNotInteractive is returned by Open when the select is disabled or
// read-only.
var ErrNotInteractive = errors.New("selectrich: select is disabled or read-only")

// Select is a single-select choice group with a listbox overlay.
type Select struct {
	group     *choice.Group
	groupOpts []choice.Option

	mode      InteractionMode
	presenter Presenter
	label     string
	fieldName string

	opened bool
	active int
	openID uint64

	openedListeners []func(opened bool)
	logger          *slog.Logger
}

// New creates a select named name. The first option is checked whenever
// registration settles with nothing checked.
func New(name string, opts ...Option) *Select {
	s := &Select{
		presenter: PresenterFuncs{},
		active:    -1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	groupOpts := []choice.Option{
		choice.WithTag("select-rich", "option"),
		choice.WithName(name),
		choice.WithAutoCheckFirst(),
		choice.WithLogger(s.logger),
	}
	s.group = choice.New(choice.ModeSingle, append(groupOpts, s.groupOpts...)...)
	s.groupOpts = nil
	s.group.OnChange(func(choice.Change) {
		s.resync(s.group.At(s.active))
	})
	s.active = s.group.CheckedIndex()
	return s
}

// Group returns the underlying choice group.
func (s *Select) Group() *choice.Group { return s.group }

// Mode returns the interaction mode.
func (s *Select) Mode() InteractionMode { return s.mode }

// Name returns the group name.
func (s *Select) Name() string { return s.group.Name() }

// Label returns the field label.
func (s *Select) Label() string { return s.label }

// FieldName returns the explicit field name, else the label, else the name.
func (s *Select) FieldName() string {
	switch {
	case s.fieldName != "":
		return s.fieldName
	case s.label != "":
		return s.label
	}
	return s.group.Name()
}

// Declare registers the initial options. See choice.Group.Declare.
func (s *Select) Declare(options ...*choice.Element) error {
	prev := s.group.At(s.active)
	defer s.resync(prev)
	return s.group.Declare(options...)
}

// Register appends an option.
func (s *Select) Register(option *choice.Element) error {
	return s.RegisterBefore(option, nil)
}

// RegisterBefore inserts option in front of ref. The checked option keeps
// its value; its index shifts.
func (s *Select) RegisterBefore(option, ref *choice.Element) error {
	prev := s.group.At(s.active)
	defer s.resync(prev)
	return s.group.RegisterBefore(option, ref)
}

// Deregister removes an option.
func (s *Select) Deregister(option *choice.Element) {
	prev := s.group.At(s.active)
	defer s.resync(prev)
	s.group.Deregister(option)
}

// resync points the active index at the checked option, or at prev while a
// Mac listbox previews another option.
func (s *Select) resync(prev *choice.Element) {
	if s.mode == Windows || !s.opened {
		s.active = s.group.CheckedIndex()
		return
	}
	s.active = s.group.Index(prev)
}

// Options returns the options in order.
func (s *Select) Options() []*choice.Element { return s.group.Members() }

// ModelValue returns the checked option's value, or choice.Unchecked.
func (s *Select) ModelValue() any { return s.group.ModelValue() }

// SetModelValue checks the first option whose value equals v.
func (s *Select) SetModelValue(v any) { s.group.SetModelValue(v) }

// SerializedValue returns the checked option as a choice.Pair, or "".
func (s *Select) SerializedValue() any { return s.group.SerializedValue() }

// Feedback returns the latest validation result of the group.
func (s *Select) Feedback() choice.Feedback { return s.group.Feedback() }

// Subscribe registers a model value listener on the group.
func (s *Select) Subscribe(l choice.Listener) func() { return s.group.Subscribe(l) }

// OnOpenedChange registers fn to be called whenever Opened changes.
func (s *Select) OnOpenedChange(fn func(opened bool)) {
	if fn != nil {
		s.openedListeners = append(s.openedListeners, fn)
	}
}

// Disabled reports whether the select is disabled.
func (s *Select) Disabled() bool { return s.group.Disabled() }

// SetDisabled disables the select and all options. A disabled select closes.
func (s *Select) SetDisabled(disabled bool) {
	s.group.SetDisabled(disabled)
	if disabled {
		s.Dismiss()
	}
}

// ReadOnly reports whether the select is read-only.
func (s *Select) ReadOnly() bool { return s.group.ReadOnly() }

// SetReadOnly toggles read-only mode. A read-only select closes.
func (s *Select) SetReadOnly(readOnly bool) {
	s.group.SetReadOnly(readOnly)
	if readOnly {
		s.Dismiss()
	}
}

func (s *Select) interactive() bool {
	return !s.group.Disabled() && !s.group.ReadOnly()
}

// Opened reports whether the listbox is shown.
func (s *Select) Opened() bool { return s.opened }

// Open shows the listbox with the checked option active. It blocks until the
// presenter settles. If the presenter fails or ctx is done first, the select
// is closed again and the error returned.
func (s *Select) Open(ctx context.Context) error {
	if !s.interactive() {
		return ErrNotInteractive
	}
	if s.opened {
		return nil
	}
	s.openID++
	id := s.openID
	s.active = s.group.CheckedIndex()
	s.setOpened(true)

	err := s.presenter.Show(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if s.openID == id && s.opened {
			s.setOpened(false)
		}
		s.logger.Debug("selectrich: open cancelled", "select", s.group.Name(), "error", err)
		return err
	}
	return nil
}

// Close hides the listbox.
func (s *Select) Close(ctx context.Context) error {
	if !s.opened {
		return nil
	}
	s.openID++
	s.setOpened(false)
	if s.mode == Mac {
		s.active = s.group.CheckedIndex()
	}
	return s.presenter.Hide(ctx)
}

// Toggle opens a closed select and closes an opened one.
func (s *Select) Toggle(ctx context.Context) error {
	if s.opened {
		return s.Close(ctx)
	}
	return s.Open(ctx)
}

// Dismiss closes the listbox after an interaction outside of it.
func (s *Select) Dismiss() {
	if err := s.Close(context.Background()); err != nil {
		s.logger.Warn("selectrich: hide failed", "select", s.group.Name(), "error", err)
	}
}

func (s *Select) setOpened(opened bool) {
	s.opened = opened
	for _, fn := range s.openedListeners {
		fn(opened)
	}
}

// CheckedIndex returns the index of the checked option, or -1.
func (s *Select) CheckedIndex() int { return s.group.CheckedIndex() }

// SetCheckedIndex checks the option at index i. Out of range indexes are
// ignored.
func (s *Select) SetCheckedIndex(i int) {
	option := s.group.At(i)
	if option == nil {
		return
	}
	option.SetChecked(true)
	s.active = i
}

// SelectedElement returns the checked option, which the invoker displays.
func (s *Select) SelectedElement() *choice.Element {
	return s.group.At(s.group.CheckedIndex())
}

// ActiveIndex returns the index of the highlighted option, or -1.
func (s *Select) ActiveIndex() int { return s.active }

// SetActiveIndex highlights the option at index i. In Windows mode the
// option is checked as well; in Mac mode it is only a preview until Commit.
func (s *Select) SetActiveIndex(i int) {
	if s.group.At(i) == nil {
		return
	}
	s.active = i
	if s.mode == Windows {
		s.SetCheckedIndex(i)
	}
}

// Commit checks the active option.
func (s *Select) Commit() {
	if s.active >= 0 {
		s.SetCheckedIndex(s.active)
	}
}

// ClickInvoker toggles the listbox. Disabled and read-only selects stay
// closed.
func (s *Select) ClickInvoker(ctx context.Context) error {
	if !s.interactive() {
		return nil
	}
	return s.Toggle(ctx)
}

// ClickOption checks the option at index i and closes the listbox. Clicks on
// disabled options are ignored.
func (s *Select) ClickOption(ctx context.Context, i int) error {
	option := s.group.At(i)
	if option == nil || option.Disabled() || s.group.ReadOnly() {
		return nil
	}
	s.SetCheckedIndex(i)
	return s.Close(ctx)
}
