package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/features/form"
	"github.com/vango-dev/choicegroup/pkg/features/rules"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
)

// Entry is one configured group.
type Entry struct {
	mu sync.Mutex

	name  string
	kind  string
	group *choice.Group
	sel   *selectrich.Select
	rules *rules.Set
}

// Name returns the group name.
func (e *Entry) Name() string { return e.name }

// Kind returns multi, single or select.
func (e *Entry) Kind() string { return e.kind }

// Group returns the underlying group. Only use it inside Do.
func (e *Entry) Group() *choice.Group { return e.group }

// Select returns the select overlay, or nil for plain groups. Only use it
// inside Do.
func (e *Entry) Select() *selectrich.Select { return e.sel }

// Rules returns the compiled rule set, or nil.
func (e *Entry) Rules() *rules.Set { return e.rules }

// Field returns the form field for this entry.
func (e *Entry) Field() form.Field {
	if e.sel != nil {
		return e.sel
	}
	return e.group
}

// Do runs fn with the entry locked.
func (e *Entry) Do(fn func(e *Entry) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

// Catalog holds every configured entry in configuration order.
type Catalog struct {
	mu      sync.Mutex
	entries []*Entry
	byName  map[string]*Entry
	form    *form.Form
	logger  *slog.Logger
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	formName  string
	presenter selectrich.Presenter
}

// WithLogger sets the logger passed to groups, rules and the form.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFormName names the submission form (default "choicegroup").
func WithFormName(name string) Option {
	return func(o *options) { o.formName = name }
}

// WithPresenter sets the presenter used by every select.
func WithPresenter(p selectrich.Presenter) Option {
	return func(o *options) { o.presenter = p }
}

// Build creates the configured groups. Errors are *errors.Error values
// (E100, E101, E203).
func Build(cfg *config.Config, opts ...Option) (*Catalog, error) {
	o := options{logger: slog.Default(), formName: "choicegroup"}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{
		byName: make(map[string]*Entry, len(cfg.Groups)),
		form:   form.New(o.formName, form.WithLogger(o.logger)),
		logger: o.logger,
	}
	for _, gc := range cfg.Groups {
		e, err := buildEntry(gc, o)
		if err != nil {
			return nil, err
		}
		if err := c.form.Add(e.Field()); err != nil {
			return nil, errors.New("E202").Wrap(err).WithSuggestion(err.Error())
		}
		c.entries = append(c.entries, e)
		c.byName[e.name] = e
	}
	return c, nil
}

func buildEntry(gc config.GroupConfig, o options) (*Entry, error) {
	set, err := BuildRules(gc, o.logger)
	if err != nil {
		return nil, err
	}

	gopts := []choice.Option{
		choice.WithLogger(o.logger.With("group", gc.Name)),
		choice.WithDisabled(gc.Disabled),
		choice.WithReadOnly(gc.ReadOnly),
	}
	if gc.Value != nil {
		gopts = append(gopts, choice.WithValue(gc.Value))
	}
	if set != nil {
		gopts = append(gopts, choice.WithValidator(set))
	}

	e := &Entry{name: gc.Name, kind: gc.Mode, rules: set}
	switch gc.Mode {
	case "multi", "checkbox":
		e.kind = "multi"
		e.group = choice.NewCheckboxGroup(gc.Name, gopts...)
	case "select":
		mode, err := selectrich.ParseInteractionMode(gc.InteractionMode)
		if err != nil {
			return nil, errors.New("E202").Wrap(err).WithSuggestion(err.Error())
		}
		sopts := []selectrich.Option{
			selectrich.WithInteractionMode(mode),
			selectrich.WithLabel(gc.Label),
			selectrich.WithLogger(o.logger),
			selectrich.WithGroupOptions(gopts...),
		}
		if o.presenter != nil {
			sopts = append(sopts, selectrich.WithPresenter(o.presenter))
		}
		e.sel = selectrich.New(gc.Name, sopts...)
		e.group = e.sel.Group()
	default:
		e.kind = "single"
		e.group = choice.NewRadioGroup(gc.Name, gopts...)
	}

	elems := make([]*choice.Element, 0, len(gc.Options))
	for _, oc := range gc.Options {
		elems = append(elems, NewElement(oc))
	}
	if e.sel != nil {
		err = e.sel.Declare(elems...)
	} else {
		err = e.group.Declare(elems...)
	}
	if err != nil {
		return nil, errors.FromError(err, "E100")
	}
	return e, nil
}

// NewElement builds a choice element from an option declaration.
func NewElement(oc config.OptionConfig) *choice.Element {
	var opts []choice.ElementOption
	if oc.Checked {
		opts = append(opts, choice.Checked())
	}
	if oc.Name != "" {
		opts = append(opts, choice.Named(oc.Name))
	}
	if oc.Label != "" {
		opts = append(opts, choice.Labeled(oc.Label))
	}
	if oc.Disabled {
		opts = append(opts, choice.Disabled())
	}
	return choice.NewChoice(oc.Value, opts...)
}

// Entry returns the entry named name.
func (c *Catalog) Entry(name string) (*Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Entries returns all entries in configuration order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Form returns the form binding every entry. Use it through Submit or
// WithAll.
func (c *Catalog) Form() *form.Form { return c.form }

// Subscribe adds l to every group and returns a function removing it
// from all of them.
func (c *Catalog) Subscribe(l choice.Listener) (unsubscribe func()) {
	var unsubs []func()
	for _, e := range c.entries {
		e.Do(func(e *Entry) error {
			unsubs = append(unsubs, e.group.Subscribe(l))
			return nil
		})
	}
	return func() {
		for i, e := range c.entries {
			e.Do(func(*Entry) error {
				unsubs[i]()
				return nil
			})
		}
	}
}

// WithAll runs fn with every entry locked, in configuration order.
func (c *Catalog) WithAll(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.mu.Lock()
	}
	defer func() {
		for i := len(c.entries) - 1; i >= 0; i-- {
			c.entries[i].mu.Unlock()
		}
	}()
	return fn()
}

// Submit validates every group and saves the values to sink.
func (c *Catalog) Submit(ctx context.Context, sink form.Sink, opts ...form.SubmitOption) (form.Submission, error) {
	var sub form.Submission
	err := c.WithAll(func() error {
		var err error
		sub, err = c.form.Submit(ctx, sink, opts...)
		return err
	})
	return sub, err
}
