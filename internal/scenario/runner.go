package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
)

// Runner replays scenarios.
type Runner struct {
	out       io.Writer
	logger    *slog.Logger
	presenter selectrich.Presenter
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where the notification log is written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the logger handed to the groups.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithPresenter sets the presenter used by selects.
func WithPresenter(p selectrich.Presenter) Option {
	return func(r *Runner) { r.presenter = p }
}

// NewRunner creates a Runner that discards its log by default.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{out: io.Discard, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarises a run.
type Result struct {
	Steps   int
	Changes []choice.Change
}

// ChangesFor returns the changes emitted by group.
func (r *Result) ChangesFor(group string) []choice.Change {
	var out []choice.Change
	for _, c := range r.Changes {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out
}

type run struct {
	*Runner
	sc     *Scenario
	cat    *catalog.Catalog
	result *Result
	counts map[string]int
}

// Run builds the scenario's groups and executes every step. It stops at the
// first failure and returns the result so far with an *errors.Error.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	cfg := config.Default()
	cfg.Groups = sc.Groups
	opts := []catalog.Option{catalog.WithLogger(r.logger), catalog.WithFormName(sc.Name)}
	if r.presenter != nil {
		opts = append(opts, catalog.WithPresenter(r.presenter))
	}
	cat, err := catalog.Build(cfg, opts...)
	if err != nil {
		return nil, err
	}

	st := &run{Runner: r, sc: sc, cat: cat, result: &Result{}, counts: map[string]int{}}
	cat.Subscribe(choice.ListenerFunc(st.record))

	if sc.Name != "" {
		fmt.Fprintf(r.out, "== %s\n", sc.Name)
	}
	for i := range sc.Steps {
		step := &sc.Steps[i]
		if err := ctx.Err(); err != nil {
			return st.result, err
		}
		if err := st.step(ctx, step); err != nil {
			return st.result, sc.locate(errors.FromError(err, "E303"), step.Line, 0)
		}
		st.result.Steps++
	}
	return st.result, nil
}

func (st *run) record(c choice.Change) {
	st.result.Changes = append(st.result.Changes, c)
	st.counts[c.Group]++
	fmt.Fprintf(st.out, "%s #%d: %s -> %s\n", c.Group, c.Seq, format(c.Previous), format(c.Value))
}

func format(v any) string {
	if choice.IsUnchecked(v) {
		return "(none)"
	}
	return fmt.Sprintf("%v", v)
}

func (st *run) entry(name string) (*catalog.Entry, error) {
	e, ok := st.cat.Entry(name)
	if !ok {
		return nil, errors.New("E102").WithSuggestionf("group %q is not declared in this scenario", name)
	}
	return e, nil
}

func (st *run) member(e *catalog.Entry, i int) (*choice.Element, error) {
	m := e.Group().At(i)
	if m == nil {
		return nil, errors.New("E103").WithSuggestionf("group %q has %d members, index %d", e.Name(), e.Group().Len(), i)
	}
	return m, nil
}

func (st *run) selectOf(e *catalog.Entry) (*selectrich.Select, error) {
	if e.Select() == nil {
		return nil, errors.New("E303").WithSuggestionf("group %q is not a select", e.Name())
	}
	return e.Select(), nil
}

// step runs one step and applies ExpectError.
func (st *run) step(ctx context.Context, step *Step) error {
	err := st.act(ctx, step)
	if step.ExpectError == "" {
		if err != nil {
			return errors.FromError(err, "E303")
		}
		return nil
	}
	if err == nil {
		return errors.New("E302").WithSuggestionf("expected an error containing %q", step.ExpectError)
	}
	if !strings.Contains(err.Error(), step.ExpectError) {
		return errors.New("E302").Wrap(err).WithSuggestionf("error %q does not contain %q", err.Error(), step.ExpectError)
	}
	fmt.Fprintf(st.out, "   error: %v\n", err)
	return nil
}

func (st *run) act(ctx context.Context, step *Step) error {
	switch {
	case step.Declare != nil:
		e, err := st.entry(step.Declare.Group)
		if err != nil {
			return err
		}
		elems := make([]*choice.Element, len(step.Declare.Options))
		for i, oc := range step.Declare.Options {
			elems[i] = catalog.NewElement(oc)
		}
		if s := e.Select(); s != nil {
			return s.Declare(elems...)
		}
		return e.Group().Declare(elems...)

	case step.Register != nil:
		e, err := st.entry(step.Register.Group)
		if err != nil {
			return err
		}
		el := newMember(step.Register)
		if s := e.Select(); s != nil {
			return s.Register(el)
		}
		return e.Group().Register(el)

	case step.RegisterBefore != nil:
		e, err := st.entry(step.RegisterBefore.Group)
		if err != nil {
			return err
		}
		ref, err := st.member(e, step.RegisterBefore.Before)
		if err != nil {
			return err
		}
		el := newMember(step.RegisterBefore)
		if s := e.Select(); s != nil {
			return s.RegisterBefore(el, ref)
		}
		return e.Group().RegisterBefore(el, ref)

	case step.Deregister != nil:
		e, m, err := st.target(step.Deregister)
		if err != nil {
			return err
		}
		if s := e.Select(); s != nil {
			s.Deregister(m)
		} else {
			e.Group().Deregister(m)
		}
		return nil

	case step.Check != nil:
		_, m, err := st.target(step.Check)
		if err != nil {
			return err
		}
		m.SetChecked(true)
		return nil

	case step.Uncheck != nil:
		_, m, err := st.target(step.Uncheck)
		if err != nil {
			return err
		}
		m.SetChecked(false)
		return nil

	case step.Click != nil:
		e, m, err := st.target(step.Click)
		if err != nil {
			return err
		}
		if s := e.Select(); s != nil {
			return s.ClickOption(ctx, step.Click.Index)
		}
		m.Click()
		return nil

	case step.Set != nil:
		e, err := st.entry(step.Set.Group)
		if err != nil {
			return err
		}
		v := step.Set.Value
		if step.Set.Unchecked {
			v = choice.Unchecked
		}
		e.Group().SetModelValue(v)
		return nil

	case step.Batch != nil:
		e, err := st.entry(step.Batch.Group)
		if err != nil {
			return err
		}
		var inner error
		e.Group().Batch(func() {
			for i := range step.Batch.Steps {
				if inner = st.step(ctx, &step.Batch.Steps[i]); inner != nil {
					return
				}
			}
		})
		return inner

	case step.Open != nil, step.Close != nil, step.Dismiss != nil:
		ref := step.Open
		if ref == nil {
			ref = step.Close
		}
		if ref == nil {
			ref = step.Dismiss
		}
		e, err := st.entry(ref.Group)
		if err != nil {
			return err
		}
		s, err := st.selectOf(e)
		if err != nil {
			return err
		}
		switch {
		case step.Open != nil:
			return s.Open(ctx)
		case step.Close != nil:
			return s.Close(ctx)
		}
		s.Dismiss()
		return nil

	case step.Key != nil:
		e, err := st.entry(step.Key.Group)
		if err != nil {
			return err
		}
		s, err := st.selectOf(e)
		if err != nil {
			return err
		}
		key := selectrich.Key(step.Key.Key)
		if strings.EqualFold(step.Key.Key, "space") {
			key = selectrich.KeySpace
		}
		if step.Key.Event == "down" {
			return s.KeyDown(ctx, key)
		}
		return s.KeyUp(ctx, key)

	case step.Expect != nil:
		return st.expect(step.Expect)
	}
	return errors.New("E301")
}

func (st *run) target(ref *IndexStep) (*catalog.Entry, *choice.Element, error) {
	e, err := st.entry(ref.Group)
	if err != nil {
		return nil, nil, err
	}
	m, err := st.member(e, ref.Index)
	return e, m, err
}

func newMember(ms *MemberStep) *choice.Element {
	var opts []choice.ElementOption
	if ms.Name != "" {
		opts = append(opts, choice.Named(ms.Name))
	}
	if ms.Label != "" {
		opts = append(opts, choice.Labeled(ms.Label))
	}
	if ms.Disabled {
		opts = append(opts, choice.Disabled())
	}
	if ms.Model != nil {
		return choice.NewElement(ms.Model, opts...)
	}
	if ms.Checked {
		opts = append(opts, choice.Checked())
	}
	return choice.NewChoice(ms.Value, opts...)
}

func (st *run) expect(x *Expectation) error {
	e, err := st.entry(x.Group)
	if err != nil {
		return err
	}
	g := e.Group()
	var failures []string
	fail := func(msg string, args ...any) {
		failures = append(failures, fmt.Sprintf(msg, args...))
	}

	got := g.ModelValue()
	switch {
	case x.Unchecked:
		if !choice.IsUnchecked(got) {
			fail("value = %s, want (none)", format(got))
		}
	case x.Value != nil:
		if !choice.Equal(got, x.Value) {
			fail("value = %s, want %v", format(got), x.Value)
		}
	}
	if x.Checked != nil {
		var checked []int
		for i, m := range g.Members() {
			if m.Checked() {
				checked = append(checked, i)
			}
		}
		if fmt.Sprint(checked) != fmt.Sprint(x.Checked) {
			fail("checked = %v, want %v", checked, x.Checked)
		}
	}
	if x.CheckedIndex != nil && g.CheckedIndex() != *x.CheckedIndex {
		fail("checkedIndex = %d, want %d", g.CheckedIndex(), *x.CheckedIndex)
	}
	if x.Members != nil && g.Len() != *x.Members {
		fail("members = %d, want %d", g.Len(), *x.Members)
	}
	if x.Notifications != nil && st.counts[e.Name()] != *x.Notifications {
		fail("notifications = %d, want %d", st.counts[e.Name()], *x.Notifications)
	}
	if x.Feedback != nil {
		var names []string
		for name := range g.Feedback() {
			names = append(names, name)
		}
		sort.Strings(names)
		want := append([]string(nil), x.Feedback...)
		sort.Strings(want)
		if fmt.Sprint(names) != fmt.Sprint(want) {
			fail("feedback = %v, want %v", names, want)
		}
	}
	if x.Opened != nil || x.ActiveIndex != nil {
		s, err := st.selectOf(e)
		if err != nil {
			return err
		}
		if x.Opened != nil && s.Opened() != *x.Opened {
			fail("opened = %v, want %v", s.Opened(), *x.Opened)
		}
		if x.ActiveIndex != nil && s.ActiveIndex() != *x.ActiveIndex {
			fail("activeIndex = %d, want %d", s.ActiveIndex(), *x.ActiveIndex)
		}
	}

	if len(failures) > 0 {
		return errors.New("E302").WithSuggestionf("group %q: %s", e.Name(), strings.Join(failures, "; "))
	}
	fmt.Fprintf(st.out, "   ok: %s = %s\n", e.Name(), format(got))
	return nil
}
