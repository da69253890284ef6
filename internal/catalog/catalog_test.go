package catalog_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/config"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/choicetest"
	"github.com/vango-dev/choicegroup/pkg/features/form"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
)

func sampleConfig() *config.Config {
	two := 2
	cfg := config.Default()
	cfg.Groups = []config.GroupConfig{
		{
			Name:     "gender",
			Mode:     "single",
			Required: true,
			Options: []config.OptionConfig{
				{Value: "male"}, {Value: "female"}, {Value: "other"},
			},
		},
		{
			Name:  "sports",
			Mode:  "multi",
			Value: []any{"chess"},
			Rules: []config.RuleConfig{
				{Name: "atMostTwo", Max: &two},
				{Name: "noDarts", Expr: `!("darts" in selected)`},
			},
			Options: []config.OptionConfig{
				{Value: "running", Label: "Running"},
				{Value: "chess"},
				{Value: "darts", Disabled: true},
			},
		},
		{
			Name:            "color",
			Mode:            "select",
			InteractionMode: "mac",
			Options: []config.OptionConfig{
				{Value: "red"}, {Value: "blue", Checked: true},
			},
		},
	}
	return cfg
}

func TestBuild(t *testing.T) {
	c, err := catalog.Build(sampleConfig())
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "gender", entries[0].Name())
	assert.Equal(t, "single", entries[0].Kind())
	assert.Equal(t, "multi", entries[1].Kind())
	assert.Equal(t, "select", entries[2].Kind())

	gender, ok := c.Entry("gender")
	require.True(t, ok)
	assert.Nil(t, gender.Select())
	assert.Equal(t, "radio-group", gender.Group().Tag())
	assert.True(t, gender.Group().HasFeedbackFor(choice.SeverityError), "required radio starts invalid")

	sports, _ := c.Entry("sports")
	assert.Equal(t, []any{"chess"}, sports.Group().ModelValue())
	require.NotNil(t, sports.Rules())
	assert.Len(t, sports.Rules().Rules(), 2)
	assert.True(t, sports.Group().At(2).Disabled())

	color, _ := c.Entry("color")
	require.NotNil(t, color.Select())
	assert.Equal(t, selectrich.Mac, color.Select().Mode())
	assert.Equal(t, "blue", color.Group().ModelValue())
	assert.Same(t, color.Select(), color.Field())

	_, ok = c.Entry("missing")
	assert.False(t, ok)
	assert.Len(t, c.Form().Fields(), 3)
}

func TestBuild_SelectAutoChecksFirst(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = []config.GroupConfig{{
		Name: "color", Mode: "select",
		Options: []config.OptionConfig{{Value: "red"}, {Value: "blue"}},
	}}
	c, err := catalog.Build(cfg)
	require.NoError(t, err)
	color, _ := c.Entry("color")
	assert.Equal(t, "red", color.Group().ModelValue())
	assert.Equal(t, 0, color.Select().CheckedIndex())
}

func TestBuild_RuleErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = []config.GroupConfig{{
		Name: "sports", Mode: "multi",
		Rules: []config.RuleConfig{{Name: "broken", CEL: "count >"}},
	}}
	_, err := catalog.Build(cfg)
	var ce *errors.Error
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E203", ce.Code)
	assert.Contains(t, ce.Suggestion, `rule "broken"`)
}

func TestBuild_NameConflict(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = []config.GroupConfig{{
		Name: "gender", Mode: "single",
		Options: []config.OptionConfig{{Value: "x", Name: "other"}},
	}}
	_, err := catalog.Build(cfg)
	var ce *errors.Error
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, "E101", ce.Code)
	assert.ErrorIs(t, err, choice.ErrNameConflict)
}

func TestBuildRules(t *testing.T) {
	set, err := catalog.BuildRules(config.GroupConfig{Name: "empty"}, nil)
	require.NoError(t, err)
	assert.Nil(t, set)

	one := 1
	set, err = catalog.BuildRules(config.GroupConfig{
		Name:     "sports",
		Required: true,
		Rules: []config.RuleConfig{
			{Name: "min", Min: &one, Severity: "warning"},
			{Name: "js", JS: "count < 3"},
			{Name: "cel", CEL: "count < 3"},
			{Name: "only", OneOf: []any{"a", "b"}},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, set.Rules(), 5)
	assert.Equal(t, choice.SeverityWarning, set.Rules()[1].Severity())

	fb := set.Validate([]any{"c"})
	assert.Equal(t, choice.Feedback{"only": choice.SeverityError}, fb)
}

func TestEntrySnapshot(t *testing.T) {
	c, err := catalog.Build(sampleConfig())
	require.NoError(t, err)

	sports, _ := c.Entry("sports")
	var snap catalog.Snapshot
	sports.Do(func(e *catalog.Entry) error {
		snap = e.Snapshot()
		return nil
	})
	assert.Equal(t, "multi", snap.Mode)
	assert.Equal(t, []any{"chess"}, snap.Value)
	require.Len(t, snap.Members, 3)
	assert.Equal(t, "Running", snap.Members[0].Label)
	assert.True(t, snap.Members[1].Checked)
	assert.True(t, snap.Members[2].Disabled)
	assert.Nil(t, snap.Opened)

	gender, _ := c.Entry("gender")
	gender.Do(func(e *catalog.Entry) error {
		snap = e.Snapshot()
		return nil
	})
	assert.Nil(t, snap.Value)
	assert.Equal(t, choice.Feedback{"Required": choice.SeverityError}, snap.Feedback)

	color, _ := c.Entry("color")
	color.Do(func(e *catalog.Entry) error {
		snap = e.Snapshot()
		return nil
	})
	require.NotNil(t, snap.Opened)
	assert.False(t, *snap.Opened)
	assert.Equal(t, 1, *snap.ActiveIndex)
}

func TestSubscribe(t *testing.T) {
	c, err := catalog.Build(sampleConfig())
	require.NoError(t, err)

	rec := choicetest.NewRecorder()
	unsubscribe := c.Subscribe(rec)

	gender, _ := c.Entry("gender")
	color, _ := c.Entry("color")
	gender.Do(func(e *catalog.Entry) error {
		e.Group().SetModelValue("female")
		return nil
	})
	color.Do(func(e *catalog.Entry) error {
		e.Select().SetCheckedIndex(0)
		return nil
	})
	assert.Equal(t, 2, rec.Count())

	unsubscribe()
	gender.Do(func(e *catalog.Entry) error {
		e.Group().SetModelValue("male")
		return nil
	})
	assert.Equal(t, 2, rec.Count())
}

func TestSubmit(t *testing.T) {
	c, err := catalog.Build(sampleConfig())
	require.NoError(t, err)

	var saved []form.Submission
	sink := form.SinkFunc(func(_ context.Context, sub form.Submission) error {
		saved = append(saved, sub)
		return nil
	})

	_, err = c.Submit(context.Background(), sink)
	assert.ErrorIs(t, err, form.ErrInvalid)
	assert.Empty(t, saved)

	gender, _ := c.Entry("gender")
	gender.Do(func(e *catalog.Entry) error {
		e.Group().SetModelValue("other")
		return nil
	})
	sub, err := c.Submit(context.Background(), sink)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "choicegroup", sub.Form)
	assert.Equal(t, choice.Pair{Value: "other", Checked: true}, sub.Values["gender"])
}

func TestConcurrentAccess(t *testing.T) {
	c, err := catalog.Build(sampleConfig())
	require.NoError(t, err)
	sports, _ := c.Entry("sports")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sports.Do(func(e *catalog.Entry) error {
				e.Group().At(i % 2).Click()
				return nil
			})
		}(i)
	}
	wg.Wait()

	// Eight clicks, four per member: every member is back where it started.
	sports.Do(func(e *catalog.Entry) error {
		assert.Equal(t, []any{"chess"}, e.Group().ModelValue())
		return nil
	})
}
