package choice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/choicetest"
)

func TestRadioReselectionNotifiesOnce(t *testing.T) {
	g, members := newGenderRadio(t)
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	members[0].SetChecked(true)

	require.Equal(t, 1, rec.Count())
	last, _ := rec.Last()
	assert.Equal(t, "male", last.Value)
	assert.Equal(t, "female", last.Previous)
	assert.Equal(t, "gender", last.Group)
	assert.Equal(t, g.ID(), last.GroupID)
	assert.False(t, members[1].Checked())
}

func TestOneNotificationPerLogicalChange(t *testing.T) {
	g := choice.NewRadioGroup("")
	members := []*choice.Element{
		choice.NewChoice("male", choice.Named("gender[]")),
		choice.NewElement(map[string]any{"value": "female", "checked": true}, choice.Named("gender[]")),
		choice.NewChoice("other", choice.Named("gender[]")),
	}
	require.NoError(t, g.Declare(members...))
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	members[0].SetChecked(true)
	assert.Equal(t, 1, rec.Count(), "male checked and female unchecked collapse into one change")

	members[0].SetChecked(true)
	assert.Equal(t, 1, rec.Count(), "unchanged values notify nothing")

	members[2].SetChecked(true)
	assert.Equal(t, 2, rec.Count())

	g.SetModelValue("foo")
	assert.Equal(t, 2, rec.Count(), "values without a member notify nothing")

	g.SetModelValue("male")
	assert.Equal(t, 3, rec.Count())

	assert.Equal(t, []any{"male", "other", "male"}, rec.Values())
	changes := rec.Changes()
	for i := 1; i < len(changes); i++ {
		assert.Equal(t, changes[i-1].Seq+1, changes[i].Seq)
	}
}

func TestAssigningCurrentValueIsANoOp(t *testing.T) {
	g := choice.NewCheckboxGroup("sports[]")
	members := choicetest.ChoicesChecked([]any{"running", "swimming"}, 1)
	require.NoError(t, g.Declare(members...))
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	validations := 0
	g.SetValidator(choice.ValidatorFunc(func(any) choice.Feedback {
		validations++
		return nil
	}))
	validations = 0

	g.SetModelValue([]string{"swimming"})
	members[1].SetChecked(true)
	members[0].SetChecked(false)

	assert.Zero(t, rec.Count())
	assert.Zero(t, validations, "no batch was entered")
	assert.Equal(t, []any{"swimming"}, g.ModelValue())
}

func TestBatchCollapsesWrites(t *testing.T) {
	g := choice.NewCheckboxGroup("sports[]")
	members := choicetest.Choices("running", "swimming", "cycling")
	require.NoError(t, g.Declare(members...))
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	g.Batch(func() {
		members[0].SetChecked(true)
		members[2].SetChecked(true)
		assert.Equal(t, []any{"running", "cycling"}, g.ModelValue(), "reads inside a batch see every write")
		assert.Zero(t, rec.Count())
	})

	require.Equal(t, 1, rec.Count())
	last, _ := rec.Last()
	assert.Equal(t, []any{"running", "cycling"}, last.Value)
	assert.Equal(t, []any{}, last.Previous)
}

func TestNestedBatchesNotifyOnceAtTheOutermost(t *testing.T) {
	g, members := newGenderRadio(t)
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	g.BatchNamed("outer", func() {
		members[0].SetChecked(true)
		g.Batch(func() {
			members[2].SetChecked(true)
		})
		assert.Zero(t, rec.Count())
	})

	assert.Equal(t, 1, rec.Count())
	assert.Equal(t, "other", g.ModelValue())
}

func TestBatchThatNetsToNoChangeIsSilent(t *testing.T) {
	g, members := newGenderRadio(t)
	rec := choicetest.NewRecorder()
	g.Subscribe(rec)

	g.Batch(func() {
		members[0].SetChecked(true)
		members[1].SetChecked(true)
	})

	assert.Zero(t, rec.Count())
	assert.Equal(t, "female", g.ModelValue())
}

func TestSiblingGroupsDoNotCrossNotify(t *testing.T) {
	a, aMembers := newGenderRadio(t)
	b, bMembers := newGenderRadio(t)
	recA, recB := choicetest.NewRecorder(), choicetest.NewRecorder()
	a.Subscribe(recA)
	b.Subscribe(recB)

	a.Batch(func() {
		aMembers[0].SetChecked(true)
		bMembers[2].SetChecked(true)
		assert.Equal(t, 1, recB.Count(), "b is not part of a's batch")
	})

	assert.Equal(t, 1, recA.Count())
	assert.Equal(t, 1, recB.Count())
	assert.Equal(t, "male", a.ModelValue())
	assert.Equal(t, "other", b.ModelValue())

	standalone := choice.NewChoice("x")
	standalone.SetChecked(true)
	assert.Equal(t, 1, recA.Count())
	assert.Equal(t, 1, recB.Count())
}

func TestDeclareNotifiesOnce(t *testing.T) {
	rec := choicetest.NewRecorder()
	g := choice.NewCheckboxGroup("sports[]", choice.WithListener(rec))

	require.NoError(t, g.Declare(choicetest.ChoicesChecked([]any{"running", "swimming", "cycling"}, 0, 1, 2)...))

	require.Equal(t, 1, rec.Count())
	last, _ := rec.Last()
	assert.Equal(t, []any{"running", "swimming", "cycling"}, last.Value)
}

func TestListenersMayMutateTheGroup(t *testing.T) {
	g, members := newGenderRadio(t)
	var seen []any
	g.OnChange(func(c choice.Change) {
		seen = append(seen, c.Value)
		if c.Value == "male" {
			members[2].SetChecked(true)
		}
	})

	members[0].SetChecked(true)

	assert.Equal(t, []any{"male", "other"}, seen)
	assert.Equal(t, "other", g.ModelValue())
}

func TestUnsubscribe(t *testing.T) {
	g, members := newGenderRadio(t)
	rec := choicetest.NewRecorder()
	unsubscribe := g.Subscribe(rec)

	members[0].SetChecked(true)
	unsubscribe()
	members[2].SetChecked(true)

	assert.Equal(t, 1, rec.Count())
	assert.NotPanics(t, unsubscribe)
	assert.NotPanics(t, g.Subscribe(nil))
	assert.NotPanics(t, g.OnChange(nil))
}
