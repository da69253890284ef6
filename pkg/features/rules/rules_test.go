package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/choicetest"
	"github.com/vango-dev/choicegroup/pkg/features/rules"
)

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  rules.Rule
		value any
		want  bool
	}{
		{"required unchecked", rules.Required(), choice.Unchecked, false},
		{"required empty list", rules.Required(), []any{}, false},
		{"required empty string is a value", rules.Required(), "", true},
		{"required zero is a value", rules.Required(), 0, true},
		{"required list", rules.Required(), []any{"a"}, true},
		{"min passes when empty", rules.MinSelected(2), []any{}, true},
		{"min too few", rules.MinSelected(2), []any{"a"}, false},
		{"min enough", rules.MinSelected(2), []any{"a", "b"}, true},
		{"max ok", rules.MaxSelected(1), []any{"a"}, true},
		{"max too many", rules.MaxSelected(1), []any{"a", "b"}, false},
		{"one of ok", rules.OneOf([]any{"a", "b"}), []any{"b"}, true},
		{"one of numeric kinds", rules.OneOf([]any{1, 2}), float64(2), true},
		{"one of rejects", rules.OneOf([]any{"a", "b"}), []any{"a", "c"}, false},
		{"custom", rules.Custom("IsMale", func(v any) bool { return v == "male" }), "male", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.rule.Check(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRuleOptions(t *testing.T) {
	r := rules.Required(rules.WithSeverity(choice.SeverityWarning), rules.WithName("PickOne"))
	assert.Equal(t, "PickOne", r.Name())
	assert.Equal(t, choice.SeverityWarning, r.Severity())

	d := rules.MaxSelected(1)
	assert.Equal(t, "MaxSelected", d.Name())
	assert.Equal(t, choice.SeverityError, d.Severity())
}

func TestExpressionRules(t *testing.T) {
	exprRule, err := rules.Expr("NoMonday", `!("monday" in selected)`)
	require.NoError(t, err)
	celRule, err := rules.CEL("AtMostTwo", `count <= 2`)
	require.NoError(t, err)
	jsRule, err := rules.JS("Short", `selected.every(function(s) { return s.length < 8 })`)
	require.NoError(t, err)

	tests := []struct {
		name  string
		rule  rules.Rule
		value any
		want  bool
	}{
		{"expr passes", exprRule, []any{"tuesday"}, true},
		{"expr fails", exprRule, []any{"tuesday", "monday"}, false},
		{"expr unchecked", exprRule, choice.Unchecked, true},
		{"cel passes", celRule, []any{"a", "b"}, true},
		{"cel fails", celRule, []any{"a", "b", "c"}, false},
		{"cel single value", celRule, "a", true},
		{"js passes", jsRule, []any{"red", "green"}, true},
		{"js fails", jsRule, []any{"red", "turquoise"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.rule.Check(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCELValueVariable(t *testing.T) {
	r, err := rules.CEL("NotOther", `value != "other"`)
	require.NoError(t, err)

	ok, err := r.Check("male")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Check("other")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, `value != "other"`, r.Source())
}

func TestExpressionRulesRejectBadSource(t *testing.T) {
	_, err := rules.Expr("Empty", "")
	assert.Error(t, err)
	_, err = rules.Expr("Broken", "count >")
	assert.Error(t, err)
	_, err = rules.CEL("Broken", "count >")
	assert.Error(t, err)
	_, err = rules.CEL("NotBool", "undefined_variable")
	assert.Error(t, err)
	_, err = rules.JS("Broken", "count >")
	assert.Error(t, err)
}

func TestNonBoolResultFails(t *testing.T) {
	r, err := rules.JS("Count", `count`)
	require.NoError(t, err)

	ok, err := r.Check([]any{"a"})
	assert.Error(t, err)
	assert.False(t, ok)

	feedback := rules.New(r).Validate([]any{"a"})
	assert.Equal(t, choice.Feedback{"Count": choice.SeverityError}, feedback)
}

func TestSetAsGroupValidator(t *testing.T) {
	atMostTwo, err := rules.CEL("AtMostTwo", `count <= 2`)
	require.NoError(t, err)
	set := rules.New(rules.Required()).Add(atMostTwo)
	require.Len(t, set.Rules(), 2)

	g := choice.NewCheckboxGroup("colors[]", choice.WithValidator(set))
	members := choicetest.Choices("red", "green", "blue")
	require.NoError(t, g.Declare(members...))
	assert.Equal(t, choice.Feedback{"Required": choice.SeverityError}, g.Feedback())

	members[0].SetChecked(true)
	assert.Empty(t, g.Feedback())

	g.SetModelValue([]any{"red", "green", "blue"})
	assert.Equal(t, choice.Feedback{"AtMostTwo": choice.SeverityError}, g.Feedback())
	assert.True(t, g.HasFeedbackFor(choice.SeverityError))
}

func TestRequiredOnRadioGroup(t *testing.T) {
	g := choice.NewRadioGroup("gender", choice.WithValidator(rules.New(rules.Required())))
	members := choicetest.Choices("male", map[string]any{"subObject": "satisfies required"})
	require.NoError(t, g.Declare(members...))
	assert.True(t, g.HasFeedbackFor(choice.SeverityError))

	members[1].SetChecked(true)
	assert.False(t, g.HasFeedbackFor(choice.SeverityError))
}
