package form_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/choicetest"
	"github.com/vango-dev/choicegroup/pkg/features/form"
	"github.com/vango-dev/choicegroup/pkg/features/form/mocks"
	"github.com/vango-dev/choicegroup/pkg/features/rules"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

type FormSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	sink   *mocks.MockSink
	form   *form.Form
	gender *choice.Group
	sports *choice.Group
	color  *selectrich.Select
	now    time.Time
}

func TestFormSuite(t *testing.T) {
	suite.Run(t, new(FormSuite))
}

func (s *FormSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sink = mocks.NewMockSink(s.ctrl)
	s.now = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

	s.gender = choice.NewRadioGroup("gender", choice.WithValidator(rules.New(rules.Required())))
	s.Require().NoError(s.gender.Declare(choicetest.Choices("male", "female", "other")...))

	s.sports = choice.NewCheckboxGroup("sports[]", choice.WithValue([]any{"running"}))
	s.Require().NoError(s.sports.Declare(choicetest.Choices("running", "swimming")...))

	s.color = selectrich.New("color")
	s.Require().NoError(s.color.Declare(choicetest.Choices("red", "hotpink")...))

	s.form = form.New("survey",
		form.WithClock(func() time.Time { return s.now }),
		form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(s.form.Add(s.gender, s.sports, s.color))
}

func (s *FormSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FormSuite) TestAdd() {
	s.Run("duplicate names are rejected", func() {
		err := s.form.Add(choice.NewRadioGroup("gender"))
		s.ErrorIs(err, form.ErrDuplicateField)
	})

	s.Run("unnamed fields are rejected", func() {
		err := s.form.Add(choice.NewRadioGroup(""))
		s.ErrorIs(err, form.ErrUnnamedField)
	})

	s.Run("fields keep their order", func() {
		fields := s.form.Fields()
		s.Require().Len(fields, 3)
		s.Equal("gender", fields[0].Name())
		s.Equal("color", fields[2].Name())
		s.Same(s.sports, s.form.Field("sports[]"))
		s.Nil(s.form.Field("missing"))
	})
}

func (s *FormSuite) TestValues() {
	s.Equal(map[string]any{
		"gender":   choice.Unchecked,
		"sports[]": []any{"running"},
		"color":    "red",
	}, s.form.ModelValues())

	s.Equal(map[string]any{
		"gender":   "",
		"sports[]": []choice.Pair{{Value: "running", Checked: true}},
		"color":    choice.Pair{Value: "red", Checked: true},
	}, s.form.Values())
}

func (s *FormSuite) TestDirtyAndReset() {
	s.False(s.form.IsDirty())

	s.Require().NoError(s.form.Set("gender", "female"))
	s.Require().NoError(s.form.Set("sports[]", []any{"swimming"}))
	s.True(s.form.IsDirty())
	s.True(s.form.FieldDirty("gender"))
	s.False(s.form.FieldDirty("color"))

	s.ErrorIs(s.form.Set("missing", "x"), form.ErrUnknownField)

	s.form.Reset()
	s.False(s.form.IsDirty())
	s.Equal(choice.Unchecked, s.gender.ModelValue())
	s.Equal([]any{"running"}, s.sports.ModelValue())
}

func (s *FormSuite) TestSubmitInvalidFormIsNotSaved() {
	s.sink.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.form.Submit(context.Background(), s.sink)
	s.Require().ErrorIs(err, form.ErrInvalid)

	var invalid *form.InvalidError
	s.Require().ErrorAs(err, &invalid)
	s.Equal(map[string][]string{"gender": {"Required"}}, invalid.Errors)
	s.True(s.form.HasError("gender"))
	s.Equal([]string{"Required"}, s.form.FieldErrors("gender"))
	s.False(s.form.IsValid())
	s.Contains(err.Error(), "gender")
}

func (s *FormSuite) TestSubmitSavesSerializedValues() {
	s.Require().NoError(s.form.Set("gender", "other"))

	var saved form.Submission
	s.sink.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sub form.Submission) error {
			s.True(s.form.IsSubmitting())
			saved = sub
			return nil
		})

	sub, err := s.form.Submit(context.Background(), s.sink, form.WithUserAgent(firefoxUA))
	s.Require().NoError(err)
	s.False(s.form.IsSubmitting())
	s.True(s.form.IsValid())

	s.Equal(saved, sub)
	s.Equal("survey", sub.Form)
	s.Equal(s.now.Truncate(time.Millisecond), sub.SubmittedAt)
	s.Equal(choice.Pair{Value: "other", Checked: true}, sub.Values["gender"])
	s.Require().NotNil(sub.Client)
	s.Equal("Firefox", sub.Client.Browser)
	s.False(sub.Client.Mobile)
}

func (s *FormSuite) TestSubmitWrapsSinkErrors() {
	s.Require().NoError(s.form.Set("gender", "male"))
	boom := errors.New("disk full")
	s.sink.EXPECT().Save(gomock.Any(), gomock.Any()).Return(boom)

	_, err := s.form.Submit(context.Background(), s.sink)
	s.ErrorIs(err, boom)
	s.False(s.form.IsSubmitting())
}

func (s *FormSuite) TestSinkFunc() {
	s.Require().NoError(s.form.Set("gender", "male"))
	var got []string
	sink := form.SinkFunc(func(_ context.Context, sub form.Submission) error {
		got = append(got, sub.ID.String())
		return nil
	})

	sub, err := s.form.Submit(context.Background(), sink, form.WithUserAgent(""))
	s.Require().NoError(err)
	s.Equal([]string{sub.ID.String()}, got)
	s.Nil(sub.Client)
}
