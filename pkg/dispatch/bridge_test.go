package dispatch_test

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
	"github.com/vango-dev/choicegroup/pkg/dispatch"
	"github.com/vango-dev/choicegroup/pkg/dispatch/mocks"
)

type BridgeSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	dispatcher *mocks.MockDispatcher
	bridge     *dispatch.Bridge
	group      *choice.Group
	members    []*choice.Element
	now        time.Time
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dispatcher = mocks.NewMockDispatcher(s.ctrl)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.bridge = dispatch.NewBridge(s.dispatcher,
		dispatch.WithClock(func() time.Time { return s.now }),
		dispatch.WithBridgeLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		dispatch.WithTimeout(time.Second),
	)
	s.group = choice.NewRadioGroup("gender")
	s.members = choicetest.ChoicesChecked([]any{"male", "female", "other"}, 1)
	s.Require().NoError(s.group.Declare(s.members...))
}

func (s *BridgeSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BridgeSuite) TestOneEnvelopePerChange() {
	var got []dispatch.Envelope
	s.dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, env dispatch.Envelope) error {
			_, hasDeadline := ctx.Deadline()
			s.True(hasDeadline)
			got = append(got, env)
			return nil
		}).
		Times(1)

	detach := s.bridge.Attach(s.group)
	defer detach()
	s.members[0].SetChecked(true)

	s.Require().Len(got, 1)
	s.Equal("gender", got[0].Group)
	s.Equal(s.group.ID(), got[0].GroupID)
	s.Equal("male", got[0].Value)
	s.Equal("female", got[0].Previous)
	s.Equal(s.now, got[0].At)
	s.NotEmpty(got[0].ID.String())
}

func (s *BridgeSuite) TestNoEnvelopeWithoutChange() {
	s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Times(0)

	detach := s.bridge.Attach(s.group)
	defer detach()
	s.members[1].SetChecked(true)
	s.group.SetModelValue("female")
	s.group.SetModelValue("unknown")
}

func (s *BridgeSuite) TestFailuresDoNotReachTheGroup() {
	s.dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Return(errors.New("broker down")).
		Times(2)

	detach := s.bridge.Attach(s.group)
	defer detach()
	s.members[0].SetChecked(true)
	s.members[2].SetChecked(true)
	s.Equal("other", s.group.ModelValue())
}

func (s *BridgeSuite) TestDetachStopsDelivery() {
	s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	detach := s.bridge.Attach(s.group)
	s.members[0].SetChecked(true)
	detach()
	s.members[2].SetChecked(true)
}
