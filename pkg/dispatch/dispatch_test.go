package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/dispatch"
)

func TestEnvelopeEncoding(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	env := dispatch.NewEnvelope(choice.Change{
		GroupID:  7,
		Group:    "gender",
		Seq:      3,
		Value:    choice.Unchecked,
		Previous: "male",
	}, at)

	raw, err := env.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, env.ID.String(), decoded["id"])
	assert.Equal(t, "gender", decoded["group"])
	assert.Equal(t, float64(3), decoded["seq"])
	assert.Equal(t, "", decoded["value"], "no selection is encoded as an empty string")
	assert.Equal(t, "male", decoded["previous"])
	assert.Equal(t, "2024-03-01T11:00:00Z", decoded["at"])
}

func TestMultiRunsEveryDispatcher(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	var calls []string
	record := func(name string, err error) dispatch.Dispatcher {
		return dispatch.DispatcherFunc(func(context.Context, dispatch.Envelope) error {
			calls = append(calls, name)
			return err
		})
	}

	m := dispatch.Multi{record("a", first), nil, record("b", nil), record("c", second)}
	err := m.Dispatch(context.Background(), dispatch.Envelope{})

	assert.Equal(t, []string{"a", "b", "c"}, calls)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.NoError(t, dispatch.Multi{}.Dispatch(context.Background(), dispatch.Envelope{}))
	assert.NoError(t, dispatch.Discard.Dispatch(context.Background(), dispatch.Envelope{}))
}
