package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/vango-dev/choicegroup/pkg/dispatch"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestKafkaProducesKeyedRecords(t *testing.T) {
	prod := &fakeProducer{}
	d := dispatch.NewKafka(prod, "choice-changes")
	assert.Equal(t, "choice-changes", d.Topic())

	env := dispatch.Envelope{ID: uuid.New(), Group: "colors", Seq: 2, Value: []any{"red"}}
	require.NoError(t, d.Dispatch(context.Background(), env))

	require.Len(t, prod.records, 1)
	rec := prod.records[0]
	assert.Equal(t, "choice-changes", rec.Topic)
	assert.Equal(t, []byte("colors"), rec.Key)
	assert.JSONEq(t, `{"id":"`+env.ID.String()+`","groupId":0,"group":"colors","seq":2,"value":["red"],"previous":null,"at":"0001-01-01T00:00:00Z"}`, string(rec.Value))
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, env.ID.String(), string(rec.Headers[0].Value))
}

func TestKafkaReturnsFirstProduceError(t *testing.T) {
	boom := errors.New("not leader for partition")
	d := dispatch.NewKafka(&fakeProducer{err: boom}, "choice-changes")

	err := d.Dispatch(context.Background(), dispatch.Envelope{})
	assert.ErrorIs(t, err, boom)
}
