package submit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/pkg/features/form"
)

// ErrNotFound is returned when a submission doesn't exist.
var ErrNotFound = errors.New("submit: submission not found")

// Store is a sink that can read submissions back.
type Store interface {
	form.Sink
	Load(ctx context.Context, id uuid.UUID) (form.Submission, error)
}

func encode(sub form.Submission) ([]byte, error) {
	return json.Marshal(sub)
}

func decode(data []byte) (form.Submission, error) {
	var sub form.Submission
	err := json.Unmarshal(data, &sub)
	return sub, err
}

// Multi saves every submission to each sink in order. All sinks are tried;
// the failures are joined.
type Multi []form.Sink

// Save implements form.Sink.
func (m Multi) Save(ctx context.Context, sub form.Submission) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load implements Store using the first sink that can load.
func (m Multi) Load(ctx context.Context, id uuid.UUID) (form.Submission, error) {
	for _, s := range m {
		if st, ok := s.(Store); ok {
			return st.Load(ctx, id)
		}
	}
	return form.Submission{}, ErrNotFound
}
