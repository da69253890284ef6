package form

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/vango-dev/choicegroup/pkg/features/form Sink

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
)

// Submission is one saved snapshot of a form.
type Submission struct {
	ID          uuid.UUID      `json:"id"`
	Form        string         `json:"form"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Values      map[string]any `json:"values"`
	Client      *Client        `json:"client,omitempty"`
}

// Client describes the user agent a submission came from.
type Client struct {
	Browser string `json:"browser"`
	Version string `json:"version"`
	OS      string `json:"os"`
	Mobile  bool   `json:"mobile"`
}

// Sink stores submissions.
type Sink interface {
	Save(ctx context.Context, sub Submission) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sub Submission) error

// Save calls f(ctx, sub).
func (f SinkFunc) Save(ctx context.Context, sub Submission) error { return f(ctx, sub) }

// SubmitOption adds metadata to a submission.
type SubmitOption func(*Submission)

// WithUserAgent records the parsed User-Agent header. Empty headers are
// ignored.
func WithUserAgent(header string) SubmitOption {
	return func(s *Submission) {
		if header == "" {
			return
		}
		ua := useragent.New(header)
		name, version := ua.Browser()
		s.Client = &Client{
			Browser: name,
			Version: version,
			OS:      ua.OS(),
			Mobile:  ua.Mobile(),
		}
	}
}
