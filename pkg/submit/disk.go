package submit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/pkg/features/form"
)

// DiskSink stores submissions as <dir>/<form>/<id>.json.
type DiskSink struct {
	dir string
}

// NewDiskSink creates dir if needed and returns a sink writing into it.
func NewDiskSink(dir string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskSink{dir: dir}, nil
}

// Save implements form.Sink. The file is written to a temp name first and
// renamed, so readers never see a partial submission.
func (s *DiskSink) Save(_ context.Context, sub form.Submission) error {
	data, err := encode(sub)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.dir, sanitize(sub.Form))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, sub.ID.String()+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Load implements Store.
func (s *DiskSink) Load(_ context.Context, id uuid.UUID) (form.Submission, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*", id.String()+".json"))
	if err != nil {
		return form.Submission{}, err
	}
	if len(matches) == 0 {
		return form.Submission{}, ErrNotFound
	}
	data, err := os.ReadFile(matches[0])
	if errors.Is(err, fs.ErrNotExist) {
		return form.Submission{}, ErrNotFound
	}
	if err != nil {
		return form.Submission{}, err
	}
	sub, err := decode(data)
	if err != nil {
		return form.Submission{}, fmt.Errorf("submit: decode %s: %w", matches[0], err)
	}
	return sub, nil
}

// sanitize keeps form names usable as a single path element.
func sanitize(name string) string {
	if name == "" {
		return "_"
	}
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out[i] = '_'
		}
	}
	s := string(out)
	if s == "." || s == ".." {
		return "_"
	}
	return s
}
