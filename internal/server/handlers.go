package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vango-dev/choicegroup/internal/catalog"
	"github.com/vango-dev/choicegroup/internal/errors"
	"github.com/vango-dev/choicegroup/pkg/choice"
	"github.com/vango-dev/choicegroup/pkg/features/form"
	"github.com/vango-dev/choicegroup/pkg/features/selectrich"
	"github.com/vango-dev/choicegroup/pkg/middleware"
	"github.com/vango-dev/choicegroup/pkg/submit"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type valueRequest struct {
	Value     any  `json:"value"`
	Unchecked bool `json:"unchecked"`
}

type memberRequest struct {
	Checked bool `json:"checked"`
}

type keyRequest struct {
	Key string `json:"key"`

	// Event is "up" (default) or "down".
	Event string `json:"event"`
}

type errorResponse struct {
	Error  *errors.Error       `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.Error) {
	writeJSON(w, status, errorResponse{Error: err})
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E500").Wrap(err))
		return v, false
	}
	return v, true
}

func (s *Server) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg,
		"error", err,
		"path", r.URL.Path,
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, errors.FromError(err, "E401"))
}

// entry resolves the {name} path parameter.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (*catalog.Entry, bool) {
	name := chi.URLParam(r, "name")
	e, ok := s.cat.Entry(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("E102").WithSuggestionf("no group named %q", name))
		return nil, false
	}
	return e, true
}

func memberIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E500").Wrap(err).WithSuggestion("member index must be an integer"))
		return 0, false
	}
	return i, true
}

// mutate runs fn with the entry locked and answers with the resulting
// snapshot. fn returns an HTTP status and error to reject the request.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, e *catalog.Entry, fn func(e *catalog.Entry) (int, error)) {
	var (
		snap   catalog.Snapshot
		status int
	)
	err := e.Do(func(e *catalog.Entry) error {
		var err error
		if status, err = fn(e); err != nil {
			return err
		}
		snap = e.Snapshot()
		return nil
	})
	if err != nil {
		var ce *errors.Error
		if stderrors.As(err, &ce) && status != 0 {
			writeError(w, status, ce)
			return
		}
		s.internal(w, r, "group update failed", err)
		return
	}
	s.logger.InfoContext(r.Context(), "group updated",
		"group", e.Name(),
		"subject", middleware.Subject(r.Context()),
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusOK, snap)
}

func notInteractive(e *catalog.Entry, why string) (int, error) {
	return http.StatusConflict, errors.New("E501").WithSuggestionf("group %q %s", e.Name(), why)
}

// interactive rejects writes to disabled and read-only groups.
func interactive(e *catalog.Entry) (int, error) {
	g := e.Group()
	switch {
	case g.Disabled():
		return notInteractive(e, "is disabled")
	case g.ReadOnly():
		return notInteractive(e, "is read-only")
	}
	return 0, nil
}

func member(e *catalog.Entry, i int) (*choice.Element, int, error) {
	m := e.Group().At(i)
	if m == nil {
		return nil, http.StatusNotFound, errors.New("E103").
			WithSuggestionf("group %q has %d members, index %d", e.Name(), e.Group().Len(), i)
	}
	return m, 0, nil
}

func selectOf(e *catalog.Entry) (*selectrich.Select, int, error) {
	if e.Select() == nil {
		status, err := notInteractive(e, "is not a select")
		return nil, status, err
	}
	return e.Select(), 0, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request) {
	entries := s.cat.Entries()
	out := make([]catalog.Snapshot, len(entries))
	for i, e := range entries {
		e.Do(func(e *catalog.Entry) error {
			out[i] = e.Snapshot()
			return nil
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	var snap catalog.Snapshot
	e.Do(func(e *catalog.Entry) error {
		snap = e.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	req, ok := decode[valueRequest](w, r)
	if !ok {
		return
	}
	s.mutate(w, r, e, func(e *catalog.Entry) (int, error) {
		if status, err := interactive(e); err != nil {
			return status, err
		}
		v := req.Value
		if req.Unchecked {
			v = choice.Unchecked
		}
		e.Group().SetModelValue(v)
		return 0, nil
	})
}

func (s *Server) handleSetMember(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	i, ok := memberIndex(w, r)
	if !ok {
		return
	}
	req, ok := decode[memberRequest](w, r)
	if !ok {
		return
	}
	s.mutate(w, r, e, func(e *catalog.Entry) (int, error) {
		m, status, err := member(e, i)
		if err != nil {
			return status, err
		}
		if status, err := interactive(e); err != nil {
			return status, err
		}
		if m.Disabled() {
			return notInteractive(e, "member "+strconv.Itoa(i)+" is disabled")
		}
		if sel := e.Select(); sel != nil && req.Checked {
			sel.SetCheckedIndex(i)
			return 0, nil
		}
		m.SetChecked(req.Checked)
		return 0, nil
	})
}

func (s *Server) handleClickMember(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	i, ok := memberIndex(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, e, func(e *catalog.Entry) (int, error) {
		m, status, err := member(e, i)
		if err != nil {
			return status, err
		}
		if sel := e.Select(); sel != nil {
			return http.StatusInternalServerError, sel.ClickOption(r.Context(), i)
		}
		m.Click()
		return 0, nil
	})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	s.handleSelect(w, r, func(sel *selectrich.Select) error { return sel.Open(r.Context()) })
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.handleSelect(w, r, func(sel *selectrich.Select) error { return sel.Close(r.Context()) })
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[keyRequest](w, r)
	if !ok {
		return
	}
	key := selectrich.Key(req.Key)
	if strings.EqualFold(req.Key, "space") {
		key = selectrich.KeySpace
	}
	s.handleSelect(w, r, func(sel *selectrich.Select) error {
		if req.Event == "down" {
			return sel.KeyDown(r.Context(), key)
		}
		return sel.KeyUp(r.Context(), key)
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, fn func(sel *selectrich.Select) error) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, e, func(e *catalog.Entry) (int, error) {
		sel, status, err := selectOf(e)
		if err != nil {
			return status, err
		}
		err = fn(sel)
		if stderrors.Is(err, selectrich.ErrNotInteractive) {
			return notInteractive(e, "is disabled or read-only")
		}
		return http.StatusInternalServerError, err
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.cat.Entry(name); !ok {
		writeError(w, http.StatusNotFound, errors.New("E102").WithSuggestionf("no group named %q", name))
		return
	}
	if err := s.hub.ServeWS(w, r, name); err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "group", name, "error", err)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if len(s.res.Sink) == 0 {
		writeError(w, http.StatusServiceUnavailable, errors.New("E504"))
		return
	}
	sub, err := s.cat.Submit(r.Context(), s.res.Sink, form.WithUserAgent(r.UserAgent()))
	if err != nil {
		var invalid *form.InvalidError
		if stderrors.As(err, &invalid) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  errors.New("E502"),
				Fields: invalid.Errors,
			})
			return
		}
		s.internal(w, r, "submission failed", err)
		return
	}
	s.logger.InfoContext(r.Context(), "form submitted",
		"submission", sub.ID,
		"subject", middleware.Subject(r.Context()),
		"request_id", chimw.GetReqID(r.Context()),
	)
	w.Header().Set("Location", "/submissions/"+sub.ID.String())
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("E500").Wrap(err).WithSuggestion("submission IDs are UUIDs"))
		return
	}
	if len(s.res.Sink) == 0 {
		writeError(w, http.StatusServiceUnavailable, errors.New("E504"))
		return
	}
	sub, err := s.res.Sink.Load(r.Context(), id)
	if stderrors.Is(err, submit.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New("E503"))
		return
	}
	if err != nil {
		s.internal(w, r, "loading submission failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
