package ui

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/toolfinder/internal/directory"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/observability"
	appsession "finitefield.org/toolfinder/internal/session"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// EventObserver records dispatched events.
type EventObserver interface {
	ObserveEvent(event, tone string)
}

// Delays controls the confirmation timings rendered into follow-up requests.
type Delays struct {
	Success     time.Duration
	ReviewClose time.Duration
	MessageTTL  time.Duration
}

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Controller *directory.Controller
	States     *directory.Store
	Events     EventObserver
	Delays     Delays
	Title      string
	Logger     *zap.Logger
}

// Handlers exposes HTTP handlers for the directory page and its fragments.
type Handlers struct {
	controller *directory.Controller
	states     *directory.Store
	events     EventObserver
	delays     Delays
	title      string
	logger     *zap.Logger
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Controller == nil {
		panic("ui: controller is required")
	}
	states := deps.States
	if states == nil {
		states = directory.NewStore(0, 0)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		controller: deps.Controller,
		states:     states,
		events:     deps.Events,
		delays:     deps.Delays,
		title:      deps.Title,
		logger:     logger,
	}
}

// visitor resolves the stored per-session state, creating it if needed, and
// restores the persisted token into it. It is used by requests that record
// something for later ones: star selections and the admin tool cache.
func (h *Handlers) visitor(r *http.Request) (*appsession.Session, *directory.State) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return nil, &directory.State{}
	}
	st := h.states.Get(sess.ID())
	h.controller.RestoreSession(st, sess.Token())
	return sess, st
}

// viewer is visitor for requests that leave nothing behind. An existing
// state is reused; otherwise the request works on a transient one, so
// cookie-less traffic does not fill the store.
func (h *Handlers) viewer(r *http.Request) (*appsession.Session, *directory.State) {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		return nil, &directory.State{}
	}
	st, found := h.states.Lookup(sess.ID())
	if !found {
		st = &directory.State{}
	}
	h.controller.RestoreSession(st, sess.Token())
	return sess, st
}

// dispatch runs ev; failures are already logged by the controller and are
// reflected in the outcome's tone.
func (h *Handlers) dispatch(r *http.Request, st *directory.State, ev directory.Event) directory.Outcome {
	out, _ := h.controller.Dispatch(r.Context(), st, ev)
	if h.events != nil {
		h.events.ObserveEvent(out.Event, string(out.Tone))
	}
	return out
}

func (h *Handlers) log(r *http.Request) *zap.Logger {
	return observability.FromContextOr(r.Context(), h.logger)
}

func (h *Handlers) message(out directory.Outcome) partials.MessageData {
	return partials.MessageData{Tone: string(out.Tone), Text: out.Message, TTL: h.delays.MessageTTL}
}

func render(w http.ResponseWriter, r *http.Request, components ...templ.Component) {
	templ.Handler(helpers.Join(components...)).ServeHTTP(w, r)
}

// skip answers a fragment request whose data could not be loaded. htmx does
// not swap on 204, so the previous content stays on screen.
func skip(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
