package ui

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	appsession "finitefield.org/toolfinder/internal/session"
	"finitefield.org/toolfinder/internal/templates/auth"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/layouts"
	"finitefield.org/toolfinder/internal/templates/partials"
	"finitefield.org/toolfinder/internal/templates/tools"
)

// Index renders the full page with the public catalog.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	render(w, r, layouts.Page(h.pageData(r, nil)))
}

// pageData loads the public catalog for the filters in the URL. A failed
// load renders an empty grid without the "No tools found" placeholder.
func (h *Handlers) pageData(r *http.Request, modal templ.Component) layouts.PageData {
	_, st := h.viewer(r)
	filter := catalog.FilterFromValues(r.URL.Query())
	list, err := h.controller.LoadTools(r.Context(), filter)
	return layouts.PageData{
		Title:       h.title,
		Environment: custommw.EnvironmentFromContext(r.Context()),
		Controls:    controlsFor(st, false),
		Filters:     tools.FiltersData{Filter: filter},
		Grid:        tools.GridData{Tools: list, Unavailable: err != nil},
		Modal:       modal,
	}
}

// ToolsGrid renders the public grid for the submitted filters.
func (h *Handlers) ToolsGrid(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	list, err := h.controller.LoadTools(r.Context(), filter)
	if err != nil {
		skip(w)
		return
	}
	w.Header().Set("HX-Replace-Url", helpers.BuildURL(helpers.Path(r.Context(), "/"), filter.Encode()))
	render(w, r, tools.Grid(tools.GridData{Tools: list}))
}

// ReviewNew opens the review form for a tool.
func (h *Handlers) ReviewNew(w http.ResponseWriter, r *http.Request) {
	toolID := catalog.ID(strings.TrimSpace(r.URL.Query().Get("tool_id")))
	if toolID.IsZero() {
		http.Error(w, "tool_id is required", http.StatusBadRequest)
		return
	}
	_, st := h.viewer(r)
	form := h.controller.OpenReviewForm(st, toolID)
	render(w, r, partials.Modal(tools.ReviewForm(tools.ReviewFormData{Form: form}), false))
}

// ReviewRating records a star click and re-renders the widget.
func (h *Handlers) ReviewRating(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rating, ok := parseRating(r.PostFormValue("rating"))
	if !ok {
		http.Error(w, "rating must be between 0 and 5", http.StatusBadRequest)
		return
	}
	_, st := h.visitor(r)
	form := h.controller.SetRating(st, catalog.ID(strings.TrimSpace(r.PostFormValue("tool_id"))), rating)
	render(w, r, tools.Stars(tools.StarsData{ToolID: form.ToolID, Rating: form.Rating}))
}

// ReviewSubmit posts a guest review. On success the form shows the
// confirmation and closes itself after the review delay.
func (h *Handlers) ReviewSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, st := h.viewer(r)
	form := directory.ReviewForm{
		ToolID: catalog.ID(strings.TrimSpace(r.PostFormValue("tool_id"))),
		Rating: st.SelectedRating(),
		Text:   r.PostFormValue("review_text"),
	}
	if rating, ok := parseRating(r.PostFormValue("rating")); ok {
		form.Rating = rating
	}

	out := h.dispatch(r, st, directory.SubmitReviewEvent{
		ToolID: form.ToolID,
		Rating: float64(form.Rating),
		Text:   form.Text,
	})

	data := tools.ReviewFormData{Form: form, Message: h.message(out)}
	if out.OK() {
		data.FollowUp = &partials.FollowUpData{
			URL:    helpers.Path(r.Context(), "/modal/close"),
			Delay:  h.delays.ReviewClose,
			Target: "#" + partials.ModalID,
			Swap:   "outerHTML",
		}
	}
	render(w, r, partials.Modal(tools.ReviewForm(data), false))
}

// ModalClose swaps the modal host back to its empty state.
func (h *Handlers) ModalClose(w http.ResponseWriter, r *http.Request) {
	render(w, r, partials.Modal(nil, false))
}

func controlsFor(st *directory.State, oob bool) auth.ControlsData {
	token := st.Token()
	return auth.ControlsData{
		Admin:   token != "",
		Subject: appsession.Subject(token),
		OOB:     oob,
	}
}
