package ui

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/templates/admin"
	"finitefield.org/toolfinder/internal/templates/auth"
	"finitefield.org/toolfinder/internal/templates/layouts"
	"finitefield.org/toolfinder/internal/templates/partials"
	"finitefield.org/toolfinder/internal/templates/tools"
)

const msgToolNotFound = "Tool not found; the list has been refreshed."

// AdminPanel renders the admin section with the tool grid and the moderation
// list, and switches the page to the admin view.
func (h *Handlers) AdminPanel(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	snap := h.controller.Refresh(r.Context(), st,
		directory.RefreshOf(directory.ViewAdminCatalog, directory.ViewReviews), catalog.Filter{})

	components := []templ.Component{
		admin.Panel(admin.PanelData{
			Tab:     r.URL.Query().Get("tab"),
			Tools:   snap.AdminTools,
			Reviews: snap.Reviews,
		}),
		auth.Controls(controlsFor(st, true)),
	}
	if r.URL.Query().Get("from") == "login" {
		components = append(components, partials.Modal(nil, true))
	}
	custommw.TriggerEvent(w, viewEvent, layouts.ViewAdmin)
	render(w, r, components...)
}

// AdminToolsGrid renders the admin tool grid and refreshes the edit cache.
func (h *Handlers) AdminToolsGrid(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	list, err := h.controller.LoadAdminTools(r.Context(), st)
	if err != nil {
		skip(w)
		return
	}
	render(w, r, admin.Grid(admin.GridData{Tools: list}))
}

// AdminReviews renders the moderation list.
func (h *Handlers) AdminReviews(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	reviews, err := h.controller.LoadReviews(r.Context(), st)
	if err != nil {
		skip(w)
		return
	}
	render(w, r, admin.Reviews(admin.ReviewsData{Reviews: reviews}))
}

// AdminToolNew opens a blank tool form.
func (h *Handlers) AdminToolNew(w http.ResponseWriter, r *http.Request) {
	render(w, r, partials.Modal(admin.ToolForm(admin.ToolFormData{Form: h.controller.OpenCreate()}), false))
}

// AdminToolEdit opens the tool form pre-filled from the cache. When the tool
// is gone the modal stays closed, an alert explains why and the admin grid is
// replaced with the listing that was just fetched.
func (h *Handlers) AdminToolEdit(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	id := catalog.ID(strings.TrimSpace(chi.URLParam(r, "toolID")))
	form, found, err := h.controller.OpenEdit(r.Context(), st, id)
	if err != nil {
		skip(w)
		return
	}
	if !found {
		custommw.Reswap(w, "none")
		render(w, r,
			partials.Alerts(partials.MessageData{
				Tone: string(directory.ToneError),
				Text: msgToolNotFound,
				TTL:  h.delays.MessageTTL,
			}, true),
			admin.Grid(admin.GridData{Tools: st.CachedTools(), OOB: true}),
		)
		return
	}
	render(w, r, partials.Modal(admin.ToolForm(admin.ToolFormData{Form: form}), false))
}

// AdminToolSave creates or updates a tool. On success the form shows the
// confirmation and a follow-up re-fetches both catalogs after the delay.
func (h *Handlers) AdminToolSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	_, st := h.visitor(r)
	form := directory.ToolFormFromValues(r.PostForm)
	out := h.dispatch(r, st, directory.SaveToolEvent{Form: form})

	data := admin.ToolFormData{Form: form, Message: h.message(out)}
	if out.OK() {
		data.FollowUp = &partials.FollowUpData{
			URL:     refreshURL(r, out.Refresh),
			Delay:   h.delays.Success,
			Include: "#" + partials.FiltersID,
		}
	}
	render(w, r, partials.Modal(admin.ToolForm(data), false))
}

// AdminRefresh closes the modal and re-renders the views named in the views
// parameter out of band. Views whose fetch fails are left untouched.
func (h *Handlers) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	filter := filterFrom(r)
	snap := h.controller.Refresh(r.Context(), st, parseViews(r.Form.Get("views")), filter)
	components := append([]templ.Component{partials.Modal(nil, true)}, snapshotFragments(snap)...)
	render(w, r, components...)
}

// AdminToolDelete deletes a tool the user confirmed in the browser.
func (h *Handlers) AdminToolDelete(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	id := catalog.ID(strings.TrimSpace(chi.URLParam(r, "toolID")))
	h.respondMutation(w, r, st, directory.DeleteToolEvent{ID: id})
}

// AdminReviewApprove approves a pending review.
func (h *Handlers) AdminReviewApprove(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	id := catalog.ID(strings.TrimSpace(chi.URLParam(r, "reviewID")))
	h.respondMutation(w, r, st, directory.ApproveReviewEvent{ID: id})
}

// AdminReviewReject rejects a pending review.
func (h *Handlers) AdminReviewReject(w http.ResponseWriter, r *http.Request) {
	_, st := h.visitor(r)
	id := catalog.ID(strings.TrimSpace(chi.URLParam(r, "reviewID")))
	h.respondMutation(w, r, st, directory.RejectReviewEvent{ID: id})
}

// respondMutation dispatches an action without a form of its own. Failures
// land in the alert region; successes re-render the affected views out of
// band right away.
func (h *Handlers) respondMutation(w http.ResponseWriter, r *http.Request, st *directory.State, ev directory.Event) {
	filter := filterFrom(r)
	out := h.dispatch(r, st, ev)
	custommw.Reswap(w, "none")
	if !out.OK() {
		render(w, r, partials.Alerts(h.message(out), true))
		return
	}
	snap := h.controller.Refresh(r.Context(), st, out.Refresh, filter)
	fragments := append([]templ.Component{partials.Alerts(partials.MessageData{}, true)}, snapshotFragments(snap)...)
	render(w, r, fragments...)
}

func snapshotFragments(snap directory.Snapshot) []templ.Component {
	var out []templ.Component
	if snap.ToolsLoaded {
		out = append(out, tools.Grid(tools.GridData{Tools: snap.Tools, OOB: true}))
	}
	if snap.AdminToolsLoaded {
		out = append(out, admin.Grid(admin.GridData{Tools: snap.AdminTools, OOB: true}))
	}
	if snap.ReviewsLoaded {
		out = append(out, admin.Reviews(admin.ReviewsData{Reviews: snap.Reviews, OOB: true}))
	}
	return out
}
