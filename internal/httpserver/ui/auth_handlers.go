package ui

import (
	"net/http"
	"strings"

	"finitefield.org/toolfinder/internal/directory"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/templates/admin"
	"finitefield.org/toolfinder/internal/templates/auth"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/layouts"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// LoginForm opens the login modal. Direct navigation gets the full page with
// the modal already open.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	form := partials.Modal(auth.LoginForm(auth.LoginFormData{}), false)
	if custommw.IsHTMXRequest(r.Context()) {
		render(w, r, form)
		return
	}
	page := h.pageData(r, auth.LoginForm(auth.LoginFormData{}))
	render(w, r, layouts.Page(page))
}

// Login exchanges credentials for a bearer token and persists it in the
// session. The success message stays up for the confirmation delay before the
// admin panel is loaded in its place.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess, st := h.viewer(r)
	email := strings.TrimSpace(r.PostFormValue("email"))

	out := h.dispatch(r, st, directory.LoginEvent{
		Email:    email,
		Password: r.PostFormValue("password"),
	})

	data := auth.LoginFormData{Email: email, Message: h.message(out)}
	if out.OK() {
		if sess != nil {
			sess.SetToken(st.Token())
		}
		data.FollowUp = &partials.FollowUpData{
			URL:    helpers.BuildURL(helpers.Path(r.Context(), "/admin/panel"), "from=login"),
			Delay:  h.delays.Success,
			Target: "#" + partials.AdminSectionID,
			Swap:   "outerHTML",
		}
	}
	render(w, r, partials.Modal(auth.LoginForm(data), false))
}

// Logout drops the token. The visitor keeps the session id, so the star
// selection and other per-visitor state survive.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, st := h.viewer(r)
	h.dispatch(r, st, directory.LogoutEvent{})
	if sess != nil {
		sess.ClearToken()
	}

	if !custommw.IsHTMXRequest(r.Context()) {
		http.Redirect(w, r, helpers.Path(r.Context(), "/"), http.StatusSeeOther)
		return
	}
	custommw.TriggerEvent(w, viewEvent, layouts.ViewUser)
	custommw.Reswap(w, "none")
	render(w, r,
		auth.Controls(controlsFor(st, true)),
		admin.Placeholder(true),
	)
}

// viewEvent switches the visible section in the page script.
const viewEvent = "toolfinder:view"
