// Package auth renders the session controls and the admin login form.
package auth

import (
	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// ControlsData selects which session controls are shown.
type ControlsData struct {
	Admin   bool
	Subject string
	OOB     bool
}

// LoginFormData drives the login modal.
type LoginFormData struct {
	Email    string
	Message  partials.MessageData
	FollowUp *partials.FollowUpData
}

// Controls renders exactly one of the admin controls (panel, logout) or the
// login control.
func Controls(data ControlsData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		ctx := h.Context()
		mode := "guest"
		if data.Admin {
			mode = "admin"
		}
		h.Raw("<div").
			Attr("id", partials.SessionControlsID).
			Attr("class", "session-controls").
			Attr("data-mode", mode).
			AttrIf(data.OOB, "hx-swap-oob", "true").
			Raw(">")
		if data.Admin {
			if data.Subject != "" {
				h.Raw(`<span class="session-subject">`).Text(data.Subject).Raw("</span>")
			}
			h.Raw(`<button type="button" class="btn btn-secondary" data-show-view="user">Browse Tools</button>`)
			h.Raw(`<button type="button" class="btn btn-primary" data-action="admin-panel"`).
				Attr("hx-get", helpers.Path(ctx, "/admin/panel")).
				Attr("hx-target", "#"+partials.AdminSectionID).
				Attr("hx-swap", "outerHTML").
				Raw(">Admin Panel</button>")
			h.Raw(`<button type="button" class="btn btn-danger" data-action="logout"`).
				Attr("hx-post", helpers.Path(ctx, "/logout")).
				Attr("hx-swap", "none").
				Raw(">Logout</button>")
		} else {
			h.Raw(`<button type="button" class="btn btn-primary" data-action="login"`).
				Attr("hx-get", helpers.Path(ctx, "/login")).
				Attr("hx-target", "#"+partials.ModalID).
				Attr("hx-swap", "outerHTML").
				Raw(">Admin Login</button>")
		}
		h.Raw("</div>")
	})
}

// LoginForm renders the login modal body.
func LoginForm(data LoginFormData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<form id="login-form" class="modal-form"`).
			Attr("hx-post", helpers.Path(h.Context(), "/login")).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">")
		h.Raw("<h2>Admin Login</h2>")
		h.Raw(`<label class="form-field">Email<input type="email" name="email" autocomplete="username" required`).
			Attr("value", data.Email).Raw("></label>")
		h.Raw(`<label class="form-field">Password<input type="password" name="password" autocomplete="current-password" required></label>`)
		h.Raw(`<div class="form-message">`).Component(partials.Message(data.Message)).Raw("</div>")
		h.Raw(`<div class="form-actions"><button type="submit" class="btn btn-primary">Login</button>`).
			Component(partials.CloseButton("Cancel")).
			Raw("</div>")
		if data.FollowUp != nil {
			h.Component(partials.FollowUp(*data.FollowUp))
		}
		h.Raw("</form>")
	})
}
