// Package partials holds the small building blocks shared by every view:
// transient messages, the alert region, the modal host and delayed follow-up
// requests.
package partials

import (
	"time"

	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/templates/helpers"
)

// Element ids swapped by htmx. Every region is replaced wholesale (outerHTML),
// so each fragment renders its own root element.
const (
	AlertsID          = "alerts"
	ModalID           = "modal"
	SessionControlsID = "session-controls"
	UserSectionID     = "user-section"
	AdminSectionID    = "admin-section"
	FiltersID         = "catalog-filters"
	ToolsGridID       = "tools-grid"
	AdminToolsGridID  = "admin-tools-grid"
	ReviewsListID     = "reviews-list"
)

// MessageData is a transient notice. An empty Text renders nothing.
type MessageData struct {
	Tone string
	Text string
	TTL  time.Duration
}

// Message renders a notice that the page script removes after TTL.
func Message(data MessageData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		if data.Text == "" {
			return
		}
		role := "status"
		if data.Tone == "error" {
			role = "alert"
		}
		h.Raw("<div").
			Attr("class", helpers.MessageClass(data.Tone)).
			Attr("role", role).
			AttrIf(data.TTL > 0, "data-dismiss-after", helpers.Milliseconds(data.TTL)).
			Raw(">").Text(data.Text).Raw("</div>")
	})
}

// Alerts renders the page-level alert region, used for failures of actions
// that have no form of their own (delete, approve, reject).
func Alerts(data MessageData, oob bool) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<div").Attr("id", AlertsID).Attr("aria-live", "polite").
			AttrIf(oob, "hx-swap-oob", "true").Raw(">").
			Component(Message(data)).
			Raw("</div>")
	})
}

// Modal renders the modal host. A nil body renders the closed, empty host.
func Modal(body templ.Component, oob bool) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<div").Attr("id", ModalID).AttrIf(oob, "hx-swap-oob", "true").Raw(">")
		if body != nil {
			h.Raw(`<div class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true">`).
				Component(body).
				Raw("</div></div>")
		}
		h.Raw("</div>")
	})
}

// CloseButton swaps the modal host back to its empty state.
func CloseButton(label string) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<button type="button" class="btn btn-secondary"`).
			Attr("hx-get", helpers.Path(h.Context(), "/modal/close")).
			Attr("hx-target", "#"+ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">").Text(label).Raw("</button>")
	})
}

// FollowUpData describes a request fired once after a confirmation delay.
type FollowUpData struct {
	URL     string
	Delay   time.Duration
	Include string
	Target  string
	Swap    string
}

// FollowUp renders an invisible element that issues a GET after Delay. It
// drives the "show message, then refresh" flows.
func FollowUp(data FollowUpData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		swap := data.Swap
		if swap == "" {
			swap = "none"
		}
		h.Raw("<div hidden data-follow-up").
			Attr("hx-get", data.URL).
			Attr("hx-trigger", helpers.LoadTrigger(data.Delay)).
			Attr("hx-swap", swap).
			AttrIf(data.Include != "", "hx-include", data.Include).
			AttrIf(data.Target != "", "hx-target", data.Target).
			Raw("></div>")
	})
}
