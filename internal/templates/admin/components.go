// Package admin renders the admin section: the tool grid with edit and delete
// actions, the tool form and the review moderation list.
package admin

import (
	"net/url"

	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/partials"
	"finitefield.org/toolfinder/internal/templates/tools"
)

// DeleteConfirmation is shown by the browser before a tool is deleted.
const DeleteConfirmation = "Are you sure you want to delete this tool?"

// Panel renders the admin section. Both tabs are rendered so that refreshes
// of either list land even while the other tab is shown.
func Panel(data PanelData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		tab := NormalizeTab(data.Tab)
		ctx := h.Context()

		h.Raw("<section").
			Attr("id", partials.AdminSectionID).
			Attr("class", "admin-section").
			AttrIf(data.OOB, "hx-swap-oob", "true").
			Raw(">")

		h.Raw(`<div class="admin-header"><h2>Admin Panel</h2>`).
			Raw(`<button type="button" class="btn btn-primary" data-action="add-tool"`).
			Attr("hx-get", helpers.Path(ctx, "/admin/tools/new")).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">Add Tool</button></div>")

		h.Raw(`<nav class="tabs" role="tablist">`)
		tabButton(h, TabTools, "Tools", tab)
		tabButton(h, TabReviews, "Reviews", tab)
		h.Raw("</nav>")

		h.Raw(`<div id="tools-tab" class="tab-panel"`).Flag(tab != TabTools, "hidden").Raw(">").
			Component(Grid(GridData{Tools: data.Tools})).
			Raw("</div>")
		h.Raw(`<div id="reviews-tab" class="tab-panel"`).Flag(tab != TabReviews, "hidden").Raw(">").
			Component(Reviews(ReviewsData{Reviews: data.Reviews})).
			Raw("</div>")

		h.Raw("</section>")
	})
}

// Placeholder renders the empty admin section shown to guests.
func Placeholder(oob bool) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<section").
			Attr("id", partials.AdminSectionID).
			Attr("class", "admin-section").
			AttrIf(oob, "hx-swap-oob", "true").
			Raw("></section>")
	})
}

func tabButton(h *helpers.HTML, tab, label, active string) {
	class := "tab-btn"
	if tab == active {
		class += " active"
	}
	h.Raw(`<button type="button" role="tab"`).
		Attr("class", class).
		Attr("aria-selected", boolString(tab == active)).
		Attr("data-tab", tab).
		Attr("hx-get", helpers.BuildURL(helpers.Path(h.Context(), "/admin/panel"), "tab="+tab)).
		Attr("hx-target", "#"+partials.AdminSectionID).
		Attr("hx-swap", "outerHTML").
		Raw(">").Text(label).Raw("</button>")
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Grid renders the admin tool grid.
func Grid(data GridData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<div").
			Attr("id", partials.AdminToolsGridID).
			Attr("class", "tools-grid").
			AttrIf(data.OOB, "hx-swap-oob", "true").
			Raw(">")
		for _, tool := range data.Tools {
			h.Component(tools.Card(tool, toolActions(tool.ID)))
		}
		h.Raw("</div>")
	})
}

func toolActions(id catalog.ID) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		ctx := h.Context()
		h.Raw(`<button type="button" class="btn btn-primary" data-action="edit"`).
			Attr("hx-get", helpers.Path(ctx, "/admin/tools/"+url.PathEscape(id.String())+"/edit")).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">Edit</button>")
		h.Raw(`<button type="button" class="btn btn-danger" data-action="delete"`).
			Attr("hx-delete", helpers.Path(ctx, "/admin/tools/"+url.PathEscape(id.String()))).
			Attr("hx-confirm", DeleteConfirmation).
			Attr("hx-include", "#"+partials.FiltersID).
			Attr("hx-swap", "none").
			Raw(">Delete</button>")
	})
}

// Reviews renders the moderation list. Only pending reviews offer actions.
func Reviews(data ReviewsData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		ctx := h.Context()
		h.Raw("<div").
			Attr("id", partials.ReviewsListID).
			Attr("class", "reviews-list").
			AttrIf(data.OOB, "hx-swap-oob", "true").
			Raw(">")
		for _, review := range data.Reviews {
			h.Raw(`<article class="review-card"`).Attr("data-review-id", review.ID.String()).Raw(">")
			h.Raw(`<div class="review-header"><div><strong>Tool ID: `).Text(review.ToolID.String()).
				Raw("</strong> | Rating: ⭐ ").Text(catalog.FormatRating(review.Rating)).Raw("</div>")
			h.Raw("<span").Attr("class", helpers.StatusBadgeClass(review.Status)).Raw(">").
				Text(string(review.Status)).Raw("</span></div>")
			h.Raw(`<p class="review-text">`).Text(review.Text).Raw("</p>")
			if review.Status.IsPending() {
				h.Raw(`<div class="review-actions">`)
				moderationButton(h, helpers.Path(ctx, "/admin/reviews/"+url.PathEscape(review.ID.String())+"/approve"), "btn btn-success", "approve", "Approve")
				moderationButton(h, helpers.Path(ctx, "/admin/reviews/"+url.PathEscape(review.ID.String())+"/reject"), "btn btn-danger", "reject", "Reject")
				h.Raw("</div>")
			}
			h.Raw("</article>")
		}
		h.Raw("</div>")
	})
}

func moderationButton(h *helpers.HTML, endpoint, class, action, label string) {
	h.Raw(`<button type="button"`).
		Attr("class", class).
		Attr("data-action", action).
		Attr("hx-post", endpoint).
		Attr("hx-include", "#"+partials.FiltersID).
		Attr("hx-swap", "none").
		Raw(">").Text(label).Raw("</button>")
}

// ToolForm renders the create/edit modal body.
func ToolForm(data ToolFormData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		form := data.Form
		h.Raw(`<form id="tool-form" class="modal-form"`).
			Attr("data-mode", string(form.Mode())).
			Attr("hx-post", helpers.Path(h.Context(), "/admin/tools")).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">")
		h.Raw("<h2>").Text(form.Title()).Raw("</h2>")
		h.Raw(`<input type="hidden" name="id"`).Attr("value", form.ID.String()).Raw(">")
		h.Raw(`<label class="form-field">Name<input type="text" name="name" required`).Attr("value", form.Name).Raw("></label>")
		h.Raw(`<label class="form-field">Description<textarea name="description" rows="3" required>`).
			Text(form.Description).Raw("</textarea></label>")
		h.Raw(`<label class="form-field">Use case<input type="text" name="use_case"`).Attr("value", form.UseCase).Raw("></label>")
		optionField(h, "category", "Category", form.Category, catalog.Categories)
		optionField(h, "pricing", "Pricing", form.Pricing, catalog.PricingTiers)
		h.Raw(`<div class="form-message">`).Component(partials.Message(data.Message)).Raw("</div>")
		h.Raw(`<div class="form-actions"><button type="submit" class="btn btn-primary">Save</button>`).
			Component(partials.CloseButton("Cancel")).
			Raw("</div>")
		if data.FollowUp != nil {
			h.Component(partials.FollowUp(*data.FollowUp))
		}
		h.Raw("</form>")
	})
}

func optionField(h *helpers.HTML, name, label, selected string, options []string) {
	h.Raw(`<label class="form-field">`).Text(label).Raw("<select").Attr("name", name).Raw(">")
	if selected != "" && !contains(options, selected) {
		// Values outside the fixed set still round-trip on edit.
		h.Raw("<option").Attr("value", selected).Raw(" selected>").Text(selected).Raw("</option>")
	}
	for _, opt := range options {
		h.Raw("<option").Attr("value", opt).Flag(opt == selected, "selected").Raw(">").Text(opt).Raw("</option>")
	}
	h.Raw("</select></label>")
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
