// Package tools renders the public catalog: filters, the tool grid and the
// guest review form.
package tools

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/partials"
)

// EmptyText is shown when a listing has no tools.
const EmptyText = "No tools found"

// Filters renders the filter form. Any change reloads the grid; the form is
// also included in every request that refreshes the public catalog.
func Filters(data FiltersData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<form").
			Attr("id", partials.FiltersID).
			Attr("class", "filters").
			Attr("hx-get", helpers.Path(h.Context(), "/tools/grid")).
			Attr("hx-target", "#"+partials.ToolsGridID).
			Attr("hx-swap", "outerHTML").
			Attr("hx-trigger", "change").
			Raw(">")

		selectField(h, "category", "Category", "All Categories", data.Filter.Category, plainOptions(catalog.Categories))
		selectField(h, "pricing", "Pricing", "All Pricing", data.Filter.Pricing, plainOptions(catalog.PricingTiers))
		selectField(h, "rating", "Minimum rating", "Any Rating", data.Filter.Rating, RatingOptions)

		h.Raw("</form>")
	})
}

func plainOptions(values []string) []RatingOption {
	out := make([]RatingOption, 0, len(values))
	for _, v := range values {
		out = append(out, RatingOption{Value: v, Label: v})
	}
	return out
}

func selectField(h *helpers.HTML, name, label, anyLabel, selected string, options []RatingOption) {
	h.Raw("<select").Attr("name", name).Attr("aria-label", label).Raw(">")
	h.Raw(`<option value=""`).Flag(selected == "", "selected").Raw(">").Text(anyLabel).Raw("</option>")
	for _, opt := range options {
		h.Raw("<option").Attr("value", opt.Value).Flag(selected == opt.Value, "selected").Raw(">").
			Text(opt.Label).Raw("</option>")
	}
	h.Raw("</select>")
}

// Grid renders the public tool grid.
func Grid(data GridData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw("<div").
			Attr("id", partials.ToolsGridID).
			Attr("class", "tools-grid").
			AttrIf(data.OOB, "hx-swap-oob", "true").
			Raw(">")
		if len(data.Tools) == 0 && !data.Unavailable {
			h.Raw(`<p class="empty">`).Text(EmptyText).Raw("</p>")
		}
		for _, tool := range data.Tools {
			h.Component(Card(tool, ReviewAction(tool.ID)))
		}
		h.Raw("</div>")
	})
}

// Card renders one tool. actions fills the card footer.
func Card(tool catalog.Tool, actions templ.Component) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<article class="tool-card"`).Attr("data-tool-id", tool.ID.String()).Raw(">")
		h.Raw(`<div class="tool-header"><h3 class="tool-name">`).Text(tool.Name).Raw("</h3>")
		h.Raw(`<span class="tool-rating">⭐ `).Text(tool.RatingLabel()).Raw("</span></div>")
		h.Raw(`<div class="tool-tags"><span class="tool-category">`).Text(tool.Category).Raw("</span>")
		h.Raw(`<span class="tool-pricing">`).Text(tool.Pricing).Raw("</span></div>")
		h.Raw(`<p class="tool-description">`).Text(tool.Description).Raw("</p>")
		if tool.UseCase != "" {
			h.Raw(`<p class="tool-use-case">`).Text(tool.UseCase).Raw("</p>")
		}
		h.Raw(`<div class="tool-actions">`).Component(actions).Raw("</div>")
		h.Raw("</article>")
	})
}

// ReviewAction opens the review form for a tool.
func ReviewAction(id catalog.ID) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<button type="button" class="btn btn-success" data-action="review"`).
			Attr("hx-get", helpers.BuildURL(helpers.Path(h.Context(), "/reviews/new"), "tool_id="+url.QueryEscape(id.String()))).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">Write Review</button>")
	})
}

// ReviewForm renders the review modal body.
func ReviewForm(data ReviewFormData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<form id="review-form" class="modal-form"`).
			Attr("hx-post", helpers.Path(h.Context(), "/reviews")).
			Attr("hx-target", "#"+partials.ModalID).
			Attr("hx-swap", "outerHTML").
			Raw(">")
		h.Raw("<h2>Write a Review</h2>")
		h.Raw(`<input type="hidden" name="tool_id"`).Attr("value", data.Form.ToolID.String()).Raw(">")
		h.Raw(`<div class="form-field"><span class="form-label">Rating</span>`).
			Component(Stars(StarsData{ToolID: data.Form.ToolID, Rating: data.Form.Rating})).
			Raw("</div>")
		h.Raw(`<label class="form-field">Review<textarea name="review_text" rows="4" required>`).
			Text(data.Form.Text).
			Raw("</textarea></label>")
		h.Raw(`<div class="form-message">`).Component(partials.Message(data.Message)).Raw("</div>")
		h.Raw(`<div class="form-actions"><button type="submit" class="btn btn-primary">Submit Review</button>`).
			Component(partials.CloseButton("Cancel")).
			Raw("</div>")
		if data.FollowUp != nil {
			h.Component(partials.FollowUp(*data.FollowUp))
		}
		h.Raw("</form>")
	})
}

// Stars renders the five-position star widget. Position i is lit when
// i < Rating; clicking a star re-renders the widget with the new selection.
func Stars(data StarsData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		h.Raw(`<div id="star-rating" class="star-rating" role="radiogroup" aria-label="Rating">`)
		h.Raw(`<input type="hidden" name="rating"`).Attr("value", strconv.Itoa(data.Rating)).Raw(">")
		for i, active := range directory.Stars(data.Rating) {
			n := i + 1
			class := "star"
			if active {
				class += " active"
			}
			h.Raw(`<button type="button"`).
				Attr("class", class).
				Attr("data-star", strconv.Itoa(n)).
				Attr("aria-label", strconv.Itoa(n)+" star").
				Attr("aria-checked", strconv.FormatBool(n == data.Rating)).
				Attr("role", "radio").
				Attr("hx-post", helpers.Path(h.Context(), "/reviews/rating")).
				Attr("hx-vals", starValues(data.ToolID, n)).
				Attr("hx-target", "#star-rating").
				Attr("hx-swap", "outerHTML").
				Raw(">★</button>")
		}
		h.Raw("</div>")
	})
}

func starValues(toolID catalog.ID, rating int) string {
	payload, err := json.Marshal(map[string]string{
		"tool_id": toolID.String(),
		"rating":  strconv.Itoa(rating),
	})
	if err != nil {
		return "{}"
	}
	return string(payload)
}
