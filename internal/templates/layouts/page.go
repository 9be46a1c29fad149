package layouts

import (
	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/templates/admin"
	"finitefield.org/toolfinder/internal/templates/auth"
	"finitefield.org/toolfinder/internal/templates/helpers"
	"finitefield.org/toolfinder/internal/templates/partials"
	"finitefield.org/toolfinder/internal/templates/tools"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Views toggled by the page script.
const (
	ViewUser  = "user"
	ViewAdmin = "admin"
)

// PageData is the full page shell.
type PageData struct {
	Title       string
	Environment string
	Controls    auth.ControlsData
	Filters     tools.FiltersData
	Grid        tools.GridData
	// Modal is rendered open on first paint, e.g. the login form on /login.
	Modal templ.Component
}

// Page renders the document shell with the public catalog. The admin section
// starts empty and is filled by the panel fragment.
func Page(data PageData) templ.Component {
	return helpers.Component(func(h *helpers.HTML) {
		ctx := h.Context()
		title := data.Title
		if title == "" {
			title = "AI Tool Finder"
		}

		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw("<title>").Text(title).Raw("</title>")
		h.Raw(`<link rel="stylesheet"`).Attr("href", helpers.Path(ctx, "/public/static/app.css")).Raw(">")
		h.Raw("<script").Attr("src", htmxScript).Raw(" defer></script>")
		h.Raw("<script").Attr("src", helpers.Path(ctx, "/public/static/app.js")).Raw(" defer></script>")
		h.Raw("</head>")

		h.Raw("<body").
			Attr("data-view", ViewUser).
			Attr("data-environment", data.Environment).
			Attr("hx-headers", helpers.HXHeaders(ctx)).
			Raw(">")

		h.Raw(`<header class="topbar"><h1>`).Text(title).Raw("</h1>").
			Component(auth.Controls(data.Controls)).
			Raw("</header>")
		h.Component(partials.Alerts(partials.MessageData{}, false))

		h.Raw("<main>")
		h.Raw("<section").Attr("id", partials.UserSectionID).Attr("class", "user-section").Raw(">").
			Component(tools.Filters(data.Filters)).
			Component(tools.Grid(data.Grid)).
			Raw("</section>")
		h.Component(admin.Placeholder(false))
		h.Raw("</main>")

		h.Component(partials.Modal(data.Modal, false))
		h.Raw("</body></html>")
	})
}
