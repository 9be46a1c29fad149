package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/templates/helpers"
)

var viewNames = []struct {
	view directory.View
	name string
}{
	{directory.ViewCatalog, "catalog"},
	{directory.ViewAdminCatalog, "admin-tools"},
	{directory.ViewReviews, "reviews"},
}

// encodeViews renders the refresh set as the views query parameter of the
// refresh follow-up.
func encodeViews(refresh directory.Refresh) string {
	names := make([]string, 0, len(viewNames))
	for _, v := range viewNames {
		if refresh.Has(v.view) {
			names = append(names, v.name)
		}
	}
	return strings.Join(names, ",")
}

func parseViews(raw string) directory.Refresh {
	var views []directory.View
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		for _, v := range viewNames {
			if v.name == part {
				views = append(views, v.view)
			}
		}
	}
	return directory.RefreshOf(views...)
}

func refreshURL(r *http.Request, refresh directory.Refresh) string {
	return helpers.BuildURL(helpers.Path(r.Context(), "/admin/refresh"), "views="+encodeViews(refresh))
}

// filterFrom reads the filters included from #catalog-filters. Query values
// and form bodies are both accepted since htmx sends DELETE parameters in the
// URL. A request carrying no filter field falls back to the page URL, which
// ToolsGrid keeps in sync through HX-Replace-Url.
func filterFrom(r *http.Request) catalog.Filter {
	if err := r.ParseForm(); err != nil {
		return catalog.Filter{}
	}
	for _, key := range filterFields {
		if _, ok := r.Form[key]; ok {
			return catalog.FilterFromValues(r.Form)
		}
	}
	page, err := url.Parse(custommw.CurrentURLFromContext(r.Context()))
	if err != nil {
		return catalog.Filter{}
	}
	return catalog.FilterFromValues(page.Query())
}

var filterFields = []string{"category", "pricing", "rating"}

func parseRating(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 || n > directory.MaxRating {
		return 0, false
	}
	return n, true
}
