package layouts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/toolfinder/internal/templates/auth"
	"finitefield.org/toolfinder/internal/templates/layouts"
	"finitefield.org/toolfinder/internal/testutil"
)

func TestPageShell(t *testing.T) {
	t.Parallel()

	doc := testutil.Render(t, "/", layouts.Page(layouts.PageData{
		Environment: "staging",
		Controls:    auth.ControlsData{},
		Modal:       auth.LoginForm(auth.LoginFormData{}),
	}))

	body := doc.Find("body")
	require.Equal(t, layouts.ViewUser, body.AttrOr("data-view", ""))
	require.Equal(t, "staging", body.AttrOr("data-environment", ""))
	require.True(t, strings.HasPrefix(body.AttrOr("hx-headers", ""), `{"X-CSRF-Token":`))

	require.Equal(t, 1, doc.Find("#user-section #catalog-filters").Length())
	require.Equal(t, 1, doc.Find("#user-section #tools-grid").Length())
	require.Equal(t, 1, doc.Find("main #admin-section").Length())
	require.Equal(t, 1, doc.Find("#alerts").Length())
	require.Equal(t, 1, doc.Find("#modal #login-form").Length())
	require.Equal(t, "/public/static/app.js", doc.Find(`script[src$="app.js"]`).AttrOr("src", ""))
}
