package httpserver_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/testutil"
)

func TestIndexRendersCatalogForGuests(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.Page("/")
	require.Equal(t, http.StatusOK, resp.Status)

	doc := resp.Doc
	require.Equal(t, "AI Tool Finder", doc.Find("title").Text())
	require.Equal(t, "user", doc.Find("body").AttrOr("data-view", ""))
	require.Contains(t, doc.Find("body").AttrOr("hx-headers", ""), "X-CSRF-Token")
	require.Equal(t, 4, doc.Find("#tools-grid .tool-card").Length())
	require.Equal(t, "guest", doc.Find("#session-controls").AttrOr("data-mode", ""))
	require.Equal(t, 1, doc.Find(`#session-controls [data-action="login"]`).Length())
	require.Zero(t, doc.Find(`#session-controls [data-action="logout"]`).Length())
	require.Empty(t, strings.TrimSpace(doc.Find("#admin-section").Text()))

	first := doc.Find(`#tools-grid .tool-card[data-tool-id="1"]`)
	require.Equal(t, "Canvas Muse", first.Find(".tool-name").Text())
	require.Equal(t, "⭐ 4.5", first.Find(".tool-rating").Text())
	require.Equal(t, "⭐ N/A", doc.Find(`.tool-card[data-tool-id="2"] .tool-rating`).Text())
}

func TestToolsGridAppliesFilters(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.Get("/tools/grid?category=Text+Generation&pricing=&rating=")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Doc.Find(".tool-card").Length())
	require.Equal(t, "/?category=Text+Generation", resp.Header.Get("HX-Replace-Url"))

	resp = b.Get("/tools/grid?category=&pricing=Paid&rating=4")
	require.Zero(t, resp.Doc.Find(".tool-card").Length())
	require.Equal(t, "No tools found", resp.Doc.Find("#tools-grid .empty").Text())

	page := b.Page("/?category=Code+Assistant")
	require.Equal(t, 1, page.Doc.Find("#tools-grid .tool-card").Length())
	require.Equal(t, "Code Assistant", page.Doc.Find(`select[name="category"] option[selected]`).AttrOr("value", ""))
}

func TestFragmentsRequireHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	require.Equal(t, http.StatusNotFound, b.Page("/tools/grid").Status)
}

func TestCatalogEscapesToolFields(t *testing.T) {
	t.Parallel()

	svc := catalog.NewStaticService(catalog.StaticConfig{})
	svc.Seed([]catalog.Tool{{
		ID:          "1",
		Name:        `<script>alert("x")</script>`,
		Description: `Fish & "Chips" <b>bold</b>`,
		Category:    "<i>cat</i>",
		Pricing:     "Free",
	}}, nil)
	ts := testutil.NewServer(t, testutil.WithService(svc))
	b := testutil.NewBrowser(t, ts, "/")

	doc := b.Page("/").Doc
	card := doc.Find(".tool-card")
	require.Zero(t, card.Find("script, b, i").Length())
	require.Equal(t, `<script>alert("x")</script>`, card.Find(".tool-name").Text())
	require.Equal(t, `Fish & "Chips" <b>bold</b>`, card.Find(".tool-description").Text())
	require.Equal(t, "<i>cat</i>", card.Find(".tool-category").Text())
}

func TestStarWidgetTracksSelection(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.Get("/reviews/new?tool_id=1")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 5, resp.Doc.Find("#star-rating .star").Length())
	require.Zero(t, resp.Doc.Find("#star-rating .star.active").Length())
	require.Equal(t, "1", resp.Doc.Find(`#review-form input[name="tool_id"]`).AttrOr("value", ""))

	resp = b.Post("/reviews/rating", url.Values{"tool_id": {"1"}, "rating": {"3"}})
	require.Equal(t, http.StatusOK, resp.Status)
	active := resp.Doc.Find("#star-rating .star.active")
	require.Equal(t, 3, active.Length())
	require.Equal(t, "3", active.Last().AttrOr("data-star", ""))
	require.Equal(t, "3", resp.Doc.Find(`#star-rating input[name="rating"]`).AttrOr("value", ""))

	// Reopening the form resets the selection.
	resp = b.Get("/reviews/new?tool_id=1")
	require.Zero(t, resp.Doc.Find("#star-rating .star.active").Length())

	require.Equal(t, http.StatusBadRequest, b.Post("/reviews/rating", url.Values{"tool_id": {"1"}, "rating": {"9"}}).Status)
}

func TestReviewSubmissionFailureStaysOpen(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	b.Get("/reviews/new?tool_id=1")
	resp := b.Post("/reviews", url.Values{"tool_id": {"1"}, "review_text": {"No stars"}})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "Failed to submit review", resp.Doc.Find(".form-message .message").Text())
	require.Zero(t, resp.Doc.Find("[data-follow-up]").Length())
	require.Equal(t, "No stars", resp.Doc.Find(`textarea[name="review_text"]`).Text())
}

func TestReviewModerationEndToEnd(t *testing.T) {
	t.Parallel()

	svc := catalog.NewStaticService(catalog.StaticConfig{
		AdminEmail:    testutil.AdminEmail,
		AdminPassword: testutil.AdminPassword,
	})
	svc.Seed([]catalog.Tool{{ID: "7", Name: "Pairline", Description: "Completion", Category: "Code Assistant", Pricing: "Free"}}, nil)
	ts := testutil.NewServer(t, testutil.WithService(svc))

	guest := testutil.NewBrowser(t, ts, "/")
	guest.Get("/reviews/new?tool_id=7")
	guest.Post("/reviews/rating", url.Values{"tool_id": {"7"}, "rating": {"4"}})
	resp := guest.Post("/reviews", url.Values{"tool_id": {"7"}, "rating": {"4"}, "review_text": {"Great"}})
	require.Equal(t, "Review submitted successfully!", resp.Doc.Find(".form-message .message").Text())
	followUp := resp.Doc.Find("[data-follow-up]")
	require.Equal(t, "/modal/close", followUp.AttrOr("hx-get", ""))
	require.Equal(t, "load delay:1500ms", followUp.AttrOr("hx-trigger", ""))

	admin := testutil.NewBrowser(t, ts, "/")
	resp = admin.Login()
	require.Equal(t, "Login successful!", resp.Doc.Find(".form-message .message").Text())
	require.Equal(t, "/admin/panel?from=login", resp.Doc.Find("[data-follow-up]").AttrOr("hx-get", ""))

	resp = admin.Get("/admin/panel?from=login")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, resp.Header.Get("HX-Trigger"), `"toolfinder:view":"admin"`)
	require.Equal(t, "admin", resp.Doc.Find("#session-controls").AttrOr("data-mode", ""))
	require.Equal(t, "admin@example.com", resp.Doc.Find(".session-subject").Text())
	require.Equal(t, "true", resp.Doc.Find("#modal").AttrOr("hx-swap-oob", ""))

	review := findReview(t, resp.Doc, "Great")
	require.Equal(t, "Pending", review.Find(".review-status").Text())
	require.Equal(t, 1, review.Find(`[data-action="approve"]`).Length())
	require.Equal(t, 1, review.Find(`[data-action="reject"]`).Length())
	id := review.AttrOr("data-review-id", "")

	resp = admin.Post("/admin/reviews/"+id+"/approve", url.Values{"category": {""}})
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))

	review = findReview(t, resp.Doc, "Great")
	require.Equal(t, "Approved", review.Find(".review-status").Text())
	require.Zero(t, review.Find("button").Length())
	require.Equal(t, "⭐ 4", resp.Doc.Find(`#tools-grid .tool-card[data-tool-id="7"] .tool-rating`).Text())
	require.Equal(t, 1, resp.Doc.Find(`#admin-tools-grid .tool-card[data-tool-id="7"]`).Length())
}

func TestRejectRefreshesReviewsOnly(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()

	resp := b.Post("/admin/reviews/3/reject", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Doc.Find("#reviews-list").Length())
	require.Zero(t, resp.Doc.Find("#tools-grid, #admin-tools-grid").Length())
	require.Equal(t, "Rejected", resp.Doc.Find(`[data-review-id="3"] .review-status`).Text())

	// A second transition out of a terminal status surfaces in the alert region.
	resp = b.Post("/admin/reviews/3/approve", nil)
	require.Equal(t, "Error approving review", resp.Doc.Find("#alerts .message").Text())
	require.Zero(t, resp.Doc.Find("#reviews-list").Length())
}

func TestSaveToolRefreshesBothCatalogs(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()

	resp := b.Get("/admin/tools/new")
	form := resp.Doc.Find("#tool-form")
	require.Equal(t, "create", form.AttrOr("data-mode", ""))
	require.Equal(t, "Free", form.Find(`select[name="pricing"] option[selected]`).AttrOr("value", ""))

	resp = b.Post("/admin/tools", url.Values{
		"name":        {"Lumen Notes"},
		"description": {"Meeting summaries"},
		"category":    {"Text Generation"},
		"pricing":     {"Paid"},
	})
	require.Equal(t, "Tool saved successfully!", resp.Doc.Find(".form-message .message").Text())
	followUp := resp.Doc.Find("[data-follow-up]")
	refresh := followUp.AttrOr("hx-get", "")
	require.Equal(t, "/admin/refresh?views=catalog,admin-tools", refresh)
	require.Equal(t, "#catalog-filters", followUp.AttrOr("hx-include", ""))
	require.Equal(t, "load delay:1s", followUp.AttrOr("hx-trigger", ""))

	resp = b.Get(refresh + "&category=Text+Generation")
	require.Equal(t, "true", resp.Doc.Find("#modal").AttrOr("hx-swap-oob", ""))
	require.Equal(t, 2, resp.Doc.Find("#tools-grid .tool-card").Length(), "public grid honours the included filters")
	require.Equal(t, 5, resp.Doc.Find("#admin-tools-grid .tool-card").Length())

	resp = b.Get("/admin/tools/5/edit")
	form = resp.Doc.Find("#tool-form")
	require.Equal(t, "edit", form.AttrOr("data-mode", ""))
	require.Equal(t, "Lumen Notes", form.Find(`input[name="name"]`).AttrOr("value", ""))

	resp = b.Post("/admin/tools", url.Values{"id": {"5"}, "name": {"X"}, "pricing": {"Paid"}})
	require.Contains(t, resp.Doc.Find(".form-message .message").Text(), "Failed to save tool: ")
	require.Contains(t, resp.Doc.Find(".form-message .message").Text(), "name must be at least 2 characters")
	require.Zero(t, resp.Doc.Find("[data-follow-up]").Length())
}

func TestEditMissRefreshesAdminGrid(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()

	resp := b.Get("/admin/tools/404/edit")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))
	require.Equal(t, "Tool not found; the list has been refreshed.", resp.Doc.Find("#alerts .message").Text())
	require.Equal(t, 4, resp.Doc.Find("#admin-tools-grid .tool-card").Length())
	require.Zero(t, resp.Doc.Find("#tool-form").Length())
}

func TestDeleteToolRefreshesGrids(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()

	resp := b.Delete("/admin/tools/2?category=&pricing=&rating=")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 3, resp.Doc.Find("#tools-grid .tool-card").Length())
	require.Equal(t, 3, resp.Doc.Find("#admin-tools-grid .tool-card").Length())
	require.Zero(t, resp.Doc.Find(`[data-tool-id="2"]`).Length())

	resp = b.Delete("/admin/tools/2")
	require.Equal(t, "Error deleting tool", resp.Doc.Find("#alerts .message").Text())
}

func TestMutationFallsBackToPageFilters(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()
	b.SetPageURL("/?pricing=Freemium")

	resp := b.Delete("/admin/tools/2")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 2, resp.Doc.Find("#tools-grid .tool-card").Length())
	require.Equal(t, 3, resp.Doc.Find("#admin-tools-grid .tool-card").Length())

	resp = b.Delete("/admin/tools/1?category=&pricing=&rating=")
	require.Equal(t, 2, resp.Doc.Find("#tools-grid .tool-card").Length(), "submitted filters win over the page url")
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.Get("/admin/panel")
	require.Equal(t, http.StatusUnauthorized, resp.Status)
	require.Equal(t, "/login", resp.Header.Get("HX-Redirect"))

	resp = b.Page("/admin/panel")
	require.Equal(t, http.StatusFound, resp.Status)

	resp = b.Post("/login", url.Values{"email": {testutil.AdminEmail}, "password": {"wrong"}})
	require.Equal(t, "Invalid credentials", resp.Doc.Find(".form-message .message").Text())
	require.Zero(t, resp.Doc.Find("[data-follow-up]").Length())
	require.Equal(t, http.StatusUnauthorized, b.Get("/admin/panel").Status)
}

func TestLoginPageRendersModal(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.Page("/login")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Doc.Find("#modal #login-form").Length())
	require.Equal(t, 4, resp.Doc.Find("#tools-grid .tool-card").Length())
}

func TestLogoutReturnsToGuestMode(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")
	b.Login()
	require.Equal(t, http.StatusOK, b.Get("/admin/panel").Status)

	resp := b.Post("/logout", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, resp.Header.Get("HX-Trigger"), `"toolfinder:view":"user"`)
	require.Equal(t, "guest", resp.Doc.Find("#session-controls").AttrOr("data-mode", ""))
	require.Equal(t, "true", resp.Doc.Find("#admin-section").AttrOr("hx-swap-oob", ""))

	require.Equal(t, http.StatusUnauthorized, b.Get("/admin/panel").Status)
	require.Equal(t, "guest", b.Page("/").Doc.Find("#session-controls").AttrOr("data-mode", ""))
}

func TestUnsafeRequestsRequireCSRFHeader(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	b := testutil.NewBrowser(t, ts, "/")

	resp := b.PostWithoutCSRF("/reviews", url.Values{"tool_id": {"1"}, "rating": {"5"}, "review_text": {"Nice"}})
	require.Equal(t, http.StatusForbidden, resp.Status)
}

func TestBasePathPrefixesRoutes(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithBasePath("/directory"))
	b := testutil.NewBrowser(t, ts, "/directory")

	doc := b.Page("/").Doc
	require.Equal(t, "/directory/tools/grid", doc.Find("#catalog-filters").AttrOr("hx-get", ""))
	require.Equal(t, "/directory/public/static/app.css", doc.Find(`link[rel="stylesheet"]`).AttrOr("href", ""))
	require.Equal(t, "/directory/reviews/new?tool_id=1",
		doc.Find(`.tool-card[data-tool-id="1"] [data-action="review"]`).AttrOr("hx-get", ""))

	resp := b.Get("/admin/panel")
	require.Equal(t, "/directory/login", resp.Header.Get("HX-Redirect"))

	bare, err := ts.Client().Get(ts.URL + "/directory")
	require.NoError(t, err)
	defer bare.Body.Close()
	require.Equal(t, http.StatusOK, bare.StatusCode)
	bareDoc, err := goquery.NewDocumentFromReader(bare.Body)
	require.NoError(t, err)
	require.Equal(t, 4, bareDoc.Find("#tools-grid .tool-card").Length())
}

func TestGuestReadsDoNotRetainVisitorState(t *testing.T) {
	t.Parallel()

	states := directory.NewStore(0, time.Hour)
	ts := testutil.NewServer(t, testutil.WithStore(states))

	for i := 0; i < 50; i++ {
		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.Zero(t, states.Len())

	b := testutil.NewBrowser(t, ts, "/")
	b.Get("/reviews/new?tool_id=1")
	require.Zero(t, states.Len())

	b.Post("/reviews/rating", url.Values{"tool_id": {"1"}, "rating": {"3"}})
	require.Equal(t, 1, states.Len(), "a star selection is kept for the visitor")
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func findReview(t *testing.T, doc *goquery.Document, text string) *goquery.Selection {
	t.Helper()
	var found *goquery.Selection
	doc.Find("#reviews-list .review-card").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find(".review-text").Text() == text {
			found = s
			return false
		}
		return true
	})
	require.NotNil(t, found, "review %q not rendered", text)
	return found
}
