package tools_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/templates/partials"
	"finitefield.org/toolfinder/internal/templates/tools"
	"finitefield.org/toolfinder/internal/testutil"
)

func TestGridRendersCards(t *testing.T) {
	t.Parallel()

	rating := 4.25
	doc := testutil.Render(t, "/", tools.Grid(tools.GridData{Tools: []catalog.Tool{
		{ID: "1", Name: "Canvas Muse", Description: "Images", UseCase: "Storyboards", Category: "Image Generation", Pricing: "Paid", AvgRating: &rating},
		{ID: "2", Name: "Pairline", Description: "Completion", Category: "Code Assistant", Pricing: "Free"},
	}}))

	cards := doc.Find("#tools-grid .tool-card")
	require.Equal(t, 2, cards.Length())
	require.Empty(t, doc.Find("#tools-grid").AttrOr("hx-swap-oob", ""))

	first := cards.First()
	require.Equal(t, "⭐ 4.25", first.Find(".tool-rating").Text())
	require.Equal(t, "Storyboards", first.Find(".tool-use-case").Text())
	require.Equal(t, "/reviews/new?tool_id=1", first.Find(`[data-action="review"]`).AttrOr("hx-get", ""))
	require.Equal(t, "#modal", first.Find(`[data-action="review"]`).AttrOr("hx-target", ""))

	second := cards.Last()
	require.Equal(t, "⭐ N/A", second.Find(".tool-rating").Text())
	require.Zero(t, second.Find(".tool-use-case").Length())
}

func TestGridPlaceholder(t *testing.T) {
	t.Parallel()

	doc := testutil.Render(t, "/", tools.Grid(tools.GridData{OOB: true}))
	require.Equal(t, tools.EmptyText, doc.Find("#tools-grid .empty").Text())
	require.Equal(t, "true", doc.Find("#tools-grid").AttrOr("hx-swap-oob", ""))

	doc = testutil.Render(t, "/", tools.Grid(tools.GridData{Unavailable: true}))
	require.Zero(t, doc.Find("#tools-grid .empty").Length())
}

func TestFiltersDefaultsAndSelection(t *testing.T) {
	t.Parallel()

	doc := testutil.Render(t, "/app", tools.Filters(tools.FiltersData{Filter: catalog.Filter{Pricing: "Paid", Rating: "3"}}))
	form := doc.Find("#catalog-filters")
	require.Equal(t, "/app/tools/grid", form.AttrOr("hx-get", ""))
	require.Equal(t, "change", form.AttrOr("hx-trigger", ""))

	require.Equal(t, "All Categories", form.Find(`select[name="category"] option[selected]`).Text())
	require.Equal(t, "Paid", form.Find(`select[name="pricing"] option[selected]`).AttrOr("value", ""))
	require.Equal(t, "3+ Stars", form.Find(`select[name="rating"] option[selected]`).Text())
	require.Equal(t, len(catalog.Categories)+1, form.Find(`select[name="category"] option`).Length())
	require.Equal(t, 5, form.Find(`select[name="rating"] option`).Length())
}

func TestStarsHighlightsUpToRating(t *testing.T) {
	t.Parallel()

	cases := map[int][]bool{
		0: {false, false, false, false, false},
		3: {true, true, true, false, false},
		5: {true, true, true, true, true},
	}
	for rating, want := range cases {
		doc := testutil.Render(t, "/", tools.Stars(tools.StarsData{ToolID: "7", Rating: rating}))
		stars := doc.Find("#star-rating .star")
		require.Equal(t, 5, stars.Length())
		got := make([]bool, 0, 5)
		for i := range stars.Nodes {
			got = append(got, stars.Eq(i).HasClass("active"))
		}
		require.Equal(t, want, got, "rating %d", rating)
	}

	doc := testutil.Render(t, "/", tools.Stars(tools.StarsData{ToolID: "7", Rating: 2}))
	fourth := doc.Find(`#star-rating .star[data-star="4"]`)
	require.Equal(t, `{"rating":"4","tool_id":"7"}`, fourth.AttrOr("hx-vals", ""))
	require.Equal(t, "/reviews/rating", fourth.AttrOr("hx-post", ""))
}

func TestReviewFormMessageAndFollowUp(t *testing.T) {
	t.Parallel()

	doc := testutil.Render(t, "/", tools.ReviewForm(tools.ReviewFormData{
		Form:     directory.ReviewForm{ToolID: "7", Rating: 4, Text: "<b>Great</b>"},
		Message:  partials.MessageData{Tone: "success", Text: "Review submitted successfully!"},
		FollowUp: &partials.FollowUpData{URL: "/modal/close", Target: "#modal", Swap: "outerHTML"},
	}))

	require.Equal(t, "<b>Great</b>", doc.Find(`textarea[name="review_text"]`).Text())
	require.Zero(t, doc.Find("textarea b").Length())
	require.Equal(t, 4, doc.Find(".star.active").Length())
	require.Equal(t, "status", doc.Find(".message").AttrOr("role", ""))
	require.Equal(t, "outerHTML", doc.Find("[data-follow-up]").AttrOr("hx-swap", ""))
}
