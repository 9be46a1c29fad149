package helpers

import (
	"bytes"
	"context"
	"testing"
	"time"

	"finitefield.org/toolfinder/internal/catalog"
)

func TestLoadTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		delay time.Duration
		want  string
	}{
		{name: "whole seconds", delay: time.Second, want: "load delay:1s"},
		{name: "sub-second remainder", delay: 1500 * time.Millisecond, want: "load delay:1500ms"},
		{name: "no delay", delay: 0, want: "load"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := LoadTrigger(tc.delay); got != tc.want {
				t.Errorf("LoadTrigger(%v) = %q, want %q", tc.delay, got, tc.want)
			}
		})
	}
}

func TestStatusBadgeClass(t *testing.T) {
	t.Parallel()

	if got := StatusBadgeClass(catalog.StatusPending); got != "review-status pending" {
		t.Errorf("unexpected class: %s", got)
	}
	if got := StatusBadgeClass(catalog.StatusRejected); got != "review-status rejected" {
		t.Errorf("unexpected class: %s", got)
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	u := BuildURL("/tools/grid", "category=Video&rating=4")
	if u != "/tools/grid?category=Video&rating=4" {
		t.Errorf("unexpected URL: %s", u)
	}

	u = BuildURL("/tools/grid?rating=1", "")
	if u != "/tools/grid" {
		t.Errorf("expected query stripped when empty, got %s", u)
	}
}

func TestHTMLEscapesText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Component(func(h *HTML) {
		h.Raw("<p").Attr("title", `"quoted" & <b>`).Raw(">").Text("<script>alert(1)</script>").Raw("</p>")
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<p title="&#34;quoted&#34; &amp; &lt;b&gt;">&lt;script&gt;alert(1)&lt;/script&gt;</p>`
	if buf.String() != want {
		t.Errorf("unexpected markup:\n got %s\nwant %s", buf.String(), want)
	}
}

func TestPathJoinsBase(t *testing.T) {
	t.Parallel()

	if got := Path(context.Background(), "tools/grid"); got != "/tools/grid" {
		t.Errorf("unexpected path without base: %s", got)
	}
}
