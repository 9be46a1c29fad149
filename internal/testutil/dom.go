package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"

	"finitefield.org/toolfinder/internal/httpserver/middleware"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Render renders component as if served under basePath and parses the output.
func Render(t testing.TB, basePath string, component templ.Component) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	if err := component.Render(RequestContext(basePath), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return ParseHTML(t, buf.Bytes())
}

// RequestContext returns a context carrying the base path the templates
// build their links from.
func RequestContext(basePath string) context.Context {
	return middleware.WithBasePath(context.Background(), basePath)
}
