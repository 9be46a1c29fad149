package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/httpserver"
	"finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/httpserver/ui"
	"finitefield.org/toolfinder/internal/session"
)

// Demo credentials accepted by the default catalog.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret"
)

type serverConfig struct {
	basePath string
	service  catalog.Service
	states   *directory.Store
	delays   ui.Delays
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*serverConfig)

// WithBasePath sets a custom mount path for the UI.
func WithBasePath(path string) ServerOption {
	return func(cfg *serverConfig) {
		cfg.basePath = path
	}
}

// WithService replaces the seeded in-memory catalog.
func WithService(service catalog.Service) ServerOption {
	return func(cfg *serverConfig) {
		cfg.service = service
	}
}

// WithStore shares the per-visitor state store with the test.
func WithStore(states *directory.Store) ServerOption {
	return func(cfg *serverConfig) {
		cfg.states = states
	}
}

// NewCatalog returns an in-memory catalog loaded with the default seed.
func NewCatalog(t testing.TB) *catalog.StaticService {
	t.Helper()

	svc := catalog.NewStaticService(catalog.StaticConfig{
		AdminEmail:    AdminEmail,
		AdminPassword: AdminPassword,
		SigningKey:    []byte("test-signing-key"),
	})
	seed, err := catalog.DefaultSeed()
	if err != nil {
		t.Fatalf("default seed: %v", err)
	}
	seed.Apply(svc)
	return svc
}

// NewServer constructs an httptest server running the full HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := serverConfig{
		basePath: "/",
		delays: ui.Delays{
			Success:     time.Second,
			ReviewClose: 1500 * time.Millisecond,
			MessageTTL:  3 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.service == nil {
		cfg.service = NewCatalog(t)
	}
	if cfg.states == nil {
		cfg.states = directory.NewStore(0, time.Hour)
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("fedcba9876543210fedcba9876543210"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Controller: directory.NewController(cfg.service, nil),
		States:     cfg.states,
		Delays:     cfg.delays,
	})

	srv := httpserver.New(httpserver.Config{
		Address:     ":0",
		BasePath:    cfg.basePath,
		Environment: "test",
		Handlers:    handlers,
		Sessions:    sessions,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Browser drives the server like the page does: it keeps cookies and sends
// the CSRF header on every request.
type Browser struct {
	t       testing.TB
	base    string
	client  *http.Client
	csrf    string
	current string
}

// Response is a decoded server answer.
type Response struct {
	Status int
	Header http.Header
	Body   string
	Doc    *goquery.Document
}

// NewBrowser loads the index page once to obtain the session and CSRF cookies.
func NewBrowser(t testing.TB, ts *httptest.Server, basePath string) *Browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	b := &Browser{
		t:    t,
		base: ts.URL + strings.TrimRight(basePath, "/"),
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	b.Page("/")

	u, err := url.Parse(b.base + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == middleware.DefaultCSRFCookie {
			b.csrf = c.Value
		}
	}
	if b.csrf == "" {
		t.Fatalf("csrf cookie was not issued")
	}
	return b
}

// SetPageURL sets the page location htmx reports in HX-Current-URL, e.g.
// after a fragment replaced the URL.
func (b *Browser) SetPageURL(path string) {
	b.current = b.base + path
}

// Page performs a plain navigation.
func (b *Browser) Page(path string) Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, false, true)
}

// Get issues an htmx GET.
func (b *Browser) Get(path string) Response {
	b.t.Helper()
	return b.do(http.MethodGet, path, nil, true, true)
}

// Post issues an htmx form POST.
func (b *Browser) Post(path string, form url.Values) Response {
	b.t.Helper()
	return b.do(http.MethodPost, path, form, true, true)
}

// PostWithoutCSRF issues an htmx POST that omits the CSRF header.
func (b *Browser) PostWithoutCSRF(path string, form url.Values) Response {
	b.t.Helper()
	return b.do(http.MethodPost, path, form, true, false)
}

// Delete issues an htmx DELETE; query carries the included filters.
func (b *Browser) Delete(path string) Response {
	b.t.Helper()
	return b.do(http.MethodDelete, path, nil, true, true)
}

// Login signs in with the default demo credentials.
func (b *Browser) Login() Response {
	b.t.Helper()
	return b.Post("/login", url.Values{"email": {AdminEmail}, "password": {AdminPassword}})
}

func (b *Browser) do(method, path string, form url.Values, htmx, csrf bool) Response {
	b.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequest(method, b.base+path, body)
	if err != nil {
		b.t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
		if b.current != "" {
			req.Header.Set("HX-Current-URL", b.current)
		}
	}
	if csrf && b.csrf != "" {
		req.Header.Set(middleware.DefaultCSRFHeader, b.csrf)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		b.t.Fatalf("parse html: %v", err)
	}
	html, _ := doc.Html()
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: html, Doc: doc}
}
