package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appsession "finitefield.org/toolfinder/internal/session"
)

func newTestManager(t *testing.T) *appsession.Manager {
	t.Helper()
	manager, err := appsession.NewManager(appsession.Config{
		HashKey:  []byte("12345678901234567890123456789012"),
		BlockKey: []byte("abcdefghijklmnopqrstuvwxyzABCDEF"),
		Lifetime: time.Hour,
	})
	if err != nil {
		t.Fatalf("session manager init: %v", err)
	}
	return manager
}

func TestRequireAdmin(t *testing.T) {
	manager := newTestManager(t)

	reached := false
	handler := HTMX()(Session(manager)(RequireAdmin("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))))

	t.Run("missing token redirects", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/admin/panel", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rr.Code)
		}
		if location := rr.Header().Get("Location"); location != "/login" {
			t.Fatalf("expected redirect to /login, got %s", location)
		}
		if reached {
			t.Fatalf("handler must not run without a token")
		}
	})

	t.Run("htmx unauthorized returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/panel", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if rr.Header().Get("HX-Redirect") != "/login" {
			t.Fatalf("expected HX-Redirect header to /login")
		}
	})

	t.Run("token in session passes through", func(t *testing.T) {
		sess := manager.New()
		sess.SetToken("token-1")
		seed := httptest.NewRecorder()
		if err := manager.Save(seed, sess); err != nil {
			t.Fatalf("save: %v", err)
		}

		reached = false
		req := httptest.NewRequest(http.MethodGet, "/admin/panel", nil)
		for _, c := range seed.Result().Cookies() {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || !reached {
			t.Fatalf("expected 200 from handler, got %d", rr.Code)
		}
	})
}

func TestCSRFMiddleware(t *testing.T) {
	mw := CSRF(CSRFConfig{CookieName: "csrf", HeaderName: "X-CSRF-Token"})

	t.Run("issues cookie on GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := CSRFTokenFromContext(r.Context())
			if token == "" {
				t.Fatalf("expected token in context")
			}
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "csrf" && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected csrf cookie to be set")
		}
	})

	t.Run("rejects unsafe request without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("allows unsafe request with matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		req.Header.Set("X-CSRF-Token", "token")
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})
}

func TestHTMXMiddleware(t *testing.T) {
	base := HTMX()

	t.Run("detects htmx", func(t *testing.T) {
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				t.Fatalf("expected htmx request")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/admin/fragments", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("keeps the page url", func(t *testing.T) {
		var got string
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = CurrentURLFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/tools/grid", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Current-URL", "http://localhost/?pricing=Free")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if got != "http://localhost/?pricing=Free" {
			t.Fatalf("unexpected current url %q", got)
		}
	})

	t.Run("RequireHTMX blocks non-htmx", func(t *testing.T) {
		handler := base(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
		req := httptest.NewRequest(http.MethodGet, "/admin/fragments", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestNoStoreMiddleware(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tools/grid", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("unexpected Cache-Control: %s", got)
	}
	if got := rr.Header().Get("Vary"); got != "HX-Request" {
		t.Fatalf("unexpected Vary: %s", got)
	}
}

func TestResponseHelpers(t *testing.T) {
	rr := httptest.NewRecorder()
	TriggerEvent(rr, "toolfinder:view", "admin")
	Reswap(rr, "none")

	var payload map[string]string
	if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &payload); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	if payload["toolfinder:view"] != "admin" {
		t.Fatalf("unexpected trigger payload %v", payload)
	}
	if rr.Header().Get("HX-Reswap") != "none" {
		t.Fatalf("expected HX-Reswap none")
	}
}

func TestEnvironment(t *testing.T) {
	var got string
	handler := Environment(" ")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = EnvironmentFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != DefaultEnvironment {
		t.Fatalf("expected %q, got %q", DefaultEnvironment, got)
	}
}

func TestMountPath(t *testing.T) {
	cases := map[string]string{
		"":           "/",
		"/":          "/",
		"app/":       "/app",
		" /tools//":  "/tools",
		"/directory": "/directory",
	}
	for in, want := range cases {
		if got := NormalizeBasePath(in); got != want {
			t.Fatalf("NormalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}

	var got string
	handler := MountPath("directory/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = BasePathFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/directory/", nil))
	if got != "/directory" {
		t.Fatalf("expected /directory, got %q", got)
	}
	if base := BasePathFromContext(context.Background()); base != "/" {
		t.Fatalf("expected / without middleware, got %q", base)
	}
}
