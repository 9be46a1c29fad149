package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/httpserver/ui"
	"finitefield.org/toolfinder/internal/observability"
	"finitefield.org/toolfinder/public"
)

// Config holds runtime options for the HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Environment      string
	Handlers         *ui.Handlers
	Sessions         custommw.SessionStore
	Metrics          http.Handler
	Logger           *zap.Logger
	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	if cfg.Handlers == nil {
		panic("httpserver: handlers are required")
	}
	if cfg.Sessions == nil {
		panic("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(logger))
	router.Use(observability.RequestLogger())
	router.Use(observability.Recovery())
	router.Use(chimw.Timeout(60 * time.Second))

	basePath := custommw.NormalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("embed static", zap.Error(err))
	}
	staticPrefix := joinPath(basePath, "/public/static/")
	router.Handle(staticPrefix+"*", http.StripPrefix(staticPrefix, http.FileServer(http.FS(staticContent))))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics)
	}

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNonEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	mountRoutes(router, basePath, routeOptions{
		Handlers:    cfg.Handlers,
		Sessions:    cfg.Sessions,
		LoginPath:   loginPath,
		Environment: cfg.Environment,
		CSRF:        csrfCfg,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type routeOptions struct {
	Handlers    *ui.Handlers
	Sessions    custommw.SessionStore
	LoginPath   string
	Environment string
	CSRF        custommw.CSRFConfig
}

func mountRoutes(router chi.Router, base string, opts routeOptions) {
	h := opts.Handlers
	stack := func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.MountPath(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))
	}

	if base != "/" {
		router.Group(func(r chi.Router) {
			stack(r)
			r.Get(base, h.Index)
		})
	}

	router.Route(base, func(r chi.Router) {
		stack(r)

		r.Get("/", h.Index)
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.RequireHTMX())
			r.Get("/tools/grid", h.ToolsGrid)
			r.Get("/modal/close", h.ModalClose)
			r.Get("/reviews/new", h.ReviewNew)
			r.Post("/reviews/rating", h.ReviewRating)
			r.Post("/reviews", h.ReviewSubmit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(custommw.RequireAdmin(opts.LoginPath))
			r.Use(custommw.RequireHTMX())

			r.Get("/panel", h.AdminPanel)
			r.Get("/refresh", h.AdminRefresh)
			r.Get("/tools/grid", h.AdminToolsGrid)
			r.Get("/tools/new", h.AdminToolNew)
			r.Get("/tools/{toolID}/edit", h.AdminToolEdit)
			r.Post("/tools", h.AdminToolSave)
			r.Delete("/tools/{toolID}", h.AdminToolDelete)
			r.Get("/reviews", h.AdminReviews)
			r.Post("/reviews/{reviewID}/approve", h.AdminReviewApprove)
			r.Post("/reviews/{reviewID}/reject", h.AdminReviewReject)
		})
	})
}

func joinPath(base, suffix string) string {
	if base == "/" {
		return suffix
	}
	return strings.TrimRight(base, "/") + suffix
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return joinPath(base, "/login")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
