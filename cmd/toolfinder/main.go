package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/toolfinder/internal/catalog"
	"finitefield.org/toolfinder/internal/config"
	"finitefield.org/toolfinder/internal/directory"
	"finitefield.org/toolfinder/internal/httpserver"
	custommw "finitefield.org/toolfinder/internal/httpserver/middleware"
	"finitefield.org/toolfinder/internal/httpserver/ui"
	"finitefield.org/toolfinder/internal/observability"
	"finitefield.org/toolfinder/internal/session"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "toolfinder",
		Short:         "Tool directory front end with guest reviews and an admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper()
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, opts.configPath)
			if err != nil {
				return err
			}

			logger, err := observability.NewLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return serve(ctx, cfg, logger)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	metrics := observability.NewMetrics()

	service, err := buildCatalog(cfg, metrics, logger)
	if err != nil {
		return err
	}

	sessions, err := buildSessions(cfg, logger)
	if err != nil {
		return err
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Controller: directory.NewController(service, logger.Named("directory")),
		States:     directory.NewStore(cfg.Session.StateCapacity, cfg.Session.StateIdleTTL),
		Events:     metrics,
		Delays: ui.Delays{
			Success:     cfg.UI.SuccessDelay,
			ReviewClose: cfg.UI.ReviewCloseDelay,
			MessageTTL:  cfg.UI.MessageTTL,
		},
		Logger: logger,
	})

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.HTTP.Address,
		BasePath:         cfg.HTTP.BasePath,
		Environment:      cfg.Environment,
		Handlers:         handlers,
		Sessions:         sessions,
		Metrics:          metrics.Handler(),
		Logger:           logger,
		CSRFCookieSecure: cfg.Session.Secure,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("http server listening",
		zap.String("address", cfg.HTTP.Address),
		zap.String("base_path", cfg.HTTP.BasePath),
		zap.Bool("demo", cfg.DemoMode()),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

// buildCatalog returns the REST client for the configured API, or the seeded
// in-memory catalog when no API is configured.
func buildCatalog(cfg config.Config, metrics *observability.Metrics, logger *zap.Logger) (catalog.Service, error) {
	if !cfg.DemoMode() {
		client := &http.Client{Timeout: cfg.API.Timeout}
		return catalog.NewHTTPService(cfg.API.BaseURL, client, catalog.WithObserver(metrics))
	}

	var (
		seed catalog.SeedData
		err  error
	)
	if cfg.Demo.SeedFile != "" {
		seed, err = catalog.LoadSeedFile(cfg.Demo.SeedFile)
	} else {
		seed, err = catalog.DefaultSeed()
	}
	if err != nil {
		return nil, err
	}

	svc := catalog.NewStaticService(catalog.StaticConfig{
		AdminEmail:    cfg.Demo.AdminEmail,
		AdminPassword: cfg.Demo.AdminPassword,
		SigningKey:    []byte(cfg.Demo.SigningKey),
	})
	seed.Apply(svc)
	logger.Warn("no catalog API configured; serving the in-memory demo catalog",
		zap.String("admin_email", cfg.Demo.AdminEmail),
		zap.Int("tools", len(seed.Tools)),
	)
	return svc, nil
}

// buildSessions creates the cookie session manager. Missing keys are
// generated, which logs every visitor out on restart.
func buildSessions(cfg config.Config, logger *zap.Logger) (*session.Manager, error) {
	hashKey := []byte(cfg.Session.HashKey)
	blockKey := []byte(cfg.Session.BlockKey)
	if len(hashKey) == 0 {
		logger.Warn("session.hashKey not set; generating an ephemeral key")
		hashKey = randomKey(32)
	}
	if len(blockKey) == 0 {
		blockKey = randomKey(32)
	}
	return session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookiePath:   custommw.NormalizeBasePath(cfg.HTTP.BasePath),
		CookieSecure: cfg.Session.Secure,
	})
}

func randomKey(n int) []byte {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
