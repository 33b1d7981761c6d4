// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/bodygraph/gatesdb/adapters/clock"
	apihttp "github.com/bodygraph/gatesdb/adapters/http"
	"github.com/bodygraph/gatesdb/adapters/idgen"
	"github.com/bodygraph/gatesdb/adapters/memory"
	"github.com/bodygraph/gatesdb/adapters/metrics"
	"github.com/bodygraph/gatesdb/adapters/sqlite"
	"github.com/bodygraph/gatesdb/app"
	"github.com/bodygraph/gatesdb/config"
	"github.com/bodygraph/gatesdb/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB // nil when the in-memory store is used
	Store      ports.SnapshotStore
	Registry   *app.Registry
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// Options provides optional settings for application initialization.
type Options struct {
	// Version is reported by GET /version.
	Version apihttp.VersionResponse

	// LogOutput receives log output. Defaults to os.Stdout.
	LogOutput io.Writer
}

// New creates and initializes the application from cfg. Every configured
// locale is loaded once; a locale that fails to load is served as
// unavailable until a later reload succeeds.
func New(cfg *config.Config, opts Options) (*App, error) {
	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(cfg.Logging, out)

	logger.Info().
		Strs("locales", localeNames(cfg)).
		Str("default_locale", cfg.Catalog.DefaultLocale).
		Msg("initializing gatesdb")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if err := a.initStore(); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = metrics.NewWithRegistry(reg)
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initCatalogs(context.Background()); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("init catalogs: %w", err)
	}

	a.initHTTPServer(reg, opts.Version)

	return a, nil
}

func (a *App) initStore() error {
	switch a.Config.Database.Driver {
	case "memory":
		a.Store = memory.NewSnapshotStore()
		a.Logger.Info().Msg("using in-memory snapshot store")
		return nil
	case "sqlite":
		db, err := sqlite.Open(a.Config.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.DB = db
		a.Store = sqlite.NewSnapshotStore(db)
		a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
		return nil
	default:
		return fmt.Errorf("unknown database driver %q", a.Config.Database.Driver)
	}
}

func (a *App) initCatalogs(ctx context.Context) error {
	deps := app.CatalogDeps{
		Store:  a.Store,
		Clock:  clock.Real{},
		IDGen:  idgen.UUID{},
		Logger: a.Logger,
	}
	if a.Metrics != nil {
		deps.Metrics = a.Metrics
	}

	a.Registry = app.NewRegistry(a.Config.Catalog.DefaultLocale)

	for _, locale := range localeNames(a.Config) {
		svc, err := app.NewCatalogService(locale, a.Config.Catalog.Locales[locale], deps)
		if err != nil {
			return fmt.Errorf("locale %s: %w", locale, err)
		}
		a.Registry.Add(svc)

		if err := svc.Reload(ctx); err != nil {
			a.Logger.Error().Err(err).Str("locale", locale).Msg("initial catalog load failed")
			if a.Config.Catalog.RestoreOnFailure {
				a.restore(ctx, svc)
			}
		}

		if a.Config.Catalog.HotReload {
			if err := svc.WatchFile(); err != nil {
				a.Logger.Warn().Err(err).Str("locale", locale).Msg("hot reload disabled")
			}
		}
	}

	return nil
}

func (a *App) restore(ctx context.Context, svc *app.CatalogService) {
	err := svc.Restore(ctx)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		a.Logger.Warn().Str("locale", svc.Locale()).Msg("no stored snapshot to restore")
	case err != nil:
		a.Logger.Error().Err(err).Str("locale", svc.Locale()).Msg("snapshot restore failed")
	default:
		a.Logger.Info().
			Str("locale", svc.Locale()).
			Str("checksum", svc.Get().Checksum).
			Msg("serving restored snapshot")
	}
}

func (a *App) initHTTPServer(reg *prometheus.Registry, version apihttp.VersionResponse) {
	cfg := a.Config

	routerCfg := apihttp.RouterConfig{
		Metrics:        a.Metrics,
		EnableOpenAPI:  cfg.OpenAPI.Enabled,
		Version:        version,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if reg != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	router := apihttp.NewRouter(
		apihttp.NewCatalogHandler(a.Registry, a.Logger),
		apihttp.NewHealthHandler(a.Registry),
		a.Logger,
		routerCfg,
	)

	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.Config.Catalog.HotReload {
		for _, locale := range a.Registry.Locales() {
			svc, _ := a.Registry.Lookup(locale)
			svc.WatchSignals()
		}
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop watchers before the server so no reload races the shutdown.
	if a.Registry != nil {
		a.Registry.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// Reload reloads every locale from its source file.
func (a *App) Reload(ctx context.Context) error {
	return a.Registry.ReloadAll(ctx)
}

// NewLogger builds the application logger. Format "auto" writes
// human-readable output when out is a terminal and JSON otherwise.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	console := cfg.Format == "console"
	if cfg.Format == "auto" {
		if f, ok := out.(*os.File); ok {
			console = term.IsTerminal(int(f.Fd()))
		}
	}

	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func localeNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Catalog.Locales))
	for locale := range cfg.Catalog.Locales {
		names = append(names, locale)
	}
	slices.Sort(names)
	return names
}
