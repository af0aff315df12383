// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotagate/quotagate/adapters/clock"
	"github.com/quotagate/quotagate/adapters/hasher"
	"github.com/quotagate/quotagate/adapters/idgen"
	"github.com/quotagate/quotagate/adapters/memory"
	"github.com/quotagate/quotagate/adapters/metrics"
	"github.com/quotagate/quotagate/adapters/sqlite"
	"github.com/quotagate/quotagate/app"
	"github.com/quotagate/quotagate/config"
	"github.com/quotagate/quotagate/ports"
	"github.com/quotagate/quotagate/web"
)

// App represents the running application.
type App struct {
	Logger   zerolog.Logger
	DB       *sqlite.DB // nil when the memory driver is active
	Metrics  *metrics.Collector
	Engine   *app.Engine
	Accounts *app.AccountService
	Server   *http.Server

	holder *config.Holder // nil without hot reload
}

// Options provides optional values for application initialization.
type Options struct {
	Version string
}

// New wires the application from an already loaded configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := newLogger(cfg.Logging)

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("tier catalog: %w", err)
	}

	a := &App{Logger: logger}

	var accounts ports.AccountStore
	var usageLog ports.UsageLog

	switch cfg.Database.Driver {
	case "memory":
		accounts = memory.NewAccountStore()
		if cfg.UsageLog.Enabled {
			usageLog = memory.NewUsageLog()
		}
	default:
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.DB = db
		accounts = sqlite.NewAccountStore(db)
		if cfg.UsageLog.Enabled {
			usageLog = sqlite.NewUsageLog(db)
		}
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	clk := clock.Real{}
	ids := idgen.UUID{}

	a.Engine = app.NewEngine(app.EngineDeps{
		Accounts: accounts,
		UsageLog: usageLog,
		Clock:    clk,
		IDGen:    ids,
		Logger:   logger,
		Metrics:  a.Metrics,
	}, app.EngineConfig{
		Catalog: catalog,
		Strict:  cfg.Enforcement.Strict,
	})

	a.Accounts = app.NewAccountService(app.AccountDeps{
		Accounts: accounts,
		Clock:    clk,
		IDGen:    ids,
		Logger:   logger,
	})

	handler := web.NewHandler(web.Deps{
		Engine:         a.Engine,
		Accounts:       a.Accounts,
		UsageLog:       usageLog,
		Hasher:         hasher.NewBcrypt(0),
		IDGen:          ids,
		Logger:         logger,
		Version:        opts.Version,
		AuthEnabled:    cfg.Auth.Enabled,
		AuthHeader:     cfg.Auth.Header,
		ServiceKeyHash: []byte(cfg.Auth.ServiceKeyHash),
	})

	router := web.NewRouter(handler, web.RouterConfig{
		Metrics:     a.Metrics,
		MetricsPath: cfg.Metrics.Path,
		EnableDocs:  cfg.Docs.Enabled,
	})

	a.Server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// NewWithHotReload wires the application from a config file and watches
// it for changes. Tier overrides and the enforcement mode apply without
// a restart; server and database changes need one.
func NewWithHotReload(path string, opts Options) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a, err := New(cfg, opts)
	if err != nil {
		return nil, err
	}

	holder, err := config.NewHolder(path, a.Logger)
	if err != nil {
		a.close()
		return nil, err
	}

	holder.OnChange(func(c *config.Config) {
		catalog, err := c.Catalog()
		if err != nil {
			a.Logger.Error().Err(err).Msg("config reload: invalid tier catalog, keeping previous")
			return
		}
		a.Engine.UpdateConfig(catalog, c.Enforcement.Strict)
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable, SIGHUP reload only")
	}
	holder.WatchSignals()

	a.holder = holder
	return a, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.Server.Addr).
			Msg("starting http server")
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	a.close()

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
