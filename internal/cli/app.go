package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/udlcoach"
	"github.com/aretw0/udlcoach/internal/config"
	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/adapters/file"
	"github.com/aretw0/udlcoach/pkg/adapters/memory"
	"github.com/aretw0/udlcoach/pkg/adapters/openai"
	redisAdapter "github.com/aretw0/udlcoach/pkg/adapters/redis"
	"github.com/aretw0/udlcoach/pkg/adapters/sqlite"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/observability"
	"github.com/aretw0/udlcoach/pkg/persistence/middleware"
	"github.com/aretw0/udlcoach/pkg/ports"
	goredis "github.com/redis/go-redis/v9"
)

// Default on-disk locations, relative to the working directory.
var (
	DefaultFileStorePath   = filepath.Join(".udlcoach", "sessions")
	DefaultSQLiteStorePath = filepath.Join(".udlcoach", "udlcoach.db")
)

// App is the fully wired coach with the resources that must be released on exit.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *udlcoach.Engine
	Metrics *observability.Metrics // nil unless metrics are enabled

	closers []func() error
}

// BuildOptions adjusts Build for the calling command.
type BuildOptions struct {
	// Debug forces debug logging and audit hooks.
	Debug bool
	// Quiet discards logs (stdio transports that own stdout/stderr).
	Quiet bool
}

// Build wires repositories, middleware, capabilities and hooks from cfg.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*App, error) {
	logger, err := createLogger(cfg.Log, opts)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	repo, err := app.openRepository(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	engineOpts := []udlcoach.Option{
		udlcoach.WithLogger(logger),
		udlcoach.WithRepository(repo),
		udlcoach.WithMaxInputSize(cfg.MaxInputSize),
	}

	if cfg.Redis.Lock {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.closers = append(app.closers, client.Close)
		engineOpts = append(engineOpts,
			udlcoach.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix)),
			udlcoach.WithLockTTL(cfg.Redis.LockTTL),
		)
	}

	backend, err := openai.New(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Timeout:     cfg.OpenAI.Timeout,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}, openai.WithLogger(logger))
	switch {
	case err == nil:
		engineOpts = append(engineOpts, udlcoach.WithClassifier(backend), udlcoach.WithGenerator(backend))
	case errors.Is(err, openai.ErrNoAPIKey):
		logger.Warn("no OpenAI API key configured, classification and generation are unavailable")
	default:
		_ = app.Close()
		return nil, fmt.Errorf("configure openai backend: %w", err)
	}

	var hooks []domain.LifecycleHooks
	if opts.Debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	if cfg.MetricsEnabled {
		app.Metrics = observability.NewMetrics()
		hooks = append(hooks, app.Metrics.Hooks())
	}
	if len(hooks) > 0 {
		engineOpts = append(engineOpts, udlcoach.WithLifecycleHooks(observability.Combine(hooks...)))
	}

	app.Engine = udlcoach.New(engineOpts...)
	return app, nil
}

// openRepository builds the configured store and wraps it with middleware.
func (a *App) openRepository(ctx context.Context) (ports.SessionRepository, error) {
	cfg := a.Config
	var repo ports.SessionRepository

	switch cfg.Store.Driver {
	case config.DriverMemory:
		repo = memory.NewStore()
	case config.DriverFile:
		path := cfg.Store.Path
		if path == "" {
			path = DefaultFileStorePath
		}
		repo = file.New(path)
	case config.DriverSQLite:
		path := cfg.Store.Path
		if path == "" {
			path = DefaultSQLiteStorePath
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		repo = store
	case config.DriverRedis:
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		repo = store
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return nil, err
	}
	if key != nil {
		repo = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(repo)
	}

	if cfg.Store.Preloaded() {
		cached := middleware.NewCachedRepository(repo)
		n, err := cached.Preload(ctx)
		if err != nil {
			return nil, err
		}
		a.Logger.Info("session cache warmed", "sessions", n)
		repo = cached
	}

	a.Logger.Debug("session repository ready", "driver", cfg.Store.Driver, "encrypted", key != nil, "cached", cfg.Store.Preloaded())
	return repo, nil
}

// Close releases stores and clients in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func createLogger(cfg config.LogConfig, opts BuildOptions) (*slog.Logger, error) {
	if opts.Quiet && !opts.Debug {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	return logging.New(level, cfg.Format), nil
}
