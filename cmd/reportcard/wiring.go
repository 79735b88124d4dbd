package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alem-hub/reportcard/config"
	"github.com/alem-hub/reportcard/internal/application/command"
	"github.com/alem-hub/reportcard/internal/application/management"
	"github.com/alem-hub/reportcard/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/reportcard/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/reportcard/internal/interface/http/handlers"
	"github.com/alem-hub/reportcard/pkg/logger"
	"github.com/alem-hub/reportcard/pkg/retry"
)

// app holds everything both commands share.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	manager *management.Locked
	process *command.ProcessJournalHandler
	health  *handlers.CompositeHealthChecker
	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp loads configuration and wires the facade, the sinks and health checks.
// logOut receives log lines; the shell sends them to stderr so the menu stays readable.
func buildApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}

	log := logger.New(logger.Options{
		Output:    logOut,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddCaller: cfg.App.Debug,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)

	a := &app{
		cfg:    cfg,
		log:    log,
		health: handlers.NewCompositeHealthChecker(cfg.App.Version),
	}

	a.manager = management.NewLocked(management.New(management.Options{
		UndoCapacity:    cfg.Capacity.UndoLog,
		JournalCapacity: cfg.Capacity.Journal,
		Logger:          log,
	}))

	sinks, err := a.connectSinks(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.process = command.NewProcessJournalHandler(a.manager, sinks, command.ProcessJournalConfig{
		SinkTimeout:             cfg.Journal.SinkTimeout,
		MaxAttempts:             cfg.Journal.SinkMaxAttempts,
		InitialDelay:            cfg.Journal.SinkInitialDelay,
		BreakerFailureThreshold: cfg.Journal.BreakerThreshold,
		BreakerCooldown:         cfg.Journal.BreakerCooldown,
	}, log)

	log.Info("report card manager ready",
		logger.Int("undo_capacity", cfg.Capacity.UndoLog),
		logger.Int("journal_capacity", cfg.Capacity.Journal),
		logger.Any("sinks", a.process.Sinks()),
	)

	return a, nil
}

// connectSinks opens the optional PostgreSQL archive and Redis stream.
func (a *app) connectSinks(ctx context.Context) ([]command.JournalSink, error) {
	var sinks []command.JournalSink

	if a.cfg.Database.Enabled() {
		a.log.Info("connecting to database...")

		conn, err := connectPostgres(ctx, postgres.Config{
			URL:      a.cfg.Database.URL,
			MaxConns: int32(a.cfg.Database.MaxConns),
		}, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, func() {
			a.log.Info("closing database connection...")
			conn.Close()
		})

		if a.cfg.Database.AutoMigrate {
			migrateCtx, cancel := context.WithTimeout(ctx, a.cfg.Database.QueryTimeout)
			applied, err := postgres.NewMigrator(conn).Migrate(migrateCtx)
			cancel()
			if err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			a.log.Info("migrations completed", logger.Int("applied", applied))
		}

		sinks = append(sinks, postgres.NewJournalArchive(conn))
		a.health.AddCheck("postgres", handlers.NewDatabaseCheck(conn))
	}

	if !a.cfg.Redis.Disabled {
		a.log.Info("connecting to Redis...")

		rc := redis.DefaultConfig()
		rc.Host = a.cfg.Redis.Host
		rc.Port = a.cfg.Redis.Port
		rc.Password = a.cfg.Redis.Password
		rc.DB = a.cfg.Redis.DB
		rc.DialTimeout = a.cfg.Redis.DialTimeout

		client, err := connectRedis(ctx, rc, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			a.log.Info("closing Redis connection...")
			_ = client.Close()
		})

		sinks = append(sinks, redis.NewJournalStream(client, a.cfg.Redis.Stream, a.cfg.Redis.StreamMaxLen))
		a.health.AddCheck("redis", handlers.NewCacheCheck(client))
	}

	return sinks, nil
}

// connectPostgres retries the initial connection.
func connectPostgres(ctx context.Context, cfg postgres.Config, log *logger.Logger) (*postgres.Connection, error) {
	var conn *postgres.Connection
	err := retry.ConnectRetrier().Do(ctx, func(ctx context.Context) error {
		c, err := postgres.NewConnection(ctx, cfg)
		if err != nil {
			log.Warn("database not reachable yet", logger.Err(err))
			return retry.Retryable(err)
		}
		conn = c
		return nil
	})
	return conn, err
}

// connectRedis retries the initial connection.
func connectRedis(ctx context.Context, cfg redis.Config, log *logger.Logger) (*redis.Client, error) {
	var client *redis.Client
	err := retry.ConnectRetrier().Do(ctx, func(ctx context.Context) error {
		c, err := redis.NewClient(ctx, cfg)
		if err != nil {
			log.Warn("Redis not reachable yet", logger.Err(err))
			return retry.Retryable(err)
		}
		client = c
		return nil
	})
	return client, err
}
