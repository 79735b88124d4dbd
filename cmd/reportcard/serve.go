package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alem-hub/reportcard/internal/application/command"
	"github.com/alem-hub/reportcard/internal/infrastructure/scheduler"
	"github.com/alem-hub/reportcard/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/alem-hub/reportcard/internal/interface/http"
	"github.com/alem-hub/reportcard/pkg/logger"
)

var servePort int

// serveCmd запускает JSON API до SIGINT/SIGTERM.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report card JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override HTTP_PORT")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	if servePort != 0 {
		cfg.HTTP.Port = servePort
	}

	server := httpserver.NewServer(httpserver.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     1 << 20,
		MaxBodyBytes:       cfg.HTTP.MaxBodyBytes,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Version:            cfg.App.Version,
	}, httpserver.Dependencies{
		Manager:        a.manager,
		ProcessJournal: a.process,
		Logger:         a.log,
		HealthChecker:  a.health,
	})

	sched, err := startFlushJob(ctx, a)
	if err != nil {
		return err
	}

	errCh := server.StartAsync()

	select {
	case err, ok := <-errCh:
		if sched != nil {
			_ = sched.Stop()
		}
		if ok && err != nil {
			server.Close()
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.log.Info("received shutdown signal")
	}

	a.log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("http server shutdown failed", logger.Err(err))
	}

	if sched != nil {
		_ = sched.Stop()
	}

	// Deliver what is still journaled before the sinks close.
	if result, err := a.process.Handle(shutdownCtx, command.ProcessJournalCommand{CorrelationID: "shutdown"}); err == nil && len(result.Records) > 0 {
		a.log.Info("journal flushed on shutdown", logger.Count(len(result.Records)))
	}

	a.log.Info("shutdown complete")
	return nil
}

// startFlushJob schedules periodic journal delivery when
// JOURNAL_FLUSH_INTERVAL is set. It returns nil when the job is disabled.
func startFlushJob(ctx context.Context, a *app) (*scheduler.Scheduler, error) {
	interval := a.cfg.Journal.FlushInterval
	if interval <= 0 {
		return nil, nil
	}

	sched := scheduler.New(scheduler.Config{Logger: a.log})
	job := jobs.NewFlushJournalJob(a.process, a.log, a.cfg.Journal.SinkTimeout*time.Duration(len(a.process.Sinks())+1))
	if err := sched.Register(job, scheduler.NewIntervalSchedule(interval)); err != nil {
		return nil, fmt.Errorf("failed to register flush job: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}
	return sched, nil
}
