package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/netolib/library-service/internal/config"
	"github.com/netolib/library-service/internal/httpapi"
	"github.com/netolib/library-service/internal/httpapi/ratelimit"
	"github.com/netolib/library-service/internal/mailer"
	"github.com/netolib/library-service/internal/notifier"
	"github.com/netolib/library-service/internal/observability"
	"github.com/netolib/library-service/internal/service"
	"github.com/netolib/library-service/internal/storage/memory"
	"github.com/netolib/library-service/internal/storage/postgres"
)

const otelScopeName = "github.com/netolib/library-service"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := buildLogger(cfg.Observability)

	var metrics observability.MetricsCollector
	if cfg.Observability.Metrics {
		metrics = observability.NewOtelMetricsCollector(otel.Meter(otelScopeName))
	}

	bookStore, loanStore, cleanup, err := buildStores(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer cleanup()

	books := service.NewBookService(bookStore)
	loans := service.NewLoanService(loanStore)

	if cfg.Notifier.Enabled {
		sender, senderErr := buildSender(cfg.SMTP)
		if senderErr != nil {
			return senderErr
		}

		overdueNotifier := notifier.New(loans, sender, log,
			notifier.WithInterval(cfg.Notifier.Interval.Std()),
			notifier.WithSubject(cfg.Notifier.Subject),
			notifier.WithMessage(cfg.Notifier.Message),
		)

		go overdueNotifier.Run(ctx)
	}

	handler := buildHandler(cfg, books, loans, log, metrics)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Std(),
	}

	serveErr := make(chan error, 1)

	go func() {
		log.InfoContext(ctx, "server listening", "addr", cfg.HTTP.Addr, "storage", cfg.Storage.Backend)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err

	case <-ctx.Done():
		log.InfoContext(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func buildLogger(cfg config.ObservabilityConfig) observability.ContextualLogger {
	if cfg.UseOtelLog {
		return observability.NewOtelSlogLogger(otelScopeName)
	}

	return observability.NewTextLogger(parseLogLevel(cfg.LogLevel))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildStores wires the configured storage backend. The returned cleanup
// closes whatever connections were opened.
func buildStores(
	ctx context.Context,
	cfg config.Config,
	log observability.ContextualLogger,
	metrics observability.MetricsCollector,
) (service.BookStore, service.LoanStore, func(), error) {

	if cfg.Storage.Backend == config.StorageMemory {
		bookStore := memory.NewBookStore()

		return bookStore, memory.NewLoanStore(bookStore), func() {}, nil
	}

	db, cleanup, err := buildPostgresDB(ctx, cfg.Postgres, log, metrics)
	if err != nil {
		return nil, nil, nil, err
	}

	return postgres.NewBookStore(db), postgres.NewLoanStore(db), cleanup, nil
}

func buildPostgresDB(
	ctx context.Context,
	cfg config.PostgresConfig,
	log observability.ContextualLogger,
	metrics observability.MetricsCollector,
) (*postgres.DB, func(), error) {

	options := []postgres.Option{
		postgres.WithContextualLogger(log),
	}
	if metrics != nil {
		options = append(options, postgres.WithMetrics(metrics))
	}

	switch cfg.Adapter {
	case config.AdapterPGXPool:
		pool, err := config.PostgresPGXPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		db, err := postgres.NewDBFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return db, pool.Close, nil

	case config.AdapterSQLDB:
		sqlDB, err := config.PostgresSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		db, err := postgres.NewDBFromSQLDB(sqlDB, options...)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}

		return db, func() { _ = sqlDB.Close() }, nil

	case config.AdapterSQLX:
		sqlxDB, err := config.PostgresSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		db, err := postgres.NewDBFromSQLX(sqlxDB, options...)
		if err != nil {
			_ = sqlxDB.Close()
			return nil, nil, err
		}

		return db, func() { _ = sqlxDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown postgres adapter %q", cfg.Adapter)
	}
}

// buildSender returns the SMTP sender, or a recording no-op sender when
// SMTP is disabled so the notifier can run in dry mode.
func buildSender(cfg config.SMTPConfig) (mailer.Sender, error) {
	if !cfg.Enabled {
		return mailer.NewRecorder(), nil
	}

	return mailer.NewSMTPSender(mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

func buildHandler(
	cfg config.Config,
	books *service.BookService,
	loans *service.LoanService,
	log observability.ContextualLogger,
	metrics observability.MetricsCollector,
) http.Handler {

	api := httpapi.NewServer(books, loans, log)

	middlewares := []httpapi.Middleware{
		httpapi.RequestID(),
		httpapi.Recover(log, metrics),
		httpapi.AccessLog(log),
	}

	if metrics != nil {
		middlewares = append(middlewares, httpapi.Metrics(metrics))
	}

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Options{
			RPS:                cfg.RateLimit.RPS,
			Burst:              cfg.RateLimit.Burst,
			TrustXForwardedFor: cfg.RateLimit.TrustXForwardedFor,
		})

		middlewares = append(middlewares, limiter.Middleware)
	}

	return httpapi.Chain(api.Handler(), middlewares...)
}
