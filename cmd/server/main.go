package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/events/amqp"
	"github.com/mmynk/settleup/internal/events/kafka"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/reminder"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
	"github.com/mmynk/settleup/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	publisher, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.EventsBroker, err)
	}
	defer publisher.Close()
	logger.Info("Event publisher ready", "broker", cfg.EventsBroker)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	settle := cfg.SettleOptions()

	interceptors := connect.WithInterceptors(
		middleware.Metrics(m),
		middleware.Logging(logger),
		middleware.RequireAuth(jwtManager, apiconnect.AuthServiceRegisterProcedure, apiconnect.AuthServiceLoginProcedure),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(store, 0), store, jwtManager, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		service.NewGroupService(store, settle, m, logger), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(
		service.NewExpenseService(store, publisher, m, logger), interceptors))
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/healthz", healthHandler(store))

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		// h2c serves HTTP/2 without TLS, which Connect clients use.
		Handler:           h2c.NewHandler(requestLog(logger, cors(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.ReminderSchedule != "" {
		job := reminder.New(store, publisher, settle, m, logger)
		scheduler, err := job.Schedule(cfg.ReminderSchedule)
		if err != nil {
			return err
		}
		scheduler.Start()
		logger.Info("Settlement reminders scheduled", "schedule", cfg.ReminderSchedule)
		g.Go(func() error {
			<-ctx.Done()
			<-scheduler.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Connect server starting", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsBroker {
	case config.BrokerKafka:
		return kafka.NewPublisher(cfg.KafkaBrokers), nil
	case config.BrokerAMQP:
		return amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	}
	return events.Nop{}, nil
}
