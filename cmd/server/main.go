// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ymadz/rallio-sub004/internal/config"
	"github.com/ymadz/rallio-sub004/internal/db"
	"github.com/ymadz/rallio-sub004/internal/notify"
	"github.com/ymadz/rallio-sub004/internal/payments/paymongo"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/ratelimit"
	"github.com/ymadz/rallio-sub004/internal/scheduler"
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	var gateway *paymongo.Client
	if cfg.PayMongo.SecretKey != "" {
		gateway = paymongo.NewClient(cfg.PayMongo)
	} else {
		log.Warn().Msg("PayMongo secret key not set; e-wallet checkout disabled")
	}

	engineOpts := []queue.Option{
		queue.WithNotifier(notify.NewOutbox(database)),
		queue.WithApprovalTTL(time.Duration(cfg.Queue.ApprovalTTLHours) * time.Hour),
	}
	if gateway != nil {
		engineOpts = append(engineOpts, queue.WithGateway(gateway))
	}
	engine, err := queue.NewEngine(database, engineOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize queue engine")
	}

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Close()

	server := newServer(cfg, engine, limiter, gateway)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Queue.SchedulerDisabled {
		if err := startScheduler(ctx, cfg, database); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func startScheduler(ctx context.Context, cfg *config.Config, database *db.DB) error {
	if err := scheduler.Init(); err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(database, notify.LogSender{})

	if _, err := scheduler.AddJob("session-expiry-sweep", cfg.Queue.ExpirySweepCron, func() {
		if err := scheduler.ExpireStaleSessions(ctx, database, time.Now()); err != nil {
			log.Error().Err(err).Msg("Session expiry sweep failed")
		}
	}); err != nil {
		return err
	}

	if _, err := scheduler.AddJob("payment-due-reminders", cfg.Queue.PaymentDueCron, func() {
		if err := scheduler.SendPaymentDueReminders(ctx, database); err != nil {
			log.Error().Err(err).Msg("Payment reminder job failed")
		}
	}); err != nil {
		return err
	}

	if _, err := scheduler.AddJob("notification-dispatch", "* * * * *", func() {
		if err := scheduler.DispatchNotifications(ctx, dispatcher); err != nil {
			log.Error().Err(err).Msg("Notification dispatch failed")
		}
	}); err != nil {
		return err
	}

	return scheduler.Start()
}
