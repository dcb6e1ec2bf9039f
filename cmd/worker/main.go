package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/marketplace-api/internal/bootstrap"
	"github.com/jwalitptl/marketplace-api/internal/config"
	"github.com/jwalitptl/marketplace-api/internal/email"
	"github.com/jwalitptl/marketplace-api/internal/service/notification"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

// The worker mails booking parties about domain events published by the API.
// It needs the Redis broker; an in-memory broker would never see API events.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	l := bootstrap.NewLogger(cfg.Log).With("worker")

	if !cfg.Redis.Enabled {
		l.Fatal(errors.New("redis.enabled is false"), "worker requires the Redis broker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, l)
	if err != nil {
		l.Fatal(err, "failed to open store")
	}
	defer store.Close()

	broker, _, err := bootstrap.OpenBroker(ctx, cfg.Redis, l)
	if err != nil {
		l.Fatal(err, "failed to open message broker")
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("marketplace_worker", reg)

	mailer := email.NewLogService(l)
	if cfg.Mail.Enabled {
		mailer = email.NewSMTPService(cfg.Mail)
	}

	msgs, err := broker.Subscribe(ctx, notification.Channels...)
	if err != nil {
		l.Fatal(err, "failed to subscribe to events")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error(err, "metrics server failed")
		}
	}()

	l.Info("worker started", "channels", notification.Channels)
	notification.NewService(store.Users(), mailer, m, l).Run(ctx, msgs)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		l.Error(err, "metrics server forced to shutdown")
	}
	l.Info("worker stopped")
}
