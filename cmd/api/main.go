package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/marketplace-api/internal/bootstrap"
	"github.com/jwalitptl/marketplace-api/internal/config"
	"github.com/jwalitptl/marketplace-api/internal/email"
	adminHandler "github.com/jwalitptl/marketplace-api/internal/handler/admin"
	authHandler "github.com/jwalitptl/marketplace-api/internal/handler/auth"
	bookingHandler "github.com/jwalitptl/marketplace-api/internal/handler/booking"
	catalogHandler "github.com/jwalitptl/marketplace-api/internal/handler/catalog"
	chatHandler "github.com/jwalitptl/marketplace-api/internal/handler/chat"
	"github.com/jwalitptl/marketplace-api/internal/handler/health"
	reviewHandler "github.com/jwalitptl/marketplace-api/internal/handler/review"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/router"
	adminService "github.com/jwalitptl/marketplace-api/internal/service/admin"
	authService "github.com/jwalitptl/marketplace-api/internal/service/auth"
	bookingService "github.com/jwalitptl/marketplace-api/internal/service/booking"
	catalogService "github.com/jwalitptl/marketplace-api/internal/service/catalog"
	chatService "github.com/jwalitptl/marketplace-api/internal/service/chat"
	eventService "github.com/jwalitptl/marketplace-api/internal/service/event"
	"github.com/jwalitptl/marketplace-api/internal/service/notification"
	reviewService "github.com/jwalitptl/marketplace-api/internal/service/review"
	"github.com/jwalitptl/marketplace-api/pkg/auth"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
	"github.com/jwalitptl/marketplace-api/pkg/security"
	"github.com/jwalitptl/marketplace-api/pkg/validator"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := bootstrap.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, l)
	if err != nil {
		l.Fatal(err, "failed to open store")
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("marketplace", reg)

	broker, local, err := bootstrap.OpenBroker(ctx, cfg.Redis, l)
	if err != nil {
		l.Fatal(err, "failed to open message broker")
	}
	defer broker.Close()

	publisher := eventService.NewPublisher(broker, m, l)

	// Without Redis there is no separate worker, so notify in-process
	if local {
		mailer := email.NewLogService(l)
		if cfg.Mail.Enabled {
			mailer = email.NewSMTPService(cfg.Mail)
		}
		msgs, err := broker.Subscribe(ctx, notification.Channels...)
		if err != nil {
			l.Fatal(err, "failed to subscribe to events")
		}
		go notification.NewService(store.Users(), mailer, m, l).Run(ctx, msgs)
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.TokenExpiry())
	v := validator.New()

	authSvc := authService.NewService(store, jwtSvc, security.NewBcryptHasher(0), v, l)
	reviewSvc := reviewService.NewService(store, publisher, m, l)
	catalogSvc := catalogService.NewService(store, reviewSvc, v, l)
	bookingSvc := bookingService.NewService(store, publisher, m, l)
	chatSvc := chatService.NewService(store, publisher, l)
	adminSvc := adminService.NewService(store, cfg.Stats.Locations, m, l)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		health.NewHandler(store, reg),
		[]router.Handler{
			authHandler.NewHandler(authSvc),
			catalogHandler.NewHandler(catalogSvc),
			bookingHandler.NewHandler(bookingSvc),
			reviewHandler.NewHandler(reviewSvc),
			chatHandler.NewHandler(chatSvc),
			adminHandler.NewHandler(adminSvc),
		},
		m,
		l,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Server.RequestsPerSecond),
			RateBurst:      cfg.Server.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
			HSTS:           cfg.Server.HSTS,
			Mode:           gin.ReleaseMode,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		l.Info("starting server", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	l.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error(err, "server forced to shutdown")
	}

	l.Info("server exited properly")
}
