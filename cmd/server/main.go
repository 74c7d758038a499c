package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adamwrona/airport-ops/internal/config"
	"github.com/adamwrona/airport-ops/internal/database"
	"github.com/adamwrona/airport-ops/internal/handler"
	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/mailer"
	"github.com/adamwrona/airport-ops/internal/metrics"
	"github.com/adamwrona/airport-ops/internal/queue"
	"github.com/adamwrona/airport-ops/internal/repository"
	"github.com/adamwrona/airport-ops/internal/router"
	"github.com/adamwrona/airport-ops/internal/scheduler"
	queue_publisher "github.com/adamwrona/airport-ops/internal/service"
	"github.com/adamwrona/airport-ops/internal/tracking"
	"github.com/adamwrona/airport-ops/internal/weather"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.New()
	log.Info("starting airport-ops")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	defer db.Close()

	// Redis is optional: a nil client degrades caching, rate limiting
	// and reminder deduplication, nothing else.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	}

	m := metrics.New("airport_ops")

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	clients := repository.NewClientRepo(db)
	pilots := repository.NewPilotRepo(db)
	employees := repository.NewEmployeeRepo(db)
	flights := repository.NewFlightRepo(db)
	routes := repository.NewRouteRepo(db)
	baggage := repository.NewBaggageRepo(db)
	services := repository.NewServiceRepo(db)
	forecasts := repository.NewWeatherRepo(db)

	// Opportunistic cleanup of stale sessions; failure is not fatal.
	if n, err := tokens.PurgeExpired(ctx, time.Now().AddDate(0, 0, -cfg.RefreshTTLDays)); err != nil {
		log.Warn("refresh token purge failed", "error", err)
	} else if n > 0 {
		log.Info("purged stale refresh tokens", "count", n)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	weatherClient := weather.NewClient(cfg.WeatherBaseURL, httpClient, m)
	trackingClient := tracking.NewClient(cfg.TrackingBaseURL, httpClient, m)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, users, tokens, clients, pilots, employees),
		Users:    handler.NewUserHandler(users, employees),
		Clients:  handler.NewClientHandler(clients),
		Flights:  handler.NewFlightHandler(flights, pilots, users, log, m),
		Routes:   handler.NewRouteHandler(routes, forecasts, weatherClient, log),
		Baggage:  handler.NewBaggageHandler(baggage, clients, flights, trackingClient, log),
		Services: handler.NewServiceHandler(services, clients),
		Loyalty:  handler.NewLoyaltyHandler(clients),
	})

	// Reminder sweep publishes upcoming-departure events to the broker.
	sweep := &scheduler.ReminderSweep{
		Flights:  flights,
		Redis:    rdb,
		Log:      log,
		Metrics:  m,
		Interval: cfg.ReminderInterval,
		Horizon:  cfg.ReminderHorizon,
	}
	go sweep.Run(ctx)

	// The consumer turns reminder events into email.  With no SMTP host
	// configured it still drains the queue and logs what it would send.
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	go queue.StartReminderConsumer(queue_publisher.BrokerURL(), mail, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("stopped")
}
