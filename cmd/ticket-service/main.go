package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ticket-service/internal/adapters/gateway/httpclient"
	"ticket-service/internal/adapters/gateway/mock"
	httphandler "ticket-service/internal/adapters/http"
	"ticket-service/internal/adapters/messaging/kafka"
	"ticket-service/internal/adapters/storage/redis"
	"ticket-service/internal/app"
	"ticket-service/internal/config"
	"ticket-service/internal/core/ports"
	"ticket-service/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file (empty for defaults)")
	flag.Parse()

	// --- 1. Configuration and Logging ---
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	cfg, err := config.Load(*configPath)
	if err != nil {
		fallbackLogger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	slog.SetDefault(logger)
	logger.Info("Application starting", "env", cfg.App.Env, "port", cfg.Server.Port,
		"adult_price", cfg.Ticketing.AdultPrice,
		"child_price", cfg.Ticketing.ChildPrice,
		"infant_price", cfg.Ticketing.InfantPrice,
		"max_tickets", cfg.Ticketing.MaxTickets,
	)

	// --- 2. Observability ---
	if cfg.Jaeger.Port != "" {
		shutdownTracer, err := observability.InitTracer(cfg.Jaeger.Port, observability.ServiceName)
		if err != nil {
			logger.Error("Failed to initialize tracing", "ERROR", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Warn("Failed to shutdown tracer", "ERROR", err)
			}
		}()
	}

	// --- 3. Dependencies ---
	ctx := context.Background()

	payments, err := newPaymentGateway(cfg.Gateways.Payment, logger)
	if err != nil {
		logger.Error("Failed to create payment gateway", "ERROR", err)
		os.Exit(1)
	}

	seats, closeSeats, err := newSeatReservationGateway(cfg, logger)
	if err != nil {
		logger.Error("Failed to create seat reservation gateway", "ERROR", err)
		os.Exit(1)
	}
	defer closeSeats()

	var rateLimiter *httphandler.RateLimiterMiddleware
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Error("Failed to connect to Redis", "ERROR", err)
			os.Exit(1)
		}
		limiterRepo := redis.NewRateLimiterAdapter(rdb)
		defer func() {
			if err := limiterRepo.Close(); err != nil {
				logger.Warn("Failed to close Redis", "ERROR", err)
			}
		}()
		rateLimiter = httphandler.NewRateLimiterMiddleware(limiterRepo, cfg.RateLimit, logger)
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	}

	if cfg.JWT.JWTSecret == "" {
		logger.Warn("JWT secret is not set, /api/v1 is not authenticated")
	}

	// --- 4. Service Layer ---
	ticketService := app.NewTicketService(payments, seats, cfg.Ticketing, logger)

	// --- 5. HTTP Router ---
	router := httphandler.NewRouter(httphandler.RouterDeps{
		Service:     ticketService,
		Logger:      logger,
		RateLimiter: rateLimiter,
		JWTSecret:   cfg.JWT.JWTSecret,
	})

	// --- 6. HTTP Server ---
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return
	}

	logger.Info("Server exited properly")
}

func newPaymentGateway(cfg config.GatewayConfig, logger *slog.Logger) (ports.PaymentGateway, error) {
	switch cfg.Driver {
	case "http":
		if cfg.URL == "" {
			return nil, errors.New("gateways.payment.url is required for the http driver")
		}
		logger.Info("Payment gateway: http", "url", cfg.URL)
		return httpclient.NewPaymentClient(cfg.URL, cfg.Timeout()), nil
	case "log", "":
		logger.Warn("Payment gateway: log only, no account is charged")
		return mock.NewPaymentGateway(logger), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway driver %q", cfg.Driver)
	}
}

func newSeatReservationGateway(cfg *config.Config, logger *slog.Logger) (ports.SeatReservationGateway, func(), error) {
	gw := cfg.Gateways.SeatReservation
	switch gw.Driver {
	case "http":
		if gw.URL == "" {
			return nil, nil, errors.New("gateways.seat_reservation.url is required for the http driver")
		}
		logger.Info("Seat reservation gateway: http", "url", gw.URL)
		return httpclient.NewSeatReservationClient(gw.URL, gw.Timeout()), func() {}, nil
	case "kafka":
		brokers := strings.Split(cfg.Kafka.BootstrapServers, ",")
		publisher, err := kafka.NewSeatReservationPublisher(brokers, cfg.Kafka.SeatTopic, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Seat reservation gateway: kafka", "topic", cfg.Kafka.SeatTopic)
		return publisher, publisher.Close, nil
	case "log", "":
		logger.Warn("Seat reservation gateway: log only, no seats are booked")
		return mock.NewSeatReservationGateway(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown seat reservation gateway driver %q", gw.Driver)
	}
}
