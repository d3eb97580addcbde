package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/catalog"
	"github.com/nmesfin/mesob/internal/config"
	"github.com/nmesfin/mesob/internal/database"
	"github.com/nmesfin/mesob/internal/httpx"
	ordersadapters "github.com/nmesfin/mesob/internal/orders/adapters"
	ordershttp "github.com/nmesfin/mesob/internal/orders/adapters/http"
	ordersmongo "github.com/nmesfin/mesob/internal/orders/adapters/mongo"
	ordersapp "github.com/nmesfin/mesob/internal/orders/app"
	ordersmetrics "github.com/nmesfin/mesob/internal/orders/metrics"
	"github.com/nmesfin/mesob/internal/realtime"
	"github.com/nmesfin/mesob/internal/telemetry"
	"github.com/nmesfin/mesob/internal/users"
	"github.com/nmesfin/mesob/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing && cfg.Telemetry.OTelEndpoint != "",
		EnableMetrics:  cfg.Telemetry.EnableMetrics && cfg.Telemetry.OTelEndpoint != "",
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			logger.Error("mongodb disconnect failed", "error", err)
		}
	}()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	meter := otel.Meter("mesob")

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpx.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	validate := validation.New()

	userStore := users.NewMongoStore(db)
	userService := users.NewService(userStore, tokens, logger)
	userHandler := users.NewHandler(userService, validate)

	menuCache := catalog.NewMenuCache(redisClient, cfg.Redis.MenuTTL)
	catalogStore := catalog.NewMongoStore(db)
	catalogService := catalog.NewService(catalogStore, menuCache, hub, logger)
	catalogHandler := catalog.NewHandler(catalogService, validate)

	orderRepo := ordersadapters.NewObservableRepository(ordersmongo.NewRepository(db), dbMetrics)
	customerDirectory := ordersadapters.NewCustomerDirectory(userService)
	orderService := ordersapp.NewService(orderRepo, catalogService, customerDirectory, hub, logger, orderMetrics)
	orderHandler := ordershttp.NewHandler(orderService, validate)

	limiter := auth.NewRateLimiter(cfg.Auth.RateRPS, cfg.Auth.RateBurst)

	router := chi.NewRouter()
	router.Use(withRecovery(logger))
	router.Use(withLogging(logger))
	router.Use(httpx.WithMetrics(httpMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), db); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	router.Get("/ws", hub.ServeWS)

	catalogHandler.RegisterPublic(router)

	router.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		userHandler.RegisterPublic(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(tokens.Authenticate)
		userHandler.RegisterProtected(r)
		catalogHandler.RegisterProtected(r)
		orderHandler.Register(r)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
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

func withLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration", time.Since(start),
			)
		})
	}
}

func withRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered", "error", rec)
					httpx.WriteMessage(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the middleware chain.
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
