package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Hesham-Youssef/StockManager/internal/api/handlers"
	"github.com/Hesham-Youssef/StockManager/internal/api/middleware"
	"github.com/Hesham-Youssef/StockManager/internal/api/routes"
	"github.com/Hesham-Youssef/StockManager/internal/domain/market"
	"github.com/Hesham-Youssef/StockManager/internal/infra/database/memory"
	"github.com/Hesham-Youssef/StockManager/internal/infra/database/postgres"
	"github.com/Hesham-Youssef/StockManager/internal/notify"
	"github.com/Hesham-Youssef/StockManager/internal/pkg/config"
	"github.com/Hesham-Youssef/StockManager/internal/pkg/logger"
	authservice "github.com/Hesham-Youssef/StockManager/internal/service/auth"
	exchangeservice "github.com/Hesham-Youssef/StockManager/internal/service/exchange"
	stockservice "github.com/Hesham-Youssef/StockManager/internal/service/stock"
)

const (
	serviceName    = "stockmanager-api"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("version", serviceVersion).
		Msg("🚀 Starting StockManager API Server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Select the backing store
	var store market.Store
	switch cfg.Database.Driver {
	case "postgres":
		dbPool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()
		store = postgres.NewStore(dbPool)
	case "memory":
		store = memory.NewStore()
		log.Info().Msg("✅ In-memory store initialized")
	default:
		log.Fatal().Str("driver", cfg.Database.Driver).Msg("Unknown database driver")
	}

	// Notification sinks
	hub := notify.NewHub()
	sinks := notify.Fanout{hub}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		sinks = append(sinks, notify.NewRedisSink(redisClient, cfg.Redis.ChannelPrefix))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("✅ Redis connected")
	}

	// Initialize services
	stockSvc := stockservice.NewService(store, cfg.Market.LiveThreshold)
	exchangeSvc := exchangeservice.NewService(store, cfg.Market.LiveThreshold)
	authSvc := authservice.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.AllowAdminSignup)

	// Initialize handlers
	stocksHandler := handlers.NewStocksHandler(stockSvc, sinks)
	exchangesHandler := handlers.NewExchangesHandler(exchangeSvc, sinks)
	authHandler := handlers.NewAuthHandler(authSvc)

	// Create gorilla/mux router
	httpRouter := mux.NewRouter()
	httpRouter.Use(middleware.RequestID)

	loggingCfg := middleware.LoggingConfig{SkipPaths: []string{"/health"}}
	if cfg.Logging.FileEnabled {
		accessLogger := logger.NewAccessLogger(cfg.Logging.FilePath, cfg.Logging.RotationSize, cfg.Logging.RetentionDays)
		loggingCfg.AccessLogger = &accessLogger
	}
	httpRouter.Use(middleware.Logging(loggingCfg))

	httpRouter.HandleFunc("/health", handlers.Health).Methods("GET")

	routes.RegisterAuthRoutes(httpRouter, authHandler)
	routes.RegisterStocksRoutes(httpRouter, stocksHandler, authSvc)
	routes.RegisterExchangesRoutes(httpRouter, exchangesHandler, authSvc)
	routes.RegisterWebsocketRoutes(httpRouter, hub)

	log.Info().Msg("✅ All routes registered (Auth, Stocks, Exchanges, Websocket)")

	// CORS configuration
	allowedOrigins := gorillaHandlers.AllowedOrigins(cfg.Server.CORSOrigins)
	allowedMethods := gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	allowedHeaders := gorillaHandlers.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type"})
	allowCredentials := gorillaHandlers.AllowCredentials()
	handler := gorillaHandlers.CORS(allowedOrigins, allowedMethods, allowedHeaders, allowCredentials)(httpRouter)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("address", addr).
			Msg("🎯 API Server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("🛑 Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("👋 StockManager API Server stopped")
}
