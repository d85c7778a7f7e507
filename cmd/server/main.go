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

	"campusboard/internal/api/matcher"
	"campusboard/internal/api/storagegw"
	"campusboard/internal/config"
	"campusboard/internal/enrichment"
	httpapi "campusboard/internal/http"
	"campusboard/internal/http/handlers"
	"campusboard/internal/logger"
	"campusboard/internal/scheduler"
	"campusboard/internal/storage/postgres"
	"campusboard/internal/storage/redis"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting applications service",
		zap.String("log_level", cfg.LogLevel),
		zap.String("listen_addr", cfg.ListenAddr),
	)

	log.Info("connecting to PostgreSQL...")
	store, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer store.Close()

	log.Info("connecting to Redis...")
	cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer cache.Close()

	gateway := storagegw.New(cfg.StorageGatewayURL, cfg.StorageGatewayTimeout, log)
	matcherClient := matcher.New(cfg.MatcherBaseURL, cfg.MatcherTimeout, log)
	resolver := enrichment.New(gateway, cache, cfg.LogoBucket, cfg.AvatarBucket, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	refresher := scheduler.New(store, cache, matcherClient, cfg, log)
	go refresher.Start(ctx)

	router := httpapi.NewRouter(&handlers.Context{
		Store:    store,
		Cache:    cache,
		Resolver: resolver,
		Config:   cfg,
		Logger:   log,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server is running...", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped with error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
