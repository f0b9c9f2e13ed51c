// Package main starts the in-memory GophTube development backend, setting
// up configuration, logging, storage, services, handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/config"
	"github.com/atinyakov/GophTube/internal/logger"
	"github.com/atinyakov/GophTube/internal/middleware"
	"github.com/atinyakov/GophTube/internal/repository"
	"github.com/atinyakov/GophTube/internal/server/handler/http"
	"github.com/atinyakov/GophTube/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// In-memory storage and business-logic services.
	store := repository.NewStore()
	tokens := service.NewTokenIssuer(options.JWTSecret, options.AccessTTL.Duration, options.RefreshTTL.Duration)
	authService := service.NewAuthService(store.Users, tokens, zapLogger)
	contentService := service.NewContentService(service.StoreTables(store), zapLogger)

	// Metrics registry shared by the middleware and /metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Handlers{
		Auth: &http.AuthHandler{
			AuthService:    authService,
			ChannelService: contentService,
			Logger:         zapLogger,
			SecureCookies:  options.TLS(),
		},
		Videos:    &http.VideoHandler{VideoService: contentService, Logger: zapLogger},
		Social:    &http.SocialHandler{SocialService: contentService, Logger: zapLogger},
		Playlists: &http.PlaylistHandler{PlaylistService: contentService, Logger: zapLogger},
	}, http.RouterOptions{
		Authenticator:  authService,
		Metrics:        middleware.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		var err error
		if options.TLS() {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
			err = server.ListenAndServeTLS(options.CertFile, options.KeyFile)
		} else {
			zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
