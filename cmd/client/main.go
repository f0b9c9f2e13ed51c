// Package main is the GophTube terminal client: it restores the session,
// probes the backend and runs the interactive shell.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTube/internal/client/api"
	"github.com/atinyakov/GophTube/internal/client/session"
	"github.com/atinyakov/GophTube/internal/client/shell"
	"github.com/atinyakov/GophTube/internal/client/storage"
	"github.com/atinyakov/GophTube/internal/config"
	"github.com/atinyakov/GophTube/internal/logger"
)

var (
	version   string
	buildDate string
)

func main() {
	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if options.ShowVersion {
		fmt.Printf("GophTube Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()

	if err := run(options, log.Log); err != nil {
		log.Log.Error("client stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(options *config.ClientOptions, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiOpts := append(options.APIOptions(), api.WithLogger(log))
	if options.MetricsAddr != "" {
		metrics := api.NewMetrics()
		apiOpts = append(apiOpts, api.WithMetrics(metrics))
		stopMetrics := serveMetrics(options.MetricsAddr, metrics.Handler(), log)
		defer stopMetrics()
	}
	client, err := api.New(options.BaseURL, apiOpts...)
	if err != nil {
		return err
	}

	mgr := session.NewManager(client, log)
	if options.SessionFile != "" {
		store, err := storage.NewSessionStore(options.SessionFile, options.SessionSecret)
		if err != nil {
			return err
		}
		n, err := store.Load(client.Jar(), client.BaseURL())
		switch {
		case errors.Is(err, storage.ErrWrongBackend):
			log.Info("stored session ignored", zap.Error(err))
		case err != nil:
			log.Warn("stored session unreadable", zap.Error(err))
		default:
			log.Debug("session restored", zap.Int("cookies", n))
		}
		cancel := mgr.Subscribe(func(snap session.Snapshot) {
			persist(store, client, snap, log)
		})
		defer cancel()
	}

	mgr.Init(ctx)
	mgr.StartAutoRefresh(ctx, options.RefreshInterval.Duration)

	sh := shell.New(client, mgr, os.Stdin, os.Stdout, log)
	if options.Command != "" {
		sh.Exec(ctx, options.Command)
		return nil
	}
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// persist keeps the session file in step with the session state. The file
// survives an anonymous session whose credentials were never rejected, so
// a backend outage at startup does not sign the user out.
func persist(store *storage.SessionStore, client *api.Client, snap session.Snapshot, log *zap.Logger) {
	var err error
	switch {
	case snap.State == session.StateAuthenticated:
		err = store.Save(client.Jar(), client.BaseURL())
	case snap.Revoked():
		err = store.Clear()
	case snap.State == session.StateAnonymous:
		log.Info("session file kept", zap.Error(snap.Cause))
	}
	if err != nil {
		log.Warn("session file not updated", zap.Error(err))
	}
}

// serveMetrics exposes the client metrics and returns a function stopping
// the listener.
func serveMetrics(addr string, h http.Handler, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving client metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
