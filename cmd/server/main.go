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

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/apiclient"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/config"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/httpapi"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/hub"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/logger"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(log.Named("apiclient")),
	)

	h, err := hub.NewHub(ctx, client, cfg.SessionCacheSize, log.Named("session"))
	if err != nil {
		return fmt.Errorf("create hub: %w", err)
	}

	renderer, err := view.NewRenderer(client.BaseURL())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:      h,
			Renderer: renderer,
			Backend:  client,
			Logger:   log.Named("http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("shelf_api", client.BaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		h.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
