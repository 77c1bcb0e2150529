package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/dnscache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"telegram-alerts-go/alert"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/cache/providers"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/config"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/football"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/httpserver"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/logger"
	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if _, err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		zap.S().Fatalw(alert.Prefix("server stopped"), "error", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	store, err := providers.New(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			zap.S().Warnw("store close", "error", err)
		}
	}()

	resolver := &dnscache.Resolver{}
	client := football.NewClient(cfg.Football, resolver)
	svc := football.NewService(store, client, cfg.Football.TTL,
		cache.WithPrefix(cfg.Store.Prefix),
		cache.WithTimeout(cfg.Store.Timeout))

	maxBody, err := cfg.HTTP.MaxBodySizeBytes()
	if err != nil {
		return err
	}
	api := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httpserver.NewRouter(svc, store, httpserver.Options{
			MaxBodySize:   int64(maxBody),
			GzipThreshold: cfg.HTTP.GzipThreshold,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	servers := []*http.Server{api}
	if cfg.HTTP.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:    cfg.HTTP.MetricsAddr,
			Handler: httpserver.NewMetricRouter(),
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		football.RefreshDNS(ctx, resolver, cfg.Football.DNSRefresh)
		return nil
	})
	for _, srv := range servers {
		g.Go(func() error {
			zap.S().Infow("starting server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		zap.S().Infow("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
		return shutdown(servers, cfg.HTTP.ShutdownTimeout)
	})

	return g.Wait()
}

func shutdown(servers []*http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
