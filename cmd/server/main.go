package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/cache"
	"flight-forecast-backend/internal/config"
	"flight-forecast-backend/internal/dataset"
	"flight-forecast-backend/internal/handler"
	"flight-forecast-backend/internal/logger"
	"flight-forecast-backend/internal/predictor"
	"flight-forecast-backend/internal/quotes"
	"flight-forecast-backend/internal/scheduler"
	"flight-forecast-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cacheProvider cache.Provider = cache.NewInMemoryProvider()
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rp, err := cache.NewRedisProvider(pingCtx, cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		cancel()
		if err != nil {
			lg.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			defer rp.Close()
			cacheProvider = rp
			lg.Info("redis cache connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	if mem, ok := cacheProvider.(*cache.InMemoryProvider); ok && cfg.CacheTTL > 0 {
		go func() {
			ticker := time.NewTicker(cfg.CacheTTL)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := mem.Purge(); n > 0 {
						lg.Debug("cache purged", zap.Int("expired", n))
					}
				}
			}
		}()
	}

	var quoteSource quotes.Source = quotes.NewSampleSource(lg)
	if cfg.QuoteServiceURL != "" {
		quoteSource = quotes.NewAggregator(lg, quotes.NewHTTPSource(cfg.QuoteServiceURL))
	}

	svc := service.New(service.Options{
		ModelDir: cfg.ModelDir,
		Dataset: &dataset.Builder{
			FaresPath: cfg.FaresPath,
			Synthetic: dataset.SyntheticOptions{Samples: cfg.SyntheticSamples, Seed: cfg.SyntheticSeed},
			Logger:    lg,
		},
		Train: predictor.Options{
			Trees:    cfg.ForestTrees,
			MaxDepth: cfg.ForestMaxDepth,
			Seed:     &cfg.ForestSeed,
		},
		Cache:        cacheProvider,
		CacheTTL:     cfg.CacheTTL,
		Quotes:       quoteSource,
		TrendWorkers: cfg.TrendWorkers,
		Logger:       lg,
	})
	if err := svc.Init(ctx); err != nil {
		lg.Fatal("model initialization failed", zap.Error(err))
	}

	if cfg.RetrainEnabled {
		job := func(ctx context.Context) error {
			_, err := svc.Retrain(ctx)
			if errors.Is(err, service.ErrRetrainRunning) {
				return nil
			}
			return err
		}
		daily, err := scheduler.NewDaily("retrain", cfg.RetrainTime, cfg.RetrainRetryCount, cfg.RetrainRetryInterval, job, lg)
		if err != nil {
			lg.Warn("retrain scheduler disabled", zap.Error(err))
		} else {
			daily.Start(ctx)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handler.Recovery(lg), handler.RequestLogger(lg))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(handler.RateLimit(cfg.RateLimitPerMin, lg))
	handler.New(svc, lg).Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
