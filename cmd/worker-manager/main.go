// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bike-recommender/internal/catalog"
	"bike-recommender/internal/common/camunda"
	"bike-recommender/internal/common/config"
	"bike-recommender/internal/common/database"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/common/observability"
	"bike-recommender/internal/matching"

	bc "bike-recommender/internal/workers/recommendation/build-criteria"
	fc "bike-recommender/internal/workers/recommendation/filter-catalog"
	fr "bike-recommender/internal/workers/recommendation/format-results"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("opentelemetry metrics disabled", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			zapLog.Warn("opentelemetry shutdown failed", zap.Error(err))
		}
	}()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Catalog backends: only what the configured source needs ---
	var backends catalog.Backends

	if cfg.Catalog.Source == config.SourcePostgres {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		backends.Postgres = pg.DB
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Catalog.Source == config.SourceElasticsearch {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		backends.Elasticsearch = esClient.Client
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Catalog.CacheTTL > 0 {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			// The cache is optional; loads fall through to the backend.
			zapLog.Warn("redis unreachable, catalog cache degraded", zap.Error(err))
		}
		defer rdb.Close()
		backends.Redis = rdb.Client
		zapLog.Info("Redis catalog cache enabled", zap.Duration("ttl", cfg.Catalog.CacheTTLDuration()))
	}

	source, err := catalog.New(cfg.Catalog, backends, log)
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}
	memo := catalog.NewMemo(source, cfg.Catalog.RefreshDuration())

	var catalogReady atomic.Bool
	go warmCatalog(memo, &catalogReady, zapLog)

	policy, err := matching.ParseUnparsablePolicy(cfg.Matching.UnparsableFields)
	if err != nil {
		zapLog.Fatal("invalid matching config", zap.Error(err))
	}

	// --- Register workers ---
	workers := camunda.NewWorkers(zeebeClient.Zeebe(), log)

	if config.IsWorkerEnabled(cfg, bc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, bc.TaskType)
		handler := bc.NewHandler(
			&bc.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			obs, log,
		)
		workers.Start(bc.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, fc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, fc.TaskType)
		handler := fc.NewHandler(
			&fc.Config{
				Timeout:      config.GetDuration(wcfg.Timeout),
				MaxResults:   cfg.Matching.MaxResults,
				Policy:       policy,
				CacheEnabled: backends.Redis != nil,
			},
			memo, obs, log,
		)
		workers.Start(fc.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, fr.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, fr.TaskType)
		handler := fr.NewHandler(
			&fr.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			obs, log,
		)
		workers.Start(fr.TaskType, wcfg, handler.Handle)
	}
	zapLog.Info("workers registered", zap.Int("count", workers.Count()))

	// --- Health & Metrics Server ---
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !catalogReady.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "catalog loading")
			return
		}
		if err := zeebeClient.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "broker unreachable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	http.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// warmCatalog loads the first snapshot so the first job does not pay for
// it, retrying until it succeeds.
func warmCatalog(memo *catalog.Memo, ready *atomic.Bool, log *zap.Logger) {
	err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		snap, err := memo.Load(ctx)
		if err != nil {
			return err
		}
		log.Info("catalog loaded",
			zap.String("source", snap.Source),
			zap.Int("records", snap.Len()),
			zap.Bool("fromCache", snap.FromCache),
		)
		return nil
	}, 8, 2*time.Second, log, "Catalog warm-up")
	if err != nil {
		log.Error("catalog warm-up gave up; filter jobs will load on demand", zap.Error(err))
	}
	// Jobs can still load on demand, so readiness does not wait for success.
	ready.Store(true)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
