package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/reelworks/reelit/pkg/analytics"
	"github.com/reelworks/reelit/pkg/api"
	"github.com/reelworks/reelit/pkg/assets"
	"github.com/reelworks/reelit/pkg/config"
	"github.com/reelworks/reelit/pkg/feeds"
	"github.com/reelworks/reelit/pkg/observability"
	"github.com/reelworks/reelit/pkg/products"
	"github.com/reelworks/reelit/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address override (host:port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	observability.SetupLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stdout)

	ctx := context.Background()

	db, err := storage.Open(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}
	logrus.WithField("driver", cfg.Database.Driver).Info("database ready")

	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize tracing")
	}

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	cache, redisClient := buildCache(cfg.Cache)
	if metrics != nil {
		cache = feeds.NewInstrumentedCache(cache, metrics.CacheHitsTotal, metrics.CacheMissesTotal)
	}

	library := assets.NewLibrary(db)
	catalog := buildCatalog(cfg.Catalog)
	repo := feeds.NewRepository(db, cache, library)

	server := api.NewServer(api.Options{
		Feeds:              repo,
		Videos:             library,
		Events:             analytics.NewEventStore(db, library),
		Stats:              analytics.NewService(db, library),
		Tagger:             products.NewTagger(db, catalog),
		Health:             observability.NewHealthChecker(db.DB, redisClient),
		Metrics:            metrics,
		Registry:           registry,
		AdminToken:         cfg.Server.AdminToken,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Tracing:            cfg.Observability.OTelEnabled,
		OnScrape:           scrapeRefresher(metrics, db, repo, library),
	})
	if cfg.Server.AdminToken == "" {
		logrus.Warn("no admin token configured, admin API is disabled")
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = cfg.Server.Host + ":" + cfg.Server.Port
	}
	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	scheduler := startWarmScheduler(cfg.Cache.WarmSchedule, repo)

	sm := observability.NewShutdownManager(httpServer, cfg.Server.ShutdownTimeout)
	if scheduler != nil {
		sm.RegisterShutdownFunc(func(ctx context.Context) error {
			stopCtx := scheduler.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		})
	}
	if redisClient != nil {
		sm.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}
	if tp != nil {
		sm.RegisterShutdownFunc(func(ctx context.Context) error {
			return observability.ShutdownTracing(ctx, tp)
		})
	}

	go func() {
		logrus.WithField("addr", listenAddr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	if err := sm.WaitForShutdown(); err != nil {
		logrus.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
	logrus.Info("shutdown complete")
}

// buildCache selects the feed-list cache backend. The redis client is also
// returned so health checks and shutdown can reach it; it is nil for the
// in-process backends.
func buildCache(cfg config.CacheConfig) (feeds.Cache, *redis.Client) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// The cache degrades to misses while redis is down, so an
			// unreachable server at boot is not fatal.
			logrus.WithError(err).Warn("redis unreachable, cache will serve misses until it recovers")
		}
		logrus.WithField("addr", cfg.RedisAddr).Info("using redis cache")
		return feeds.NewRedisCache(client), client
	case "memory":
		logrus.WithField("size", cfg.MemorySize).Info("using in-process cache")
		return feeds.NewMemoryCache(cfg.MemorySize, feeds.FeedListTTL), nil
	default:
		logrus.Info("feed list caching disabled")
		return feeds.NopCache{}, nil
	}
}

// scrapeRefresher returns the hook that freshens pool-stat and entity-count
// gauges right before each /metrics response. Nil when metrics are disabled.
func scrapeRefresher(metrics *observability.Metrics, db *sqlx.DB, repo *feeds.Repository, library *assets.Library) func() {
	if metrics == nil {
		return nil
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		metrics.ObserveDBStats(db.DB.Stats())
		if n, err := repo.CountFeeds(ctx); err == nil {
			metrics.FeedsTotal.Set(float64(n))
		}
		if n, err := library.Count(ctx); err == nil {
			metrics.VideosTotal.Set(float64(n))
		}
	}
}

// buildCatalog returns the static product catalog, or nil when no products
// are configured.
func buildCatalog(list []products.Product) products.Catalog {
	if len(list) == 0 {
		return nil
	}
	logrus.WithField("products", len(list)).Info("loaded static product catalog")
	return products.NewStaticCatalog(list)
}

// startWarmScheduler runs periodic cache warming when a schedule is set.
func startWarmScheduler(schedule string, repo *feeds.Repository) *cron.Cron {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		defer observability.RecoverPanic("cache warm")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := repo.WarmCache(ctx); err != nil {
			logrus.WithError(err).Warn("cache warm failed")
		}
	})
	if err != nil {
		logrus.WithError(err).WithField("schedule", schedule).Fatal("invalid cache warm schedule")
	}
	c.Start()
	logrus.WithField("schedule", schedule).Info("cache warm scheduler started")
	return c
}
