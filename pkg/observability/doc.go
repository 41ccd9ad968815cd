// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including logrus
// setup, metrics collection, health checks, graceful shutdown, and
// distributed tracing integration.
//
// # Structured Logging
//
// Configure the global logger once at startup:
//
//	observability.SetupLogger("info", "json", os.Stdout)
//
// Request-scoped logging:
//
//	observability.FromContext(ctx).WithField("feed_id", id).Info("feed created")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.EventsRecordedTotal.WithLabelValues("play").Inc()
//
// Business metrics:
//
//	metrics.FeedsTotal.Set(float64(count))
//	metrics.VideosTotal.Set(float64(videoCount))
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	status := checker.Check(ctx)
//	fmt.Printf("Status: %s\n", status.Status)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
//		Enabled:        true,
//		ServiceName:    "reelit",
//		ServiceVersion: "1.0.0",
//		Endpoint:       "otel-collector:4317",
//	})
//	defer observability.ShutdownTracing(ctx, tp)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
