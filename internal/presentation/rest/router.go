package rest

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig collects the HTTP surface of the service.
type RouterConfig struct {
	Health    *HealthHandler
	Detection *DetectionHandler
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	// RateLimit applies to the detection API only.
	RateLimit *PerClientRateLimiter
	Logger    *slog.Logger
}

// NewRouter builds the HTTP handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(mux)
	}
	if cfg.Detection != nil {
		cfg.Detection.RegisterRoutes(mux)
	}
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Build middleware chain (applied in reverse order).
	var h http.Handler = mux
	if cfg.RateLimit != nil {
		h = PerClientRateLimitMiddleware(cfg.RateLimit, "/healthz", "/readyz", "/metrics")(h)
	}
	h = LoggingMiddleware(cfg.Logger)(h)
	h = RecoveryMiddleware(cfg.Logger)(h)
	return otelhttp.NewHandler(h, "phishsense.http")
}
