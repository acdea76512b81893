package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nebula-retail/storefront/internal/cart"
	"github.com/nebula-retail/storefront/internal/catalog"
	"github.com/nebula-retail/storefront/internal/checkout"
	"github.com/nebula-retail/storefront/internal/config"
	"github.com/nebula-retail/storefront/internal/events"
	"github.com/nebula-retail/storefront/internal/health"
	"github.com/nebula-retail/storefront/internal/obs"
	"github.com/nebula-retail/storefront/internal/order"
	"github.com/nebula-retail/storefront/internal/ratelimit"
	"github.com/nebula-retail/storefront/internal/security"
	"github.com/nebula-retail/storefront/internal/session"
	"github.com/nebula-retail/storefront/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "storefront")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	productsClient := upstream.New("products", cfg.BaseURL("products", config.ServerSide), cfg.UpstreamTimeout)
	ordersClient := upstream.New("orders", cfg.BaseURL("orders", config.ServerSide), cfg.UpstreamTimeout)
	inventoryClient := upstream.New("inventory", cfg.BaseURL("inventory", config.ServerSide), cfg.UpstreamTimeout)
	for name, client := range map[string]*upstream.Client{
		"products":  productsClient,
		"orders":    ordersClient,
		"inventory": inventoryClient,
	} {
		if !client.Configured() {
			logger.Warn().Str("service", name).Msg("service base url not configured")
		}
	}

	sessions := session.NewManager(cfg.SessionTTL)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if evicted := sessions.Sweep(); evicted > 0 {
				logger.Debug().Int("evicted", evicted).Msg("session sweep")
			}
		}
	}()

	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger},
		events.MetricsNotifier{},
	}}

	catalogSvc := &catalog.Service{Products: productsClient, Inventory: inventoryClient}
	catalogHandler := &catalog.Handler{Svc: catalogSvc}

	cartHandler := &cart.Handler{
		Carts:     sessions,
		Catalog:   catalogSvc,
		Events:    bus,
		SessionID: session.FromContext,
	}

	checkoutHandler := &checkout.Handler{
		Svc:       checkout.NewService(ordersClient, bus),
		Carts:     sessions,
		SessionID: session.FromContext,
	}

	orderHandler := &order.Handler{Svc: &order.Service{Orders: ordersClient}}
	configHandler := &config.Handler{Cfg: cfg}

	limiter, err := ratelimit.New(cfg.CheckoutRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Str("rate", cfg.CheckoutRateLimit).Msg("parse checkout rate limit")
	}
	limiter.OnError = func(err error) {
		logger.Error().Err(err).Msg("rate limiter")
	}

	sessionMw := session.Middleware{
		CookieName: cfg.SessionCookieName,
		Secure:     cfg.AppEnv == "production",
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     envBool("SECURE_HEADERS_ENABLED", true),
		EnableHSTS: envBool("SECURE_HSTS_ENABLED", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:         readinessChecker{products: productsClient, orders: ordersClient},
		ProductsTimeout: envDurationMillis("HEALTH_READY_PRODUCTS_TIMEOUT_MS", 500),
		OrdersTimeout:   envDurationMillis("HEALTH_READY_ORDERS_TIMEOUT_MS", 500),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/config", configHandler.Services)
		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{id}", catalogHandler.ProductDetail)

		v.Group(func(s chi.Router) {
			s.Use(sessionMw.Handler)
			s.Get("/cart", cartHandler.Get)
			s.Delete("/cart", cartHandler.Clear)
			s.Group(func(m chi.Router) {
				m.Use(limiter.Middleware)
				m.Post("/cart/items", cartHandler.AddItem)
				m.Patch("/cart/items/{productId}", cartHandler.UpdateItem)
				m.Delete("/cart/items/{productId}", cartHandler.RemoveItem)
				m.Post("/checkout", checkoutHandler.Checkout)
			})
			s.Get("/orders", orderHandler.List)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	products *upstream.Client
	orders   *upstream.Client
}

func (c readinessChecker) PingProducts(ctx context.Context, timeout time.Duration) error {
	if c.products == nil {
		return errors.New("products client not configured")
	}
	return c.products.Ping(ctx, timeout)
}

func (c readinessChecker) PingOrders(ctx context.Context, timeout time.Duration) error {
	if c.orders == nil {
		return errors.New("orders client not configured")
	}
	return c.orders.Ping(ctx, timeout)
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
