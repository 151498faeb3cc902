// internal/wire/wire.go
package wire

import (
	"net/http"
	"strings"
	"time"

	"kalamkart/internal/adaptor"
	"kalamkart/internal/usecase"
	"kalamkart/pkg/middleware"
	"kalamkart/pkg/policy"
	"kalamkart/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const limiterIdleTTL = 10 * time.Minute

// App holds the router and the stateful middleware the scheduler maintains
type App struct {
	Router  *chi.Mux
	Limiter *middleware.RateLimiter
}

// routes is what every wireX function needs
type routes struct {
	auth    func(http.Handler) http.Handler
	limit   func(http.Handler) http.Handler
	require func(policy.Capability) func(http.Handler) http.Handler
}

// Wiring builds handlers on top of the services and mounts every route
func Wiring(service *usecase.Service, tokens middleware.TokenParser, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)
	limiter := middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst, limiterIdleTTL)

	router := setupRouter(handler, tokens, limiter, config, logger)

	return &App{
		Router:  router,
		Limiter: limiter,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	tokens middleware.TokenParser,
	limiter *middleware.RateLimiter,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	var origins []string
	if config.App.FrontendURL != "" {
		origins = []string{strings.TrimRight(config.App.FrontendURL, "/")}
	}

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(origins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)

	rt := routes{
		auth:  middleware.Authenticate(tokens, logger),
		limit: limiter.Limit,
		require: func(c policy.Capability) func(http.Handler) http.Handler {
			return middleware.Require(c, logger)
		},
	}

	// Apply routes
	wireAuth(r, handler.Auth, rt)
	wireUser(r, handler.User, rt)
	wireCatalog(r, handler.Category, handler.Product, rt)
	wireShop(r, handler, rt)
	wireOrder(r, handler.Order, handler.Payment, rt)
	wireAdmin(r, handler, rt)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
