package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/crm-gateway/internal/apperr"
	"github.com/crmkit/crm-gateway/internal/config"
	"github.com/crmkit/crm-gateway/internal/http/middleware"
	"github.com/crmkit/crm-gateway/internal/logger"
	"github.com/crmkit/crm-gateway/internal/metrics"
	"github.com/crmkit/crm-gateway/internal/repository"
	"github.com/crmkit/crm-gateway/internal/token"
)

type Server struct{ e *echo.Echo }

// Deps are the collaborators behind the route handlers. Tests swap the
// repositories for in-memory fakes.
type Deps struct {
	Users        repository.UsersRepository
	Customers    repository.CustomersRepository
	Interactions repository.InteractionsRepository
	Tokens       *token.Manager
	Redis        *redis.Client
	BcryptCost   int
	RateLimit    config.RateLimitConfig
}

func NewServer(cfg config.Config, db *sqlx.DB, rds *redis.Client) *Server {
	deps := Deps{
		Users:        repository.NewUsersRepository(db),
		Customers:    repository.NewCustomersRepository(db),
		Interactions: repository.NewInteractionsRepository(db),
		Tokens:       token.NewManager(cfg.Auth.JWTSecret),
		Redis:        rds,
		BcryptCost:   cfg.Auth.BcryptCost,
		RateLimit:    cfg.RateLimit,
	}

	return &Server{e: NewRouter(deps)}
}

var registerMetricsOnce sync.Once

// NewRouter wires middlewares and routes onto a fresh echo instance.
func NewRouter(d Deps) *echo.Echo {
	if d.BcryptCost <= 0 {
		d.BcryptCost = bcrypt.DefaultCost
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorEnvelopeHandler
	e.Use(echoMid.Recover(), middleware.RequestID(), metricsMiddleware)

	registerMetricsOnce.Do(func() {
		metrics.MustRegister(prometheus.DefaultRegisterer)
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.TokenMiddleware(d.Tokens)
	authRL := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          d.Redis,
		RPS:            d.RateLimit.AuthRPS,
		KeyPrefix:      "rl:ip:",
		Window:         time.Second,
		Key:            middleware.KeyByIP,
		RetryAfterHint: true,
	})
	apiRL := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:     d.Redis,
		RPS:       d.RateLimit.APIRPS,
		KeyPrefix: "rl:user:",
		Window:    time.Second,
		Key:       middleware.KeyByUser,
	})

	// routes
	authGroup := e.Group("/api/auth", authRL)
	authGroup.POST("/register", registerHandler(d.Users, d.Tokens, d.BcryptCost))
	authGroup.POST("/login", loginHandler(d.Users, d.Tokens))

	api := e.Group("/api", authMW, apiRL)
	api.GET("/customers", listCustomersHandler(d.Customers))
	api.POST("/customers", createCustomerHandler(d.Customers))
	api.GET("/customers/:id", getCustomerHandler(d.Customers))
	api.PUT("/customers/:id", updateCustomerHandler(d.Customers))
	api.DELETE("/customers/:id", deleteCustomerHandler(d.Customers))
	api.POST("/interactions", createInteractionHandler(d.Interactions))
	api.GET("/interactions/customer/:customerId", listInteractionsHandler(d.Interactions))

	return e
}

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// errorEnvelopeHandler renders every failure as {"error":{"message","status"}}.
func errorEnvelopeHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal Server Error"

	var ae *apperr.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		status = ae.Status
		message = ae.Message
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	_ = c.JSON(status, map[string]any{
		"error": map[string]any{
			"message": message,
			"status":  status,
		},
	})
}

func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			c.Error(err)
		}
		metrics.RequestsTotal.WithLabelValues(c.Path(), fmt.Sprint(c.Response().Status)).Inc()
		return nil
	}
}
