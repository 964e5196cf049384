package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/todoapp/todo-service/internal/api/handler"
	"github.com/todoapp/todo-service/internal/api/middleware"
	"github.com/todoapp/todo-service/internal/core/domain"
	"github.com/todoapp/todo-service/internal/core/ports"
)

// Dependencies are what the router needs from the composition root.
type Dependencies struct {
	Runner       ports.ScopeRunner
	Log          zerolog.Logger
	CookieName   string
	SecureCookie bool
	// Limiter throttles the credential endpoints. Nil disables throttling.
	Limiter middleware.Limiter
	// IPExtractor resolves client addresses. Nil uses the TCP peer address.
	IPExtractor echo.IPExtractor
	Checks      []handler.DependencyCheck
	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.CookieName == "" {
		deps.CookieName = domain.DefaultSessionCookieName
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.IPExtractor == nil {
		deps.IPExtractor = echo.ExtractIPDirect()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = deps.IPExtractor
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "todo",
		Registerer: deps.Registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Runner, deps.CookieName, deps.SecureCookie, deps.Log)
	todoHandler := handler.NewTodoHandler(deps.Runner)
	requireSession := middleware.SessionCookie(deps.CookieName)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/sign-up", authHandler.SignUp, middleware.RateLimit(deps.Limiter, "sign_up", deps.Log))
	auth.POST("/sign-in", authHandler.SignIn, middleware.RateLimit(deps.Limiter, "sign_in", deps.Log))
	auth.POST("/sign-out", authHandler.SignOut)
	auth.PUT("/password", authHandler.ChangePassword, requireSession)
	auth.PUT("/username", authHandler.UpdateUsername, requireSession)

	// --- Todo routes (session required) ---
	todos := e.Group("/todos", requireSession)
	todos.GET("", todoHandler.List)
	todos.POST("", todoHandler.Create)
	todos.PATCH("/bulk", todoHandler.BulkToggle)
	todos.PATCH("/:id", todoHandler.Toggle)
	todos.PUT("/:id", todoHandler.Update)
	todos.DELETE("/:id", todoHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
