package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jobzen/identity-service/internal/api/handler"
	"github.com/jobzen/identity-service/internal/api/middleware"
	"github.com/jobzen/identity-service/internal/core/domain"
	"github.com/jobzen/identity-service/internal/core/ports"
	"github.com/jobzen/identity-service/internal/core/service"
	mongodb "github.com/jobzen/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/jobzen/identity-service/internal/infrastructure/db/redis"
	"github.com/jobzen/identity-service/internal/infrastructure/oauth"
)

// RouterDeps carries everything the router needs to assemble the service
// graph. All configuration is injected; nothing is read from the
// environment here.
type RouterDeps struct {
	DB          *mongo.Database
	Redis       *redis.Client
	Notifier    ports.Notifier
	Providers   []oauth.Provider
	Audit       ports.AuditSink
	JWTSecret   string
	TokenTTL    time.Duration
	FrontendURL string
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	tokens := service.NewTokenIssuer(deps.JWTSecret, deps.TokenTTL)
	guard := redisdb.NewResetTokenGuard(deps.Redis)

	authService := service.NewAuthService(userRepo, tokens, deps.Notifier, guard, deps.Audit, deps.Logger)
	userService := service.NewUserService(userRepo, deps.Audit, deps.Logger)

	authHandler := handler.NewAuthHandler(authService, deps.FrontendURL)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	for _, p := range deps.Providers {
		e.GET("/auth/"+p.Name(), authHandler.OAuthRedirect(p))
		e.GET("/auth/"+p.Name()+"/callback", authHandler.OAuthCallback(p))
	}

	// --- User routes (authenticated) ---
	users := e.Group("/users", authMiddleware)
	users.GET("/me", userHandler.Me)
	users.PATCH("/profile", userHandler.UpdateProfile)
	users.PATCH("/complete-profile", userHandler.CompleteProfile)

	managed := users.Group("/managed", middleware.RequireRole(domain.RoleEmployer))
	managed.POST("", userHandler.CreateManaged)
	managed.GET("", userHandler.ListManaged)
	managed.DELETE("/:id", userHandler.DeleteManaged)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
