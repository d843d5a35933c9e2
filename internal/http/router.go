package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/userhub/internal/accounts"
	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Accounts *accounts.Service
	Cache    *cache.Cache

	// optional
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Limiter  middlewares.Limiter
	Checks   map[string]handlers.Pinger

	ShuttingDown     func() bool
	SessionHeartbeat time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Cache == nil {
		d.Cache = cache.New(d.Config.UsersCacheTTL)
	}
	if d.Limiter == nil {
		d.Limiter = middlewares.NewMemoryLimiter(d.Config.AuthRateLimit, d.Config.AuthRateWindow)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.Config.OTelServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	var onLimited func(string)
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		onLimited = d.Prom.RateLimited
	}

	// health
	h := handlers.NewHealthHandler(d.Checks, d.ShuttingDown)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// wire up handlers
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Cache)
	usersHandler := handlers.NewUsersHandler(d.Accounts, d.Cache)

	var observer handlers.StreamObserver
	if d.Prom != nil {
		observer = d.Prom
	}
	sessionHandler := handlers.NewSessionHandler(d.Accounts.Session(), observer, d.SessionHeartbeat)
	dashboardHandler := handlers.NewDashboardHandler(d.Accounts)

	limit := func(name string) gin.HandlerFunc {
		return middlewares.RateLimit(d.Limiter, name, middlewares.KeyByIP, onLimited)
	}

	authGroup := r.Group("/auth")
	authGroup.POST("/register", limit("register"), authHandler.Register)
	authGroup.POST("/login", limit("login"), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	r.GET("/session", sessionHandler.Current)
	r.GET("/session/stream", sessionHandler.Stream)

	r.GET("/users", usersHandler.ListUsers)
	r.PATCH("/users/:id", usersHandler.UpdateUser)
	r.DELETE("/users/:id", usersHandler.DeleteUser)

	r.GET("/dashboard/stats", dashboardHandler.Stats)

	return r
}
