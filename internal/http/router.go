package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/avelasq/authgate/internal/cache"
	"github.com/avelasq/authgate/internal/config"
	"github.com/avelasq/authgate/internal/http/handlers"
	"github.com/avelasq/authgate/internal/http/middlewares"
	"github.com/avelasq/authgate/internal/observability"
)

// Deps carries everything the router wires into handlers. Fields left nil
// disable the matching routes, which keeps tests small.
type Deps struct {
	Config config.Config
	Logger *slog.Logger
	Prom   *observability.Prom

	Accounts handlers.AccountsService
	Queue    handlers.WelcomeEnqueuer
	Users    handlers.UserLister
	Media    handlers.MediaStore
	Presign  handlers.MediaPresigner

	PingDB    handlers.PingFunc
	PingRedis handlers.PingFunc
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Config.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(deps.Config.MaxBodyBytes))
	r.Use(otelgin.Middleware("authgate"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// health
	health := &handlers.HealthHandler{
		PingDB:    deps.PingDB,
		PingRedis: deps.PingRedis,
	}
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// credential routes
	if deps.Accounts != nil {
		auth := &handlers.AuthHandler{
			Accounts: deps.Accounts,
			Queue:    deps.Queue,
			Logger:   deps.Logger,
		}

		jsonOnly := middlewares.RequireJSON()
		r.POST("/register", jsonOnly, auth.Register)
		r.POST("/login", jsonOnly, auth.Login)
	}

	// user listing
	if deps.Users != nil {
		usersHandler := &handlers.UsersHandler{
			Users:  deps.Users,
			Cache:  cache.New(30 * time.Second),
			Logger: deps.Logger,
		}
		r.GET("/users", usersHandler.List)
	}

	// media slots
	if deps.Media != nil && deps.Presign != nil {
		mediaHandler := &handlers.MediaHandler{
			Store:   deps.Media,
			Presign: deps.Presign,
			Logger:  deps.Logger,
		}
		r.POST("/users/:id/media/:kind/upload-url", mediaHandler.UploadURL)
		r.GET("/users/:id/media/:kind", mediaHandler.DownloadURL)
	}

	return r
}
