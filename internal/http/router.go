package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dippreneurlab/new-salt/internal/config"
	"github.com/dippreneurlab/new-salt/internal/http/handler"
	httpmiddleware "github.com/dippreneurlab/new-salt/internal/http/middleware"
	"github.com/dippreneurlab/new-salt/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(
	cfg config.Config,
	auth *httpmiddleware.Auth,
	users *handler.Users,
	quotes *handler.Quotes,
	storage *handler.Storage,
	metadata *handler.Metadata,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authed := api.Group("", auth.Authenticate)
	{
		authed.GET("/metadata/pipeline", metadata.Pipeline)

		admin := authed.Group("/users", auth.RequireAdmin)
		{
			admin.GET("", users.List)
			admin.POST("", users.Create)
			admin.PUT("", users.UpdateRole)
			admin.DELETE("", users.Delete)
		}
		authed.POST("/setRole", auth.RequireAdmin, users.SetRole)

		authed.GET("/quotes", quotes.List)
		authed.PUT("/quotes", quotes.Replace)
		authed.GET("/quotes/:id", quotes.Get)
		authed.PUT("/quotes/:id", quotes.Upsert)
		authed.DELETE("/quotes/:id", quotes.Delete)

		entry := authed.Group("/storage/:key")
		{
			entry.GET("", storage.Get)
			entry.PUT("", storage.Set)
			entry.DELETE("", storage.Delete)
		}
	}

	return r
}
