// Package httpapi mounts the host bridge API on a Gin engine: middleware in
// a fixed order, operational endpoints (/health, /metrics, /swagger) and the
// versioned listing routes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-rental-core/internal/config"
	"github.com/tbourn/go-rental-core/internal/http/handlers"
	"github.com/tbourn/go-rental-core/internal/http/middleware"
)

const maxBodyBytes = 64 << 10

// IdempotencyStore is the persistence behind Idempotency-Key replays.
type IdempotencyStore interface {
	Lookup(ctx context.Context, deviceID, scope, key string, now time.Time) (resourceID string, status int, found bool, err error)
	Record(ctx context.Context, deviceID, scope, key, resourceID string, status int) error
}

// Deps are the handler collaborators plus the idempotency store. A nil
// Replays disables Idempotency-Key handling.
type Deps struct {
	handlers.Deps
	Replays IdempotencyStore
}

// RegisterRoutes installs middleware and routes on r.
//
// Middleware order:
//  1. otelgin
//  2. RequestID, Device
//  3. Logger, Recovery
//  4. body limit, gzip
//  5. Metrics
//  6. Idempotent (before the limiter so replays bypass it)
//  7. rate limiter
//  8. CORS
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := cfg.APIBasePath
	if base == "/" {
		base = ""
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.Device())
	r.Use(middleware.Logger(), middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))
	r.Use(middleware.Metrics())

	var lookup middleware.IdempotencyLookup
	if d.Replays != nil {
		d.Idempotency = d.Replays
		lookup = func(ctx context.Context, deviceID, scope, key string, now time.Time) (middleware.Replay, bool, error) {
			res, status, found, err := d.Replays.Lookup(ctx, deviceID, scope, key, now)
			return middleware.Replay{ResourceID: res, Status: status}, found, err
		}
	}
	r.Use(middleware.Idempotent(middleware.IdempotencyOptions{}, middleware.ScopeByRoute(map[string]string{
		base + "/listings/:id/comments": "comments:",
		base + "/favorites/:id/toggle":  "favs:",
	}), lookup))

	if cfg.RateRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByDeviceOrIP()).Handler())
	}
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(d.Deps)
	api := r.Group(base)
	{
		api.GET("/listings/:id/rating", h.GetRating)
		api.POST("/listings/:id/rating/reload", h.ReloadRating)
		api.POST("/listings/rating", h.GetRatings)

		api.GET("/listings/:id/comments", h.ListComments)
		api.POST("/listings/:id/comments", h.AddComment)

		api.GET("/favorites", h.ListFavorites)
		api.GET("/favorites/:id", h.GetFavorite)
		api.POST("/favorites/:id/toggle", h.ToggleFavorite)

		api.POST("/directions", h.Directions)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			middleware.DeviceIDHeader, middleware.HeaderIdempotencyKey, middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader, middleware.HeaderIdempotencyReplayed, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

// limitBody caps request bodies; reads past maxBytes fail and the handler
// answers 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
