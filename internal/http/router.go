// Package httpapi mounts the middleware chain and the routes of the
// presentation backend on a Gin engine.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mokayaj857/vireya/internal/app"
	"github.com/mokayaj857/vireya/internal/docs"
	"github.com/mokayaj857/vireya/internal/http/handlers"
	"github.com/mokayaj857/vireya/internal/http/middleware"
)

var corsHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey, "X-Request-ID"}

// RegisterRoutes installs middleware and every endpoint of a on r.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. AccessLog (scrubbed)
//  4. Recovery
//  5. body size limit
//  6. Metrics, /metrics
//  7. gzip
//  8. Idempotency validator (before rate limiting so replays bypass it)
//  9. rate limiters per IP and per session
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, a *app.App) {
	cfg := a.Config
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes()))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// websocket upgrades cannot be compressed; previews are already images
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/chat/ws$`, `/previews/`})))

	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, a.Idempotency.Lookup))
	// a NAT can hide several tabs behind one address, hence the looser IP bucket
	r.Use(middleware.NewRateLimiter("ip", cfg.RateRPS*4, cfg.RateBurst*4, middleware.KeyByIP()).Handler())
	r.Use(middleware.NewRateLimiter("session", cfg.RateRPS, cfg.RateBurst, middleware.KeyBySession()).Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Sessions:       a.Sessions,
		Subscriptions:  a.Subscriptions,
		Insights:       a.Insights,
		API:            a.API,
		Idempotency:    a.Idempotency,
		Previews:       a.Previews,
		Stream:         a.Hub,
		Topics:         a.Topics.Names(),
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/features", h.ListFeatures)
		api.GET("/languages", h.ListLanguages)
		api.GET("/previews/:token", h.GetPreview)

		// Upstream backend
		api.GET("/welcome", h.Welcome)
		api.GET("/analytics/summary", h.AnalyticsSummary)
		api.GET("/content", h.ContentList)
		api.GET("/overview", h.Overview)
		api.POST("/support", h.CreateSupportTicket)
	}

	s := api.Group("/sessions/:" + middleware.SessionParam)
	{
		s.GET("/shell", h.GetShell)
		s.POST("/shell/open", h.OpenFeature)
		s.POST("/shell/close", h.CloseFeature)
		s.POST("/shell/picker", h.TogglePicker)

		s.GET("/chat", h.GetChat)
		s.GET("/chat/messages", h.ListMessages)
		s.POST("/chat/messages", h.PostMessage)
		s.POST("/chat/topics/:topic/toggle", h.ToggleTopic)
		s.GET("/chat/subscription", h.ListSubscriptions)
		s.POST("/chat/subscription", h.Subscribe)
		s.GET("/chat/ws", h.ChatStream)

		s.GET("/preferences/sidebar", h.GetSidebar)
		s.PUT("/preferences/sidebar", h.PutSidebar)

		s.GET("/scan", h.GetScan)
		s.POST("/scan/file", h.SelectScanFile)
		s.DELETE("/scan/file", h.ClearScanFile)
		s.POST("/scan/submit", h.SubmitScan)
	}
}

// corsMiddleware allows any origin when allowed is empty, without
// credentials; otherwise only the listed origins.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Idempotency-Replayed", "Retry-After"},
		AllowCredentials: false,
		AllowWebSockets:  true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowed) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = allowed
	}
	return cors.New(cc)
}

// limitBody caps request bodies at maxBytes; reads past it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
