package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swagpaypal/backend/internal/infrastructure/logger"
	"github.com/swagpaypal/backend/internal/interfaces/http/handler"
	"github.com/swagpaypal/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Options configures the HTTP engine
type Options struct {
	ServiceName    string
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	// Meter records HTTP server metrics; nil disables them
	Meter metric.Meter
	// Metrics serves /metrics when the prometheus exporter is active
	Metrics http.Handler
	Auth    middleware.TokenValidator
	Logger  *zap.Logger
}

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	Webhook   *handler.WebhookHandler
	Sync      *handler.SyncHandler
	Lifecycle *handler.LifecycleHandler
	System    *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack and all routes.
//
// Middleware order: request id, tracing, span enrichment, access log, recovery,
// security headers, CORS, metrics, body limit.
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			return nil, fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(opts.ServiceName))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.GinMiddleware(opts.Logger))
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(opts.CORS))
	if opts.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, fmt.Errorf("create http metrics: %w", err)
		}
		engine.Use(httpMetrics)
	}
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	routes := paypalRoutes(h, middleware.AdminAuth(opts.Auth))
	routes.Mount(engine)
	opts.Logger.Debug("Routes mounted", zap.Strings("routes", routes.Paths()))

	return engine, nil
}

// paypalRoutes lists the /_action/paypal endpoints. Webhook execution is
// authenticated by its signature; everything else requires an admin token.
func paypalRoutes(h Handlers, adminAuth gin.HandlerFunc) ActionGroup {
	return ActionGroup{
		Prefix: "/_action/paypal",
		Guard:  adminAuth,
		Routes: []Route{
			{Method: http.MethodPost, Path: "/izettle/webhook/execute/:salesChannelId", Handler: h.Webhook.Execute},
			{Method: http.MethodPost, Path: "/izettle/webhook/registration/:salesChannelId", Handler: h.Webhook.Register, Admin: true},
			{Method: http.MethodDelete, Path: "/izettle/webhook/registration/:salesChannelId", Handler: h.Webhook.Unregister, Admin: true},
			{Method: http.MethodPost, Path: "/izettle/sync/:salesChannelId/inventory", Handler: h.Sync.SyncInventory, Admin: true},
			{Method: http.MethodPost, Path: "/lifecycle/activate", Handler: h.Lifecycle.Activate, Admin: true},
			{Method: http.MethodPost, Path: "/lifecycle/deactivate", Handler: h.Lifecycle.Deactivate, Admin: true},
		},
	}
}
