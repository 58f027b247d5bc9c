package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/polkiloo/fulfillment/internal/config"
	"github.com/polkiloo/fulfillment/internal/observability"
	"github.com/polkiloo/fulfillment/internal/server/http/handlers"
	"github.com/polkiloo/fulfillment/internal/server/http/middleware"
	redisstore "github.com/polkiloo/fulfillment/internal/storage/redis"
)

// Params lists router dependencies. Idempotency is nil when Redis is not configured.
type Params struct {
	fx.In

	Facade      handlers.FulfillmentFacade
	Tokens      middleware.TokenParser
	Metrics     *observability.Metrics
	Idempotency *redisstore.IdempotencyStore `optional:"true"`
	Config      *config.Config
	Logger      *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(observability.ServiceName))
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	if len(p.Config.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:  p.Config.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyHeader},
			ExposeHeaders: []string{"Content-Length", middleware.ReplayedHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	shipmentHandler := handlers.NewShipmentHandler(p.Facade)
	inventoryHandler := handlers.NewInventoryHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	idempotent := func(c *gin.Context) { c.Next() }
	if p.Idempotency != nil {
		idempotent = middleware.Idempotency(p.Idempotency, p.Logger)
	}

	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")

	orders := api.Group("/orders")
	orders.POST("", idempotent, orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/user/:userId", orderHandler.ListByUser)
	orders.GET("/status/:status", orderHandler.ListByStatus)
	orders.PUT("/:id/status/:next", orderHandler.AdvanceStatus)
	orders.POST("/:id/cancel", idempotent, orderHandler.Cancel)

	payments := api.Group("/payments")
	payments.POST("/process", idempotent, paymentHandler.Process)
	payments.GET("/by-order/:orderId", paymentHandler.ByOrder)

	shipments := api.Group("/shipments")
	shipments.GET("/by-order/:orderId", shipmentHandler.ByOrder)

	inventory := api.Group("/inventory")
	inventory.GET("/:productId", inventoryHandler.Get)
	inventory.GET("/low-stock/:threshold", inventoryHandler.LowStock)

	admin := inventory.Group("")
	admin.Use(middleware.AdminRequired(p.Tokens))
	admin.POST("", inventoryHandler.Initialize)
	admin.PUT("/:productId", inventoryHandler.Update)

	return engine
}
