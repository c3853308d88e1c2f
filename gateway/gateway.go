// Package gateway is the REST surface of the ordering service.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/MaverickLook/Big-Bite/docs"
	"github.com/MaverickLook/Big-Bite/pkg/analytics"
	"github.com/MaverickLook/Big-Bite/pkg/auth"
	"github.com/MaverickLook/Big-Bite/pkg/catalog"
	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/metrics"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/MaverickLook/Big-Bite/pkg/order"
	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type OrderService interface {
	Create(ctx context.Context, actor auth.Identity, req order.CreateRequest) (*models.Order, error)
	Transition(ctx context.Context, actor auth.Identity, orderID string, status models.Status) (*models.Order, error)
	GetByID(ctx context.Context, actor auth.Identity, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, actor auth.Identity, userID string) ([]*models.Order, error)
	ListAll(ctx context.Context, actor auth.Identity) ([]*models.Order, error)
}

type CatalogService interface {
	List(ctx context.Context, q repository.FoodQuery) ([]*models.Food, error)
	Get(ctx context.Context, id string) (*models.Food, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, actor auth.Identity, in catalog.FoodInput) (*models.Food, error)
	Update(ctx context.Context, actor auth.Identity, id string, in catalog.FoodInput) (*models.Food, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

type AnalyticsService interface {
	Overview(ctx context.Context, actor auth.Identity, days int) (*analytics.Overview, error)
	BestSellers(ctx context.Context, actor auth.Identity, limit int) ([]analytics.ItemSales, error)
}

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

type HealthCheck func(ctx context.Context) error

// Services are the collaborators behind the routes. Audit, Metrics and
// Health are optional.
type Services struct {
	Orders    OrderService
	Catalog   CatalogService
	Analytics AnalyticsService
	Tokens    TokenVerifier
	Audit     AuditReader
	Metrics   *metrics.Metrics
	Health    map[string]HealthCheck
}

type Gateway struct {
	config   *config.Config
	logger   *zap.Logger
	router   *gin.Engine
	validate *validator.Validate
	services Services
	server   *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services Services) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(logger))
	if services.Metrics != nil {
		router.Use(metricsMiddleware(services.Metrics))
	}

	return &Gateway{
		config:   cfg,
		logger:   logger,
		router:   router,
		validate: validator.New(),
		services: services,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", g.health)
	if g.services.Metrics != nil {
		g.router.GET("/metrics", gin.WrapH(g.services.Metrics.Handler()))
	}

	api := g.router.Group("/api")
	{
		foods := api.Group("/foods")
		{
			foods.GET("", g.listFoods)
			foods.GET("/categories", g.listCategories)
			foods.GET("/:id", g.getFood)
			foods.POST("", g.authMiddleware(), g.createFood)
			foods.PUT("/:id", g.authMiddleware(), g.updateFood)
			foods.DELETE("/:id", g.authMiddleware(), g.deleteFood)
		}

		orders := api.Group("/orders", g.authMiddleware())
		{
			orders.POST("", g.createOrder)
			orders.GET("", g.listOrders)
			orders.GET("/user/:id", g.listUserOrders)
			orders.GET("/analytics/overview", g.analyticsOverview)
			orders.GET("/analytics/best-sellers", g.bestSellers)
			orders.GET("/:id", g.getOrder)
			orders.PUT("/:id/status", g.updateOrderStatus)
			if g.services.Audit != nil {
				orders.GET("/:id/history", g.orderHistory)
			}
		}
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) Start() error {
	addr := g.config.Gateway.Addr()
	g.server = &http.Server{
		Addr:         addr,
		Handler:      g.router,
		ReadTimeout:  g.config.Gateway.ReadTimeout,
		WriteTimeout: g.config.Gateway.WriteTimeout,
	}

	g.logger.Info("Gateway starting", zap.String("address", addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(gin.H, len(g.services.Health))
	for name, check := range g.services.Health {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
