package server

import (
	"context"
	"net/http"
	"time"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/handler"
	mw "bakerlane-api/internal/middleware"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Admin        service.AdminService
	Shop         service.ShopService
	Order        service.OrderService
	Review       service.ReviewService
	Subscription service.SubscriptionService
	Notification service.NotificationService
	ErrorLogs    handler.ErrorRecorder
}

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	services Services

	authHandler         *handler.AuthHandler
	adminHandler        *handler.AdminHandler
	shopHandler         *handler.ShopHandler
	orderHandler        *handler.OrderHandler
	reviewHandler       *handler.ReviewHandler
	subscriptionHandler *handler.SubscriptionHandler
	notificationHandler *handler.NotificationHandler
}

func NewServer(cfg *config.Config, logger *log.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(logger, services.ErrorLogs)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infoj(log.JSON{
				"msg":        "request",
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
				"remote_ip":  v.RemoteIP,
			})
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowCredentials: true,
	}))

	e.Static("/uploads", cfg.Storage.Dir)

	s := &Server{
		echo:     e,
		cfg:      cfg,
		services: services,

		authHandler:         handler.NewAuthHandler(services.Auth, cfg.Session),
		adminHandler:        handler.NewAdminHandler(services.Auth, services.Admin, services.Order, cfg.Session),
		shopHandler:         handler.NewShopHandler(services.Shop),
		orderHandler:        handler.NewOrderHandler(services.Order),
		reviewHandler:       handler.NewReviewHandler(services.Review),
		subscriptionHandler: handler.NewSubscriptionHandler(services.Subscription),
		notificationHandler: handler.NewNotificationHandler(services.Notification),
	}

	s.setupRoutes()
	return s
}

// authLimiter throttles credential and otp endpoints per client IP.
func authLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(6 * time.Second),
			Burst:     10,
			ExpiresIn: 15 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
		},
	})
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	session := mw.RequireSession(s.services.Auth)
	buyerOnly := mw.RequireKind(model.KindBuyer)
	sellerOnly := mw.RequireKind(model.KindSeller)
	limited := authLimiter()

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/logout", s.authHandler.Logout)
	auth.GET("/profile", s.authHandler.Profile, session)
	auth.PUT("/profile", s.authHandler.UpdateProfile, session)
	auth.PUT("/password", s.authHandler.UpdatePassword, session)
	auth.PUT("/address", s.authHandler.UpdateAddress, session, buyerOnly)
	auth.POST("/:kind/register", s.authHandler.Register)
	auth.POST("/:kind/login", s.authHandler.Login, limited)
	auth.POST("/:kind/otp", s.authHandler.SendOTP, limited)
	auth.POST("/:kind/otp/verify", s.authHandler.VerifyOTP, limited)

	notifications := api.Group("/notifications", session)
	notifications.GET("", s.notificationHandler.ListMine)
	notifications.PATCH("/:id/read", s.notificationHandler.MarkRead)

	// -------- catalog --------
	api.GET("/products/:id", s.shopHandler.GetProduct)
	api.GET("/products/:id/reviews", s.reviewHandler.GetProductReviews)
	api.GET("/shops/:id", s.shopHandler.GetShop)
	api.GET("/shops/:id/products", s.shopHandler.ListShopProducts)

	// -------- buyer --------
	orders := api.Group("/orders", session)
	orders.POST("", s.orderHandler.CreateOrder, buyerOnly)
	orders.GET("/me", s.orderHandler.GetMyOrders, buyerOnly)
	orders.GET("/:id", s.orderHandler.GetOrder)
	orders.POST("/:id/cancel", s.orderHandler.CancelOrder, buyerOnly)
	orders.DELETE("/:id", s.orderHandler.DeleteOrder)

	api.POST("/reviews", s.reviewHandler.AddReview, session, buyerOnly)

	// -------- seller --------
	seller := api.Group("/seller", session, sellerOnly)
	seller.GET("/shop", s.shopHandler.GetMyShop)
	seller.PUT("/shop", s.shopHandler.UpdateShop)
	seller.PATCH("/shop/active", s.shopHandler.ToggleShopActive)
	seller.GET("/orders", s.orderHandler.GetShopOrders)
	seller.GET("/orders/count", s.orderHandler.CountShopOrders)
	seller.PATCH("/orders/:id/status", s.orderHandler.UpdateShopOrderStatus)
	seller.PATCH("/orders/:id/price", s.orderHandler.UpdatePrice)
	seller.POST("/products", s.shopHandler.AddProduct)
	seller.GET("/products", s.shopHandler.ListMyProducts)
	seller.PUT("/products/:id", s.shopHandler.UpdateProduct)
	seller.DELETE("/products/:id", s.shopHandler.DeleteProduct)
	seller.POST("/products/:id/images", s.shopHandler.AddProductImages)
	seller.POST("/subscription", s.subscriptionHandler.CreateSubscription)
	seller.GET("/subscription", s.subscriptionHandler.GetMySubscription)

	// -------- billing webhooks --------
	api.POST("/billing/webhook", s.subscriptionHandler.BillingWebhook)

	// -------- admin --------
	admin := api.Group("/admin")
	admin.POST("/login", s.adminHandler.Login, limited)
	admin.POST("/logout", s.adminHandler.Logout)

	adminOnly := admin.Group("", mw.RequireAdmin(s.services.Auth))
	adminOnly.GET("/me", s.adminHandler.Me)
	adminOnly.GET("/buyers", s.adminHandler.ListBuyers)
	adminOnly.GET("/sellers", s.adminHandler.ListSellers)
	adminOnly.DELETE("/buyers/:id", s.adminHandler.DeleteBuyer)
	adminOnly.DELETE("/sellers/:id", s.adminHandler.DeleteSeller)
	adminOnly.PATCH("/sellers/:id/verify", s.adminHandler.VerifySeller)
	adminOnly.GET("/products", s.adminHandler.ListProducts)
	adminOnly.PATCH("/products/:id/toggle", s.adminHandler.ToggleProduct)
	adminOnly.PATCH("/orders/:id/status", s.adminHandler.UpdateOrderStatus)
	adminOnly.GET("/error-logs", s.adminHandler.ListErrorLogs)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
