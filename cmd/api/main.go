package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakerlane-api/internal/client"
	"bakerlane-api/internal/config"
	"bakerlane-api/internal/logger"
	"bakerlane-api/internal/repository"
	"bakerlane-api/internal/server"
	"bakerlane-api/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.New(cfg.Log)

	db, err := client.InitDB(cfg.Database)
	if err != nil {
		lg.Fatalj(log.JSON{"msg": "open database", "error": err.Error()})
	}

	billingClient, err := client.NewBillingClient(cfg)
	if err != nil {
		lg.Fatalj(log.JSON{"msg": "billing client", "error": err.Error()})
	}
	storageClient, err := client.NewLocalStorageClient(&cfg.Storage)
	if err != nil {
		lg.Fatalj(log.JSON{"msg": "storage client", "error": err.Error()})
	}
	mailClient := client.NewLogMailClient(cfg.Notification.From, lg)
	hasher := client.NewPasswordHasher(0)

	contactPolicy, err := service.ParseContactPolicy(cfg.Order.ContactRevealFrom)
	if err != nil {
		lg.Fatalj(log.JSON{"msg": "order config", "error": err.Error()})
	}

	identityRepo := repository.NewIdentityRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	errorLogRepo := repository.NewErrorLogRepository(db)

	notificationService := service.NewNotificationService(
		notificationRepo,
		mailClient,
		lg,
		cfg.Notification.Workers,
		cfg.Notification.QueueSize,
	)
	notificationService.Start()

	authService := service.NewAuthService(
		db,
		identityRepo,
		sessionRepo,
		shopRepo,
		adminRepo,
		otpRepo,
		hasher,
		notificationService,
		cfg.Session,
		lg,
		time.Now,
	)
	if err := authService.SeedAdmin(context.Background(), cfg.Admin.SeedEmail, cfg.Admin.SeedPassword); err != nil {
		lg.Fatalj(log.JSON{"msg": "seed admin", "error": err.Error()})
	}

	services := server.Services{
		Auth:  authService,
		Admin: service.NewAdminService(
			db,
			identityRepo,
			sessionRepo,
			shopRepo,
			productRepo,
			errorLogRepo,
			storageClient,
			lg,
		),
		Shop:  service.NewShopService(db, shopRepo, productRepo, storageClient, lg),
		Order: service.NewOrderService(
			db,
			orderRepo,
			productRepo,
			shopRepo,
			identityRepo,
			notificationService,
			contactPolicy,
			cfg.Order.CancelWindow,
			lg,
			time.Now,
		),
		Review: service.NewReviewService(db, reviewRepo, orderRepo, productRepo, shopRepo, identityRepo),
		Subscription: service.NewSubscriptionService(
			db,
			billingClient,
			cfg.Billing.PlanID,
			cfg.Billing.WebhookSecret,
			subscriptionRepo,
			shopRepo,
			webhookEventRepo,
			lg,
		),
		Notification: notificationService,
		ErrorLogs:    errorLogRepo,
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(cfg, lg, services)

	lg.Infoj(log.JSON{"msg": "starting http server", "addr": serverAddr, "env": cfg.Environment.Name})
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatalj(log.JSON{"msg": "http server", "error": err.Error()})
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	lg.Info("signal received, starting graceful shutdown")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Errorj(log.JSON{"msg": "http server shutdown", "error": err.Error()})
	}
	if err := notificationService.Stop(ctx); err != nil {
		lg.Errorj(log.JSON{"msg": "notification drain", "error": err.Error()})
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
