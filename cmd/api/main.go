package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/config"
	"github.com/noah-isme/admin-audit-api/internal/database"
	"github.com/noah-isme/admin-audit-api/internal/device"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/handler"
	"github.com/noah-isme/admin-audit-api/internal/middleware"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
	"github.com/noah-isme/admin-audit-api/internal/router"
	"github.com/noah-isme/admin-audit-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.ActivityRecord{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	dispatcher := events.NewDispatcher(logger)

	deviceDetails := service.NewDeviceDetailService(redisClient, cfg.DeviceCacheTTL, device.Classify, logger)
	throttle := service.NewAccessThrottle(redisClient, cfg.AccessLogThrottle, logger)
	recorder := service.NewActivityLogger(activityRepo, deviceDetails, throttle, dispatcher, logger)
	formatter := service.NewMessageFormatter()

	subscriber := service.NewAuditSubscriber(recorder, formatter, logger)
	subscriber.Register(dispatcher)

	forwarder := service.NewStreamForwarder(natsConn, cfg.NATSSubject, logger)
	forwarder.Register(dispatcher)

	userService := service.NewUserService(userRepo, dispatcher, validate, logger)
	authService := service.NewAuthService(userRepo, dispatcher, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	activityQueryService := service.NewActivityQueryService(activityRepo, userRepo, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	activityHandler := handler.NewActivityHandler(activityQueryService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		ActivityHandler: activityHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		TrackAccess:     middleware.TrackAccess(recorder, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
