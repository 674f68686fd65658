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
	"github.com/rs/zerolog"

	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/handler"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/router"
	"github.com/noah-isme/internship-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if !cfg.IsProduction() {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Info().Msg("redis not configured, login lockout disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	manager := database.NewManager(db, logger)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, validate, logger)
	identityService := service.NewIdentityService(userRepo, profileRepo, manager, service.NewPasswordHasher(cfg.BcryptCost), activityService, logger)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, cfg.AppName)
	loginGuard := service.NewLoginGuard(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow, cfg.LoginLockout, logger)

	sessions := middleware.NewSessionStore(middleware.SessionConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ErrorHandler: router.ErrorHandler(logger),
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		Manager:  manager,
		Sessions: sessions,
		Identity: identityService,
		Tokens:   tokenService,
		Logger:   logger,

		AuthHandler:              handler.NewAuthHandler(identityService, tokenService, loginGuard, sessions, validate, cfg.UniversityName, logger),
		AccountHandler:           handler.NewAccountHandler(identityService, validate, logger),
		DashboardHandler:         handler.NewDashboardHandler(identityService, notificationService, logger),
		NotificationHandler:      handler.NewNotificationHandler(notificationService, logger),
		AdminUserHandler:         handler.NewAdminUserHandler(identityService, validate, logger),
		AdminActivityHandler:     handler.NewAdminActivityHandler(activityService, logger),
		AdminNotificationHandler: handler.NewAdminNotificationHandler(notificationService, validate, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Str("university", cfg.UniversityName).Msg("server started")
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
