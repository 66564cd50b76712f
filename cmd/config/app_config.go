package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"purchases-api/internal/api/handlers"
	"purchases-api/internal/api/routes"
	"purchases-api/internal/middleware"
	"purchases-api/internal/utils"
	"purchases-api/internal/utils/storage"
	"purchases-api/pkg/export"
	"purchases-api/pkg/jwt"
	"purchases-api/pkg/purchase"
	"purchases-api/pkg/session"
	"purchases-api/pkg/telegram"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type AppConfig struct {
	TokenSecret        string
	TokenTTL           time.Duration
	SessionTTL         time.Duration
	TelegramBotToken   string
	TelegramAuthMaxAge time.Duration
	// RateLimitMax is requests per second per client; zero or less disables it.
	// RATE_LIMIT_MAX defaults to 10 when unset.
	RateLimitMax int
	LogOutput    io.Writer
	// S3 is optional; nil disables archived exports.
	S3 storage.AwsS3
}

// LoadAppConfig builds the app settings from the loaded utils config. It
// opens the request log file and, when a bucket is set, the S3 client.
func LoadAppConfig(ctx context.Context) (AppConfig, error) {
	cfg := AppConfig{
		TokenSecret:        utils.GetConfig("TOKEN_SECRET"),
		TokenTTL:           utils.GetDuration("TOKEN_TTL", jwt.DefaultTokenTTL),
		SessionTTL:         utils.GetDuration("SESSION_TTL", session.DefaultTTL),
		TelegramBotToken:   utils.GetConfig("TELEGRAM_BOT_TOKEN"),
		TelegramAuthMaxAge: utils.GetDuration("TELEGRAM_AUTH_MAX_AGE", telegram.DefaultAuthMaxAge),
		RateLimitMax:       utils.GetInt("RATE_LIMIT_MAX", 10),
	}

	logFile := utils.GetConfig("LOG_FILE")
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return AppConfig{}, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return AppConfig{}, fmt.Errorf("error opening log file: %w", err)
	}
	cfg.LogOutput = file

	if bucket := utils.GetConfig("AWS_S3_BUCKET"); bucket != "" {
		s3, err := storage.NewAwsS3(ctx, storage.S3Config{
			Bucket:    bucket,
			Region:    utils.GetConfig("AWS_S3_REGION"),
			AccessKey: utils.GetConfig("AWS_ACCESS_KEY"),
			SecretKey: utils.GetConfig("AWS_SECRET_KEY"),
		})
		if err != nil {
			return AppConfig{}, err
		}
		cfg.S3 = s3
	}

	return cfg, nil
}

func NewApp(db *gorm.DB, cfg AppConfig) (*fiber.App, error) {
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("%w: TOKEN_SECRET", utils.ErrMissingConfig)
	}

	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: false,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	app.Use(recover.New())
	if cfg.LogOutput != nil {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			Output:     cfg.LogOutput,
		}))
	}
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: 1 * time.Second,
		}))
	}

	// Repository
	purchaseRepository := purchase.NewPurchaseRepository(db)

	// Service
	jwtService := jwt.NewJWTService(cfg.TokenSecret, cfg.TokenTTL)
	sessionStore := session.NewSessionStore(cfg.SessionTTL)
	exportService := export.NewExportService()
	purchaseService := purchase.NewPurchaseService(purchaseRepository, sessionStore, exportService, cfg.S3)
	loginVerifier := telegram.NewLoginVerifier(cfg.TelegramBotToken, cfg.TelegramAuthMaxAge)

	// Handler
	authHandler := handlers.NewAuthHandler(loginVerifier, jwtService, validator)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, validator)

	// routes
	routesConfig := routes.Config{
		App:             app,
		AuthHandler:     authHandler,
		PurchaseHandler: purchaseHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
