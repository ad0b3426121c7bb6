package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cranelabs/landing-api/internal/api/router"
	appconfig "github.com/cranelabs/landing-api/internal/config"
	"github.com/cranelabs/landing-api/internal/leads"
	"github.com/cranelabs/landing-api/internal/notify"
	"github.com/cranelabs/landing-api/internal/observability/metrics"
	"github.com/cranelabs/landing-api/internal/ratelimit"
	"github.com/cranelabs/landing-api/pkg/logging"
)

func main() {
	// Load .env in local development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting landing-api server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Lead storage: Postgres when configured, in-memory otherwise.
	var repo leads.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory lead storage")
		repo = leads.NewInMemoryRepository()
	}

	// Rate limiting: shared Redis counter when configured so the quota holds
	// across replicas, process-local fixed window otherwise.
	var limiter ratelimit.Limiter
	if redisClient := buildRedisClient(ctx, cfg, logger); redisClient != nil {
		limiter = ratelimit.NewRedisFixedWindow(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewFixedWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	emailSender := buildEmailSender(ctx, cfg, logger)
	intakeMetrics := metrics.NewIntakeMetrics(nil)
	notifier := notify.NewService(emailSender, notify.ServiceConfig{
		OpsEmail:      cfg.LeadsNotifyEmail,
		PublicBaseURL: cfg.PublicBaseURL,
	}, intakeMetrics, logger)

	intakeHandler := leads.NewIntakeHandler(repo, limiter, notifier, intakeMetrics, logger)
	adminHandler := leads.NewAdminHandler(repo, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intakeHandler,
		AdminHandler:       adminHandler,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.AdminCORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildRedisClient returns a verified Redis client or nil when disabled or
// unreachable.
func buildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory rate limiting", "error", err)
		return nil
	}
	return client
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, using stub email sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, using stub email sender", "error", err)
			break
		}
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
