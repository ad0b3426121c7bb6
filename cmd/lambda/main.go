// Serverless entrypoint: runs the lead intake handler behind API Gateway.
// The in-process rate limiter only counts submissions within a single warm
// instance; set REDIS_ADDR to enforce the quota across instances.
package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/cranelabs/landing-api/internal/config"
	"github.com/cranelabs/landing-api/internal/leads"
	"github.com/cranelabs/landing-api/internal/notify"
	"github.com/cranelabs/landing-api/internal/ratelimit"
	"github.com/cranelabs/landing-api/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var repo leads.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			panic(err)
		}
		repo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory lead storage")
		repo = leads.NewInMemoryRepository()
	}

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		limiter = ratelimit.NewRedisFixedWindow(redis.NewClient(opts), cfg.RateLimitMax, cfg.RateLimitWindow)
	} else {
		limiter = ratelimit.NewFixedWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err == nil {
			sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.SESFromName,
			}, logger)
		}
	}
	if sender == nil {
		sender = notify.NewStubEmailSender(logger)
	}

	notifier := notify.NewService(sender, notify.ServiceConfig{
		OpsEmail:      cfg.LeadsNotifyEmail,
		PublicBaseURL: cfg.PublicBaseURL,
	}, nil, logger)

	intake := leads.NewIntakeHandler(repo, limiter, notifier, nil, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, intake, evt)
	})
}

func handle(ctx context.Context, intake *leads.IntakeHandler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if path != "/leads" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	req, err := toHTTPRequest(ctx, evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	rec := newRecorder()
	intake.Submit(rec, req)

	headers := map[string]string{}
	for name := range rec.header {
		headers[name] = rec.header.Get(name)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

func toHTTPRequest(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(evt.Body)
	if evt.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(evt.Body)
		if err != nil {
			return nil, err
		}
		body = decoded
	}

	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	req, err := http.NewRequestWithContext(ctx, method, "https://lambda"+evt.RawPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for name, value := range evt.Headers {
		req.Header.Set(name, value)
	}
	if sourceIP := evt.RequestContext.HTTP.SourceIP; sourceIP != "" {
		req.RemoteAddr = sourceIP + ":0"
	}
	return req, nil
}

type recorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{status: http.StatusOK, header: http.Header{}}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) { r.status = status }

func (r *recorder) Write(p []byte) (int, error) { return r.body.Write(p) }
