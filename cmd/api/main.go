package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Bezzin/HerHealth-Hub-sub000/cmd/mainconfig"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/api/router"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	appconfig "github.com/Bezzin/HerHealth-Hub-sub000/internal/config"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/doctors"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/feedback"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/intake"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/invites"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/linkedin"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/notify"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/observability/metrics"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/payments"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/reminders"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/slots"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/video"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting herhealth-hub API server", "env", cfg.Env, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories: Postgres when DATABASE_URL is set, otherwise in-memory.
	var (
		slotRepo    slots.Repository
		bookingRepo bookings.Repository
		inviteRepo  invites.Repository
		doctorRepo  doctors.Repository
		fbRepo      feedback.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slotRepo = slots.NewPostgresRepository(pool)
		bookingRepo = bookings.NewPostgresRepository(pool)
		inviteRepo = invites.NewPostgresRepository(pool)
		doctorRepo = doctors.NewPostgresRepository(pool)
		fbRepo = feedback.NewPostgresRepository(pool)
		logger.Info("using postgres repositories")
	} else {
		slotRepo = slots.NewInMemoryRepository()
		bookingRepo = bookings.NewInMemoryRepository()
		inviteRepo = invites.NewInMemoryRepository()
		doctorRepo = doctors.NewInMemoryRepository()
		fbRepo = feedback.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
	}

	m := metrics.New(nil)

	// Services that don't depend on notifications.
	inviteSvc := invites.NewService(inviteRepo, cfg.InviteTTL, logger)
	doctorSvc := doctors.NewService(doctorRepo, inviteSvc, logger)

	// Notification queue and dispatcher. The SES client is tied to the
	// email provider, not the queue: a memory queue with EMAIL_PROVIDER=ses
	// still needs it.
	var queue notify.Queue
	var sesClient *sesv2.Client
	if !cfg.UseMemoryQueue || cfg.EmailProvider == "ses" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if !cfg.UseMemoryQueue {
			queue = notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
		}
		if cfg.EmailProvider == "ses" {
			sesClient = sesv2.NewFromConfig(awsCfg)
		}
	}
	if queue == nil {
		queue = notify.NewMemoryQueue(256)
	}
	dispatcher := notify.NewDispatcher(queue, doctorSvc, logger)

	bookingSvc := bookings.NewService(bookingRepo, slotRepo, dispatcher, m, logger)
	feedbackSvc := feedback.NewService(fbRepo, bookingRepo, logger)

	// Stripe: dry-run when no secret key is configured.
	stripeSvc := payments.NewStripeService(cfg.StripeSecretKey, logger)
	if cfg.StripeSecretKey == "" {
		stripeSvc = stripeSvc.WithDryRun(true)
		logger.Warn("STRIPE_SECRET_KEY not set, payment intents run in dry-run mode")
	}

	// Webhook dedupe: Redis-backed when available.
	var tracker payments.ProcessedTracker = payments.NewInMemoryProcessedTracker()
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not available, falling back to in-memory webhook dedupe", "error", err)
		} else {
			tracker = payments.NewRedisProcessedTracker(redisClient)
		}
	}

	// Intake summarization.
	var summarizer *intake.Summarizer
	if cfg.OpenAIAPIKey != "" {
		summarizer = intake.NewSummarizer(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, intake summaries use the template fallback")
		summarizer = intake.NewSummarizer(nil, cfg.OpenAIModel, logger)
	}
	summarizer = summarizer.WithTimeout(cfg.IntakeTimeout)

	linkedinClient := linkedin.NewClient(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURI, logger)
	if cfg.LinkedInMockMode {
		linkedinClient = linkedinClient.WithMockMode(true)
	}

	routerCfg := &router.Config{
		Logger:   logger,
		Slots:    slots.NewHandler(slotRepo, logger),
		Bookings: bookings.NewHandler(bookingSvc, logger),
		Doctors:  doctors.NewHandler(doctorSvc, logger),
		Invites:  invites.NewHandler(inviteSvc, logger),
		Feedback: feedback.NewHandler(feedbackSvc, logger),
		Payments: payments.NewHandler(stripeSvc, bookingSvc, doctorSvc, cfg.Currency, cfg.PlatformFeePercent, logger),
		Webhook:  payments.NewWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, tracker, m, logger),
		Intake:   intake.NewHandler(summarizer, logger),
		LinkedIn: linkedin.NewHandler(linkedinClient, logger),
		Video:    video.NewHandler(bookingSvc, video.NewManager(logger), logger),

		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}

	// Background reminder worker.
	scanner := reminders.NewScanner(bookingRepo, dispatcher, m, logger.Component("reminders"))
	worker := reminders.NewWorker(scanner, logger.Component("reminders")).WithInterval(cfg.ReminderInterval)
	go worker.Start(ctx)

	// With the memory queue there is no separate worker process, so consume
	// notification jobs in-process.
	if cfg.UseMemoryQueue {
		consumer := notify.NewConsumer(queue, buildEmailSender(cfg, sesClient, logger), buildSMSSender(cfg, logger), logger.Component("notify"))
		go consumer.Run(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
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

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "ses":
		if sesClient != nil {
			if sender := notify.NewSESSender(sesClient, notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.SESFromName,
			}, logger); sender != nil {
				return sender
			}
		}
	default:
		if cfg.SendGridAPIKey != "" {
			return notify.NewSendGridSender(notify.SendGridConfig{
				APIKey:    cfg.SendGridAPIKey,
				FromEmail: cfg.SendGridFrom,
				FromName:  cfg.SendGridFromName,
			}, logger)
		}
	}
	logger.Warn("no email provider configured, emails will be logged only")
	return notify.NewStubEmailSender(logger)
}

func buildSMSSender(cfg *appconfig.Config, logger *logging.Logger) notify.SMSSender {
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		return notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	}
	logger.Warn("twilio not configured, SMS will be logged only")
	return notify.NewStubSMSSender(logger)
}
