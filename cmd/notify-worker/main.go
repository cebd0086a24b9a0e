// The notify-worker binary drains the SQS notification queue and delivers
// email and SMS. It runs alongside the API server in production; local dev
// normally uses the in-process memory queue instead.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/Bezzin/HerHealth-Hub-sub000/cmd/mainconfig"
	appconfig "github.com/Bezzin/HerHealth-Hub-sub000/internal/config"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/notify"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting notification worker", "env", cfg.Env)

	if cfg.NotifyQueueURL == "" {
		logger.Error("NOTIFY_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)

	var email notify.EmailSender = notify.NewStubEmailSender(logger)
	switch cfg.EmailProvider {
	case "ses":
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			email = sender
		}
	default:
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFrom,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			email = sender
		}
	}

	var sms notify.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		sms = notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	} else {
		logger.Warn("twilio not configured, SMS will be logged only")
		sms = notify.NewStubSMSSender(logger)
	}

	notify.NewConsumer(queue, email, sms, logger.Component("notify")).Run(ctx)
	logger.Info("notification worker stopped")
}
