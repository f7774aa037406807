package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/dalemusser/counselhub/internal/app/bootstrap"
	"github.com/dalemusser/counselhub/internal/app/system/mailer"
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"go.uber.org/zap"
)

// The worker consumes the notification queue when the API runs with
// notify_backend=asynq. It shares the API's configuration.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	_, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	sender := mailer.NewSMTPSender(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName,
		logger,
	)
	handler := notify.EmailHandler(sender, appCfg.BaseURL, appCfg.SiteName, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notification worker starting", zap.String("redis_url", appCfg.RedisURL))
	if err := notify.RunAsynqWorker(ctx, appCfg.RedisURL, handler, logger); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
