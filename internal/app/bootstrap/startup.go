// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/counselhub/internal/app/system/mailer"
	"github.com/dalemusser/counselhub/internal/app/system/notify"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// dispatcher is the notification backend selected at startup. It is built
// here so BuildHandler can hand it to the notes feature, and Shutdown can
// drain it.
var (
	dispatcher notify.Dispatcher
	inprocStop func()
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. CounselHub
// uses it to wire the notification pipeline: an SMTP-backed email handler
// fed either by an in-process worker or by a Redis-backed asynq queue.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	sender := mailer.NewSMTPSender(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName,
		logger,
	)
	handler := notify.EmailHandler(sender, appCfg.BaseURL, appCfg.SiteName, logger)

	switch appCfg.NotifyBackend {
	case "asynq":
		d, err := notify.NewAsynqDispatcher(appCfg.RedisURL, logger)
		if err != nil {
			return err
		}
		dispatcher = d
		logger.Info("notification dispatch via asynq", zap.String("redis_url", appCfg.RedisURL))
	default:
		d := notify.NewInProc(handler, 256, logger)
		d.Start()
		dispatcher = d
		inprocStop = d.Stop
		logger.Info("notification dispatch via in-process worker")
	}

	return nil
}
