package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/notify"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// BuildEmailSender picks the confirmation email provider. Misconfigured
// providers degrade to the stub sender, which only logs.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger), appconfig.EmailStub
	}

	switch cfg.EmailProvider {
	case appconfig.EmailSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
			ReplyTo:   cfg.BusinessEmail,
		}, logger)
		if sender != nil {
			return sender, appconfig.EmailSendGrid
		}
		logger.Warn("sendgrid selected but api key missing; falling back to stub email")
	case appconfig.EmailSES:
		if awsCfg != nil && cfg.SESFromEmail != "" {
			sender := notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  cfg.BusinessName,
				ReplyTo:   cfg.BusinessEmail,
			}, logger)
			return sender, appconfig.EmailSES
		}
		logger.Warn("ses selected but aws config or sender missing; falling back to stub email")
	}
	return notify.NewStubEmailSender(logger), appconfig.EmailStub
}

// BuildNotifier wires booking confirmations onto the chosen email sender.
func BuildNotifier(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) scheduling.Notifier {
	sender, provider := BuildEmailSender(cfg, awsCfg, logger)
	clinic := notify.Clinic{}
	if cfg != nil {
		clinic = notify.Clinic{
			Name:    cfg.BusinessName,
			Phone:   cfg.BusinessPhone,
			Email:   cfg.BusinessEmail,
			Address: cfg.BusinessAddress,
		}
	}
	if logger != nil {
		logger.Info("appointment confirmations enabled", "provider", provider)
	}
	return notify.NewAppointmentNotifier(sender, clinic, logger)
}
