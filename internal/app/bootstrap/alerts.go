package bootstrap

import (
	"context"
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/monday-lead-relay/internal/config"
	"github.com/wolfman30/monday-lead-relay/internal/notify"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// BuildEmailSender picks the alert transport named by EMAIL_PROVIDER. A
// provider missing its credentials falls back to the logging stub.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.EmailProvider)) {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; alerts will only be logged")
			return notify.NewStubEmailSender(logger), nil
		}
		logger.Info("lead failure alerts via sendgrid", "from", cfg.EmailFrom)
		return sender, nil
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("lead failure alerts via ses", "from", cfg.EmailFrom, "region", cfg.AWSRegion)
		return notify.NewSESSender(NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	default:
		return notify.NewStubEmailSender(logger), nil
	}
}

// BuildAlerter returns nil when ALERT_EMAIL_TO is unset.
func BuildAlerter(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*notify.Alerter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if strings.TrimSpace(cfg.AlertEmailTo) == "" {
		return nil, nil
	}
	sender, err := BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return notify.NewAlerter(sender, cfg.AlertEmailTo, logger), nil
}
