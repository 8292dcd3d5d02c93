package main

import (
	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/api"
	"github.com/motodiag/internal/auth"
	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/config"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/reminder"
	"github.com/motodiag/internal/settings"
	"github.com/motodiag/internal/storage"
	"github.com/motodiag/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.LoadConfig()

	adapter, err := storage.Open(cfg.Database.Path, log)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer adapter.Close()

	notifier := buildNotifier(cfg, log)
	clk := clock.System()

	reports := store.NewReportStore(adapter, notifier, clk, log)
	inspections := store.NewInspectionStore(adapter, notifier, clk, log)
	reports.LoadAll()
	inspections.LoadAll()

	prefs := settings.New(adapter, cfg.Reminder.DefaultLeadHours, log)

	scheduler := reminder.New(inspections, notifier, clk, prefs.LeadTime, log)
	inspections.OnChange(scheduler.Recompute)
	prefs.OnChange(scheduler.Recompute)
	scheduler.Recompute()
	defer scheduler.Stop()

	authenticator := buildAuthenticator(cfg, log)

	server := api.NewServer(reports, inspections, scheduler, prefs, notifier, clk, authenticator, log)
	log.Infof("Starting API server on port %d", cfg.Server.Port)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildNotifier(cfg *config.Config, log *logrus.Logger) notify.Notifier {
	channels := notify.Multi{notify.NewLogNotifier(log)}

	if cfg.Notify.Slack.Token != "" && cfg.Notify.Slack.Channel != "" {
		channels = append(channels, notify.NewSlackNotifier(cfg.Notify.Slack.Token, cfg.Notify.Slack.Channel, log))
	}
	if cfg.Notify.Email.SMTPHost != "" && len(cfg.Notify.Email.ToReceivers) > 0 {
		channels = append(channels, notify.NewEmailNotifier(
			cfg.Notify.Email.SMTPHost,
			cfg.Notify.Email.SMTPPort,
			cfg.Notify.Email.From,
			cfg.Notify.Email.Password,
			cfg.Notify.Email.ToReceivers,
			log,
		))
	}

	return channels
}

func buildAuthenticator(cfg *config.Config, log *logrus.Logger) *auth.Authenticator {
	username := cfg.Auth.Username
	if username == "" {
		username = "operator"
	}

	passwordHash := cfg.Auth.PasswordHash
	if passwordHash == "" {
		hash, err := auth.HashPassword("motodiag")
		if err != nil {
			log.Fatalf("Failed to hash default password: %v", err)
		}
		passwordHash = hash
		log.Warn("auth.passwordhash is not configured, using the default password")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = "motodiag-dev-secret"
		log.Warn("auth.jwtsecret is not configured, using the development secret")
	}

	return auth.New(username, passwordHash, secret)
}
