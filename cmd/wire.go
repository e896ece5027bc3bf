package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sana-care/sana-cli/internal/adapters/api"
	"github.com/sana-care/sana-cli/internal/adapters/bus"
	configadapter "github.com/sana-care/sana-cli/internal/adapters/config"
	"github.com/sana-care/sana-cli/internal/adapters/secrets"
	chainstore "github.com/sana-care/sana-cli/internal/adapters/secrets/chain"
	"github.com/sana-care/sana-cli/internal/application"
	"github.com/sana-care/sana-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	cfg          configadapter.Config
	log          *zap.Logger
	events       ports.CalendarEvents
	auth         *application.AuthService
	availability *application.AvailabilityService
	booking      *application.BookingService
	treatment    *application.TreatmentService
	now          func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := configadapter.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if cfg.Verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	secretsDir, err := configadapter.SecretsDir()
	if err != nil {
		return nil, err
	}
	secretStore, err := chainstore.NewPassFirstWithFileFallback(secretsDir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}
	tokens := secrets.NewTokenStore(secretStore)

	httpClient := &http.Client{}
	refresher := api.NewRefresher(cfg.Server.BaseURL, httpClient, tokens, cfg.Server.Timeout, logger)
	client := api.NewClient(api.Config{
		BaseURL:     cfg.Server.BaseURL,
		Timeout:     cfg.Server.Timeout,
		RefreshSkew: cfg.Auth.RefreshSkew,
	}, httpClient, tokens, refresher, logger)

	events := bus.NewMemory()
	treatment := application.NewTreatmentService(client, cfg.Treatment.StatusTTL, logger)
	availability := application.NewAvailabilityService(client, application.AvailabilityConfig{
		TTL:             cfg.Availability.TTL,
		StaleAfter:      cfg.Availability.StaleAfter,
		SelfServicePoll: cfg.Availability.SelfServicePoll,
		AssignedPoll:    cfg.Availability.AssignedPoll,
	}, logger)
	booking := application.NewBookingService(client, availability, treatment, events, application.BookingConfig{
		Cutoff: cfg.Booking.Cutoff,
	}, logger)

	return &app{
		cfg:          cfg,
		log:          logger,
		events:       events,
		auth:         application.NewAuthService(client, logger),
		availability: availability,
		booking:      booking,
		treatment:    treatment,
		now:          time.Now,
	}, nil
}
