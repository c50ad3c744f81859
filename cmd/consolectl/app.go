package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/httpapi"
	"github.com/goliatone/go-admin-console/components/otp"
	"github.com/goliatone/go-admin-console/internal/config"
	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/authapi"
	"github.com/goliatone/go-admin-console/pkg/telemetry"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// app holds the wired console collaborators.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	service   *console.Service
	auth      *console.AuthFlow
	executor  *httpapi.CommandExecutor
	telemetry telemetry.Multi
	meters    *sdkmetric.MeterProvider
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	dataset, err := console.LoadDatasetDir(cfg.Fixtures.Dir)
	if err != nil {
		return nil, fmt.Errorf("consolectl: load fixtures: %w", err)
	}
	meters, err := telemetry.NewMeterProvider(cfg.Metrics.Exporter, os.Stderr, cfg.Metrics.Interval)
	if err != nil {
		return nil, err
	}
	var meter metric.Meter
	if meters != nil {
		meter = meters.Meter(telemetry.InstrumentationName)
	}
	metrics, err := telemetry.NewOTel(meter)
	if err != nil {
		return nil, err
	}
	rec := telemetry.Multi{telemetry.NewLogger(logger, slog.LevelDebug), metrics}

	service, err := console.NewService(console.Options{
		Dataset:         &dataset,
		ChartCache:      console.NewChartCache(cfg.Chart.CacheTTL),
		Telemetry:       rec,
		Logger:          logger,
		DefaultLimit:    cfg.List.DefaultLimit,
		ChartTheme:      cfg.Chart.Theme,
		ChartAssetsHost: cfg.Chart.AssetsHost,
	})
	if err != nil {
		return nil, err
	}

	issuer, err := newIssuer(cfg, logger)
	if err != nil {
		return nil, err
	}
	cooldown := cfg.OTP.Cooldown
	if cooldown == 0 {
		cooldown = -1
	}
	auth := console.NewAuthFlow(console.AuthOptions{
		Issuer:         issuer,
		Length:         cfg.OTP.Length,
		Cooldown:       cooldown,
		VerifyTimeout:  cfg.OTP.VerifyTimeout,
		IdleTTL:        cfg.OTP.IdleTTL,
		ActivityHooks:  activity.Hooks{activityLogger(logger)},
		ActivityConfig: cfg.Activity,
		Telemetry:      rec,
		Logger:         logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		auth:      auth,
		executor:  httpapi.NewCommandExecutor(service, auth, rec),
		telemetry: rec,
		meters:    meters,
	}, nil
}

// newIssuer uses the remote auth service when one is configured and an
// in-memory issuer that logs codes otherwise.
func newIssuer(cfg *config.Config, logger *slog.Logger) (otp.Issuer, error) {
	if cfg.OTP.IssuerURL != "" {
		return authapi.NewHTTPIssuer(authapi.HTTPConfig{
			BaseURL: cfg.OTP.IssuerURL,
			APIKey:  cfg.OTP.APIKey,
		})
	}
	return otp.NewMemoryIssuer(
		otp.WithCodeLength(cfg.OTP.Length),
		otp.WithDelivery(func(ctx context.Context, email, code string) error {
			// No mail transport: the code goes to the log.
			logger.InfoContext(ctx, "verification code issued",
				slog.String("email", email),
				slog.String("code", code),
			)
			return nil
		}),
	), nil
}

func (a *app) close() {
	a.auth.Shutdown()
	if a.meters != nil {
		if err := a.meters.Shutdown(context.Background()); err != nil {
			a.logger.Warn("metrics shutdown failed", slog.Any("error", err))
		}
	}
}

func activityLogger(logger *slog.Logger) activity.Hook {
	return activity.HookFunc(func(ctx context.Context, evt activity.Event) error {
		logger.InfoContext(ctx, "activity",
			slog.String("verb", evt.Verb),
			slog.String("object_type", evt.ObjectType),
			slog.String("object_id", evt.ObjectID),
			slog.String("channel", evt.Channel),
		)
		return nil
	})
}
