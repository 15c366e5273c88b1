package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/models"
	"pubforge.dev/publisher-api/utils"
)

const (
	TaskOverrideSweep string = "overrides:sweep"
)

// HandleOverrideSweepTask removes expired health check overrides so stale
// manual revenue shares stop showing up in support tooling. The calculator
// already ignores expired rows, this keeps the table from growing forever.
func HandleOverrideSweepTask(ctx context.Context, t *asynq.Task) error {
	now := time.Now().In(utils.DefaultLocation())

	expired := []models.HealthCheckOverride{}

	if err := app.DB().WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&expired).Error; err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("Could not list expired overrides: %w", err)
	}

	if len(expired) < 1 {
		return nil
	}

	if err := app.DB().WithContext(ctx).Delete(&expired).Error; err != nil {
		sentry.CaptureException(err)
		return fmt.Errorf("Could not delete expired overrides: %w", err)
	}

	for _, o := range expired {
		if err := app.Cache().Do(ctx, app.Cache().B().Del().Key(fmt.Sprintf("health-check-overrides:%s", o.SiteID.String())).Build()).Error(); err != nil {
			slog.Error(fmt.Sprintf("Could not drop cached health check override: %v", err))
		}
	}

	slog.Info(fmt.Sprintf("Removed %d expired health check overrides.", len(expired)))

	return nil
}
