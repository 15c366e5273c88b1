package helpers

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"pubforge.dev/publisher-api/app"
	"pubforge.dev/publisher-api/models"
)

// SumPaidImpressions totals the paid impressions of a site over a date
// window, both ends inclusive. Missing reports count as zero.
func SumPaidImpressions(ctx context.Context, siteID uuid.UUID, from time.Time, to time.Time) (int64, error) {
	total := sql.NullInt64{}

	if err := app.DB().WithContext(ctx).Model(&models.ImpressionReport{}).
		Select("SUM(paid_impressions)").
		Where("site_id = @site_id AND day >= @from AND day <= @to AND deleted_at IS NULL",
			sql.Named("site_id", siteID), sql.Named("from", from), sql.Named("to", to)).
		Scan(&total).Error; err != nil {
		return 0, err
	}

	if !total.Valid {
		return 0, nil
	}

	return total.Int64, nil
}
