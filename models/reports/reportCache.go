package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "sales_report"

// salesReportCacheKey is unique per window and normalized report type, so a
// "sales" and a "summary" request share an entry.
func salesReportCacheKey(req *ReportRequest) string {
	return fmt.Sprintf("%s:%s:%s:%s", cacheKeyPrefix, req.WindowStart, req.WindowEnd, req.ReportType)
}

func dashboardCacheKey(today models.DateOnly) string {
	return fmt.Sprintf("%s:dashboard:%s", cacheKeyPrefix, today)
}

func logSlowReport(ctx context.Context, name string, started time.Time, threshold time.Duration, extra logrus.Fields) {
	d := time.Since(started)
	if d < threshold {
		return
	}
	fields := logrus.Fields{
		"report": name,
		"ms":     d.Milliseconds(),
	}
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		fields["correlation_id"] = cid
	}
	if staffId, ok := utils.GetStaffIdFromContext(ctx); ok {
		fields["staff_id"] = staffId
	}
	for k, v := range extra {
		fields[k] = v
	}
	config.GetLogger().WithFields(fields).Warn("slow_report")
}

func cacheGet[T any](ctx context.Context, key string, dest *T) (bool, error) {
	return config.GetRedisObject(ctx, key, dest)
}

func cacheSet(ctx context.Context, key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(ctx, key, obj, ttl)
}

// InvalidateReportCache drops every cached report and dashboard, e.g. after
// back-dated orders were corrected.
func InvalidateReportCache(ctx context.Context) (int, error) {
	return utils.ClearRedisPrefix(ctx, cacheKeyPrefix+":")
}
