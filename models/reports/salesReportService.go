package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/mmdatafocus/restaurant_backend/models/reports")

const cacheFillLockTTL = 15 * time.Second

// Clock supplies the current instant. Tests pin it to make "today" reproducible.
type Clock func() time.Time

type Service struct {
	source        LineRecordSource
	clock         Clock
	loc           *time.Location
	cacheEnabled  bool
	cacheTTL      time.Duration
	slowThreshold time.Duration
	currency      string
}

type ServiceOption func(*Service)

func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLocation(loc *time.Location) ServiceOption {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithCache(enabled bool, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cacheEnabled = enabled
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithSlowThreshold(d time.Duration) ServiceOption {
	return func(s *Service) { s.slowThreshold = d }
}

func WithCurrency(currency string) ServiceOption {
	return func(s *Service) { s.currency = currency }
}

// NewService wires a report service over source. Defaults come from the
// environment (see config/featureFlags.go).
func NewService(source LineRecordSource, opts ...ServiceOption) *Service {
	s := &Service{
		source:        source,
		clock:         time.Now,
		loc:           config.ReportLocation(),
		cacheEnabled:  config.ReportCacheEnabled(),
		cacheTTL:      config.ReportCacheTTL(),
		slowThreshold: config.ReportSlowThreshold(),
		currency:      config.ReportCurrency(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date in the report timezone.
func (s *Service) Today() models.DateOnly {
	return models.DateOf(s.clock(), s.loc)
}

func (s *Service) Currency() string {
	return s.currency
}

// GenerateSalesReport validates in, fetches the window and builds the report.
// Validation failures wrap ErrMissingDate, ErrInvertedRange or ErrFutureDate;
// storage failures wrap ErrSourceUnavailable.
func (s *Service) GenerateSalesReport(ctx context.Context, in ReportRequestInput) (*SalesReport, error) {
	ctx, span := tracer.Start(ctx, "reports.GenerateSalesReport")
	defer span.End()
	started := time.Now()

	req, err := ValidateReportRequest(in, s.Today())
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("window.start", req.WindowStart.String()),
		attribute.String("window.end", req.WindowEnd.String()),
		attribute.String("report.type", string(req.ReportType)),
	)

	key := salesReportCacheKey(req)
	if report, ok := s.cachedReport(ctx, key, req); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return report, nil
	}
	if lock := s.obtainFillLock(ctx, key); lock != nil {
		defer lock.Release(context.WithoutCancel(ctx))
		// another request may have filled the entry while we waited
		if report, ok := s.cachedReport(ctx, key, req); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return report, nil
		}
	}

	var lines []OrderLineRecord
	var totals []OrderTotal
	if err := s.fetchWindow(ctx, req.WindowStart, req.WindowEnd, &lines, &totals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch window")
		return nil, err
	}

	report := BuildSalesReport(req, lines, totals, s.meta(ctx))
	span.SetAttributes(attribute.Int("report.items", len(report.Items)))

	if s.cacheEnabled {
		if err := cacheSet(ctx, key, report, s.cacheTTL); err != nil {
			config.GetLogger().WithFields(logrus.Fields{"key": key}).Warn("report cache set failed: " + err.Error())
		}
	}
	logSlowReport(ctx, "sales_report", started, s.slowThreshold, logrus.Fields{
		"start":       req.WindowStart.String(),
		"end":         req.WindowEnd.String(),
		"report_type": string(req.ReportType),
		"lines":       len(lines),
	})
	return report, nil
}

// GetDashboardStats summarizes the rolling window ending today.
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "reports.GetDashboardStats")
	defer span.End()
	started := time.Now()

	today := s.Today()
	key := dashboardCacheKey(today)
	if s.cacheEnabled {
		var cached DashboardStats
		if ok, err := cacheGet(ctx, key, &cached); err != nil {
			config.GetLogger().WithFields(logrus.Fields{"key": key}).Warn("dashboard cache get failed: " + err.Error())
		} else if ok {
			return &cached, nil
		}
	}

	start, end := DashboardWindow(today)
	var lines []OrderLineRecord
	var totals []OrderTotal
	if err := s.fetchWindow(ctx, start, end, &lines, &totals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch window")
		return nil, err
	}

	stats := BuildDashboardStats(totals, lines, today)
	stats.Currency = s.currency

	if s.cacheEnabled {
		if err := cacheSet(ctx, key, stats, s.cacheTTL); err != nil {
			config.GetLogger().WithFields(logrus.Fields{"key": key}).Warn("dashboard cache set failed: " + err.Error())
		}
	}
	logSlowReport(ctx, "dashboard", started, s.slowThreshold, nil)
	return stats, nil
}

// fetchWindow loads lines and order totals concurrently and joins before
// returning. The first failure cancels the other fetch.
func (s *Service) fetchWindow(ctx context.Context, start, end models.DateOnly, lines *[]OrderLineRecord, totals *[]OrderTotal) error {
	if s.source == nil {
		return fmt.Errorf("%w: no line source configured", ErrSourceUnavailable)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		*lines, err = s.source.FetchSettledLines(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		*totals, err = s.source.FetchOrderTotals(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return nil
}

func (s *Service) meta(ctx context.Context) ReportMeta {
	name, _ := utils.GetStaffNameFromContext(ctx)
	return ReportMeta{GeneratedAt: s.clock(), GeneratedBy: name}
}

// cachedReport returns a cache hit re-stamped for the current caller.
func (s *Service) cachedReport(ctx context.Context, key string, req *ReportRequest) (*SalesReport, bool) {
	if !s.cacheEnabled {
		return nil, false
	}
	var cached SalesReport
	ok, err := cacheGet(ctx, key, &cached)
	if err != nil {
		config.GetLogger().WithFields(logrus.Fields{"key": key}).Warn("report cache get failed: " + err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	cached.RequestedReportType = req.RequestedReportType
	if name, ok := utils.GetStaffNameFromContext(ctx); ok {
		cached.GeneratedBy = name
	}
	return &cached, true
}

// obtainFillLock serializes cache fills for one key. A nil lock means either
// caching is off or the lock is held elsewhere; the caller computes anyway.
func (s *Service) obtainFillLock(ctx context.Context, key string) *redislock.Lock {
	if !s.cacheEnabled {
		return nil
	}
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, key+":lock", cacheFillLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		if !errors.Is(err, redislock.ErrNotObtained) {
			config.GetLogger().WithFields(logrus.Fields{"key": key}).Warn("report cache lock failed: " + err.Error())
		}
		return nil
	}
	return lock
}
