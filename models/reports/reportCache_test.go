package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsKey = "sales_report:2024-05-01:2024-05-02:items"

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisDB(client)
	t.Cleanup(func() {
		config.SetRedisDB(nil)
		_ = client.Close()
	})
	return mr
}

func newCachedService(src LineRecordSource) *Service {
	return NewService(src,
		WithClock(fixedClock(serviceNow)),
		WithLocation(time.FixedZone("EAT", 3*60*60)),
		WithCache(true, time.Minute),
		WithCurrency("ETB"),
	)
}

func TestService_CacheHitSkipsSource(t *testing.T) {
	mr := useMiniredis(t)
	src := &fakeSource{lines: scenarioLines()}
	svc := newCachedService(src)
	abebe := utils.SetStaffNameInContext(context.Background(), "Abebe")
	hana := utils.SetStaffNameInContext(context.Background(), "Hana")

	first, err := svc.GenerateSalesReport(abebe, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "items"})
	require.NoError(t, err)
	assert.True(t, mr.Exists(itemsKey))
	assert.False(t, mr.Exists(itemsKey+":lock"), "fill lock is released")
	ttl := mr.TTL(itemsKey)
	assert.Equal(t, time.Minute, ttl)

	second, err := svc.GenerateSalesReport(hana, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: " ITEMS "})
	require.NoError(t, err)

	assert.Equal(t, 1, src.lineCalls)
	assert.Equal(t, 1, src.totalCalls)
	assert.Equal(t, " ITEMS ", second.RequestedReportType)
	assert.Equal(t, "Hana", second.GeneratedBy)
	assert.Equal(t, "items", first.RequestedReportType)
	assert.Equal(t, "Abebe", first.GeneratedBy)
	assert.Equal(t, first.ReportType, second.ReportType)
	assert.Equal(t, first.GrandTotalQuantity, second.GrandTotalQuantity)
	assert.True(t, first.GrandTotalAmount.Equal(second.GrandTotalAmount))
	require.Len(t, second.Items, len(first.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Key(), second.Items[i].Key())
	}
}

func TestService_CacheDistinguishesWindowAndType(t *testing.T) {
	mr := useMiniredis(t)
	src := &fakeSource{lines: scenarioLines()}
	svc := newCachedService(src)
	ctx := context.Background()

	_, err := svc.GenerateSalesReport(ctx, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "sales"})
	require.NoError(t, err)
	_, err = svc.GenerateSalesReport(ctx, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "summary"})
	require.NoError(t, err)
	_, err = svc.GenerateSalesReport(ctx, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-01", ReportType: "summary"})
	require.NoError(t, err)

	// "sales" normalizes to summary and shares its entry
	assert.Equal(t, 2, src.lineCalls)
	assert.True(t, mr.Exists("sales_report:2024-05-01:2024-05-02:summary"))
	assert.True(t, mr.Exists("sales_report:2024-05-01:2024-05-01:summary"))
}

func TestService_CorruptCacheEntryFallsBackToSource(t *testing.T) {
	mr := useMiniredis(t)
	require.NoError(t, mr.Set(itemsKey, "{not json"))
	src := &fakeSource{lines: scenarioLines()}
	svc := newCachedService(src)

	report, err := svc.GenerateSalesReport(context.Background(), ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "items"})

	require.NoError(t, err)
	assert.Equal(t, 1, src.lineCalls)
	assert.Equal(t, 7, report.GrandTotalQuantity)
	raw, err := mr.Get(itemsKey)
	require.NoError(t, err)
	assert.NotEqual(t, "{not json", raw, "entry is overwritten")
}

func TestService_DashboardCache(t *testing.T) {
	mr := useMiniredis(t)
	src := &fakeSource{lines: scenarioLines()}
	svc := newCachedService(src)

	first, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	second, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.lineCalls)
	// serviceNow is already May 3 in EAT
	assert.True(t, mr.Exists("sales_report:dashboard:2024-05-03"))
	assert.Equal(t, first.OrderCount, second.OrderCount)
	assert.True(t, first.TotalSales.Equal(second.TotalSales))
	assert.Equal(t, "ETB", second.Currency)
}

func TestInvalidateReportCache(t *testing.T) {
	mr := useMiniredis(t)
	src := &fakeSource{lines: scenarioLines()}
	svc := newCachedService(src)
	ctx := context.Background()
	in := ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "items"}

	_, err := svc.GenerateSalesReport(ctx, in)
	require.NoError(t, err)
	_, err = svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	require.NoError(t, mr.Set("RevokedToken:abc", "1"))

	removed, err := InvalidateReportCache(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.False(t, mr.Exists(itemsKey))
	assert.False(t, mr.Exists("sales_report:dashboard:2024-05-03"))
	assert.True(t, mr.Exists("RevokedToken:abc"))

	_, err = svc.GenerateSalesReport(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, src.lineCalls)
}

func TestInvalidateReportCache_WithoutRedis(t *testing.T) {
	config.SetRedisDB(nil)

	removed, err := InvalidateReportCache(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestService_ObtainFillLock(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	lock := newCachedService(&fakeSource{}).obtainFillLock(ctx, itemsKey)
	require.NotNil(t, lock)
	assert.True(t, mr.Exists(itemsKey+":lock"))
	require.NoError(t, lock.Release(ctx))
	assert.False(t, mr.Exists(itemsKey+":lock"))

	assert.Nil(t, newTestService(&fakeSource{}).obtainFillLock(ctx, itemsKey), "cache off")
}

func TestService_HeldFillLockStillComputes(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()
	held, err := config.GetRedisLock().Obtain(ctx, itemsKey+":lock", time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release(context.Background()) })

	src := &fakeSource{lines: scenarioLines()}
	report, err := newCachedService(src).GenerateSalesReport(ctx, ReportRequestInput{WindowStart: "2024-05-01", WindowEnd: "2024-05-02", ReportType: "items"})

	require.NoError(t, err)
	assert.Equal(t, 1, src.lineCalls)
	assert.Equal(t, 7, report.GrandTotalQuantity)
	// the other holder keeps its lock
	ttl, err := held.TTL(ctx)
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
