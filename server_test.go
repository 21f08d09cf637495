package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/middlewares"
	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/mmdatafocus/restaurant_backend/models/reports"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var testSecret = []byte("server-secret")

type stubSource struct {
	lines []reports.OrderLineRecord
	err   error
}

func (s *stubSource) FetchSettledLines(ctx context.Context, start, end models.DateOnly) ([]reports.OrderLineRecord, error) {
	return s.lines, s.err
}

func (s *stubSource) FetchOrderTotals(ctx context.Context, start, end models.DateOnly) ([]reports.OrderTotal, error) {
	return reports.OrderTotalsFromLines(s.lines), s.err
}

func newTestRouter(src reports.LineRecordSource, ready bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	now := time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	svc := reports.NewService(src,
		reports.WithClock(func() time.Time { return now }),
		reports.WithLocation(time.UTC),
		reports.WithCache(false, 0),
		reports.WithCurrency("ETB"),
	)
	return newRouter(routerDeps{
		service:   svc,
		jwtSecret: testSecret,
		ready:     func() bool { return ready },
	}, logrus.New())
}

func sampleLines() []reports.OrderLineRecord {
	day := models.NewDateOnly(2024, time.May, 19)
	return []reports.OrderLineRecord{
		{
			OrderId: "A", ItemName: "Tibs", CategoryName: "Mains",
			UnitPrice: decimal.NewFromInt(250), Quantity: 2, LineSubtotal: decimal.NewFromInt(500),
			OrderDate: day, OrderTimestamp: day.Time().Add(12 * time.Hour), PaymentMethod: "Cash",
		},
		{
			OrderId: "B", ItemName: "Macchiato", CategoryName: "Drinks",
			UnitPrice: decimal.NewFromInt(40), Quantity: 3, LineSubtotal: decimal.NewFromInt(120),
			OrderDate: day, OrderTimestamp: day.Time().Add(15 * time.Hour), PaymentMethod: "Telebirr",
		},
	}
}

func authed(t *testing.T, method, path, body, role string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	token, err := utils.JwtGenerate(testSecret, 1, "Tigist", role, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&stubSource{}, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNotReadyIs503(t *testing.T) {
	r := newTestRouter(&stubSource{}, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPost, "/reports/sales", `{"start_date":"2024-05-01","end_date":"2024-05-19"}`, "admin"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSalesReportEndpoint(t *testing.T) {
	r := newTestRouter(&stubSource{lines: sampleLines()}, true)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, authed(t, http.MethodPost, "/reports/sales", `{"start_date":"2024-05-01","end_date":"2024-05-19","report_type":"items"}`, "cashier"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Title              string `json:"title"`
		GrandTotalQuantity int    `json:"grandTotalQuantity"`
		GrandTotalAmount   string `json:"grandTotalAmount"`
		GeneratedBy        string `json:"generatedBy"`
		WindowStart        string `json:"windowStart"`
		Items              []struct {
			ItemName string `json:"itemName"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ITEM PERFORMANCE REPORT", body.Title)
	assert.Equal(t, 5, body.GrandTotalQuantity)
	assert.Equal(t, "620", body.GrandTotalAmount)
	assert.Equal(t, "Tigist", body.GeneratedBy)
	assert.Equal(t, "2024-05-01", body.WindowStart)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Macchiato", body.Items[0].ItemName)
}

func TestSalesReportEndpoint_Errors(t *testing.T) {
	cases := []struct {
		name   string
		src    *stubSource
		body   string
		role   string
		status int
	}{
		{"malformed body", &stubSource{}, `{"start_date":`, "admin", http.StatusBadRequest},
		{"missing end date", &stubSource{}, `{"start_date":"2024-05-01"}`, "admin", http.StatusBadRequest},
		{"inverted", &stubSource{}, `{"start_date":"2024-05-10","end_date":"2024-05-01"}`, "admin", http.StatusBadRequest},
		{"future", &stubSource{}, `{"start_date":"2024-05-10","end_date":"2024-05-21"}`, "admin", http.StatusBadRequest},
		{"source down", &stubSource{err: errors.New("dial tcp: refused")}, `{"start_date":"2024-05-01","end_date":"2024-05-02"}`, "admin", http.StatusServiceUnavailable},
		{"waiter forbidden", &stubSource{}, `{"start_date":"2024-05-01","end_date":"2024-05-02"}`, "waiter", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(tc.src, true)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, authed(t, http.MethodPost, "/reports/sales", tc.body, tc.role))
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestSalesReportEndpoint_Unauthenticated(t *testing.T) {
	r := newTestRouter(&stubSource{}, true)
	req := httptest.NewRequest(http.MethodPost, "/reports/sales", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSalesReportExportEndpoint(t *testing.T) {
	r := newTestRouter(&stubSource{lines: sampleLines()}, true)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, authed(t, http.MethodPost, "/reports/sales/export", `{"start_date":"2024-05-01","end_date":"2024-05-19"}`, "admin"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales-report-2024-05-01-2024-05-19.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue(reports.ItemsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "SALES SUMMARY REPORT", title)
}

func TestDashboardEndpoint(t *testing.T) {
	r := newTestRouter(&stubSource{lines: sampleLines()}, true)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, authed(t, http.MethodGet, "/reports/dashboard", "", "super_admin"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Currency       string `json:"currency"`
		OrderCount     int    `json:"orderCount"`
		ItemsSold      int    `json:"itemsSold"`
		YesterdaySales string `json:"yesterdaySales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ETB", body.Currency)
	assert.Equal(t, 2, body.OrderCount)
	assert.Equal(t, 5, body.ItemsSold)
	assert.Equal(t, "620", body.YesterdaySales)
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(&stubSource{}, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim("  "))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitAndTrim(" https://a.example, ,https://b.example "))
}

func TestRevokedTokenRejectedWithoutReportCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisDB(client)
	t.Cleanup(func() {
		config.SetRedisDB(nil)
		_ = client.Close()
	})

	// newTestRouter builds the service with the report cache off
	r := newTestRouter(&stubSource{lines: sampleLines()}, true)
	body := `{"start_date":"2024-05-01","end_date":"2024-05-19"}`

	revoked := authed(t, http.MethodPost, "/reports/sales", body, "admin")
	token := strings.TrimPrefix(revoked.Header.Get("Authorization"), "Bearer ")
	require.NoError(t, mr.Set(middlewares.RevokedTokenPrefix+token, "1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, revoked)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := utils.JwtGenerate(testSecret, 2, "Dawit", "admin", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/reports/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+other)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{middlewares.RevokedTokenPrefix + token}, mr.Keys())
}

func TestSqlHandle_LogsUnavailablePool(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	assert.Nil(t, sqlHandle(nil, logger))
	assert.Empty(t, hook.AllEntries())

	assert.Nil(t, sqlHandle(&gorm.DB{Config: &gorm.Config{}}, logger))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, gorm.ErrInvalidDB.Error(), entry.Message)
	assert.Equal(t, "sqlHandle", entry.Data["funcName"])
}
