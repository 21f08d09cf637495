package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/mmdatafocus/restaurant_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// LineRecordSource supplies settled sales for an inclusive window. Results are
// already restricted to settled statuses and the window; the engine does not
// filter again.
type LineRecordSource interface {
	FetchSettledLines(ctx context.Context, start, end models.DateOnly) ([]OrderLineRecord, error)
	FetchOrderTotals(ctx context.Context, start, end models.DateOnly) ([]OrderTotal, error)
}

const settledLinesSQL = `
SELECT
    t.order_id,
    i.name AS item_name,
    c.name AS category_name,
    oi.quantity,
    oi.price AS unit_price,
    oi.total AS subtotal,
    t.created_at,
    t.payment_via,
    rt.table_number,
    t.msisdn
FROM order_items oi
    JOIN transactions t ON oi.transaction_id = t.id
    JOIN items i ON oi.item_id = i.id
    LEFT JOIN categories c ON i.category_id = c.id
    LEFT JOIN restaurant_tables rt ON t.table_id = rt.id
WHERE t.status IN ({{ .statuses }})
    AND t.created_at >= ? AND t.created_at < ?
ORDER BY t.created_at, t.order_id, oi.id
`

const orderTotalsSQL = `
SELECT
    t.order_id,
    t.payment_via,
    t.total_amount,
    t.created_at
FROM transactions t
WHERE t.status IN ({{ .statuses }})
    AND t.created_at >= ? AND t.created_at < ?
ORDER BY t.created_at, t.order_id
`

type settledLineRow struct {
	OrderId      string
	ItemName     string
	CategoryName *string
	Quantity     int
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
	CreatedAt    time.Time
	PaymentVia   *string
	TableNumber  *string
	Msisdn       *string
}

type orderTotalRow struct {
	OrderId     string
	PaymentVia  *string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// GormLineSource reads settled sales from the order tables with raw SQL. A nil
// db means the process-wide connection from config.GetDB, resolved per query so
// the source can be built before the database is reachable.
//
// Timestamps are stored as UTC instants; loc decides which calendar day an
// order belongs to, so it must be the zone the service computes "today" in.
type GormLineSource struct {
	db          *gorm.DB
	phoneRegion string
	loc         *time.Location
}

func NewGormLineSource(db *gorm.DB, phoneRegion string, loc *time.Location) *GormLineSource {
	if loc == nil {
		loc = time.UTC
	}
	return &GormLineSource{db: db, phoneRegion: phoneRegion, loc: loc}
}

var _ LineRecordSource = (*GormLineSource)(nil)

func (s *GormLineSource) FetchSettledLines(ctx context.Context, start, end models.DateOnly) ([]OrderLineRecord, error) {
	ctx, span := tracer.Start(ctx, "GormLineSource.FetchSettledLines", windowAttributes(start, end))
	defer span.End()

	var rows []*settledLineRow
	if err := s.query(ctx, settledLinesSQL, start, end, &rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch settled lines")
		return nil, s.unavailable("FetchSettledLines", start, end, err)
	}

	records := make([]OrderLineRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toLineRecord(row, s.phoneRegion, s.loc))
	}
	span.SetAttributes(attribute.Int("lines", len(records)))
	return records, nil
}

func (s *GormLineSource) FetchOrderTotals(ctx context.Context, start, end models.DateOnly) ([]OrderTotal, error) {
	ctx, span := tracer.Start(ctx, "GormLineSource.FetchOrderTotals", windowAttributes(start, end))
	defer span.End()

	var rows []*orderTotalRow
	if err := s.query(ctx, orderTotalsSQL, start, end, &rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch order totals")
		return nil, s.unavailable("FetchOrderTotals", start, end, err)
	}

	totals := make([]OrderTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, OrderTotal{
			OrderId:       row.OrderId,
			PaymentMethod: utils.StringOr(row.PaymentVia, UnknownPaymentMethod),
			TotalAmount:   row.TotalAmount,
			OrderDate:     models.DateOf(row.CreatedAt, s.loc),
		})
	}
	span.SetAttributes(attribute.Int("orders", len(totals)))
	return totals, nil
}

func (s *GormLineSource) query(ctx context.Context, sqlT string, start, end models.DateOnly, dest any) error {
	db := s.db
	if db == nil {
		db = config.GetDB()
	}
	if db == nil {
		return errors.New("db is nil")
	}
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"statuses": settledStatusList(),
	})
	if err != nil {
		return err
	}
	from, until := s.instantBounds(start, end)
	return db.WithContext(ctx).Raw(sql, from, until).Scan(dest).Error
}

// instantBounds turns the inclusive calendar window into the half-open instant
// range [start 00:00, end+1 00:00) in the report zone.
func (s *GormLineSource) instantBounds(start, end models.DateOnly) (time.Time, time.Time) {
	from := time.Date(start.Time().Year(), start.Time().Month(), start.Time().Day(), 0, 0, 0, 0, s.loc)
	next := end.AddDays(1).Time()
	until := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, s.loc)
	return from, until
}

func (s *GormLineSource) unavailable(funcName string, start, end models.DateOnly, err error) error {
	data := logrus.Fields{"start": start.String(), "end": end.String(), "zone": s.loc.String()}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		data["mysql_code"] = myErr.Number
	}
	config.LogError(config.GetLogger(), "reports", funcName, "query", data, err)
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}

// settledStatusList renders the settled statuses as a SQL literal list. The
// values are compile-time constants, never user input.
func settledStatusList() string {
	statuses := models.SettledOrderStatuses()
	quoted := make([]string, 0, len(statuses))
	for _, st := range statuses {
		quoted = append(quoted, "'"+string(st)+"'")
	}
	return strings.Join(quoted, ",")
}

func toLineRecord(row *settledLineRow, phoneRegion string, loc *time.Location) OrderLineRecord {
	return OrderLineRecord{
		OrderId:        row.OrderId,
		ItemName:       row.ItemName,
		CategoryName:   utils.StringOr(row.CategoryName, UncategorizedName),
		UnitPrice:      row.UnitPrice,
		Quantity:       row.Quantity,
		LineSubtotal:   row.Subtotal,
		OrderDate:      models.DateOf(row.CreatedAt, loc),
		OrderTimestamp: row.CreatedAt.In(loc),
		PaymentMethod:  utils.StringOr(row.PaymentVia, UnknownPaymentMethod),
		TableLabel:     utils.DereferencePtr(row.TableNumber),
		CustomerPhone:  utils.FormatPhoneNumber(utils.DereferencePtr(row.Msisdn), phoneRegion),
	}
}

func windowAttributes(start, end models.DateOnly) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("window.start", start.String()),
		attribute.String("window.end", end.String()),
	)
}
