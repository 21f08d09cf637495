package reports

import (
	"time"

	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/shopspring/decimal"
)

const (
	UncategorizedName    = "Uncategorized"
	UnknownPaymentMethod = "Unknown"
)

// OrderLineRecord is one sold line of a settled order.
type OrderLineRecord struct {
	OrderId        string          `json:"orderId"`
	ItemName       string          `json:"itemName"`
	CategoryName   string          `json:"categoryName"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	LineSubtotal   decimal.Decimal `json:"lineSubtotal"`
	OrderDate      models.DateOnly `json:"orderDate"`
	OrderTimestamp time.Time       `json:"orderTimestamp"`
	PaymentMethod  string          `json:"paymentMethod"`
	TableLabel     string          `json:"tableLabel,omitempty"`
	CustomerPhone  string          `json:"customerPhone,omitempty"`
}

// OrderTotal is the order level view used for payment analysis: one row per order.
type OrderTotal struct {
	OrderId       string          `json:"orderId"`
	PaymentMethod string          `json:"paymentMethod"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OrderDate     models.DateOnly `json:"orderDate"`
}

// ItemAggregateKey identifies one item row. UnitPrice holds the canonical
// decimal string so 10 and 10.00 are the same key.
type ItemAggregateKey struct {
	ItemName  string
	UnitPrice string
}

func keyOf(itemName string, unitPrice decimal.Decimal) ItemAggregateKey {
	return ItemAggregateKey{ItemName: itemName, UnitPrice: unitPrice.String()}
}

// OrderReference is the drill-down row kept for every line folded into an aggregate.
type OrderReference struct {
	OrderId       string          `json:"orderId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OrderedAt     time.Time       `json:"orderedAt"`
	PaymentMethod string          `json:"paymentMethod"`
	TableLabel    string          `json:"tableLabel,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
}

type ItemAggregate struct {
	ItemName           string           `json:"itemName"`
	CategoryName       string           `json:"categoryName"`
	UnitPrice          decimal.Decimal  `json:"unitPrice"`
	TotalQuantity      int              `json:"totalQuantity"`
	TotalSubtotal      decimal.Decimal  `json:"totalSubtotal"`
	FirstSeenDate      models.DateOnly  `json:"firstSeenDate"`
	LastSeenDate       models.DateOnly  `json:"lastSeenDate"`
	LastOrderAt        time.Time        `json:"lastOrderAt"`
	PriceVaries        bool             `json:"priceVaries"`
	ContributingOrders []OrderReference `json:"contributingOrders"`
}

func (a *ItemAggregate) Key() ItemAggregateKey {
	return keyOf(a.ItemName, a.UnitPrice)
}

type PaymentAggregate struct {
	Method           string          `json:"method"`
	TransactionCount int             `json:"transactionCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// SalesReport is the single value handed to renderers. It holds no references
// back into storage and is not modified after BuildSalesReport returns it.
type SalesReport struct {
	WindowStart         models.DateOnly     `json:"windowStart"`
	WindowEnd           models.DateOnly     `json:"windowEnd"`
	RequestedReportType string              `json:"requestedReportType"`
	ReportType          ReportType          `json:"reportType"`
	Title               string              `json:"title"`
	OrderingRule        OrderingRule        `json:"orderingRule"`
	Items               []*ItemAggregate    `json:"items"`
	Payments            []*PaymentAggregate `json:"payments"`
	GrandTotalQuantity  int                 `json:"grandTotalQuantity"`
	GrandTotalAmount    decimal.Decimal     `json:"grandTotalAmount"`
	DistinctItemCount   int                 `json:"distinctItemCount"`
	DistinctOrderCount  int                 `json:"distinctOrderCount"`
	AverageOrderValue   decimal.Decimal     `json:"averageOrderValue"`
	ItemsPerOrder       decimal.Decimal     `json:"itemsPerOrder"`
	GeneratedAt         time.Time           `json:"generatedAt"`
	GeneratedBy         string              `json:"generatedBy,omitempty"`
}

// IsEmpty reports a window without settled sales; renderers show "no data".
func (r *SalesReport) IsEmpty() bool {
	return r == nil || (len(r.Items) == 0 && len(r.Payments) == 0)
}

// ReportMeta carries the presentation fields stamped on a report.
type ReportMeta struct {
	GeneratedAt time.Time
	GeneratedBy string
}

// BuildSalesReport runs the aggregation pipeline over already fetched records.
// lines and totals are only read.
func BuildSalesReport(req *ReportRequest, lines []OrderLineRecord, totals []OrderTotal, meta ReportMeta) *SalesReport {
	items := AggregateItems(lines, req.ReportType)
	payments := AnalyzePayments(totals)
	summary := Summarize(items)

	return &SalesReport{
		WindowStart:         req.WindowStart,
		WindowEnd:           req.WindowEnd,
		RequestedReportType: req.RequestedReportType,
		ReportType:          req.ReportType,
		Title:               req.ReportType.Title(),
		OrderingRule:        OrderingFor(req.ReportType),
		Items:               items,
		Payments:            payments,
		GrandTotalQuantity:  summary.GrandTotalQuantity,
		GrandTotalAmount:    summary.GrandTotalAmount,
		DistinctItemCount:   summary.DistinctItemCount,
		DistinctOrderCount:  summary.DistinctOrderCount,
		AverageOrderValue:   summary.AverageOrderValue,
		ItemsPerOrder:       summary.ItemsPerOrder,
		GeneratedAt:         meta.GeneratedAt,
		GeneratedBy:         meta.GeneratedBy,
	}
}
