package reports

import "github.com/shopspring/decimal"

type ReportSummary struct {
	GrandTotalQuantity int
	GrandTotalAmount   decimal.Decimal
	// (name, price) pairs: a price-drifted item counts twice.
	DistinctItemCount  int
	DistinctOrderCount int
	AverageOrderValue  decimal.Decimal
	ItemsPerOrder      decimal.Decimal
}

// Summarize derives the scalar KPIs from item rows. Ratios are exactly zero
// when there are no orders.
func Summarize(items []*ItemAggregate) ReportSummary {
	summary := ReportSummary{
		GrandTotalAmount:  decimal.Zero,
		DistinctItemCount: len(items),
		AverageOrderValue: decimal.Zero,
		ItemsPerOrder:     decimal.Zero,
	}

	orders := make(map[string]struct{})
	for _, it := range items {
		summary.GrandTotalQuantity += it.TotalQuantity
		summary.GrandTotalAmount = summary.GrandTotalAmount.Add(it.TotalSubtotal)
		for _, ref := range it.ContributingOrders {
			orders[ref.OrderId] = struct{}{}
		}
	}
	summary.DistinctOrderCount = len(orders)

	if summary.DistinctOrderCount > 0 {
		n := decimal.NewFromInt(int64(summary.DistinctOrderCount))
		summary.AverageOrderValue = summary.GrandTotalAmount.Div(n)
		summary.ItemsPerOrder = decimal.NewFromInt(int64(summary.GrandTotalQuantity)).Div(n)
	}
	return summary
}
