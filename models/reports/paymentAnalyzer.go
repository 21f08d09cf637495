package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AnalyzePayments groups settled orders by payment method. Each order counts
// once even if the source repeats it.
func AnalyzePayments(totals []OrderTotal) []*PaymentAggregate {
	seenOrders := make(map[string]struct{}, len(totals))
	byMethod := make(map[string]*PaymentAggregate)
	payments := make([]*PaymentAggregate, 0)
	overall := decimal.Zero

	for _, t := range totals {
		if _, dup := seenOrders[t.OrderId]; dup {
			continue
		}
		seenOrders[t.OrderId] = struct{}{}

		method := strings.TrimSpace(t.PaymentMethod)
		if method == "" {
			method = UnknownPaymentMethod
		}
		agg, ok := byMethod[method]
		if !ok {
			agg = &PaymentAggregate{Method: method, TotalAmount: decimal.Zero, Percentage: decimal.Zero}
			byMethod[method] = agg
			payments = append(payments, agg)
		}
		agg.TransactionCount++
		agg.TotalAmount = agg.TotalAmount.Add(t.TotalAmount)
		overall = overall.Add(t.TotalAmount)
	}

	for _, p := range payments {
		p.Percentage = percentOf(p.TotalAmount, overall)
	}

	sort.SliceStable(payments, func(i, j int) bool {
		a, b := payments[i], payments[j]
		if !a.TotalAmount.Equal(b.TotalAmount) {
			return a.TotalAmount.GreaterThan(b.TotalAmount)
		}
		return a.Method < b.Method
	})
	return payments
}

// percentOf returns part/whole*100, or zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

// OrderTotalsFromLines derives one OrderTotal per order by summing its line
// subtotals. Only for sources that cannot supply order level totals: the
// stored order total may include adjustments that lines do not carry.
func OrderTotalsFromLines(lines []OrderLineRecord) []OrderTotal {
	index := make(map[string]int, len(lines))
	totals := make([]OrderTotal, 0)
	for _, line := range lines {
		i, ok := index[line.OrderId]
		if !ok {
			index[line.OrderId] = len(totals)
			totals = append(totals, OrderTotal{
				OrderId:       line.OrderId,
				PaymentMethod: line.PaymentMethod,
				TotalAmount:   line.LineSubtotal,
				OrderDate:     line.OrderDate,
			})
			continue
		}
		totals[i].TotalAmount = totals[i].TotalAmount.Add(line.LineSubtotal)
	}
	return totals
}
