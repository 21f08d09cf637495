package reports

import (
	"context"
	"sync"
	"time"

	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/shopspring/decimal"
)

var (
	may1  = models.NewDateOnly(2024, time.May, 1)
	may2  = models.NewDateOnly(2024, time.May, 2)
	may3  = models.NewDateOnly(2024, time.May, 3)
	may10 = models.NewDateOnly(2024, time.May, 10)
)

// lineAt builds a settled line whose subtotal is price*qty.
func lineAt(orderId, item, category, price string, qty int, day models.DateOnly, hour int, payment string) OrderLineRecord {
	p := decimal.RequireFromString(price)
	return OrderLineRecord{
		OrderId:        orderId,
		ItemName:       item,
		CategoryName:   category,
		UnitPrice:      p,
		Quantity:       qty,
		LineSubtotal:   p.Mul(decimal.NewFromInt(int64(qty))),
		OrderDate:      day,
		OrderTimestamp: day.Time().Add(time.Duration(hour) * time.Hour),
		PaymentMethod:  payment,
	}
}

func scenarioLines() []OrderLineRecord {
	return []OrderLineRecord{
		lineAt("A", "Burger", "Mains", "10", 2, may1, 12, "Cash"),
		lineAt("A", "Burger", "Mains", "10", 1, may1, 12, "Cash"),
		lineAt("B", "Fries", "Sides", "3", 4, may2, 13, "Card"),
	}
}

func findItem(items []*ItemAggregate, name, price string) *ItemAggregate {
	for _, it := range items {
		if it.ItemName == name && it.UnitPrice.Equal(decimal.RequireFromString(price)) {
			return it
		}
	}
	return nil
}

func findPayment(payments []*PaymentAggregate, method string) *PaymentAggregate {
	for _, p := range payments {
		if p.Method == method {
			return p
		}
	}
	return nil
}

// fakeSource serves fixed records and counts calls.
type fakeSource struct {
	mu         sync.Mutex
	lines      []OrderLineRecord
	totals     []OrderTotal
	linesErr   error
	totalsErr  error
	lineCalls  int
	totalCalls int
	lastStart  models.DateOnly
	lastEnd    models.DateOnly
}

func (f *fakeSource) FetchSettledLines(ctx context.Context, start, end models.DateOnly) ([]OrderLineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineCalls++
	f.lastStart, f.lastEnd = start, end
	if f.linesErr != nil {
		return nil, f.linesErr
	}
	return f.lines, nil
}

func (f *fakeSource) FetchOrderTotals(ctx context.Context, start, end models.DateOnly) ([]OrderTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	if f.totalsErr != nil {
		return nil, f.totalsErr
	}
	if f.totals == nil {
		return OrderTotalsFromLines(f.lines), nil
	}
	return f.totals, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
