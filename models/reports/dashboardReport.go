package reports

import (
	"sort"

	"github.com/mmdatafocus/restaurant_backend/models"
	"github.com/shopspring/decimal"
)

// DashboardWindowDays is the length of the rolling dashboard window, today included.
const DashboardWindowDays = 30

const dashboardTopItems = 5

type DashboardStats struct {
	WindowStart       models.DateOnly `json:"windowStart"`
	WindowEnd         models.DateOnly `json:"windowEnd"`
	Currency          string          `json:"currency"`
	TotalSales        decimal.Decimal `json:"totalSales"`
	OrderCount        int             `json:"orderCount"`
	ItemsSold         int             `json:"itemsSold"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TodaySales        decimal.Decimal `json:"todaySales"`
	YesterdaySales    decimal.Decimal `json:"yesterdaySales"`
	// percent change of today against yesterday; zero when yesterday had no sales
	DayOverDayChange decimal.Decimal  `json:"dayOverDayChange"`
	TopItems         []*DashboardItem `json:"topItems"`
}

// DashboardItem totals one dish across every price it sold at.
type DashboardItem struct {
	ItemName string          `json:"itemName"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// DashboardWindow returns the inclusive rolling window ending today.
func DashboardWindow(today models.DateOnly) (models.DateOnly, models.DateOnly) {
	return today.AddDays(-(DashboardWindowDays - 1)), today
}

// BuildDashboardStats summarizes the rolling window. totals give the money
// figures (one row per order), lines give the item counts. Rows outside the
// window are ignored.
func BuildDashboardStats(totals []OrderTotal, lines []OrderLineRecord, today models.DateOnly) *DashboardStats {
	start, end := DashboardWindow(today)
	yesterday := today.AddDays(-1)
	inWindow := func(d models.DateOnly) bool {
		return !d.Before(start) && !d.After(end)
	}

	stats := &DashboardStats{
		WindowStart:       start,
		WindowEnd:         end,
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TodaySales:        decimal.Zero,
		YesterdaySales:    decimal.Zero,
		DayOverDayChange:  decimal.Zero,
		TopItems:          make([]*DashboardItem, 0),
	}

	seen := make(map[string]struct{}, len(totals))
	for _, t := range totals {
		if !inWindow(t.OrderDate) {
			continue
		}
		if _, dup := seen[t.OrderId]; dup {
			continue
		}
		seen[t.OrderId] = struct{}{}
		stats.OrderCount++
		stats.TotalSales = stats.TotalSales.Add(t.TotalAmount)
		switch {
		case t.OrderDate.Equal(today):
			stats.TodaySales = stats.TodaySales.Add(t.TotalAmount)
		case t.OrderDate.Equal(yesterday):
			stats.YesterdaySales = stats.YesterdaySales.Add(t.TotalAmount)
		}
	}

	byName := make(map[string]*DashboardItem)
	for _, line := range lines {
		if !inWindow(line.OrderDate) {
			continue
		}
		stats.ItemsSold += line.Quantity
		item, ok := byName[line.ItemName]
		if !ok {
			item = &DashboardItem{ItemName: line.ItemName, Amount: decimal.Zero}
			byName[line.ItemName] = item
			stats.TopItems = append(stats.TopItems, item)
		}
		item.Quantity += line.Quantity
		item.Amount = item.Amount.Add(line.LineSubtotal)
	}

	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.TotalSales.Div(decimal.NewFromInt(int64(stats.OrderCount)))
	}
	if !stats.YesterdaySales.IsZero() {
		stats.DayOverDayChange = percentOf(stats.TodaySales.Sub(stats.YesterdaySales), stats.YesterdaySales)
	}

	sort.SliceStable(stats.TopItems, func(i, j int) bool {
		a, b := stats.TopItems[i], stats.TopItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ItemName < b.ItemName
	})
	if len(stats.TopItems) > dashboardTopItems {
		stats.TopItems = stats.TopItems[:dashboardTopItems]
	}
	return stats
}
