package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AggregateItems folds line records into one row per (item name, unit price)
// and orders the rows for reportType.
//
// The same dish sold at two prices during the window yields two rows, both
// flagged PriceVaries. Subtotals are summed as stored, never recomputed from
// price and quantity.
func AggregateItems(lines []OrderLineRecord, reportType ReportType) []*ItemAggregate {
	byKey := make(map[ItemAggregateKey]*ItemAggregate, len(lines))
	items := make([]*ItemAggregate, 0, len(lines))

	for _, line := range lines {
		key := keyOf(line.ItemName, line.UnitPrice)
		agg, ok := byKey[key]
		if !ok {
			category := line.CategoryName
			if category == "" {
				category = UncategorizedName
			}
			agg = &ItemAggregate{
				ItemName:      line.ItemName,
				CategoryName:  category,
				UnitPrice:     line.UnitPrice,
				TotalSubtotal: decimal.Zero,
				FirstSeenDate: line.OrderDate,
				LastSeenDate:  line.OrderDate,
				LastOrderAt:   line.OrderTimestamp,
			}
			byKey[key] = agg
			items = append(items, agg)
		}

		agg.TotalQuantity += line.Quantity
		agg.TotalSubtotal = agg.TotalSubtotal.Add(line.LineSubtotal)
		if line.OrderDate.Before(agg.FirstSeenDate) {
			agg.FirstSeenDate = line.OrderDate
		}
		if line.OrderDate.After(agg.LastSeenDate) {
			agg.LastSeenDate = line.OrderDate
		}
		if line.OrderTimestamp.After(agg.LastOrderAt) {
			agg.LastOrderAt = line.OrderTimestamp
		}

		payment := line.PaymentMethod
		if payment == "" {
			payment = UnknownPaymentMethod
		}
		agg.ContributingOrders = append(agg.ContributingOrders, OrderReference{
			OrderId:       line.OrderId,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			Subtotal:      line.LineSubtotal,
			OrderedAt:     line.OrderTimestamp,
			PaymentMethod: payment,
			TableLabel:    line.TableLabel,
			CustomerPhone: line.CustomerPhone,
		})
	}

	flagPriceDrift(items)
	sortItems(items, OrderingFor(reportType))
	return items
}

// flagPriceDrift marks every row whose item name appears under two or more prices.
func flagPriceDrift(items []*ItemAggregate) {
	pricesByName := make(map[string]int, len(items))
	for _, it := range items {
		// keys are unique, so each row is one distinct price for its name
		pricesByName[it.ItemName]++
	}
	for _, it := range items {
		it.PriceVaries = pricesByName[it.ItemName] > 1
	}
}

func sortItems(items []*ItemAggregate, rule OrderingRule) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch rule {
		case OrderByItemNameThenQuantity:
			if a.ItemName != b.ItemName {
				return a.ItemName < b.ItemName
			}
			if a.TotalQuantity != b.TotalQuantity {
				return a.TotalQuantity > b.TotalQuantity
			}
		case OrderByCategoryThenItemName:
			if a.CategoryName != b.CategoryName {
				return a.CategoryName < b.CategoryName
			}
		default:
			if !a.LastOrderAt.Equal(b.LastOrderAt) {
				return a.LastOrderAt.After(b.LastOrderAt)
			}
		}
		if a.ItemName != b.ItemName {
			return a.ItemName < b.ItemName
		}
		return a.UnitPrice.LessThan(b.UnitPrice)
	})
}
