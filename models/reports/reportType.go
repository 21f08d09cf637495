package reports

import "strings"

type ReportType string

const (
	ReportTypeSummary    ReportType = "summary"
	ReportTypeDetailed   ReportType = "detailed"
	ReportTypeItems      ReportType = "items"
	ReportTypeCategories ReportType = "categories"
)

var reportTitles = map[ReportType]string{
	ReportTypeSummary:    "SALES SUMMARY REPORT",
	ReportTypeDetailed:   "DETAILED SALES REPORT",
	ReportTypeItems:      "ITEM PERFORMANCE REPORT",
	ReportTypeCategories: "CATEGORY SALES REPORT",
}

// ParseReportType normalizes a caller supplied tag. Anything outside the known
// set (including the legacy "sales" tag) is a summary report.
func ParseReportType(raw string) ReportType {
	t := ReportType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := reportTitles[t]; ok {
		return t
	}
	return ReportTypeSummary
}

func (t ReportType) IsValid() bool {
	_, ok := reportTitles[t]
	return ok
}

func (t ReportType) Title() string {
	if title, ok := reportTitles[t]; ok {
		return title
	}
	return "SALES REPORT"
}

// OrderingRule names the sort applied to item rows so a rendered report can be
// reproduced.
type OrderingRule string

const (
	OrderByItemNameThenQuantity OrderingRule = "item_name,quantity_desc"
	OrderByCategoryThenItemName OrderingRule = "category_name,item_name"
	OrderByMostRecentOrder      OrderingRule = "last_order_desc,item_name"
)

func OrderingFor(t ReportType) OrderingRule {
	switch t {
	case ReportTypeItems:
		return OrderByItemNameThenQuantity
	case ReportTypeCategories:
		return OrderByCategoryThenItemName
	default:
		return OrderByMostRecentOrder
	}
}
