package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	ItemsSheet    = "Items"
	PaymentsSheet = "Payments"
	SummarySheet  = "Summary"
	OrdersSheet   = "Orders"

	NoDataMessage = "No data for the selected period"
	// appended to the name of an item that sold at more than one price
	PriceVariesMarker = " *"

	tableHeaderRow = 4
)

var (
	itemHeadings    = []interface{}{"Item", "Category", "Unit Price", "Quantity", "Subtotal", "First Sold", "Last Sold"}
	paymentHeadings = []interface{}{"Payment Method", "Transactions", "Amount", "Percentage"}
	orderHeadings   = []interface{}{"Order ID", "Item", "Quantity", "Unit Price", "Subtotal", "Ordered At", "Payment", "Table", "Phone"}
)

// WriteSalesReportExcel renders report as an xlsx workbook. Detailed reports
// get an extra Orders sheet with the drill-down rows.
func WriteSalesReportExcel(report *SalesReport, w io.Writer) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return err
	}
	for _, name := range []string{PaymentsSheet, SummarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeItemsSheet(f, report, bold); err != nil {
		return err
	}
	if err := writePaymentsSheet(f, report, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, report, bold); err != nil {
		return err
	}
	if report.ReportType == ReportTypeDetailed && !report.IsEmpty() {
		if err := writeOrdersSheet(f, report, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheetTitle(f *excelize.File, sheet string, report *SalesReport, bold int) error {
	if err := f.SetCellValue(sheet, "A1", report.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	return f.SetCellValue(sheet, "A2", fmt.Sprintf("Period: %s to %s", report.WindowStart, report.WindowEnd))
}

func writeHeadings(f *excelize.File, sheet string, headings []interface{}, bold int) error {
	first, _ := excelize.CoordinatesToCellName(1, tableHeaderRow)
	last, _ := excelize.CoordinatesToCellName(len(headings), tableHeaderRow)
	if err := f.SetSheetRow(sheet, first, &headings); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, bold)
}

func writeItemsSheet(f *excelize.File, report *SalesReport, bold int) error {
	if err := writeSheetTitle(f, ItemsSheet, report, bold); err != nil {
		return err
	}
	if len(report.Items) == 0 {
		return f.SetCellValue(ItemsSheet, fmt.Sprintf("A%d", tableHeaderRow), NoDataMessage)
	}
	if err := writeHeadings(f, ItemsSheet, itemHeadings, bold); err != nil {
		return err
	}
	for i, it := range report.Items {
		name := it.ItemName
		if it.PriceVaries {
			name += PriceVariesMarker
		}
		cell, _ := excelize.CoordinatesToCellName(1, tableHeaderRow+1+i)
		row := []interface{}{
			name,
			it.CategoryName,
			it.UnitPrice.InexactFloat64(),
			it.TotalQuantity,
			it.TotalSubtotal.InexactFloat64(),
			it.FirstSeenDate.String(),
			it.LastSeenDate.String(),
		}
		if err := f.SetSheetRow(ItemsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ItemsSheet, "A", "B", 28)
}

func writePaymentsSheet(f *excelize.File, report *SalesReport, bold int) error {
	if err := writeSheetTitle(f, PaymentsSheet, report, bold); err != nil {
		return err
	}
	if len(report.Payments) == 0 {
		return f.SetCellValue(PaymentsSheet, fmt.Sprintf("A%d", tableHeaderRow), NoDataMessage)
	}
	if err := writeHeadings(f, PaymentsSheet, paymentHeadings, bold); err != nil {
		return err
	}
	for i, p := range report.Payments {
		cell, _ := excelize.CoordinatesToCellName(1, tableHeaderRow+1+i)
		row := []interface{}{
			p.Method,
			p.TransactionCount,
			p.TotalAmount.InexactFloat64(),
			p.Percentage.Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(PaymentsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(PaymentsSheet, "A", "A", 20)
}

func writeSummarySheet(f *excelize.File, report *SalesReport, bold int) error {
	if err := writeSheetTitle(f, SummarySheet, report, bold); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Total Quantity", report.GrandTotalQuantity},
		{"Total Amount", report.GrandTotalAmount.InexactFloat64()},
		{"Distinct Items", report.DistinctItemCount},
		{"Orders", report.DistinctOrderCount},
		{"Average Order Value", report.AverageOrderValue.Round(2).InexactFloat64()},
		{"Items per Order", report.ItemsPerOrder.Round(2).InexactFloat64()},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Generated By", report.GeneratedBy},
	}
	for i, row := range rows {
		r := row
		cell, _ := excelize.CoordinatesToCellName(1, tableHeaderRow+i)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(1, tableHeaderRow+len(rows)-1)
	if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", tableHeaderRow), last, bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func writeOrdersSheet(f *excelize.File, report *SalesReport, bold int) error {
	if _, err := f.NewSheet(OrdersSheet); err != nil {
		return err
	}
	if err := writeSheetTitle(f, OrdersSheet, report, bold); err != nil {
		return err
	}
	if err := writeHeadings(f, OrdersSheet, orderHeadings, bold); err != nil {
		return err
	}
	rowNo := tableHeaderRow + 1
	for _, it := range report.Items {
		for _, ref := range it.ContributingOrders {
			cell, _ := excelize.CoordinatesToCellName(1, rowNo)
			row := []interface{}{
				ref.OrderId,
				it.ItemName,
				ref.Quantity,
				ref.UnitPrice.InexactFloat64(),
				ref.Subtotal.InexactFloat64(),
				ref.OrderedAt.Format("2006-01-02 15:04"),
				ref.PaymentMethod,
				ref.TableLabel,
				ref.CustomerPhone,
			}
			if err := f.SetSheetRow(OrdersSheet, cell, &row); err != nil {
				return err
			}
			rowNo++
		}
	}
	return nil
}
