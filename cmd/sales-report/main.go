package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmdatafocus/restaurant_backend/config"
	"github.com/mmdatafocus/restaurant_backend/models/reports"
	"github.com/mmdatafocus/restaurant_backend/utils"
)

func main() {
	from := flag.String("from", "", "Start date (YYYY-MM-DD). Defaults to today in the report timezone.")
	to := flag.String("to", "", "End date (YYYY-MM-DD). Defaults to today in the report timezone.")
	reportType := flag.String("type", string(reports.ReportTypeSummary), "Report type: summary, detailed, items, categories.")
	out := flag.String("out", "", "Output file. A .xlsx path writes a workbook; anything else (or empty for stdout) writes JSON.")
	staff := flag.String("staff", "SalesReportCLI", "Name stamped as the report author.")
	flushCache := flag.Bool("flush-cache", false, "Drop cached reports from redis and exit.")
	flag.Parse()

	ctx := context.Background()
	if *flushCache {
		connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		config.ConnectRedisWithRetry(connectCtx)
		removed, err := reports.InvalidateReportCache(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush report cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("removed %d cached reports\n", removed)
		return
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	ctx = utils.SetStaffNameInContext(ctx, *staff)

	loc := config.ReportLocation()
	svc := reports.NewService(
		reports.NewGormLineSource(config.GetDB(), config.PhoneRegion(), loc),
		reports.WithLocation(loc),
		reports.WithCache(false, 0),
	)
	today := svc.Today().String()
	in := reports.ReportRequestInput{
		WindowStart: strings.TrimSpace(*from),
		WindowEnd:   strings.TrimSpace(*to),
		ReportType:  *reportType,
	}
	if in.WindowStart == "" {
		in.WindowStart = today
	}
	if in.WindowEnd == "" {
		in.WindowEnd = today
	}

	report, err := svc.GenerateSalesReport(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate report: %v\n", err)
		if reports.IsValidationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if err := writeReport(report, *out, svc.Currency()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		os.Exit(1)
	}
}

func writeReport(report *reports.SalesReport, out string, currency string) error {
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := reports.WriteSalesReportExcel(report, f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s..%s: %d items, %d orders, %s -> %s\n",
			report.Title, report.WindowStart, report.WindowEnd,
			report.DistinctItemCount, report.DistinctOrderCount,
			utils.FormatMoney(report.GrandTotalAmount, currency), out)
		return nil
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
