package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/restaurant_backend/models/reports"
	"github.com/mmdatafocus/restaurant_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func bindReportInput(c *gin.Context) (reports.ReportRequestInput, bool) {
	var in reports.ReportRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid request",
			"fields": utils.ProcessValidationErrors(err),
		})
		return in, false
	}
	return in, true
}

// writeReportError maps service errors to HTTP statuses.
func writeReportError(c *gin.Context, err error) {
	switch {
	case reports.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reports.ErrSourceUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sales data is temporarily unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func salesReportHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bindReportInput(c)
		if !ok {
			return
		}
		report, err := svc.GenerateSalesReport(c.Request.Context(), in)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func salesReportExportHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bindReportInput(c)
		if !ok {
			return
		}
		report, err := svc.GenerateSalesReport(c.Request.Context(), in)
		if err != nil {
			writeReportError(c, err)
			return
		}
		var buf bytes.Buffer
		if err := reports.WriteSalesReportExcel(report, &buf); err != nil {
			writeReportError(c, err)
			return
		}
		filename := fmt.Sprintf("sales-report-%s-%s.xlsx", report.WindowStart, report.WindowEnd)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func dashboardHandler(svc *reports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetDashboardStats(c.Request.Context())
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
