package reports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmdatafocus/restaurant_backend/models"
)

var (
	ErrMissingDate       = errors.New("missing date")
	ErrInvertedRange     = errors.New("inverted date range")
	ErrFutureDate        = errors.New("future date")
	ErrSourceUnavailable = errors.New("sales data source unavailable")
)

// IsValidationError reports whether err rejects the request itself, as opposed
// to a failure while producing the report.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingDate) || errors.Is(err, ErrInvertedRange) || errors.Is(err, ErrFutureDate)
}

// ReportRequestInput holds the raw values a caller submitted.
type ReportRequestInput struct {
	WindowStart string `json:"start_date" form:"start_date" binding:"required"`
	WindowEnd   string `json:"end_date" form:"end_date" binding:"required"`
	ReportType  string `json:"report_type" form:"report_type"`
}

type ReportRequest struct {
	WindowStart         models.DateOnly
	WindowEnd           models.DateOnly
	ReportType          ReportType
	RequestedReportType string
}

// ValidateReportRequest checks the window against today and normalizes the
// report type. today is injected so the check is reproducible.
func ValidateReportRequest(in ReportRequestInput, today models.DateOnly) (*ReportRequest, error) {
	if strings.TrimSpace(in.WindowStart) == "" || strings.TrimSpace(in.WindowEnd) == "" {
		return nil, fmt.Errorf("%w: please select both start and end dates", ErrMissingDate)
	}
	start, err := models.ParseDateOnly(in.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrMissingDate, in.WindowStart)
	}
	end, err := models.ParseDateOnly(in.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrMissingDate, in.WindowEnd)
	}

	if start.After(end) {
		return nil, fmt.Errorf("%w: start date cannot be after end date", ErrInvertedRange)
	}
	if start.After(today) || end.After(today) {
		return nil, fmt.Errorf("%w: date cannot be in the future", ErrFutureDate)
	}

	return &ReportRequest{
		WindowStart:         start,
		WindowEnd:           end,
		ReportType:          ParseReportType(in.ReportType),
		RequestedReportType: in.ReportType,
	}, nil
}
