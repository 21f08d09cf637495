package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// SettledOrderStatuses are the statuses that count towards sales figures.
func SettledOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusConfirmed, OrderStatusCompleted}
}

func (s OrderStatus) IsSettled() bool {
	for _, st := range SettledOrderStatuses() {
		if s == st {
			return true
		}
	}
	return false
}

type StaffRole string

const (
	StaffRoleSuperAdmin StaffRole = "super_admin"
	StaffRoleAdmin      StaffRole = "admin"
	StaffRoleWaiter     StaffRole = "waiter"
	StaffRoleChef       StaffRole = "chef"
	StaffRoleCashier    StaffRole = "cashier"
)

// ReportRoles may generate sales reports.
func ReportRoles() []StaffRole {
	return []StaffRole{StaffRoleSuperAdmin, StaffRoleAdmin, StaffRoleCashier}
}

const DateLayout = "2006-01-02"

// DateOnly is a calendar date without a time of day. The underlying time is
// always midnight UTC so two DateOnly values compare by their calendar day.
type DateOnly time.Time

func NewDateOnly(year int, month time.Month, day int) DateOnly {
	return DateOnly(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t as seen in loc.
func DateOf(t time.Time, loc *time.Location) DateOnly {
	if loc != nil {
		t = t.In(loc)
	}
	return NewDateOnly(t.Year(), t.Month(), t.Day())
}

func ParseDateOnly(s string) (DateOnly, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateOnly{}, errors.New("date is empty")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return DateOnly{}, errors.New("error parsing date, expected YYYY-MM-DD")
	}
	return DateOnly(t), nil
}

func (d DateOnly) Time() time.Time {
	return time.Time(d)
}

func (d DateOnly) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d DateOnly) String() string {
	return time.Time(d).Format(DateLayout)
}

func (d DateOnly) Before(o DateOnly) bool {
	return time.Time(d).Before(time.Time(o))
}

func (d DateOnly) After(o DateOnly) bool {
	return time.Time(d).After(time.Time(o))
}

func (d DateOnly) Equal(o DateOnly) bool {
	return time.Time(d).Equal(time.Time(o))
}

func (d DateOnly) AddDays(n int) DateOnly {
	return DateOnly(time.Time(d).AddDate(0, 0, n))
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DateOnly{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("DateOnly must be string")
	}
	parsed, err := ParseDateOnly(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
