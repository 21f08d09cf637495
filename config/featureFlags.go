package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultReportTimezone = "Africa/Addis_Ababa"
	defaultCurrency       = "ETB"
	defaultPhoneRegion    = "ET"
)

func envTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y" || v == "on"
}

// ReportCacheEnabled turns on the redis cache for generated sales reports.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return envTrue("ENABLE_REPORT_CACHE")
}

// ReportCacheTTL reads REPORT_CACHE_TTL_SECONDS (default 120s).
func ReportCacheTTL() time.Duration {
	return time.Duration(intFromEnv("REPORT_CACHE_TTL_SECONDS", 120)) * time.Second
}

// ReportSlowThreshold reads REPORT_SLOW_MS (default 500ms).
func ReportSlowThreshold() time.Duration {
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// ReportLocation is the zone that decides what "today" means for report windows.
// Falls back to UTC when REPORT_TIMEZONE cannot be loaded.
func ReportLocation() *time.Location {
	tz := strings.TrimSpace(os.Getenv("REPORT_TIMEZONE"))
	if tz == "" {
		tz = defaultReportTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		GetLogger().WithField("timezone", tz).Warn("cannot load report timezone, using UTC: " + err.Error())
		return time.UTC
	}
	return loc
}

func ReportCurrency() string {
	if v := strings.TrimSpace(os.Getenv("REPORT_CURRENCY")); v != "" {
		return v
	}
	return defaultCurrency
}

// PhoneRegion is the default region used to parse customer phone numbers.
func PhoneRegion() string {
	if v := strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_PHONE_REGION"))); v != "" {
		return v
	}
	return defaultPhoneRegion
}

// RedisEnabled reports whether main should connect to redis. Session
// revocation needs it whenever REDIS_ADDRESS is set; the report cache needs it
// whenever ENABLE_REPORT_CACHE is on.
func RedisEnabled() bool {
	return strings.TrimSpace(os.Getenv("REDIS_ADDRESS")) != "" || ReportCacheEnabled()
}

func JwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func SkipMigrations() bool {
	return envTrue("SKIP_MIGRATIONS")
}

func RateLimitEnabled() bool {
	return envTrue("RATE_LIMIT_ENABLED")
}

// RateLimit returns max requests per window (RATE_LIMIT_MAX_REQUESTS, RATE_LIMIT_WINDOW_SECONDS).
func RateLimit() (int64, time.Duration) {
	limit := intFromEnv("RATE_LIMIT_MAX_REQUESTS", 60)
	window := intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = 60
	}
	return int64(limit), time.Duration(window) * time.Second
}
