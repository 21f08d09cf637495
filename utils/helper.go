package utils

import (
	"bytes"
	"errors"
	"strings"
	"text/template"

	"github.com/ttacon/libphonenumber"
)

func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// StringOr returns the trimmed value of ptr, or fallback when ptr is nil or blank.
func StringOr(ptr *string, fallback string) string {
	if ptr == nil {
		return fallback
	}
	if v := strings.TrimSpace(*ptr); v != "" {
		return v
	}
	return fallback
}

// FormatPhoneNumber renders a customer number in international format for display.
// Numbers libphonenumber cannot validate are returned trimmed but otherwise untouched.
func FormatPhoneNumber(phoneNumber, countryCode string) string {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return ""
	}
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return phoneNumber
	}
	return libphonenumber.Format(p, libphonenumber.INTERNATIONAL)
}
