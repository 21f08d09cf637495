package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestStringOr(t *testing.T) {
	blank := "   "
	cash := " Cash "
	cases := []struct {
		in       *string
		expected string
	}{
		{nil, "Unknown"},
		{&blank, "Unknown"},
		{&cash, "Cash"},
	}
	for _, tc := range cases {
		if got := StringOr(tc.in, "Unknown"); got != tc.expected {
			t.Fatalf("StringOr expected %q, got %q", tc.expected, got)
		}
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	if got := FormatPhoneNumber("", "ET"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := FormatPhoneNumber("  12  ", "ET"); got != "12" {
		t.Fatalf("invalid numbers are returned trimmed, got %q", got)
	}
	if got := FormatPhoneNumber("0911234567", "ET"); !strings.HasPrefix(got, "+251") && got != "0911234567" {
		t.Fatalf("unexpected formatting %q", got)
	}
}

func TestExecTemplate(t *testing.T) {
	sql, err := ExecTemplate("status IN ({{ .statuses }})", map[string]interface{}{"statuses": "'a','b'"})
	if err != nil {
		t.Fatalf("ExecTemplate error: %v", err)
	}
	if sql != "status IN ('a','b')" {
		t.Fatalf("unexpected sql %q", sql)
	}
	if _, err := ExecTemplate("{{ .broken", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestProcessValidationErrors(t *testing.T) {
	type input struct {
		StartDate string `validate:"required"`
	}
	err := validator.New().Struct(input{})
	fields := ProcessValidationErrors(err)
	if fields["StartDate"] != "required" {
		t.Fatalf("expected StartDate=required, got %v", fields)
	}

	fields = ProcessValidationErrors(errors.New("unexpected EOF"))
	if fields["body"] != "unexpected EOF" {
		t.Fatalf("expected body error, got %v", fields)
	}
}
