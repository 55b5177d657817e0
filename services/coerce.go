package services

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// excelEpoch is the zero day of the workbook's serial date representation.
// Serial 1 is 1900-01-01 under the 1900 date system, so the epoch sits at
// 1899-12-30 to absorb the Lotus leap-year quirk.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order when coercing a date field. Day-first
// layouts come before month-first because quote inputs are UK-sourced.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2 January 2006",
	"02/01/06",
}

// Coerce converts a raw input string to the value written for the given
// kind. It never fails: when the input cannot be parsed to its declared
// kind the raw string is returned with warning set, and the caller logs it.
func Coerce(kind ValueKind, raw string) (value any, warning bool) {
	switch kind {
	case KindNumber:
		trimmed := strings.TrimSpace(raw)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f, false
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, false
		}
		return raw, true

	case KindDate:
		trimmed := strings.TrimSpace(raw)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return dateToSerial(t), false
			}
		}
		return raw, true

	case KindDropdown:
		// The workbook's own validation is authoritative; values from
		// trusted upstream systems must not be rejected by a stale
		// local mirror.
		return raw, false

	default: // KindText
		return stripControl(raw), false
	}
}

// dateToSerial converts a calendar date to the workbook's serial day count.
func dateToSerial(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(excelEpoch).Hours() / 24)
}

// stripControl removes control characters from text input, keeping tabs
// and newlines out of single-cell values as well.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
