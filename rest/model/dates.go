package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	rideshare.ISODateLayout,
}

// ParseISOTime parses an ISO-8601 date or timestamp. A trailing "Z" and
// numeric offsets are accepted; timestamps without a zone are UTC.
func ParseISOTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("'%s' is not an ISO-8601 date", value)
}

// ParseDayMonthYear parses a DD-MM-YYYY date.
func ParseDayMonthYear(value string) (time.Time, error) {
	t, err := time.Parse(rideshare.DayMonthYearLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.Errorf("'%s' is not a DD-MM-YYYY date", value)
	}
	return t, nil
}

// ParseFlexibleDate accepts ISO-8601 first and DD-MM-YYYY second.
func ParseFlexibleDate(value string) (time.Time, error) {
	if t, err := ParseISOTime(value); err == nil {
		return t, nil
	}
	if t, err := ParseDayMonthYear(value); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Errorf("invalid date '%s': expected ISO-8601 or DD-MM-YYYY", value)
}

// ParseOptionalTime parses an optional ISO-8601 timestamp. Nil and empty
// values yield nil.
func ParseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := ParseISOTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// timePtr returns nil for the zero time.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
