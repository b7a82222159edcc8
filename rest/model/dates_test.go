package model

import (
	"testing"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	expected := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	for name, input := range map[string]string{
		"ISODate":      "2024-03-05",
		"ISOTimestamp": "2024-03-05T00:00:00Z",
		"NoZone":       "2024-03-05T00:00:00",
		"DayMonthYear": "05-03-2024",
		"Padded":       "  05-03-2024 ",
	} {
		t.Run(name, func(t *testing.T) {
			date, err := ParseFlexibleDate(input)
			require.NoError(t, err)
			assert.True(t, expected.Equal(date), "got %s", date)
		})
	}

	_, err := ParseFlexibleDate("March 5th")
	assert.Error(t, err)
	_, err = ParseFlexibleDate("2024/03/05")
	assert.Error(t, err)
}

func TestParseDayMonthYearRejectsISO(t *testing.T) {
	_, err := ParseDayMonthYear("2024-03-05")
	assert.Error(t, err)

	date, err := ParseDayMonthYear("31-12-2025")
	require.NoError(t, err)
	assert.Equal(t, time.December, date.Month())
	assert.Equal(t, 31, date.Day())
}

func TestParseOptionalTime(t *testing.T) {
	parsed, err := ParseOptionalTime(nil)
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = ParseOptionalTime(utility.ToStringPtr(""))
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = ParseOptionalTime(utility.ToStringPtr("2024-03-05T09:30:00+05:30"))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, 4, parsed.UTC().Hour())

	_, err = ParseOptionalTime(utility.ToStringPtr("half past nine"))
	assert.Error(t, err)
}
