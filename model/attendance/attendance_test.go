package attendance

import (
	"testing"
	"time"

	"github.com/rectransport/rideshare"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToPresent(t *testing.T) {
	a := New("driver", time.Now(), "")
	assert.Equal(t, rideshare.AttendancePresent, a.Status)
	assert.NotEmpty(t, a.Id)

	assert.Equal(t, rideshare.AttendanceLate, New("driver", time.Now(), rideshare.AttendanceLate).Status)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(rideshare.AttendanceLeave))
	assert.False(t, ValidStatus("vacation"))
}

func TestFilterMatches(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	record := &Attendance{DriverId: "d1", Date: day(10)}

	assert.True(t, Filter{}.Matches(record))
	assert.True(t, Filter{DriverId: "d1", From: day(10), To: day(10)}.Matches(record))
	assert.False(t, Filter{DriverId: "d2"}.Matches(record))
	assert.False(t, Filter{From: day(11)}.Matches(record))
	assert.False(t, Filter{To: day(9)}.Matches(record))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "check_in", CheckInKey)
	assert.Equal(t, "notes", NotesKey)
}
