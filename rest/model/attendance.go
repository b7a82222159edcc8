package model

import (
	"fmt"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/attendance"
)

// APIAttendance is an attendance record with the driver's name.
type APIAttendance struct {
	Id           *string    `json:"id"`
	DriverId     *string    `json:"driver_id"`
	DriverName   *string    `json:"driver_name"`
	Date         *time.Time `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Status       *string    `json:"status"`
	Notes        *string    `json:"notes"`
}

// BuildFromService converts a record. An empty driver name renders as
// unknown.
func (a *APIAttendance) BuildFromService(in attendance.Attendance, driverName string) {
	if driverName == "" {
		driverName = rideshare.Unknown
	}
	a.Id = utility.ToStringPtr(in.Id)
	a.DriverId = utility.ToStringPtr(in.DriverId)
	a.DriverName = utility.ToStringPtr(driverName)
	a.Date = timePtr(in.Date)
	a.CheckInTime = in.CheckIn
	a.CheckOutTime = in.CheckOut
	a.Status = utility.ToStringPtr(in.Status)
	a.Notes = utility.ToStringPtr(in.Notes)
}

// APIAttendanceSummary is returned after a record is written.
type APIAttendanceSummary struct {
	Id       string     `json:"id"`
	DriverId string     `json:"driver_id"`
	Date     *time.Time `json:"date"`
	Status   string     `json:"status"`
}

func (s *APIAttendanceSummary) BuildFromService(in attendance.Attendance) {
	s.Id = in.Id
	s.DriverId = in.DriverId
	s.Date = timePtr(in.Date)
	s.Status = in.Status
}

// APIAttendanceCreate is the body of a request recording a driver's day.
type APIAttendanceCreate struct {
	DriverId     string  `json:"driver_id"`
	Date         string  `json:"date"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes"`
}

func (c *APIAttendanceCreate) ToService() (*attendance.Attendance, error) {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.DriverId == "", "driver_id is required")
	catcher.NewWhen(c.Date == "", "date is required")
	catcher.ErrorfWhen(c.Status != "" && !attendance.ValidStatus(c.Status), "invalid status '%s'", c.Status)
	if catcher.HasErrors() {
		return nil, catcher.Resolve()
	}

	date, err := ParseFlexibleDate(c.Date)
	if err != nil {
		return nil, err
	}
	a := attendance.New(c.DriverId, date, c.Status)
	a.Notes = c.Notes
	if a.CheckIn, err = ParseOptionalTime(c.CheckInTime); err != nil {
		return nil, errors.Wrap(err, "invalid check_in_time")
	}
	if a.CheckOut, err = ParseOptionalTime(c.CheckOutTime); err != nil {
		return nil, errors.Wrap(err, "invalid check_out_time")
	}
	return a, nil
}

// APIAttendanceUpdate is the body of an attendance update. Omitted fields
// are left unchanged; an empty check in/out time clears it.
type APIAttendanceUpdate struct {
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

// Apply writes the update onto a.
func (u *APIAttendanceUpdate) Apply(a *attendance.Attendance) error {
	if u.Status != nil {
		if !attendance.ValidStatus(*u.Status) {
			return errors.Errorf("invalid status '%s'", *u.Status)
		}
		a.Status = *u.Status
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	var err error
	if u.CheckInTime != nil {
		if a.CheckIn, err = ParseOptionalTime(u.CheckInTime); err != nil {
			return errors.Wrap(err, "invalid check_in_time")
		}
	}
	if u.CheckOutTime != nil {
		if a.CheckOut, err = ParseOptionalTime(u.CheckOutTime); err != nil {
			return errors.Wrap(err, "invalid check_out_time")
		}
	}
	return nil
}

// AttendanceFilter builds a filter from query parameters. Bounds that do
// not parse are ignored.
func AttendanceFilter(driverId, startDate, endDate string) attendance.Filter {
	f := attendance.Filter{DriverId: driverId}
	if startDate != "" {
		if t, err := ParseFlexibleDate(startDate); err == nil {
			f.From = t
		}
	}
	if endDate != "" {
		if t, err := ParseFlexibleDate(endDate); err == nil {
			f.To = t
		}
	}
	return f
}

// AttendanceMessage describes a written record for the response body.
func AttendanceMessage(verb string, a attendance.Attendance) string {
	return fmt.Sprintf("Attendance %s for driver %s on %s", verb, a.DriverId, a.Date.Format(rideshare.ISODateLayout))
}
