package model

import (
	"net/http"
	"testing"
	"time"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVehicle() APIVehicleCreate {
	return APIVehicleCreate{
		VehicleMake:   utility.ToStringPtr("Toyota"),
		VehicleModel:  utility.ToStringPtr("Innova"),
		VehicleYear:   utility.ToIntPtr(2022),
		LicensePlate:  utility.ToStringPtr("KA01AB1234"),
		VehicleColor:  utility.ToStringPtr("White"),
		LicenseNumber: utility.ToStringPtr("DL-42"),
		LicenseExpiry: utility.ToStringPtr("31-12-2027"),
	}
}

func TestVehicleCreate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := validVehicle()
		v, err := req.ToService()
		require.NoError(t, err)
		assert.NotEmpty(t, v.Id)
		assert.Equal(t, "Toyota", v.Make)
		assert.Equal(t, 2027, v.LicenseExpiry.Year())

		out := APIVehicle{}
		out.BuildFromService(*v)
		assert.Equal(t, "31-12-2027", utility.FromStringPtr(out.LicenseExpiry))
		assert.Equal(t, VehicleSourceFleet, out.Source)
		assert.Nil(t, out.DriverId)
	})
	for field, reset := range map[string]func(*APIVehicleCreate){
		"vehicle_make":   func(v *APIVehicleCreate) { v.VehicleMake = nil },
		"vehicle_model":  func(v *APIVehicleCreate) { v.VehicleModel = utility.ToStringPtr(" ") },
		"vehicle_year":   func(v *APIVehicleCreate) { v.VehicleYear = nil },
		"license_plate":  func(v *APIVehicleCreate) { v.LicensePlate = nil },
		"vehicle_color":  func(v *APIVehicleCreate) { v.VehicleColor = nil },
		"license_number": func(v *APIVehicleCreate) { v.LicenseNumber = nil },
		"license_expiry": func(v *APIVehicleCreate) { v.LicenseExpiry = utility.ToStringPtr("") },
	} {
		t.Run("Missing_"+field, func(t *testing.T) {
			req := validVehicle()
			reset(&req)
			_, err := req.ToService()
			require.Error(t, err)
			resp, ok := err.(gimlet.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Missing required field: "+field, resp.Message)
		})
	}
	t.Run("BadExpiry", func(t *testing.T) {
		req := validVehicle()
		req.LicenseExpiry = utility.ToStringPtr("2027-12-31")
		_, err := req.ToService()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DD-MM-YYYY")
	})
}

func TestVehicleFromDriver(t *testing.T) {
	d := driver.New("u1", "DL-1", "01-01-2030")
	out := APIVehicle{}
	out.BuildFromDriver(*d)
	assert.Equal(t, VehicleSourceDriver, out.Source)
	assert.Equal(t, d.Id, utility.FromStringPtr(out.DriverId))
	assert.Equal(t, rideshare.NotAssigned, utility.FromStringPtr(out.LicensePlate))
}

func TestDriverCreate(t *testing.T) {
	req := APIDriverCreate{
		User:          APIUserInfo{Name: "Ravi", Email: "ravi@example.com", Phone: "123"},
		LicenseNumber: "DL-7",
		LicenseExpiry: "01-01-2030",
		VehicleMake:   utility.ToStringPtr("Maruti"),
		Rating:        utility.ToFloat64Ptr(4.5),
	}
	require.NoError(t, req.Validate())

	d := req.ToService("user-id")
	assert.Equal(t, "user-id", d.UserId)
	assert.Equal(t, "Maruti", d.VehicleMake)
	assert.Equal(t, rideshare.NotSpecified, d.VehicleModel)
	assert.Equal(t, rideshare.DefaultVehicleYear, d.VehicleYear)
	assert.Equal(t, 4.5, d.Rating)

	assert.Error(t, (&APIDriverCreate{User: APIUserInfo{Name: "x", Email: "nope"}}).Validate())
}

func TestUserViewOmitsPassword(t *testing.T) {
	u := user.New("Asha", "Asha@Example.com", "555", rideshare.RolePassenger, "secret-hash")
	out := APIUser{}
	out.BuildFromService(*u)
	assert.Equal(t, "asha@example.com", utility.FromStringPtr(out.Email))
	assert.Nil(t, out.Avatar)
	assert.True(t, out.IsActive)
}

func TestFuelEntryView(t *testing.T) {
	entry := fuel.New(fuel.Entry{DriverId: "missing", Amount: 20, Cost: 2000, Location: "HP"})

	t.Run("UnknownDriver", func(t *testing.T) {
		out := APIFuelEntry{}
		out.BuildFromService(*entry, nil, nil)
		assert.Equal(t, rideshare.Unknown, utility.FromStringPtr(out.DriverName))
		assert.Equal(t, rideshare.Unknown, utility.FromStringPtr(out.VehicleMake))
		assert.Equal(t, rideshare.Unknown, utility.FromStringPtr(out.LicensePlate))
		assert.Equal(t, "HP", utility.FromStringPtr(out.FuelStation))
	})
	t.Run("KnownDriver", func(t *testing.T) {
		d := driver.New("u1", "DL", "01-01-2030")
		d.VehicleMake = "Honda"
		u := user.New("Kiran", "kiran@example.com", "", rideshare.RoleDriver, "")
		out := APIFuelEntry{}
		out.BuildFromService(*entry, d, u)
		assert.Equal(t, "Kiran", utility.FromStringPtr(out.DriverName))
		assert.Equal(t, "Honda", utility.FromStringPtr(out.VehicleMake))
	})
}

func TestFuelEntryCreate(t *testing.T) {
	req := APIFuelEntryCreate{DriverId: "d1", FuelAmount: utility.ToFloat64Ptr(10), FuelCost: utility.ToFloat64Ptr(950), Date: "2024-06-01"}
	require.NoError(t, req.Validate())
	entry := req.ToService("admin-1")
	assert.Equal(t, rideshare.FuelAddedByAdmin, entry.AddedBy)
	assert.Equal(t, "admin-1", entry.AdminId)
	assert.Equal(t, time.June, entry.Date.Month())

	req.Date = "not a date"
	assert.WithinDuration(t, time.Now(), req.ToService("").Date, time.Minute)

	assert.Error(t, (&APIFuelEntryCreate{}).Validate())

	own := APIDriverFuelEntry{Amount: utility.ToFloat64Ptr(5), Cost: utility.ToFloat64Ptr(500)}
	require.NoError(t, own.Validate())
	assert.Equal(t, rideshare.FuelAddedByDriver, own.ToService("d2").AddedBy)
	assert.Error(t, (&APIDriverFuelEntry{Amount: utility.ToFloat64Ptr(-1), Cost: utility.ToFloat64Ptr(1)}).Validate())
}

func TestRideCreate(t *testing.T) {
	req := APIRideCreate{APIRouteEndpoints: APIRouteEndpoints{
		PickupLatitude:   utility.ToFloat64Ptr(12.97),
		PickupLongitude:  utility.ToFloat64Ptr(77.59),
		PickupAddress:    "MG Road",
		DropoffLatitude:  utility.ToFloat64Ptr(12.93),
		DropoffLongitude: utility.ToFloat64Ptr(77.62),
		DropoffAddress:   "Koramangala",
	}}

	r, err := req.ToService("p1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, rideshare.RideRequested, r.Status)
	assert.Equal(t, "MG Road", r.PickupAddress)

	r, err = req.ToService("p1", "d1", nil)
	require.NoError(t, err)
	assert.Equal(t, rideshare.RideAssigned, r.Status)

	_, err = req.ToService("", "", nil)
	assert.Error(t, err)

	req.DropoffLatitude = nil
	_, err = req.ToService("p1", "", nil)
	assert.Error(t, err)

	req.DropoffLatitude = utility.ToFloat64Ptr(120)
	_, err = req.ToService("p1", "", nil)
	assert.Error(t, err)
}

func TestRideView(t *testing.T) {
	r := ride.New("p1", "", ride.Location{Address: "a"}, ride.Location{Address: "b"})
	out := APIRide{}
	out.BuildFromService(*r)
	assert.Nil(t, out.DriverId)
	assert.Nil(t, out.AssignedAt)
	assert.NotNil(t, out.RequestedAt)

	out.AttachDriver(nil, nil)
	assert.Nil(t, out.Driver)

	p := passenger.New("gone")
	out.AttachPassenger(p, nil)
	require.NotNil(t, out.Passenger)
	require.NotNil(t, out.Passenger.User)
	assert.Equal(t, rideshare.Unknown, utility.FromStringPtr(out.Passenger.User.Name))
	assert.Equal(t, "No email", utility.FromStringPtr(out.Passenger.User.Email))
}

func TestRideStats(t *testing.T) {
	stats := APIRideStats{}
	stats.BuildFromService(map[string]int{rideshare.RideRequested: 2, rideshare.RideCompleted: 3})
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[rideshare.RideCompleted])
}

func TestAttendanceRequests(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		req := APIAttendanceCreate{DriverId: "d1", Date: "05-03-2024", CheckInTime: utility.ToStringPtr("2024-03-05T09:00:00Z")}
		a, err := req.ToService()
		require.NoError(t, err)
		assert.Equal(t, rideshare.AttendancePresent, a.Status)
		require.NotNil(t, a.CheckIn)
		assert.Nil(t, a.CheckOut)
		assert.Equal(t, "Attendance recorded for driver d1 on 2024-03-05", AttendanceMessage("recorded", *a))
	})
	t.Run("CreateRejects", func(t *testing.T) {
		for name, req := range map[string]APIAttendanceCreate{
			"NoDriver":  {Date: "2024-03-05"},
			"NoDate":    {DriverId: "d1"},
			"BadDate":   {DriverId: "d1", Date: "yesterday"},
			"BadStatus": {DriverId: "d1", Date: "2024-03-05", Status: "asleep"},
			"BadCheck":  {DriverId: "d1", Date: "2024-03-05", CheckOutTime: utility.ToStringPtr("noon")},
		} {
			_, err := req.ToService()
			assert.Error(t, err, name)
		}
	})
	t.Run("Update", func(t *testing.T) {
		a := attendance.New("d1", time.Now(), "")
		checkIn := time.Now()
		a.CheckIn = &checkIn

		update := APIAttendanceUpdate{CheckInTime: utility.ToStringPtr(""), Status: utility.ToStringPtr(rideshare.AttendanceLate), Notes: utility.ToStringPtr("traffic")}
		require.NoError(t, update.Apply(a))
		assert.Nil(t, a.CheckIn)
		assert.Equal(t, rideshare.AttendanceLate, a.Status)
		assert.Equal(t, "traffic", a.Notes)

		assert.Error(t, (&APIAttendanceUpdate{Status: utility.ToStringPtr("bogus")}).Apply(a))
	})
	t.Run("Filter", func(t *testing.T) {
		f := AttendanceFilter("d1", "2024-03-01", "garbage")
		assert.Equal(t, "d1", f.DriverId)
		assert.Equal(t, 1, f.From.Day())
		assert.True(t, f.To.IsZero())
	})
	t.Run("View", func(t *testing.T) {
		out := APIAttendance{}
		out.BuildFromService(*attendance.New("d1", time.Now(), ""), "")
		assert.Equal(t, rideshare.Unknown, utility.FromStringPtr(out.DriverName))
	})
}
