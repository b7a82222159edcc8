package route

import (
	"net/http"
	"time"

	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/rest/model"
)

func vehicleRequest() map[string]any {
	return map[string]any{
		"vehicle_make":   "Tata",
		"vehicle_model":  "Nexon",
		"vehicle_year":   2022,
		"license_plate":  "KA-05-9999",
		"vehicle_color":  "White",
		"license_number": "RC-123",
		"license_expiry": "15-08-2031",
	}
}

func (s *RouteSuite) TestCreateVehicle() {
	rw := s.do(http.MethodPost, "/vehicles", s.admin, vehicleRequest())
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Equal("Tata", out["vehicle_make"])
	s.Equal(model.VehicleSourceFleet, out["source"])

	vehicles := s.decodeList(s.do(http.MethodGet, "/vehicles", s.admin, nil))
	// one fleet vehicle followed by the two drivers' vehicles
	s.Require().Len(vehicles, 3)
	s.Equal(model.VehicleSourceFleet, vehicles[0]["source"])
	s.Equal(model.VehicleSourceDriver, vehicles[1]["source"])
}

func (s *RouteSuite) TestCreateVehicleMissingField() {
	body := vehicleRequest()
	delete(body, "vehicle_color")
	rw := s.do(http.MethodPost, "/vehicles", s.admin, body)
	s.Contains(s.errorMessage(rw, http.StatusBadRequest), "Missing required field: vehicle_color")

	body = vehicleRequest()
	body["license_expiry"] = "2031/08/15"
	rw = s.do(http.MethodPost, "/vehicles", s.admin, body)
	s.Contains(s.errorMessage(rw, http.StatusBadRequest), "DD-MM-YYYY")

	vehicles, err := s.sc.FindVehicles(s.ctx)
	s.NoError(err)
	s.Empty(vehicles)
}

func (s *RouteSuite) TestFuelEntries() {
	rw := s.do(http.MethodPost, "/fuel-entries", s.admin, map[string]any{
		"driver_id":    s.driver.Id,
		"fuel_amount":  35.5,
		"fuel_cost":    3600,
		"fuel_station": "HP Koramangala",
		"date":         "2024-03-01T09:30:00Z",
	})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	entry, ok := s.decode(rw)["fuel_entry"].(map[string]any)
	s.Require().True(ok)
	s.Equal("Ravi Kumar", entry["driver_name"])
	s.Equal(rideshare.FuelAddedByAdmin, entry["added_by"])

	rw = s.do(http.MethodPost, "/fuel-entries/me", s.driverUser, map[string]any{"amount": 20, "cost": 2000, "location": "Shell"})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())

	rw = s.do(http.MethodPost, "/fuel-entries/me", s.driverUser, map[string]any{"amount": -1, "cost": 2000})
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodPost, "/fuel-entries", s.admin, map[string]any{"driver_id": "missing", "fuel_amount": 1, "fuel_cost": 1})
	s.Equal(http.StatusNotFound, rw.Code)

	orphan := fuel.New(fuel.Entry{DriverId: "deleted-driver", Amount: 10, Cost: 900, Date: time.Now()})
	s.Require().NoError(s.sc.CreateFuelEntry(s.ctx, orphan))

	rw = s.do(http.MethodGet, "/fuel-entries", s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	entries, ok := s.decode(rw)["fuel_entries"].([]any)
	s.Require().True(ok)
	s.Require().Len(entries, 3)

	found := false
	for _, raw := range entries {
		e := raw.(map[string]any)
		if e["id"] != orphan.Id {
			continue
		}
		found = true
		s.Equal(rideshare.Unknown, e["driver_name"])
		s.Equal(rideshare.Unknown, e["vehicle_make"])
		s.Equal(rideshare.Unknown, e["license_plate"])
	}
	s.True(found)
}

func (s *RouteSuite) TestAttendance() {
	rw := s.do(http.MethodPost, "/attendance", s.admin, map[string]any{
		"driver_id": s.driver.Id,
		"date":      "05-03-2024",
		"status":    rideshare.AttendanceLate,
	})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Contains(out["message"], "recorded")
	record, ok := out["attendance"].(map[string]any)
	s.Require().True(ok)
	id := record["id"].(string)
	s.Equal(rideshare.AttendanceLate, record["status"])

	rw = s.do(http.MethodPost, "/attendance", s.admin, map[string]any{"driver_id": "missing", "date": "2024-03-05"})
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodPost, "/attendance", s.admin, map[string]any{"driver_id": s.driver.Id, "date": "yesterday"})
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodGet, "/attendance?driver_id="+s.driver.Id, s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out = s.decode(rw)
	s.EqualValues(1, out["total"])
	records := out["attendance"].([]any)
	s.Equal("Ravi Kumar", records[0].(map[string]any)["driver_name"])

	rw = s.do(http.MethodPut, "/attendance/"+id, s.admin, map[string]any{"status": rideshare.AttendancePresent, "notes": "traffic"})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	stored, err := s.sc.FindAttendanceById(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(rideshare.AttendancePresent, stored.Status)
	s.Equal("traffic", stored.Notes)

	rw = s.do(http.MethodPut, "/attendance/"+id, s.admin, map[string]any{"status": "asleep"})
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodPut, "/attendance/missing", s.admin, map[string]any{"notes": "x"})
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodDelete, "/attendance/"+id, s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	s.Equal("Attendance record deleted successfully", s.decode(rw)["message"])

	rw = s.do(http.MethodDelete, "/attendance/"+id, s.admin, nil)
	s.Equal(http.StatusNotFound, rw.Code)

	remaining, err := s.sc.FindAttendance(s.ctx, attendance.Filter{})
	s.NoError(err)
	s.Empty(remaining)
}

func (s *RouteSuite) TestPassengers() {
	rw := s.do(http.MethodPost, "/passengers", s.admin, map[string]any{
		"user": map[string]string{"name": "Anita", "email": "anita@example.com", "phone": "+919876543210"},
	})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())

	rw = s.do(http.MethodGet, "/passengers", s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	s.Len(s.decodeList(rw), 2)

	rw = s.do(http.MethodGet, "/passengers/me", s.passengerUser, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	profile, ok := s.decode(rw)["passenger"].(map[string]any)
	s.Require().True(ok)
	s.Equal(s.passenger.Id, profile["id"])
}
