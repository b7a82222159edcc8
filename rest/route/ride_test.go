package route

import (
	"net/http"

	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/thirdparty"
)

func rideRequest(passengerId string) map[string]any {
	return map[string]any{
		"passenger_id":      passengerId,
		"pickup_latitude":   12.9716,
		"pickup_longitude":  77.5946,
		"pickup_address":    "MG Road",
		"dropoff_latitude":  13.0827,
		"dropoff_longitude": 80.2707,
		"dropoff_address":   "Central Station",
	}
}

func (s *RouteSuite) requestRide() string {
	rw := s.do(http.MethodPost, "/rides", s.passengerUser, rideRequest(""))
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Equal(rideshare.RideRequested, out["status"])
	s.Equal(s.passenger.Id, out["passenger_id"])
	s.Nil(out["driver_id"])
	id, ok := out["id"].(string)
	s.Require().True(ok)
	return id
}

func (s *RouteSuite) storedRide(id string) *ride.Ride {
	r, err := s.sc.FindRideById(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(r)
	return r
}

func actionRide(out map[string]any) map[string]any {
	r, _ := out["ride"].(map[string]any)
	return r
}

func (s *RouteSuite) TestRideLifecycle() {
	id := s.requestRide()
	s.Greater(s.storedRide(id).EstimatedDistance, 0.0)

	pending := s.decodeList(s.do(http.MethodGet, "/rides/pending", s.admin, nil))
	s.Require().Len(pending, 1)
	s.Equal(id, pending[0]["id"])

	// nobody may start an unassigned ride
	rw := s.do(http.MethodPost, "/rides/"+id+"/start", s.driverUser, map[string]any{})
	s.Equal(ride.ErrNotAssignedDriver.Error(), s.errorMessage(rw, http.StatusForbidden))

	rw = s.do(http.MethodPost, "/rides/"+id+"/assign?driver_id="+s.driver.Id, s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Equal("Ride assigned successfully", out["message"])
	s.Equal(rideshare.RideAssigned, actionRide(out)["status"])

	assigned := s.decodeList(s.do(http.MethodGet, "/rides/assigned", s.driverUser, nil))
	s.Len(assigned, 1)
	s.Empty(s.decodeList(s.do(http.MethodGet, "/rides/assigned", s.otherDriverUser, nil)))

	rw = s.do(http.MethodPost, "/rides/"+id+"/start", s.otherDriverUser, map[string]any{})
	s.Equal(http.StatusForbidden, rw.Code)

	rw = s.do(http.MethodPost, "/rides/"+id+"/complete", s.driverUser, map[string]any{"end_km": 1010})
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodPost, "/rides/"+id+"/start", s.driverUser, map[string]any{})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	s.Equal("Ride started successfully", s.decode(rw)["message"])
	started := s.storedRide(id)
	s.Equal(rideshare.RideInProgress, started.Status)
	s.Equal(1000.0, started.StartKm)
	s.False(started.PickedUpAt.IsZero())

	rw = s.do(http.MethodPost, "/rides/"+id+"/cancel", s.passengerUser, nil)
	s.Equal("cannot cancel a ride that is in_progress", s.errorMessage(rw, http.StatusBadRequest))

	rw = s.do(http.MethodPost, "/rides/"+id+"/complete", s.driverUser, map[string]any{"end_km": 999})
	s.Equal(ride.ErrEndBeforeStart.Error(), s.errorMessage(rw, http.StatusBadRequest))
	s.Equal(rideshare.RideInProgress, s.storedRide(id).Status)

	rw = s.do(http.MethodPost, "/rides/"+id+"/complete", s.driverUser, map[string]any{})
	s.Equal("end_km is required", s.errorMessage(rw, http.StatusBadRequest))

	rw = s.do(http.MethodPost, "/rides/"+id+"/complete", s.driverUser, map[string]any{"end_km": 1012.5})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out = s.decode(rw)
	s.Equal("Ride completed successfully", out["message"])
	s.Equal(rideshare.RideCompleted, actionRide(out)["status"])
	s.Equal(12.5, actionRide(out)["distance"])

	d, err := s.sc.FindDriverById(s.ctx, s.driver.Id)
	s.Require().NoError(err)
	s.Equal(1012.5, d.CurrentKmReading)
	s.Equal(1, d.TotalRides)

	p, err := s.sc.FindPassengerById(s.ctx, s.passenger.Id)
	s.Require().NoError(err)
	s.Equal(1, p.TotalRides)

	history := s.decodeList(s.do(http.MethodGet, "/rides/history/"+s.passenger.Id, s.admin, nil))
	s.Require().Len(history, 1)
	s.Equal(rideshare.RideCompleted, history[0]["status"])

	completed := s.decodeList(s.do(http.MethodGet, "/rides/completed", s.admin, nil))
	s.Len(completed, 1)
}

func (s *RouteSuite) TestCreateRideForAnotherPassenger() {
	other := passenger.New(s.createUser("Other", "other@example.com", rideshare.RolePassenger).Id)
	s.Require().NoError(s.sc.CreatePassenger(s.ctx, other))

	rw := s.do(http.MethodPost, "/rides", s.passengerUser, rideRequest(other.Id))
	s.Equal(http.StatusForbidden, rw.Code)

	rw = s.do(http.MethodPost, "/rides", s.admin, rideRequest(""))
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodPost, "/rides", s.admin, rideRequest("missing"))
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodPost, "/rides", s.admin, rideRequest(other.Id))
	s.Equal(http.StatusOK, rw.Code)
}

func (s *RouteSuite) TestCreateRideValidation() {
	body := rideRequest("")
	delete(body, "pickup_latitude")
	rw := s.do(http.MethodPost, "/rides", s.passengerUser, body)
	s.Equal(http.StatusBadRequest, rw.Code)

	body = rideRequest("")
	body["dropoff_latitude"] = 123.0
	rw = s.do(http.MethodPost, "/rides", s.passengerUser, body)
	s.Equal(http.StatusBadRequest, rw.Code)
}

func (s *RouteSuite) TestManualRide() {
	body := rideRequest(s.passenger.Id)
	body["driver_id"] = s.driver.Id
	rw := s.do(http.MethodPost, "/rides/manual", s.admin, body)
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Equal("success", out["status"])
	s.Equal(rideshare.RideAssigned, actionRide(out)["status"])

	body["driver_id"] = "missing"
	rw = s.do(http.MethodPost, "/rides/manual", s.admin, body)
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodPost, "/rides/manual", s.passengerUser, rideRequest(s.passenger.Id))
	s.Equal(http.StatusForbidden, rw.Code)
}

func (s *RouteSuite) TestRequestedRideIgnoresDriver() {
	body := rideRequest("")
	body["driver_id"] = s.driver.Id
	rw := s.do(http.MethodPost, "/rides", s.passengerUser, body)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal(rideshare.RideRequested, out["status"])
	s.Nil(out["driver_id"])
}

func (s *RouteSuite) TestAssignRide() {
	id := s.requestRide()

	rw := s.do(http.MethodPost, "/rides/"+id+"/assign", s.admin, nil)
	s.Equal(http.StatusBadRequest, rw.Code)

	rw = s.do(http.MethodPost, "/rides/"+id+"/assign?driver_id=missing", s.admin, nil)
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodPost, "/rides/missing/assign?driver_id="+s.driver.Id, s.admin, nil)
	s.Equal(http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodPost, "/rides/"+id+"/assign", s.admin, map[string]string{"driver_id": s.driver.Id})
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	s.Equal(s.driver.Id, s.storedRide(id).DriverId)

	// reassignment is allowed until pickup
	rw = s.do(http.MethodPost, "/rides/"+id+"/assign?driver_id="+s.otherDriver.Id, s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	s.Equal(s.otherDriver.Id, s.storedRide(id).DriverId)

	rw = s.do(http.MethodPost, "/rides/"+id+"/assign?driver_id="+s.driver.Id, s.driverUser, nil)
	s.Equal(http.StatusForbidden, rw.Code)
}

func (s *RouteSuite) TestCancelRide() {
	id := s.requestRide()

	strangerUser := s.createUser("Stranger", "stranger@example.com", rideshare.RolePassenger)
	s.Require().NoError(s.sc.CreatePassenger(s.ctx, passenger.New(strangerUser.Id)))
	rw := s.do(http.MethodPost, "/rides/"+id+"/cancel", strangerUser, nil)
	s.Equal(http.StatusForbidden, rw.Code)
	rw = s.do(http.MethodPost, "/rides/"+id+"/cancel", s.driverUser, nil)
	s.Equal(http.StatusForbidden, rw.Code)

	rw = s.do(http.MethodPost, "/rides/"+id+"/cancel", s.passengerUser, nil)
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.Equal("Ride cancelled successfully", out["message"])
	s.Equal(rideshare.RideCancelled, actionRide(out)["status"])
	s.False(s.storedRide(id).CancelledAt.IsZero())

	rw = s.do(http.MethodPost, "/rides/"+id+"/cancel", s.admin, nil)
	s.Equal(http.StatusBadRequest, rw.Code)
}

func (s *RouteSuite) TestGetRides() {
	first := s.requestRide()
	second := s.requestRide()
	rw := s.do(http.MethodPost, "/rides/"+second+"/assign?driver_id="+s.driver.Id, s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)

	all := s.decodeList(s.do(http.MethodGet, "/rides", s.admin, nil))
	s.Len(all, 2)

	requested := s.decodeList(s.do(http.MethodGet, "/rides?status="+rideshare.RideRequested, s.admin, nil))
	s.Require().Len(requested, 1)
	s.Equal(first, requested[0]["id"])

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/rides?status=lost", s.admin, nil).Code)

	active := s.decodeList(s.do(http.MethodGet, "/rides/active", s.admin, nil))
	s.Require().Len(active, 1)
	s.Equal(second, active[0]["id"])
	driverInfo, ok := active[0]["driver"].(map[string]any)
	s.Require().True(ok)
	s.Equal(s.driver.Id, driverInfo["id"])

	mine := s.decodeList(s.do(http.MethodGet, "/rides/me", s.passengerUser, nil))
	s.Len(mine, 2)

	rw = s.do(http.MethodGet, "/rides/"+first, s.passengerUser, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	s.Equal(first, s.decode(rw)["id"])

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/rides/missing", s.passengerUser, nil).Code)
}

func (s *RouteSuite) TestRideStats() {
	s.requestRide()
	id := s.requestRide()
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/rides/"+id+"/cancel", s.passengerUser, nil).Code)

	rw := s.do(http.MethodGet, "/rides/stats", s.admin, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.EqualValues(2, out["total"])
	byStatus, ok := out["by_status"].(map[string]any)
	s.Require().True(ok)
	s.EqualValues(1, byStatus[rideshare.RideRequested])
	s.EqualValues(1, byStatus[rideshare.RideCancelled])
}

func (s *RouteSuite) TestEstimateRide() {
	s.sc.Estimate = &thirdparty.RouteEstimate{DistanceKm: 42, DurationSecs: 3600, Source: "test"}

	rw := s.do(http.MethodPost, "/rides/estimate", s.passengerUser, rideRequest(""))
	s.Require().Equal(http.StatusOK, rw.Code, rw.Body.String())
	out := s.decode(rw)
	s.EqualValues(42, out["distance_km"])
	s.EqualValues(3600, out["duration_secs"])

	rw = s.do(http.MethodPost, "/rides/estimate", s.passengerUser, map[string]any{})
	s.Equal(http.StatusBadRequest, rw.Code)
}
