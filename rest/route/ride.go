package route

import (
	"context"
	"net/http"
	"time"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
	"github.com/rectransport/rideshare/thirdparty"
)

func buildAPIRide(details data.RideDetails) model.APIRide {
	out := model.APIRide{}
	out.BuildFromService(details.Ride)
	out.AttachDriver(details.Driver, details.DriverUser)
	out.AttachPassenger(details.Passenger, details.PassengerUser)
	return out
}

// getAPIRides finds the rides matching the filter joined with their
// drivers and passengers.
func getAPIRides(ctx context.Context, sc data.Connector, filter ride.Filter) ([]model.APIRide, error) {
	rides, err := sc.FindRides(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "finding rides")
	}
	details, err := data.GetRideDetails(ctx, sc, rides)
	if err != nil {
		return nil, err
	}
	out := make([]model.APIRide, 0, len(details))
	for _, d := range details {
		out = append(out, buildAPIRide(d))
	}
	return out, nil
}

func getAPIRide(ctx context.Context, sc data.Connector, r *ride.Ride) (*model.APIRide, error) {
	details, err := data.GetRideDetails(ctx, sc, []ride.Ride{*r})
	if err != nil {
		return nil, err
	}
	out := buildAPIRide(details[0])
	return &out, nil
}

func findRide(ctx context.Context, sc data.Connector, id string) (*ride.Ride, gimlet.Responder) {
	r, err := sc.FindRideById(ctx, id)
	if err != nil {
		return nil, gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding ride '%s'", id))
	}
	if r == nil {
		return nil, notFound("Ride not found")
	}
	return r, nil
}

func rideActionResponse(ctx context.Context, sc data.Connector, r *ride.Ride, msg string) gimlet.Responder {
	out, err := getAPIRide(ctx, sc, r)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(map[string]any{
		"status":  "success",
		"message": msg,
		"ride":    out,
	})
}

// estimateOrNil returns the route estimate for the ride, or nil if the
// route cannot be estimated. A failed estimate never blocks a request.
func estimateOrNil(ctx context.Context, sc data.Connector, endpoints model.APIRouteEndpoints) *thirdparty.RouteEstimate {
	estimate, err := sc.EstimateRoute(ctx, endpoints.Pickup(), endpoints.Dropoff())
	grip.Warning(message.WrapError(err, message.Fields{
		"message": "could not estimate ride route",
		"pickup":  endpoints.Pickup().String(),
		"dropoff": endpoints.Dropoff().String(),
	}))
	if err != nil {
		return nil
	}
	return estimate
}

////////////////////////////////////////////////////////////////////////
//
// POST /rides
// POST /rides/manual

type rideCreateHandler struct {
	body model.APIRideCreate

	manual bool
	sc     data.Connector
}

// makeCreateRide creates requested rides. Manual rides are created by an
// admin on behalf of any passenger and may name a driver.
func makeCreateRide(sc data.Connector, manual bool) gimlet.RouteHandler {
	return &rideCreateHandler{sc: sc, manual: manual}
}

func (h *rideCreateHandler) Factory() gimlet.RouteHandler {
	return &rideCreateHandler{sc: h.sc, manual: h.manual}
}

func (h *rideCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading ride from JSON request body")
	}
	if !h.manual {
		h.body.DriverId = ""
	}
	return errors.Wrap(h.body.Validate(), "invalid ride")
}

func (h *rideCreateHandler) Run(ctx context.Context) gimlet.Responder {
	p, resp := h.passenger(ctx)
	if resp != nil {
		return resp
	}

	if h.body.DriverId != "" {
		d, err := h.sc.FindDriverById(ctx, h.body.DriverId)
		if err != nil {
			return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding driver '%s'", h.body.DriverId))
		}
		if d == nil {
			return notFound("Driver not found")
		}
	}

	r, err := h.body.ToService(p.Id, h.body.DriverId, estimateOrNil(ctx, h.sc, h.body.APIRouteEndpoints))
	if err != nil {
		return gimlet.MakeJSONErrorResponder(badRequest(err))
	}
	if err = h.sc.CreateRide(ctx, r); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating ride"))
	}
	grip.Info(message.Fields{
		"message":   "ride requested",
		"ride":      r.Id,
		"passenger": r.PassengerId,
		"driver":    r.DriverId,
		"status":    r.Status,
		"manual":    h.manual,
	})

	out, err := getAPIRide(ctx, h.sc, r)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	if h.manual {
		return gimlet.NewJSONResponse(map[string]any{
			"status": "success",
			"ride":   out,
		})
	}
	return gimlet.NewJSONResponse(out)
}

// passenger resolves the passenger the ride is for. Passengers may only
// request rides for their own profile.
func (h *rideCreateHandler) passenger(ctx context.Context) (*passenger.Passenger, gimlet.Responder) {
	u := MustHaveUser(ctx)
	if !h.manual && u.Role == rideshare.RolePassenger {
		own, err := h.sc.FindPassengerByUserId(ctx, u.Id)
		if err != nil {
			return nil, gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding passenger profile for user '%s'", u.Id))
		}
		if own == nil {
			return nil, notFound("Passenger profile not found")
		}
		if h.body.PassengerId != "" && h.body.PassengerId != own.Id {
			return nil, forbidden("Passengers can only request rides for themselves")
		}
		return own, nil
	}

	if h.body.PassengerId == "" {
		return nil, gimlet.MakeJSONErrorResponder(badRequest(errors.New("passenger_id is required")))
	}
	p, err := h.sc.FindPassengerById(ctx, h.body.PassengerId)
	if err != nil {
		return nil, gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding passenger '%s'", h.body.PassengerId))
	}
	if p == nil {
		return nil, notFound("Passenger not found")
	}
	return p, nil
}

////////////////////////////////////////////////////////////////////////
//
// GET /rides
// GET /rides/pending
// GET /rides/active
// GET /rides/completed

type ridesGetHandler struct {
	filter ride.Filter

	// statuses, when set, replaces any filter given in the query string.
	statuses []string
	sc       data.Connector
}

func makeGetRides(sc data.Connector, statuses ...string) gimlet.RouteHandler {
	return &ridesGetHandler{sc: sc, statuses: statuses}
}

func (h *ridesGetHandler) Factory() gimlet.RouteHandler {
	return &ridesGetHandler{sc: h.sc, statuses: h.statuses}
}

func (h *ridesGetHandler) Parse(ctx context.Context, r *http.Request) error {
	if len(h.statuses) > 0 {
		h.filter = ride.Filter{Statuses: h.statuses}
		return nil
	}
	vals := r.URL.Query()
	h.filter = ride.Filter{
		PassengerId: vals.Get("passenger_id"),
		DriverId:    vals.Get("driver_id"),
	}
	if status := vals.Get("status"); status != "" {
		if !utility.StringSliceContains(rideshare.RideStatuses, status) {
			return errors.Errorf("invalid ride status '%s'", status)
		}
		h.filter.Statuses = []string{status}
	}
	return nil
}

func (h *ridesGetHandler) Run(ctx context.Context) gimlet.Responder {
	out, err := getAPIRides(ctx, h.sc, h.filter)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /rides/assigned
// GET /rides/me

type myRidesHandler struct {
	// assigned limits a driver's rides to the ones they are serving.
	assigned bool
	sc       data.Connector
}

func makeGetMyRides(sc data.Connector, assigned bool) gimlet.RouteHandler {
	return &myRidesHandler{sc: sc, assigned: assigned}
}

func (h *myRidesHandler) Factory() gimlet.RouteHandler {
	return &myRidesHandler{sc: h.sc, assigned: h.assigned}
}

func (h *myRidesHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *myRidesHandler) Run(ctx context.Context) gimlet.Responder {
	u := MustHaveUser(ctx)
	filter := ride.Filter{}
	switch u.Role {
	case rideshare.RoleDriver:
		d, resp := currentDriver(ctx, h.sc)
		if resp != nil {
			return resp
		}
		filter.DriverId = d.Id
		if h.assigned {
			filter.Statuses = rideshare.ActiveRideStatuses
		}
	case rideshare.RolePassenger:
		p, err := h.sc.FindPassengerByUserId(ctx, u.Id)
		if err != nil {
			return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding passenger profile for user '%s'", u.Id))
		}
		if p == nil {
			return notFound("Passenger profile not found")
		}
		filter.PassengerId = p.Id
	default:
		return forbidden("Only passengers and drivers have rides")
	}

	out, err := getAPIRides(ctx, h.sc, filter)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /rides/history/{passenger_id}

type rideHistoryHandler struct {
	passengerId string

	sc data.Connector
}

func makeGetRideHistory(sc data.Connector) gimlet.RouteHandler {
	return &rideHistoryHandler{sc: sc}
}

func (h *rideHistoryHandler) Factory() gimlet.RouteHandler { return &rideHistoryHandler{sc: h.sc} }

func (h *rideHistoryHandler) Parse(ctx context.Context, r *http.Request) error {
	h.passengerId = gimlet.GetVars(r)["passenger_id"]
	if h.passengerId == "" {
		return errors.New("passenger_id is required")
	}
	return nil
}

func (h *rideHistoryHandler) Run(ctx context.Context) gimlet.Responder {
	out, err := getAPIRides(ctx, h.sc, ride.Filter{PassengerId: h.passengerId})
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// POST /rides/estimate

type rideEstimateHandler struct {
	body model.APIRouteEndpoints

	sc data.Connector
}

func makeEstimateRide(sc data.Connector) gimlet.RouteHandler {
	return &rideEstimateHandler{sc: sc}
}

func (h *rideEstimateHandler) Factory() gimlet.RouteHandler { return &rideEstimateHandler{sc: h.sc} }

func (h *rideEstimateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading route from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid route")
}

func (h *rideEstimateHandler) Run(ctx context.Context) gimlet.Responder {
	estimate, err := h.sc.EstimateRoute(ctx, h.body.Pickup(), h.body.Dropoff())
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "estimating route"))
	}
	return gimlet.NewJSONResponse(estimate)
}

////////////////////////////////////////////////////////////////////////
//
// GET /rides/{ride_id}

type rideGetHandler struct {
	rideId string

	sc data.Connector
}

func makeGetRide(sc data.Connector) gimlet.RouteHandler {
	return &rideGetHandler{sc: sc}
}

func (h *rideGetHandler) Factory() gimlet.RouteHandler { return &rideGetHandler{sc: h.sc} }

func (h *rideGetHandler) Parse(ctx context.Context, r *http.Request) error {
	h.rideId = gimlet.GetVars(r)["ride_id"]
	return nil
}

func (h *rideGetHandler) Run(ctx context.Context) gimlet.Responder {
	r, resp := findRide(ctx, h.sc, h.rideId)
	if resp != nil {
		return resp
	}
	out, err := getAPIRide(ctx, h.sc, r)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// POST /rides/{ride_id}/assign

type rideAssignHandler struct {
	rideId   string
	driverId string

	sc data.Connector
}

func makeAssignRide(sc data.Connector) gimlet.RouteHandler {
	return &rideAssignHandler{sc: sc}
}

func (h *rideAssignHandler) Factory() gimlet.RouteHandler { return &rideAssignHandler{sc: h.sc} }

// Parse takes the driver from the query string, falling back to the body.
func (h *rideAssignHandler) Parse(ctx context.Context, r *http.Request) error {
	h.rideId = gimlet.GetVars(r)["ride_id"]
	h.driverId = r.URL.Query().Get("driver_id")
	if h.driverId != "" {
		return nil
	}
	body := model.APIRideAssign{}
	if err := utility.ReadJSON(r.Body, &body); err != nil || body.DriverId == "" {
		return errors.New("driver_id is required")
	}
	h.driverId = body.DriverId
	return nil
}

func (h *rideAssignHandler) Run(ctx context.Context) gimlet.Responder {
	r, resp := findRide(ctx, h.sc, h.rideId)
	if resp != nil {
		return resp
	}
	d, err := h.sc.FindDriverById(ctx, h.driverId)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding driver '%s'", h.driverId))
	}
	if d == nil {
		return notFound("Driver not found")
	}

	if err = r.Assign(d.Id, time.Now()); err != nil {
		return rideErrorResponder(err)
	}
	if err = h.sc.UpdateRide(ctx, r); err != nil {
		return rideErrorResponder(errors.Wrapf(err, "assigning ride '%s'", r.Id))
	}
	grip.Info(message.Fields{
		"message": "ride assigned",
		"ride":    r.Id,
		"driver":  d.Id,
	})
	return rideActionResponse(ctx, h.sc, r, "Ride assigned successfully")
}

////////////////////////////////////////////////////////////////////////
//
// POST /rides/{ride_id}/start
// POST /rides/{ride_id}/complete

type rideOdometerHandler struct {
	rideId string
	body   model.APIOdometer

	complete bool
	sc       data.Connector
}

// makeRideOdometerHandler starts or completes a ride for the assigned
// driver. A start reading defaults to the driver's current odometer.
func makeRideOdometerHandler(sc data.Connector, complete bool) gimlet.RouteHandler {
	return &rideOdometerHandler{sc: sc, complete: complete}
}

func (h *rideOdometerHandler) Factory() gimlet.RouteHandler {
	return &rideOdometerHandler{sc: h.sc, complete: h.complete}
}

func (h *rideOdometerHandler) Parse(ctx context.Context, r *http.Request) error {
	h.rideId = gimlet.GetVars(r)["ride_id"]
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading odometer reading from JSON request body")
	}
	if h.complete && h.body.EndKm == nil {
		return errors.New("end_km is required")
	}
	if h.body.StartKm != nil && *h.body.StartKm < 0 || h.body.EndKm != nil && *h.body.EndKm < 0 {
		return errors.New("odometer readings cannot be negative")
	}
	return nil
}

func (h *rideOdometerHandler) Run(ctx context.Context) gimlet.Responder {
	d, resp := currentDriver(ctx, h.sc)
	if resp != nil {
		return resp
	}
	r, resp := findRide(ctx, h.sc, h.rideId)
	if resp != nil {
		return resp
	}

	if h.complete {
		if err := data.CompleteRide(ctx, h.sc, r, d, *h.body.EndKm); err != nil {
			return rideErrorResponder(err)
		}
		grip.Info(message.Fields{
			"message":  "ride completed",
			"ride":     r.Id,
			"driver":   d.Id,
			"distance": r.Distance,
		})
		return rideActionResponse(ctx, h.sc, r, "Ride completed successfully")
	}

	startKm := d.CurrentKmReading
	if h.body.StartKm != nil {
		startKm = *h.body.StartKm
	}
	if err := r.Start(d.Id, startKm, time.Now()); err != nil {
		return rideErrorResponder(err)
	}
	if err := h.sc.UpdateRide(ctx, r); err != nil {
		return rideErrorResponder(errors.Wrapf(err, "starting ride '%s'", r.Id))
	}
	grip.Info(message.Fields{
		"message":  "ride started",
		"ride":     r.Id,
		"driver":   d.Id,
		"start_km": startKm,
	})
	return rideActionResponse(ctx, h.sc, r, "Ride started successfully")
}

////////////////////////////////////////////////////////////////////////
//
// POST /rides/{ride_id}/cancel

type rideCancelHandler struct {
	rideId string

	sc data.Connector
}

func makeCancelRide(sc data.Connector) gimlet.RouteHandler {
	return &rideCancelHandler{sc: sc}
}

func (h *rideCancelHandler) Factory() gimlet.RouteHandler { return &rideCancelHandler{sc: h.sc} }

func (h *rideCancelHandler) Parse(ctx context.Context, r *http.Request) error {
	h.rideId = gimlet.GetVars(r)["ride_id"]
	return nil
}

func (h *rideCancelHandler) Run(ctx context.Context) gimlet.Responder {
	r, resp := findRide(ctx, h.sc, h.rideId)
	if resp != nil {
		return resp
	}

	u := MustHaveUser(ctx)
	if u.Role != rideshare.RoleAdmin {
		p, err := h.sc.FindPassengerByUserId(ctx, u.Id)
		if err != nil {
			return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding passenger profile for user '%s'", u.Id))
		}
		if p == nil || p.Id != r.PassengerId {
			return forbidden("Not authorized to cancel this ride")
		}
	}

	if err := r.Cancel(time.Now()); err != nil {
		return rideErrorResponder(err)
	}
	if err := h.sc.UpdateRide(ctx, r); err != nil {
		return rideErrorResponder(errors.Wrapf(err, "cancelling ride '%s'", r.Id))
	}
	grip.Info(message.Fields{
		"message": "ride cancelled",
		"ride":    r.Id,
		"by":      u.Id,
	})
	return rideActionResponse(ctx, h.sc, r, "Ride cancelled successfully")
}

////////////////////////////////////////////////////////////////////////
//
// GET /rides/stats

type rideStatsHandler struct {
	sc data.Connector
}

func makeGetRideStats(sc data.Connector) gimlet.RouteHandler {
	return &rideStatsHandler{sc: sc}
}

func (h *rideStatsHandler) Factory() gimlet.RouteHandler                     { return &rideStatsHandler{sc: h.sc} }
func (h *rideStatsHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *rideStatsHandler) Run(ctx context.Context) gimlet.Responder {
	counts, err := h.sc.CountRidesByStatus(ctx)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "counting rides"))
	}
	out := model.APIRideStats{}
	out.BuildFromService(counts)
	return gimlet.NewJSONResponse(out)
}
