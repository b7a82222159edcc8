package route

import (
	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/rest/data"
)

// HandlerOpts are the dependencies shared by the route handlers.
type HandlerOpts struct {
	Connector data.Connector
	Settings  *rideshare.Settings
	Tokens    *auth.TokenManager
}

func (o *HandlerOpts) validate() error {
	if o.Connector == nil {
		return errors.New("connector is required")
	}
	if o.Settings == nil {
		return errors.New("settings are required")
	}
	if o.Tokens == nil {
		return errors.New("token manager is required")
	}
	return nil
}

// AttachHandler registers every API route on the app. Routes are matched in
// the order they are added, so static ride paths precede {ride_id}.
func AttachHandler(app *gimlet.APIApp, opts HandlerOpts) error {
	if err := opts.validate(); err != nil {
		return errors.Wrap(err, "invalid handler options")
	}
	sc := opts.Connector
	settings := opts.Settings

	requireUser := NewRequireUserMiddleware()
	requireAdmin := NewRequireRoleMiddleware(rideshare.RoleAdmin)
	requireDriver := NewRequireRoleMiddleware(rideshare.RoleDriver)
	requirePassenger := NewRequireRoleMiddleware(rideshare.RolePassenger)
	requireRider := NewRequireRoleMiddleware(rideshare.RolePassenger, rideshare.RoleDriver)

	app.AddRoute("/health").Get().RouteHandler(makeHealthHandler())
	app.AddRoute("/test").Get().RouteHandler(makeSmokeTestHandler(false))
	app.AddRoute("/mobile-test").Get().RouteHandler(makeSmokeTestHandler(true))

	app.AddRoute("/auth/login").Post().RouteHandler(makeLoginHandler(sc, opts.Tokens))
	app.AddRoute("/auth/me").Get().Wrap(requireUser).RouteHandler(makeCurrentUserHandler())

	app.AddRoute("/users").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateUser(sc, settings))

	app.AddRoute("/drivers").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateDriver(sc, settings))
	app.AddRoute("/drivers").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetDrivers(sc))
	app.AddRoute("/drivers/me").Get().Wrap(requireUser, requireDriver).RouteHandler(makeGetDriverProfile(sc))
	app.AddRoute("/drivers/me/status").Put().Wrap(requireUser, requireDriver).RouteHandler(makeSetDriverStatus(sc))

	app.AddRoute("/passengers").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreatePassenger(sc, settings))
	app.AddRoute("/passengers").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetPassengers(sc))
	app.AddRoute("/passengers/me").Get().Wrap(requireUser, requirePassenger).RouteHandler(makeGetPassengerProfile(sc))

	app.AddRoute("/vehicles").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateVehicle(sc))
	app.AddRoute("/vehicles").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetVehicles(sc))

	app.AddRoute("/fuel-entries").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetFuelEntries(sc))
	app.AddRoute("/fuel-entries").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateFuelEntry(sc))
	app.AddRoute("/fuel-entries/me").Post().Wrap(requireUser, requireDriver).RouteHandler(makeCreateDriverFuelEntry(sc))

	app.AddRoute("/rides").Post().Wrap(requireUser).RouteHandler(makeCreateRide(sc, false))
	app.AddRoute("/rides").Get().Wrap(requireUser).RouteHandler(makeGetRides(sc))
	app.AddRoute("/rides/pending").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetRides(sc, rideshare.RideRequested))
	app.AddRoute("/rides/assigned").Get().Wrap(requireUser, requireDriver).RouteHandler(makeGetMyRides(sc, true))
	app.AddRoute("/rides/active").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetRides(sc, rideshare.ActiveRideStatuses...))
	app.AddRoute("/rides/completed").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetRides(sc, rideshare.RideCompleted))
	app.AddRoute("/rides/me").Get().Wrap(requireUser, requireRider).RouteHandler(makeGetMyRides(sc, false))
	app.AddRoute("/rides/stats").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetRideStats(sc))
	app.AddRoute("/rides/history/{passenger_id}").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetRideHistory(sc))
	app.AddRoute("/rides/manual").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateRide(sc, true))
	app.AddRoute("/rides/estimate").Post().Wrap(requireUser).RouteHandler(makeEstimateRide(sc))
	app.AddRoute("/rides/{ride_id}").Get().Wrap(requireUser).RouteHandler(makeGetRide(sc))
	app.AddRoute("/rides/{ride_id}/assign").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeAssignRide(sc))
	app.AddRoute("/rides/{ride_id}/start").Post().Wrap(requireUser, requireDriver).RouteHandler(makeRideOdometerHandler(sc, false))
	app.AddRoute("/rides/{ride_id}/complete").Post().Wrap(requireUser, requireDriver).RouteHandler(makeRideOdometerHandler(sc, true))
	app.AddRoute("/rides/{ride_id}/cancel").Post().Wrap(requireUser).RouteHandler(makeCancelRide(sc))

	app.AddRoute("/attendance").Get().Wrap(requireUser, requireAdmin).RouteHandler(makeGetAttendance(sc))
	app.AddRoute("/attendance").Post().Wrap(requireUser, requireAdmin).RouteHandler(makeCreateAttendance(sc))
	app.AddRoute("/attendance/{attendance_id}").Put().Wrap(requireUser, requireAdmin).RouteHandler(makeUpdateAttendance(sc))
	app.AddRoute("/attendance/{attendance_id}").Delete().Wrap(requireUser, requireAdmin).RouteHandler(makeDeleteAttendance(sc))

	if settings.DebugRoutesEnabled() {
		attachDebugRoutes(app, &debugRoutes{sc: sc, settings: settings}, requireUser)
	}
	return nil
}

func attachDebugRoutes(app *gimlet.APIApp, d *debugRoutes, requireUser gimlet.Middleware) {
	app.AddRoute("/debug/data").Get().RouteHandler(makeDebugHandler("data", d.data))
	app.AddRoute("/debug/users").Get().RouteHandler(makeDebugHandler("users", d.users(true)))
	app.AddRoute("/debug/users-simple").Get().RouteHandler(makeDebugHandler("users-simple", d.users(false)))
	app.AddRoute("/debug/drivers").Get().RouteHandler(makeDebugHandler("drivers", d.drivers))
	app.AddRoute("/debug/vehicles").Get().RouteHandler(makeDebugHandler("vehicles", d.vehicles))
	app.AddRoute("/debug/rides").Get().RouteHandler(makeDebugHandler("rides", d.rides))
	app.AddRoute("/debug/rides-with-details").Get().RouteHandler(makeDebugHandler("rides-with-details", d.ridesWithDetails))
	app.AddRoute("/debug/fuel-entries").Get().RouteHandler(makeDebugHandler("fuel-entries", d.fuelEntries))
	app.AddRoute("/debug/fix-fuel-entries").Post().RouteHandler(makeDebugHandler("fix-fuel-entries", d.fixFuelEntries))
	app.AddRoute("/debug/attendance").Get().RouteHandler(makeDebugHandler("attendance", d.attendance))
	app.AddRoute("/debug/user-auth").Get().Wrap(requireUser).RouteHandler(makeDebugHandler("user-auth", d.userAuth))
	app.AddRoute("/debug/create-admin").Post().RouteHandler(makeDebugBodyHandler("create-admin", d.createAdmin))
	app.AddRoute("/debug/passenger-rides/{passenger_id}").Get().RouteHandler(makeDebugHandler("passenger-rides", d.passengerRides))
}
