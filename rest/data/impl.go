package data

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
	"github.com/rectransport/rideshare/model/admin"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/model/vehicle"
	"github.com/rectransport/rideshare/thirdparty"
	"go.opentelemetry.io/otel/attribute"
)

// DBConnector implements the Connector against the document store of the
// global environment.
type DBConnector struct {
	Estimator thirdparty.RouteEstimator
}

// NewDBConnector returns a connector estimating routes with estimator. A
// nil estimator uses the great-circle estimate.
func NewDBConnector(estimator thirdparty.RouteEstimator) *DBConnector {
	if estimator == nil {
		estimator = thirdparty.NewGreatCircleEstimator()
	}
	return &DBConnector{Estimator: estimator}
}

func emailTaken(email string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("Email '%s' already registered", email),
	}
}

func (*DBConnector) FindUserByEmail(ctx context.Context, email string) (*user.DBUser, error) {
	return user.FindOneByEmail(ctx, email)
}

func (*DBConnector) FindUserById(ctx context.Context, id string) (*user.DBUser, error) {
	return user.FindOneById(ctx, id)
}

func (*DBConnector) FindUsers(ctx context.Context) ([]user.DBUser, error) {
	return user.Find(ctx, user.All)
}

func (*DBConnector) FindUsersByIds(ctx context.Context, ids []string) ([]user.DBUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return user.Find(ctx, user.ByIds(ids))
}

func (*DBConnector) CreateUser(ctx context.Context, u *user.DBUser) error {
	existing, err := user.FindOneByEmail(ctx, u.EmailAddress)
	if err != nil {
		return err
	}
	if existing != nil {
		return emailTaken(u.EmailAddress)
	}
	if err = u.Insert(ctx); err != nil {
		if db.IsDuplicateKey(err) {
			return emailTaken(u.EmailAddress)
		}
		return err
	}
	return nil
}

func (*DBConnector) SetUserPassword(ctx context.Context, u *user.DBUser, hash string) error {
	return u.SetPasswordHash(ctx, hash)
}

func (*DBConnector) CreateDriver(ctx context.Context, d *driver.Driver) error {
	return d.Insert(ctx)
}

func (*DBConnector) FindDrivers(ctx context.Context) ([]driver.Driver, error) {
	return driver.Find(ctx, driver.All)
}

func (*DBConnector) FindDriversByIds(ctx context.Context, ids []string) ([]driver.Driver, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return driver.Find(ctx, driver.ByIds(ids))
}

func (*DBConnector) FindDriverById(ctx context.Context, id string) (*driver.Driver, error) {
	return driver.FindOneById(ctx, id)
}

func (*DBConnector) FindDriverByUserId(ctx context.Context, userId string) (*driver.Driver, error) {
	return driver.FindOneByUserId(ctx, userId)
}

func (*DBConnector) SetDriverOnline(ctx context.Context, d *driver.Driver, online bool) error {
	return d.SetOnline(ctx, online)
}

func (*DBConnector) RecordDriverRideCompleted(ctx context.Context, d *driver.Driver, endKm float64) error {
	return d.RecordRideCompleted(ctx, endKm)
}

func (*DBConnector) CreatePassenger(ctx context.Context, p *passenger.Passenger) error {
	return p.Insert(ctx)
}

func (*DBConnector) FindPassengers(ctx context.Context) ([]passenger.Passenger, error) {
	return passenger.Find(ctx, passenger.All)
}

func (*DBConnector) FindPassengersByIds(ctx context.Context, ids []string) ([]passenger.Passenger, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return passenger.Find(ctx, passenger.ByIds(ids))
}

func (*DBConnector) FindPassengerById(ctx context.Context, id string) (*passenger.Passenger, error) {
	return passenger.FindOneById(ctx, id)
}

func (*DBConnector) FindPassengerByUserId(ctx context.Context, userId string) (*passenger.Passenger, error) {
	return passenger.FindOneByUserId(ctx, userId)
}

func (*DBConnector) IncPassengerRides(ctx context.Context, p *passenger.Passenger) error {
	return p.IncTotalRides(ctx)
}

func (*DBConnector) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	return a.Insert(ctx)
}

func (*DBConnector) FindAdminByUserId(ctx context.Context, userId string) (*admin.Admin, error) {
	return admin.FindOneByUserId(ctx, userId)
}

func (*DBConnector) CreateVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	return v.Insert(ctx)
}

func (*DBConnector) FindVehicles(ctx context.Context) ([]vehicle.Vehicle, error) {
	return vehicle.Find(ctx, vehicle.All)
}

func (*DBConnector) CreateFuelEntry(ctx context.Context, e *fuel.Entry) error {
	return e.Insert(ctx)
}

func (*DBConnector) FindFuelEntries(ctx context.Context) ([]fuel.Entry, error) {
	return fuel.Find(ctx, fuel.All)
}

func (*DBConnector) SetFuelEntryDriver(ctx context.Context, e *fuel.Entry, driverId string) error {
	return e.SetDriver(ctx, driverId)
}

func (*DBConnector) CreateRide(ctx context.Context, r *ride.Ride) error {
	if err := r.Insert(ctx); err != nil {
		return err
	}
	rideInstruments.record(ctx, r)
	return nil
}

func (*DBConnector) FindRideById(ctx context.Context, id string) (*ride.Ride, error) {
	return ride.FindOneById(ctx, id)
}

func (*DBConnector) FindRides(ctx context.Context, f ride.Filter) ([]ride.Ride, error) {
	return ride.Find(ctx, f.Query())
}

func (*DBConnector) UpdateRide(ctx context.Context, r *ride.Ride) error {
	if err := r.UpdateLifecycle(ctx); err != nil {
		return err
	}
	rideInstruments.record(ctx, r)
	return nil
}

func (*DBConnector) CountRidesByStatus(ctx context.Context) (map[string]int, error) {
	return ride.CountByStatus(ctx)
}

func (c *DBConnector) EstimateRoute(ctx context.Context, from, to thirdparty.Coordinates) (*thirdparty.RouteEstimate, error) {
	ctx, span := tracer.Start(ctx, "estimate-route")
	defer span.End()

	estimate, err := c.Estimator.Estimate(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "estimating route")
	}
	span.SetAttributes(attribute.String("rideshare.estimate.source", estimate.Source))
	return estimate, nil
}

func (*DBConnector) CreateAttendance(ctx context.Context, a *attendance.Attendance) error {
	return a.Insert(ctx)
}

func (*DBConnector) FindAttendance(ctx context.Context, f attendance.Filter) ([]attendance.Attendance, error) {
	return attendance.Find(ctx, f.Query())
}

func (*DBConnector) FindAttendanceById(ctx context.Context, id string) (*attendance.Attendance, error) {
	return attendance.FindOneById(ctx, id)
}

func (*DBConnector) UpdateAttendance(ctx context.Context, a *attendance.Attendance) error {
	return a.Update(ctx)
}

func (*DBConnector) DeleteAttendance(ctx context.Context, id string) error {
	err := attendance.Remove(ctx, id)
	if db.ResultsNotFound(err) {
		return attendanceNotFound(id)
	}
	return err
}

func attendanceNotFound(id string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("attendance record '%s' not found", id),
	}
}

func (*DBConnector) CountDocuments(ctx context.Context, collection string) (int, error) {
	return db.Count(ctx, collection, nil)
}

func (*DBConnector) ListCollections(ctx context.Context) ([]string, error) {
	return db.ListCollections(ctx)
}

// EnsureIndexes creates the unique indexes of the users, drivers and
// passengers collections.
func (*DBConnector) EnsureIndexes(ctx context.Context) error {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(user.EnsureIndexes(ctx), "users")
	catcher.Wrap(driver.EnsureIndexes(ctx), "drivers")
	catcher.Wrap(passenger.EnsureIndexes(ctx), "passengers")
	return catcher.Resolve()
}
