package data

import (
	"context"

	"github.com/rectransport/rideshare/model/admin"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/model/vehicle"
	"github.com/rectransport/rideshare/thirdparty"
)

// Connector is the interface between the route handlers and the document
// store. Lookups of a single document return nil and no error when the
// document does not exist.
type Connector interface {
	// Users
	FindUserByEmail(context.Context, string) (*user.DBUser, error)
	FindUserById(context.Context, string) (*user.DBUser, error)
	FindUsers(context.Context) ([]user.DBUser, error)
	FindUsersByIds(context.Context, []string) ([]user.DBUser, error)
	// CreateUser inserts the user, returning a 400 error response if the
	// email is already registered.
	CreateUser(context.Context, *user.DBUser) error
	SetUserPassword(context.Context, *user.DBUser, string) error

	// Profiles
	CreateDriver(context.Context, *driver.Driver) error
	FindDrivers(context.Context) ([]driver.Driver, error)
	FindDriversByIds(context.Context, []string) ([]driver.Driver, error)
	FindDriverById(context.Context, string) (*driver.Driver, error)
	FindDriverByUserId(context.Context, string) (*driver.Driver, error)
	SetDriverOnline(context.Context, *driver.Driver, bool) error
	RecordDriverRideCompleted(context.Context, *driver.Driver, float64) error

	CreatePassenger(context.Context, *passenger.Passenger) error
	FindPassengers(context.Context) ([]passenger.Passenger, error)
	FindPassengersByIds(context.Context, []string) ([]passenger.Passenger, error)
	FindPassengerById(context.Context, string) (*passenger.Passenger, error)
	FindPassengerByUserId(context.Context, string) (*passenger.Passenger, error)
	IncPassengerRides(context.Context, *passenger.Passenger) error

	CreateAdmin(context.Context, *admin.Admin) error
	FindAdminByUserId(context.Context, string) (*admin.Admin, error)

	// Fleet
	CreateVehicle(context.Context, *vehicle.Vehicle) error
	FindVehicles(context.Context) ([]vehicle.Vehicle, error)
	CreateFuelEntry(context.Context, *fuel.Entry) error
	FindFuelEntries(context.Context) ([]fuel.Entry, error)
	SetFuelEntryDriver(context.Context, *fuel.Entry, string) error

	// Rides
	CreateRide(context.Context, *ride.Ride) error
	FindRideById(context.Context, string) (*ride.Ride, error)
	FindRides(context.Context, ride.Filter) ([]ride.Ride, error)
	// UpdateRide persists a lifecycle transition made on the ride.
	UpdateRide(context.Context, *ride.Ride) error
	CountRidesByStatus(context.Context) (map[string]int, error)
	EstimateRoute(context.Context, thirdparty.Coordinates, thirdparty.Coordinates) (*thirdparty.RouteEstimate, error)

	// Attendance
	CreateAttendance(context.Context, *attendance.Attendance) error
	FindAttendance(context.Context, attendance.Filter) ([]attendance.Attendance, error)
	FindAttendanceById(context.Context, string) (*attendance.Attendance, error)
	UpdateAttendance(context.Context, *attendance.Attendance) error
	// DeleteAttendance returns a 404 error response if the record does not
	// exist.
	DeleteAttendance(context.Context, string) error

	// Store
	CountDocuments(context.Context, string) (int, error)
	ListCollections(context.Context) ([]string, error)
	EnsureIndexes(context.Context) error
}
