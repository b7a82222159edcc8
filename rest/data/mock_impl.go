package data

import (
	"context"
	"sort"
	"sync"

	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
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

// MockConnector is an in-memory Connector for tests. The exported slices
// may be seeded directly before use; StoredError, if set, is returned by
// every write.
type MockConnector struct {
	Users        []user.DBUser
	Drivers      []driver.Driver
	Passengers   []passenger.Passenger
	Admins       []admin.Admin
	Vehicles     []vehicle.Vehicle
	FuelEntries  []fuel.Entry
	Rides        []ride.Ride
	Attendance   []attendance.Attendance
	Estimate     *thirdparty.RouteEstimate
	StoredError  error
	IndexesBuilt bool

	mu sync.RWMutex
}

func (mc *MockConnector) FindUserByEmail(_ context.Context, email string) (*user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	email = user.NormalizeEmail(email)
	for i := range mc.Users {
		if mc.Users[i].EmailAddress == email {
			u := mc.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) FindUserById(_ context.Context, id string) (*user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Users {
		if mc.Users[i].Id == id {
			u := mc.Users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) FindUsers(context.Context) ([]user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return append([]user.DBUser{}, mc.Users...), nil
}

func (mc *MockConnector) FindUsersByIds(_ context.Context, ids []string) ([]user.DBUser, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := []user.DBUser{}
	for _, u := range mc.Users {
		if utility.StringSliceContains(ids, u.Id) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (mc *MockConnector) CreateUser(_ context.Context, u *user.DBUser) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for _, existing := range mc.Users {
		if existing.EmailAddress == u.EmailAddress {
			return emailTaken(u.EmailAddress)
		}
	}
	mc.Users = append(mc.Users, *u)
	return nil
}

func (mc *MockConnector) SetUserPassword(_ context.Context, u *user.DBUser, hash string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Users {
		if mc.Users[i].Id == u.Id {
			mc.Users[i].PasswordHash = hash
			u.PasswordHash = hash
			return nil
		}
	}
	return errors.Errorf("user '%s' not found", u.Id)
}

func (mc *MockConnector) CreateDriver(_ context.Context, d *driver.Driver) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Drivers = append(mc.Drivers, *d)
	return nil
}

func (mc *MockConnector) FindDrivers(context.Context) ([]driver.Driver, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return append([]driver.Driver{}, mc.Drivers...), nil
}

func (mc *MockConnector) FindDriversByIds(_ context.Context, ids []string) ([]driver.Driver, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := []driver.Driver{}
	for _, d := range mc.Drivers {
		if utility.StringSliceContains(ids, d.Id) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (mc *MockConnector) findDriver(match func(*driver.Driver) bool) *driver.Driver {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Drivers {
		if match(&mc.Drivers[i]) {
			d := mc.Drivers[i]
			return &d
		}
	}
	return nil
}

func (mc *MockConnector) FindDriverById(_ context.Context, id string) (*driver.Driver, error) {
	return mc.findDriver(func(d *driver.Driver) bool { return d.Id == id }), nil
}

func (mc *MockConnector) FindDriverByUserId(_ context.Context, userId string) (*driver.Driver, error) {
	return mc.findDriver(func(d *driver.Driver) bool { return d.UserId == userId }), nil
}

func (mc *MockConnector) updateDriver(id string, update func(*driver.Driver)) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Drivers {
		if mc.Drivers[i].Id == id {
			update(&mc.Drivers[i])
			return nil
		}
	}
	return errors.Errorf("driver '%s' not found", id)
}

func (mc *MockConnector) SetDriverOnline(_ context.Context, d *driver.Driver, online bool) error {
	if err := mc.updateDriver(d.Id, func(stored *driver.Driver) { stored.IsOnline = online }); err != nil {
		return err
	}
	d.IsOnline = online
	return nil
}

func (mc *MockConnector) RecordDriverRideCompleted(_ context.Context, d *driver.Driver, endKm float64) error {
	err := mc.updateDriver(d.Id, func(stored *driver.Driver) {
		stored.CurrentKmReading = endKm
		stored.TotalRides++
	})
	if err != nil {
		return err
	}
	d.CurrentKmReading = endKm
	d.TotalRides++
	return nil
}

func (mc *MockConnector) CreatePassenger(_ context.Context, p *passenger.Passenger) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Passengers = append(mc.Passengers, *p)
	return nil
}

func (mc *MockConnector) FindPassengers(context.Context) ([]passenger.Passenger, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return append([]passenger.Passenger{}, mc.Passengers...), nil
}

func (mc *MockConnector) FindPassengersByIds(_ context.Context, ids []string) ([]passenger.Passenger, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := []passenger.Passenger{}
	for _, p := range mc.Passengers {
		if utility.StringSliceContains(ids, p.Id) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (mc *MockConnector) findPassenger(match func(*passenger.Passenger) bool) *passenger.Passenger {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Passengers {
		if match(&mc.Passengers[i]) {
			p := mc.Passengers[i]
			return &p
		}
	}
	return nil
}

func (mc *MockConnector) FindPassengerById(_ context.Context, id string) (*passenger.Passenger, error) {
	return mc.findPassenger(func(p *passenger.Passenger) bool { return p.Id == id }), nil
}

func (mc *MockConnector) FindPassengerByUserId(_ context.Context, userId string) (*passenger.Passenger, error) {
	return mc.findPassenger(func(p *passenger.Passenger) bool { return p.UserId == userId }), nil
}

func (mc *MockConnector) IncPassengerRides(_ context.Context, p *passenger.Passenger) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Passengers {
		if mc.Passengers[i].Id == p.Id {
			mc.Passengers[i].TotalRides++
			p.TotalRides++
			return nil
		}
	}
	return errors.Errorf("passenger '%s' not found", p.Id)
}

func (mc *MockConnector) CreateAdmin(_ context.Context, a *admin.Admin) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Admins = append(mc.Admins, *a)
	return nil
}

func (mc *MockConnector) FindAdminByUserId(_ context.Context, userId string) (*admin.Admin, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Admins {
		if mc.Admins[i].UserId == userId {
			a := mc.Admins[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) CreateVehicle(_ context.Context, v *vehicle.Vehicle) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Vehicles = append(mc.Vehicles, *v)
	return nil
}

func (mc *MockConnector) FindVehicles(context.Context) ([]vehicle.Vehicle, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return append([]vehicle.Vehicle{}, mc.Vehicles...), nil
}

func (mc *MockConnector) CreateFuelEntry(_ context.Context, e *fuel.Entry) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.FuelEntries = append(mc.FuelEntries, *e)
	return nil
}

func (mc *MockConnector) FindFuelEntries(context.Context) ([]fuel.Entry, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := append([]fuel.Entry{}, mc.FuelEntries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (mc *MockConnector) SetFuelEntryDriver(_ context.Context, e *fuel.Entry, driverId string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.FuelEntries {
		if mc.FuelEntries[i].Id == e.Id {
			mc.FuelEntries[i].DriverId = driverId
			e.DriverId = driverId
			return nil
		}
	}
	return errors.Errorf("fuel entry '%s' not found", e.Id)
}

func (mc *MockConnector) CreateRide(_ context.Context, r *ride.Ride) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Rides = append(mc.Rides, *r)
	return nil
}

func (mc *MockConnector) FindRideById(_ context.Context, id string) (*ride.Ride, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Rides {
		if mc.Rides[i].Id == id {
			r := mc.Rides[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) FindRides(_ context.Context, f ride.Filter) ([]ride.Ride, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := []ride.Ride{}
	for i := range mc.Rides {
		if f.Matches(&mc.Rides[i]) {
			out = append(out, mc.Rides[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (mc *MockConnector) UpdateRide(_ context.Context, r *ride.Ride) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Rides {
		if mc.Rides[i].Id != r.Id {
			continue
		}
		if from := r.PreviousStatus(); from != "" && mc.Rides[i].Status != from {
			return errors.Wrapf(ride.ErrStatusChanged, "updating ride '%s' from '%s'", r.Id, from)
		}
		r.MarkSaved()
		mc.Rides[i] = *r
		return nil
	}
	return errors.Errorf("ride '%s' not found", r.Id)
}

func (mc *MockConnector) CountRidesByStatus(context.Context) (map[string]int, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	counts := map[string]int{}
	for _, r := range mc.Rides {
		counts[r.Status]++
	}
	return counts, nil
}

// EstimateRoute returns the stored estimate, or the great-circle estimate
// when none is set.
func (mc *MockConnector) EstimateRoute(ctx context.Context, from, to thirdparty.Coordinates) (*thirdparty.RouteEstimate, error) {
	if mc.Estimate != nil {
		return mc.Estimate, nil
	}
	return thirdparty.NewGreatCircleEstimator().Estimate(ctx, from, to)
}

func (mc *MockConnector) CreateAttendance(_ context.Context, a *attendance.Attendance) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	mc.Attendance = append(mc.Attendance, *a)
	return nil
}

func (mc *MockConnector) FindAttendance(_ context.Context, f attendance.Filter) ([]attendance.Attendance, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	out := []attendance.Attendance{}
	for i := range mc.Attendance {
		if f.Matches(&mc.Attendance[i]) {
			out = append(out, mc.Attendance[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (mc *MockConnector) FindAttendanceById(_ context.Context, id string) (*attendance.Attendance, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	for i := range mc.Attendance {
		if mc.Attendance[i].Id == id {
			a := mc.Attendance[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (mc *MockConnector) UpdateAttendance(_ context.Context, a *attendance.Attendance) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Attendance {
		if mc.Attendance[i].Id == a.Id {
			mc.Attendance[i] = *a
			return nil
		}
	}
	return errors.Errorf("attendance record '%s' not found", a.Id)
}

func (mc *MockConnector) DeleteAttendance(_ context.Context, id string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.StoredError != nil {
		return mc.StoredError
	}
	for i := range mc.Attendance {
		if mc.Attendance[i].Id == id {
			mc.Attendance = append(mc.Attendance[:i], mc.Attendance[i+1:]...)
			return nil
		}
	}
	return attendanceNotFound(id)
}

func (mc *MockConnector) CountDocuments(_ context.Context, collection string) (int, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	switch collection {
	case user.Collection:
		return len(mc.Users), nil
	case driver.Collection:
		return len(mc.Drivers), nil
	case passenger.Collection:
		return len(mc.Passengers), nil
	case admin.Collection:
		return len(mc.Admins), nil
	case vehicle.Collection:
		return len(mc.Vehicles), nil
	case fuel.Collection:
		return len(mc.FuelEntries), nil
	case ride.Collection:
		return len(mc.Rides), nil
	case attendance.Collection:
		return len(mc.Attendance), nil
	default:
		return 0, nil
	}
}

func (mc *MockConnector) ListCollections(context.Context) ([]string, error) {
	collections := []string{}
	for _, name := range Collections {
		if count, _ := mc.CountDocuments(context.Background(), name); count > 0 {
			collections = append(collections, name)
		}
	}
	sort.Strings(collections)
	return collections, nil
}

func (mc *MockConnector) EnsureIndexes(context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.IndexesBuilt = true
	return nil
}
