package data

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
)

// RideDetails is a ride joined with its driver and passenger profiles and
// their accounts. Any of the joined documents may be nil.
type RideDetails struct {
	Ride          ride.Ride
	Driver        *driver.Driver
	DriverUser    *user.DBUser
	Passenger     *passenger.Passenger
	PassengerUser *user.DBUser
}

// GetRideDetails joins the rides with their drivers, passengers and users
// using one lookup per collection.
func GetRideDetails(ctx context.Context, sc Connector, rides []ride.Ride) ([]RideDetails, error) {
	ctx, span := tracer.Start(ctx, "get-ride-details")
	defer span.End()

	driverIds := []string{}
	passengerIds := []string{}
	for _, r := range rides {
		if r.DriverId != "" {
			driverIds = append(driverIds, r.DriverId)
		}
		passengerIds = append(passengerIds, r.PassengerId)
	}

	drivers, err := sc.FindDriversByIds(ctx, driverIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding ride drivers")
	}
	passengers, err := sc.FindPassengersByIds(ctx, passengerIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding ride passengers")
	}

	driversById := map[string]*driver.Driver{}
	passengersById := map[string]*passenger.Passenger{}
	userIds := []string{}
	for i := range drivers {
		driversById[drivers[i].Id] = &drivers[i]
		userIds = append(userIds, drivers[i].UserId)
	}
	for i := range passengers {
		passengersById[passengers[i].Id] = &passengers[i]
		userIds = append(userIds, passengers[i].UserId)
	}

	usersById, err := GetUsersForProfiles(ctx, sc, userIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding ride users")
	}

	out := make([]RideDetails, 0, len(rides))
	for _, r := range rides {
		details := RideDetails{Ride: r}
		if d, ok := driversById[r.DriverId]; ok {
			details.Driver = d
			details.DriverUser = usersById[d.UserId]
		}
		if p, ok := passengersById[r.PassengerId]; ok {
			details.Passenger = p
			details.PassengerUser = usersById[p.UserId]
		}
		out = append(out, details)
	}
	return out, nil
}

// GetUsersForProfiles maps user ids to users for the given ids.
func GetUsersForProfiles(ctx context.Context, sc Connector, userIds []string) (map[string]*user.DBUser, error) {
	users, err := sc.FindUsersByIds(ctx, userIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	out := make(map[string]*user.DBUser, len(users))
	for i := range users {
		out[users[i].Id] = &users[i]
	}
	return out, nil
}
