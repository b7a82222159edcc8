package data

import (
	"context"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/user"
)

// FuelEntryDetails is a fuel entry joined with its driver and the driver's
// account. Either may be nil.
type FuelEntryDetails struct {
	Entry  fuel.Entry
	Driver *driver.Driver
	User   *user.DBUser
}

// GetFuelEntryDetails returns every fuel entry, most recent first, with its
// driver.
func GetFuelEntryDetails(ctx context.Context, sc Connector) ([]FuelEntryDetails, error) {
	entries, err := sc.FindFuelEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "finding fuel entries")
	}

	driverIds := make([]string, 0, len(entries))
	for _, e := range entries {
		driverIds = append(driverIds, e.DriverId)
	}
	drivers, err := sc.FindDriversByIds(ctx, driverIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding fuel entry drivers")
	}
	driversById := map[string]*driver.Driver{}
	userIds := []string{}
	for i := range drivers {
		driversById[drivers[i].Id] = &drivers[i]
		userIds = append(userIds, drivers[i].UserId)
	}
	usersById, err := GetUsersForProfiles(ctx, sc, userIds)
	if err != nil {
		return nil, err
	}

	out := make([]FuelEntryDetails, 0, len(entries))
	for _, e := range entries {
		details := FuelEntryDetails{Entry: e}
		if d, ok := driversById[e.DriverId]; ok {
			details.Driver = d
			details.User = usersById[d.UserId]
		}
		out = append(out, details)
	}
	return out, nil
}

// FixFuelEntriesResult reports the outcome of FixFuelEntries.
type FixFuelEntriesResult struct {
	Fixed int
	Total int
}

// Errors returned by FixFuelEntries.
var (
	ErrNoDrivers     = errors.New("no drivers found")
	ErrNoFuelEntries = errors.New("no fuel entries found")
)

// FixFuelEntries points every fuel entry whose driver no longer exists at
// the first driver.
func FixFuelEntries(ctx context.Context, sc Connector) (*FixFuelEntriesResult, error) {
	drivers, err := sc.FindDrivers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "finding drivers")
	}
	if len(drivers) == 0 {
		return nil, ErrNoDrivers
	}
	entries, err := sc.FindFuelEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "finding fuel entries")
	}
	if len(entries) == 0 {
		return nil, ErrNoFuelEntries
	}

	known := make(map[string]bool, len(drivers))
	for _, d := range drivers {
		known[d.Id] = true
	}
	target := drivers[0].Id

	result := &FixFuelEntriesResult{Total: len(entries)}
	catcher := grip.NewBasicCatcher()
	for i := range entries {
		if known[entries[i].DriverId] {
			continue
		}
		orphaned := entries[i].DriverId
		if err = sc.SetFuelEntryDriver(ctx, &entries[i], target); err != nil {
			catcher.Add(err)
			continue
		}
		result.Fixed++
		grip.Info(message.Fields{
			"message":        "reassigned orphaned fuel entry",
			"fuel_entry":     entries[i].Id,
			"missing_driver": orphaned,
			"driver":         target,
		})
	}
	return result, catcher.Resolve()
}
