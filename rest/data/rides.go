package data

import (
	"context"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/ride"
)

// CompleteRide completes the ride for the driver and records the new
// odometer reading and ride counts of the driver and passenger. Counters are
// only touched once the ride's own status change is saved. If the driver
// cannot be updated the ride is put back in progress.
func CompleteRide(ctx context.Context, sc Connector, r *ride.Ride, d *driver.Driver, endKm float64) error {
	if err := r.Complete(d.Id, endKm, time.Now()); err != nil {
		return err
	}
	if err := sc.UpdateRide(ctx, r); err != nil {
		return errors.Wrapf(err, "completing ride '%s'", r.Id)
	}
	if err := sc.RecordDriverRideCompleted(ctx, d, endKm); err != nil {
		err = errors.Wrapf(err, "updating driver '%s'", d.Id)
		reopenRide(ctx, sc, r, err)
		return err
	}

	p, err := sc.FindPassengerById(ctx, r.PassengerId)
	if err != nil {
		return errors.Wrapf(err, "finding passenger '%s'", r.PassengerId)
	}
	if p == nil {
		grip.Warning(message.Fields{
			"message":   "completed ride has no passenger profile",
			"ride":      r.Id,
			"passenger": r.PassengerId,
		})
		return nil
	}
	return errors.Wrapf(sc.IncPassengerRides(ctx, p), "updating passenger '%s'", p.Id)
}

func reopenRide(ctx context.Context, sc Connector, r *ride.Ride, cause error) {
	err := r.Reopen()
	if err == nil {
		err = sc.UpdateRide(ctx, r)
	}
	grip.Error(message.WrapError(err, message.Fields{
		"message": "could not reopen ride after failed completion",
		"ride":    r.Id,
		"cause":   cause.Error(),
	}))
}
