package ride

import (
	"fmt"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
)

// Ride is a trip requested by a passenger and served by a driver.
type Ride struct {
	Id                    string    `bson:"_id"`
	PassengerId           string    `bson:"passenger_id"`
	DriverId              string    `bson:"driver_id,omitempty"`
	Status                string    `bson:"status"`
	PickupLatitude        float64   `bson:"pickup_latitude"`
	PickupLongitude       float64   `bson:"pickup_longitude"`
	PickupAddress         string    `bson:"pickup_address"`
	DropoffLatitude       float64   `bson:"dropoff_latitude"`
	DropoffLongitude      float64   `bson:"dropoff_longitude"`
	DropoffAddress        string    `bson:"dropoff_address"`
	RequestedAt           time.Time `bson:"requested_at"`
	AssignedAt            time.Time `bson:"assigned_at,omitempty"`
	PickedUpAt            time.Time `bson:"picked_up_at,omitempty"`
	CompletedAt           time.Time `bson:"completed_at,omitempty"`
	CancelledAt           time.Time `bson:"cancelled_at,omitempty"`
	Distance              float64   `bson:"distance"`
	EstimatedDistance     float64   `bson:"estimated_distance,omitempty"`
	EstimatedDurationSecs int       `bson:"estimated_duration_secs,omitempty"`
	StartKm               float64   `bson:"start_km"`
	EndKm                 float64   `bson:"end_km"`

	// fromStatus is the status before the last unsaved lifecycle change.
	fromStatus string
}

// Location is one end of a ride.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// New returns a requested ride for the passenger. If driverId is set the
// ride is assigned immediately.
func New(passengerId, driverId string, pickup, dropoff Location) *Ride {
	now := time.Now()
	r := &Ride{
		Id:               uuid.New().String(),
		PassengerId:      passengerId,
		Status:           rideshare.RideRequested,
		PickupLatitude:   pickup.Latitude,
		PickupLongitude:  pickup.Longitude,
		PickupAddress:    pickup.Address,
		DropoffLatitude:  dropoff.Latitude,
		DropoffLongitude: dropoff.Longitude,
		DropoffAddress:   dropoff.Address,
		RequestedAt:      now,
	}
	if driverId != "" {
		r.DriverId = driverId
		r.Status = rideshare.RideAssigned
		r.AssignedAt = now
	}
	return r
}

func (r *Ride) Pickup() Location {
	return Location{Latitude: r.PickupLatitude, Longitude: r.PickupLongitude, Address: r.PickupAddress}
}

func (r *Ride) Dropoff() Location {
	return Location{Latitude: r.DropoffLatitude, Longitude: r.DropoffLongitude, Address: r.DropoffAddress}
}

var (
	// ErrNotAssignedDriver is returned when a driver acts on a ride
	// assigned to someone else.
	ErrNotAssignedDriver = errors.New("ride is not assigned to this driver")

	// ErrStatusChanged is returned when saving a lifecycle change to a ride
	// whose stored status no longer matches the one the change was made from.
	ErrStatusChanged = errors.New("ride was updated by another request, reload it and try again")

	// ErrEndBeforeStart is returned when a ride is completed with an
	// odometer reading below the one it started with.
	ErrEndBeforeStart = errors.New("end_km cannot be less than start_km")
)

// TransitionError is returned when an action is not allowed from the ride's
// current status.
type TransitionError struct {
	Action string
	Status string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a ride that is %s", e.Action, e.Status)
}

// IsTransitionError reports whether err is, or wraps, a TransitionError.
func IsTransitionError(err error) bool {
	_, ok := errors.Cause(err).(*TransitionError)
	return ok
}

func (r *Ride) checkStatus(action string, allowed ...string) error {
	if !utility.StringSliceContains(allowed, r.Status) {
		return &TransitionError{Action: action, Status: r.Status}
	}
	return nil
}

func (r *Ride) setStatus(status string) {
	r.fromStatus = r.Status
	r.Status = status
}

// PreviousStatus returns the status the ride had before its unsaved
// lifecycle change, or the empty string if there is none.
func (r *Ride) PreviousStatus() string {
	return r.fromStatus
}

// MarkSaved records that the ride's lifecycle change has been persisted.
func (r *Ride) MarkSaved() {
	r.fromStatus = ""
}

func (r *Ride) checkDriver(driverId string) error {
	if r.DriverId == "" || r.DriverId != driverId {
		return ErrNotAssignedDriver
	}
	return nil
}

// Assign gives the ride to a driver. Assigned rides may be reassigned.
func (r *Ride) Assign(driverId string, at time.Time) error {
	if err := r.checkStatus("assign", rideshare.RideRequested, rideshare.RideAssigned); err != nil {
		return err
	}
	r.DriverId = driverId
	r.setStatus(rideshare.RideAssigned)
	r.AssignedAt = at
	return nil
}

// Start records the pickup by the assigned driver.
func (r *Ride) Start(driverId string, startKm float64, at time.Time) error {
	if err := r.checkDriver(driverId); err != nil {
		return err
	}
	if err := r.checkStatus("start", rideshare.RideAssigned); err != nil {
		return err
	}
	r.setStatus(rideshare.RideInProgress)
	r.PickedUpAt = at
	r.StartKm = startKm
	return nil
}

// Complete records the drop-off by the assigned driver. The distance is the
// odometer difference when both readings are known.
func (r *Ride) Complete(driverId string, endKm float64, at time.Time) error {
	if err := r.checkDriver(driverId); err != nil {
		return err
	}
	if err := r.checkStatus("complete", rideshare.RideInProgress); err != nil {
		return err
	}
	if r.StartKm != 0 && endKm < r.StartKm {
		return ErrEndBeforeStart
	}
	r.setStatus(rideshare.RideCompleted)
	r.CompletedAt = at
	r.EndKm = endKm
	r.Distance = 0
	if r.StartKm != 0 && r.EndKm != 0 {
		r.Distance = r.EndKm - r.StartKm
	}
	return nil
}

// Cancel stops a ride that has not been picked up yet.
func (r *Ride) Cancel(at time.Time) error {
	if err := r.checkStatus("cancel", rideshare.RideRequested, rideshare.RideAssigned); err != nil {
		return err
	}
	r.setStatus(rideshare.RideCancelled)
	r.CancelledAt = at
	return nil
}

// Reopen undoes a completion that could not be recorded against the driver,
// putting the ride back in progress.
func (r *Ride) Reopen() error {
	if err := r.checkStatus("reopen", rideshare.RideCompleted); err != nil {
		return err
	}
	r.setStatus(rideshare.RideInProgress)
	r.CompletedAt = time.Time{}
	r.EndKm = 0
	r.Distance = 0
	return nil
}

// IsActive reports whether a driver is currently responsible for the ride.
func (r *Ride) IsActive() bool {
	return utility.StringSliceContains(rideshare.ActiveRideStatuses, r.Status)
}
