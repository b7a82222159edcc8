package model

import (
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/thirdparty"
)

// APIRide is a ride, optionally joined with its driver and passenger.
type APIRide struct {
	Id                    *string       `json:"id"`
	PassengerId           *string       `json:"passenger_id"`
	DriverId              *string       `json:"driver_id"`
	Status                *string       `json:"status"`
	PickupLatitude        float64       `json:"pickup_latitude"`
	PickupLongitude       float64       `json:"pickup_longitude"`
	PickupAddress         *string       `json:"pickup_address"`
	DropoffLatitude       float64       `json:"dropoff_latitude"`
	DropoffLongitude      float64       `json:"dropoff_longitude"`
	DropoffAddress        *string       `json:"dropoff_address"`
	RequestedAt           *time.Time    `json:"requested_at"`
	AssignedAt            *time.Time    `json:"assigned_at"`
	PickedUpAt            *time.Time    `json:"picked_up_at"`
	CompletedAt           *time.Time    `json:"completed_at"`
	CancelledAt           *time.Time    `json:"cancelled_at"`
	Distance              float64       `json:"distance"`
	EstimatedDistance     float64       `json:"estimated_distance,omitempty"`
	EstimatedDurationSecs int           `json:"estimated_duration_secs,omitempty"`
	StartKm               float64       `json:"start_km"`
	EndKm                 float64       `json:"end_km"`
	Driver                *APIDriver    `json:"driver,omitempty"`
	Passenger             *APIPassenger `json:"passenger,omitempty"`
}

func (r *APIRide) BuildFromService(in ride.Ride) {
	r.Id = utility.ToStringPtr(in.Id)
	r.PassengerId = utility.ToStringPtr(in.PassengerId)
	if in.DriverId != "" {
		r.DriverId = utility.ToStringPtr(in.DriverId)
	}
	r.Status = utility.ToStringPtr(in.Status)
	r.PickupLatitude = in.PickupLatitude
	r.PickupLongitude = in.PickupLongitude
	r.PickupAddress = utility.ToStringPtr(in.PickupAddress)
	r.DropoffLatitude = in.DropoffLatitude
	r.DropoffLongitude = in.DropoffLongitude
	r.DropoffAddress = utility.ToStringPtr(in.DropoffAddress)
	r.RequestedAt = timePtr(in.RequestedAt)
	r.AssignedAt = timePtr(in.AssignedAt)
	r.PickedUpAt = timePtr(in.PickedUpAt)
	r.CompletedAt = timePtr(in.CompletedAt)
	r.CancelledAt = timePtr(in.CancelledAt)
	r.Distance = in.Distance
	r.EstimatedDistance = in.EstimatedDistance
	r.EstimatedDurationSecs = in.EstimatedDurationSecs
	r.StartKm = in.StartKm
	r.EndKm = in.EndKm
}

// AttachDriver embeds the driver profile and its account.
func (r *APIRide) AttachDriver(d *driver.Driver, u *user.DBUser) {
	if d == nil {
		return
	}
	r.Driver = &APIDriver{}
	r.Driver.BuildFromService(*d, u)
}

// AttachPassenger embeds the passenger profile and its account. A missing
// account is rendered as unknown.
func (r *APIRide) AttachPassenger(p *passenger.Passenger, u *user.DBUser) {
	if p == nil {
		return
	}
	r.Passenger = &APIPassenger{}
	r.Passenger.BuildFromService(*p, u)
	if u == nil {
		r.Passenger.User = UnknownUser(p.UserId)
	}
}

// APIRouteEndpoints are the two ends of a requested or estimated ride.
type APIRouteEndpoints struct {
	PickupLatitude   *float64 `json:"pickup_latitude"`
	PickupLongitude  *float64 `json:"pickup_longitude"`
	PickupAddress    string   `json:"pickup_address"`
	DropoffLatitude  *float64 `json:"dropoff_latitude"`
	DropoffLongitude *float64 `json:"dropoff_longitude"`
	DropoffAddress   string   `json:"dropoff_address"`
}

func (e *APIRouteEndpoints) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(e.PickupLatitude == nil || e.PickupLongitude == nil, "pickup coordinates are required")
	catcher.NewWhen(e.DropoffLatitude == nil || e.DropoffLongitude == nil, "dropoff coordinates are required")
	if catcher.HasErrors() {
		return catcher.Resolve()
	}
	catcher.Wrap(e.Pickup().Validate(), "invalid pickup")
	catcher.Wrap(e.Dropoff().Validate(), "invalid dropoff")
	return catcher.Resolve()
}

func (e *APIRouteEndpoints) Pickup() thirdparty.Coordinates {
	return thirdparty.Coordinates{
		Latitude:  utility.FromFloat64Ptr(e.PickupLatitude),
		Longitude: utility.FromFloat64Ptr(e.PickupLongitude),
	}
}

func (e *APIRouteEndpoints) Dropoff() thirdparty.Coordinates {
	return thirdparty.Coordinates{
		Latitude:  utility.FromFloat64Ptr(e.DropoffLatitude),
		Longitude: utility.FromFloat64Ptr(e.DropoffLongitude),
	}
}

// APIRideCreate is the body of a ride request. The driver is only honored
// for manual rides created by an admin.
type APIRideCreate struct {
	APIRouteEndpoints `json:",inline"`
	PassengerId       string `json:"passenger_id"`
	DriverId          string `json:"driver_id"`
}

// ToService converts the request into a new ride. An estimate, if given,
// is recorded on the ride.
func (c *APIRideCreate) ToService(passengerId, driverId string, estimate *thirdparty.RouteEstimate) (*ride.Ride, error) {
	if passengerId == "" {
		return nil, errors.New("passenger_id is required")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	pickup, dropoff := c.Pickup(), c.Dropoff()
	r := ride.New(passengerId, driverId,
		ride.Location{Latitude: pickup.Latitude, Longitude: pickup.Longitude, Address: c.PickupAddress},
		ride.Location{Latitude: dropoff.Latitude, Longitude: dropoff.Longitude, Address: c.DropoffAddress},
	)
	if estimate != nil {
		r.EstimatedDistance = estimate.DistanceKm
		r.EstimatedDurationSecs = estimate.DurationSecs
	}
	return r, nil
}

// APIRideAssign is the body of an assignment request.
type APIRideAssign struct {
	DriverId string `json:"driver_id"`
}

// APIOdometer is the body of a start or complete request.
type APIOdometer struct {
	StartKm *float64 `json:"start_km"`
	EndKm   *float64 `json:"end_km"`
}

// APIRideStats counts rides by status.
type APIRideStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func (s *APIRideStats) BuildFromService(counts map[string]int) {
	s.ByStatus = map[string]int{}
	s.Total = 0
	for status, count := range counts {
		s.ByStatus[status] = count
		s.Total += count
	}
}
