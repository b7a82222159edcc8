package model

import (
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/user"
)

// APIDriver is a driver profile, optionally with its user account.
type APIDriver struct {
	Id               *string    `json:"id"`
	UserId           *string    `json:"user_id"`
	LicenseNumber    *string    `json:"license_number"`
	LicenseExpiry    *string    `json:"license_expiry"`
	VehicleMake      *string    `json:"vehicle_make"`
	VehicleModel     *string    `json:"vehicle_model"`
	VehicleYear      int        `json:"vehicle_year"`
	LicensePlate     *string    `json:"license_plate"`
	VehicleColor     *string    `json:"vehicle_color"`
	Rating           float64    `json:"rating"`
	TotalRides       int        `json:"total_rides"`
	CurrentKmReading float64    `json:"current_km_reading"`
	IsOnline         bool       `json:"is_online"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	User             *APIUser   `json:"user,omitempty"`
}

// BuildFromService converts a driver document. The user is embedded when
// non-nil.
func (d *APIDriver) BuildFromService(in driver.Driver, u *user.DBUser) {
	d.Id = utility.ToStringPtr(in.Id)
	d.UserId = utility.ToStringPtr(in.UserId)
	d.LicenseNumber = utility.ToStringPtr(in.LicenseNumber)
	d.LicenseExpiry = utility.ToStringPtr(in.LicenseExpiry)
	d.VehicleMake = utility.ToStringPtr(in.VehicleMake)
	d.VehicleModel = utility.ToStringPtr(in.VehicleModel)
	d.VehicleYear = in.VehicleYear
	d.LicensePlate = utility.ToStringPtr(in.LicensePlate)
	d.VehicleColor = utility.ToStringPtr(in.VehicleColor)
	d.Rating = in.Rating
	d.TotalRides = in.TotalRides
	d.CurrentKmReading = in.CurrentKmReading
	d.IsOnline = in.IsOnline
	d.CreatedAt = timePtr(in.CreatedAt)
	d.UpdatedAt = timePtr(in.UpdatedAt)
	if u != nil {
		d.User = &APIUser{}
		d.User.BuildFromService(*u)
	}
}

// APIDriverCreate is the body of an admin request creating a driver account
// and profile. Vehicle fields are optional.
type APIDriverCreate struct {
	User             APIUserInfo `json:"user"`
	LicenseNumber    string      `json:"license_number"`
	LicenseExpiry    string      `json:"license_expiry"`
	VehicleMake      *string     `json:"vehicle_make"`
	VehicleModel     *string     `json:"vehicle_model"`
	VehicleYear      *int        `json:"vehicle_year"`
	LicensePlate     *string     `json:"license_plate"`
	VehicleColor     *string     `json:"vehicle_color"`
	Rating           *float64    `json:"rating"`
	TotalRides       *int        `json:"total_rides"`
	CurrentKmReading *float64    `json:"current_km_reading"`
}

// Validate checks the required account and license fields.
func (c *APIDriverCreate) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.Add(c.User.Validate())
	catcher.NewWhen(c.LicenseNumber == "", "license_number is required")
	catcher.NewWhen(c.LicenseExpiry == "", "license_expiry is required")
	return catcher.Resolve()
}

// ToService builds the driver profile for the given user, filling the
// vehicle placeholders for omitted fields.
func (c *APIDriverCreate) ToService(userId string) *driver.Driver {
	d := driver.New(userId, c.LicenseNumber, c.LicenseExpiry)
	if c.VehicleMake != nil {
		d.VehicleMake = *c.VehicleMake
	}
	if c.VehicleModel != nil {
		d.VehicleModel = *c.VehicleModel
	}
	if c.VehicleYear != nil {
		d.VehicleYear = *c.VehicleYear
	}
	if c.LicensePlate != nil {
		d.LicensePlate = *c.LicensePlate
	}
	if c.VehicleColor != nil {
		d.VehicleColor = *c.VehicleColor
	}
	if c.Rating != nil {
		d.Rating = *c.Rating
	}
	if c.TotalRides != nil {
		d.TotalRides = *c.TotalRides
	}
	if c.CurrentKmReading != nil {
		d.CurrentKmReading = *c.CurrentKmReading
	}
	return d
}

// APIDriverStatus is the body of a driver availability update.
type APIDriverStatus struct {
	IsOnline *bool `json:"is_online"`
}
