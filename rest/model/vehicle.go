package model

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/vehicle"
)

// Vehicle listing sources.
const (
	VehicleSourceFleet  = "vehicle"
	VehicleSourceDriver = "driver"
)

// APIVehicle is either a standalone fleet vehicle or the vehicle recorded
// on a driver profile.
type APIVehicle struct {
	Id            *string `json:"id"`
	VehicleMake   *string `json:"vehicle_make"`
	VehicleModel  *string `json:"vehicle_model"`
	VehicleYear   int     `json:"vehicle_year"`
	LicensePlate  *string `json:"license_plate"`
	VehicleColor  *string `json:"vehicle_color"`
	LicenseNumber *string `json:"license_number"`
	LicenseExpiry *string `json:"license_expiry"`
	Source        string  `json:"source"`
	DriverId      *string `json:"driver_id,omitempty"`
}

func (v *APIVehicle) BuildFromService(in vehicle.Vehicle) {
	v.Id = utility.ToStringPtr(in.Id)
	v.VehicleMake = utility.ToStringPtr(in.Make)
	v.VehicleModel = utility.ToStringPtr(in.Model)
	v.VehicleYear = in.Year
	v.LicensePlate = utility.ToStringPtr(in.LicensePlate)
	v.VehicleColor = utility.ToStringPtr(in.Color)
	v.LicenseNumber = utility.ToStringPtr(in.LicenseNumber)
	if !in.LicenseExpiry.IsZero() {
		v.LicenseExpiry = utility.ToStringPtr(in.LicenseExpiry.Format(rideshare.DayMonthYearLayout))
	}
	v.Source = VehicleSourceFleet
}

// BuildFromDriver converts the vehicle details of a driver profile.
func (v *APIVehicle) BuildFromDriver(in driver.Driver) {
	v.Id = utility.ToStringPtr(in.Id)
	v.VehicleMake = utility.ToStringPtr(in.VehicleMake)
	v.VehicleModel = utility.ToStringPtr(in.VehicleModel)
	v.VehicleYear = in.VehicleYear
	v.LicensePlate = utility.ToStringPtr(in.LicensePlate)
	v.VehicleColor = utility.ToStringPtr(in.VehicleColor)
	v.LicenseNumber = utility.ToStringPtr(in.LicenseNumber)
	v.LicenseExpiry = utility.ToStringPtr(in.LicenseExpiry)
	v.Source = VehicleSourceDriver
	v.DriverId = utility.ToStringPtr(in.Id)
}

// APIVehicleCreate is the body of a request registering a fleet vehicle.
// Every field is required.
type APIVehicleCreate struct {
	VehicleMake   *string `json:"vehicle_make"`
	VehicleModel  *string `json:"vehicle_model"`
	VehicleYear   *int    `json:"vehicle_year"`
	LicensePlate  *string `json:"license_plate"`
	VehicleColor  *string `json:"vehicle_color"`
	LicenseNumber *string `json:"license_number"`
	LicenseExpiry *string `json:"license_expiry"`
}

func missingField(name string) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("Missing required field: %s", name),
	}
}

// ToService validates the request and converts it to a vehicle. The first
// missing field is reported by name.
func (c *APIVehicleCreate) ToService() (*vehicle.Vehicle, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"vehicle_make", blank(c.VehicleMake)},
		{"vehicle_model", blank(c.VehicleModel)},
		{"vehicle_year", c.VehicleYear == nil},
		{"license_plate", blank(c.LicensePlate)},
		{"vehicle_color", blank(c.VehicleColor)},
		{"license_number", blank(c.LicenseNumber)},
		{"license_expiry", blank(c.LicenseExpiry)},
	}
	for _, field := range required {
		if field.missing {
			return nil, missingField(field.name)
		}
	}

	expiry, err := ParseDayMonthYear(*c.LicenseExpiry)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid license_expiry format. Use DD-MM-YYYY",
		}
	}

	return vehicle.New(vehicle.Vehicle{
		Make:          *c.VehicleMake,
		Model:         *c.VehicleModel,
		Year:          *c.VehicleYear,
		LicensePlate:  *c.LicensePlate,
		Color:         *c.VehicleColor,
		LicenseNumber: *c.LicenseNumber,
		LicenseExpiry: expiry,
	}), nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
