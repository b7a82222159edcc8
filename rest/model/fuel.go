package model

import (
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/user"
)

// APIFuelEntry is a fuel entry joined with the driver and vehicle it
// belongs to.
type APIFuelEntry struct {
	Id           *string    `json:"id"`
	DriverId     *string    `json:"driver_id"`
	DriverName   *string    `json:"driver_name"`
	VehicleMake  *string    `json:"vehicle_make"`
	LicensePlate *string    `json:"license_plate"`
	FuelAmount   float64    `json:"fuel_amount"`
	FuelCost     float64    `json:"fuel_cost"`
	FuelStation  *string    `json:"fuel_station"`
	Date         *time.Time `json:"date"`
	AddedBy      *string    `json:"added_by"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// BuildFromService converts an entry. A nil driver or user renders as
// unknown.
func (f *APIFuelEntry) BuildFromService(in fuel.Entry, d *driver.Driver, u *user.DBUser) {
	f.Id = utility.ToStringPtr(in.Id)
	f.DriverId = utility.ToStringPtr(in.DriverId)
	f.FuelAmount = in.Amount
	f.FuelCost = in.Cost
	f.FuelStation = utility.ToStringPtr(in.Location)
	f.Date = timePtr(in.Date)
	f.AddedBy = utility.ToStringPtr(in.AddedBy)
	f.CreatedAt = timePtr(in.CreatedAt)

	f.DriverName = utility.ToStringPtr(rideshare.Unknown)
	f.VehicleMake = utility.ToStringPtr(rideshare.Unknown)
	f.LicensePlate = utility.ToStringPtr(rideshare.Unknown)
	if d != nil {
		f.VehicleMake = utility.ToStringPtr(d.VehicleMake)
		f.LicensePlate = utility.ToStringPtr(d.LicensePlate)
	}
	if u != nil {
		f.DriverName = utility.ToStringPtr(u.Name)
	}
}

// parseFuelDate returns now for missing or unparseable dates.
func parseFuelDate(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	date, err := ParseISOTime(value)
	if err != nil {
		return time.Now()
	}
	return date
}

// APIFuelEntryCreate is the body of an admin request recording fuel for a
// driver.
type APIFuelEntryCreate struct {
	DriverId    string   `json:"driver_id"`
	FuelAmount  *float64 `json:"fuel_amount"`
	FuelCost    *float64 `json:"fuel_cost"`
	FuelStation string   `json:"fuel_station"`
	Date        string   `json:"date"`
}

func (c *APIFuelEntryCreate) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.DriverId == "", "driver_id is required")
	catcher.NewWhen(c.FuelAmount == nil, "fuel_amount is required")
	catcher.NewWhen(c.FuelCost == nil, "fuel_cost is required")
	catcher.NewWhen(c.FuelAmount != nil && *c.FuelAmount <= 0, "fuel_amount must be positive")
	catcher.NewWhen(c.FuelCost != nil && *c.FuelCost < 0, "fuel_cost cannot be negative")
	return catcher.Resolve()
}

func (c *APIFuelEntryCreate) ToService(adminId string) *fuel.Entry {
	return fuel.New(fuel.Entry{
		DriverId: c.DriverId,
		Amount:   utility.FromFloat64Ptr(c.FuelAmount),
		Cost:     utility.FromFloat64Ptr(c.FuelCost),
		Location: c.FuelStation,
		Date:     parseFuelDate(c.Date),
		AddedBy:  rideshare.FuelAddedByAdmin,
		AdminId:  adminId,
	})
}

// APIDriverFuelEntry is the body of a driver recording their own fuel.
type APIDriverFuelEntry struct {
	Amount   *float64 `json:"amount"`
	Cost     *float64 `json:"cost"`
	Location string   `json:"location"`
	Date     string   `json:"date"`
}

func (c *APIDriverFuelEntry) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.Amount == nil, "amount is required")
	catcher.NewWhen(c.Cost == nil, "cost is required")
	catcher.NewWhen(c.Amount != nil && *c.Amount <= 0, "amount must be positive")
	catcher.NewWhen(c.Cost != nil && *c.Cost < 0, "cost cannot be negative")
	return catcher.Resolve()
}

func (c *APIDriverFuelEntry) ToService(driverId string) *fuel.Entry {
	return fuel.New(fuel.Entry{
		DriverId: driverId,
		Amount:   utility.FromFloat64Ptr(c.Amount),
		Cost:     utility.FromFloat64Ptr(c.Cost),
		Location: c.Location,
		Date:     parseFuelDate(c.Date),
		AddedBy:  rideshare.FuelAddedByDriver,
	})
}
