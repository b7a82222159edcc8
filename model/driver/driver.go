package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

// Driver is the profile of a user with the driver role, including the
// vehicle they operate.
type Driver struct {
	Id               string    `bson:"_id"`
	UserId           string    `bson:"user_id"`
	LicenseNumber    string    `bson:"license_number"`
	LicenseExpiry    string    `bson:"license_expiry"`
	VehicleMake      string    `bson:"vehicle_make"`
	VehicleModel     string    `bson:"vehicle_model"`
	VehicleYear      int       `bson:"vehicle_year"`
	LicensePlate     string    `bson:"license_plate"`
	VehicleColor     string    `bson:"vehicle_color"`
	Rating           float64   `bson:"rating"`
	TotalRides       int       `bson:"total_rides"`
	CurrentKmReading float64   `bson:"current_km_reading"`
	IsOnline         bool      `bson:"is_online"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// New returns a driver profile for userId with placeholder vehicle details.
func New(userId, licenseNumber, licenseExpiry string) *Driver {
	now := time.Now()
	return &Driver{
		Id:            uuid.New().String(),
		UserId:        userId,
		LicenseNumber: licenseNumber,
		LicenseExpiry: licenseExpiry,
		VehicleMake:   rideshare.NotSpecified,
		VehicleModel:  rideshare.NotSpecified,
		VehicleYear:   rideshare.DefaultVehicleYear,
		LicensePlate:  rideshare.NotAssigned,
		VehicleColor:  rideshare.NotSpecified,
		Rating:        rideshare.DefaultRating,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasVehicle reports whether the profile carries enough vehicle details to
// be listed as a vehicle.
func (d *Driver) HasVehicle() bool {
	return d.VehicleMake != "" && d.VehicleModel != "" && d.LicensePlate != "" && d.VehicleColor != ""
}

func (d *Driver) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, d), "inserting driver '%s'", d.Id)
}

// SetOnline updates the availability of the driver.
func (d *Driver) SetOnline(ctx context.Context, online bool) error {
	now := time.Now()
	err := db.UpdateIdContext(ctx, Collection, d.Id, bson.M{
		"$set": bson.M{
			IsOnlineKey:  online,
			UpdatedAtKey: now,
		},
	})
	if err != nil {
		return errors.Wrapf(err, "setting online status for driver '%s'", d.Id)
	}
	d.IsOnline = online
	d.UpdatedAt = now
	return nil
}

// RecordRideCompleted sets the odometer to endKm and counts one more
// completed ride.
func (d *Driver) RecordRideCompleted(ctx context.Context, endKm float64) error {
	now := time.Now()
	err := db.UpdateIdContext(ctx, Collection, d.Id, bson.M{
		"$set": bson.M{
			CurrentKmReadingKey: endKm,
			UpdatedAtKey:        now,
		},
		"$inc": bson.M{TotalRidesKey: 1},
	})
	if err != nil {
		return errors.Wrapf(err, "recording completed ride for driver '%s'", d.Id)
	}
	d.CurrentKmReading = endKm
	d.TotalRides++
	d.UpdatedAt = now
	return nil
}
