package driver

import (
	"testing"

	"github.com/rectransport/rideshare"
	"github.com/stretchr/testify/assert"
)

func TestNewDriverDefaults(t *testing.T) {
	assert := assert.New(t)

	d := New("user", "DL-1", "01-01-2030")
	assert.NotEmpty(d.Id)
	assert.Equal("user", d.UserId)
	assert.Equal(rideshare.NotSpecified, d.VehicleMake)
	assert.Equal(rideshare.NotSpecified, d.VehicleModel)
	assert.Equal(rideshare.NotSpecified, d.VehicleColor)
	assert.Equal(rideshare.NotAssigned, d.LicensePlate)
	assert.Equal(rideshare.DefaultVehicleYear, d.VehicleYear)
	assert.Equal(rideshare.DefaultRating, d.Rating)
	assert.False(d.IsOnline)
	assert.True(d.HasVehicle())
}

func TestHasVehicle(t *testing.T) {
	d := &Driver{VehicleMake: "Toyota", VehicleModel: "Etios", LicensePlate: "KA-01", VehicleColor: "White"}
	assert.True(t, d.HasVehicle())

	d.LicensePlate = ""
	assert.False(t, d.HasVehicle())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user_id", UserIdKey)
	assert.Equal(t, "current_km_reading", CurrentKmReadingKey)
	assert.Equal(t, "is_online", IsOnlineKey)
}
