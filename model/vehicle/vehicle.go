package vehicle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
)

const Collection = "vehicles"

// Vehicle is a fleet vehicle registered independently of a driver.
type Vehicle struct {
	Id            string    `bson:"_id"`
	Make          string    `bson:"vehicle_make"`
	Model         string    `bson:"vehicle_model"`
	Year          int       `bson:"vehicle_year"`
	LicensePlate  string    `bson:"license_plate"`
	Color         string    `bson:"vehicle_color"`
	LicenseNumber string    `bson:"license_number"`
	LicenseExpiry time.Time `bson:"license_expiry"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

var (
	IdKey        = bsonutil.MustHaveTag(Vehicle{}, "Id")
	CreatedAtKey = bsonutil.MustHaveTag(Vehicle{}, "CreatedAt")
)

// All is a query that returns every vehicle, oldest first.
var All = db.Query(nil).Sort([]string{CreatedAtKey})

// New fills in the id and timestamps of v.
func New(v Vehicle) *Vehicle {
	now := time.Now()
	v.Id = uuid.New().String()
	v.CreatedAt = now
	v.UpdatedAt = now
	return &v
}

func Find(ctx context.Context, query db.Q) ([]Vehicle, error) {
	vehicles := []Vehicle{}
	err := db.FindAllQ(ctx, Collection, query, &vehicles)
	return vehicles, errors.Wrap(err, "finding vehicles")
}

func (v *Vehicle) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, v), "inserting vehicle '%s'", v.Id)
}
