package fuel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

const Collection = "fuel_entries"

// Entry records one refuelling of a driver's vehicle, entered either by an
// admin or by the driver.
type Entry struct {
	Id        string    `bson:"_id"`
	DriverId  string    `bson:"driver_id"`
	Amount    float64   `bson:"amount"`
	Cost      float64   `bson:"cost"`
	Location  string    `bson:"location"`
	Date      time.Time `bson:"date"`
	AddedBy   string    `bson:"added_by"`
	AdminId   string    `bson:"admin_id,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

var (
	IdKey        = bsonutil.MustHaveTag(Entry{}, "Id")
	DriverIdKey  = bsonutil.MustHaveTag(Entry{}, "DriverId")
	DateKey      = bsonutil.MustHaveTag(Entry{}, "Date")
	CreatedAtKey = bsonutil.MustHaveTag(Entry{}, "CreatedAt")
)

// All is a query that returns every entry, most recent first.
var All = db.Query(nil).Sort([]string{"-" + DateKey})

// New fills in the id and creation time of e.
func New(e Entry) *Entry {
	e.Id = uuid.New().String()
	e.CreatedAt = time.Now()
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	return &e
}

func Find(ctx context.Context, query db.Q) ([]Entry, error) {
	entries := []Entry{}
	err := db.FindAllQ(ctx, Collection, query, &entries)
	return entries, errors.Wrap(err, "finding fuel entries")
}

func (e *Entry) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, e), "inserting fuel entry '%s'", e.Id)
}

// SetDriver points the entry at another driver.
func (e *Entry) SetDriver(ctx context.Context, driverId string) error {
	err := db.UpdateIdContext(ctx, Collection, e.Id, bson.M{
		"$set": bson.M{DriverIdKey: driverId},
	})
	if err != nil {
		return errors.Wrapf(err, "reassigning fuel entry '%s'", e.Id)
	}
	e.DriverId = driverId
	return nil
}
