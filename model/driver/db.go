package driver

import (
	"context"

	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "drivers"

var (
	IdKey               = bsonutil.MustHaveTag(Driver{}, "Id")
	UserIdKey           = bsonutil.MustHaveTag(Driver{}, "UserId")
	LicenseNumberKey    = bsonutil.MustHaveTag(Driver{}, "LicenseNumber")
	VehicleMakeKey      = bsonutil.MustHaveTag(Driver{}, "VehicleMake")
	LicensePlateKey     = bsonutil.MustHaveTag(Driver{}, "LicensePlate")
	TotalRidesKey       = bsonutil.MustHaveTag(Driver{}, "TotalRides")
	CurrentKmReadingKey = bsonutil.MustHaveTag(Driver{}, "CurrentKmReading")
	IsOnlineKey         = bsonutil.MustHaveTag(Driver{}, "IsOnline")
	CreatedAtKey        = bsonutil.MustHaveTag(Driver{}, "CreatedAt")
	UpdatedAtKey        = bsonutil.MustHaveTag(Driver{}, "UpdatedAt")
)

// All is a query that returns every driver, oldest first.
var All = db.Query(nil).Sort([]string{CreatedAtKey})

func ById(id string) db.Q {
	return db.Query(bson.M{IdKey: id})
}

func ByUserId(userId string) db.Q {
	return db.Query(bson.M{UserIdKey: userId})
}

func ByIds(ids []string) db.Q {
	return db.Query(bson.M{IdKey: bson.M{"$in": ids}})
}

// FindOneContext gets one driver for the given query, returning nil if none
// match.
func FindOneContext(ctx context.Context, query db.Q) (*Driver, error) {
	d := &Driver{}
	err := db.FindOneQContext(ctx, Collection, query, d)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return d, errors.Wrap(err, "finding driver")
}

func FindOneById(ctx context.Context, id string) (*Driver, error) {
	return FindOneContext(ctx, ById(id))
}

func FindOneByUserId(ctx context.Context, userId string) (*Driver, error) {
	return FindOneContext(ctx, ByUserId(userId))
}

func Find(ctx context.Context, query db.Q) ([]Driver, error) {
	drivers := []Driver{}
	err := db.FindAllQ(ctx, Collection, query, &drivers)
	return drivers, errors.Wrap(err, "finding drivers")
}

// EnsureIndexes creates the unique user id index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: UserIdKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}
