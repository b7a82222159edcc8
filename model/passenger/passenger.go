package passenger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "passengers"

// Passenger is the profile of a user with the passenger role.
type Passenger struct {
	Id         string    `bson:"_id"`
	UserId     string    `bson:"user_id"`
	Rating     float64   `bson:"rating"`
	TotalRides int       `bson:"total_rides"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

var (
	IdKey         = bsonutil.MustHaveTag(Passenger{}, "Id")
	UserIdKey     = bsonutil.MustHaveTag(Passenger{}, "UserId")
	TotalRidesKey = bsonutil.MustHaveTag(Passenger{}, "TotalRides")
	CreatedAtKey  = bsonutil.MustHaveTag(Passenger{}, "CreatedAt")
	UpdatedAtKey  = bsonutil.MustHaveTag(Passenger{}, "UpdatedAt")
)

func New(userId string) *Passenger {
	now := time.Now()
	return &Passenger{
		Id:        uuid.New().String(),
		UserId:    userId,
		Rating:    rideshare.DefaultRating,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// All is a query that returns every passenger, oldest first.
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

func FindOneContext(ctx context.Context, query db.Q) (*Passenger, error) {
	p := &Passenger{}
	err := db.FindOneQContext(ctx, Collection, query, p)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return p, errors.Wrap(err, "finding passenger")
}

func FindOneById(ctx context.Context, id string) (*Passenger, error) {
	return FindOneContext(ctx, ById(id))
}

func FindOneByUserId(ctx context.Context, userId string) (*Passenger, error) {
	return FindOneContext(ctx, ByUserId(userId))
}

func Find(ctx context.Context, query db.Q) ([]Passenger, error) {
	passengers := []Passenger{}
	err := db.FindAllQ(ctx, Collection, query, &passengers)
	return passengers, errors.Wrap(err, "finding passengers")
}

func (p *Passenger) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, p), "inserting passenger '%s'", p.Id)
}

// IncTotalRides counts one more completed ride for the passenger.
func (p *Passenger) IncTotalRides(ctx context.Context) error {
	now := time.Now()
	err := db.UpdateIdContext(ctx, Collection, p.Id, bson.M{
		"$set": bson.M{UpdatedAtKey: now},
		"$inc": bson.M{TotalRidesKey: 1},
	})
	if err != nil {
		return errors.Wrapf(err, "incrementing rides for passenger '%s'", p.Id)
	}
	p.TotalRides++
	p.UpdatedAt = now
	return nil
}

// EnsureIndexes creates the unique user id index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: UserIdKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}
