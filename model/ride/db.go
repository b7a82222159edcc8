package ride

import (
	"context"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	Collection = "rides"

	// listTimeout bounds ride list queries.
	listTimeout = 30 * time.Second
)

var (
	IdKey                    = bsonutil.MustHaveTag(Ride{}, "Id")
	PassengerIdKey           = bsonutil.MustHaveTag(Ride{}, "PassengerId")
	DriverIdKey              = bsonutil.MustHaveTag(Ride{}, "DriverId")
	StatusKey                = bsonutil.MustHaveTag(Ride{}, "Status")
	RequestedAtKey           = bsonutil.MustHaveTag(Ride{}, "RequestedAt")
	AssignedAtKey            = bsonutil.MustHaveTag(Ride{}, "AssignedAt")
	PickedUpAtKey            = bsonutil.MustHaveTag(Ride{}, "PickedUpAt")
	CompletedAtKey           = bsonutil.MustHaveTag(Ride{}, "CompletedAt")
	CancelledAtKey           = bsonutil.MustHaveTag(Ride{}, "CancelledAt")
	DistanceKey              = bsonutil.MustHaveTag(Ride{}, "Distance")
	EstimatedDistanceKey     = bsonutil.MustHaveTag(Ride{}, "EstimatedDistance")
	EstimatedDurationSecsKey = bsonutil.MustHaveTag(Ride{}, "EstimatedDurationSecs")
	StartKmKey               = bsonutil.MustHaveTag(Ride{}, "StartKm")
	EndKmKey                 = bsonutil.MustHaveTag(Ride{}, "EndKm")
)

// Filter selects rides. Empty fields match everything.
type Filter struct {
	PassengerId string
	DriverId    string
	Statuses    []string
}

// Query builds a query for the filter, newest rides first.
func (f Filter) Query() db.Q {
	filter := bson.M{}
	if f.PassengerId != "" {
		filter[PassengerIdKey] = f.PassengerId
	}
	if f.DriverId != "" {
		filter[DriverIdKey] = f.DriverId
	}
	switch len(f.Statuses) {
	case 0:
	case 1:
		filter[StatusKey] = f.Statuses[0]
	default:
		filter[StatusKey] = bson.M{"$in": f.Statuses}
	}
	return db.Query(filter).Sort([]string{"-" + RequestedAtKey}).MaxTime(listTimeout)
}

// Matches reports whether the ride satisfies the filter.
func (f Filter) Matches(r *Ride) bool {
	if f.PassengerId != "" && r.PassengerId != f.PassengerId {
		return false
	}
	if f.DriverId != "" && r.DriverId != f.DriverId {
		return false
	}
	return len(f.Statuses) == 0 || utility.StringSliceContains(f.Statuses, r.Status)
}

func ById(id string) db.Q {
	return db.Query(bson.M{IdKey: id})
}

func FindOneContext(ctx context.Context, query db.Q) (*Ride, error) {
	r := &Ride{}
	err := db.FindOneQContext(ctx, Collection, query, r)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return r, errors.Wrap(err, "finding ride")
}

func FindOneById(ctx context.Context, id string) (*Ride, error) {
	return FindOneContext(ctx, ById(id))
}

func Find(ctx context.Context, query db.Q) ([]Ride, error) {
	rides := []Ride{}
	err := db.FindAllQ(ctx, Collection, query, &rides)
	return rides, errors.Wrap(err, "finding rides")
}

func (r *Ride) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, r), "inserting ride '%s'", r.Id)
}

// UpdateLifecycle persists the fields changed by the lifecycle methods. The
// write only applies if the stored ride still has the status the change was
// made from, otherwise ErrStatusChanged is returned.
func (r *Ride) UpdateLifecycle(ctx context.Context) error {
	set := bson.M{
		StatusKey:   r.Status,
		DistanceKey: r.Distance,
		StartKmKey:  r.StartKm,
		EndKmKey:    r.EndKm,
	}
	unset := bson.M{}
	if r.DriverId != "" {
		set[DriverIdKey] = r.DriverId
	}
	setTime := func(key string, t time.Time) {
		if t.IsZero() {
			unset[key] = 1
		} else {
			set[key] = t
		}
	}
	setTime(AssignedAtKey, r.AssignedAt)
	setTime(PickedUpAtKey, r.PickedUpAt)
	setTime(CompletedAtKey, r.CompletedAt)
	setTime(CancelledAtKey, r.CancelledAt)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	query := bson.M{IdKey: r.Id}
	from := r.PreviousStatus()
	if from != "" {
		query[StatusKey] = from
	}
	err := db.UpdateContext(ctx, Collection, query, update)
	if from != "" && db.ResultsNotFound(err) {
		return errors.Wrapf(ErrStatusChanged, "updating ride '%s' from '%s'", r.Id, from)
	}
	if err != nil {
		return errors.Wrapf(err, "updating ride '%s'", r.Id)
	}

	r.MarkSaved()
	return nil
}

// CountByStatus returns the number of rides in each status. Statuses with
// no rides are absent from the result.
func CountByStatus(ctx context.Context) (map[string]int, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$" + StatusKey,
			"count": bson.M{"$sum": 1},
		}},
	}
	out := []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}{}
	if err := db.Aggregate(ctx, Collection, pipeline, &out); err != nil {
		return nil, errors.Wrap(err, "counting rides by status")
	}

	counts := map[string]int{}
	for _, row := range out {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
