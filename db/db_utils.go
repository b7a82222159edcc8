package db

import (
	"context"
	"slices"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db/cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChangeInfo describes the documents touched by a write.
type ChangeInfo struct {
	Removed int
}

func database() (*mongo.Database, error) {
	env := rideshare.GetEnvironment()
	if env == nil {
		return nil, errors.New("undefined environment")
	}
	db := env.DB()
	if db == nil {
		return nil, errors.New("database is not connected")
	}
	return db, nil
}

func collection(name string) (*mongo.Collection, error) {
	db, err := database()
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Insert inserts the specified item into the specified collection.
func Insert(ctx context.Context, collectionName string, item any) error {
	coll, err := collection(collectionName)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, item)
	return errors.Wrapf(errors.WithStack(err), "inserting document")
}

// Remove removes one item matching the query from the specified collection.
func Remove(ctx context.Context, collectionName string, query any) (*ChangeInfo, error) {
	coll, err := collection(collectionName)
	if err != nil {
		return nil, err
	}
	res, err := coll.DeleteOne(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(errors.WithStack(err), "deleting document")
	}
	return &ChangeInfo{Removed: int(res.DeletedCount)}, nil
}

// UpdateContext updates one matching document in the collection.
func UpdateContext(ctx context.Context, collectionName string, query any, update any) error {
	coll, err := collection(collectionName)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, query, update)
	if err != nil {
		return errors.Wrapf(err, "updating document in '%s'", collectionName)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateIdContext updates one _id-matching document in the collection.
func UpdateIdContext(ctx context.Context, collectionName string, id, update any) error {
	err := UpdateContext(ctx, collectionName, bson.D{{Key: "_id", Value: id}}, update)
	if err == nil {
		if idStr, ok := id.(string); ok {
			cache.Evict(ctx, collectionName, idStr)
		}
	}
	return err
}

// Count run a count command with the specified query against the collection.
func Count(ctx context.Context, collectionName string, query any) (int, error) {
	coll, err := collection(collectionName)
	if err != nil {
		return 0, err
	}
	if query == nil {
		query = bson.M{}
	}
	res, err := coll.CountDocuments(ctx, query)
	return int(res), errors.WithStack(err)
}

// FindOneQContext runs a Q query against the given collection, applying the
// results to "out." Only reads one document from the DB. Lookups by _id are
// served from the request cache when one is embedded in the context.
func FindOneQContext(ctx context.Context, collectionName string, q Q, out any) error {
	cached, found := findFromCache(ctx, collectionName, q)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Bool("rideshare.db.cache_hit", found),
	)
	if found {
		return setObject(cached, out)
	}

	if q.maxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.maxTime)
		defer cancel()
	}

	coll, err := collection(collectionName)
	if err != nil {
		return err
	}

	if err = coll.FindOne(ctx, q.filterDocument(), q.findOneOptions()).Decode(out); err != nil {
		return err
	}

	setInCache(ctx, collectionName, q, out)
	return nil
}

// FindAllQ runs a Q query against the given collection, applying the results to "out."
func FindAllQ(ctx context.Context, collectionName string, q Q, out any) error {
	if q.maxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.maxTime)
		defer cancel()
	}

	coll, err := collection(collectionName)
	if err != nil {
		return err
	}

	cursor, err := coll.Find(ctx, q.filterDocument(), q.findOptions())
	if err != nil {
		return errors.Wrapf(err, "finding documents in '%s'", collectionName)
	}

	return errors.Wrapf(cursor.All(ctx, out), "decoding documents from '%s'", collectionName)
}

// Aggregate runs an aggregation pipeline on a collection and unmarshals
// the results to the given "out" interface (usually a pointer
// to an array of structs/bson.M)
func Aggregate(ctx context.Context, collectionName string, pipeline any, out any) error {
	coll, err := collection(collectionName)
	if err != nil {
		err = errors.Wrap(err, "establishing db connection")
		grip.Error(err)
		return err
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return errors.Wrapf(err, "aggregating '%s'", collectionName)
	}

	return errors.WithStack(cursor.All(ctx, out))
}

// ListCollections returns the names of every collection in the database.
func ListCollections(ctx context.Context) ([]string, error) {
	db, err := database()
	if err != nil {
		return nil, err
	}
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "listing collections")
	}
	slices.Sort(names)
	return names, nil
}

// EnsureIndex takes in a collection and ensures that the index is created if it
// does not already exist.
func EnsureIndex(ctx context.Context, collectionName string, index mongo.IndexModel) error {
	coll, err := collection(collectionName)
	if err != nil {
		return err
	}
	_, err = coll.Indexes().CreateOne(ctx, index)

	return errors.Wrapf(err, "creating index on '%s'", collectionName)
}

func setObject(src, dst any) error {
	bytes, err := bson.Marshal(src)
	if err != nil {
		return errors.Wrap(err, "marshalling src")
	}

	return errors.Wrap(bson.Unmarshal(bytes, dst), "unmarshalling dst")
}

func findFromCache(ctx context.Context, collectionName string, query any) (any, bool) {
	id, found := getIDFromQuery(query)
	if !found {
		return nil, false
	}

	return cache.GetFromCache[any](ctx, collectionName, id)
}

func setInCache(ctx context.Context, collectionName string, query, out any) {
	id, found := getIDFromQuery(query)
	if !found {
		return
	}

	raw, err := bson.Marshal(out)
	if err != nil {
		return
	}
	cache.SetInCache[any](ctx, collectionName, id, bson.Raw(raw))
}

// getIDFromQuery derives a cache key from a query. Only plain lookups by
// string _id are cacheable.
func getIDFromQuery(query any) (string, bool) {
	if query, ok := query.(Q); ok {
		if query.projection != nil {
			return "", false
		}
		return getIDFromQuery(query.filter)
	}
	if filter, ok := query.(bson.M); ok {
		return getIDFromQuery(map[string]any(filter))
	}

	if filter, ok := query.(map[string]any); ok && len(filter) == 1 {
		if idStr, ok := filter["_id"].(string); ok {
			return idStr, true
		}
	}

	return "", false
}
