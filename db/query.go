package db

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Q holds all information necessary to execute a query
type Q struct {
	filter     any // should be bson.M or bson.D
	projection any // should be bson.M or bson.D
	sort       []string
	maxTime    time.Duration
}

// Query creates a db.Q for the given MongoDB query. The filter
// can be a struct, bson.D, bson.M, nil, etc.
func Query(filter any) Q {
	return Q{filter: filter}
}

// WithoutFields projects every key except the given ones.
func (q Q) WithoutFields(fields ...string) Q {
	projection := bson.M{}
	for _, f := range fields {
		projection[f] = 0
	}
	q.projection = projection
	return q
}

// Sort orders results by the given keys. A key prefixed with "-" sorts
// in descending order.
func (q Q) Sort(sort []string) Q {
	q.sort = sort
	return q
}

func (q Q) MaxTime(duration time.Duration) Q {
	q.maxTime = duration
	return q
}

func (q Q) sortDocument() bson.D {
	if len(q.sort) == 0 {
		return nil
	}
	sort := bson.D{}
	for _, key := range q.sort {
		if key == "" {
			continue
		}
		direction := 1
		if strings.HasPrefix(key, "-") {
			direction = -1
			key = key[1:]
		}
		sort = append(sort, bson.E{Key: key, Value: direction})
	}
	return sort
}

func (q Q) filterDocument() any {
	if q.filter == nil {
		return bson.M{}
	}
	return q.filter
}

func (q Q) findOptions() *options.FindOptions {
	opts := options.Find()
	if q.projection != nil {
		opts.SetProjection(q.projection)
	}
	if sort := q.sortDocument(); len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}

func (q Q) findOneOptions() *options.FindOneOptions {
	opts := options.FindOne()
	if q.projection != nil {
		opts.SetProjection(q.projection)
	}
	if sort := q.sortDocument(); len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}
