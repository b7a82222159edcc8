package user

import (
	"context"

	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "users"

var (
	IdKey           = bsonutil.MustHaveTag(DBUser{}, "Id")
	NameKey         = bsonutil.MustHaveTag(DBUser{}, "Name")
	EmailKey        = bsonutil.MustHaveTag(DBUser{}, "EmailAddress")
	PhoneKey        = bsonutil.MustHaveTag(DBUser{}, "Phone")
	RoleKey         = bsonutil.MustHaveTag(DBUser{}, "Role")
	PasswordHashKey = bsonutil.MustHaveTag(DBUser{}, "PasswordHash")
	IsActiveKey     = bsonutil.MustHaveTag(DBUser{}, "IsActive")
	CreatedAtKey    = bsonutil.MustHaveTag(DBUser{}, "CreatedAt")
	UpdatedAtKey    = bsonutil.MustHaveTag(DBUser{}, "UpdatedAt")
)

// All is a query that returns every user, oldest first.
var All = db.Query(nil).Sort([]string{CreatedAtKey})

// ById returns a query that matches a user by id.
func ById(id string) db.Q {
	return db.Query(bson.M{IdKey: id})
}

// ByEmail returns a query that matches a user by normalized email.
func ByEmail(email string) db.Q {
	return db.Query(bson.M{EmailKey: NormalizeEmail(email)})
}

// ByIds returns a query that matches all the given user ids. Password
// hashes are left out of the results.
func ByIds(ids []string) db.Q {
	return db.Query(bson.M{IdKey: bson.M{"$in": ids}}).WithoutFields(PasswordHashKey)
}

// FindOneContext gets one user for the given query, returning nil if none
// match.
func FindOneContext(ctx context.Context, query db.Q) (*DBUser, error) {
	u := &DBUser{}
	err := db.FindOneQContext(ctx, Collection, query, u)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return u, errors.Wrap(err, "finding user")
}

// FindOneById gets the user with the given id.
func FindOneById(ctx context.Context, id string) (*DBUser, error) {
	return FindOneContext(ctx, ById(id))
}

// FindOneByEmail gets the user registered with the given email.
func FindOneByEmail(ctx context.Context, email string) (*DBUser, error) {
	return FindOneContext(ctx, ByEmail(email))
}

// Find gets every user matching the query.
func Find(ctx context.Context, query db.Q) ([]DBUser, error) {
	users := []DBUser{}
	err := db.FindAllQ(ctx, Collection, query, &users)
	return users, errors.Wrap(err, "finding users")
}

// EnsureIndexes creates the unique email index.
func EnsureIndexes(ctx context.Context) error {
	return db.EnsureIndex(ctx, Collection, mongo.IndexModel{
		Keys:    bson.D{{Key: EmailKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}
