package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mongodb/anser/bsonutil"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

const Collection = "admins"

// Admin is the profile of a user with the admin role. Permissions is a JSON
// encoded list kept as stored by earlier deployments.
type Admin struct {
	Id          string    `bson:"_id"`
	UserId      string    `bson:"user_id"`
	Permissions string    `bson:"permissions"`
	CreatedAt   time.Time `bson:"created_at"`
}

var (
	IdKey     = bsonutil.MustHaveTag(Admin{}, "Id")
	UserIdKey = bsonutil.MustHaveTag(Admin{}, "UserId")
)

func New(userId string) *Admin {
	return &Admin{
		Id:          uuid.New().String(),
		UserId:      userId,
		Permissions: rideshare.DefaultAdminPermissions,
		CreatedAt:   time.Now(),
	}
}

func ByUserId(userId string) db.Q {
	return db.Query(bson.M{UserIdKey: userId})
}

func FindOneByUserId(ctx context.Context, userId string) (*Admin, error) {
	a := &Admin{}
	err := db.FindOneQContext(ctx, Collection, ByUserId(userId), a)
	if db.ResultsNotFound(err) {
		return nil, nil
	}
	return a, errors.Wrap(err, "finding admin")
}

func (a *Admin) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, a), "inserting admin '%s'", a.Id)
}
