package user

import (
	"context"
	"strings"
	"time"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/db"
	"go.mongodb.org/mongo-driver/bson"
)

// DBUser is an account able to authenticate against the API. Drivers,
// passengers and admins each have a profile document referencing one.
type DBUser struct {
	Id           string    `bson:"_id"`
	Name         string    `bson:"name"`
	EmailAddress string    `bson:"email"`
	Phone        string    `bson:"phone"`
	Role         string    `bson:"role"`
	PasswordHash string    `bson:"password_hash"`
	Avatar       string    `bson:"avatar,omitempty"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// New returns an active user with a fresh id. The email is normalized to
// lower case.
func New(name, email, phone, role, passwordHash string) *DBUser {
	now := time.Now()
	return &DBUser{
		Id:           uuid.New().String(),
		Name:         name,
		EmailAddress: NormalizeEmail(email),
		Phone:        phone,
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	return utility.StringSliceContains(rideshare.ValidRoles, role)
}

func (u *DBUser) Username() string        { return u.EmailAddress }
func (u *DBUser) Email() string           { return u.EmailAddress }
func (u *DBUser) GetAPIKey() string       { return "" }
func (u *DBUser) GetAccessToken() string  { return "" }
func (u *DBUser) GetRefreshToken() string { return "" }
func (u *DBUser) IsNil() bool             { return u == nil }

func (u *DBUser) IsAdmin() bool     { return u.Role == rideshare.RoleAdmin }
func (u *DBUser) IsDriver() bool    { return u.Role == rideshare.RoleDriver }
func (u *DBUser) IsPassenger() bool { return u.Role == rideshare.RolePassenger }

func (u *DBUser) Roles() []string {
	if u.Role == "" {
		return []string{}
	}
	return []string{u.Role}
}

func (u *DBUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.EmailAddress
}

// HasPermission grants everything to admins. The permission's resource type
// is otherwise matched against the user's role.
func (u *DBUser) HasPermission(opts gimlet.PermissionOpts) bool {
	if !u.IsActive {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return opts.ResourceType != "" && opts.ResourceType == u.Role
}

// Insert writes the user, failing with a duplicate key error when the email
// is already registered.
func (u *DBUser) Insert(ctx context.Context) error {
	return errors.Wrapf(db.Insert(ctx, Collection, u), "inserting user '%s'", u.EmailAddress)
}

// SetPasswordHash replaces the stored password hash.
func (u *DBUser) SetPasswordHash(ctx context.Context, hash string) error {
	now := time.Now()
	err := db.UpdateIdContext(ctx, Collection, u.Id, bson.M{
		"$set": bson.M{
			PasswordHashKey: hash,
			UpdatedAtKey:    now,
		},
	})
	if err != nil {
		return errors.Wrapf(err, "updating password for user '%s'", u.Id)
	}
	u.PasswordHash = hash
	u.UpdatedAt = now
	return nil
}
