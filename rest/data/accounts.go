package data

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/model/admin"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/model/vehicle"
)

// Collections lists every collection the service writes to.
var Collections = []string{
	user.Collection,
	driver.Collection,
	passenger.Collection,
	admin.Collection,
	vehicle.Collection,
	fuel.Collection,
	ride.Collection,
	attendance.Collection,
}

// Account describes a user account to create.
type Account struct {
	Name     string
	Email    string
	Phone    string
	Role     string
	Password string
}

// CreateAccount hashes the password and inserts the user. An invalid role
// or a registered email is a 400 error response.
func CreateAccount(ctx context.Context, sc Connector, acct Account) (*user.DBUser, error) {
	if !user.ValidRole(acct.Role) {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("invalid role '%s'", acct.Role),
		}
	}
	hash, err := auth.HashPassword(acct.Password)
	if err != nil {
		return nil, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
		}
	}

	u := user.New(acct.Name, acct.Email, acct.Phone, acct.Role, hash)
	if err = sc.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAdminAccount creates an admin user and its admin profile.
func CreateAdminAccount(ctx context.Context, sc Connector, acct Account, permissions string) (*user.DBUser, *admin.Admin, error) {
	acct.Role = rideshare.RoleAdmin
	u, err := CreateAccount(ctx, sc, acct)
	if err != nil {
		return nil, nil, err
	}
	profile := admin.New(u.Id)
	if permissions != "" {
		profile.Permissions = permissions
	}
	if err = sc.CreateAdmin(ctx, profile); err != nil {
		return nil, nil, errors.Wrapf(err, "creating admin profile for '%s'", u.EmailAddress)
	}
	return u, profile, nil
}

var developmentAccounts = []Account{
	{Name: "Admin User", Email: "admin@rectransport.com", Phone: "+1234567890", Role: rideshare.RoleAdmin},
	{Name: "Driver User", Email: "driver@rectransport.com", Phone: "+1234567891", Role: rideshare.RoleDriver},
	{Name: "Passenger User", Email: "passenger@rectransport.com", Phone: "+1234567892", Role: rideshare.RolePassenger},
}

// SeedDefaultUsers ensures the configured admin account exists and, outside
// production, that the development accounts exist with the default
// password. Existing accounts are left untouched. It returns the number of
// accounts created.
func SeedDefaultUsers(ctx context.Context, sc Connector, settings *rideshare.Settings) (int, error) {
	accounts := []Account{}
	if settings.Auth.DefaultAdminEmail != "" {
		accounts = append(accounts, Account{
			Name:     "Administrator",
			Email:    settings.Auth.DefaultAdminEmail,
			Role:     rideshare.RoleAdmin,
			Password: settings.Auth.DefaultAdminPassword,
		})
	}
	if !settings.IsProduction() {
		for _, acct := range developmentAccounts {
			acct.Password = settings.Auth.DefaultPassword
			accounts = append(accounts, acct)
		}
	}

	created := 0
	catcher := grip.NewBasicCatcher()
	for _, acct := range accounts {
		existing, err := sc.FindUserByEmail(ctx, acct.Email)
		if err != nil {
			catcher.Wrapf(err, "checking for account '%s'", acct.Email)
			continue
		}
		if existing != nil {
			continue
		}
		if err = seedAccount(ctx, sc, acct); err != nil {
			catcher.Wrapf(err, "seeding account '%s'", acct.Email)
			continue
		}
		created++
		grip.Info(message.Fields{
			"message": "created default account",
			"email":   acct.Email,
			"role":    acct.Role,
		})
	}
	return created, catcher.Resolve()
}

func seedAccount(ctx context.Context, sc Connector, acct Account) error {
	if acct.Role == rideshare.RoleAdmin {
		_, _, err := CreateAdminAccount(ctx, sc, acct, "")
		return err
	}

	u, err := CreateAccount(ctx, sc, acct)
	if err != nil {
		return err
	}
	switch acct.Role {
	case rideshare.RoleDriver:
		return sc.CreateDriver(ctx, driver.New(u.Id, "DL-0000000000", "31-12-2030"))
	case rideshare.RolePassenger:
		return sc.CreatePassenger(ctx, passenger.New(u.Id))
	}
	return nil
}
