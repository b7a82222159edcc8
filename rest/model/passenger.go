package model

import (
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/passenger"
	"github.com/rectransport/rideshare/model/user"
)

// APIPassenger is a passenger profile, optionally with its user account.
type APIPassenger struct {
	Id         *string    `json:"id"`
	UserId     *string    `json:"user_id"`
	Rating     float64    `json:"rating"`
	TotalRides int        `json:"total_rides"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	User       *APIUser   `json:"user,omitempty"`
}

// BuildFromService converts a passenger document. The user is embedded
// when non-nil.
func (p *APIPassenger) BuildFromService(in passenger.Passenger, u *user.DBUser) {
	p.Id = utility.ToStringPtr(in.Id)
	p.UserId = utility.ToStringPtr(in.UserId)
	p.Rating = in.Rating
	p.TotalRides = in.TotalRides
	p.CreatedAt = timePtr(in.CreatedAt)
	p.UpdatedAt = timePtr(in.UpdatedAt)
	if u != nil {
		p.User = &APIUser{}
		p.User.BuildFromService(*u)
	}
}

// UnknownUser is rendered in place of an account that no longer exists.
func UnknownUser(id string) *APIUser {
	return &APIUser{
		Id:    utility.ToStringPtr(id),
		Name:  utility.ToStringPtr(rideshare.Unknown),
		Email: utility.ToStringPtr("No email"),
		Phone: utility.ToStringPtr("No phone"),
	}
}

// APIPassengerCreate is the body of an admin request creating a passenger
// account and profile.
type APIPassengerCreate struct {
	User       APIUserInfo `json:"user"`
	Rating     *float64    `json:"rating"`
	TotalRides *int        `json:"total_rides"`
}

func (c *APIPassengerCreate) Validate() error {
	return c.User.Validate()
}

func (c *APIPassengerCreate) ToService(userId string) *passenger.Passenger {
	p := passenger.New(userId)
	if c.Rating != nil {
		p.Rating = *c.Rating
	}
	if c.TotalRides != nil {
		p.TotalRides = *c.TotalRides
	}
	return p
}
