package model

import (
	"strings"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/rectransport/rideshare/model/user"
)

// APIUser is the public view of a user. The password hash is never exposed.
type APIUser struct {
	Id        *string    `json:"id"`
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	Phone     *string    `json:"phone"`
	Role      *string    `json:"role"`
	Avatar    *string    `json:"avatar"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// BuildFromService converts from service level structs to an APIUser.
func (u *APIUser) BuildFromService(in user.DBUser) {
	u.Id = utility.ToStringPtr(in.Id)
	u.Name = utility.ToStringPtr(in.Name)
	u.Email = utility.ToStringPtr(in.EmailAddress)
	u.Phone = utility.ToStringPtr(in.Phone)
	u.Role = utility.ToStringPtr(in.Role)
	if in.Avatar != "" {
		u.Avatar = utility.ToStringPtr(in.Avatar)
	}
	u.IsActive = in.IsActive
	u.CreatedAt = timePtr(in.CreatedAt)
	u.UpdatedAt = timePtr(in.UpdatedAt)
}

// APIUserInfo is the contact information supplied when an admin creates an
// account.
type APIUserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate checks that the name and email are present.
func (i *APIUserInfo) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(strings.TrimSpace(i.Name) == "", "name is required")
	catcher.NewWhen(strings.TrimSpace(i.Email) == "", "email is required")
	catcher.ErrorfWhen(i.Email != "" && !strings.Contains(i.Email, "@"), "'%s' is not a valid email", i.Email)
	return catcher.Resolve()
}

// APIUserCreate is the body of an admin request creating a bare user.
type APIUserCreate struct {
	APIUserInfo `json:",inline"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

// APILogin is the body of a login request.
type APILogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// APIToken is returned on a successful login.
type APIToken struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        APIUser `json:"user"`
}
