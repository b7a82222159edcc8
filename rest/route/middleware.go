package route

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/model/user"
)

// MustHaveUser returns the user attached to the context by the
// authentication middleware, and panics if there is none.
func MustHaveUser(ctx context.Context) *user.DBUser {
	u := auth.GetUser(ctx)
	if u == nil {
		panic("no user attached to request")
	}
	return u
}

type requireUserMiddleware struct{}

// NewRequireUserMiddleware rejects requests without a valid bearer token
// with 401, and requests from deactivated accounts with 400.
func NewRequireUserMiddleware() gimlet.Middleware { return &requireUserMiddleware{} }

func (*requireUserMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	u := auth.GetUser(r.Context())
	if u == nil {
		rw.Header().Set("WWW-Authenticate", "Bearer")
		gimlet.WriteJSONResponse(rw, http.StatusUnauthorized, gimlet.ErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Message:    "Could not validate credentials",
		})
		return
	}
	if !u.IsActive {
		gimlet.WriteJSONResponse(rw, http.StatusBadRequest, gimlet.ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    "Inactive user",
		})
		return
	}
	next(rw, r)
}

type requireRoleMiddleware struct {
	roles []string
}

// NewRequireRoleMiddleware rejects authenticated users whose role is not
// one of roles with 403. It must run after NewRequireUserMiddleware.
func NewRequireRoleMiddleware(roles ...string) gimlet.Middleware {
	return &requireRoleMiddleware{roles: roles}
}

func (m *requireRoleMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	u := auth.GetUser(r.Context())
	if u == nil || !utility.StringSliceContains(m.roles, u.Role) {
		gimlet.WriteJSONResponse(rw, http.StatusForbidden, gimlet.ErrorResponse{
			StatusCode: http.StatusForbidden,
			Message:    fmt.Sprintf("Access restricted to %s users", strings.Join(m.roles, " or ")),
		})
		return
	}
	next(rw, r)
}
