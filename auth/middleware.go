package auth

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/rectransport/rideshare/model/user"
)

// UserFinder looks up users by email.
type UserFinder interface {
	FindUserByEmail(context.Context, string) (*user.DBUser, error)
}

type userMiddleware struct {
	tokens *TokenManager
	users  UserFinder
}

// NewUserMiddleware returns a middleware that attaches the user identified
// by a valid bearer token to the request context. Requests without a valid
// token proceed anonymously.
func NewUserMiddleware(tokens *TokenManager, users UserFinder) gimlet.Middleware {
	return &userMiddleware{tokens: tokens, users: users}
}

func (m *userMiddleware) ServeHTTP(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		next(rw, r)
		return
	}

	ctx := r.Context()
	email, err := m.tokens.GetEmailFromToken(token)
	if err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "rejected bearer token",
			"path":    r.URL.Path,
		}))
		next(rw, r)
		return
	}

	u, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		grip.Error(message.WrapError(err, message.Fields{
			"message": "problem looking up token user",
			"email":   email,
		}))
		next(rw, r)
		return
	}
	if u == nil {
		next(rw, r)
		return
	}

	next(rw, r.WithContext(gimlet.AttachUser(ctx, u)))
}

// GetUser returns the authenticated user attached to the context, if any.
func GetUser(ctx context.Context) *user.DBUser {
	u, ok := gimlet.GetUser(ctx).(*user.DBUser)
	if !ok || u == nil {
		return nil
	}
	return u
}
