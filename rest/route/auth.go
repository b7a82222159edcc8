package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

////////////////////////////////////////////////////////////////////////
//
// POST /auth/login

type loginHandler struct {
	login model.APILogin

	sc     data.Connector
	tokens *auth.TokenManager
}

func makeLoginHandler(sc data.Connector, tokens *auth.TokenManager) gimlet.RouteHandler {
	return &loginHandler{sc: sc, tokens: tokens}
}

func (h *loginHandler) Factory() gimlet.RouteHandler {
	return &loginHandler{sc: h.sc, tokens: h.tokens}
}

func (h *loginHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.login); err != nil {
		return errors.Wrap(err, "reading login from JSON request body")
	}
	if h.login.Email == "" || h.login.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func (h *loginHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := h.sc.FindUserByEmail(ctx, h.login.Email)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "finding user"))
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, h.login.Password) {
		grip.Info(message.Fields{
			"message": "failed login",
			"email":   h.login.Email,
		})
		return gimlet.MakeJSONErrorResponder(gimlet.ErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Message:    "Incorrect email or password",
		})
	}
	if !u.IsActive {
		return forbidden("Account is deactivated")
	}

	token, err := h.tokens.CreateUserToken(u.EmailAddress)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating access token"))
	}

	out := model.APIToken{AccessToken: token, TokenType: auth.TokenType}
	out.User.BuildFromService(*u)
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /auth/me

type currentUserHandler struct{}

func makeCurrentUserHandler() gimlet.RouteHandler { return &currentUserHandler{} }

func (h *currentUserHandler) Factory() gimlet.RouteHandler                     { return &currentUserHandler{} }
func (h *currentUserHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *currentUserHandler) Run(ctx context.Context) gimlet.Responder {
	out := model.APIUser{}
	out.BuildFromService(*MustHaveUser(ctx))
	return gimlet.NewJSONResponse(out)
}
