package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

////////////////////////////////////////////////////////////////////////
//
// POST /users

type userCreateHandler struct {
	body model.APIUserCreate

	sc       data.Connector
	settings *rideshare.Settings
}

func makeCreateUser(sc data.Connector, settings *rideshare.Settings) gimlet.RouteHandler {
	return &userCreateHandler{sc: sc, settings: settings}
}

func (h *userCreateHandler) Factory() gimlet.RouteHandler {
	return &userCreateHandler{sc: h.sc, settings: h.settings}
}

func (h *userCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading user from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid user")
}

func (h *userCreateHandler) Run(ctx context.Context) gimlet.Responder {
	password := h.body.Password
	if password == "" {
		password = h.settings.Auth.DefaultPassword
	}
	u, err := data.CreateAccount(ctx, h.sc, data.Account{
		Name:     h.body.Name,
		Email:    h.body.Email,
		Phone:    h.body.Phone,
		Role:     h.body.Role,
		Password: password,
	})
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	out := model.APIUser{}
	out.BuildFromService(*u)
	return gimlet.NewJSONResponse(out)
}
