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
// POST /passengers

type passengerCreateHandler struct {
	body model.APIPassengerCreate

	sc       data.Connector
	settings *rideshare.Settings
}

func makeCreatePassenger(sc data.Connector, settings *rideshare.Settings) gimlet.RouteHandler {
	return &passengerCreateHandler{sc: sc, settings: settings}
}

func (h *passengerCreateHandler) Factory() gimlet.RouteHandler {
	return &passengerCreateHandler{sc: h.sc, settings: h.settings}
}

func (h *passengerCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading passenger from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid passenger")
}

func (h *passengerCreateHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := data.CreateAccount(ctx, h.sc, data.Account{
		Name:     h.body.User.Name,
		Email:    h.body.User.Email,
		Phone:    h.body.User.Phone,
		Role:     rideshare.RolePassenger,
		Password: h.settings.Auth.DefaultPassword,
	})
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	p := h.body.ToService(u.Id)
	if err = h.sc.CreatePassenger(ctx, p); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "creating passenger profile for '%s'", u.EmailAddress))
	}

	out := model.APIPassenger{}
	out.BuildFromService(*p, u)
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /passengers

type passengersGetHandler struct {
	sc data.Connector
}

func makeGetPassengers(sc data.Connector) gimlet.RouteHandler {
	return &passengersGetHandler{sc: sc}
}

func (h *passengersGetHandler) Factory() gimlet.RouteHandler                     { return &passengersGetHandler{sc: h.sc} }
func (h *passengersGetHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *passengersGetHandler) Run(ctx context.Context) gimlet.Responder {
	passengers, err := h.sc.FindPassengers(ctx)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "finding passengers"))
	}
	userIds := make([]string, 0, len(passengers))
	for _, p := range passengers {
		userIds = append(userIds, p.UserId)
	}
	users, err := data.GetUsersForProfiles(ctx, h.sc, userIds)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	out := make([]model.APIPassenger, 0, len(passengers))
	for _, p := range passengers {
		apiPassenger := model.APIPassenger{}
		apiPassenger.BuildFromService(p, users[p.UserId])
		out = append(out, apiPassenger)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /passengers/me

type passengerProfileHandler struct {
	sc data.Connector
}

func makeGetPassengerProfile(sc data.Connector) gimlet.RouteHandler {
	return &passengerProfileHandler{sc: sc}
}

func (h *passengerProfileHandler) Factory() gimlet.RouteHandler                     { return &passengerProfileHandler{sc: h.sc} }
func (h *passengerProfileHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *passengerProfileHandler) Run(ctx context.Context) gimlet.Responder {
	u := MustHaveUser(ctx)
	p, err := h.sc.FindPassengerByUserId(ctx, u.Id)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding passenger profile for user '%s'", u.Id))
	}
	if p == nil {
		return notFound("Passenger profile not found")
	}

	out := model.APIPassenger{}
	out.BuildFromService(*p, u)
	return gimlet.NewJSONResponse(map[string]any{
		"status":    "success",
		"passenger": out,
	})
}
