package route

import (
	"context"
	"net/http"
	"strconv"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

// currentDriver returns the driver profile of the requesting user, or a
// responder describing why there is none.
func currentDriver(ctx context.Context, sc data.Connector) (*driver.Driver, gimlet.Responder) {
	u := MustHaveUser(ctx)
	d, err := sc.FindDriverByUserId(ctx, u.Id)
	if err != nil {
		return nil, gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding driver profile for user '%s'", u.Id))
	}
	if d == nil {
		return nil, notFound("Driver profile not found")
	}
	return d, nil
}

////////////////////////////////////////////////////////////////////////
//
// POST /drivers

type driverCreateHandler struct {
	body model.APIDriverCreate

	sc       data.Connector
	settings *rideshare.Settings
}

func makeCreateDriver(sc data.Connector, settings *rideshare.Settings) gimlet.RouteHandler {
	return &driverCreateHandler{sc: sc, settings: settings}
}

func (h *driverCreateHandler) Factory() gimlet.RouteHandler {
	return &driverCreateHandler{sc: h.sc, settings: h.settings}
}

func (h *driverCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading driver from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid driver")
}

func (h *driverCreateHandler) Run(ctx context.Context) gimlet.Responder {
	u, err := data.CreateAccount(ctx, h.sc, data.Account{
		Name:     h.body.User.Name,
		Email:    h.body.User.Email,
		Phone:    h.body.User.Phone,
		Role:     rideshare.RoleDriver,
		Password: h.settings.Auth.DefaultPassword,
	})
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	d := h.body.ToService(u.Id)
	if err = h.sc.CreateDriver(ctx, d); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "creating driver profile for '%s'", u.EmailAddress))
	}
	grip.Info(message.Fields{
		"message": "created driver",
		"driver":  d.Id,
		"user":    u.Id,
		"by":      MustHaveUser(ctx).Id,
	})

	out := model.APIDriver{}
	out.BuildFromService(*d, u)
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /drivers

type driversGetHandler struct {
	sc data.Connector
}

func makeGetDrivers(sc data.Connector) gimlet.RouteHandler {
	return &driversGetHandler{sc: sc}
}

func (h *driversGetHandler) Factory() gimlet.RouteHandler                     { return &driversGetHandler{sc: h.sc} }
func (h *driversGetHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *driversGetHandler) Run(ctx context.Context) gimlet.Responder {
	drivers, err := h.sc.FindDrivers(ctx)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "finding drivers"))
	}
	userIds := make([]string, 0, len(drivers))
	for _, d := range drivers {
		userIds = append(userIds, d.UserId)
	}
	users, err := data.GetUsersForProfiles(ctx, h.sc, userIds)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	out := make([]model.APIDriver, 0, len(drivers))
	for _, d := range drivers {
		apiDriver := model.APIDriver{}
		apiDriver.BuildFromService(d, users[d.UserId])
		out = append(out, apiDriver)
	}
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /drivers/me

type driverProfileHandler struct {
	sc data.Connector
}

func makeGetDriverProfile(sc data.Connector) gimlet.RouteHandler {
	return &driverProfileHandler{sc: sc}
}

func (h *driverProfileHandler) Factory() gimlet.RouteHandler                     { return &driverProfileHandler{sc: h.sc} }
func (h *driverProfileHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *driverProfileHandler) Run(ctx context.Context) gimlet.Responder {
	d, resp := currentDriver(ctx, h.sc)
	if resp != nil {
		return resp
	}
	out := model.APIDriver{}
	out.BuildFromService(*d, MustHaveUser(ctx))
	return gimlet.NewJSONResponse(map[string]any{
		"status": "success",
		"driver": out,
	})
}

////////////////////////////////////////////////////////////////////////
//
// PUT /drivers/me/status

type driverStatusHandler struct {
	online bool

	sc data.Connector
}

func makeSetDriverStatus(sc data.Connector) gimlet.RouteHandler {
	return &driverStatusHandler{sc: sc}
}

func (h *driverStatusHandler) Factory() gimlet.RouteHandler { return &driverStatusHandler{sc: h.sc} }

// Parse reads is_online from the query string, falling back to the body.
func (h *driverStatusHandler) Parse(ctx context.Context, r *http.Request) error {
	if value := r.URL.Query().Get("is_online"); value != "" {
		online, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid is_online value '%s'", value)
		}
		h.online = online
		return nil
	}

	body := model.APIDriverStatus{}
	if err := utility.ReadJSON(r.Body, &body); err != nil {
		return errors.Wrap(err, "reading status from JSON request body")
	}
	if body.IsOnline == nil {
		return errors.New("is_online is required")
	}
	h.online = *body.IsOnline
	return nil
}

func (h *driverStatusHandler) Run(ctx context.Context) gimlet.Responder {
	d, resp := currentDriver(ctx, h.sc)
	if resp != nil {
		return resp
	}
	if err := h.sc.SetDriverOnline(ctx, d, h.online); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}

	state := "offline"
	if h.online {
		state = "online"
	}
	out := model.APIDriver{}
	out.BuildFromService(*d, nil)
	return gimlet.NewJSONResponse(map[string]any{
		"status":  "success",
		"message": "Driver is now " + state,
		"driver":  out,
	})
}
