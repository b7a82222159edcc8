package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/driver"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/model/user"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

func fuelEntryResponse(e *fuel.Entry, d *driver.Driver, u *user.DBUser) gimlet.Responder {
	out := model.APIFuelEntry{}
	out.BuildFromService(*e, d, u)
	return gimlet.NewJSONResponse(map[string]any{
		"status":     "success",
		"fuel_entry": out,
	})
}

func listFuelEntries(ctx context.Context, sc data.Connector) ([]model.APIFuelEntry, error) {
	details, err := data.GetFuelEntryDetails(ctx, sc)
	if err != nil {
		return nil, err
	}
	out := make([]model.APIFuelEntry, 0, len(details))
	for _, entry := range details {
		apiEntry := model.APIFuelEntry{}
		apiEntry.BuildFromService(entry.Entry, entry.Driver, entry.User)
		out = append(out, apiEntry)
	}
	return out, nil
}

////////////////////////////////////////////////////////////////////////
//
// GET /fuel-entries

type fuelEntriesGetHandler struct {
	sc data.Connector
}

func makeGetFuelEntries(sc data.Connector) gimlet.RouteHandler {
	return &fuelEntriesGetHandler{sc: sc}
}

func (h *fuelEntriesGetHandler) Factory() gimlet.RouteHandler                     { return &fuelEntriesGetHandler{sc: h.sc} }
func (h *fuelEntriesGetHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *fuelEntriesGetHandler) Run(ctx context.Context) gimlet.Responder {
	entries, err := listFuelEntries(ctx, h.sc)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(map[string]any{
		"status":       "success",
		"fuel_entries": entries,
	})
}

////////////////////////////////////////////////////////////////////////
//
// POST /fuel-entries

type fuelEntryCreateHandler struct {
	body model.APIFuelEntryCreate

	sc data.Connector
}

func makeCreateFuelEntry(sc data.Connector) gimlet.RouteHandler {
	return &fuelEntryCreateHandler{sc: sc}
}

func (h *fuelEntryCreateHandler) Factory() gimlet.RouteHandler { return &fuelEntryCreateHandler{sc: h.sc} }

func (h *fuelEntryCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading fuel entry from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid fuel entry")
}

func (h *fuelEntryCreateHandler) Run(ctx context.Context) gimlet.Responder {
	d, err := h.sc.FindDriverById(ctx, h.body.DriverId)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding driver '%s'", h.body.DriverId))
	}
	if d == nil {
		return notFound("Driver '%s' not found", h.body.DriverId)
	}
	u, err := h.sc.FindUserById(ctx, d.UserId)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding user for driver '%s'", d.Id))
	}

	e := h.body.ToService(MustHaveUser(ctx).Id)
	if err = h.sc.CreateFuelEntry(ctx, e); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating fuel entry"))
	}
	return fuelEntryResponse(e, d, u)
}

////////////////////////////////////////////////////////////////////////
//
// POST /fuel-entries/me

type driverFuelEntryHandler struct {
	body model.APIDriverFuelEntry

	sc data.Connector
}

func makeCreateDriverFuelEntry(sc data.Connector) gimlet.RouteHandler {
	return &driverFuelEntryHandler{sc: sc}
}

func (h *driverFuelEntryHandler) Factory() gimlet.RouteHandler { return &driverFuelEntryHandler{sc: h.sc} }

func (h *driverFuelEntryHandler) Parse(ctx context.Context, r *http.Request) error {
	if err := utility.ReadJSON(r.Body, &h.body); err != nil {
		return errors.Wrap(err, "reading fuel entry from JSON request body")
	}
	return errors.Wrap(h.body.Validate(), "invalid fuel entry")
}

func (h *driverFuelEntryHandler) Run(ctx context.Context) gimlet.Responder {
	d, resp := currentDriver(ctx, h.sc)
	if resp != nil {
		return resp
	}

	e := h.body.ToService(d.Id)
	if err := h.sc.CreateFuelEntry(ctx, e); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating fuel entry"))
	}
	grip.Info(message.Fields{
		"message":    "driver recorded fuel",
		"driver":     d.Id,
		"fuel_entry": e.Id,
		"amount":     e.Amount,
	})
	return fuelEntryResponse(e, d, MustHaveUser(ctx))
}
