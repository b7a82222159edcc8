package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

////////////////////////////////////////////////////////////////////////
//
// POST /vehicles

type vehicleCreateHandler struct {
	body model.APIVehicleCreate

	sc data.Connector
}

func makeCreateVehicle(sc data.Connector) gimlet.RouteHandler {
	return &vehicleCreateHandler{sc: sc}
}

func (h *vehicleCreateHandler) Factory() gimlet.RouteHandler { return &vehicleCreateHandler{sc: h.sc} }

func (h *vehicleCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	return errors.Wrap(utility.ReadJSON(r.Body, &h.body), "reading vehicle from JSON request body")
}

func (h *vehicleCreateHandler) Run(ctx context.Context) gimlet.Responder {
	v, err := h.body.ToService()
	if err != nil {
		return gimlet.MakeJSONErrorResponder(err)
	}
	if err = h.sc.CreateVehicle(ctx, v); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating vehicle"))
	}

	out := model.APIVehicle{}
	out.BuildFromService(*v)
	return gimlet.NewJSONResponse(out)
}

////////////////////////////////////////////////////////////////////////
//
// GET /vehicles

type vehiclesGetHandler struct {
	sc data.Connector
}

func makeGetVehicles(sc data.Connector) gimlet.RouteHandler {
	return &vehiclesGetHandler{sc: sc}
}

func (h *vehiclesGetHandler) Factory() gimlet.RouteHandler                     { return &vehiclesGetHandler{sc: h.sc} }
func (h *vehiclesGetHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *vehiclesGetHandler) Run(ctx context.Context) gimlet.Responder {
	out, err := listVehicles(ctx, h.sc)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(out)
}

// listVehicles returns the fleet vehicles followed by the vehicles
// recorded on driver profiles.
func listVehicles(ctx context.Context, sc data.Connector) ([]model.APIVehicle, error) {
	vehicles, err := sc.FindVehicles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "finding vehicles")
	}
	drivers, err := sc.FindDrivers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "finding drivers")
	}

	out := make([]model.APIVehicle, 0, len(vehicles)+len(drivers))
	for _, v := range vehicles {
		apiVehicle := model.APIVehicle{}
		apiVehicle.BuildFromService(v)
		out = append(out, apiVehicle)
	}
	for _, d := range drivers {
		if !d.HasVehicle() {
			continue
		}
		apiVehicle := model.APIVehicle{}
		apiVehicle.BuildFromDriver(d)
		out = append(out, apiVehicle)
	}
	return out, nil
}
