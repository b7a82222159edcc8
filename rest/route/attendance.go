package route

import (
	"context"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

// listAttendance returns the matching records with the names of their
// drivers.
func listAttendance(ctx context.Context, sc data.Connector, filter attendance.Filter) ([]model.APIAttendance, error) {
	records, err := sc.FindAttendance(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "finding attendance")
	}

	driverIds := make([]string, 0, len(records))
	for _, a := range records {
		driverIds = append(driverIds, a.DriverId)
	}
	drivers, err := sc.FindDriversByIds(ctx, driverIds)
	if err != nil {
		return nil, errors.Wrap(err, "finding attendance drivers")
	}
	userIds := make([]string, 0, len(drivers))
	for _, d := range drivers {
		userIds = append(userIds, d.UserId)
	}
	users, err := data.GetUsersForProfiles(ctx, sc, userIds)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	for _, d := range drivers {
		if u, ok := users[d.UserId]; ok {
			names[d.Id] = u.Name
		}
	}

	out := make([]model.APIAttendance, 0, len(records))
	for _, a := range records {
		apiAttendance := model.APIAttendance{}
		apiAttendance.BuildFromService(a, names[a.DriverId])
		out = append(out, apiAttendance)
	}
	return out, nil
}

func attendanceResponse(msg string, a *attendance.Attendance) gimlet.Responder {
	out := model.APIAttendanceSummary{}
	out.BuildFromService(*a)
	return gimlet.NewJSONResponse(map[string]any{
		"status":     "success",
		"message":    msg,
		"attendance": out,
	})
}

////////////////////////////////////////////////////////////////////////
//
// GET /attendance

type attendanceGetHandler struct {
	filter attendance.Filter

	sc data.Connector
}

func makeGetAttendance(sc data.Connector) gimlet.RouteHandler {
	return &attendanceGetHandler{sc: sc}
}

func (h *attendanceGetHandler) Factory() gimlet.RouteHandler { return &attendanceGetHandler{sc: h.sc} }

func (h *attendanceGetHandler) Parse(ctx context.Context, r *http.Request) error {
	vals := r.URL.Query()
	h.filter = model.AttendanceFilter(vals.Get("driver_id"), vals.Get("start_date"), vals.Get("end_date"))
	return nil
}

func (h *attendanceGetHandler) Run(ctx context.Context) gimlet.Responder {
	out, err := listAttendance(ctx, h.sc, h.filter)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(map[string]any{
		"status":     "success",
		"attendance": out,
		"total":      len(out),
	})
}

////////////////////////////////////////////////////////////////////////
//
// POST /attendance

type attendanceCreateHandler struct {
	record *attendance.Attendance

	sc data.Connector
}

func makeCreateAttendance(sc data.Connector) gimlet.RouteHandler {
	return &attendanceCreateHandler{sc: sc}
}

func (h *attendanceCreateHandler) Factory() gimlet.RouteHandler {
	return &attendanceCreateHandler{sc: h.sc}
}

func (h *attendanceCreateHandler) Parse(ctx context.Context, r *http.Request) error {
	body := model.APIAttendanceCreate{}
	if err := utility.ReadJSON(r.Body, &body); err != nil {
		return errors.Wrap(err, "reading attendance from JSON request body")
	}
	record, err := body.ToService()
	if err != nil {
		return errors.Wrap(err, "invalid attendance")
	}
	h.record = record
	return nil
}

func (h *attendanceCreateHandler) Run(ctx context.Context) gimlet.Responder {
	d, err := h.sc.FindDriverById(ctx, h.record.DriverId)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding driver '%s'", h.record.DriverId))
	}
	if d == nil {
		return notFound("Driver not found")
	}
	if err = h.sc.CreateAttendance(ctx, h.record); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrap(err, "creating attendance"))
	}
	return attendanceResponse(model.AttendanceMessage("recorded", *h.record), h.record)
}

////////////////////////////////////////////////////////////////////////
//
// PUT /attendance/{attendance_id}

type attendanceUpdateHandler struct {
	id   string
	body model.APIAttendanceUpdate

	sc data.Connector
}

func makeUpdateAttendance(sc data.Connector) gimlet.RouteHandler {
	return &attendanceUpdateHandler{sc: sc}
}

func (h *attendanceUpdateHandler) Factory() gimlet.RouteHandler {
	return &attendanceUpdateHandler{sc: h.sc}
}

func (h *attendanceUpdateHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["attendance_id"]
	return errors.Wrap(utility.ReadJSON(r.Body, &h.body), "reading attendance update from JSON request body")
}

func (h *attendanceUpdateHandler) Run(ctx context.Context) gimlet.Responder {
	a, err := h.sc.FindAttendanceById(ctx, h.id)
	if err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "finding attendance '%s'", h.id))
	}
	if a == nil {
		return notFound("Attendance record not found")
	}
	if err = h.body.Apply(a); err != nil {
		return gimlet.MakeJSONErrorResponder(badRequest(err))
	}
	if err = h.sc.UpdateAttendance(ctx, a); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "updating attendance '%s'", h.id))
	}
	return attendanceResponse(model.AttendanceMessage("updated", *a), a)
}

////////////////////////////////////////////////////////////////////////
//
// DELETE /attendance/{attendance_id}

type attendanceDeleteHandler struct {
	id string

	sc data.Connector
}

func makeDeleteAttendance(sc data.Connector) gimlet.RouteHandler {
	return &attendanceDeleteHandler{sc: sc}
}

func (h *attendanceDeleteHandler) Factory() gimlet.RouteHandler {
	return &attendanceDeleteHandler{sc: h.sc}
}

func (h *attendanceDeleteHandler) Parse(ctx context.Context, r *http.Request) error {
	h.id = gimlet.GetVars(r)["attendance_id"]
	return nil
}

func (h *attendanceDeleteHandler) Run(ctx context.Context) gimlet.Responder {
	if err := h.sc.DeleteAttendance(ctx, h.id); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
	return gimlet.NewJSONResponse(map[string]any{
		"status":  "success",
		"message": "Attendance record deleted successfully",
	})
}
