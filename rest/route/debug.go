package route

import (
	"context"
	"fmt"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/attendance"
	"github.com/rectransport/rideshare/model/ride"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/model"
)

// debugFunc produces the body of a debug response. Errors are reported in
// the body rather than through the status code.
type debugFunc func(context.Context, *debugRequest) (map[string]any, error)

type debugRequest struct {
	vars  map[string]string
	admin debugAdminCreate
}

type debugAdminCreate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Permissions string `json:"permissions"`
}

type debugHandler struct {
	req debugRequest

	name     string
	readBody bool
	run      debugFunc
}

func makeDebugHandler(name string, run debugFunc) gimlet.RouteHandler {
	return &debugHandler{name: name, run: run}
}

func makeDebugBodyHandler(name string, run debugFunc) gimlet.RouteHandler {
	return &debugHandler{name: name, run: run, readBody: true}
}

func (h *debugHandler) Factory() gimlet.RouteHandler {
	return &debugHandler{name: h.name, run: h.run, readBody: h.readBody}
}

func (h *debugHandler) Parse(ctx context.Context, r *http.Request) error {
	h.req.vars = gimlet.GetVars(r)
	if h.readBody {
		return errors.Wrap(utility.ReadJSON(r.Body, &h.req.admin), "reading JSON request body")
	}
	return nil
}

func (h *debugHandler) Run(ctx context.Context) gimlet.Responder {
	out, err := h.run(ctx, &h.req)
	if err != nil {
		grip.Warning(message.WrapError(err, message.Fields{
			"message":  "debug endpoint failed",
			"endpoint": h.name,
		}))
		return gimlet.NewJSONResponse(map[string]any{
			"status":  "error",
			"message": errorMessage(err),
		})
	}
	out["status"] = "success"
	return gimlet.NewJSONResponse(out)
}

// errorMessage returns the message of an error response, or the error
// text for any other error.
func errorMessage(err error) string {
	if resp, ok := errors.Cause(err).(gimlet.ErrorResponse); ok {
		return resp.Message
	}
	return err.Error()
}

// debugRoutes are the unauthenticated inspection endpoints registered
// outside production.
type debugRoutes struct {
	sc       data.Connector
	settings *rideshare.Settings
}

func (d *debugRoutes) data(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	users, err := d.sc.FindUsers(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := d.sc.FindDrivers(ctx)
	if err != nil {
		return nil, err
	}
	passengers, err := d.sc.FindPassengers(ctx)
	if err != nil {
		return nil, err
	}
	vehicles, err := d.sc.FindVehicles(ctx)
	if err != nil {
		return nil, err
	}

	userList := make([]map[string]any, 0, len(users))
	for _, u := range users {
		userList = append(userList, map[string]any{"id": u.Id, "name": u.Name, "email": u.EmailAddress, "role": u.Role})
	}
	driverList := make([]map[string]any, 0, len(drivers))
	for _, dr := range drivers {
		driverList = append(driverList, map[string]any{"id": dr.Id, "user_id": dr.UserId, "vehicle_make": dr.VehicleMake, "license_plate": dr.LicensePlate})
	}
	passengerList := make([]map[string]any, 0, len(passengers))
	for _, p := range passengers {
		passengerList = append(passengerList, map[string]any{"id": p.Id, "user_id": p.UserId})
	}
	vehicleList := make([]map[string]any, 0, len(vehicles))
	for _, v := range vehicles {
		vehicleList = append(vehicleList, map[string]any{"id": v.Id, "vehicle_make": v.Make, "license_plate": v.LicensePlate})
	}

	collections, err := d.sc.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, name := range collections {
		if counts[name], err = d.sc.CountDocuments(ctx, name); err != nil {
			return nil, err
		}
	}

	return map[string]any{
		"data": map[string]any{
			"users_count":      len(users),
			"drivers_count":    len(drivers),
			"passengers_count": len(passengers),
			"vehicles_count":   len(vehicles),
			"collections":      counts,
			"users":            userList,
			"drivers":          driverList,
			"passengers":       passengerList,
			"vehicles":         vehicleList,
		},
	}, nil
}

func (d *debugRoutes) users(withTimestamps bool) debugFunc {
	return func(ctx context.Context, _ *debugRequest) (map[string]any, error) {
		users, err := d.sc.FindUsers(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(users))
		for _, u := range users {
			entry := map[string]any{
				"id":    u.Id,
				"name":  u.Name,
				"email": u.EmailAddress,
				"phone": u.Phone,
				"role":  u.Role,
			}
			if withTimestamps {
				entry["created_at"] = u.CreatedAt
			}
			out = append(out, entry)
		}
		return map[string]any{"users": out}, nil
	}
}

func (d *debugRoutes) drivers(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	drivers, err := d.sc.FindDrivers(ctx)
	if err != nil {
		return nil, err
	}
	userIds := make([]string, 0, len(drivers))
	for _, dr := range drivers {
		userIds = append(userIds, dr.UserId)
	}
	users, err := data.GetUsersForProfiles(ctx, d.sc, userIds)
	if err != nil {
		return nil, err
	}

	online := 0
	out := make([]model.APIDriver, 0, len(drivers))
	for _, dr := range drivers {
		apiDriver := model.APIDriver{}
		apiDriver.BuildFromService(dr, users[dr.UserId])
		out = append(out, apiDriver)
		if dr.IsOnline {
			online++
		}
	}
	return map[string]any{
		"drivers":       out,
		"online_count":  online,
		"offline_count": len(drivers) - online,
	}, nil
}

func (d *debugRoutes) vehicles(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	out, err := listVehicles(ctx, d.sc)
	if err != nil {
		return nil, err
	}
	return map[string]any{"vehicles": out}, nil
}

func (d *debugRoutes) rides(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	rides, err := d.sc.FindRides(ctx, ride.Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.APIRide, 0, len(rides))
	for _, r := range rides {
		apiRide := model.APIRide{}
		apiRide.BuildFromService(r)
		out = append(out, apiRide)
	}
	return map[string]any{"rides": out}, nil
}

func (d *debugRoutes) ridesWithDetails(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	out, err := getAPIRides(ctx, d.sc, ride.Filter{})
	if err != nil {
		return nil, err
	}
	return map[string]any{"rides": out, "total": len(out)}, nil
}

func (d *debugRoutes) fuelEntries(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	out, err := listFuelEntries(ctx, d.sc)
	if err != nil {
		return nil, err
	}
	return map[string]any{"fuel_entries": out}, nil
}

func (d *debugRoutes) fixFuelEntries(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	result, err := data.FixFuelEntries(ctx, d.sc)
	switch {
	case err == data.ErrNoDrivers:
		return nil, errors.New("No drivers found in database")
	case err == data.ErrNoFuelEntries:
		return nil, errors.New("No fuel entries found")
	case err != nil && result == nil:
		return nil, err
	}
	grip.Warning(message.WrapError(err, message.Fields{
		"message": "some fuel entries could not be reassigned",
		"fixed":   result.Fixed,
		"total":   result.Total,
	}))
	return map[string]any{
		"message":       fmt.Sprintf("Fixed %d fuel entries", result.Fixed),
		"fixed_count":   result.Fixed,
		"total_entries": result.Total,
	}, nil
}

func (d *debugRoutes) attendance(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	out, err := listAttendance(ctx, d.sc, attendance.Filter{})
	if err != nil {
		return nil, err
	}
	return map[string]any{"attendance": out, "total": len(out)}, nil
}

// userAuth describes the requesting user and the profile their role
// implies.
func (d *debugRoutes) userAuth(ctx context.Context, _ *debugRequest) (map[string]any, error) {
	u := MustHaveUser(ctx)
	out := map[string]any{
		"user": map[string]any{
			"id":    u.Id,
			"name":  u.Name,
			"email": u.EmailAddress,
			"role":  u.Role,
		},
	}
	switch u.Role {
	case rideshare.RoleDriver:
		dr, err := d.sc.FindDriverByUserId(ctx, u.Id)
		if err != nil {
			return nil, err
		}
		out["profile_found"] = dr != nil
		if dr != nil {
			out["driver_id"] = dr.Id
		}
	case rideshare.RolePassenger:
		p, err := d.sc.FindPassengerByUserId(ctx, u.Id)
		if err != nil {
			return nil, err
		}
		out["profile_found"] = p != nil
		if p != nil {
			out["passenger_id"] = p.Id
		}
	case rideshare.RoleAdmin:
		a, err := d.sc.FindAdminByUserId(ctx, u.Id)
		if err != nil {
			return nil, err
		}
		out["profile_found"] = a != nil
		if a != nil {
			out["admin_id"] = a.Id
		}
	}
	return out, nil
}

func (d *debugRoutes) createAdmin(ctx context.Context, req *debugRequest) (map[string]any, error) {
	body := req.admin
	if body.Email == "" {
		return nil, errors.New("email is required")
	}
	existing, err := d.sc.FindUserByEmail(ctx, body.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("User with this email already exists")
	}

	acct := data.Account{
		Name:     body.Name,
		Email:    body.Email,
		Phone:    body.Phone,
		Password: body.Password,
	}
	if acct.Name == "" {
		acct.Name = "Admin User"
	}
	if acct.Phone == "" {
		acct.Phone = "+1234567890"
	}
	if acct.Password == "" {
		acct.Password = d.settings.Auth.DefaultPassword
	}

	u, profile, err := data.CreateAdminAccount(ctx, d.sc, acct, body.Permissions)
	if err != nil {
		return nil, err
	}
	grip.Info(message.Fields{
		"message": "created admin through debug endpoint",
		"user":    u.Id,
		"admin":   profile.Id,
	})
	return map[string]any{
		"message": "Admin created successfully!",
		"admin": map[string]any{
			"id":      profile.Id,
			"user_id": profile.UserId,
			"user": map[string]any{
				"id":    u.Id,
				"name":  u.Name,
				"email": u.EmailAddress,
				"role":  u.Role,
			},
		},
	}, nil
}

func (d *debugRoutes) passengerRides(ctx context.Context, req *debugRequest) (map[string]any, error) {
	passengerId := req.vars["passenger_id"]
	p, err := d.sc.FindPassengerById(ctx, passengerId)
	if err != nil {
		return nil, err
	}
	out, err := getAPIRides(ctx, d.sc, ride.Filter{PassengerId: passengerId})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"passenger_id":    passengerId,
		"passenger_found": p != nil,
		"rides":           out,
		"total":           len(out),
	}, nil
}
