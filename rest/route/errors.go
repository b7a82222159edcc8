package route

import (
	"fmt"
	"net/http"

	"github.com/evergreen-ci/gimlet"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare/model/ride"
)

func notFound(format string, args ...any) gimlet.Responder {
	return gimlet.MakeJSONErrorResponder(gimlet.ErrorResponse{
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf(format, args...),
	})
}

func forbidden(message string) gimlet.Responder {
	return gimlet.MakeJSONErrorResponder(gimlet.ErrorResponse{
		StatusCode: http.StatusForbidden,
		Message:    message,
	})
}

func badRequest(err error) error {
	return gimlet.ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Message:    err.Error(),
	}
}

// rideErrorResponder maps lifecycle violations to 400, actions by a driver
// the ride is not assigned to to 403, and changes that lost a race with
// another request to 409.
func rideErrorResponder(err error) gimlet.Responder {
	switch {
	case ride.IsTransitionError(err), errors.Cause(err) == ride.ErrEndBeforeStart:
		return gimlet.MakeJSONErrorResponder(badRequest(errors.Cause(err)))
	case errors.Cause(err) == ride.ErrStatusChanged:
		return gimlet.MakeJSONErrorResponder(gimlet.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    ride.ErrStatusChanged.Error(),
		})
	case errors.Cause(err) == ride.ErrNotAssignedDriver:
		return forbidden(ride.ErrNotAssignedDriver.Error())
	default:
		return gimlet.MakeJSONInternalErrorResponder(err)
	}
}
