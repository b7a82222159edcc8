package route

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/evergreen-ci/gimlet"
	"github.com/rectransport/rideshare"
)

////////////////////////////////////////////////////////////////////////
//
// GET /health

type healthHandler struct{}

func makeHealthHandler() gimlet.RouteHandler { return &healthHandler{} }

func (h *healthHandler) Factory() gimlet.RouteHandler                     { return &healthHandler{} }
func (h *healthHandler) Parse(ctx context.Context, r *http.Request) error { return nil }

func (h *healthHandler) Run(ctx context.Context) gimlet.Responder {
	return gimlet.NewJSONResponse(map[string]any{
		"status":    "healthy",
		"message":   rideshare.ServiceName + " is running",
		"version":   rideshare.ClientVersion,
		"timestamp": time.Now().UTC(),
	})
}

////////////////////////////////////////////////////////////////////////
//
// GET /test
// GET /mobile-test

type smokeTestHandler struct {
	mobile bool
	host   string
}

func makeSmokeTestHandler(mobile bool) gimlet.RouteHandler {
	return &smokeTestHandler{mobile: mobile}
}

func (h *smokeTestHandler) Factory() gimlet.RouteHandler {
	return &smokeTestHandler{mobile: h.mobile}
}

func (h *smokeTestHandler) Parse(ctx context.Context, r *http.Request) error {
	h.host = r.Host
	return nil
}

func (h *smokeTestHandler) Run(ctx context.Context) gimlet.Responder {
	if !h.mobile {
		return gimlet.NewJSONResponse(map[string]any{
			"status":  "success",
			"message": rideshare.ServiceName + " test endpoint is working",
		})
	}

	server := h.host
	if hostname, err := os.Hostname(); err == nil && server == "" {
		server = hostname
	}
	return gimlet.NewJSONResponse(map[string]any{
		"status":    "success",
		"message":   "Mobile app can reach the " + rideshare.ServiceName,
		"timestamp": time.Now().UTC(),
		"server":    server,
	})
}
