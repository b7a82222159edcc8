package service

import (
	"net/http"
	"time"

	"github.com/evergreen-ci/gimlet"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/db/cache"
	"github.com/rectransport/rideshare/rest/route"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// GetServer produces an HTTP server instance for a handler.
func GetServer(addr string, n http.Handler) *http.Server {
	grip.Notice(message.Fields{
		"action":  "starting service",
		"service": addr,
		"version": rideshare.ClientVersion,
		"process": grip.Name(),
	})

	return &http.Server{
		Addr:              addr,
		Handler:           n,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      time.Minute,
	}
}

// GetRouter assembles the API. Requests pass through CORS handling that
// admits any origin, then logging and panic recovery, the per-request
// document cache and bearer token authentication before reaching a traced
// route.
func GetRouter(opts route.HandlerOpts) (http.Handler, error) {
	app := gimlet.NewApp()
	app.NoVersions = true
	app.ResetMiddleware()
	app.AddMiddleware(gimlet.MakeRecoveryLogger())
	app.AddMiddleware(gimlet.NewAppLogger())
	app.AddMiddleware(cache.NewGimletMiddleware("rideshare-api"))
	app.AddMiddleware(auth.NewUserMiddleware(opts.Tokens, opts.Connector))

	if err := route.AttachHandler(app, opts); err != nil {
		return nil, errors.Wrap(err, "attaching routes")
	}

	h, err := app.Handler()
	if err != nil {
		return nil, errors.Wrap(err, "resolving routes")
	}
	router, err := app.Router()
	if err != nil {
		return nil, errors.Wrap(err, "getting router")
	}
	setErrorHandlers(router)
	router.Use(otelmux.Middleware(rideshare.ServiceName))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept", "Origin"}),
	)
	return cors(h), nil
}

// setErrorHandlers makes unmatched requests answer with the same JSON error
// body as the route handlers.
func setErrorHandlers(r *mux.Router) {
	r.NotFoundHandler = errorHandler(http.StatusNotFound, "Not Found")
	r.MethodNotAllowedHandler = errorHandler(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func errorHandler(status int, msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		gimlet.WriteJSONResponse(w, status, gimlet.ErrorResponse{StatusCode: status, Message: msg})
	})
}
