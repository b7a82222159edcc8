package route

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evergreen-ci/gimlet"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/model/fuel"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *RouteSuite) TestDebugData() {
	rw := s.do(http.MethodGet, "/debug/data", nil, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal("success", out["status"])
	summary := out["data"].(map[string]any)
	s.EqualValues(4, summary["users_count"])
	s.EqualValues(2, summary["drivers_count"])
	s.EqualValues(1, summary["passengers_count"])

	rw = s.do(http.MethodGet, "/debug/drivers", nil, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out = s.decode(rw)
	s.EqualValues(0, out["online_count"])
	s.EqualValues(2, out["offline_count"])
}

func (s *RouteSuite) TestDebugFixFuelEntries() {
	rw := s.do(http.MethodPost, "/debug/fix-fuel-entries", nil, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal("error", out["status"])
	s.Equal("No fuel entries found", out["message"])

	orphan := fuel.New(fuel.Entry{DriverId: "deleted-driver", Amount: 10, Cost: 900})
	s.Require().NoError(s.sc.CreateFuelEntry(s.ctx, orphan))

	rw = s.do(http.MethodPost, "/debug/fix-fuel-entries", nil, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out = s.decode(rw)
	s.Equal("success", out["status"])
	s.EqualValues(1, out["fixed_count"])
	s.EqualValues(1, out["total_entries"])

	entries, err := s.sc.FindFuelEntries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Contains([]string{s.driver.Id, s.otherDriver.Id}, entries[0].DriverId)
}

func (s *RouteSuite) TestDebugCreateAdmin() {
	rw := s.do(http.MethodPost, "/debug/create-admin", nil, map[string]string{"email": "ops@example.com"})
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal("success", out["status"])
	s.Equal("Admin created successfully!", out["message"])

	u, err := s.sc.FindUserByEmail(s.ctx, "ops@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(u)
	s.Equal("Admin User", u.Name)
	s.Equal(rideshare.RoleAdmin, u.Role)
	s.True(auth.CheckPassword(u.PasswordHash, testPassword))

	rw = s.do(http.MethodPost, "/debug/create-admin", nil, map[string]string{"email": "ops@example.com"})
	s.Require().Equal(http.StatusOK, rw.Code)
	out = s.decode(rw)
	s.Equal("error", out["status"])
	s.Equal("User with this email already exists", out["message"])
}

func (s *RouteSuite) TestDebugUserAuth() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/debug/user-auth", nil, nil).Code)

	rw := s.do(http.MethodGet, "/debug/user-auth", s.driverUser, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal(true, out["profile_found"])
	s.Equal(s.driver.Id, out["driver_id"])
}

func (s *RouteSuite) TestDebugPassengerRides() {
	s.requestRide()
	rw := s.do(http.MethodGet, "/debug/passenger-rides/"+s.passenger.Id, nil, nil)
	s.Require().Equal(http.StatusOK, rw.Code)
	out := s.decode(rw)
	s.Equal(true, out["passenger_found"])
	s.EqualValues(1, out["total"])
}

func TestDebugRoutesDisabledInProduction(t *testing.T) {
	settings := &rideshare.Settings{
		Environment: rideshare.EnvironmentProduction,
		Auth:        rideshare.AuthConfig{SecretKey: "secret", DefaultPassword: testPassword},
	}
	tokens, err := auth.NewTokenManager(settings.Auth)
	require.NoError(t, err)

	app := gimlet.NewApp()
	app.NoVersions = true
	app.ResetMiddleware()
	require.NoError(t, AttachHandler(app, HandlerOpts{Connector: &data.MockConnector{}, Settings: settings, Tokens: tokens}))
	handler, err := app.Handler()
	require.NoError(t, err)

	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/debug/data", nil))
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestAttachHandlerValidatesOptions(t *testing.T) {
	assert.Error(t, AttachHandler(gimlet.NewApp(), HandlerOpts{}))
}
