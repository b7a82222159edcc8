package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/auth"
	"github.com/rectransport/rideshare/rest/data"
	"github.com/rectransport/rideshare/rest/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) http.Handler {
	settings := &rideshare.Settings{
		Environment: rideshare.EnvironmentDevelopment,
		Auth:        rideshare.AuthConfig{SecretKey: "service-test", DefaultPassword: "password"},
	}
	tokens, err := auth.NewTokenManager(settings.Auth)
	require.NoError(t, err)

	h, err := GetRouter(route.HandlerOpts{Connector: &data.MockConnector{}, Settings: settings, Tokens: tokens})
	require.NoError(t, err)
	return h
}

func TestGetRouter(t *testing.T) {
	h := testRouter(t)

	t.Run("Health", func(t *testing.T) {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rw.Code)
	})
	t.Run("UnknownPath", func(t *testing.T) {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		assert.Equal(t, http.StatusNotFound, rw.Code)

		out := map[string]any{}
		require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
		assert.Equal(t, "Not Found", out["message"])
		assert.EqualValues(t, http.StatusNotFound, out["status"])
	})
	t.Run("WrongMethod", func(t *testing.T) {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodDelete, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)
	})
	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/rides", nil)
		req.Header.Set("Origin", "http://mobile.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		assert.Equal(t, http.StatusOK, rw.Code)
		assert.Equal(t, "*", rw.Header().Get("Access-Control-Allow-Origin"))
	})
	t.Run("ProtectedWithoutToken", func(t *testing.T) {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rw.Code)
	})
}

func TestGetServer(t *testing.T) {
	srv := GetServer("127.0.0.1:8000", http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:8000", srv.Addr)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}
