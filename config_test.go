package rideshare

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestSettingsValidateAndDefault(t *testing.T) {
	t.Run("AppliesDefaults", func(t *testing.T) {
		s := &Settings{
			Database: DBSettings{Url: "mongodb://localhost:27017"},
			Auth:     AuthConfig{SecretKey: "secret"},
		}
		require.NoError(t, s.ValidateAndDefault())

		assert.Equal(t, EnvironmentDevelopment, s.Environment)
		assert.Equal(t, DefaultDatabase, s.Database.DB)
		assert.Equal(t, DefaultPort, s.Server.Port)
		assert.Equal(t, DefaultHost, s.Server.Host)
		assert.Equal(t, DefaultAccessTokenLifetime, s.Auth.TokenLifetime())
		assert.Equal(t, DefaultUserPassword, s.Auth.DefaultPassword)
		assert.Equal(t, "https://maps.googleapis.com/maps/api", s.Maps.BaseURL)
		assert.False(t, s.Tracer.Enabled)
	})
	t.Run("CollectsAllErrors", func(t *testing.T) {
		s := &Settings{Environment: EnvironmentProduction}
		err := s.ValidateAndDefault()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database URL must be set")
		assert.Contains(t, err.Error(), "secret key must be set")
	})
	t.Run("DefaultsSecretOutsideProduction", func(t *testing.T) {
		s := &Settings{Database: DBSettings{Url: "mongodb://localhost:27017"}}
		require.NoError(t, s.ValidateAndDefault())
		assert.Equal(t, developmentSecretKey, s.Auth.SecretKey)
	})
	t.Run("RejectsHalfConfiguredAdmin", func(t *testing.T) {
		s := &Settings{
			Database: DBSettings{Url: "mongodb://localhost:27017"},
			Auth:     AuthConfig{SecretKey: "secret", DefaultAdminEmail: "admin@example.com"},
		}
		assert.Error(t, s.ValidateAndDefault())
	})
	t.Run("RejectsTracerWithoutEndpoint", func(t *testing.T) {
		s := &Settings{
			Database: DBSettings{Url: "mongodb://localhost:27017"},
			Auth:     AuthConfig{SecretKey: "secret"},
			Tracer:   TracerConfig{Enabled: true},
		}
		assert.Error(t, s.ValidateAndDefault())
	})
	t.Run("RejectsMissingCAFile", func(t *testing.T) {
		s := &Settings{
			Database: DBSettings{Url: "mongodb://localhost:27017", CAFile: filepath.Join(t.TempDir(), "missing.pem")},
			Auth:     AuthConfig{SecretKey: "secret"},
		}
		assert.Error(t, s.ValidateAndDefault())
	})
}

func TestDebugRoutesEnabled(t *testing.T) {
	s := &Settings{Environment: EnvironmentDevelopment}
	assert.True(t, s.DebugRoutesEnabled())

	s.Environment = EnvironmentProduction
	assert.False(t, s.DebugRoutesEnabled())

	s.Server.DebugRoutes = utility.ToBoolPtr(true)
	assert.True(t, s.DebugRoutesEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("OverridesFileValues", func(t *testing.T) {
		s := &Settings{Database: DBSettings{Url: "mongodb://file", DB: "file_db"}}
		require.NoError(t, s.LoadFromEnv(mapLookup(map[string]string{
			MongoDBURLEnv:            "mongodb://env",
			SecretKeyEnv:             "env-secret",
			PortEnv:                  "9000",
			TokenLifetimeEnv:         "45",
			GoogleMapsAPIKeyEnv:      "maps-key",
			OtelCollectorEnv:         "localhost:4317",
			OtelCollectorInsecureEnv: "true",
		})))

		assert.Equal(t, "mongodb://env", s.Database.Url)
		assert.Equal(t, "file_db", s.Database.DB)
		assert.Equal(t, "env-secret", s.Auth.SecretKey)
		assert.Equal(t, 9000, s.Server.Port)
		assert.Equal(t, 45, s.Auth.TokenLifetimeMinutes)
		assert.Equal(t, "maps-key", s.Maps.APIKey)
		assert.True(t, s.Tracer.Enabled)
		assert.Equal(t, "localhost:4317", s.Tracer.CollectorEndpoint)
		assert.True(t, s.Tracer.Insecure)
	})
	t.Run("IgnoresEmptyValues", func(t *testing.T) {
		s := &Settings{Database: DBSettings{Url: "mongodb://file"}}
		require.NoError(t, s.LoadFromEnv(mapLookup(map[string]string{MongoDBURLEnv: ""})))
		assert.Equal(t, "mongodb://file", s.Database.Url)
	})
	t.Run("FailsOnMalformedInteger", func(t *testing.T) {
		s := &Settings{}
		assert.Error(t, s.LoadFromEnv(mapLookup(map[string]string{PortEnv: "eighty"})))
	})
	t.Run("FailsOnMalformedBool", func(t *testing.T) {
		s := &Settings{}
		assert.Error(t, s.LoadFromEnv(mapLookup(map[string]string{OtelCollectorInsecureEnv: "sometimes"})))
	})
}

func TestNewSettingsFromFile(t *testing.T) {
	for _, key := range []string{MongoDBURLEnv, MongoDBDatabaseEnv, MongoDBCAFileEnv, SecretKeyEnv, PortEnv,
		TokenLifetimeEnv, EnvironmentEnv, GoogleMapsAPIKeyEnv, OtelCollectorEnv, OtelCollectorInsecureEnv, DefaultAdminEmailEnv, DefaultAdminPasswordEnv} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
database:
  url: mongodb://localhost:27017
  db: rides_test
auth:
  secret_key: file-secret
  token_lifetime_minutes: 10
server:
  port: 8080
`), 0600))

	s, err := NewSettings(path)
	require.NoError(t, err)
	assert.True(t, s.IsProduction())
	assert.Equal(t, "rides_test", s.Database.DB)
	assert.Equal(t, "file-secret", s.Auth.SecretKey)
	assert.Equal(t, 10, s.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 8080, s.Server.Port)
	assert.False(t, s.DebugRoutesEnabled())

	_, err = NewSettings(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
