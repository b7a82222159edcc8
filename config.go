package rideshare

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// developmentSecretKey signs tokens when no secret key is configured outside
// production.
const developmentSecretKey = "rectransport-development-secret"

// ConfigSection is implemented by every block of the service settings.
type ConfigSection interface {
	// SectionId returns the name of the section in the settings file.
	SectionId() string
	// ValidateAndDefault checks the section and fills in defaults for
	// unset values.
	ValidateAndDefault() error
}

// Settings is the complete service configuration.
type Settings struct {
	Environment string       `yaml:"environment" json:"environment"`
	Database    DBSettings   `yaml:"database" json:"database"`
	Auth        AuthConfig   `yaml:"auth" json:"auth"`
	Server      ServerConfig `yaml:"server" json:"server"`
	Maps        MapsConfig   `yaml:"maps" json:"maps"`
	Tracer      TracerConfig `yaml:"tracer" json:"tracer"`
}

// DBSettings configures the connection to the document store.
type DBSettings struct {
	Url                string `yaml:"url" json:"url"`
	DB                 string `yaml:"db" json:"db"`
	CAFile             string `yaml:"ca_file" json:"ca_file"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout_secs" json:"connect_timeout_secs"`
}

func (c *DBSettings) SectionId() string { return "database" }

func (c *DBSettings) ValidateAndDefault() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.Url == "", "database URL must be set")
	if c.CAFile != "" {
		catcher.ErrorfWhen(!utility.FileExists(c.CAFile), "CA file '%s' does not exist", c.CAFile)
	}
	if c.DB == "" {
		c.DB = DefaultDatabase
	}
	if c.ConnectTimeoutSecs <= 0 {
		c.ConnectTimeoutSecs = 10
	}
	return catcher.Resolve()
}

// ConnectTimeout returns the connection timeout as a duration.
func (c *DBSettings) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSecs) * time.Second
}

// AuthConfig configures password handling and bearer tokens.
type AuthConfig struct {
	SecretKey            string `yaml:"secret_key" json:"-"`
	TokenLifetimeMinutes int    `yaml:"token_lifetime_minutes" json:"token_lifetime_minutes"`
	DefaultPassword      string `yaml:"default_password" json:"-"`
	// DefaultAdminEmail and DefaultAdminPassword, when both set, describe
	// an admin account created at startup if it does not exist yet.
	DefaultAdminEmail    string `yaml:"default_admin_email" json:"default_admin_email"`
	DefaultAdminPassword string `yaml:"default_admin_password" json:"-"`
}

func (c *AuthConfig) SectionId() string { return "auth" }

func (c *AuthConfig) ValidateAndDefault() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(c.TokenLifetimeMinutes < 0, "token lifetime cannot be negative")
	catcher.NewWhen((c.DefaultAdminEmail == "") != (c.DefaultAdminPassword == ""),
		"default admin email and password must be set together")
	if c.TokenLifetimeMinutes == 0 {
		c.TokenLifetimeMinutes = int(DefaultAccessTokenLifetime / time.Minute)
	}
	if c.DefaultPassword == "" {
		c.DefaultPassword = DefaultUserPassword
	}
	return catcher.Resolve()
}

// TokenLifetime returns how long issued access tokens remain valid.
func (c *AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// DebugRoutes enables the unauthenticated /debug endpoints. When unset
	// they are enabled outside production.
	DebugRoutes         *bool `yaml:"debug_routes" json:"debug_routes"`
	ShutdownWaitSeconds int   `yaml:"shutdown_wait_seconds" json:"shutdown_wait_seconds"`
}

func (c *ServerConfig) SectionId() string { return "server" }

func (c *ServerConfig) ValidateAndDefault() error {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ShutdownWaitSeconds <= 0 {
		c.ShutdownWaitSeconds = 10
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d is out of range", c.Port)
	}
	return nil
}

// MapsConfig configures the Google Maps Distance Matrix client used for
// ride estimates.
type MapsConfig struct {
	APIKey      string `yaml:"api_key" json:"-"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" json:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" json:"max_retries"`
}

func (c *MapsConfig) SectionId() string { return "maps" }

func (c *MapsConfig) ValidateAndDefault() error {
	if c.BaseURL == "" {
		c.BaseURL = "https://maps.googleapis.com/maps/api"
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = 5
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return nil
}

// TracerConfig configures the OpenTelemetry tracer provider. If not enabled
// traces will not be sent.
type TracerConfig struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	CollectorEndpoint string `yaml:"collector_endpoint" json:"collector_endpoint"`
	// Insecure disables TLS on the collector connection.
	Insecure bool `yaml:"insecure" json:"insecure"`
}

func (c *TracerConfig) SectionId() string { return "tracer" }

func (c *TracerConfig) ValidateAndDefault() error {
	if c.Enabled && c.CollectorEndpoint == "" {
		return errors.New("tracer collector endpoint must be set when tracing is enabled")
	}
	return nil
}

// Sections returns every configuration section of the settings.
func (s *Settings) Sections() []ConfigSection {
	return []ConfigSection{&s.Database, &s.Auth, &s.Server, &s.Maps, &s.Tracer}
}

// ValidateAndDefault validates every section, collecting all problems.
func (s *Settings) ValidateAndDefault() error {
	if s.Environment == "" {
		s.Environment = EnvironmentDevelopment
	}

	catcher := grip.NewBasicCatcher()
	if s.Auth.SecretKey == "" {
		catcher.NewWhen(s.IsProduction(), "secret key must be set in production")
		s.Auth.SecretKey = developmentSecretKey
	}
	for _, section := range s.Sections() {
		catcher.Wrapf(section.ValidateAndDefault(), "validating section '%s'", section.SectionId())
	}
	return catcher.Resolve()
}

// IsProduction reports whether the settings describe a production deployment.
func (s *Settings) IsProduction() bool {
	return s.Environment == EnvironmentProduction
}

// DebugRoutesEnabled reports whether the /debug endpoints are served.
func (s *Settings) DebugRoutesEnabled() bool {
	if s.Server.DebugRoutes != nil {
		return *s.Server.DebugRoutes
	}
	return !s.IsProduction()
}

// NewSettings reads the settings from the YAML file at path, if given, then
// applies the process environment on top and validates the result.
func NewSettings(path string) (*Settings, error) {
	settings := &Settings{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading settings file '%s'", path)
		}
		if err = yaml.Unmarshal(data, settings); err != nil {
			return nil, errors.Wrapf(err, "parsing settings file '%s'", path)
		}
	}

	if err := settings.LoadFromEnv(os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "loading settings from environment")
	}

	if err := settings.ValidateAndDefault(); err != nil {
		return nil, errors.Wrap(err, "validating settings")
	}

	return settings, nil
}

// LoadFromEnv overrides settings with the values of any environment
// variables that are set. The lookup function has the signature of
// os.LookupEnv.
func (s *Settings) LoadFromEnv(lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if val, ok := lookup(key); ok && val != "" {
			*dst = val
		}
	}
	catcher := grip.NewBasicCatcher()
	setInt := func(key string, dst *int) {
		val, ok := lookup(key)
		if !ok || val == "" {
			return
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			catcher.Wrapf(err, "parsing environment variable '%s'", key)
			return
		}
		*dst = n
	}

	setString(EnvironmentEnv, &s.Environment)
	setString(MongoDBURLEnv, &s.Database.Url)
	setString(MongoDBDatabaseEnv, &s.Database.DB)
	setString(MongoDBCAFileEnv, &s.Database.CAFile)
	setString(SecretKeyEnv, &s.Auth.SecretKey)
	setString(DefaultAdminEmailEnv, &s.Auth.DefaultAdminEmail)
	setString(DefaultAdminPasswordEnv, &s.Auth.DefaultAdminPassword)
	setInt(TokenLifetimeEnv, &s.Auth.TokenLifetimeMinutes)
	setInt(PortEnv, &s.Server.Port)
	setString(GoogleMapsAPIKeyEnv, &s.Maps.APIKey)
	if endpoint, ok := lookup(OtelCollectorEnv); ok && endpoint != "" {
		s.Tracer.Enabled = true
		s.Tracer.CollectorEndpoint = endpoint
	}
	if val, ok := lookup(OtelCollectorInsecureEnv); ok && val != "" {
		insecure, err := strconv.ParseBool(val)
		if err != nil {
			catcher.Wrapf(err, "parsing environment variable '%s'", OtelCollectorInsecureEnv)
		} else {
			s.Tracer.Insecure = insecure
		}
	}

	return catcher.Resolve()
}
