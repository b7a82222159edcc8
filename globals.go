package rideshare

import (
	"os"
	"time"
)

const (
	// ServiceName is used for the process name, the tracer resource and
	// the smoke-test endpoints.
	ServiceName = "RecTransport API"

	PackageName = "github.com/rectransport/rideshare"

	// ClientVersion is the version reported by the CLI and the health check.
	ClientVersion = "1.0.0"

	DefaultPort     = 8000
	DefaultHost     = "0.0.0.0"
	DefaultDatabase = "rectransport"

	DefaultAccessTokenLifetime = 30 * time.Minute
	// DefaultUserPassword is assigned to accounts created by an admin
	// without an explicit password.
	DefaultUserPassword = "password"

	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// User roles.
const (
	RoleAdmin     = "admin"
	RoleDriver    = "driver"
	RolePassenger = "passenger"
)

// ValidRoles lists every role a user document may carry.
var ValidRoles = []string{RoleAdmin, RoleDriver, RolePassenger}

// Ride statuses.
const (
	RideRequested  = "requested"
	RideAssigned   = "assigned"
	RideInProgress = "in_progress"
	RideCompleted  = "completed"
	RideCancelled  = "cancelled"
)

// RideStatuses lists every ride status in lifecycle order.
var RideStatuses = []string{RideRequested, RideAssigned, RideInProgress, RideCompleted, RideCancelled}

// ActiveRideStatuses are the statuses of rides a driver is currently
// responsible for.
var ActiveRideStatuses = []string{RideAssigned, RideInProgress}

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceLeave   = "leave"
)

var ValidAttendanceStatuses = []string{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceLeave}

// Fuel entry sources.
const (
	FuelAddedByAdmin  = "admin"
	FuelAddedByDriver = "driver"
)

// Date layouts accepted by the API.
const (
	// DayMonthYearLayout is the DD-MM-YYYY format used for license expiry
	// and attendance dates.
	DayMonthYearLayout = "02-01-2006"
	// ISODateLayout is the YYYY-MM-DD format used for fuel entries.
	ISODateLayout = "2006-01-02"
)

// Defaults applied to driver profiles created without vehicle details.
const (
	NotSpecified       = "Not Specified"
	NotAssigned        = "Not Assigned"
	DefaultVehicleYear = 2024
	DefaultRating      = 5.0

	// Unknown is rendered for references that cannot be resolved.
	Unknown = "Unknown"
)

// DefaultAdminPermissions is stored on admin profiles created without an
// explicit permission set.
const DefaultAdminPermissions = `["view_all", "manage_drivers", "manage_rides", "manage_passengers"]`

// Environment variable names read by the settings loader.
const (
	MongoDBURLEnv            = "MONGODB_URL"
	MongoDBDatabaseEnv       = "MONGODB_DATABASE"
	MongoDBCAFileEnv         = "MONGODB_CA_FILE"
	EnvironmentEnv           = "ENVIRONMENT"
	SecretKeyEnv             = "SECRET_KEY"
	GoogleMapsAPIKeyEnv      = "GOOGLE_MAPS_API_KEY"
	PortEnv                  = "PORT"
	TokenLifetimeEnv         = "ACCESS_TOKEN_EXPIRE_MINUTES"
	OtelCollectorEnv         = "OTEL_COLLECTOR_ENDPOINT"
	OtelCollectorInsecureEnv = "OTEL_COLLECTOR_INSECURE"
	DefaultAdminEmailEnv     = "DEFAULT_ADMIN_EMAIL"
	DefaultAdminPasswordEnv  = "DEFAULT_ADMIN_PASSWORD"
)

// BuildRevision is set at link time.
var BuildRevision = ""

// IsProduction reports whether the process runs with ENVIRONMENT=production
// regardless of the loaded settings; used before settings exist.
func IsProduction() bool {
	return os.Getenv(EnvironmentEnv) == EnvironmentProduction
}
