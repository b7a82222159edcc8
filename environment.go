package rideshare

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	metricsExportInterval = 15 * time.Second
	metricsExportTimeout  = metricsExportInterval * 2

	// dbPingAttempts bounds how often startup retries an unreachable
	// database before giving up.
	dbPingAttempts = 5
)

var (
	globalEnvState Environment
	globalEnvLock  *sync.RWMutex
)

func init() { globalEnvLock = &sync.RWMutex{} }

// GetEnvironment returns the global application level
// environment. This object is safe to use concurrently.
func GetEnvironment() Environment {
	globalEnvLock.RLock()
	defer globalEnvLock.RUnlock()

	return globalEnvState
}

// SetEnvironment replaces the global environment; used in process
// setup and in tests.
func SetEnvironment(env Environment) {
	globalEnvLock.Lock()
	defer globalEnvLock.Unlock()

	globalEnvState = env
}

// Environment provides application-level services (database
// connection, settings, shutdown hooks) shared by the whole process.
type Environment interface {
	Settings() *Settings

	// Client and DB return the connected database client and the
	// configured application database.
	Client() *mongo.Client
	DB() *mongo.Database

	// RegisterCloser adds a function to be called on Close. Closers run
	// concurrently.
	RegisterCloser(string, func(context.Context) error)
	Close(context.Context) error
}

// NewEnvironment loads the settings from confPath and the process
// environment, connects to the database and configures tracing.
func NewEnvironment(ctx context.Context, confPath string) (Environment, error) {
	settings, err := NewSettings(confPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading settings")
	}

	return NewEnvironmentFromSettings(ctx, settings)
}

// NewEnvironmentFromSettings builds an environment from already validated
// settings.
func NewEnvironmentFromSettings(ctx context.Context, settings *Settings) (Environment, error) {
	e := &envState{
		settings: settings,
		closers:  map[string]func(context.Context) error{},
	}

	catcher := grip.NewBasicCatcher()
	catcher.Wrap(e.initDB(ctx), "initializing database")
	catcher.Wrap(e.initOtel(ctx), "initializing telemetry")
	if catcher.HasErrors() {
		catcher.Wrap(e.Close(ctx), "closing partially initialized environment")
		return nil, catcher.Resolve()
	}

	return e, nil
}

type envState struct {
	settings *Settings
	client   *mongo.Client
	closers  map[string]func(context.Context) error

	mu sync.RWMutex
}

func (e *envState) initDB(ctx context.Context) error {
	conf := e.settings.Database
	opts := options.Client().
		ApplyURI(conf.Url).
		SetConnectTimeout(conf.ConnectTimeout()).
		SetAppName(ServiceName)

	if conf.CAFile != "" {
		tlsConf, err := tlsConfigFromCAFile(conf.CAFile)
		if err != nil {
			return errors.Wrap(err, "building database TLS config")
		}
		opts.SetTLSConfig(tlsConf)
	}

	var err error
	e.client, err = mongo.Connect(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "connecting to the database")
	}
	e.RegisterCloser("database", func(ctx context.Context) error {
		return errors.Wrap(e.client.Disconnect(ctx), "disconnecting from the database")
	})

	if err = pingWithRetry(ctx, e.client, conf.ConnectTimeout()); err != nil {
		return errors.Wrap(err, "pinging the database")
	}

	grip.Info(message.Fields{
		"message":  "connected to database",
		"database": conf.DB,
		"tls_ca":   conf.CAFile != "",
	})

	return nil
}

// pingWithRetry waits for the primary to answer, backing off between
// attempts.
func pingWithRetry(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 1; attempt <= dbPingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return nil
		}

		wait := b.Duration()
		grip.Warning(message.WrapError(err, message.Fields{
			"message":   "database ping failed",
			"attempt":   attempt,
			"max":       dbPingAttempts,
			"wait_secs": wait.Seconds(),
		}))
		if attempt == dbPingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting to retry the database ping")
		case <-time.After(wait):
		}
	}
	return errors.Wrapf(err, "database unreachable after %d attempts", dbPingAttempts)
}

func tlsConfigFromCAFile(path string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading CA file '%s'", path)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Errorf("no certificates found in CA file '%s'", path)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// initOtel sets the global tracer and meter providers, both exporting over
// one gRPC connection to the collector.
func (e *envState) initOtel(ctx context.Context) error {
	conf := e.settings.Tracer
	if !conf.Enabled {
		grip.Info("tracer is disabled")
		return nil
	}

	creds := credentials.NewTLS(nil)
	if conf.Insecure {
		creds = insecure.NewCredentials()
	}
	conn, err := grpc.NewClient(conf.CollectorEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return errors.Wrapf(err, "opening gRPC connection to '%s'", conf.CollectorEndpoint)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ClientVersion),
		semconv.DeploymentEnvironment(e.settings.Environment),
	)

	traceExporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithGRPCConn(conn)))
	if err != nil {
		return errors.Wrap(err, "initializing otel trace exporter")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		grip.Error(errors.Wrap(err, "otel error"))
	}))

	metricsExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return errors.Wrap(err, "making otel metrics exporter")
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricsExporter,
			sdkmetric.WithInterval(metricsExportInterval),
			sdkmetric.WithTimeout(metricsExportTimeout),
		)),
	)
	otel.SetMeterProvider(mp)

	e.RegisterCloser("telemetry", func(ctx context.Context) error {
		catcher := grip.NewBasicCatcher()
		catcher.Wrap(tp.Shutdown(ctx), "trace provider shutdown")
		catcher.Wrap(traceExporter.Shutdown(ctx), "trace exporter shutdown")
		catcher.Wrap(mp.Shutdown(ctx), "meter provider shutdown")
		catcher.Wrap(conn.Close(), "closing gRPC connection")
		return catcher.Resolve()
	})

	grip.Info(message.Fields{
		"message":   "telemetry enabled",
		"collector": conf.CollectorEndpoint,
		"insecure":  conf.Insecure,
	})

	return nil
}

func (e *envState) Settings() *Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings
}

func (e *envState) Client() *mongo.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client
}

func (e *envState) DB() *mongo.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.client == nil {
		return nil
	}
	return e.client.Database(e.settings.Database.DB)
}

func (e *envState) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closers[name] = closer
}

func (e *envState) Close(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	deadline, _ := ctx.Deadline()
	catcher := grip.NewBasicCatcher()
	wg := &sync.WaitGroup{}
	for n, closer := range e.closers {
		if closer == nil {
			continue
		}

		wg.Add(1)
		go func(name string, close func(context.Context) error) {
			defer wg.Done()
			grip.Info(message.Fields{
				"message":      "calling closer",
				"closer":       name,
				"timeout_secs": time.Until(deadline).Seconds(),
				"deadline":     deadline,
			})
			catcher.Wrapf(close(ctx), "running closer '%s'", name)
		}(n, closer)
	}

	wg.Wait()
	return catcher.Resolve()
}
