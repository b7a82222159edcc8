package thirdparty

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// EstimateSourceMaps marks estimates computed by the Distance Matrix API.
	EstimateSourceMaps = "google_maps"
	// EstimateSourceGreatCircle marks estimates computed locally.
	EstimateSourceGreatCircle = "great_circle"

	earthRadiusKm = 6371.0
	// averageSpeedKmh converts great-circle distances into durations.
	averageSpeedKmh = 30.0

	mapsStatusOK = "OK"
)

// Coordinates is a point on the earth in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

// Validate checks that the coordinates are within range.
func (c Coordinates) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.ErrorfWhen(math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90, "latitude %f is out of range", c.Latitude)
	catcher.ErrorfWhen(math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180, "longitude %f is out of range", c.Longitude)
	return catcher.Resolve()
}

// RouteEstimate is the expected length of a trip.
type RouteEstimate struct {
	DistanceKm   float64 `json:"distance_km"`
	DurationSecs int     `json:"duration_secs"`
	Source       string  `json:"source"`
}

// RouteEstimator estimates the route between two points.
type RouteEstimator interface {
	Estimate(ctx context.Context, from, to Coordinates) (*RouteEstimate, error)
}

// GreatCircleEstimate computes the haversine distance between two points
// and a duration at a fixed average speed.
func GreatCircleEstimate(from, to Coordinates) *RouteEstimate {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(to.Latitude - from.Latitude)
	dLon := toRad(to.Longitude - from.Longitude)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(from.Latitude))*math.Cos(toRad(to.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	distance := earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return &RouteEstimate{
		DistanceKm:   math.Round(distance*100) / 100,
		DurationSecs: int(math.Round(distance / averageSpeedKmh * 3600)),
		Source:       EstimateSourceGreatCircle,
	}
}

type greatCircleEstimator struct{}

// NewGreatCircleEstimator returns an estimator that never leaves the process.
func NewGreatCircleEstimator() RouteEstimator { return greatCircleEstimator{} }

func (greatCircleEstimator) Estimate(_ context.Context, from, to Coordinates) (*RouteEstimate, error) {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(from.Validate(), "invalid origin")
	catcher.Wrap(to.Validate(), "invalid destination")
	if catcher.HasErrors() {
		return nil, catcher.Resolve()
	}
	return GreatCircleEstimate(from, to), nil
}

// MapsClient estimates routes with the Google Distance Matrix API, falling
// back to a great-circle estimate when the API is unavailable.
type MapsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	base    http.RoundTripper
}

// NewMapsClient returns a client for the configured API. If no API key is
// configured the great-circle estimator is returned instead.
func NewMapsClient(conf rideshare.MapsConfig) RouteEstimator {
	if conf.APIKey == "" {
		return NewGreatCircleEstimator()
	}

	client := utility.GetHTTPClient()
	base := client.Transport
	retry := rehttp.RetryAll(
		rehttp.RetryMaxRetries(conf.MaxRetries),
		rehttp.RetryHTTPMethods(http.MethodGet),
		rehttp.RetryAny(
			rehttp.RetryStatuses(http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
			rehttp.RetryTemporaryErr(),
		),
	)
	client.Transport = otelhttp.NewTransport(rehttp.NewTransport(base, retry, rehttp.ExpJitterDelay(100*time.Millisecond, 2*time.Second)))
	client.Timeout = time.Duration(conf.TimeoutSecs) * time.Second

	return &MapsClient{
		apiKey:  conf.APIKey,
		baseURL: conf.BaseURL,
		client:  client,
		base:    base,
	}
}

// Close returns the underlying HTTP client to the shared pool.
func (c *MapsClient) Close() {
	c.client.Transport = c.base
	utility.PutHTTPClient(c.client)
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Estimate asks the Distance Matrix API for the driving route. API failures
// are logged and answered with the great-circle estimate.
func (c *MapsClient) Estimate(ctx context.Context, from, to Coordinates) (*RouteEstimate, error) {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(from.Validate(), "invalid origin")
	catcher.Wrap(to.Validate(), "invalid destination")
	if catcher.HasErrors() {
		return nil, catcher.Resolve()
	}

	ctx, span := tracer.Start(ctx, "distance-matrix")
	defer span.End()

	estimate, err := c.distanceMatrix(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "distance matrix request failed")
		grip.Warning(message.WrapError(err, message.Fields{
			"message": "falling back to great-circle estimate",
			"origin":  from.String(),
			"dest":    to.String(),
		}))
		return GreatCircleEstimate(from, to), nil
	}

	span.SetAttributes(attribute.Float64("rideshare.maps.distance_km", estimate.DistanceKm))
	return estimate, nil
}

func (c *MapsClient) distanceMatrix(ctx context.Context, from, to Coordinates) (*RouteEstimate, error) {
	params := url.Values{}
	params.Set("origins", from.String())
	params.Set("destinations", to.String())
	params.Set("units", "metric")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/distancematrix/json?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling distance matrix API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("distance matrix API returned HTTP status %d", resp.StatusCode)
	}

	out := distanceMatrixResponse{}
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decoding distance matrix response")
	}
	if out.Status != mapsStatusOK {
		return nil, errors.Errorf("distance matrix API returned status '%s': %s", out.Status, out.ErrorMessage)
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return nil, errors.New("distance matrix response has no elements")
	}
	element := out.Rows[0].Elements[0]
	if element.Status != mapsStatusOK {
		return nil, errors.Errorf("no route found: element status '%s'", element.Status)
	}

	return &RouteEstimate{
		DistanceKm:   math.Round(element.Distance.Value/10) / 100,
		DurationSecs: element.Duration.Value,
		Source:       EstimateSourceMaps,
	}, nil
}
