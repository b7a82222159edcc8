package thirdparty

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rectransport/rideshare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `{
	"status": "OK",
	"rows": [{"elements": [{"status": "OK", "distance": {"value": 12345}, "duration": {"value": 900}}]}]
}`

var (
	bangalore = Coordinates{Latitude: 12.9716, Longitude: 77.5946}
	mysore    = Coordinates{Latitude: 12.2958, Longitude: 76.6394}
)

func newTestMapsClient(t *testing.T, handler http.HandlerFunc) *MapsClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := rideshare.MapsConfig{APIKey: "key", BaseURL: srv.URL, TimeoutSecs: 5, MaxRetries: 2}
	client, ok := NewMapsClient(conf).(*MapsClient)
	require.True(t, ok)
	t.Cleanup(client.Close)
	return client
}

func TestMapsClientEstimate(t *testing.T) {
	client := newTestMapsClient(t, func(rw http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, bangalore.String(), r.URL.Query().Get("origins"))
		assert.Equal(t, mysore.String(), r.URL.Query().Get("destinations"))
		_, _ = rw.Write([]byte(okResponse))
	})

	estimate, err := client.Estimate(context.Background(), bangalore, mysore)
	require.NoError(t, err)
	assert.Equal(t, EstimateSourceMaps, estimate.Source)
	assert.InDelta(t, 12.35, estimate.DistanceKm, 0.01)
	assert.Equal(t, 900, estimate.DurationSecs)
}

func TestMapsClientRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestMapsClient(t, func(rw http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = rw.Write([]byte(okResponse))
	})

	estimate, err := client.Estimate(context.Background(), bangalore, mysore)
	require.NoError(t, err)
	assert.Equal(t, EstimateSourceMaps, estimate.Source)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestMapsClientFallsBack(t *testing.T) {
	for name, body := range map[string]string{
		"DeniedRequest": `{"status": "REQUEST_DENIED", "error_message": "bad key"}`,
		"NoRoute":       `{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`,
		"NoElements":    `{"status": "OK", "rows": []}`,
		"Malformed":     `{`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestMapsClient(t, func(rw http.ResponseWriter, r *http.Request) {
				_, _ = rw.Write([]byte(body))
			})

			estimate, err := client.Estimate(context.Background(), bangalore, mysore)
			require.NoError(t, err)
			assert.Equal(t, EstimateSourceGreatCircle, estimate.Source)
			assert.Equal(t, GreatCircleEstimate(bangalore, mysore), estimate)
		})
	}
}

func TestMapsClientRejectsInvalidCoordinates(t *testing.T) {
	client := newTestMapsClient(t, func(rw http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Estimate(context.Background(), Coordinates{Latitude: 91}, mysore)
	assert.Error(t, err)
}

func TestGreatCircleEstimate(t *testing.T) {
	estimate := GreatCircleEstimate(bangalore, mysore)
	assert.Equal(t, EstimateSourceGreatCircle, estimate.Source)
	assert.InDelta(t, 128, estimate.DistanceKm, 2)
	assert.InDelta(t, 128.0/averageSpeedKmh*3600, float64(estimate.DurationSecs), 300)

	same := GreatCircleEstimate(bangalore, bangalore)
	assert.Zero(t, same.DistanceKm)
	assert.Zero(t, same.DurationSecs)
}

func TestNewMapsClientWithoutKey(t *testing.T) {
	estimator := NewMapsClient(rideshare.MapsConfig{})
	_, ok := estimator.(greatCircleEstimator)
	assert.True(t, ok)

	estimate, err := estimator.Estimate(context.Background(), bangalore, mysore)
	require.NoError(t, err)
	assert.Equal(t, EstimateSourceGreatCircle, estimate.Source)

	_, err = estimator.Estimate(context.Background(), bangalore, Coordinates{Longitude: 200})
	assert.Error(t, err)
}
