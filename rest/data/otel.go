package data

import (
	"context"
	"fmt"

	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/rectransport/rideshare"
	"github.com/rectransport/rideshare/model/ride"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	rideTransitionsInstrument = "rideshare.rides.transitions"
	rideDistanceInstrument    = "rideshare.rides.distance"

	rideStatusAttribute = "rideshare.ride.status"
)

var packageName = fmt.Sprintf("%s%s", rideshare.PackageName, "/rest/data")

var (
	tracer = otel.GetTracerProvider().Tracer(packageName)

	rideInstruments = newRideMetrics(otel.GetMeterProvider().Meter(packageName))
)

// rideMetrics counts ride status changes and records the distance of
// completed rides.
type rideMetrics struct {
	transitions metric.Int64Counter
	distance    metric.Float64Histogram
}

func newRideMetrics(meter metric.Meter) *rideMetrics {
	m := &rideMetrics{}

	var err error
	m.transitions, err = meter.Int64Counter(rideTransitionsInstrument,
		metric.WithDescription("Rides entering each status"),
		metric.WithUnit("{ride}"),
	)
	if err != nil {
		grip.Error(errors.Wrap(err, "making ride transitions counter"))
		m.transitions = noop.Int64Counter{}
	}
	m.distance, err = meter.Float64Histogram(rideDistanceInstrument,
		metric.WithDescription("Odometer distance of completed rides"),
		metric.WithUnit("km"),
	)
	if err != nil {
		grip.Error(errors.Wrap(err, "making ride distance histogram"))
		m.distance = noop.Float64Histogram{}
	}

	return m
}

// record notes that the ride entered its current status.
func (m *rideMetrics) record(ctx context.Context, r *ride.Ride) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String(rideStatusAttribute, r.Status)))
	if r.Status == rideshare.RideCompleted {
		m.distance.Record(ctx, r.Distance)
	}
}
