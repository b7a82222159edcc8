package thirdparty

import "go.opentelemetry.io/otel"

const packageName = "github.com/rectransport/rideshare/thirdparty"

var tracer = otel.GetTracerProvider().Tracer(packageName)
