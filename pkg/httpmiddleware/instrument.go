package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides the tracer and meter providers used for instrumentation.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Instrument wraps requests in an otelhttp server span and records the
// standard HTTP server metrics. The span is renamed to the matched chi route
// after the router has run.
func Instrument(service string, t Telemetry) Middleware {
	return func(next http.Handler) http.Handler {
		routed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, rctx := withRouteContext(r)
			next.ServeHTTP(w, r)

			route := routePattern(rctx)
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + route)
			if labeler, ok := otelhttp.LabelerFromContext(r.Context()); ok {
				labeler.Add(attribute.String("http.route", route))
			}
		})
		return otelhttp.NewHandler(routed, service,
			otelhttp.WithTracerProvider(t.TracerProvider()),
			otelhttp.WithMeterProvider(t.MeterProvider()),
		)
	}
}
