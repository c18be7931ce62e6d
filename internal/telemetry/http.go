package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware traces and meters HTTP requests with the provider's signals.
// Without providers the global ones are used.
func (p *Provider) HTTPMiddleware(next http.Handler) http.Handler {
	var opts []otelhttp.Option
	if p.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(p.TracerProvider))
	}
	if p.MeterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(p.MeterProvider))
	}
	opts = append(opts, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return r.Method + " " + r.URL.Path
	}))
	return otelhttp.NewHandler(next, p.config.ServiceName+"-http", opts...)
}
