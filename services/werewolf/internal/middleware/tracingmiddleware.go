package middleware

import (
	"net/http"

	"github.com/cuihairu/werewolf/services/werewolf/internal/svc"
)

// TracingMiddleware wraps every route with the otel HTTP instrumentation.
type TracingMiddleware struct {
	ctx *svc.ServiceContext
}

func NewTracingMiddleware(ctx *svc.ServiceContext) *TracingMiddleware {
	return &TracingMiddleware{ctx: ctx}
}

func (m *TracingMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	if m.ctx.Telemetry == nil {
		return next
	}
	return m.ctx.Telemetry.HTTPMiddleware(next).ServeHTTP
}
