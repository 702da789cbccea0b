package otel

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "lighthouse-restaurant/backend/http"

// Middleware opens a server span per request with the global tracer provider.
func Middleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Metrics records request count and duration per gin route pattern with the global meter provider.
// Unmatched requests share the "unmatched" route label.
func Metrics() gin.HandlerFunc {
	meter := otel.Meter(instrumentationName)
	requests, _ := meter.Int64Counter("lighthouse.http.requests",
		metric.WithDescription("HTTP requests handled"))
	duration, _ := meter.Float64Histogram("lighthouse.http.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("ms"))

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", c.Writer.Status()),
		)
		ctx := c.Request.Context()
		if requests != nil {
			requests.Add(ctx, 1, attrs)
		}
		if duration != nil {
			duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		}
	}
}
