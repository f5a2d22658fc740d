package middleware

import (
	"fmt"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/tracing"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// NewRequestLogger opens a server span, stores a request-scoped logger in the request
// context and logs each request once it completes. It expects the RequestID middleware to run first.
func NewRequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	tracer := otel.Tracer("stockgenius/http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, span := tracer.Start(req.Context(), fmt.Sprintf("%s %s", req.Method, c.Path()),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(req.Method),
					semconv.HTTPRoute(c.Path()),
				),
			)
			defer span.End()

			reqLog := log.With(
				logger.StringField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				logger.StringField("method", req.Method),
				logger.StringField("path", c.Path()),
			)
			if traceID, _, ok := tracing.TraceFields(ctx); ok {
				reqLog = reqLog.With(logger.StringField("trace_id", traceID))
			}
			c.SetRequest(req.WithContext(logger.NewContext(ctx, reqLog)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
			switch {
			case status >= 500:
				span.SetStatus(codes.Error, "server error")
				reqLog.Error("Request completed",
					logger.IntField("status", status),
					logger.DurationField("latency", time.Since(start)),
					logger.ErrorField(err),
				)
			case status >= 400:
				reqLog.Warn("Request completed",
					logger.IntField("status", status),
					logger.DurationField("latency", time.Since(start)),
				)
			default:
				reqLog.Info("Request completed",
					logger.IntField("status", status),
					logger.DurationField("latency", time.Since(start)),
				)
			}
			return nil
		}
	}
}
