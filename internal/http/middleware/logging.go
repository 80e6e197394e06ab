// Package middleware holds the Gin middleware of the host bridge API:
// correlation and device identity, access logging, panic recovery,
// Prometheus instrumentation, idempotent replays and rate limiting.
//
// Recommended order: RequestID, Device, Logger, Recovery, then the rest, so
// every log line and error body carries the correlation ID.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-rental-core/internal/sysutil"
)

const (
	requestIDKey    = "requestID"
	deviceIDKey     = "deviceID"
	loggerKey       = "logger"
	RequestIDHeader = "X-Request-ID"
	// DeviceIDHeader names the app installation talking to the core. The
	// core has no accounts; idempotency and rate limits are per device.
	DeviceIDHeader = "X-Device-ID"
	// DefaultDevice is used when the host does not send a device id.
	DefaultDevice = "local"

	maxQueryLogLength = 512
	maxDeviceIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or mints a UUID, echoes it on the
// response and stores it in the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := sysutil.FirstNonEmpty(c.GetHeader(RequestIDHeader), uuid.NewString())
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}

// Device stores the caller's device id (X-Device-ID, else DefaultDevice).
// Overlong ids are cut so they cannot blow up bucket or index keys.
func Device() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := sysutil.FirstNonEmpty(c.GetHeader(DeviceIDHeader), DefaultDevice)
		c.Set(deviceIDKey, truncate(id, maxDeviceIDLength, ""))
		c.Next()
	}
}

// DeviceFrom returns the device id set by Device, or DefaultDevice.
func DeviceFrom(c *gin.Context) string {
	return sysutil.FirstNonEmpty(c.GetString(deviceIDKey), DefaultDevice)
}

// RequestIDFrom returns the correlation id set by RequestID.
func RequestIDFrom(c *gin.Context) string {
	return sysutil.FirstNonEmpty(c.GetString(requestIDKey), c.Writer.Header().Get(RequestIDHeader))
}

// Logger attaches a request-scoped logger and writes one access line per
// request: info for 2xx/3xx, warn for 4xx, error for 5xx or gin errors.
// Routes with a :id parameter log it as listing_id; traced requests carry
// trace_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("device_id", DeviceFrom(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("remote_ip", c.ClientIP())
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			ctx = ctx.Str("trace_id", sc.TraceID().String())
		}
		if id := c.Param("id"); id != "" {
			ctx = ctx.Str("listing_id", id)
		}
		if q := c.Request.URL.RawQuery; q != "" {
			ctx = ctx.Str("query", truncate(q, maxQueryLogLength, "…"))
		}
		l := ctx.Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery turns a panic into a logged stack trace and, if nothing was
// written yet, the standard internal_error envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(RequestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global one when Logger
// is not installed.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Str("request_id", c.GetString(requestIDKey)).Logger()
	return &l
}

func truncate(s string, max int, suffix string) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + suffix
}
