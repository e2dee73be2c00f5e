package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prabodhahdev/login-signup/internal/infra/logger"
)

const (
	// TraceIDHeader carries the end-to-end trace identifier the console UI
	// echoes back on follow-up requests.
	TraceIDHeader = "X-Trace-ID"
	// RequestIDHeader identifies a single request/response exchange.
	RequestIDHeader = "X-Request-ID"

	// TraceIDKey is the gin context key handlers read the trace ID from.
	TraceIDKey = "trace_id"

	requestContextKey = "request_context"
)

// RequestContext is the per-request metadata the access logger and the
// session guard share. UserID is filled in by RequireSession once the
// cookie has been resolved.
type RequestContext struct {
	TraceID   string
	RequestID string
	UserID    string
	IP        string
	UserAgent string
}

// Correlate assigns trace and request identifiers to the request. Incoming
// values are honored so the browser console can stitch retries together;
// missing ones are generated. Both are echoed as response headers, and the
// request ID is planted in the request context for downstream log calls.
func Correlate() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Header(RequestIDHeader, requestID)

		c.Set(requestContextKey, &RequestContext{
			TraceID:   traceID,
			RequestID: requestID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTraceID returns the trace ID assigned by Correlate, or "" before it ran.
func GetTraceID(c *gin.Context) string {
	if value, exists := c.Get(TraceIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext returns the request metadata, never nil.
func GetRequestContext(c *gin.Context) *RequestContext {
	if value, exists := c.Get(requestContextKey); exists {
		if reqCtx, ok := value.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
