package tracing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request. Incoming X-Trace-ID and
// X-Span-ID headers continue an existing trace; the response carries the
// ids of the request span.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(TraceHeader); traceID != "" {
			ctx = context.WithValue(ctx, traceIDKey, TraceID(traceID))
		}
		if parentID := c.GetHeader(SpanHeader); parentID != "" {
			ctx = context.WithValue(ctx, spanIDKey, SpanID(parentID))
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+route)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, string(span.TraceID))
		c.Header(SpanHeader, string(span.SpanID))

		c.Next()

		span.StatusCode = c.Writer.Status()
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		} else if span.StatusCode >= http.StatusInternalServerError {
			span.SetError(errStatus(span.StatusCode))
		}
		tracer.Submit(span)
	}
}

type errStatus int

func (e errStatus) Error() string {
	return http.StatusText(int(e))
}
