package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"
	// TabIDKey is the context key for the calling browser tab
	TabIDKey = "tab_id"
)

// RequestContext holds request-scoped information
type RequestContext struct {
	TraceID   string
	TabID     string
	IP        string
	UserAgent string
}

// EnrichContext adds trace ID and request context to each request
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if trace ID already exists in header, otherwise generate one
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// Set trace ID in context and response header
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		// Store request metadata
		reqCtx := &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Set("request_context", reqCtx)

		c.Next()
	}
}

// TabID resolves the calling tab's identifier from the configured header. A
// request without one is treated as a freshly opened tab and a new identifier
// is minted and echoed back so the client can carry it on subsequent calls.
func TabID(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabID := c.GetHeader(header)
		if tabID == "" {
			tabID = uuid.NewString()
		}

		c.Set(TabIDKey, tabID)
		c.Header(header, tabID)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.TabID = tabID
		}

		c.Next()
	}
}

// GetTabID retrieves the tab ID from the context
func GetTabID(c *gin.Context) string {
	if tabID, exists := c.Get(TabIDKey); exists {
		if id, ok := tabID.(string); ok {
			return id
		}
	}
	return ""
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the full request context
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get("request_context"); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
