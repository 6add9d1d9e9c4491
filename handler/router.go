package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/ecode"
	"github.com/ncobase/unicourse/net/resp"
	"github.com/ncobase/unicourse/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// TraceHeader carries the request trace ID.
const TraceHeader = "X-Trace-ID"

// Router builds the gin engine with every route registered.
func (h *Handler) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.traceMiddleware(), h.loggerMiddleware())
	h.Register(r)
	return r
}

// Register adds the routes to r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.HandleHealth)
	r.GET("/search_courses", h.HandleSearchCourses)

	api := r.Group("/api")
	api.GET("/courses", h.HandleCourses)
	api.GET("/courses/:id", h.HandleCourse)
	api.GET("/search", h.HandleSearchProxy)
	api.GET("/suggest", h.HandleSuggest)
	api.GET("/facets/:kind", h.HandleFacets)
	api.GET("/logo", h.HandleLogo)
	api.POST("/leads", h.HandleCreateLead)
}

// traceMiddleware opens the request span. X-Trace-ID keeps a caller
// supplied ID; otherwise the span's trace ID is used, so log lines and
// exported spans share one identifier.
func (h *Handler) traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracing.Start(ctx, c.Request.Method+" "+route,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		defer span.End()

		if id := c.GetHeader(TraceHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		} else if id := tracing.TraceID(ctx); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		ctx, traceID := ctxutil.EnsureTraceID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, traceID)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func (h *Handler) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		h.log.Entry(c.Request.Context()).WithFields(map[string]any{
			"method":   method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("HTTP request")
	}
}

// HandleHealth reports backend health and proxy usage; 503 when degraded.
func (h *Handler) HandleHealth(c *gin.Context) {
	report := map[string]any{"status": "healthy"}
	if h.d.Health != nil {
		report = h.d.Health.Health(c.Request.Context())
	}
	report["search_proxy"] = h.limiter.GetMetrics()

	if report["status"] != "healthy" {
		resp.Fail(c.Writer, &resp.Exception{
			Status:  http.StatusServiceUnavailable,
			Code:    ecode.Unavailable,
			Message: "degraded",
			Errors:  report,
		})
		return
	}
	resp.Success(c.Writer, report)
}
