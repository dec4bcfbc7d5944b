package plugins

import (
	"net/http"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader is the response header carrying the request's trace ID.
const TraceIDHeader = "X-Trace-ID"

const tracerName = "github.com/Suhaibinator/gazelle"

// TraceConfig configures the TracePlugin.
type TraceConfig struct {
	// Tracer starts the request spans. Defaults to the global otel tracer.
	Tracer trace.Tracer

	// TrustIncomingID reuses a non-empty X-Trace-ID request header as the
	// trace ID when the span has no valid trace ID of its own.
	TrustIncomingID bool
}

// TracePlugin opens an OpenTelemetry span per request and assigns the request
// a trace ID: the span's trace ID when it is valid, otherwise a random UUID.
type TracePlugin struct {
	tracer          trace.Tracer
	trustIncomingID bool
}

// NewTracePlugin creates a TracePlugin. A nil config uses the global tracer.
func NewTracePlugin(config *TraceConfig) *TracePlugin {
	p := &TracePlugin{}
	if config != nil {
		p.tracer = config.Tracer
		p.trustIncomingID = config.TrustIncomingID
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *TracePlugin) Name() string { return "trace" }

// Initialize implements plugin.Plugin.
func (p *TracePlugin) Initialize(ctx *plugin.Context) error { return nil }

// Hooks returns the shared pre-hook that starts the span and the shared
// post-hook that ends it and sets the X-Trace-ID response header.
func (p *TracePlugin) Hooks() (common.PreHook, common.PostHook) {
	pre := common.NewPreHook(p.Name(), true, func(req common.Request, resp common.Response) common.PreHookResult {
		ctx, span := p.tracer.Start(req.Context(), spanName(req),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", req.Method()),
				attribute.String("http.route", req.Route()),
				attribute.String("url.path", req.Path()),
			),
		)

		traceID := ""
		if sc := span.SpanContext(); sc.TraceID().IsValid() {
			traceID = sc.TraceID().String()
		} else if incoming := req.HeaderValue(TraceIDHeader); p.trustIncomingID && incoming != "" {
			traceID = incoming
		} else {
			traceID = uuid.New().String()
		}

		return common.Continue(req.WithContext(ctx).WithMetadata(common.MetadataTraceID, traceID), resp)
	})

	post := common.NewPostHook(p.Name(), true, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		traceID := TraceID(req)
		if traceID == "" {
			// The pre-hook never ran for this request
			return req, resp
		}

		span := trace.SpanFromContext(req.Context())
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
		if resp.StatusCode() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode()))
		}
		span.End()

		return req, resp.WithHeader(TraceIDHeader, traceID)
	})

	return pre, post
}

// TraceID returns the trace ID assigned by the trace plugin, or an empty string.
func TraceID(req common.Request) string {
	if v, ok := req.Metadata(common.MetadataTraceID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func spanName(req common.Request) string {
	if route := req.Route(); route != "" {
		return req.Method() + " " + route
	}
	return req.Method()
}
