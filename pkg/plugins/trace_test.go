package plugins

import (
	"context"
	"net/http"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTracePluginAssignsUUID(t *testing.T) {
	p := NewTracePlugin(&TraceConfig{Tracer: noop.NewTracerProvider().Tracer("test")})
	pctx := newContext(t, p)

	var seen string
	handler := func(req common.Request) (common.Response, error) {
		seen = TraceID(req)
		return common.TextResponse(http.StatusOK, "ok"), nil
	}
	pre, post := p.Hooks()
	r := newRouter(t, pctx, []common.PreHook{pre}, []common.PostHook{post}, "/traced", handler)

	resp := r.Dispatch(common.NewRequest("GET", "/traced"))
	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, resp.HeaderValue(TraceIDHeader))

	// Each request gets its own ID
	other := r.Dispatch(common.NewRequest("GET", "/traced"))
	assert.NotEqual(t, resp.HeaderValue(TraceIDHeader), other.HeaderValue(TraceIDHeader))
}

func TestTracePluginUsesSpanTraceID(t *testing.T) {
	p := NewTracePlugin(&TraceConfig{Tracer: noop.NewTracerProvider().Tracer("test")})
	pctx := newContext(t, p)
	pre, post := p.Hooks()
	r := newRouter(t, pctx, []common.PreHook{pre}, []common.PostHook{post}, "/traced", okHandler("ok"))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	resp := r.Dispatch(common.NewRequest("GET", "/traced", common.WithRequestContext(parent)))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.HeaderValue(TraceIDHeader))
}

func TestTracePluginIncomingID(t *testing.T) {
	p := NewTracePlugin(&TraceConfig{Tracer: noop.NewTracerProvider().Tracer("test"), TrustIncomingID: true})
	pctx := newContext(t, p)
	pre, post := p.Hooks()
	r := newRouter(t, pctx, []common.PreHook{pre}, []common.PostHook{post}, "/traced", okHandler("ok"))

	req := common.NewRequest("GET", "/traced", common.WithRequestHeader(http.Header{TraceIDHeader: {"upstream-id"}}))
	resp := r.Dispatch(req)
	assert.Equal(t, "upstream-id", resp.HeaderValue(TraceIDHeader))
}

func TestTracePluginPostHookWithoutPreHook(t *testing.T) {
	p := NewTracePlugin(nil)
	_, post := p.Hooks()

	req := common.NewRequest("GET", "/")
	resp := common.TextResponse(http.StatusOK, "ok")
	_, out := post.Run(req, resp)
	assert.Empty(t, out.HeaderValue(TraceIDHeader))
}
