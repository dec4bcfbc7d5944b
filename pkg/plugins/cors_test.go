package plugins

import (
	"net/http"
	"testing"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/stretchr/testify/assert"
)

func corsRequest(method, origin string) common.Request {
	h := http.Header{}
	if origin != "" {
		h.Set("Origin", origin)
	}
	return common.NewRequest(method, "/data", common.WithRequestHeader(h))
}

func TestCORSPluginAllowedOrigin(t *testing.T) {
	p := NewCORSPlugin(CORSConfig{
		AllowOrigins:     []string{"https://app.example.com"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		AllowCredentials: true,
	})
	r := newRouter(t, newContext(t, p), nil, []common.PostHook{p.Hook()}, "/data", okHandler("data"))

	resp := r.Dispatch(corsRequest("GET", "https://app.example.com"))
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "https://app.example.com", resp.HeaderValue("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", resp.HeaderValue("Vary"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", resp.HeaderValue("Access-Control-Allow-Methods"))
	assert.Equal(t, "Authorization, Content-Type", resp.HeaderValue("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Trace-ID", resp.HeaderValue("Access-Control-Expose-Headers"))
	assert.Equal(t, "true", resp.HeaderValue("Access-Control-Allow-Credentials"))

	resp = r.Dispatch(corsRequest("GET", "https://evil.example.com"))
	assert.Empty(t, resp.HeaderValue("Access-Control-Allow-Origin"))
}

func TestCORSPluginWildcard(t *testing.T) {
	p := NewCORSPlugin(CORSConfig{AllowOrigins: []string{"*"}, AllowMethods: []string{"GET"}})
	r := newRouter(t, newContext(t, p), nil, []common.PostHook{p.Hook()}, "/data", okHandler("data"))

	resp := r.Dispatch(corsRequest("GET", "https://any.example.com"))
	assert.Equal(t, "*", resp.HeaderValue("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.HeaderValue("Vary"))
	assert.Equal(t, "GET", resp.HeaderValue("Access-Control-Allow-Methods"))

	// Wildcard with credentials echoes the origin
	p = NewCORSPlugin(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})
	r = newRouter(t, newContext(t, p), nil, []common.PostHook{p.Hook()}, "/data", okHandler("data"))
	resp = r.Dispatch(corsRequest("GET", "https://any.example.com"))
	assert.Equal(t, "https://any.example.com", resp.HeaderValue("Access-Control-Allow-Origin"))
}

func TestCORSPluginPreflight(t *testing.T) {
	p := NewCORSPlugin(CORSConfig{AllowOrigins: []string{"https://app.example.com"}, MaxAge: 10 * time.Minute})
	handlerCalled := false
	handler := func(req common.Request) (common.Response, error) {
		handlerCalled = true
		return common.TextResponse(http.StatusOK, "data"), nil
	}
	r := newRouter(t, newContext(t, p),
		[]common.PreHook{p.PreflightHook()},
		[]common.PostHook{p.Hook()},
		"/data", handler)

	resp := r.Dispatch(corsRequest("OPTIONS", "https://app.example.com"))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.False(t, handlerCalled)
	assert.Equal(t, "https://app.example.com", resp.HeaderValue("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", resp.HeaderValue("Access-Control-Max-Age"))

	resp = r.Dispatch(corsRequest("GET", "https://app.example.com"))
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.True(t, handlerCalled)
	assert.Empty(t, resp.HeaderValue("Access-Control-Max-Age"))
}
