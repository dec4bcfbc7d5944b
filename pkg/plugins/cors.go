package plugins

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
)

// CORSConfig configures the CORSPlugin.
type CORSConfig struct {
	// AllowOrigins lists the allowed origins. "*" allows any origin.
	AllowOrigins []string

	// AllowMethods defaults to GET, POST, PUT, PATCH, DELETE and OPTIONS.
	AllowMethods []string

	AllowHeaders  []string
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials. With
	// credentials the request's origin is echoed instead of "*".
	AllowCredentials bool

	// MaxAge is how long a preflight result may be cached. Zero omits the header.
	MaxAge time.Duration
}

// CORSPlugin adds Access-Control-* headers to responses and answers preflight requests.
type CORSPlugin struct {
	config   CORSConfig
	wildcard bool
	origins  map[string]bool
}

// NewCORSPlugin creates a CORSPlugin.
func NewCORSPlugin(config CORSConfig) *CORSPlugin {
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}
	p := &CORSPlugin{config: config, origins: make(map[string]bool, len(config.AllowOrigins))}
	for _, o := range config.AllowOrigins {
		if o == "*" {
			p.wildcard = true
			continue
		}
		p.origins[o] = true
	}
	return p
}

// Name implements plugin.Plugin.
func (p *CORSPlugin) Name() string { return "cors" }

// Initialize implements plugin.Plugin.
func (p *CORSPlugin) Initialize(ctx *plugin.Context) error { return nil }

// Hook returns a shared post-hook setting the CORS headers on every response,
// including short-circuited ones.
func (p *CORSPlugin) Hook() common.PostHook {
	return common.NewPostHook(p.Name(), true, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		origin := req.HeaderValue("Origin")
		allowOrigin, ok := p.allowedOrigin(origin)
		if !ok {
			return req, resp
		}

		resp = resp.WithHeader("Access-Control-Allow-Origin", allowOrigin)
		if allowOrigin != "*" {
			resp = resp.WithAddedHeader("Vary", "Origin")
		}
		resp = resp.WithHeader("Access-Control-Allow-Methods", strings.Join(p.config.AllowMethods, ", "))
		if len(p.config.AllowHeaders) > 0 {
			resp = resp.WithHeader("Access-Control-Allow-Headers", strings.Join(p.config.AllowHeaders, ", "))
		}
		if len(p.config.ExposeHeaders) > 0 {
			resp = resp.WithHeader("Access-Control-Expose-Headers", strings.Join(p.config.ExposeHeaders, ", "))
		}
		if p.config.AllowCredentials {
			resp = resp.WithHeader("Access-Control-Allow-Credentials", "true")
		}
		if p.config.MaxAge > 0 && req.Method() == http.MethodOptions {
			resp = resp.WithHeader("Access-Control-Max-Age", strconv.Itoa(int(p.config.MaxAge.Seconds())))
		}
		return req, resp
	})
}

// PreflightHook returns a shared pre-hook that answers OPTIONS requests with
// 204 No Content. The route must accept OPTIONS for the hook to be reached.
func (p *CORSPlugin) PreflightHook() common.PreHook {
	return common.NewPreHook(p.Name()+"_preflight", true, func(req common.Request, resp common.Response) common.PreHookResult {
		if req.Method() != http.MethodOptions {
			return common.Continue(req, resp)
		}
		return common.ShortCircuit(common.NewResponse(http.StatusNoContent, nil))
	})
}

// allowedOrigin returns the Access-Control-Allow-Origin value for origin.
func (p *CORSPlugin) allowedOrigin(origin string) (string, bool) {
	if origin == "" {
		if p.wildcard && !p.config.AllowCredentials {
			return "*", true
		}
		return "", false
	}
	if p.origins[origin] {
		return origin, true
	}
	if p.wildcard {
		if p.config.AllowCredentials {
			return origin, true
		}
		return "*", true
	}
	return "", false
}
