// Package router provides the Gazelle routing engine: a route tree keyed by
// path segments, inherited pre- and post-hooks, and the dispatch pipeline
// that runs them around each handler.
package router

import (
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"go.uber.org/zap"
)

// RouterConfig defines the global configuration for the router.
// It includes settings for logging, the plugin context, transport limits and routes.
type RouterConfig struct {
	Logger            *zap.Logger       // Logger for all router operations; defaults to the plugin context's logger
	Plugins           *plugin.Context   // Initialized plugin context; sealed by NewRouter
	GlobalTimeout     time.Duration     // Deadline applied to the request context by ServeHTTP
	GlobalMaxBodySize int64             // Maximum request body size in bytes read by ServeHTTP
	EnableTraceID     bool              // Include the trace ID in router logs when present
	PreHooks          []common.PreHook  // Hooks attached to the root node
	PostHooks         []common.PostHook // Hooks attached to the root node
	SubRouters        []SubRouterConfig // Sub-routers with their own path prefix and hooks
	Routes            []RouteConfigBase // Routes registered at the top level
}

// SubRouterConfig defines a group of routes sharing a path prefix.
// Its hooks are attached to the prefix node, so hooks marked
// ShareWithChildRoutes apply to every route of the group.
type SubRouterConfig struct {
	PathPrefix string            // Common path prefix for all routes in this sub-router
	PreHooks   []common.PreHook  // Hooks attached to the prefix node
	PostHooks  []common.PostHook // Hooks attached to the prefix node
	Routes     []RouteConfigBase // Routes in this sub-router, relative to PathPrefix
	SubRouters []SubRouterConfig // Nested sub-routers, relative to PathPrefix
}

// RouteConfigBase defines a route bound to a plain handler.
type RouteConfigBase struct {
	Path      string            // Route path (prefixed with the sub-router path prefix if applicable)
	Methods   []string          // HTTP methods this route handles
	Handler   common.Handler    // Handler for every method
	PreHooks  []common.PreHook  // Hooks attached to the route's node
	PostHooks []common.PostHook // Hooks attached to the route's node
}

// RouteConfig defines a route with generic request and response types.
// The Codec decodes the request body into T and encodes the handler's U.
type RouteConfig[T any, U any] struct {
	Path      string
	Methods   []string
	Codec     Codec[T, U]
	Handler   GenericHandler[T, U]
	PreHooks  []common.PreHook
	PostHooks []common.PostHook
}

// GenericHandler handles a decoded request value and returns the value to encode.
type GenericHandler[T any, U any] func(req common.Request, data T) (U, error)

// Codec marshals and unmarshals typed request and response data.
// The codec package provides JSON and Protocol Buffers implementations.
type Codec[T any, U any] interface {
	// Decode reads the request body into a value of type T.
	Decode(req common.Request) (T, error)

	// Encode writes resp into the body of base and sets its Content-Type.
	Encode(base common.Response, resp U) (common.Response, error)
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}
