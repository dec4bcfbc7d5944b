package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Router owns the route tree and dispatches requests through it.
// Routes are registered at startup; once serving starts the tree is only read,
// so matching needs no locks.
type Router struct {
	config     RouterConfig
	root       *Node
	logger     *zap.Logger
	plugins    *plugin.Context
	wg         sync.WaitGroup
	shutdown   bool
	shutdownMu sync.RWMutex
}

// NewRouter creates a Router from config. It seals the plugin context,
// attaches the root hooks and registers every configured route and
// sub-router. All registration errors are returned together.
func NewRouter(config RouterConfig) (*Router, error) {
	pctx := config.Plugins
	if pctx == nil {
		pctx = plugin.NewContext(config.Logger)
	}

	// Set up the logger
	logger := config.Logger
	if logger == nil {
		logger = pctx.Logger()
	}

	r := &Router{
		config:  config,
		root:    newNode(nil, ""),
		logger:  logger,
		plugins: pctx,
	}

	// Plugins are initialized before routes reference their hooks
	pctx.Seal()

	var err error
	err = multierr.Append(err, r.Use("/", config.PreHooks, config.PostHooks))
	for _, route := range config.Routes {
		err = multierr.Append(err, r.RegisterRoute(route))
	}
	for _, sr := range config.SubRouters {
		err = multierr.Append(err, r.registerSubRouter("", sr))
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Plugins returns the plugin context the router was built with.
func (r *Router) Plugins() *plugin.Context {
	return r.plugins
}

// Logger returns the router's logger.
func (r *Router) Logger() *zap.Logger {
	return r.logger
}

// registerSubRouter attaches the sub-router's hooks to its prefix node and
// registers its routes and nested sub-routers below it.
func (r *Router) registerSubRouter(parentPrefix string, sr SubRouterConfig) error {
	prefix := joinPath(parentPrefix, sr.PathPrefix)

	err := r.Use(prefix, sr.PreHooks, sr.PostHooks)
	for _, route := range sr.Routes {
		route.Path = joinPath(prefix, route.Path)
		err = multierr.Append(err, r.RegisterRoute(route))
	}
	for _, nested := range sr.SubRouters {
		err = multierr.Append(err, r.registerSubRouter(prefix, nested))
	}
	return err
}

// RegisterRoute registers route.Handler for every method in route.Methods.
// The route's hooks are attached once to its node.
func (r *Router) RegisterRoute(route RouteConfigBase) error {
	if len(route.Methods) == 0 {
		return fmt.Errorf("%w %q: no methods", ErrInvalidPath, route.Path)
	}
	pre, post := route.PreHooks, route.PostHooks
	for _, method := range route.Methods {
		if err := r.Register(method, route.Path, route.Handler, pre, post); err != nil {
			return err
		}
		pre, post = nil, nil
	}
	return nil
}

// Register inserts a route into the tree. Missing nodes are created, and the
// hooks are attached to the route's node in the given order.
// It fails without modifying the tree if the path is invalid or ambiguous, or
// if method is already registered on the path.
func (r *Router) Register(method, path string, handler common.Handler, preHooks []common.PreHook, postHooks []common.PostHook) error {
	if handler == nil {
		return fmt.Errorf("register %s %s: %w", method, path, ErrNilHandler)
	}
	method = strings.ToUpper(method)

	segments, err := parsePattern(path)
	if err != nil {
		return err
	}
	if err := r.checkConflicts(segments); err != nil {
		return fmt.Errorf("register %s %s: %w", method, path, err)
	}
	if existing := r.lookup(segments); existing != nil && existing.HasHandler(method) {
		return fmt.Errorf("register %s %s: %w", method, path, ErrDuplicateRoute)
	}

	n := r.insert(segments)
	n.handlers[method] = handler
	n.attachHooks(preHooks, postHooks)

	r.logger.Debug("Route registered",
		zap.String("method", method),
		zap.String("pattern", n.pattern),
		zap.Int("pre_hooks", len(preHooks)),
		zap.Int("post_hooks", len(postHooks)),
	)
	return nil
}

// Use attaches hooks to the node at path without registering a handler.
// Shared hooks then apply to every route below path.
func (r *Router) Use(path string, preHooks []common.PreHook, postHooks []common.PostHook) error {
	if len(preHooks) == 0 && len(postHooks) == 0 {
		return nil
	}
	segments, err := parsePattern(path)
	if err != nil {
		return err
	}
	if err := r.checkConflicts(segments); err != nil {
		return fmt.Errorf("use %s: %w", path, err)
	}
	r.insert(segments).attachHooks(preHooks, postHooks)
	return nil
}

// checkConflicts reports whether inserting segments would give a node two
// dynamic children with different names.
func (r *Router) checkConflicts(segments []string) error {
	n := r.root
	for _, s := range segments {
		if isDynamic(s) && n.dynamic != nil && n.dynamic.segment != s {
			return fmt.Errorf("%w: %q conflicts with existing %q", ErrAmbiguousRoute, joinPath(n.pattern, s), n.dynamic.pattern)
		}
		next := n.child(s)
		if next == nil {
			return nil
		}
		n = next
	}
	return nil
}

// lookup follows registration segments without creating nodes.
func (r *Router) lookup(segments []string) *Node {
	n := r.root
	for _, s := range segments {
		if n = n.child(s); n == nil {
			return nil
		}
	}
	return n
}

// insert follows registration segments, creating missing nodes.
func (r *Router) insert(segments []string) *Node {
	n := r.root
	for _, s := range segments {
		next := n.child(s)
		if next == nil {
			next = n.addChild(s)
		}
		n = next
	}
	return n
}

// Match resolves method and path to a node and its bound parameters.
// At each depth a literal child is preferred over the dynamic child; there is
// no backtracking. It returns ErrRouteNotFound if a segment has no child or
// the final node has no handler for method.
func (r *Router) Match(method, path string) (*Node, common.Params, error) {
	method = strings.ToUpper(method)
	n := r.root
	var params common.Params
	for _, s := range splitPath(path) {
		if next, ok := n.literals[s]; ok {
			n = next
			continue
		}
		if n.dynamic == nil {
			return nil, nil, fmt.Errorf("%s %s: %w", method, path, ErrRouteNotFound)
		}
		n = n.dynamic
		if params == nil {
			params = make(common.Params)
		}
		params[n.param] = s
	}
	if !n.HasHandler(method) {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, ErrRouteNotFound)
	}
	return n, params, nil
}

// EffectiveHooks returns the hook chain that applies to node: the shared hooks
// of every ancestor from the root down, followed by all of the node's own hooks.
// Pre- and post-hooks are both ordered root to leaf.
func (r *Router) EffectiveHooks(node *Node) ([]common.PreHook, []common.PostHook) {
	var chain common.HookChain
	for _, layer := range hookLayers(node) {
		chain = chain.Append(layer)
	}
	return chain.Pre, chain.Post
}

// hookLayers returns one chain per node from the root to node.
func hookLayers(node *Node) []common.HookChain {
	nodes := node.path()
	layers := make([]common.HookChain, len(nodes))
	for i, n := range nodes {
		if n == node {
			layers[i] = n.hooks
		} else {
			layers[i] = n.hooks.Shared()
		}
	}
	return layers
}

// Root returns the root node of the route tree.
func (r *Router) Root() *Node {
	return r.root
}

// Routes returns every registered route sorted by pattern and method.
func (r *Router) Routes() []RouteInfo {
	var routes []RouteInfo
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, m := range n.Methods() {
			routes = append(routes, RouteInfo{Method: m, Pattern: n.pattern})
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(r.root)
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// Get registers a GET route.
func (r *Router) Get(path string, handler common.Handler, preHooks []common.PreHook, postHooks []common.PostHook) error {
	return r.Register(http.MethodGet, path, handler, preHooks, postHooks)
}

// Post registers a POST route.
func (r *Router) Post(path string, handler common.Handler, preHooks []common.PreHook, postHooks []common.PostHook) error {
	return r.Register(http.MethodPost, path, handler, preHooks, postHooks)
}

// Put registers a PUT route.
func (r *Router) Put(path string, handler common.Handler, preHooks []common.PreHook, postHooks []common.PostHook) error {
	return r.Register(http.MethodPut, path, handler, preHooks, postHooks)
}

// Delete registers a DELETE route.
func (r *Router) Delete(path string, handler common.Handler, preHooks []common.PreHook, postHooks []common.PostHook) error {
	return r.Register(http.MethodDelete, path, handler, preHooks, postHooks)
}

// joinPath joins a prefix and a path with exactly one slash between them.
func joinPath(prefix, path string) string {
	prefix = strings.TrimRight(prefix, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + path
}
