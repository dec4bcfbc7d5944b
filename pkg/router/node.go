package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

// Node is one segment of the route tree.
// A node owns its children; a node without a handler for a method only
// structures the tree and can carry hooks for the routes below it.
type Node struct {
	segment  string
	param    string
	pattern  string
	parent   *Node
	handlers map[string]common.Handler
	hooks    common.HookChain
	literals map[string]*Node
	dynamic  *Node
}

func newNode(parent *Node, segment string) *Node {
	n := &Node{
		segment:  segment,
		parent:   parent,
		handlers: make(map[string]common.Handler),
		literals: make(map[string]*Node),
	}
	if isDynamic(segment) {
		n.param = segment[1:]
	}
	switch {
	case parent == nil:
		n.pattern = "/"
	case parent.parent == nil:
		n.pattern = "/" + segment
	default:
		n.pattern = parent.pattern + "/" + segment
	}
	return n
}

// Segment returns the segment pattern, e.g. "users" or ":id". The root's is empty.
func (n *Node) Segment() string { return n.segment }

// Pattern returns the full path pattern of the node, e.g. "/users/:id".
func (n *Node) Pattern() string { return n.pattern }

// IsDynamic reports whether the node binds a path parameter.
func (n *Node) IsDynamic() bool { return n.param != "" }

// ParamName returns the bound parameter name of a dynamic node.
func (n *Node) ParamName() string { return n.param }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// HasHandler reports whether a handler is registered for method.
func (n *Node) HasHandler(method string) bool {
	_, ok := n.handlers[method]
	return ok
}

// Methods returns the methods with a handler, sorted.
func (n *Node) Methods() []string {
	methods := make([]string, 0, len(n.handlers))
	for m := range n.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Hooks returns the node's own hooks.
func (n *Node) Hooks() common.HookChain {
	return common.HookChain{}.Append(n.hooks)
}

// Children returns the child nodes, literals sorted by segment and then the dynamic child.
func (n *Node) Children() []*Node {
	keys := make([]string, 0, len(n.literals))
	for k := range n.literals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	children := make([]*Node, 0, len(keys)+1)
	for _, k := range keys {
		children = append(children, n.literals[k])
	}
	if n.dynamic != nil {
		children = append(children, n.dynamic)
	}
	return children
}

// child returns the existing child for a registration segment.
func (n *Node) child(segment string) *Node {
	if isDynamic(segment) {
		if n.dynamic != nil && n.dynamic.segment == segment {
			return n.dynamic
		}
		return nil
	}
	return n.literals[segment]
}

// addChild creates the child for segment. The caller has checked for conflicts.
func (n *Node) addChild(segment string) *Node {
	c := newNode(n, segment)
	if c.IsDynamic() {
		n.dynamic = c
	} else {
		n.literals[segment] = c
	}
	return c
}

// attachHooks appends hooks, skipping any whose non-empty name is already attached.
func (n *Node) attachHooks(pre []common.PreHook, post []common.PostHook) {
	for _, h := range pre {
		if h.Name != "" && containsName(n.hooks.PreNames(), h.Name) {
			continue
		}
		n.hooks.Pre = append(n.hooks.Pre, h)
	}
	for _, h := range post {
		if h.Name != "" && containsName(n.hooks.PostNames(), h.Name) {
			continue
		}
		n.hooks.Post = append(n.hooks.Post, h)
	}
}

// path returns the nodes from the root down to n.
func (n *Node) path() []*Node {
	var nodes []*Node
	for cur := n; cur != nil; cur = cur.parent {
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func isDynamic(segment string) bool {
	return strings.HasPrefix(segment, ":")
}

// splitPath splits a request path into segments, dropping empty ones.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// parsePattern splits and validates a registration pattern.
func parsePattern(pattern string) ([]string, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w %q: path must begin with '/'", ErrInvalidPath, pattern)
	}
	segments := splitPath(pattern)
	seen := make(map[string]int)
	for i, s := range segments {
		if !isDynamic(s) {
			continue
		}
		name := s[1:]
		if name == "" || strings.Contains(name, ":") {
			return nil, fmt.Errorf("%w %q: invalid parameter segment %q", ErrInvalidPath, pattern, s)
		}
		if first, exists := seen[name]; exists {
			return nil, fmt.Errorf("%w %q: duplicate parameter %q at segments %d and %d", ErrInvalidPath, pattern, name, first, i)
		}
		seen[name] = i
	}
	return segments, nil
}
