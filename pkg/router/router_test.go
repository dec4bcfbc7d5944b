package router

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

// TestMatchRoundTrip tests that every registered path matches its own node and bindings
func TestMatchRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		pattern string
		path    string
		params  common.Params
	}{
		{"/", "/", nil},
		{"/hello", "/hello", nil},
		{"/users/:id", "/users/42", common.Params{"id": "42"}},
		{"/users/:id/posts/:postID", "/users/7/posts/99", common.Params{"id": "7", "postID": "99"}},
		{"/static/files", "/static/files", nil},
	}

	for _, c := range cases {
		if err := r.Register("GET", c.pattern, textHandler(c.pattern), nil, nil); err != nil {
			t.Fatalf("Failed to register %s: %v", c.pattern, err)
		}
	}

	for _, c := range cases {
		node, params, err := r.Match("GET", c.path)
		if err != nil {
			t.Errorf("Expected %s to match, got error: %v", c.path, err)
			continue
		}
		if node.Pattern() != c.pattern {
			t.Errorf("Expected %s to match pattern %q, got %q", c.path, c.pattern, node.Pattern())
		}
		if len(c.params) == 0 && len(params) != 0 {
			t.Errorf("Expected no params for %s, got %v", c.path, params)
		}
		if len(c.params) > 0 && !reflect.DeepEqual(params, c.params) {
			t.Errorf("Expected params %v for %s, got %v", c.params, c.path, params)
		}
	}
}

// TestMatchLiteralWinsOverDynamic tests that a literal sibling always beats a dynamic one
func TestMatchLiteralWinsOverDynamic(t *testing.T) {
	r := newTestRouter(t)
	if err := r.Register("GET", "/users/:id", textHandler("dynamic"), nil, nil); err != nil {
		t.Fatalf("Failed to register dynamic route: %v", err)
	}
	if err := r.Register("GET", "/users/admin", textHandler("literal"), nil, nil); err != nil {
		t.Fatalf("Failed to register literal route: %v", err)
	}

	node, params, err := r.Match("GET", "/users/admin")
	if err != nil {
		t.Fatalf("Expected match, got error: %v", err)
	}
	if node.Pattern() != "/users/admin" {
		t.Errorf("Expected literal node, got %q", node.Pattern())
	}
	if len(params) != 0 {
		t.Errorf("Expected no params for literal match, got %v", params)
	}

	node, params, err = r.Match("GET", "/users/bob")
	if err != nil {
		t.Fatalf("Expected match, got error: %v", err)
	}
	if node.Pattern() != "/users/:id" || params.Get("id") != "bob" {
		t.Errorf("Expected dynamic match with id=bob, got %q %v", node.Pattern(), params)
	}

	resp := r.Dispatch(common.NewRequest("GET", "/users/admin"))
	if resp.BodyString() != "literal" {
		t.Errorf("Expected body %q, got %q", "literal", resp.BodyString())
	}
}

// TestMatchNoBacktracking tests that a literal choice is final even if a deeper segment fails
func TestMatchNoBacktracking(t *testing.T) {
	r := newTestRouter(t)
	_ = r.Register("GET", "/users/admin", textHandler("admin"), nil, nil)
	_ = r.Register("GET", "/users/:id/posts", textHandler("posts"), nil, nil)

	if _, _, err := r.Match("GET", "/users/admin/posts"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("Expected ErrRouteNotFound, got %v", err)
	}
	if _, _, err := r.Match("GET", "/users/7/posts"); err != nil {
		t.Errorf("Expected /users/7/posts to match, got %v", err)
	}
}

// TestMatchNotFound tests the not-found conditions
func TestMatchNotFound(t *testing.T) {
	r := newTestRouter(t)
	_ = r.Register("GET", "/a/b", textHandler("ab"), nil, nil)

	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/missing"},
		{"GET", "/a"},     // structuring node without handler
		{"POST", "/a/b"},  // no handler for method
		{"GET", "/a/b/c"}, // deeper than any route
		{"GET", "/"},      // root has no handler
	}
	for _, c := range cases {
		if _, _, err := r.Match(c.method, c.path); !errors.Is(err, ErrRouteNotFound) {
			t.Errorf("Expected ErrRouteNotFound for %s %s, got %v", c.method, c.path, err)
		}
	}
}

// TestMatchNormalizesSlashesAndMethod tests trailing and repeated slashes and method case
func TestMatchNormalizesSlashesAndMethod(t *testing.T) {
	r := newTestRouter(t)
	_ = r.Register("get", "/a/b/", textHandler("ab"), nil, nil)

	for _, path := range []string{"/a/b", "/a/b/", "//a//b"} {
		if _, _, err := r.Match("GET", path); err != nil {
			t.Errorf("Expected %q to match, got %v", path, err)
		}
	}
	if _, _, err := r.Match("get", "/a/b"); err != nil {
		t.Errorf("Expected lowercase method to match, got %v", err)
	}
}

// TestRegisterAmbiguousDynamicSiblings tests that two differently named dynamic siblings are rejected
func TestRegisterAmbiguousDynamicSiblings(t *testing.T) {
	r := newTestRouter(t)
	if err := r.Register("GET", "/a/:x", textHandler("x"), nil, nil); err != nil {
		t.Fatalf("Failed to register /a/:x: %v", err)
	}

	err := r.Register("GET", "/a/:y", textHandler("y"), nil, nil)
	if !errors.Is(err, ErrAmbiguousRoute) {
		t.Fatalf("Expected ErrAmbiguousRoute, got %v", err)
	}

	// A deeper conflict leaves the tree untouched
	err = r.Register("GET", "/a/:y/deeper", textHandler("deeper"), nil, nil)
	if !errors.Is(err, ErrAmbiguousRoute) {
		t.Fatalf("Expected ErrAmbiguousRoute, got %v", err)
	}
	if len(r.Routes()) != 1 {
		t.Errorf("Expected 1 route after rejected registrations, got %v", r.Routes())
	}

	// The same parameter name extends the existing node
	if err := r.Register("POST", "/a/:x", textHandler("x"), nil, nil); err != nil {
		t.Errorf("Expected same-named dynamic segment to be accepted, got %v", err)
	}
	if err := r.Register("GET", "/a/:x/more", textHandler("more"), nil, nil); err != nil {
		t.Errorf("Expected extension below dynamic node to be accepted, got %v", err)
	}
}

// TestNewRouterFailsOnAmbiguousConfig tests that startup fails on ambiguous configured routes
func TestNewRouterFailsOnAmbiguousConfig(t *testing.T) {
	_, err := NewRouter(RouterConfig{
		Routes: []RouteConfigBase{
			{Path: "/a/:x", Methods: []string{"GET"}, Handler: textHandler("x")},
			{Path: "/a/:y", Methods: []string{"GET"}, Handler: textHandler("y")},
		},
	})
	if !errors.Is(err, ErrAmbiguousRoute) {
		t.Errorf("Expected ErrAmbiguousRoute from NewRouter, got %v", err)
	}
}

// TestRegisterValidation tests invalid registrations
func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	if err := r.Register("GET", "no-slash", textHandler(""), nil, nil); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for missing slash, got %v", err)
	}
	if err := r.Register("GET", "/a/:", textHandler(""), nil, nil); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for empty parameter name, got %v", err)
	}
	if err := r.Register("GET", "/a/:id/b/:id", textHandler(""), nil, nil); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for duplicate parameter, got %v", err)
	}
	if err := r.Register("GET", "/a", nil, nil, nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("Expected ErrNilHandler, got %v", err)
	}

	if err := r.Register("GET", "/dup", textHandler("1"), nil, nil); err != nil {
		t.Fatalf("Failed to register /dup: %v", err)
	}
	if err := r.Register("GET", "/dup/", textHandler("2"), nil, nil); !errors.Is(err, ErrDuplicateRoute) {
		t.Errorf("Expected ErrDuplicateRoute, got %v", err)
	}
	if err := r.RegisterRoute(RouteConfigBase{Path: "/nomethods", Handler: textHandler("")}); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath for route without methods, got %v", err)
	}
}

// TestRoutes tests the sorted route listing
func TestRoutes(t *testing.T) {
	r := newTestRouter(t)
	_ = r.RegisterRoute(RouteConfigBase{Path: "/users/:id", Methods: []string{"PUT", "GET"}, Handler: textHandler("")})
	_ = r.Get("/users", textHandler(""), nil, nil)
	_ = r.Post("/users", textHandler(""), nil, nil)
	_ = r.Delete("/users/:id", textHandler(""), nil, nil)
	_ = r.Put("/", textHandler(""), nil, nil)

	expected := []RouteInfo{
		{Method: "PUT", Pattern: "/"},
		{Method: "GET", Pattern: "/users"},
		{Method: "POST", Pattern: "/users"},
		{Method: "DELETE", Pattern: "/users/:id"},
		{Method: "GET", Pattern: "/users/:id"},
		{Method: "PUT", Pattern: "/users/:id"},
	}
	if got := r.Routes(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected routes %v, got %v", expected, got)
	}
}

// TestNodeAccessors tests the exported node view
func TestNodeAccessors(t *testing.T) {
	r := newTestRouter(t)
	_ = r.Register("GET", "/users/:id", textHandler(""), nil, nil)
	_ = r.Register("GET", "/users/admin", textHandler(""), nil, nil)

	node, _, err := r.Match("GET", "/users/5")
	if err != nil {
		t.Fatalf("Expected match, got %v", err)
	}
	if !node.IsDynamic() || node.ParamName() != "id" || node.Segment() != ":id" {
		t.Errorf("Unexpected dynamic node view: %q %q", node.Segment(), node.ParamName())
	}
	if node.Parent().Pattern() != "/users" {
		t.Errorf("Expected parent /users, got %q", node.Parent().Pattern())
	}
	if r.Root().Parent() != nil {
		t.Error("Expected root to have no parent")
	}

	children := node.Parent().Children()
	if len(children) != 2 || children[0].Segment() != "admin" || children[1].Segment() != ":id" {
		t.Errorf("Expected children [admin :id], got %d children", len(children))
	}
	if !reflect.DeepEqual(node.Methods(), []string{"GET"}) {
		t.Errorf("Expected methods [GET], got %v", node.Methods())
	}
}
