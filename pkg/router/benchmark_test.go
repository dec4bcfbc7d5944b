package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

// BenchmarkMatchLiteral benchmarks matching a static route
func BenchmarkMatchLiteral(b *testing.B) {
	r := newTestRouter(b)
	_ = r.Get("/api/v1/users/admin", textHandler("admin"), nil, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Match("GET", "/api/v1/users/admin")
	}
}

// BenchmarkMatchWithParams benchmarks matching a route with path parameters
func BenchmarkMatchWithParams(b *testing.B) {
	r := newTestRouter(b)
	_ = r.Get("/users/:id/posts/:postId", textHandler("post"), nil, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Match("GET", "/users/123/posts/456")
	}
}

// BenchmarkDispatchWithHooks benchmarks the full pipeline with inherited hooks
func BenchmarkDispatchWithHooks(b *testing.B) {
	r := newTestRouter(b)
	pass := func(req common.Request, resp common.Response) common.PreHookResult {
		return common.Continue(req.WithMetadata("seen", true), resp)
	}
	header := func(req common.Request, resp common.Response) (common.Request, common.Response) {
		return req, resp.WithHeader("X-Bench", "1")
	}
	_ = r.Use("/", []common.PreHook{common.NewPreHook("root", true, pass)}, []common.PostHook{common.NewPostHook("root", true, header)})
	_ = r.Use("/api", []common.PreHook{common.NewPreHook("api", true, pass)}, nil)
	_ = r.Get("/api/users/:id", textHandler("user"), []common.PreHook{common.NewPreHook("own", false, pass)}, nil)

	req := common.NewRequest("GET", "/api/users/42")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Dispatch(req)
	}
}

// BenchmarkConcurrentRequests benchmarks concurrent requests through ServeHTTP
func BenchmarkConcurrentRequests(b *testing.B) {
	r := newTestRouter(b)
	_ = r.Get("/hello", textHandler("Hello, Gazelle!"), nil, nil)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello", nil))
		}
	})
}
