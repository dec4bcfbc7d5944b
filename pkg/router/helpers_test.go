package router

import (
	"net/http"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"go.uber.org/zap"
)

// newTestRouter creates a router with a no-op logger
func newTestRouter(t testing.TB) *Router {
	t.Helper()
	r, err := NewRouter(RouterConfig{Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("Failed to create router: %v", err)
	}
	return r
}

// textHandler returns a handler that responds 200 with body
func textHandler(body string) common.Handler {
	return func(req common.Request) (common.Response, error) {
		return common.TextResponse(http.StatusOK, body), nil
	}
}

// recorder collects the names of hooks in the order they ran
type recorder struct {
	calls []string
}

func (rec *recorder) pre(name string, share bool) common.PreHook {
	return common.NewPreHook(name, share, func(req common.Request, resp common.Response) common.PreHookResult {
		rec.calls = append(rec.calls, "pre:"+name)
		return common.Continue(req, resp)
	})
}

func (rec *recorder) post(name string, share bool) common.PostHook {
	return common.NewPostHook(name, share, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		rec.calls = append(rec.calls, "post:"+name)
		return req, resp
	})
}

func (rec *recorder) handler(body string) common.Handler {
	return func(req common.Request) (common.Response, error) {
		rec.calls = append(rec.calls, "handler")
		return common.TextResponse(http.StatusOK, body), nil
	}
}
