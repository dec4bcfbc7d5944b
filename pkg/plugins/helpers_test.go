package plugins

import (
	"net/http"
	"testing"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/Suhaibinator/gazelle/pkg/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newContext registers plugins on a context with a no-op logger
func newContext(t *testing.T, plugins ...plugin.Plugin) *plugin.Context {
	t.Helper()
	pctx := plugin.NewContext(zap.NewNop())
	for _, p := range plugins {
		require.NoError(t, pctx.Register(p))
	}
	return pctx
}

// newRouter builds a router with root hooks and a single GET route
func newRouter(t *testing.T, pctx *plugin.Context, pre []common.PreHook, post []common.PostHook, path string, handler common.Handler) *router.Router {
	t.Helper()
	r, err := router.NewRouter(router.RouterConfig{
		Logger:    zap.NewNop(),
		Plugins:   pctx,
		PreHooks:  pre,
		PostHooks: post,
		Routes: []router.RouteConfigBase{
			{Path: path, Methods: []string{http.MethodGet, http.MethodOptions}, Handler: handler},
		},
	})
	require.NoError(t, err)
	return r
}

func okHandler(body string) common.Handler {
	return func(req common.Request) (common.Response, error) {
		return common.TextResponse(http.StatusOK, body), nil
	}
}
