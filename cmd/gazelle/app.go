package main

import (
	"net/http"

	"github.com/Suhaibinator/gazelle/pkg/codec"
	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/Suhaibinator/gazelle/pkg/plugins"
	"github.com/Suhaibinator/gazelle/pkg/router"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// app is the assembled demo service.
type app struct {
	router  *router.Router
	metrics *plugins.MetricsPlugin
	jwt     *plugins.JWTPlugin
}

// newApp registers the plugins and builds the router with the demo routes.
func newApp(opts *options, logger *zap.Logger) (*app, error) {
	secret := opts.jwtSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("No --jwt-secret given; tokens will not survive a restart")
	}

	clientIP := plugins.NewClientIPPlugin(nil)
	tracing := plugins.NewTracePlugin(nil)
	logging := plugins.NewLoggingPlugin(nil)
	cors := plugins.NewCORSPlugin(plugins.CORSConfig{
		AllowOrigins:  opts.corsOrigins,
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{plugins.TraceIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	rateLimit := plugins.NewRateLimitPlugin(plugins.RateLimitConfig{
		BucketName: "global",
		Limit:      opts.rateLimit,
		Window:     opts.rateWindow,
		Strategy:   plugins.StrategyIP,
	})
	metrics := plugins.NewMetricsPlugin(&plugins.MetricsConfig{Namespace: "gazelle"})
	jwt := plugins.NewJWTPlugin(plugins.JWTConfig{Secret: []byte(secret), Issuer: "gazelle"})

	pctx := plugin.NewContext(logger)
	for _, p := range []plugin.Plugin{clientIP, tracing, logging, cors, rateLimit, metrics, jwt} {
		if err := pctx.Register(p); err != nil {
			return nil, err
		}
	}

	tracePre, tracePost := tracing.Hooks()
	logPre, logPost := logging.Hooks()
	ratePre, ratePost := rateLimit.Hooks()
	metricsPre, metricsPost := metrics.Hooks()

	r, err := router.NewRouter(router.RouterConfig{
		Logger:            logger,
		Plugins:           pctx,
		GlobalMaxBodySize: 1 << 20,
		EnableTraceID:     true,
		PreHooks: []common.PreHook{
			clientIP.Hook(),
			tracePre,
			logPre,
			metricsPre,
			cors.PreflightHook(),
			ratePre,
		},
		PostHooks: []common.PostHook{
			ratePost,
			cors.Hook(),
			metricsPost,
			logPost,
			tracePost,
		},
		Routes: []router.RouteConfigBase{
			{
				Path:    "/hello",
				Methods: withOptions(http.MethodGet),
				Handler: helloHandler,
			},
			{
				Path:     "/me",
				Methods:  withOptions(http.MethodGet),
				Handler:  meHandler,
				PreHooks: []common.PreHook{jwt.AuthHook(false)},
			},
		},
		SubRouters: []router.SubRouterConfig{
			{
				PathPrefix: "/api",
				PreHooks:   []common.PreHook{jwt.AuthHook(true)},
				Routes: []router.RouteConfigBase{
					{
						Path:    "/users/:id",
						Methods: withOptions(http.MethodGet),
						Handler: userHandler,
					},
					{
						Path:     "/users/admin",
						Methods:  withOptions(http.MethodGet),
						Handler:  adminHandler,
						PreHooks: []common.PreHook{requireRole("admin")},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	err = router.RegisterGenericRoute(r, router.RouteConfig[loginRequest, loginResponse]{
		Path:    "/login",
		Methods: withOptions(http.MethodPost),
		Codec:   codec.NewJSONCodec[loginRequest, loginResponse](),
		Handler: loginHandler(jwt),
	})
	if err != nil {
		return nil, err
	}

	return &app{router: r, metrics: metrics, jwt: jwt}, nil
}

// handler serves the router with the metrics endpoint beside it.
func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/", a.router)
	return mux
}

// withOptions adds OPTIONS so CORS preflight requests reach the route.
func withOptions(methods ...string) []string {
	return append(methods, http.MethodOptions)
}
