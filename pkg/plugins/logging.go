package plugins

import (
	"net/http"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const metadataLogStart = "gazelle.logging.start"

// LoggingConfig configures the LoggingPlugin.
type LoggingConfig struct {
	// Logger overrides the plugin context's logger.
	Logger *zap.Logger

	// SlowThreshold is the duration above which a successful request is
	// logged at Warn level. Defaults to 1s.
	SlowThreshold time.Duration

	// Clock measures request durations. Defaults to the wall clock.
	Clock clock.Clock
}

// LoggingPlugin logs one line per request. Normal requests are logged at
// Debug level to avoid log spam; client errors and slow requests at Warn;
// server errors at Error.
type LoggingPlugin struct {
	logger        *zap.Logger
	slowThreshold time.Duration
	clock         clock.Clock
}

// NewLoggingPlugin creates a LoggingPlugin. A nil config uses the defaults.
func NewLoggingPlugin(config *LoggingConfig) *LoggingPlugin {
	p := &LoggingPlugin{slowThreshold: time.Second, clock: clock.New()}
	if config != nil {
		p.logger = config.Logger
		if config.SlowThreshold > 0 {
			p.slowThreshold = config.SlowThreshold
		}
		if config.Clock != nil {
			p.clock = config.Clock
		}
	}
	return p
}

// Name implements plugin.Plugin.
func (p *LoggingPlugin) Name() string { return "logging" }

// Initialize implements plugin.Plugin.
func (p *LoggingPlugin) Initialize(ctx *plugin.Context) error {
	if p.logger == nil {
		p.logger = ctx.Logger()
	}
	return nil
}

// Hooks returns the shared pre-hook that stamps the start time and the
// shared post-hook that logs the outcome.
func (p *LoggingPlugin) Hooks() (common.PreHook, common.PostHook) {
	pre := common.NewPreHook(p.Name(), true, func(req common.Request, resp common.Response) common.PreHookResult {
		return common.Continue(req.WithMetadata(metadataLogStart, p.clock.Now()), resp)
	})

	post := common.NewPostHook(p.Name(), true, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		var duration time.Duration
		if start, ok := req.Metadata(metadataLogStart); ok {
			if t, ok := start.(time.Time); ok {
				duration = p.clock.Since(t)
			}
		}
		p.log(req, resp.StatusCode(), duration)
		return req, resp
	})

	return pre, post
}

// log writes the request line at the level its outcome calls for
func (p *LoggingPlugin) log(req common.Request, status int, duration time.Duration) {
	fields := make([]zap.Field, 0, 6)
	if traceID := TraceID(req); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	fields = append(fields,
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.Int("status", status),
		zap.Duration("duration", duration),
	)

	switch {
	case status >= http.StatusInternalServerError:
		if ip := ClientIP(req); ip != "" {
			fields = append(fields, zap.String("client_ip", ip))
		}
		p.logger.Error("Server error", fields...)
	case status >= http.StatusBadRequest:
		p.logger.Warn("Client error", fields...)
	case duration > p.slowThreshold:
		p.logger.Warn("Slow request", fields...)
	default:
		p.logger.Debug("Request", fields...)
	}
}
