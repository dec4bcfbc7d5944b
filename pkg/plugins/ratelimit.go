package plugins

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/benbjohnson/clock"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const metadataRateLimit = "gazelle.ratelimit"

// RateLimitStrategy selects how clients are identified.
type RateLimitStrategy string

const (
	// StrategyIP keys on the client IP
	StrategyIP RateLimitStrategy = "ip"

	// StrategyUser keys on the authenticated user ID, falling back to the client IP
	StrategyUser RateLimitStrategy = "user"

	// StrategyCustom keys on the result of KeyExtractor
	StrategyCustom RateLimitStrategy = "custom"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// BucketName prefixes every key; plugins sharing a bucket name and a
	// limiter share counts
	BucketName string

	// Limit is the maximum number of requests allowed in Window
	Limit int

	// Window is the length of one counting window (e.g., 1 minute)
	Window time.Duration

	// Strategy for identifying clients. Defaults to StrategyIP.
	Strategy RateLimitStrategy

	// KeyExtractor is used when Strategy is StrategyCustom. An error
	// short-circuits the request with 500.
	KeyExtractor func(req common.Request) (string, error)

	// Pace, when positive, additionally spaces each client's requests to at
	// most Pace per second, blocking the request until its turn.
	Pace int

	// Clock drives the windows and pacing. Defaults to the wall clock.
	Clock clock.Clock
}

// rateLimitResult is what the pre-hook records for the post-hook
type rateLimitResult struct {
	limit     int
	remaining int
	reset     time.Time
}

// RateLimitPlugin enforces a fixed-window request limit per client.
type RateLimitPlugin struct {
	config  RateLimitConfig
	limiter *WindowLimiter
	ip      *ClientIPPlugin
	logger  *zap.Logger

	pacersMu sync.Mutex
	pacers   map[string]ratelimit.Limiter
}

// NewRateLimitPlugin creates a RateLimitPlugin with its own WindowLimiter.
func NewRateLimitPlugin(config RateLimitConfig) *RateLimitPlugin {
	if config.Clock == nil {
		config.Clock = clock.New()
	}
	if config.Strategy == "" {
		config.Strategy = StrategyIP
	}
	return &RateLimitPlugin{
		config:  config,
		limiter: NewWindowLimiter(config.Clock),
		pacers:  make(map[string]ratelimit.Limiter),
	}
}

// Name implements plugin.Plugin.
func (p *RateLimitPlugin) Name() string { return "ratelimit" }

// Initialize implements plugin.Plugin. When a client_ip plugin is registered
// first, its extraction rules are used for requests it hasn't annotated.
func (p *RateLimitPlugin) Initialize(ctx *plugin.Context) error {
	p.logger = ctx.Logger()
	if ip, err := plugin.Lookup[*ClientIPPlugin](ctx); err == nil {
		p.ip = ip
	}
	return nil
}

// Hooks returns the shared pre-hook that counts the request and rejects it
// with 429 once the limit is exceeded, and the shared post-hook that copies
// the X-RateLimit-* headers to the final response.
func (p *RateLimitPlugin) Hooks() (common.PreHook, common.PostHook) {
	pre := common.NewPreHook(p.Name(), true, func(req common.Request, resp common.Response) common.PreHookResult {
		key, err := p.key(req)
		if err != nil {
			p.logger.Error("Failed to extract rate limit key",
				zap.Error(err),
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
			)
			return common.ShortCircuit(common.TextResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
		}

		// Combine bucket name and key to create a unique identifier
		bucketKey := p.config.BucketName + ":" + key

		if p.config.Pace > 0 {
			p.pacer(bucketKey).Take()
		}

		allowed, remaining, reset := p.limiter.Allow(bucketKey, p.config.Limit, p.config.Window)
		result := rateLimitResult{
			limit:     p.config.Limit,
			remaining: remaining,
			reset:     p.config.Clock.Now().Add(reset),
		}

		if !allowed {
			p.logger.Warn("Rate limit exceeded",
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
				zap.String("key", key),
				zap.Int("limit", p.config.Limit),
			)
			retryAfter := int64((reset + time.Second - 1) / time.Second)
			tooMany := common.TextResponse(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests)).
				WithHeader("Retry-After", strconv.FormatInt(retryAfter, 10))
			return common.ShortCircuit(result.apply(tooMany))
		}

		return common.Continue(req.WithMetadata(metadataRateLimit, result), resp)
	})

	post := common.NewPostHook(p.Name(), true, func(req common.Request, resp common.Response) (common.Request, common.Response) {
		v, ok := req.Metadata(metadataRateLimit)
		if !ok {
			return req, resp
		}
		result, ok := v.(rateLimitResult)
		if !ok {
			return req, resp
		}
		return req, result.apply(resp)
	})

	return pre, post
}

// key resolves the client key for req according to the strategy
func (p *RateLimitPlugin) key(req common.Request) (string, error) {
	switch p.config.Strategy {
	case StrategyUser:
		if v, ok := req.Metadata(common.MetadataUserID); ok {
			if id, ok := v.(string); ok && id != "" {
				return id, nil
			}
		}
	case StrategyCustom:
		if p.config.KeyExtractor != nil {
			return p.config.KeyExtractor(req)
		}
	}
	return p.clientIP(req), nil
}

// clientIP prefers the IP recorded by the client_ip hook
func (p *RateLimitPlugin) clientIP(req common.Request) string {
	if ip := ClientIP(req); ip != "" {
		return ip
	}
	if p.ip != nil {
		return p.ip.Extract(req)
	}
	return cleanIP(req.RemoteAddr())
}

// pacer gets or creates the leaky-bucket limiter for key
func (p *RateLimitPlugin) pacer(key string) ratelimit.Limiter {
	p.pacersMu.Lock()
	defer p.pacersMu.Unlock()

	if l, ok := p.pacers[key]; ok {
		return l
	}
	l := ratelimit.New(p.config.Pace, ratelimit.WithoutSlack, ratelimit.WithClock(p.config.Clock))
	p.pacers[key] = l
	return l
}

func (r rateLimitResult) apply(resp common.Response) common.Response {
	return resp.
		WithHeader("X-RateLimit-Limit", strconv.Itoa(r.limit)).
		WithHeader("X-RateLimit-Remaining", strconv.Itoa(r.remaining)).
		WithHeader("X-RateLimit-Reset", strconv.FormatInt(r.reset.Unix(), 10))
}

// WindowLimiter counts requests per key in fixed windows.
type WindowLimiter struct {
	clock   clock.Clock
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// NewWindowLimiter creates a WindowLimiter driven by clk.
func NewWindowLimiter(clk clock.Clock) *WindowLimiter {
	if clk == nil {
		clk = clock.New()
	}
	return &WindowLimiter{clock: clk, windows: make(map[string]*window)}
}

// Allow counts a request for key. It reports whether the request is within
// limit, how many requests remain in the current window and how long until
// the window resets. A non-positive limit is treated as 1 and a non-positive
// window as one second.
func (l *WindowLimiter) Allow(key string, limit int, length time.Duration) (bool, int, time.Duration) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		length = time.Second
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= length {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	reset := w.start.Add(length).Sub(now)
	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= limit, remaining, reset
}
