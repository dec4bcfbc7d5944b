// Package plugins provides the standard Gazelle plugins. Each plugin is
// registered once on a plugin.Context and exposes hooks that routes attach.
package plugins

import (
	"strings"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
)

// IPSourceType defines the source for client IP addresses
type IPSourceType string

const (
	// IPSourceRemoteAddr uses the request's remote address
	IPSourceRemoteAddr IPSourceType = "remote_addr"

	// IPSourceXForwardedFor uses the X-Forwarded-For header
	IPSourceXForwardedFor IPSourceType = "x_forwarded_for"

	// IPSourceXRealIP uses the X-Real-IP header
	IPSourceXRealIP IPSourceType = "x_real_ip"

	// IPSourceCustomHeader uses a custom header specified in the configuration
	IPSourceCustomHeader IPSourceType = "custom_header"
)

// ClientIPConfig defines configuration for IP extraction
type ClientIPConfig struct {
	// Source specifies where to extract the client IP from
	Source IPSourceType

	// CustomHeader is the name of the custom header to use when Source is IPSourceCustomHeader
	CustomHeader string

	// TrustProxy determines whether to trust proxy headers like X-Forwarded-For.
	// If false, the remote address is always used.
	TrustProxy bool
}

// DefaultClientIPConfig returns the default IP configuration
func DefaultClientIPConfig() *ClientIPConfig {
	return &ClientIPConfig{
		Source:     IPSourceXForwardedFor,
		TrustProxy: true,
	}
}

// ClientIPPlugin resolves the client IP of each request and stores it in the
// request metadata under common.MetadataClientIP.
type ClientIPPlugin struct {
	config *ClientIPConfig
}

// NewClientIPPlugin creates a ClientIPPlugin. A nil config uses DefaultClientIPConfig.
func NewClientIPPlugin(config *ClientIPConfig) *ClientIPPlugin {
	if config == nil {
		config = DefaultClientIPConfig()
	}
	return &ClientIPPlugin{config: config}
}

// Name implements plugin.Plugin.
func (p *ClientIPPlugin) Name() string { return "client_ip" }

// Initialize implements plugin.Plugin.
func (p *ClientIPPlugin) Initialize(ctx *plugin.Context) error { return nil }

// Hook returns a shared pre-hook that records the client IP.
func (p *ClientIPPlugin) Hook() common.PreHook {
	return common.NewPreHook(p.Name(), true, func(req common.Request, resp common.Response) common.PreHookResult {
		return common.Continue(req.WithMetadata(common.MetadataClientIP, p.Extract(req)), resp)
	})
}

// Extract resolves the client IP of req according to the plugin's configuration.
func (p *ClientIPPlugin) Extract(req common.Request) string {
	return extractClientIP(req, p.config)
}

// ClientIP returns the client IP recorded by the client_ip plugin, or an empty string.
func ClientIP(req common.Request) string {
	if v, ok := req.Metadata(common.MetadataClientIP); ok {
		if ip, ok := v.(string); ok {
			return ip
		}
	}
	return ""
}

// extractClientIP extracts the client IP from the request based on the configuration
func extractClientIP(req common.Request, config *ClientIPConfig) string {
	var ip string

	switch config.Source {
	case IPSourceXForwardedFor:
		ip = extractIPFromXForwardedFor(req)
	case IPSourceXRealIP:
		ip = req.HeaderValue("X-Real-IP")
	case IPSourceCustomHeader:
		ip = req.HeaderValue(config.CustomHeader)
	case IPSourceRemoteAddr:
		ip = req.RemoteAddr()
	default:
		ip = extractIPFromXForwardedFor(req)
	}

	// If we don't trust proxy headers or couldn't extract an IP, fall back to the remote address
	if !config.TrustProxy || ip == "" {
		ip = req.RemoteAddr()
	}

	return cleanIP(strings.TrimSpace(ip))
}

// extractIPFromXForwardedFor returns the leftmost, original client entry of X-Forwarded-For
func extractIPFromXForwardedFor(req common.Request) string {
	xff := req.HeaderValue("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}

// cleanIP removes the port from an IP address if present
func cleanIP(ip string) string {
	// IPv6 addresses with ports are formatted as [IPv6]:port
	if strings.HasPrefix(ip, "[") {
		end := strings.LastIndex(ip, "]")
		if end > 0 {
			if end+1 < len(ip) && ip[end+1] == ':' {
				return ip[:end+1]
			}
			return ip
		}
	}

	// An IPv6 address without brackets has no port
	if strings.Count(ip, ":") > 1 {
		return ip
	}

	// IPv4 addresses with ports are formatted as IPv4:port
	if end := strings.LastIndex(ip, ":"); end > 0 {
		return ip[:end]
	}

	return ip
}
