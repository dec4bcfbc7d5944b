package plugins

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"github.com/Suhaibinator/gazelle/pkg/plugin"
	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const metadataJWTClaims = "gazelle.jwt.claims"

// ErrMissingSecret is returned by Initialize when the JWT plugin has no signing secret.
var ErrMissingSecret = errors.New("jwt: missing secret")

// JWTConfig configures the JWTPlugin.
type JWTConfig struct {
	// Secret is the HMAC key used to sign and verify HS256 tokens.
	Secret []byte

	// Issuer is written to signed tokens and, when set, required on verification.
	Issuer string

	// TTL is the lifetime of signed tokens. Defaults to one hour.
	TTL time.Duration

	// MissingHeaderMessage is the 401 body for a missing or non-Bearer
	// Authorization header.
	MissingHeaderMessage string

	// InvalidTokenMessage is the 401 body for a token that fails verification.
	InvalidTokenMessage string

	// Clock is used for issuing and validating token times. Defaults to the wall clock.
	Clock clock.Clock
}

// Claims are the claims carried by tokens the JWTPlugin signs.
type Claims struct {
	jwt.RegisteredClaims
	Extra map[string]any `json:"ext,omitempty"`
}

// JWTPlugin signs and verifies HS256 JSON Web Tokens and provides an
// authentication pre-hook.
type JWTPlugin struct {
	config JWTConfig
	logger *zap.Logger
}

// NewJWTPlugin creates a JWTPlugin, filling in the config defaults.
func NewJWTPlugin(config JWTConfig) *JWTPlugin {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.MissingHeaderMessage == "" {
		config.MissingHeaderMessage = "Missing or invalid authorization header"
	}
	if config.InvalidTokenMessage == "" {
		config.InvalidTokenMessage = "Invalid or expired token"
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}
	return &JWTPlugin{config: config}
}

// Name implements plugin.Plugin.
func (p *JWTPlugin) Name() string { return "jwt" }

// Initialize implements plugin.Plugin.
func (p *JWTPlugin) Initialize(ctx *plugin.Context) error {
	if len(p.config.Secret) == 0 {
		return ErrMissingSecret
	}
	p.logger = ctx.Logger()
	return nil
}

// Sign issues a token for subject carrying the extra claims.
func (p *JWTPlugin) Sign(subject string, extra map[string]any) (string, error) {
	now := p.config.Clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    p.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.config.TTL)),
		},
		Extra: extra,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.config.Secret)
}

// Verify parses token and validates its signature, expiry and issuer.
func (p *JWTPlugin) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.config.Clock.Now),
	}
	if p.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.config.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.config.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

// AuthHook returns a pre-hook requiring a valid Bearer token. A request
// without one is short-circuited with 401. On success the claims are stored
// in the request metadata and the subject becomes the request's user ID.
func (p *JWTPlugin) AuthHook(share bool) common.PreHook {
	return common.NewPreHook(p.Name(), share, func(req common.Request, resp common.Response) common.PreHookResult {
		token, ok := bearerToken(req.HeaderValue("Authorization"))
		if !ok {
			return common.ShortCircuit(unauthorized(p.config.MissingHeaderMessage))
		}

		claims, err := p.Verify(token)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("Authentication failed",
					zap.String("method", req.Method()),
					zap.String("path", req.Path()),
					zap.Error(err),
				)
			}
			return common.ShortCircuit(unauthorized(p.config.InvalidTokenMessage))
		}

		req = req.WithMetadata(metadataJWTClaims, claims).WithMetadata(common.MetadataUserID, claims.Subject)
		return common.Continue(req, resp)
	})
}

// JWTClaims returns the claims stored by the JWT auth hook.
func JWTClaims(req common.Request) (*Claims, bool) {
	v, ok := req.Metadata(metadataJWTClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(message string) common.Response {
	return common.TextResponse(http.StatusUnauthorized, message).WithHeader("WWW-Authenticate", "Bearer")
}
