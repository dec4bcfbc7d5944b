// Package plugin provides the process-wide plugin Context.
//
// Plugins are registered once at startup, before the router starts serving.
// Register initializes each plugin synchronously, in registration order, and
// keeps the instance for the lifetime of the process. Routes then obtain hooks
// from initialized plugins and wire them into registration explicitly:
//
//	pctx := plugin.NewContext(logger)
//	jwtPlugin := &plugins.JWTPlugin{Secret: secret}
//	if err := pctx.Register(jwtPlugin); err != nil {
//		log.Fatal(err)
//	}
//	r, err := router.NewRouter(router.RouterConfig{Plugins: pctx})
//	...
//	r.Register("GET", "/me", meHandler, []common.PreHook{jwtPlugin.AuthHook(false)}, nil)
//
// The Context is written only during that initialization phase. NewRouter
// seals it, after which it is read-only and safe for concurrent readers
// without locking.
package plugin

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Plugin is a reusable capability initialized once against the Context.
type Plugin interface {
	// Name identifies the plugin in the registry.
	Name() string

	// Initialize is called exactly once by Context.Register.
	// Plugins may look up previously registered plugins here.
	Initialize(ctx *Context) error
}

// Context holds the plugin registry and the shared logger.
type Context struct {
	logger  *zap.Logger
	plugins map[string]Plugin
	order   []Plugin
	sealed  bool
}

// NewContext creates an empty Context. A nil logger is replaced by a
// production logger, or a no-op logger if that can't be built.
func NewContext(logger *zap.Logger) *Context {
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
	}
	return &Context{
		logger:  logger,
		plugins: make(map[string]Plugin),
	}
}

// Logger returns the logger shared with plugins.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Register initializes p and adds it to the registry.
// If Initialize fails the plugin is not registered.
func (c *Context) Register(p Plugin) error {
	if p == nil || p.Name() == "" {
		return ErrInvalidPlugin
	}
	if c.sealed {
		return fmt.Errorf("register %q: %w", p.Name(), ErrContextSealed)
	}
	if _, exists := c.plugins[p.Name()]; exists {
		return fmt.Errorf("register %q: %w", p.Name(), ErrPluginAlreadyRegistered)
	}

	if err := p.Initialize(c); err != nil {
		c.logger.Error("Plugin initialization failed",
			zap.String("plugin", p.Name()),
			zap.Error(err),
		)
		return fmt.Errorf("initialize plugin %q: %w", p.Name(), err)
	}

	c.plugins[p.Name()] = p
	c.order = append(c.order, p)

	c.logger.Debug("Plugin registered", zap.String("plugin", p.Name()))
	return nil
}

// MustRegister is like Register but panics on error.
func (c *Context) MustRegister(plugins ...Plugin) {
	for _, p := range plugins {
		if err := c.Register(p); err != nil {
			panic(err)
		}
	}
}

// Get returns the plugin registered under name.
func (c *Context) Get(name string) (Plugin, error) {
	p, ok := c.plugins[name]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", name, ErrPluginNotRegistered)
	}
	return p, nil
}

// MustGet returns the plugin registered under name and panics if there is none.
// A missing plugin is a wiring bug.
func (c *Context) MustGet(name string) Plugin {
	p, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Plugins returns the registered plugins in registration order.
func (c *Context) Plugins() []Plugin {
	out := make([]Plugin, len(c.order))
	copy(out, c.order)
	return out
}

// Seal ends the initialization phase. Register fails afterwards.
func (c *Context) Seal() {
	c.sealed = true
}

// Sealed reports whether Seal has been called.
func (c *Context) Sealed() bool {
	return c.sealed
}

// Close closes every plugin implementing io.Closer, in reverse registration
// order, and returns the combined errors.
func (c *Context) Close() error {
	var err error
	for i := len(c.order) - 1; i >= 0; i-- {
		closer, ok := c.order[i].(io.Closer)
		if !ok {
			continue
		}
		if cerr := closer.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close plugin %q: %w", c.order[i].Name(), cerr))
		}
	}
	return err
}

// Lookup returns the first registered plugin of type P, in registration order.
// P may also be an interface implemented by the wanted plugin.
func Lookup[P Plugin](c *Context) (P, error) {
	for _, p := range c.order {
		if typed, ok := p.(P); ok {
			return typed, nil
		}
	}
	var zero P
	return zero, fmt.Errorf("lookup %T: %w", zero, ErrPluginNotRegistered)
}

// MustLookup is like Lookup but panics if no plugin of type P is registered.
func MustLookup[P Plugin](c *Context) P {
	p, err := Lookup[P](c)
	if err != nil {
		panic(err)
	}
	return p
}
