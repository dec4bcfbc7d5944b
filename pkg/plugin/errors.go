package plugin

import "errors"

// Plugin registry errors.
var (
	// ErrPluginNotRegistered is returned when looking up a plugin that was never registered.
	ErrPluginNotRegistered = errors.New("plugin not registered")

	// ErrPluginAlreadyRegistered is returned when a plugin name is registered twice.
	ErrPluginAlreadyRegistered = errors.New("plugin already registered")

	// ErrContextSealed is returned when registering after the context was handed to a router.
	ErrContextSealed = errors.New("plugin context is sealed")

	// ErrInvalidPlugin is returned for a nil plugin or one with an empty name.
	ErrInvalidPlugin = errors.New("invalid plugin")
)
