package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the flag values shared by every command.
type options struct {
	addr        string
	jwtSecret   string
	logLevel    string
	corsOrigins []string
	rateLimit   int
	rateWindow  time.Duration
}

func defaultOptions() *options {
	return &options{
		addr:        ":8080",
		logLevel:    "info",
		corsOrigins: []string{"*"},
		rateLimit:   100,
		rateWindow:  time.Minute,
	}
}

// bind registers the flags as persistent flags of cmd.
func (o *options) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.addr, "addr", o.addr, "Address to listen on")
	flags.StringVar(&o.jwtSecret, "jwt-secret", o.jwtSecret, "HMAC secret for signing tokens (random when empty)")
	flags.StringVar(&o.logLevel, "log-level", o.logLevel, "Log level (debug, info, warn, error)")
	flags.StringSliceVar(&o.corsOrigins, "cors-origin", o.corsOrigins, "Allowed CORS origins")
	flags.IntVar(&o.rateLimit, "rate-limit", o.rateLimit, "Requests allowed per client in each rate window")
	flags.DurationVar(&o.rateWindow, "rate-window", o.rateWindow, "Length of the rate limit window")
}

// logger builds a production logger at the configured level.
func (o *options) logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	config := zap.NewProductionConfig()
	config.Level = level
	return config.Build()
}
