package uvcmonitor

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kevmo314/go-uvcmonitor/pkg/prefs"
)

type Option func(*Controller)

// WithStore sets where ApplyPreferences reads stored preferences. Without a store
// ApplyPreferences leaves the configuration untouched.
func WithStore(store prefs.Store) Option {
	return func(c *Controller) {
		c.store = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics registers the session metrics on reg. By default they go to a private
// registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Controller) {
		c.registerer = reg
	}
}
