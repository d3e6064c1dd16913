// Package flags provides feature flags read from configuration.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"

	"github.com/zjrosen/hoard/internal/log"
)

const (
	// FlagAutoULID assigns a ULID identifier to assets added without one.
	FlagAutoULID = "auto-ulid"

	// FlagResultCache caches list and evaluation results between writes.
	FlagResultCache = "result-cache"
)

// Defaults returns the built-in flag values.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagAutoULID:    true,
		FlagResultCache: true,
	}
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from Defaults overlaid with overrides.
func New(overrides map[string]bool) *Registry {
	flags := Defaults()
	maps.Copy(flags, overrides)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled returns the flag's value. Unknown flags and a nil registry
// report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, ok := r.flags[name]
	if !ok {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of every flag. Empty for a nil registry.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
