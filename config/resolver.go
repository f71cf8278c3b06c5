package config

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ResolverConfig configures the hierarchical config resolver.
type ResolverConfig struct {
	// EnvPrefix is prepended to key names for environment variable lookup.
	// With EnvPrefix "STORYFLOW_", key "transcript_dir" maps to
	// STORYFLOW_TRANSCRIPT_DIR.
	EnvPrefix string

	// GlobalPath is the global config file. Empty disables the layer.
	GlobalPath string

	// LocalPath is the project config file. Empty disables the layer.
	LocalPath string

	// DotEnvPath is a .env file read with godotenv. Its entries use the
	// same names as the environment. Empty disables the layer.
	DotEnvPath string

	// Defaults provides the default values and the set of known keys.
	Defaults map[string]string

	// Aliases lists extra variable names honored for a key, checked in
	// order after the prefixed name. Used for legacy deployments.
	Aliases map[string][]string

	// Logger receives warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Resolver handles hierarchical configuration resolution.
type Resolver struct {
	config ResolverConfig
	logger *slog.Logger

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{config: cfg, logger: logger}
}

// warn adds a warning and logs it.
func (r *Resolver) warn(msg string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(msg, args...))
	r.logger.Warn("config: " + fmt.Sprintf(msg, args...))
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	return maps.Clone(c.values)
}

// Keys returns all configuration keys, sorted.
func (c *Resolved) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > .env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range r.config.Defaults {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.config.GlobalPath, SourceGlobal)
	r.applyFile(cfg, r.config.LocalPath, SourceLocal)
	r.applyVars(cfg, r.readDotEnv(), SourceDotEnv)
	r.applyVars(cfg, os.Getenv, SourceEnv)

	// NO_COLOR is honored regardless of prefix.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.set("no_color", "true", SourceEnv)
	}

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides. Empty flag
// values are ignored.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}
	return cfg
}

func (c *Resolved) set(key, value string, source Source) {
	c.values[key] = value
	c.sources[key] = source
}

func (r *Resolver) known(key string) bool {
	_, ok := r.config.Defaults[key]
	return ok
}

func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // a missing file is not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn("could not parse %s: %v", path, err)
		return
	}

	for key, value := range parsed {
		if !r.known(key) {
			r.warn("unknown key %q in %s", key, path)
			continue
		}
		if s := toString(value); s != "" {
			cfg.set(key, s, source)
		}
	}
}

func (r *Resolver) readDotEnv() func(string) string {
	if r.config.DotEnvPath == "" {
		return func(string) string { return "" }
	}
	vars, err := godotenv.Read(r.config.DotEnvPath)
	if err != nil {
		if !os.IsNotExist(err) {
			r.warn("could not read %s: %v", r.config.DotEnvPath, err)
		}
		return func(string) string { return "" }
	}
	return func(name string) string { return vars[name] }
}

// applyVars looks up every known key under its prefixed name, then under
// its aliases.
func (r *Resolver) applyVars(cfg *Resolved, lookup func(string) string, source Source) {
	for key := range r.config.Defaults {
		names := []string{r.envName(key)}
		names = append(names, r.config.Aliases[key]...)
		for _, name := range names {
			if value := lookup(name); value != "" {
				cfg.set(key, value, source)
				break
			}
		}
	}
}

func (r *Resolver) envName(key string) string {
	return r.config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, toString(item))
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// findProjectRoot walks up from startDir to the first directory holding
// name or a .git directory.
func findProjectRoot(startDir, name string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if name != "" {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
