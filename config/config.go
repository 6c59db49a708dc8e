// Package config loads the fswatch configuration file. Both YAML
// (fswatch.yml) and TOML (fswatch.toml) are accepted; flag names map onto
// stream.CreateFlags.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/fsevents/errors"
	"github.com/grovetools/fsevents/stream"
	"github.com/grovetools/fsevents/util/pathutil"
)

// Duration parses human-readable values like "100ms" from both YAML and
// TOML documents.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalText implements encoding.TextUnmarshaler (used by go-toml).
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Config is the fswatch tool configuration.
type Config struct {
	// Paths are the watch roots. The command line overrides this list.
	Paths []string `yaml:"paths" toml:"paths"`

	// Latency is the coalescing window; zero delivers immediately.
	Latency Duration `yaml:"latency" toml:"latency"`

	// Flags are creation flag names, e.g. ["file-events", "no-defer"].
	Flags []string `yaml:"flags" toml:"flags"`

	// Debounce applies to the portable watcher (pkg/watch).
	Debounce Duration `yaml:"debounce" toml:"debounce"`

	// Ignore holds .gitignore-style patterns filtered out of delivery.
	Ignore []string `yaml:"ignore" toml:"ignore"`

	// Serve is the listen address of `fswatch serve`.
	Serve ServeConfig `yaml:"serve" toml:"serve"`
}

// ServeConfig configures the websocket event server.
type ServeConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Latency:  Duration(100 * time.Millisecond),
		Flags:    []string{"file-events", "no-defer"},
		Debounce: Duration(100 * time.Millisecond),
		Serve:    ServeConfig{Addr: "localhost:8787"},
	}
}

// createFlagNames maps config names onto creation flag bits.
var createFlagNames = map[string]stream.CreateFlags{
	"none":              stream.CreateNone,
	"use-cf-types":      stream.CreateUseCFTypes,
	"no-defer":          stream.CreateNoDefer,
	"watch-root":        stream.CreateWatchRoot,
	"ignore-self":       stream.CreateIgnoreSelf,
	"file-events":       stream.CreateFileEvents,
	"mark-self":         stream.CreateMarkSelf,
	"use-extended-data": stream.CreateUseExtendedData,
}

// KnownFlagNames lists the recognized creation flag names, sorted.
func KnownFlagNames() []string {
	names := make([]string, 0, len(createFlagNames))
	for name := range createFlagNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCreateFlags resolves flag names into a CreateFlags bitset.
func ParseCreateFlags(names []string) (stream.CreateFlags, error) {
	var flags stream.CreateFlags
	for _, name := range names {
		bit, ok := createFlagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, errors.ConfigInvalid("unknown creation flag: " + name).
				WithDetail("flag", name)
		}
		flags |= bit
	}
	// Extended data implies the rich-object payload; resolving it here keeps
	// config files from tripping the creation-time combination check.
	if flags.Has(stream.CreateUseExtendedData) {
		flags |= stream.CreateUseCFTypes
	}
	return flags, nil
}

// CreateFlags resolves the configured flag names.
func (c *Config) CreateFlags() (stream.CreateFlags, error) {
	return ParseCreateFlags(c.Flags)
}

// Load reads and parses a configuration file, dispatching on extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg := Default()
	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config").
				WithDetail("path", path)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML config").
				WithDetail("path", path)
		}
	default:
		return nil, errors.ConfigInvalid("unsupported config extension: " + filepath.Ext(path)).
			WithDetail("path", path)
	}

	if _, err := cfg.CreateFlags(); err != nil {
		return nil, err
	}

	expanded, err := pathutil.ExpandAll(cfg.Paths)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to expand watch path").
			WithDetail("path", path)
	}
	cfg.Paths = expanded

	return cfg, nil
}

// FindConfigFile searches startDir for a configuration file, preferring
// YAML over TOML.
func FindConfigFile(startDir string) (string, error) {
	candidates := []string{
		"fswatch.yml",
		"fswatch.yaml",
		"fswatch.toml",
		".fswatch.yml",
		".fswatch.toml",
	}
	for _, name := range candidates {
		path := filepath.Join(startDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(filepath.Join(startDir, candidates[0]))
}

// LoadDefault loads the configuration from the working directory, falling
// back to defaults when no file exists.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	path, err := FindConfigFile(cwd)
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}
