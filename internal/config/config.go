package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpdcache/flistflat/internal/flist"
	"gopkg.in/yaml.v3"
)

// Config represents flistflat configuration options
type Config struct {
	// PrintIncdir echoes +incdir+ lines into the flattened script
	PrintIncdir bool `yaml:"print_incdir"`

	// PrintNewline writes a blank line after each emitted line
	PrintNewline bool `yaml:"print_newline"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory for per-run log files (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// MaxDepth limits Flist include nesting
	MaxDepth int `yaml:"max_depth"`

	// StrictEnv turns references to unset environment variables into errors
	StrictEnv bool `yaml:"strict_env"`

	// SearchIncluderDir retries relative includes against the including Flist's directory
	SearchIncluderDir bool `yaml:"search_includer_dir"`

	// Defines are passed as -D flags to every read command
	Defines []string `yaml:"defines"`

	// Frontends map source file suffixes to read commands
	Frontends []flist.Frontend `yaml:"frontends"`
}

// DefaultConfig returns a Config with the yosys defaults
func DefaultConfig() *Config {
	return &Config{
		PrintIncdir:       false,
		PrintNewline:      false,
		LogLevel:          "info",
		LogDir:            "",
		MaxDepth:          flist.DefaultMaxDepth,
		StrictEnv:         false,
		SearchIncluderDir: false,
		Defines:           flist.DefaultDefines(),
		Frontends:         flist.DefaultFrontends(),
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Booleans and lists are only applied when the key is present, so an
	// explicit "false" or "[]" overrides a default.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	has := func(key string) bool {
		_, ok := rawMap[key]
		return ok
	}

	if has("print_incdir") {
		cfg.PrintIncdir = fileCfg.PrintIncdir
	}
	if has("print_newline") {
		cfg.PrintNewline = fileCfg.PrintNewline
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if has("max_depth") {
		cfg.MaxDepth = fileCfg.MaxDepth
	}
	if has("strict_env") {
		cfg.StrictEnv = fileCfg.StrictEnv
	}
	if has("search_includer_dir") {
		cfg.SearchIncluderDir = fileCfg.SearchIncluderDir
	}
	if has("defines") {
		cfg.Defines = nonNil(fileCfg.Defines)
	}
	if has("frontends") {
		cfg.Frontends = fileCfg.Frontends
		if cfg.Frontends == nil {
			cfg.Frontends = []flist.Frontend{}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .flistflat/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, configDirName, configFileName))
}

// Flags holds CLI flag values. Nil fields were not set on the command line.
type Flags struct {
	PrintIncdir       *bool
	PrintNewline      *bool
	LogLevel          *string
	LogDir            *string
	MaxDepth          *int
	StrictEnv         *bool
	SearchIncluderDir *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(f Flags) {
	if f.PrintIncdir != nil {
		c.PrintIncdir = *f.PrintIncdir
	}
	if f.PrintNewline != nil {
		c.PrintNewline = *f.PrintNewline
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.MaxDepth != nil {
		c.MaxDepth = *f.MaxDepth
	}
	if f.StrictEnv != nil {
		c.StrictEnv = *f.StrictEnv
	}
	if f.SearchIncluderDir != nil {
		c.SearchIncluderDir = *f.SearchIncluderDir
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be > 0, got %d", c.MaxDepth)
	}

	seen := make(map[string]bool)
	for i, fe := range c.Frontends {
		if !strings.HasPrefix(fe.Suffix, ".") {
			return fmt.Errorf("frontends[%d]: suffix %q must start with '.'", i, fe.Suffix)
		}
		if strings.TrimSpace(fe.Command) == "" {
			return fmt.Errorf("frontends[%d]: command cannot be empty", i)
		}
		if seen[fe.Suffix] {
			return fmt.Errorf("frontends[%d]: duplicate suffix %q", i, fe.Suffix)
		}
		seen[fe.Suffix] = true
	}

	for i, d := range c.Defines {
		if d == "" || strings.ContainsAny(d, " \t") {
			return fmt.Errorf("defines[%d]: %q is not a valid define", i, d)
		}
	}

	return nil
}

// ResolverOptions converts the configuration into flist resolver options.
func (c *Config) ResolverOptions(logger flist.Logger) flist.Options {
	return flist.Options{
		EmitIncdir:        c.PrintIncdir,
		EmitBlankLines:    c.PrintNewline,
		MaxDepth:          c.MaxDepth,
		StrictEnv:         c.StrictEnv,
		SearchIncluderDir: c.SearchIncluderDir,
		Frontends:         c.Frontends,
		Defines:           c.Defines,
		Logger:            logger,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
