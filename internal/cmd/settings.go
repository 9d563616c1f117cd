package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/hpdcache/flistflat/internal/config"
	"github.com/hpdcache/flistflat/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultLockTimeout = 30 * time.Second

// addCommonFlags registers the flags shared by every command.
func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to config file (default: nearest .flistflat/config.yaml)")
	flags.String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	flags.String("log-dir", "", "Directory for per-run log files")
	flags.Int("max-depth", 0, "Maximum include nesting depth")
	flags.Bool("strict-env", false, "Fail on references to unset environment variables")
	flags.Bool("search-includer-dir", false, "Also look for relative includes next to the including Flist")
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		configPath = config.FindConfigPath(cwd)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var flags config.Flags
	if cmd.Flags().Changed("print-incdir") {
		v, _ := cmd.Flags().GetBool("print-incdir")
		flags.PrintIncdir = &v
	}
	if cmd.Flags().Changed("print-newline") {
		v, _ := cmd.Flags().GetBool("print-newline")
		flags.PrintNewline = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		flags.LogLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		flags.LogDir = &v
	}
	if cmd.Flags().Changed("max-depth") {
		v, _ := cmd.Flags().GetInt("max-depth")
		flags.MaxDepth = &v
	}
	if cmd.Flags().Changed("strict-env") {
		v, _ := cmd.Flags().GetBool("strict-env")
		flags.StrictEnv = &v
	}
	if cmd.Flags().Changed("search-includer-dir") {
		v, _ := cmd.Flags().GetBool("search-includer-dir")
		flags.SearchIncluderDir = &v
	}
	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newLogger builds the console logger on the command's stderr plus a file
// logger when a log directory is configured. The returned func closes the
// file logger.
func newLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, func(), error) {
	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log directory: %w", err)
	}
	console.LogDebug(fmt.Sprintf("Run %s logging to %s", fileLog.RunID(), fileLog.Path()))

	return logger.NewMultiLogger(console, fileLog), func() { fileLog.Close() }, nil
}
