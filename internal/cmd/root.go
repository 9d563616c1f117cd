package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root command. Run with arguments it flattens a
// Flist; the check subcommand inspects one without writing a script.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flistflat [input-flist] [output-script]",
		Short: "Flatten a Flist file into a synthesis read script",
		Long: `flistflat flattens a hardware Flist into a tool-ready script.

Nested Flist files referenced with -F are resolved in place (depth-first),
environment variables ($NAME, ${NAME}) are expanded, comments and directives
are filtered, and every .sv or .v source becomes one read command:

  yosys read_slang -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS <file.sv>
  yosys read_verilog -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS <file.v>

The input defaults to stdin and the output to stdout ("-" selects them
explicitly). A named output file is written atomically under a lock.

Configuration is loaded from the nearest .flistflat/config.yaml (or the file
named by FLISTFLAT_CONFIG / --config). CLI flags override it.

Examples:
  flistflat rtl/hpdcache.Flist synth/read.ys
  flistflat --print-incdir --print-newline < top.Flist
  flistflat --watch rtl/hpdcache.Flist synth/read.ys
  flistflat check rtl/hpdcache.Flist`,
		Args:         cobra.MaximumNArgs(2),
		Version:      Version,
		RunE:         runFlatten,
		SilenceUsage: true,
	}

	addCommonFlags(cmd.PersistentFlags())

	cmd.Flags().Bool("print-incdir", false, "Echo +incdir+ lines in the output")
	cmd.Flags().Bool("print-newline", false, "Write a blank line after each output line")
	cmd.Flags().Bool("watch", false, "Re-flatten whenever a Flist in the include tree changes")
	cmd.Flags().Duration("lock-timeout", defaultLockTimeout, "Maximum wait for the output file lock (0 = wait forever)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after each run")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while watching (e.g. :9464)")

	cmd.AddCommand(NewCheckCommand())

	return cmd
}
