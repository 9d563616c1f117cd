package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hpdcache/flistflat/internal/display"
	"github.com/hpdcache/flistflat/internal/fileutil"
	"github.com/hpdcache/flistflat/internal/flist"
	"github.com/hpdcache/flistflat/internal/logger"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <flist>",
		Short: "Resolve a Flist and report its include tree",
		Long: `Resolve a Flist without writing a script.

Every nested Flist is opened exactly as a flatten run would, so missing
includes, circular includes and unset variables (with --strict-env) are
reported with their location. On success the include tree and a summary
of the commands that would be emitted are printed.

With --unlisted, a source directory is scanned for files with a known
suffix that no Flist in the tree references.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("unlisted", "", "Report sources under this directory that the Flist does not reference")
	cmd.Flags().StringSlice("exclude-dir", []string{"tb", "build"}, "Directory names skipped by --unlisted")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	resolver := flist.NewResolver(cfg.ResolverOptions(log))
	res, err := resolver.ResolveFile(cmd.Context(), args[0], io.Discard)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	cwd, _ := os.Getwd()
	display.PrintIncludeTree(out, res.Files, cwd)
	display.PrintSummary(out, res)

	if w, ok := display.WarnSkippedLines(res.Skipped, cfg.Frontends); ok {
		w.Display(cmd.ErrOrStderr())
	}

	srcDir, _ := cmd.Flags().GetString("unlisted")
	if srcDir == "" {
		return nil
	}
	excludes, _ := cmd.Flags().GetStringSlice("exclude-dir")
	return reportUnlisted(out, log, srcDir, excludes, cfg.Frontends, res)
}

// reportUnlisted scans srcDir for sources with a configured suffix and
// prints those the resolution never emitted.
func reportUnlisted(out io.Writer, log logger.Logger, srcDir string, excludes []string, frontends []flist.Frontend, res *flist.Result) error {
	suffixes := make([]string, 0, len(frontends))
	for _, fe := range frontends {
		suffixes = append(suffixes, fe.Suffix)
	}
	if len(suffixes) == 0 {
		return fmt.Errorf("--unlisted needs at least one configured frontend")
	}

	scan, err := fileutil.ScanDirectory(srcDir, fileutil.ScanOptions{
		Suffixes:    suffixes,
		ExcludeDirs: excludes,
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", srcDir, err)
	}
	for _, scanErr := range scan.Errors {
		log.LogWarn(scanErr.Error())
	}

	root, err := fileutil.Canonical(srcDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	display.PrintUnlisted(out, root, fileutil.Unlisted(scan.Files, res.Sources))
	return nil
}
