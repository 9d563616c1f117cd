package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpdcache/flistflat/internal/flist"
)

// PrintIncludeTree writes the opened Flist files as an indented tree in
// traversal order. Paths under base are shown relative to it.
func PrintIncludeTree(out io.Writer, files []flist.FileVisit, base string) {
	for _, f := range files {
		name := f.Path
		if base != "" {
			if rel, ok := strings.CutPrefix(f.Path, strings.TrimSuffix(base, "/")+"/"); ok {
				name = rel
			}
		}
		if f.Depth == 0 {
			fmt.Fprintln(out, name)
			continue
		}
		fmt.Fprintf(out, "%s└─ %s\n", strings.Repeat("   ", f.Depth-1), name)
	}
}

// PrintSummary writes the counts from a check run.
func PrintSummary(out io.Writer, res *flist.Result) {
	fmt.Fprintf(out, "\nFlist files: %d (%d distinct)\n", len(res.Files), len(res.Paths()))
	fmt.Fprintf(out, "Read commands: %d\n", res.Commands)
	fmt.Fprintf(out, "Include dirs: %d\n", res.Incdirs)
	fmt.Fprintf(out, "Skipped lines: %d\n", len(res.Skipped))
}

// PrintUnlisted lists source files found on disk that no Flist references.
func PrintUnlisted(out io.Writer, dir string, files []string) {
	if len(files) == 0 {
		fmt.Fprintf(out, "Unlisted sources under %s: none\n", dir)
		return
	}
	fmt.Fprintf(out, "Unlisted sources under %s: %d\n", dir, len(files))
	for _, f := range files {
		name := f
		if rel, err := filepath.Rel(dir, f); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
		fmt.Fprintf(out, "  %s\n", name)
	}
}
