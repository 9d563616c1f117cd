// Package display formats user-facing reports for the flistflat CLI:
// warnings about dropped source lines and the include tree printed by
// the check command.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/hpdcache/flistflat/internal/flist"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related lines or files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning to out. The title line is yellow when color
// output is enabled (fatih/color disables it for non-terminals and NO_COLOR).
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString(color.New(color.FgYellow, color.Bold).Sprint("Warning: " + w.Title))
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, item))
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, b.String())
}

// WarnSkippedLines builds a warning listing source lines that produced no
// command. ok is false when nothing was skipped.
func WarnSkippedLines(skipped []flist.SkippedLine, frontends []flist.Frontend) (Warning, bool) {
	if len(skipped) == 0 {
		return Warning{}, false
	}

	items := make([]string, 0, len(skipped))
	for _, s := range skipped {
		items = append(items, fmt.Sprintf("%s:%d: %s", s.File, s.Line, s.Text))
	}

	suffixes := make([]string, 0, len(frontends))
	for _, fe := range frontends {
		suffixes = append(suffixes, fe.Suffix)
	}

	noun := "lines"
	if len(skipped) == 1 {
		noun = "line"
	}

	return Warning{
		Title:      fmt.Sprintf("%d source %s skipped", len(skipped), noun),
		Message:    "No frontend is configured for these file suffixes",
		Items:      items,
		Suggestion: fmt.Sprintf("Recognized suffixes: %s. Add a frontends entry to the config to read other kinds.", strings.Join(suffixes, ", ")),
	}, true
}
