package flist

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when a -F directive names a missing file.
	ErrFileNotFound = errors.New("file not found")
	// ErrCircularInclude is returned when a Flist includes one of its ancestors.
	ErrCircularInclude = errors.New("circular include")
	// ErrMaxDepth is returned when nesting exceeds Options.MaxDepth.
	ErrMaxDepth = errors.New("maximum include depth exceeded")
	// ErrUnsetVariable is returned in strict mode for unset environment variables.
	ErrUnsetVariable = errors.New("environment variable not set")
)

// IncludeError describes a failure while processing a line of a Flist.
// It carries the location of the offending line and the chain of Flist
// files that led to it.
type IncludeError struct {
	File  string   // Flist containing the failing line
	Line  int      // 1-based line number in File
	Path  string   // include path after expansion (empty for non-include lines)
	Chain []string // ancestor Flist files, root first
	Err   error    // underlying error
}

// Error implements the error interface for IncludeError.
func (e *IncludeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s:%d: ", e.File, e.Line))

	switch {
	case errors.Is(e.Err, ErrFileNotFound):
		sb.WriteString(fmt.Sprintf("%s not found", e.Path))
	case errors.Is(e.Err, ErrCircularInclude):
		sb.WriteString(fmt.Sprintf("%v: %s -> %s", ErrCircularInclude, strings.Join(e.Chain, " -> "), e.Path))
	case e.Path != "":
		sb.WriteString(fmt.Sprintf("%s: %v", e.Path, e.Err))
	default:
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *IncludeError) Unwrap() error {
	return e.Err
}
