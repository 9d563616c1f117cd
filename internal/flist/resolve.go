package flist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// DefaultMaxDepth bounds Flist nesting when Options.MaxDepth is not set.
const DefaultMaxDepth = 64

// maxLineSize is the longest Flist line the scanner accepts.
const maxLineSize = 1024 * 1024

// Logger receives diagnostics from a resolution. Implemented by
// logger.ConsoleLogger and logger.FileLogger.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
}

// Options configures a Resolver.
type Options struct {
	// EmitIncdir echoes +incdir+ lines to the output.
	EmitIncdir bool
	// EmitBlankLines writes a blank line after each emitted line.
	EmitBlankLines bool
	// MaxDepth limits include nesting (0 = DefaultMaxDepth).
	MaxDepth int
	// StrictEnv makes references to unset variables an error.
	StrictEnv bool
	// SearchIncluderDir retries a relative include path against the
	// directory of the including Flist when it is not found relative to
	// the working directory.
	SearchIncluderDir bool
	// Frontends and Defines configure the emitted read commands
	// (nil = defaults).
	Frontends []Frontend
	Defines   []string
	// Lookup overrides the environment lookup (nil = os.LookupEnv).
	Lookup LookupFunc
	// Logger receives trace/debug messages (nil = discard).
	Logger Logger
}

// SkippedLine is a source line that produced no command because its suffix
// is not recognized.
type SkippedLine struct {
	File string
	Line int
	Text string
}

// FileVisit records one opened Flist and its nesting depth (root = 0).
type FileVisit struct {
	Path  string
	Depth int
}

// Result reports what a resolution produced.
type Result struct {
	Commands int
	Incdirs  int
	Sources  []string // source files that produced a command, as written after expansion
	Skipped  []SkippedLine
	Files    []FileVisit
}

// Paths returns the distinct Flist paths opened, in first-visit order.
func (r *Result) Paths() []string {
	seen := make(map[string]bool, len(r.Files))
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		if !seen[f.Path] {
			seen[f.Path] = true
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Resolver flattens Flist files. It holds no per-call state, so a single
// Resolver may serve concurrent resolutions.
type Resolver struct {
	opts     Options
	emitter  *Emitter
	expander *Expander
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts Options) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Resolver{
		opts:     opts,
		emitter:  NewEmitter(opts.Frontends, opts.Defines, opts.EmitBlankLines),
		expander: &Expander{Lookup: opts.Lookup, Strict: opts.StrictEnv},
	}
}

// ResolveFile flattens the Flist at path into out.
func (r *Resolver) ResolveFile(ctx context.Context, path string, out io.Writer) (*Result, error) {
	abs, err := normalize(path)
	if err != nil {
		return nil, err
	}
	if !fileExists(abs) {
		return nil, fmt.Errorf("%s not found: %w", path, ErrFileNotFound)
	}

	res := &Result{}
	w := &walk{ctx: ctx, r: r, out: out, res: res}
	if err := w.include(abs, nil, 0); err != nil {
		return res, err
	}
	return res, nil
}

// Resolve flattens the Flist read from in into out. name labels the stream
// in diagnostics; includes found in it are resolved relative to the working
// directory.
func (r *Resolver) Resolve(ctx context.Context, in io.Reader, name string, out io.Writer) (*Result, error) {
	lines, err := readLines(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	res := &Result{}
	w := &walk{ctx: ctx, r: r, out: out, res: res}
	if err := w.lines(name, "", lines, nil, 0); err != nil {
		return res, err
	}
	return res, nil
}

// walk carries the per-call state of one traversal.
type walk struct {
	ctx context.Context
	r   *Resolver
	out io.Writer
	res *Result
}

// include opens, reads and closes the Flist at abs, then resolves its
// lines. chain holds the ancestors of abs, root first.
func (w *walk) include(abs string, chain []string, depth int) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	w.r.opts.Logger.LogDebug(fmt.Sprintf("entering %s (depth %d)", abs, depth))
	w.res.Files = append(w.res.Files, FileVisit{Path: abs, Depth: depth})

	lines, err := readFile(abs)
	if err != nil {
		return err
	}

	return w.lines(abs, abs, lines, append(slices.Clip(chain), abs), depth)
}

// lines resolves the lines of one Flist. self is the Flist's own path, used
// to locate includes relative to it (empty for streams).
func (w *walk) lines(name, self string, lines []string, chain []string, depth int) error {
	opts := w.r.opts

	for i, raw := range lines {
		lineNo := i + 1

		// Comments are recognized before expansion.
		if kind := Classify(raw).Kind; kind == Blank || kind == Comment {
			continue
		}

		expanded, err := w.r.expander.Expand(raw)
		if err != nil {
			return &IncludeError{File: name, Line: lineNo, Chain: chain, Err: err}
		}

		line := Classify(expanded)
		switch line.Kind {
		case Blank, Comment:
			continue

		case IncdirDirective:
			if !opts.EmitIncdir {
				continue
			}
			if err := w.r.emitter.EmitIncdir(w.out, line.Text); err != nil {
				return err
			}
			w.res.Incdirs++

		case IncludeDirective:
			target, err := w.locate(line.Arg, self)
			if err != nil {
				return &IncludeError{File: name, Line: lineNo, Path: line.Arg, Chain: chain, Err: err}
			}
			if slices.Contains(chain, target) {
				return &IncludeError{File: name, Line: lineNo, Path: target, Chain: chain, Err: ErrCircularInclude}
			}
			if depth+1 > opts.MaxDepth {
				return &IncludeError{
					File:  name,
					Line:  lineNo,
					Path:  target,
					Chain: chain,
					Err:   fmt.Errorf("%w (%d)", ErrMaxDepth, opts.MaxDepth),
				}
			}
			if err := w.include(target, chain, depth+1); err != nil {
				return err
			}

		case SourceFile:
			ok, err := w.r.emitter.EmitSource(w.out, line.Arg)
			if err != nil {
				return err
			}
			if !ok {
				opts.Logger.LogTrace(fmt.Sprintf("%s:%d: no frontend for %s", name, lineNo, line.Arg))
				w.res.Skipped = append(w.res.Skipped, SkippedLine{File: name, Line: lineNo, Text: line.Arg})
				continue
			}
			w.res.Commands++
			w.res.Sources = append(w.res.Sources, line.Arg)
		}
	}

	return nil
}

// locate maps an include path to a normalized absolute path, or returns
// ErrFileNotFound.
func (w *walk) locate(path, includer string) (string, error) {
	if path == "" {
		return "", ErrFileNotFound
	}

	candidates := []string{path}
	if w.r.opts.SearchIncluderDir && includer != "" && !filepath.IsAbs(path) {
		candidates = append(candidates, filepath.Join(filepath.Dir(includer), path))
	}

	for _, c := range candidates {
		if !fileExists(c) {
			continue
		}
		return normalize(c)
	}
	return "", ErrFileNotFound
}

// normalize returns the absolute, symlink-free form of path. Symlinks are
// left in place when they cannot be evaluated.
func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readFile reads every line of the file at path. The file is closed before
// readFile returns.
func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

type nopLogger struct{}

func (nopLogger) LogTrace(string) {}
func (nopLogger) LogDebug(string) {}
