// Package fileutil scans source trees for HDL files so that a resolved
// Flist can be compared against what is actually on disk.
//
// Scanning is error tolerant: unreadable entries are collected in
// ScanResult.Errors and the walk continues. Hidden directories and any
// directory named in ScanOptions.ExcludeDirs are skipped. Results are
// absolute, symlink-free paths sorted alphabetically.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Suffixes selects files by name suffix (e.g. ".sv", ".v"). Matching
	// is case-sensitive, as it is for Flist frontends. Empty means all files.
	Suffixes []string
	// ExcludeDirs is a list of directory names to skip (e.g. "build", "tb")
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = dir only)
	MaxDepth int
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the absolute paths of all matched files
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

// ScanDirectory walks dir and collects the files matching opts.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	root, err := Canonical(dir)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = true
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if exclude[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 {
				rel, _ := filepath.Rel(root, path)
				if strings.Count(rel, string(filepath.Separator))+1 >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if matchSuffix(d.Name(), opts.Suffixes) {
			result.Files = append(result.Files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// Unlisted returns the scanned files that do not appear in listed. Listed
// paths may be relative (to the working directory) or absolute.
func Unlisted(scanned, listed []string) []string {
	seen := make(map[string]bool, len(listed))
	for _, p := range listed {
		if c, err := Canonical(p); err == nil {
			seen[c] = true
		}
	}

	var missing []string
	for _, p := range scanned {
		if !seen[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

func matchSuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Canonical returns the absolute path with symlinks evaluated where
// possible, so a file reached two ways compares equal.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
