package flist

import "strings"

// LineKind is the classification of a single Flist line.
type LineKind int

const (
	// Blank is an empty or whitespace-only line.
	Blank LineKind = iota
	// Comment starts with #, // or /*.
	Comment
	// IncdirDirective names an include directory (+incdir+<dir>).
	IncdirDirective
	// IncludeDirective references a nested Flist (-F <path>).
	IncludeDirective
	// SourceFile is any other non-empty line.
	SourceFile
)

// String returns the string representation of LineKind.
func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case IncdirDirective:
		return "incdir"
	case IncludeDirective:
		return "include"
	case SourceFile:
		return "source"
	default:
		return "unknown"
	}
}

// Directive prefixes recognized by Classify.
const (
	incdirPrefix  = "+incdir+"
	includePrefix = "-F"
)

var commentPrefixes = []string{"#", "//", "/*"}

// Line is a classified Flist line.
type Line struct {
	Kind LineKind
	// Text is the trimmed line.
	Text string
	// Arg is the directive operand: the directory for IncdirDirective, the
	// included path for IncludeDirective, the file for SourceFile.
	Arg string
}

// Classify trims raw and returns its classification. Rules are applied in
// priority order: blank, comment, incdir, include, source.
func Classify(raw string) Line {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Line{Kind: Blank}
	}

	for _, p := range commentPrefixes {
		if strings.HasPrefix(text, p) {
			return Line{Kind: Comment, Text: text}
		}
	}

	if rest, ok := strings.CutPrefix(text, incdirPrefix); ok {
		return Line{Kind: IncdirDirective, Text: text, Arg: rest}
	}

	if rest, ok := strings.CutPrefix(text, includePrefix); ok {
		return Line{Kind: IncludeDirective, Text: text, Arg: strings.TrimSpace(rest)}
	}

	return Line{Kind: SourceFile, Text: text, Arg: text}
}
