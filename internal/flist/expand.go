package flist

import (
	"fmt"
	"os"
	"strings"
)

// LookupFunc returns the value of an environment variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// Expander substitutes $NAME and ${NAME} references in Flist lines.
//
// Unset variables expand to the empty string unless Strict is set, in which
// case Expand returns ErrUnsetVariable. Malformed references are copied to
// the output unchanged.
type Expander struct {
	Lookup LookupFunc
	Strict bool
}

// NewExpander returns an Expander backed by the process environment.
func NewExpander(strict bool) *Expander {
	return &Expander{Lookup: os.LookupEnv, Strict: strict}
}

// Expand returns s with every well-formed variable reference replaced.
func (e *Expander) Expand(s string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '$' {
			b.WriteByte(s[i])
			i++
			continue
		}

		name, width := scanReference(s[i+1:])
		if name == "" {
			// Not a reference: keep the dollar and continue after it.
			b.WriteByte('$')
			i++
			continue
		}

		value, ok := lookup(name)
		if !ok && e.Strict {
			return "", fmt.Errorf("%w: %s", ErrUnsetVariable, name)
		}
		b.WriteString(value)
		i += 1 + width
	}

	return b.String(), nil
}

// scanReference parses the text following a '$'. It returns the variable
// name and the number of bytes consumed, or an empty name if the text does
// not start a well-formed reference.
func scanReference(s string) (string, int) {
	if s == "" {
		return "", 0
	}

	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end <= 1 {
			return "", 0
		}
		name := s[1:end]
		if !isName(name) {
			return "", 0
		}
		return name, end + 1
	}

	n := 0
	for n < len(s) && isNameByte(s[n], n == 0) {
		n++
	}
	return s[:n], n
}

func isName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i], i == 0) {
			return false
		}
	}
	return s != ""
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	default:
		return false
	}
}
