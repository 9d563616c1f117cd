package flist

import (
	"fmt"
	"io"
	"strings"
)

// Frontend maps a source file suffix to the tool command that reads it.
type Frontend struct {
	Suffix  string `yaml:"suffix"`
	Command string `yaml:"command"`
}

// DefaultFrontends returns the yosys read commands for SystemVerilog and Verilog.
func DefaultFrontends() []Frontend {
	return []Frontend{
		{Suffix: ".sv", Command: "yosys read_slang"},
		{Suffix: ".v", Command: "yosys read_verilog"},
	}
}

// DefaultDefines returns the preprocessor defines passed to every read command.
func DefaultDefines() []string {
	return []string{"HPDCACHE_ASSERT_OFF", "SYNTHESIS", "YOSYS"}
}

// Emitter writes tool commands for resolved Flist lines.
type Emitter struct {
	frontends  []Frontend
	defines    string
	blankLines bool
}

// NewEmitter creates an Emitter. Frontends are matched in order, so a longer
// suffix must be listed before a shorter one it ends with. A nil frontends
// slice selects DefaultFrontends; a nil defines slice selects DefaultDefines.
func NewEmitter(frontends []Frontend, defines []string, blankLines bool) *Emitter {
	if frontends == nil {
		frontends = DefaultFrontends()
	}
	if defines == nil {
		defines = DefaultDefines()
	}

	flags := make([]string, 0, len(defines))
	for _, d := range defines {
		flags = append(flags, "-D"+d)
	}

	return &Emitter{
		frontends:  frontends,
		defines:    strings.Join(flags, " "),
		blankLines: blankLines,
	}
}

// Command returns the read command for file, or false when no frontend
// recognizes its suffix. The file is not required to exist.
func (e *Emitter) Command(file string) (string, bool) {
	for _, fe := range e.frontends {
		if !strings.HasSuffix(file, fe.Suffix) {
			continue
		}
		if e.defines == "" {
			return fmt.Sprintf("%s %s", fe.Command, file), true
		}
		return fmt.Sprintf("%s %s %s", fe.Command, e.defines, file), true
	}
	return "", false
}

// EmitSource writes the read command for file. It returns false without
// writing anything when the suffix is not recognized.
func (e *Emitter) EmitSource(w io.Writer, file string) (bool, error) {
	cmd, ok := e.Command(file)
	if !ok {
		return false, nil
	}
	return true, e.writeLine(w, cmd)
}

// EmitIncdir echoes an include directory line as-is.
func (e *Emitter) EmitIncdir(w io.Writer, line string) error {
	return e.writeLine(w, line)
}

func (e *Emitter) writeLine(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if e.blankLines {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
