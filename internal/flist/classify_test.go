package flist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind LineKind
		wantText string
		wantArg  string
	}{
		{name: "empty", raw: "", wantKind: Blank},
		{name: "whitespace only", raw: " \t  ", wantKind: Blank},
		{name: "hash comment", raw: "# header", wantKind: Comment, wantText: "# header"},
		{name: "slash comment", raw: "  // note", wantKind: Comment, wantText: "// note"},
		{name: "block comment", raw: "/* legacy */", wantKind: Comment, wantText: "/* legacy */"},
		{name: "incdir", raw: "+incdir+/rtl/include", wantKind: IncdirDirective, wantText: "+incdir+/rtl/include", wantArg: "/rtl/include"},
		{name: "include with space", raw: "-F  sub.f ", wantKind: IncludeDirective, wantText: "-F  sub.f", wantArg: "sub.f"},
		{name: "include without space", raw: "-Fsub.f", wantKind: IncludeDirective, wantText: "-Fsub.f", wantArg: "sub.f"},
		{name: "bare include", raw: "-F", wantKind: IncludeDirective, wantText: "-F", wantArg: ""},
		{name: "systemverilog source", raw: "  top.sv  ", wantKind: SourceFile, wantText: "top.sv", wantArg: "top.sv"},
		{name: "verilog source", raw: "leaf.v", wantKind: SourceFile, wantText: "leaf.v", wantArg: "leaf.v"},
		{name: "unknown suffix is still source", raw: "notes.txt", wantKind: SourceFile, wantText: "notes.txt", wantArg: "notes.txt"},
		{name: "lowercase f is source", raw: "-f other.f", wantKind: SourceFile, wantText: "-f other.f", wantArg: "-f other.f"},
		{name: "comment wins over directive text", raw: "#-F sub.f", wantKind: Comment, wantText: "#-F sub.f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantArg, got.Arg)
		})
	}
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "blank", Blank.String())
	assert.Equal(t, "comment", Comment.String())
	assert.Equal(t, "incdir", IncdirDirective.String())
	assert.Equal(t, "include", IncludeDirective.String())
	assert.Equal(t, "source", SourceFile.String())
	assert.Equal(t, "unknown", LineKind(42).String())
}
