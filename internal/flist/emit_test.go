package flist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	svPrefix = "yosys read_slang -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS "
	vPrefix  = "yosys read_verilog -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS "
)

func TestEmitterCommand(t *testing.T) {
	e := NewEmitter(nil, nil, false)

	tests := []struct {
		file   string
		want   string
		wantOK bool
	}{
		{file: "top.sv", want: svPrefix + "top.sv", wantOK: true},
		{file: "/rtl/leaf.v", want: vPrefix + "/rtl/leaf.v", wantOK: true},
		{file: "pkg.svh", wantOK: false},
		{file: "README.md", wantOK: false},
		{file: "top.SV", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, ok := e.Command(tt.file)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitterCustomFrontends(t *testing.T) {
	e := NewEmitter(
		[]Frontend{{Suffix: ".vhd", Command: "ghdl -a"}},
		[]string{},
		false,
	)

	got, ok := e.Command("alu.vhd")
	require.True(t, ok)
	assert.Equal(t, "ghdl -a alu.vhd", got)

	_, ok = e.Command("top.sv")
	assert.False(t, ok, "default frontends are replaced, not merged")
}

func TestEmitSourceBlankLines(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(nil, nil, true)

	ok, err := e.EmitSource(&buf, "a.sv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EmitSource(&buf, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, e.EmitIncdir(&buf, "+incdir+/inc"))

	assert.Equal(t, svPrefix+"a.sv\n\n+incdir+/inc\n\n", buf.String())
}
