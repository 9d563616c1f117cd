package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpdcache/flistflat/internal/cmd"
	"github.com/hpdcache/flistflat/internal/config"
	"github.com/hpdcache/flistflat/internal/flist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	readSV = "yosys read_slang -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS "
	readV  = "yosys read_verilog -DHPDCACHE_ASSERT_OFF -DSYNTHESIS -DYOSYS "
)

// fixtureRoot points HPDCACHE_DIR at the fixture tree and returns it.
func fixtureRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs("fixtures")
	require.NoError(t, err)
	t.Setenv("HPDCACHE_DIR", root)
	t.Setenv(config.ConfigEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	return root
}

func expectedScript(root string) string {
	return readSV + root + "/rtl/src/hpdcache_pkg.sv\n" +
		readSV + root + "/rtl/src/common/hpdcache_fifo_reg.sv\n" +
		readSV + root + "/rtl/src/common/hpdcache_sram.sv\n" +
		readV + root + "/rtl/src/common/macros/behav/hpdcache_sram_1rw.v\n" +
		readSV + root + "/rtl/src/hpdcache_ctrl.sv\n" +
		readSV + root + "/rtl/src/hpdcache.sv\n"
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFlattenHPDcacheFlist(t *testing.T) {
	root := fixtureRoot(t)

	stdout, stderr, err := run(t, filepath.Join(root, "rtl", "hpdcache.Flist"))
	require.NoError(t, err)

	assert.Equal(t, expectedScript(root), stdout)
	assert.Contains(t, stderr, "hpdcache_typedef.svh", "header files are reported as skipped")
}

func TestFlattenHPDcacheFlistToFile(t *testing.T) {
	root := fixtureRoot(t)
	out := filepath.Join(t.TempDir(), "synth", "read.ys")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))

	_, _, err := run(t, "--print-incdir", filepath.Join(root, "rtl", "hpdcache.Flist"), out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "+incdir+"+root+"/rtl/include\n"+expectedScript(root), string(data))
}

func TestFlattenMatchesHandFlattenedList(t *testing.T) {
	root := fixtureRoot(t)

	nested, _, err := run(t, filepath.Join(root, "rtl", "hpdcache.Flist"))
	require.NoError(t, err)

	flat := strings.Join([]string{
		"$HPDCACHE_DIR/rtl/src/hpdcache_pkg.sv",
		"$HPDCACHE_DIR/rtl/src/common/hpdcache_fifo_reg.sv",
		"$HPDCACHE_DIR/rtl/src/common/hpdcache_sram.sv",
		"$HPDCACHE_DIR/rtl/src/common/macros/behav/hpdcache_sram_1rw.v",
		"$HPDCACHE_DIR/rtl/src/hpdcache_ctrl.sv",
		"$HPDCACHE_DIR/rtl/src/hpdcache.sv",
	}, "\n")

	var out bytes.Buffer
	res, err := flist.NewResolver(flist.Options{}).Resolve(context.Background(), strings.NewReader(flat), "flat", &out)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Commands)
	assert.Equal(t, nested, out.String())
}

func TestCheckHPDcacheFlist(t *testing.T) {
	root := fixtureRoot(t)

	stdout, _, err := run(t, "check", filepath.Join(root, "rtl", "hpdcache.Flist"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "hpdcache_common.Flist")
	assert.Contains(t, stdout, "Flist files: 2 (2 distinct)")
	assert.Contains(t, stdout, "Read commands: 6")
	assert.Contains(t, stdout, "Skipped lines: 1")
}

func TestFlattenMissingNestedInclude(t *testing.T) {
	root := fixtureRoot(t)

	_, _, err := run(t, filepath.Join(root, "rtl", "src", "common", "broken.Flist"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist.Flist not found")

	var incErr *flist.IncludeError
	require.ErrorAs(t, err, &incErr)
	assert.ErrorIs(t, err, flist.ErrFileNotFound)
	assert.Equal(t, 1, incErr.Line)
}
