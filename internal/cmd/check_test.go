package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCommandPrintsTree(t *testing.T) {
	dir := workdir(t)
	writeFile(t, filepath.Join(dir, "ip", "leaf.f"), "leaf.sv\n")
	writeFile(t, filepath.Join(dir, "ip", "ip.f"), "-F ip/leaf.f\nip.sv\n")
	writeFile(t, filepath.Join(dir, "top.f"), "+incdir+inc\n-F ip/ip.f\ntop.sv\nnotes.txt\n")

	stdout, stderr, err := execute(t, "", "check", "top.f")
	require.NoError(t, err)

	assert.Contains(t, stdout, "top.f\n")
	assert.Contains(t, stdout, "└─ ip/ip.f\n")
	assert.Contains(t, stdout, "   └─ ip/leaf.f\n")
	assert.Contains(t, stdout, "Flist files: 3 (3 distinct)")
	assert.Contains(t, stdout, "Read commands: 3")
	assert.Contains(t, stdout, "Skipped lines: 1")
	assert.NotContains(t, stdout, "yosys", "check must not emit commands")
	assert.Contains(t, stderr, "notes.txt")
}

func TestCheckCommandReportsCircularInclude(t *testing.T) {
	dir := workdir(t)
	writeFile(t, filepath.Join(dir, "a.f"), "-F b.f\n")
	writeFile(t, filepath.Join(dir, "b.f"), "-F a.f\n")

	_, _, err := execute(t, "", "check", "a.f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check failed")
	assert.Contains(t, err.Error(), "circular include")
}

func TestCheckCommandRequiresOneArg(t *testing.T) {
	workdir(t)
	_, _, err := execute(t, "", "check")
	assert.Error(t, err)
}

func TestCheckCommandHonorsPersistentFlags(t *testing.T) {
	dir := workdir(t)
	writeFile(t, filepath.Join(dir, "a.f"), "-F b.f\n")
	writeFile(t, filepath.Join(dir, "b.f"), "x.sv\n")

	_, _, err := execute(t, "", "check", "--max-depth", "1", "a.f")
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "b.f"), "-F c.f\n")
	writeFile(t, filepath.Join(dir, "c.f"), "x.sv\n")
	_, _, err = execute(t, "", "check", "--max-depth", "1", "a.f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum include depth")
}

func TestCheckCommandUnlistedSources(t *testing.T) {
	dir := workdir(t)
	writeFile(t, filepath.Join(dir, "rtl", "top.sv"), "")
	writeFile(t, filepath.Join(dir, "rtl", "old_fifo.sv"), "")
	writeFile(t, filepath.Join(dir, "rtl", "tb", "tb_top.sv"), "")
	writeFile(t, filepath.Join(dir, "top.f"), "rtl/top.sv\n")

	stdout, _, err := execute(t, "", "check", "--unlisted", "rtl", "top.f")
	require.NoError(t, err)
	assert.Contains(t, stdout, ": 1\n  old_fifo.sv\n")
	assert.NotContains(t, stdout, "tb_top.sv", "tb is excluded by default")

	stdout, _, err = execute(t, "", "check", "--unlisted", "rtl", "--exclude-dir", "none", "top.f")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tb/tb_top.sv")
}
