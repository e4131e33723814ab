package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, a := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := execute(context.Background(), cmd, a)
	return out.String(), err
}

func TestCLIFileLifecycle(t *testing.T) {
	card := t.TempDir()
	host := t.TempDir()
	src := filepath.Join(host, "save.bin")
	require.NoError(t, os.WriteFile(src, []byte("hello card"), 0o644))

	_, err := runCLI(t, "-r", card, "--no-progress", "mkdir", "games/slot1")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(card, "games", "slot1"))

	_, err = runCLI(t, "-r", card, "--no-progress", "--checksum", "sha256", "put", src, "games/slot1/save.bin")
	require.NoError(t, err)

	out, err := runCLI(t, "-r", card, "cat", "--offset", "6", "games/slot1/save.bin")
	require.NoError(t, err)
	assert.Equal(t, "card", out)

	out, err = runCLI(t, "-r", card, "cat", "--length", "5", "games/slot1/save.bin")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = runCLI(t, "-r", card, "stat", "games/slot1/save.bin")
	require.NoError(t, err)
	assert.Contains(t, out, "file\t10")

	out, err = runCLI(t, "-r", card, "ls")
	require.NoError(t, err)
	assert.Equal(t, "games/slot1/save.bin\n", out)

	dst := filepath.Join(host, "out.bin")
	_, err = runCLI(t, "-r", card, "--no-progress", "get", "games/slot1/save.bin", dst)
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello card", string(data))

	_, err = runCLI(t, "-r", card, "rm", "games/slot1/save.bin")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(card, "games", "slot1", "save.bin"))
}

func TestCLIRmdirPrune(t *testing.T) {
	card := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(card, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(card, "a", "b", "f"), []byte("x"), 0o644))

	_, err := runCLI(t, "-r", card, "rmdir", "a")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(card, "a", "b"))

	require.NoError(t, os.WriteFile(filepath.Join(card, "a", "b", "f"), []byte("x"), 0o644))
	_, err = runCLI(t, "-r", card, "--prune", "rmdir", "a")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(card, "a"))
}

func TestCLIMissingCard(t *testing.T) {
	_, err := runCLI(t, "-r", filepath.Join(t.TempDir(), "absent"), "init")
	require.Error(t, err)
}

func TestCLIConfigFile(t *testing.T) {
	card := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "fatfs.yaml")
	cfg := "mount_point: " + card + "\nlog_format: json\nno_progress: true\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := runCLI(t, "-c", cfgPath, "init")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "storage ready: "))
}

func TestCLIManifest(t *testing.T) {
	card := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(card, "a.txt"), []byte("aaa"), 0o644))

	_, err := runCLI(t, "-r", card, "--checksum", "sha1", "manifest", "save", "--name", "first")
	require.NoError(t, err)

	out, err := runCLI(t, "-r", card, "manifest", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "7e240de74fb1ed08fa08d38063f6a6a91462a815")

	out, err = runCLI(t, "-r", card, "manifest", "diff")
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)

	require.NoError(t, os.WriteFile(filepath.Join(card, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(card, "a.txt"), []byte("changed"), 0o644))
	out, err = runCLI(t, "-r", card, "manifest", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "+ b.txt")
	assert.Contains(t, out, "~ a.txt")
}

func TestCLIManifestDiffHonoursExcludes(t *testing.T) {
	card := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(card, "a.sav"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(card, "scratch.tmp"), []byte("t"), 0o644))

	_, err := runCLI(t, "-r", card, "manifest", "save", "--name", "m", "--exclude", "*.tmp")
	require.NoError(t, err)

	out, err := runCLI(t, "-r", card, "manifest", "diff")
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)

	out, err = runCLI(t, "-r", card, "manifest", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "scratch.tmp")
}

func TestCLIClosesLogFileOnFailure(t *testing.T) {
	card := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "fatfs.log")

	cmd, a := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-r", card, "--log-file", logPath, "rm", "missing.sav"})
	err := execute(context.Background(), cmd, a)
	require.Error(t, err)
	assert.Nil(t, a.logger)
	assert.FileExists(t, logPath)
	assert.NoError(t, a.close())
}
