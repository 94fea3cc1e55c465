//go:build cgo

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/diffdiagram/internal/config"
	"github.com/dusk-indust/diffdiagram/internal/export"
	"github.com/dusk-indust/diffdiagram/internal/vcs"
)

// copyFixture copies the users fixture into a temp dir outside any git
// work tree so git apply resolves paths against it.
func copyFixture(t *testing.T) string {
	t.Helper()
	src := filepath.Join("..", "..", "testdata", "fixtures", "users")
	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
	return dst
}

func fixturePatch(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "patches", "user_admin.patch"))
	require.NoError(t, err)
	return data
}

func newRunCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestMergeRunOptions_ConfigFallback(t *testing.T) {
	cmd := newRunCommand(t)
	cfg := &config.ProjectConfig{
		InstallMissing:     true,
		ParseTimeoutMicros: 250,
		Format:             "mermaid",
		GraphStore:         "graph.kuzu",
	}

	var opts runOptions
	require.NoError(t, mergeRunOptions(cmd, cfg, &opts))
	assert.True(t, opts.InstallMissing)
	assert.Equal(t, 250*time.Microsecond, opts.Timeout)
	assert.Equal(t, "mermaid", opts.Format)
	assert.Equal(t, "graph.kuzu", opts.GraphStore)
}

func TestMergeRunOptions_FlagsOverride(t *testing.T) {
	cmd := newRunCommand(t, "--install-missing=false", "--timeout=10", "--format=json", "--graph-store=other")
	cfg := &config.ProjectConfig{InstallMissing: true, ParseTimeoutMicros: 250, Format: "mermaid", GraphStore: "graph.kuzu"}

	var opts runOptions
	require.NoError(t, mergeRunOptions(cmd, cfg, &opts))
	assert.False(t, opts.InstallMissing)
	assert.Equal(t, 10*time.Microsecond, opts.Timeout)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "other", opts.GraphStore)
}

func TestMergeRunOptions_Invalid(t *testing.T) {
	var opts runOptions
	require.Error(t, mergeRunOptions(newRunCommand(t, "--format=dot"), &config.ProjectConfig{}, &opts))
	require.Error(t, mergeRunOptions(newRunCommand(t, "--timeout=-1"), &config.ProjectConfig{}, &opts))
}

func TestResolveRepository_Local(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	got, err := resolveRepository(ctx, vcs.Git{}, dir, "")
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = resolveRepository(ctx, vcs.Git{}, filepath.Join(dir, "missing"), "")
	require.Error(t, err)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = resolveRepository(ctx, vcs.Git{}, file, "")
	require.Error(t, err)
}

func TestReadPatch_Stdin(t *testing.T) {
	got, err := readPatch(context.Background(), vcs.Git{}, t.TempDir(), "-", strings.NewReader("patch text"))
	require.NoError(t, err)
	assert.Equal(t, "patch text", string(got))
}

func TestReadPatch_NotADiff(t *testing.T) {
	_, err := readPatch(context.Background(), vcs.Git{}, t.TempDir(), "main..dev", nil)
	require.ErrorIs(t, err, errNoDiff)
}

func TestReadPatch_File(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx := context.Background()
	repo := copyFixture(t)
	patchFile := filepath.Join(t.TempDir(), "change.patch")
	require.NoError(t, os.WriteFile(patchFile, fixturePatch(t), 0o644))

	got, err := readPatch(ctx, vcs.Git{}, repo, patchFile, nil)
	require.NoError(t, err)
	assert.Equal(t, fixturePatch(t), got)

	// The patch does not apply to an empty directory.
	_, err = readPatch(ctx, vcs.Git{}, t.TempDir(), patchFile, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not apply")
}

func TestRunCommand_JSON(t *testing.T) {
	repo := copyFixture(t)
	stdout, stderr, err := execute(t, bytes.NewReader(fixturePatch(t)),
		"run",
		"--repository", repo,
		"--diff", "-",
		"--grammar-dir", t.TempDir(),
		"--format", "json",
		"--color", "off",
	)
	require.NoError(t, err)

	var got export.GraphExport
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 2, got.Stats.FileCount)
	require.Len(t, got.Files, 2)
	assert.Len(t, got.Files[0].Edits, 2)
	assert.Contains(t, stderr, "a/model.go")
}
