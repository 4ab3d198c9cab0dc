package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitShrine_InitializesRepoAndCommits(t *testing.T) {
	dir := t.TempDir()
	shrinePath := filepath.Join(dir, "shrine")
	require.NoError(t, os.WriteFile(shrinePath, []byte("v1"), 0600))

	require.NoError(t, CommitShrine(dir, "shrine", "Initialize shrine", "alice", "alice@host"))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Initialize shrine", commit.Message)
	assert.Equal(t, "alice", commit.Author.Name)
}

func TestCommitShrine_SecondCommitOnChange(t *testing.T) {
	dir := t.TempDir()
	shrinePath := filepath.Join(dir, "shrine")
	require.NoError(t, os.WriteFile(shrinePath, []byte("v1"), 0600))
	require.NoError(t, CommitShrine(dir, "shrine", "Initialize shrine", "alice", "alice@host"))

	require.NoError(t, os.WriteFile(shrinePath, []byte("v2"), 0600))
	require.NoError(t, CommitShrine(dir, "shrine", "Update shrine", "alice", "alice@host"))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	commits, err := repo.Log(&git.LogOptions{})
	require.NoError(t, err)

	var count int
	require.NoError(t, commits.ForEach(func(c *object.Commit) error { count++; return nil }))
	assert.Equal(t, 2, count)
}

func TestCommitShrine_NoChangeIsNoOp(t *testing.T) {
	dir := t.TempDir()
	shrinePath := filepath.Join(dir, "shrine")
	require.NoError(t, os.WriteFile(shrinePath, []byte("same"), 0600))
	require.NoError(t, CommitShrine(dir, "shrine", "Initialize shrine", "alice", "alice@host"))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head1, err := repo.Head()
	require.NoError(t, err)

	require.NoError(t, CommitShrine(dir, "shrine", "Update shrine", "alice", "alice@host"))
	head2, err := repo.Head()
	require.NoError(t, err)

	assert.Equal(t, head1.Hash(), head2.Hash())
}

func TestAbsDir(t *testing.T) {
	dir, err := AbsDir("some/relative/path/shrine")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "path", filepath.Base(dir))
}

func TestSignature_FallsBackWhenEnvUnset(t *testing.T) {
	t.Setenv("USER", "")
	name, email := Signature()
	assert.Equal(t, "unknown", name)
	assert.Contains(t, email, "unknown@")
}
