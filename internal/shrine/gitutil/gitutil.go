// Package gitutil is the shrine's git collaborator: after a shrine write,
// `init --git` and, when the shrine's private `git.enabled` flag is set,
// the CLI commands that mutate the file in place (set, rm, import) stage
// the `shrine` file and commit it with a fixed message. Built on go-git, a pure-Go
// implementation, so committing never shells out to a `git` binary that
// might not be installed.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitShrine stages the `shrine` file inside dir and commits it with
// message, signed as name <email>. If dir is not (yet) a git repository, it
// is initialized first. If staging leaves the worktree clean (the file is
// already committed with identical content), no commit is made and nil is
// returned.
func CommitShrine(dir, filename, message, name, email string) error {
	repo, err := openOrInit(dir)
	if err != nil {
		return fmt.Errorf("git: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("git: %w", err)
	}

	if _, err := wt.Add(filename); err != nil {
		return fmt.Errorf("git: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("git: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	sig := &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
	if _, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("git: %w", err)
	}
	return nil
}

func openOrInit(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err == nil {
		return repo, nil
	}
	if err != git.ErrRepositoryNotExists {
		return nil, err
	}
	return git.PlainInit(dir, false)
}

// Signature derives a commit signature from the local user and hostname,
// matching the `user@host` authorship convention used for Secret.CreatedBy
// throughout this repository.
func Signature() (name, email string) {
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return user, fmt.Sprintf("%s@%s", user, host)
}

// AbsDir returns the absolute directory containing path, the repository root
// the commit helper operates against.
func AbsDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}
