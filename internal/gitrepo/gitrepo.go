// Package gitrepo publishes generated artifacts into the enclosing git
// repository.
package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotARepository indicates the output root is not inside a git
// repository; the caller logs this and moves on.
var ErrNotARepository = errors.New("not a git repository")

// Publisher stages, commits, and pushes artifact files.
type Publisher struct {
	root string
}

// NewPublisher returns a Publisher for the repository rooted at root.
func NewPublisher(root string) *Publisher {
	return &Publisher{root: root}
}

// Publish stages the given files (relative to the repository root), commits
// them when the staged tree changed, and optionally pushes. With force set,
// a commit is created even when nothing changed. It reports whether a
// commit was made.
func (p *Publisher) Publish(files []string, message string, push, force bool) (bool, error) {
	repo, err := git.PlainOpen(p.root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, ErrNotARepository
		}
		return false, fmt.Errorf("failed to open repository at %s: %w", p.root, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, file := range files {
		// Artifacts that a stage skipped are simply not staged.
		if _, err := os.Stat(filepath.Join(p.root, file)); err != nil {
			continue
		}
		if _, err := worktree.Add(filepath.ToSlash(file)); err != nil {
			return false, fmt.Errorf("failed to stage %s: %w", file, err)
		}
	}

	if !force {
		clean, err := stagedClean(worktree)
		if err != nil {
			return false, err
		}
		if clean {
			return false, nil
		}
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: force,
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	if push {
		if err := repo.Push(&git.PushOptions{}); err != nil && err != git.NoErrAlreadyUpToDate {
			return true, fmt.Errorf("failed to push: %w", err)
		}
	}
	return true, nil
}

// stagedClean reports whether the index holds no changes against HEAD.
func stagedClean(worktree *git.Worktree) (bool, error) {
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Unmodified && fileStatus.Staging != git.Untracked {
			return false, nil
		}
	}
	return true, nil
}
