package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ErrNotRepository is returned when no repository encloses the given path.
var ErrNotRepository = errors.New("not in a git repository")

// Repo is an opened working-tree repository.
type Repo struct {
	repo *git.Repository
	root string
}

// Open finds the repository containing path, walking up parent directories.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	repository, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	return &Repo{repo: repository, root: wt.Filesystem.Root()}, nil
}

// Root returns the working-tree root.
func (r *Repo) Root() string { return r.root }

// HooksDir returns the directory git reads hook scripts from.
func (r *Repo) HooksDir() string {
	if st, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return filepath.Join(st.Filesystem().Root(), "hooks")
	}
	return filepath.Join(r.root, ".git", "hooks")
}

// ChangedFiles lists slash-separated paths, relative to Root, that are added,
// modified, renamed or untracked in the index or working tree. Deleted files are
// omitted. The result is sorted.
func (r *Repo) ChangedFiles() ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	var files []string
	for path, st := range status {
		if st.Staging == git.Deleted || st.Worktree == git.Deleted {
			continue
		}
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
