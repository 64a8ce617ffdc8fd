package git

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// HeadCommit returns the HEAD commit hash of the repository containing dir.
// Parent directories are searched for the .git directory.
func HeadCommit(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", dir, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD at %s: %w", dir, err)
	}
	return ref.Hash().String(), nil
}
