package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Checker provides Git repository lookups used to locate the project root
type Checker struct {
	binary string
}

// NewChecker creates a new Git checker
func NewChecker() *Checker {
	return &Checker{binary: "git"}
}

// IsGitRepository checks if dir is within a Git repository
func (c *Checker) IsGitRepository(dir string) (bool, error) {
	cmd := exec.Command(c.binary, "-C", dir, "rev-parse", "--git-dir")
	err := cmd.Run()
	if err != nil {
		// Check if error is because git command not found
		if _, ok := err.(*exec.Error); ok {
			return false, fmt.Errorf("git not found in PATH")
		}
		// Not in a Git repository
		return false, nil
	}
	return true, nil
}

// GetGitRoot returns the absolute path to the Git repository root containing dir
func (c *Checker) GetGitRoot(dir string) (string, error) {
	cmd := exec.Command(c.binary, "-C", dir, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get Git root: %w", err)
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", fmt.Errorf("failed to get Git root: empty output")
	}
	return gitRoot, nil
}

// RootFinder adapts GetGitRoot to the func() (string, error) shape used by
// config.ResolveRoot, rooted at dir. A dir outside any repository is an error
// so the caller can fall back to another root.
func (c *Checker) RootFinder(dir string) func() (string, error) {
	return func() (string, error) {
		isGit, err := c.IsGitRepository(dir)
		if err != nil {
			return "", err
		}
		if !isGit {
			return "", fmt.Errorf("%s is not inside a Git repository", dir)
		}
		return c.GetGitRoot(dir)
	}
}
