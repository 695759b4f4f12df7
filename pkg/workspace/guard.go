// Package workspace restricts file tool operations to a root directory,
// preventing path traversal outside it.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard validates that file paths stay within a root directory.
type Guard struct {
	root string
}

// NewGuard creates a guard rooted at the given directory. The root is
// resolved to an absolute, symlink-evaluated path.
func NewGuard(root string) (*Guard, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace root cannot be empty")
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace root symlinks: %w", err)
	}

	return &Guard{root: evalPath}, nil
}

// Root returns the absolute workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Resolve converts a path to an absolute path within the workspace context.
// Relative paths are joined to the root; ~ expands to the home directory.
func (g *Guard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	expanded := path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	clean := filepath.Clean(expanded)
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(g.root, clean)
	}

	// Follow symlinks on the deepest existing ancestor so a link pointing
	// outside the root cannot smuggle a path in.
	resolved, err := evalSymlinksBestEffort(clean)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return resolved, nil
}

// Validate checks that the path resolves to a location inside the root.
func (g *Guard) Validate(path string) error {
	resolved, err := g.Resolve(path)
	if err != nil {
		return err
	}
	if !g.contains(resolved) {
		return fmt.Errorf("path %q is outside the workspace", path)
	}
	return nil
}

func (g *Guard) contains(absPath string) bool {
	if absPath == g.root {
		return true
	}
	return strings.HasPrefix(absPath, g.root+string(filepath.Separator))
}

// evalSymlinksBestEffort evaluates symlinks for the longest existing prefix
// of the path and rejoins the non-existent remainder unchanged.
func evalSymlinksBestEffort(path string) (string, error) {
	remainder := ""
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Join(current, remainder), nil
		}
		remainder = filepath.Join(filepath.Base(current), remainder)
		current = parent
	}
}
