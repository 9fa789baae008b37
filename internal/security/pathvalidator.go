package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathValidator handles secure path validation for file operations. Every
// mutation bytesweep performs must stay inside the sweep root.
type PathValidator struct {
	root           string
	protectedPaths []string
}

// NewPathValidator creates a new PathValidator confined to root, with the
// default protected system paths. The root must already exist.
func NewPathValidator(root string) (*PathValidator, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root symlinks: %w", err)
	}

	return &PathValidator{
		root: filepath.Clean(resolved),
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib64",
			"/proc",
			"/root",
			"/sbin",
			"/sys",
			"/usr",
			"/var",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library/System",
		},
	}, nil
}

// Root returns the resolved sweep root
func (pv *PathValidator) Root() string {
	return pv.root
}

// ValidatePathForDeletion performs the checks required before a file is
// deleted or renamed away.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	// Step 1: Path must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	// Step 2: Reject paths that clean to something else (../, //, trailing /)
	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	// Step 3: Control characters never appear in names we scanned
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains dangerous characters: %q", path)
	}

	// Step 4: Resolve the parent directory. The file itself is not followed,
	// so a file replaced by a symlink is still judged by where it lives.
	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to resolve parent directory: %w", err)
	}
	resolved := filepath.Join(parent, filepath.Base(path))

	// Step 5: Confine to the sweep root
	if resolved == pv.root {
		return fmt.Errorf("refusing to touch the sweep root: %s", path)
	}
	if !pv.within(resolved) {
		return fmt.Errorf("path escapes sweep root %s: %s", pv.root, path)
	}

	// Step 6: Check against protected paths
	return pv.checkProtectedPaths(resolved)
}

// ValidateRename checks both ends of a rename. Renames never leave the
// directory of the source file.
func (pv *PathValidator) ValidateRename(src, dst string) error {
	if err := pv.ValidatePathForDeletion(src); err != nil {
		return err
	}
	if filepath.Dir(src) != filepath.Dir(dst) {
		return fmt.Errorf("rename must stay in the same directory: %s -> %s", src, dst)
	}
	return pv.ValidatePathForDeletion(dst)
}

func (pv *PathValidator) within(path string) bool {
	rel, err := filepath.Rel(pv.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkProtectedPaths validates that a path is not in a protected system directory
func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	for _, protected := range pv.protectedPaths {
		// Exact match
		if cleanPath == protected {
			return fmt.Errorf("refusing to delete protected path: %s", cleanPath)
		}

		// Entries directly under a protected directory are off limits
		if strings.HasPrefix(cleanPath, protected+"/") {
			rel, _ := filepath.Rel(protected, cleanPath)
			if !strings.Contains(rel, "/") {
				return fmt.Errorf("refusing to delete critical system path: %s", cleanPath)
			}
		}
	}

	return nil
}

// ValidateGlobPattern validates that a glob pattern is safe
func ValidateGlobPattern(pattern string) error {
	if strings.Contains(pattern, "..") {
		return fmt.Errorf("glob pattern contains directory traversal: %s", pattern)
	}

	// Try to match the pattern to ensure it's valid
	if _, err := filepath.Match(pattern, "test"); err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	return nil
}
