// Package testutil provides test helpers and fixtures for bytesweep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"bytes"
	"crypto/rand"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// TestFixture holds the root of a throwaway tree to sweep
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)
}

// NewFixture creates a new test fixture. RootDir is resolved through
// symlinks so paths compare equal to what the scanner reports.
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}

	return &TestFixture{T: t, RootDir: root}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateText creates a text file with content
func (f *TestFixture) CreateText(relPath, content string) string {
	f.T.Helper()
	return f.CreateFile(relPath, []byte(content))
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	oldTime := time.Now().Add(-age)

	if err := os.Chtimes(fullPath, oldTime, oldTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateRandomFile creates a file with random content
func (f *TestFixture) CreateRandomFile(relPath string, size int) string {
	f.T.Helper()
	content := make([]byte, size)
	rand.Read(content)
	return f.CreateFile(relPath, content)
}

// CreatePNG writes a small, fully decodable PNG
func (f *TestFixture) CreatePNG(relPath string) string {
	f.T.Helper()
	return f.CreateFile(relPath, PNGBytes(f.T, 4, 4))
}

// CreateTruncatedPNG writes a PNG cut short after its header chunk, the
// typical shape of an interrupted copy
func (f *TestFixture) CreateTruncatedPNG(relPath string) string {
	f.T.Helper()
	data := PNGBytes(f.T, 16, 16)
	return f.CreateFile(relPath, data[:40])
}

// CreateZip writes a file that starts with a zip local-file header
func (f *TestFixture) CreateZip(relPath string) string {
	f.T.Helper()
	return f.CreateFile(relPath, append(ZipHeader(), bytes.Repeat([]byte{0x11}, 64)...))
}

// CreateVariants creates base and each numbered variant of it with the
// same content, e.g. CreateVariants("notes.txt", data, 1, 2) creates
// notes.txt, notes_1.txt and notes_2.txt.
func (f *TestFixture) CreateVariants(relBase string, content []byte, suffixes ...int) []string {
	f.T.Helper()

	paths := []string{f.CreateFile(relBase, content)}
	ext := filepath.Ext(relBase)
	stem := strings.TrimSuffix(relBase, ext)
	for _, n := range suffixes {
		paths = append(paths, f.CreateFile(stem+"_"+strconv.Itoa(n)+ext, content))
	}
	return paths
}

// =============================================================================
// Content Helpers
// =============================================================================

// PNGBytes encodes a w x h opaque PNG
func PNGBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// ZipHeader returns the four magic bytes of a zip local-file header
func ZipHeader() []byte {
	return []byte{0x50, 0x4b, 0x03, 0x04}
}

// Binary returns n bytes outside the printable ASCII range
func Binary(n int) []byte {
	return bytes.Repeat([]byte{0x00, 0x01, 0xfe, 0xff}, (n+3)/4)[:n]
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSymlink creates a symbolic link
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := filepath.Join(f.RootDir, linkPath)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}

	return fullLinkPath
}

// CreateReadOnlyDir makes an existing fixture directory read-only; files
// inside it can no longer be deleted or renamed
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	// Register cleanup to restore permissions so TempDir cleanup works
	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// RelPath returns the relative path from the fixture root
func (f *TestFixture) RelPath(fullPath string) string {
	rel, _ := filepath.Rel(f.RootDir, fullPath)
	return rel
}

// Tree lists every regular file under the root as slash-separated
// relative paths, sorted
func (f *TestFixture) Tree() []string {
	f.T.Helper()

	var out []string
	err := filepath.Walk(f.RootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			out = append(out, filepath.ToSlash(f.RelPath(path)))
		}
		return nil
	})
	if err != nil {
		f.T.Fatalf("failed to walk fixture: %v", err)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// AssertContent fails the test unless path holds want
func (f *TestFixture) AssertContent(path string, want []byte) {
	f.T.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		f.T.Errorf("failed to read %s: %v", path, err)
		return
	}
	if !bytes.Equal(got, want) {
		f.T.Errorf("%s content = %q, want %q", path, got, want)
	}
}

// AssertTree fails the test unless the fixture holds exactly want
func (f *TestFixture) AssertTree(want ...string) {
	f.T.Helper()
	got := f.Tree()
	sort.Strings(want)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		f.T.Errorf("tree mismatch\n got: %v\nwant: %v", got, want)
	}
}

// =============================================================================
// Utility Functions
// =============================================================================

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}
