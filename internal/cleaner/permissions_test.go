package cleaner

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestIsSpecialFile(t *testing.T) {
	testDir := t.TempDir()

	tests := []struct {
		name          string
		setup         func() string // Returns path to test file
		isSpecial     bool
		errorContains string
	}{
		{
			name: "regular file",
			setup: func() string {
				path := filepath.Join(testDir, "regular.txt")
				os.WriteFile(path, []byte("test"), 0644)
				return path
			},
			isSpecial: false,
		},
		{
			name: "directory",
			setup: func() string {
				path := filepath.Join(testDir, "regular-dir")
				os.Mkdir(path, 0755)
				return path
			},
			isSpecial:     true,
			errorContains: "directory",
		},
		{
			name: "symlink to regular file",
			setup: func() string {
				target := filepath.Join(testDir, "symlink-target.txt")
				os.WriteFile(target, []byte("test"), 0644)

				symlinkPath := filepath.Join(testDir, "symlink.txt")
				os.Symlink(target, symlinkPath)
				return symlinkPath
			},
			isSpecial:     true, // Never followed
			errorContains: "symlink",
		},
		{
			name: "named pipe",
			setup: func() string {
				path := filepath.Join(testDir, "fifo")
				if err := syscall.Mkfifo(path, 0644); err != nil {
					t.Skipf("mkfifo unavailable: %v", err)
				}
				return path
			},
			isSpecial:     true,
			errorContains: "named pipe",
		},
		{
			name: "non-existent file",
			setup: func() string {
				return filepath.Join(testDir, "non-existent-special.txt")
			},
			isSpecial: false, // Will return error, but not special
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testPath := tt.setup()

			isSpecial, err := IsSpecialFile(testPath)

			if isSpecial != tt.isSpecial {
				t.Errorf("IsSpecialFile(%s) = %v, want %v", testPath, isSpecial, tt.isSpecial)
			}

			if tt.errorContains != "" {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errorContains)
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
				}
			}
		})
	}
}

func TestIsSafeToModify(t *testing.T) {
	testDir := t.TempDir()

	tests := []struct {
		name      string
		setup     func() string
		shouldErr bool
	}{
		{
			name: "regular file - safe",
			setup: func() string {
				path := filepath.Join(testDir, "safe.txt")
				os.WriteFile(path, []byte("test"), 0644)
				return path
			},
			shouldErr: false,
		},
		{
			name: "symlink - unsafe",
			setup: func() string {
				target := filepath.Join(testDir, "target.txt")
				os.WriteFile(target, []byte("test"), 0644)
				link := filepath.Join(testDir, "link.txt")
				os.Symlink(target, link)
				return link
			},
			shouldErr: true,
		},
		{
			name: "non-existent file",
			setup: func() string {
				return filepath.Join(testDir, "non-existent.txt")
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testPath := tt.setup()

			err := IsSafeToModify(testPath)

			if tt.shouldErr {
				if err == nil {
					t.Errorf("Expected error for %s, got nil", tt.name)
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error for %s, got: %v", tt.name, err)
				}
			}
		})
	}
}
