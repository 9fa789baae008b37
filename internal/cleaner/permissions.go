package cleaner

import (
	"fmt"
	"os"
)

// IsSpecialFile checks if a path is a special file (device, socket, pipe)
// or a symlink. Symlinks are never followed.
func IsSpecialFile(path string) (bool, error) {
	info, err := os.Lstat(path) // Use Lstat to not follow symlinks
	if err != nil {
		return false, err
	}

	mode := info.Mode()

	// Check for special file types
	switch {
	case mode&os.ModeCharDevice != 0:
		return true, fmt.Errorf("is a character device")
	case mode&os.ModeDevice != 0:
		return true, fmt.Errorf("is a device file")
	case mode&os.ModeSocket != 0:
		return true, fmt.Errorf("is a socket")
	case mode&os.ModeNamedPipe != 0:
		return true, fmt.Errorf("is a named pipe (FIFO)")
	case mode&os.ModeSymlink != 0:
		return true, fmt.Errorf("is a symlink")
	case mode.IsDir():
		return true, fmt.Errorf("is a directory")
	}

	return false, nil
}

// IsSafeToModify performs safety checks on a file before it is deleted or
// renamed
func IsSafeToModify(path string) error {
	// Check if it's a special file
	isSpecial, err := IsSpecialFile(path)
	if isSpecial {
		return fmt.Errorf("refusing to modify special file: %w", err)
	}
	return err
}
