package utils

import (
	"path/filepath"
	"strings"
)

// MinTerminalWidth is the narrowest terminal the confirm view lays out for
const MinTerminalWidth = 60

// TruncatePath shortens path to at most maxWidth bytes. The file name is
// kept whole when it fits, and the directory is cut from the front so the
// nearest parents stay visible.
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if maxWidth < 10 {
		return "..."
	}

	dir, file := filepath.Split(path)
	if len(file)+4 > maxWidth {
		return "..." + file[len(file)-(maxWidth-3):]
	}

	keep := maxWidth - len(file) - 3
	dir = dir[len(dir)-keep:]
	// Prefer cutting at a separator
	if i := strings.IndexRune(dir, filepath.Separator); i > 0 && i < len(dir)-1 {
		dir = dir[i:]
	}
	return "..." + dir + file
}

// TruncateMiddle truncates a string from the middle, preserving start and end
func TruncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 10 {
		if maxLen < 3 {
			return "..."
		}
		return s[:maxLen-3] + "..."
	}

	// Show equal parts from start and end
	sideLen := (maxLen - 3) / 2
	return s[:sideLen] + "..." + s[len(s)-sideLen:]
}
