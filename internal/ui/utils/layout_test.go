package utils

import (
	"strings"
	"testing"
)

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		want     string
	}{
		{"fits", "/a/b/c.txt", 20, "/a/b/c.txt"},
		{"tiny width", "/a/very/long/path/file.txt", 5, "..."},
		{"cuts directory at separator", "/home/user/photos/holiday/img_2.png", 24, ".../holiday/img_2.png"},
		{"long file name", "/x/" + strings.Repeat("n", 40) + ".txt", 20, "..." + strings.Repeat("n", 13) + ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.path, tt.maxWidth)
			if got != tt.want {
				t.Errorf("TruncatePath(%q, %d) = %q, want %q", tt.path, tt.maxWidth, got, tt.want)
			}
			if len(got) > tt.maxWidth && tt.maxWidth >= 10 {
				t.Errorf("result %q longer than %d", got, tt.maxWidth)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := TruncateMiddle("short", 10); got != "short" {
		t.Errorf("TruncateMiddle(short) = %q", got)
	}
	if got := TruncateMiddle("abcdefghijklmnopqrstuvwxyz", 13); got != "abcde...vwxyz" {
		t.Errorf("TruncateMiddle() = %q, want abcde...vwxyz", got)
	}
	if got := TruncateMiddle("abcdefghijkl", 6); got != "abc..." {
		t.Errorf("TruncateMiddle() = %q, want abc...", got)
	}
}
