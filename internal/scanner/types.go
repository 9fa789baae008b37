package scanner

import (
	"fmt"
	"time"
)

// FileInfo is a snapshot of one regular file taken during the walk. Every
// later access must tolerate the file having vanished since.
type FileInfo struct {
	Path    string    `json:"path" yaml:"path"`
	Dir     string    `json:"-" yaml:"-"`
	Name    string    `json:"-" yaml:"-"`
	Ext     string    `json:"-" yaml:"-"` // lowercased, with the dot
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// ScanResult represents the result of a scan operation
type ScanResult struct {
	Root       string
	Files      []FileInfo // walk order
	TotalSize  int64
	TotalCount int
	Skipped    int // non-regular entries and excluded files
	Errors     []error
}

// ScanError records a path the walk could not read
type ScanError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *ScanError) Unwrap() error {
	return e.Err
}
