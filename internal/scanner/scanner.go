// Package scanner walks a sweep root and snapshots every regular file in it.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/naming"
	"github.com/fenilsonani/bytesweep/internal/progress"
)

// progressEvery throttles progress updates during the walk
const progressEvery = 256

// Scanner lists the regular files under a root
type Scanner struct {
	excludes         []string
	progressReporter *progress.ProgressReporter
}

// New creates a new Scanner
func New(cfg *config.Config) *Scanner {
	return &Scanner{
		excludes: cfg.ExcludePatterns,
	}
}

// SetProgressReporter sets a custom progress reporter
func (s *Scanner) SetProgressReporter(pr *progress.ProgressReporter) {
	s.progressReporter = pr
}

// ResolveRoot makes root absolute, resolves symlinks and checks that it is
// a readable directory
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return resolved, nil
}

// Scan walks root. Only regular files are returned; symlinks, devices,
// sockets and pipes are skipped. Unreadable entries are recorded in
// ScanResult.Errors and the walk continues. Scan fails only when root
// itself is unusable or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	resolved, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Root:   resolved,
		Files:  make([]FileInfo, 0, 256),
		Errors: []error{},
	}

	start := time.Now()
	s.report(result, "", start, progress.PhaseScanning)

	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			result.Errors = append(result.Errors, &ScanError{Path: path, Err: err})
			if d != nil && d.IsDir() && path != resolved {
				return filepath.SkipDir
			}
			return nil
		}

		if path == resolved {
			return nil
		}

		if s.excluded(resolved, path, d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			result.Skipped++
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			result.Skipped++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// Vanished between listing and stat
			result.Errors = append(result.Errors, &ScanError{Path: path, Err: err})
			return nil
		}

		name := d.Name()
		result.Files = append(result.Files, FileInfo{
			Path:    path,
			Dir:     filepath.Dir(path),
			Name:    name,
			Ext:     naming.Ext(name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		result.TotalSize += info.Size()
		result.TotalCount++

		if result.TotalCount%progressEvery == 0 {
			s.report(result, path, start, progress.PhaseScanning)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	s.report(result, "", start, progress.PhaseScanning)
	return result, nil
}

// excluded matches patterns against the entry name and against the path
// relative to root
func (s *Scanner) excluded(root, path, name string) bool {
	if len(s.excludes) == 0 {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range s.excludes {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, rel); matched {
				return true
			}
		}
	}
	return false
}

func (s *Scanner) report(result *ScanResult, current string, start time.Time, phase progress.Phase) {
	if s.progressReporter == nil {
		return
	}

	s.progressReporter.Update(&progress.Progress{
		Phase:       phase,
		CurrentPath: current,
		Done:        result.TotalCount,
		Bytes:       result.TotalSize,
		StartTime:   start,
	})
}
