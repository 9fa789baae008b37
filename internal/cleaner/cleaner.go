// Package cleaner applies a sweep plan to the filesystem: every deletion
// first, then every rename, one item at a time.
package cleaner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fenilsonani/bytesweep/internal/filelock"
	"github.com/fenilsonani/bytesweep/internal/logging"
	"github.com/fenilsonani/bytesweep/internal/plan"
	"github.com/fenilsonani/bytesweep/internal/progress"
	"github.com/fenilsonani/bytesweep/internal/security"
)

// Result represents the outcome of executing a plan
type Result struct {
	PlanID        string            `json:"plan_id" yaml:"plan_id"`
	DryRun        bool              `json:"dry_run" yaml:"dry_run"`
	Deleted       []plan.Action     `json:"deleted" yaml:"deleted"`
	Renamed       []plan.Action     `json:"renamed" yaml:"renamed"`
	DeletedSize   int64             `json:"deleted_size" yaml:"deleted_size"`
	SkippedFiles  []string          `json:"skipped" yaml:"skipped"`
	SkippedReason map[string]string `json:"skipped_reason" yaml:"skipped_reason"`
	Errors        []*ActionError    `json:"errors" yaml:"errors"`
	Duration      time.Duration     `json:"duration" yaml:"duration"`
}

// Options configures a Cleaner
type Options struct {
	DryRun   bool
	Logger   *logging.Logger
	Progress *progress.ProgressReporter
}

// Cleaner executes plans with safeguards
type Cleaner struct {
	validator   *security.PathValidator
	dryRun      bool
	logger      *logging.Logger
	progress    *progress.ProgressReporter
	manifest    *Manifest
	retryDelays []time.Duration
}

// New creates a new Cleaner confined to the validator's root
func New(validator *security.PathValidator, opts Options) *Cleaner {
	return &Cleaner{
		validator: validator,
		dryRun:    opts.DryRun,
		logger:    opts.Logger,
		progress:  opts.Progress,
		manifest:  NewManifest(),
		retryDelays: []time.Duration{
			100 * time.Millisecond,
			500 * time.Millisecond,
			2 * time.Second,
		},
	}
}

// Execute applies p. Item failures are recorded in the result and never
// stop the run; the returned error is reserved for a plan that does not
// belong to this cleaner's root and for cancellation.
func (c *Cleaner) Execute(ctx context.Context, p *plan.Plan) (*Result, error) {
	if p.Root() != c.validator.Root() {
		return nil, fmt.Errorf("plan root %s does not match sweep root %s", p.Root(), c.validator.Root())
	}

	start := time.Now()
	result := &Result{
		PlanID:        p.ID(),
		DryRun:        c.dryRun,
		Deleted:       []plan.Action{},
		Renamed:       []plan.Action{},
		SkippedFiles:  []string{},
		SkippedReason: make(map[string]string),
		Errors:        []*ActionError{},
	}
	c.manifest.PlanID = p.ID()
	c.manifest.Root = p.Root()

	deletes, renames := p.Deletes(), p.Renames()
	total := len(deletes) + len(renames)
	done := 0

	report := func(path string) {
		c.progress.Update(&progress.Progress{
			Phase:       progress.PhaseExecuting,
			CurrentPath: path,
			Done:        done,
			Total:       total,
			Bytes:       result.DeletedSize,
			StartTime:   start,
		})
	}

	for _, a := range deletes {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("execution cancelled: %w", err)
		}
		report(a.File.Path)

		if c.dryRun {
			result.Deleted = append(result.Deleted, a)
			result.DeletedSize += a.File.Size
		} else if err := c.withRetry(ctx, func() *ActionError { return c.delete(a) }); err != nil {
			c.skip(result, err)
		} else {
			c.manifest.Add(a)
			result.Deleted = append(result.Deleted, a)
			result.DeletedSize += a.File.Size
			c.logger.Debug("deleted %s (%s)", a.File.Path, a.Reason)
		}
		done++
	}

	for _, a := range renames {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("execution cancelled: %w", err)
		}
		report(a.File.Path)

		if c.dryRun {
			result.Renamed = append(result.Renamed, a)
		} else if err := c.withRetry(ctx, func() *ActionError { return c.rename(a) }); err != nil {
			c.skip(result, err)
		} else {
			c.manifest.Add(a)
			result.Renamed = append(result.Renamed, a)
			c.logger.Debug("renamed %s -> %s", a.File.Path, a.NewName)
		}
		done++
	}

	result.Duration = time.Since(start)
	c.progress.Update(&progress.Progress{
		Phase:     progress.PhaseComplete,
		Done:      done,
		Total:     total,
		Bytes:     result.DeletedSize,
		StartTime: start,
	})
	return result, nil
}

func (c *Cleaner) skip(result *Result, err *ActionError) {
	result.Errors = append(result.Errors, err)
	result.SkippedFiles = append(result.SkippedFiles, err.Path)
	result.SkippedReason[err.Path] = err.UserMessage()
	if err.Reason == ErrorFileNotFound {
		c.logger.Debug("%s", err.Error())
		return
	}
	c.logger.Warn("%s", err.Error())
}

// withRetry runs fn until it succeeds, fails permanently or runs out of
// attempts. Only errors marked retryable (busy files) are retried.
func (c *Cleaner) withRetry(ctx context.Context, fn func() *ActionError) *ActionError {
	var lastErr *ActionError

	for attempt := 0; attempt <= len(c.retryDelays); attempt++ {
		lastErr = fn()
		if lastErr == nil || !lastErr.Retryable {
			return lastErr
		}
		if attempt == len(c.retryDelays) {
			break
		}

		timer := time.NewTimer(c.retryDelays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	// All retries exhausted - return last error
	return lastErr
}

// check re-verifies that a planned source is still the regular file that
// was scanned
func (c *Cleaner) check(a plan.Action) (os.FileInfo, *ActionError) {
	var err error
	if a.Kind == plan.Rename {
		err = c.validator.ValidateRename(a.File.Path, a.Target())
	} else {
		err = c.validator.ValidatePathForDeletion(a.File.Path)
	}
	if err != nil {
		return nil, &ActionError{Op: a.Kind, Path: a.File.Path, Target: a.Target(), Reason: ErrorInvalidPath, Original: err}
	}

	// Use Lstat to not follow symlinks (prevents TOCTOU attacks)
	info, err := os.Lstat(a.File.Path)
	if err != nil {
		actErr := CategorizeError(a.Kind, a.File.Path, err)
		actErr.Target = a.Target()
		return nil, actErr
	}

	if err := IsSafeToModify(a.File.Path); err != nil {
		if os.IsNotExist(err) {
			actErr := CategorizeError(a.Kind, a.File.Path, err)
			actErr.Target = a.Target()
			return nil, actErr
		}
		return nil, &ActionError{Op: a.Kind, Path: a.File.Path, Target: a.Target(), Reason: ErrorInvalidPath, Original: err}
	}

	if info.Size() != a.File.Size || !info.ModTime().Equal(a.File.ModTime) {
		return nil, &ActionError{
			Op:       a.Kind,
			Path:     a.File.Path,
			Target:   a.Target(),
			Reason:   ErrorChanged,
			Original: fmt.Errorf("size or modification time differs from scan"),
		}
	}
	return info, nil
}

func (c *Cleaner) delete(a plan.Action) *ActionError {
	if _, err := c.check(a); err != nil {
		return err
	}
	if err := os.Remove(a.File.Path); err != nil {
		return CategorizeError(a.Kind, a.File.Path, err)
	}
	return nil
}

func (c *Cleaner) rename(a plan.Action) *ActionError {
	info, actErr := c.check(a)
	if actErr != nil {
		return actErr
	}

	dst := a.Target()
	fail := func(err error) *ActionError {
		e := CategorizeError(a.Kind, a.File.Path, err)
		e.Target = dst
		return e
	}

	// A hard link to the survivor already sits at the target; dropping the
	// suffixed name leaves the same content under the base name.
	if dstInfo, err := os.Lstat(dst); err == nil && os.SameFile(info, dstInfo) {
		if err := os.Remove(a.File.Path); err != nil {
			return fail(err)
		}
		return nil
	}

	if err := renameNoReplace(a.File.Path, dst); err != nil {
		return fail(err)
	}
	return nil
}

// renameChecked is the portable no-clobber rename. It leaves a window
// between the check and the rename that renameat2 closes where available.
func renameChecked(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: errDestinationExists}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}

// GetManifest returns the manifest of applied actions
func (c *Cleaner) GetManifest() *Manifest {
	return c.manifest
}

// SaveManifest writes the manifest of applied actions to path
func (c *Cleaner) SaveManifest(path string) error {
	return c.manifest.Save(path)
}

// Manifest keeps track of applied actions
type Manifest struct {
	PlanID    string
	Root      string
	Entries   []ManifestEntry
	Timestamp time.Time
	TotalSize int64
}

// ManifestEntry represents one applied action
type ManifestEntry struct {
	Op        plan.Kind
	Path      string
	Target    string
	Size      int64
	Category  string
	AppliedAt time.Time
}

// NewManifest creates a new Manifest
func NewManifest() *Manifest {
	return &Manifest{
		Entries:   []ManifestEntry{},
		Timestamp: time.Now(),
	}
}

// Add adds an applied action to the manifest
func (m *Manifest) Add(a plan.Action) {
	m.Entries = append(m.Entries, ManifestEntry{
		Op:        a.Kind,
		Path:      a.File.Path,
		Target:    a.Target(),
		Size:      a.File.Size,
		Category:  a.Category.String(),
		AppliedAt: time.Now(),
	})
	if a.Kind == plan.Delete {
		m.TotalSize += a.File.Size
	}
}

// Save writes the manifest to path atomically
func (m *Manifest) Save(path string) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Sweep Manifest\n")
	fmt.Fprintf(&buf, "Plan: %s\n", m.PlanID)
	fmt.Fprintf(&buf, "Root: %s\n", m.Root)
	fmt.Fprintf(&buf, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Deleted Size: %d bytes\n", m.TotalSize)
	fmt.Fprintf(&buf, "Total Actions: %d\n\n", len(m.Entries))

	for _, e := range m.Entries {
		switch e.Op {
		case plan.Rename:
			fmt.Fprintf(&buf, "rename | %s -> %s | %s | %s\n",
				e.Path, e.Target, e.Category, e.AppliedAt.Format(time.RFC3339))
		default:
			fmt.Fprintf(&buf, "delete | %s | %d bytes | %s | %s\n",
				e.Path, e.Size, e.Category, e.AppliedAt.Format(time.RFC3339))
		}
	}

	return filelock.AtomicWrite(path, buf.Bytes())
}
