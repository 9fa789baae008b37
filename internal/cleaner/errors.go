package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/fenilsonani/bytesweep/internal/plan"
)

// ErrorReason categorizes why an action failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorInvalidPath
	ErrorDestinationExists
	ErrorChanged
	ErrorUnknown
)

// errDestinationExists marks a rename whose target appeared after planning
var errDestinationExists = errors.New("destination exists")

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorIsDirectory:
		return "Is a directory"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorDestinationExists:
		return "Destination exists"
	case ErrorChanged:
		return "Changed since planning"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// MarshalText implements encoding.TextMarshaler
func (e ErrorReason) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ActionError represents a detailed failure of one planned action
type ActionError struct {
	Op        plan.Kind   `json:"op" yaml:"op"`
	Path      string      `json:"path" yaml:"path"`
	Target    string      `json:"target,omitempty" yaml:"target,omitempty"`
	Reason    ErrorReason `json:"reason" yaml:"reason"`
	Original  error       `json:"-" yaml:"-"`
	Retryable bool        `json:"-" yaml:"-"`
}

// Error implements the error interface
func (e *ActionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s -> %s: %s (%v)", e.Op, e.Path, e.Target, e.Reason, e.Original)
	}
	return fmt.Sprintf("%s %s: %s (%v)", e.Op, e.Path, e.Reason, e.Original)
}

// Unwrap returns the underlying error
func (e *ActionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *ActionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("⚠️  Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("⚠️  File is being used: %s (close the application and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("ℹ️  Already gone: %s", e.Path)
	case ErrorIsDirectory:
		return fmt.Sprintf("⚠️  Is a directory: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("❌ Invalid or unsafe path: %s", e.Path)
	case ErrorDestinationExists:
		return fmt.Sprintf("⚠️  Not renamed, %s already exists: %s", e.Target, e.Path)
	case ErrorChanged:
		return fmt.Sprintf("⚠️  Modified since the plan was made: %s", e.Path)
	default:
		return fmt.Sprintf("❌ Error on %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized ActionError
func CategorizeError(op plan.Kind, path string, err error) *ActionError {
	if err == nil {
		return nil
	}

	actErr := &ActionError{
		Op:       op,
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	if errors.Is(err, errDestinationExists) || errors.Is(err, os.ErrExist) {
		actErr.Reason = ErrorDestinationExists
		return actErr
	}

	// Check if file not found
	if os.IsNotExist(err) {
		actErr.Reason = ErrorFileNotFound
		return actErr
	}

	// Check if permission error
	if os.IsPermission(err) {
		actErr.Reason = ErrorPermissionDenied
		return actErr
	}

	// Check syscall errors
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			actErr.Reason = ErrorPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			actErr.Reason = ErrorFileInUse
			actErr.Retryable = true
		case syscall.ENOENT:
			actErr.Reason = ErrorFileNotFound
		case syscall.EISDIR, syscall.ENOTEMPTY:
			actErr.Reason = ErrorIsDirectory
		case syscall.EEXIST:
			actErr.Reason = ErrorDestinationExists
		default:
			actErr.Reason = ErrorUnknown
		}
		return actErr
	}

	return actErr
}

// GroupErrors groups action errors by reason
func GroupErrors(errors []*ActionError) map[ErrorReason][]*ActionError {
	grouped := make(map[ErrorReason][]*ActionError)
	for _, err := range errors {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errors []*ActionError) string {
	if len(errors) == 0 {
		return ""
	}

	grouped := GroupErrors(errors)
	summary := "\n⚠️  Issues encountered:\n"

	// Permission denied
	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		summary += fmt.Sprintf("   ├─ Permission denied: %d files\n", len(perms))
		summary += "   │  └─ Tip: Check directory write permissions\n"
	}

	// File in use
	if busy, ok := grouped[ErrorFileInUse]; ok {
		summary += fmt.Sprintf("   ├─ File in use: %d files\n", len(busy))
		summary += "   │  └─ Tip: Close applications and retry\n"
	}

	// File not found
	if notFound, ok := grouped[ErrorFileNotFound]; ok {
		summary += fmt.Sprintf("   ├─ Already gone: %d files\n", len(notFound))
	}

	if exists, ok := grouped[ErrorDestinationExists]; ok {
		summary += fmt.Sprintf("   ├─ Rename target appeared: %d files\n", len(exists))
		summary += "   │  └─ Tip: Run bytesweep again to re-plan\n"
	}

	if changed, ok := grouped[ErrorChanged]; ok {
		summary += fmt.Sprintf("   ├─ Changed since planning: %d files\n", len(changed))
	}

	// Directories and unsafe paths
	if dirs, ok := grouped[ErrorIsDirectory]; ok {
		summary += fmt.Sprintf("   ├─ Directories: %d items\n", len(dirs))
	}
	if invalid, ok := grouped[ErrorInvalidPath]; ok {
		summary += fmt.Sprintf("   ├─ Unsafe paths: %d files\n", len(invalid))
	}

	// Unknown errors
	if unknown, ok := grouped[ErrorUnknown]; ok {
		summary += fmt.Sprintf("   └─ Other errors: %d files\n", len(unknown))
	}

	return summary
}
