// Package validate decides whether a file is structurally intact. Every
// validator returns a Result; faults are values, never panics, and never
// escape the per-file boundary.
package validate

import (
	"fmt"

	"github.com/fenilsonani/bytesweep/internal/classify"
)

// FaultKind categorizes why a file was judged invalid
type FaultKind int

const (
	NoFault FaultKind = iota
	IOFault
	DecodeFault
	ProbeFault
	SignatureMismatch
)

// String returns a human-readable fault kind
func (k FaultKind) String() string {
	switch k {
	case NoFault:
		return "ok"
	case IOFault:
		return "I/O fault"
	case DecodeFault:
		return "decode fault"
	case ProbeFault:
		return "probe fault"
	case SignatureMismatch:
		return "signature mismatch"
	default:
		return "unknown fault"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k FaultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fault describes a failed validation
type Fault struct {
	Kind  FaultKind
	Cause string
	Err   error
}

// Error implements the error interface
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Cause, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Cause)
}

// Unwrap returns the underlying error, if any
func (f *Fault) Unwrap() error {
	return f.Err
}

// Result is the verdict for a single file
type Result struct {
	Category classify.Category
	Valid    bool
	Fault    *Fault

	// Text only
	HeadRead bool
	Noise    NoiseScore

	// Audio and video only
	Duration float64
}

// Cause returns the fault description, or "" for valid files
func (r Result) Cause() string {
	if r.Fault == nil {
		return ""
	}
	return r.Fault.Error()
}

func valid(cat classify.Category) Result {
	return Result{Category: cat, Valid: true}
}

func invalid(cat classify.Category, kind FaultKind, cause string, err error) Result {
	return Result{
		Category: cat,
		Fault:    &Fault{Kind: kind, Cause: cause, Err: err},
	}
}
