package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/bytesweep/pkg/utils"
)

// Phase represents the current phase of a sweep
type Phase string

const (
	PhaseScanning   Phase = "scanning"
	PhaseValidating Phase = "validating"
	PhaseResolving  Phase = "resolving"
	PhaseExecuting  Phase = "executing"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// Progress is a snapshot of sweep progress
type Progress struct {
	Phase       Phase
	CurrentPath string
	Done        int
	Total       int // 0 while unknown
	Bytes       int64
	StartTime   time.Time
	Error       error
}

// ProgressReporter provides thread-safe progress reporting
type ProgressReporter struct {
	current   *Progress
	mu        sync.RWMutex
	listeners []chan *Progress
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		listeners: make([]chan *Progress, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (pr *ProgressReporter) Subscribe() <-chan *Progress {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan *Progress, 10)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (pr *ProgressReporter) Unsubscribe(ch <-chan *Progress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// Update records p and notifies listeners. A nil reporter ignores updates.
func (pr *ProgressReporter) Update(p *Progress) {
	if pr == nil {
		return
	}

	// Sends are non-blocking, so holding the lock keeps Unsubscribe from
	// closing a channel mid-send
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.current = p

	// Notify all listeners (non-blocking)
	for _, listener := range pr.listeners {
		select {
		case listener <- p:
		default:
			// Skip if channel is full
		}
	}
}

// Current returns the latest progress snapshot
func (pr *ProgressReporter) Current() *Progress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.current
}

// Format returns a human-readable progress line
func Format(p *Progress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseScanning:
		return fmt.Sprintf("Scanning... %d files (%s) [%s]",
			p.Done, utils.FormatBytes(p.Bytes), FormatDuration(elapsed))
	case PhaseValidating:
		return fmt.Sprintf("Validating... %s%s", counter(p), eta(p, elapsed))
	case PhaseResolving:
		return fmt.Sprintf("Resolving... %s", counter(p))
	case PhaseExecuting:
		return fmt.Sprintf("Applying... %s%s", counter(p), eta(p, elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Done: %d files in %s", p.Done, FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Error: %v", p.Error)
	default:
		return "Working..."
	}
}

func counter(p *Progress) string {
	if p.Total <= 0 {
		return fmt.Sprintf("%d", p.Done)
	}
	return fmt.Sprintf("%d/%d (%d%%)", p.Done, p.Total, p.Done*100/p.Total)
}

func eta(p *Progress, elapsed time.Duration) string {
	if p.Done == 0 || p.Total <= p.Done {
		return ""
	}
	avg := elapsed / time.Duration(p.Done)
	remaining := time.Duration(p.Total-p.Done) * avg
	return fmt.Sprintf(" ETA: %s", FormatDuration(remaining))
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
