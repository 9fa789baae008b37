package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"

	"github.com/fenilsonani/bytesweep/internal/progress"
	uiutils "github.com/fenilsonani/bytesweep/internal/ui/utils"
)

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveProgress draws a single self-overwriting status line
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	bar        bprogress.Model
	termWidth  int
	enabled    bool
	drawn      bool
	frame      int
	lastUpdate time.Time
}

// NewLiveProgress creates a status line on f. It is disabled unless f is
// a terminal.
func NewLiveProgress(f *os.File) *LiveProgress {
	fd := int(f.Fd())
	enabled := term.IsTerminal(fd)

	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	return newLiveProgress(f, width, enabled)
}

func newLiveProgress(out io.Writer, width int, enabled bool) *LiveProgress {
	bar := bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithoutPercentage())
	bar.Width = 20
	return &LiveProgress{
		out:       out,
		bar:       bar,
		termWidth: width,
		enabled:   enabled,
	}
}

// Update redraws the line for p
func (lp *LiveProgress) Update(p *progress.Progress) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || p == nil {
		return
	}

	// Throttle updates to avoid flickering (max 10 updates per second)
	now := time.Now()
	final := p.Phase == progress.PhaseComplete || p.Phase == progress.PhaseError
	if !final && now.Sub(lp.lastUpdate) < 100*time.Millisecond {
		return
	}
	lp.lastUpdate = now
	lp.render(p)
}

func (lp *LiveProgress) render(p *progress.Progress) {
	width := lp.termWidth - 2

	line := spinner[lp.frame%len(spinner)] + " " + progress.Format(p)
	lp.frame++
	if p.CurrentPath != "" {
		line += "  " + p.CurrentPath
	}

	// The bar is styled, so it is measured by its cell width, not its bytes
	bar := ""
	if p.Total > 0 && width >= lp.bar.Width+40 {
		bar = lp.bar.ViewAs(float64(p.Done)/float64(p.Total)) + " "
		width -= lp.bar.Width + 1
	}

	fmt.Fprintf(lp.out, "\r\033[K%s%s", bar, uiutils.TruncateMiddle(line, width))
	lp.drawn = true
}

// Watch renders every update published by pr until the returned stop
// function is called. stop also clears the line.
func (lp *LiveProgress) Watch(pr *progress.ProgressReporter) (stop func()) {
	ch := pr.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for p := range ch {
			lp.Update(p)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			pr.Unsubscribe(ch)
			<-done
			lp.Finish()
		})
	}
}

// Finish clears the status line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if !lp.enabled || !lp.drawn {
		return
	}
	fmt.Fprint(lp.out, "\r\033[K")
	lp.drawn = false
}

// SetEnabled enables or disables live progress
func (lp *LiveProgress) SetEnabled(enabled bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lp.enabled = enabled
}

// Enabled reports whether the line is drawn at all
func (lp *LiveProgress) Enabled() bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.enabled
}
