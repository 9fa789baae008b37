package progress

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSubscribeReceivesUpdates(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()

	p := &Progress{Phase: PhaseScanning, Done: 3}
	pr.Update(p)

	select {
	case got := <-ch:
		if got != p {
			t.Errorf("received %+v, want %+v", got, p)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	if pr.Current() != p {
		t.Error("Current should return the latest update")
	}

	pr.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
}

func TestUpdateNeverBlocks(t *testing.T) {
	pr := NewProgressReporter()
	_ = pr.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pr.Update(&Progress{Phase: PhaseValidating, Done: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update blocked on a full listener")
	}
}

func TestNilReporterUpdate(t *testing.T) {
	var pr *ProgressReporter
	pr.Update(&Progress{Phase: PhaseScanning})
}

func TestFormat(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name string
		p    *Progress
		want string
	}{
		{"nil", nil, "Initializing..."},
		{"scanning", &Progress{Phase: PhaseScanning, Done: 12, StartTime: start}, "Scanning... 12 files"},
		{"validating", &Progress{Phase: PhaseValidating, Done: 5, Total: 10, StartTime: start}, "5/10 (50%)"},
		{"resolving unknown total", &Progress{Phase: PhaseResolving, Done: 7, StartTime: start}, "Resolving... 7"},
		{"executing", &Progress{Phase: PhaseExecuting, Done: 1, Total: 4, StartTime: start}, "Applying... 1/4 (25%)"},
		{"complete", &Progress{Phase: PhaseComplete, Done: 9, StartTime: start}, "Done: 9 files"},
		{"error", &Progress{Phase: PhaseError, Error: errors.New("boom")}, "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.p)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Format() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "2s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
