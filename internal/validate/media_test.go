package validate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/probe"
)

type fakeProber struct {
	duration float64
	err      error
	kinds    []probe.StreamKind
	block    bool
}

func (p *fakeProber) Duration(ctx context.Context, path string, kind probe.StreamKind) (float64, error) {
	p.kinds = append(p.kinds, kind)
	if p.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return p.duration, p.err
}

func TestMediaValidatorFloors(t *testing.T) {
	tests := []struct {
		name      string
		newV      func(Prober) *MediaValidator
		duration  float64
		wantValid bool
	}{
		{"audio above floor", func(p Prober) *MediaValidator { return NewAudioValidator(p, 1.0, time.Second) }, 1.01, true},
		{"audio at floor", func(p Prober) *MediaValidator { return NewAudioValidator(p, 1.0, time.Second) }, 1.0, false},
		{"audio below floor", func(p Prober) *MediaValidator { return NewAudioValidator(p, 1.0, time.Second) }, 0.7, false},
		{"video above floor", func(p Prober) *MediaValidator { return NewVideoValidator(p, 0.5, time.Second) }, 0.7, true},
		{"video at floor", func(p Prober) *MediaValidator { return NewVideoValidator(p, 0.5, time.Second) }, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.newV(&fakeProber{duration: tt.duration})
			r := v.Validate(context.Background(), "clip")

			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (%s)", r.Valid, tt.wantValid, r.Cause())
			}
			if r.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", r.Duration, tt.duration)
			}
			if !tt.wantValid && r.Fault.Kind != ProbeFault {
				t.Errorf("kind = %s, want probe fault", r.Fault.Kind)
			}
		})
	}
}

func TestMediaValidatorStreamKind(t *testing.T) {
	p := &fakeProber{duration: 10}
	NewAudioValidator(p, 1, time.Second).Validate(context.Background(), "a.mp3")
	NewVideoValidator(p, 1, time.Second).Validate(context.Background(), "v.mp4")

	if len(p.kinds) != 2 || p.kinds[0] != probe.Audio || p.kinds[1] != probe.Video {
		t.Errorf("kinds = %v", p.kinds)
	}
}

func TestMediaValidatorProbeError(t *testing.T) {
	v := NewAudioValidator(&fakeProber{err: probe.ErrNoOutput}, 1, time.Second)
	r := v.Validate(context.Background(), "a.mp3")

	if r.Valid || r.Category != classify.Audio {
		t.Fatalf("result = %+v", r)
	}
	if !errors.Is(r.Fault, probe.ErrNoOutput) {
		t.Errorf("fault should wrap the probe error: %v", r.Fault)
	}
}

func TestMediaValidatorTimeout(t *testing.T) {
	v := NewVideoValidator(&fakeProber{block: true}, 0.5, 20*time.Millisecond)
	r := v.Validate(context.Background(), "v.mkv")

	if r.Valid || !strings.Contains(r.Fault.Cause, "timed out") {
		t.Errorf("result = %+v", r)
	}
}
