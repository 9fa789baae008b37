package validate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/probe"
)

// Prober is the media probing capability
type Prober interface {
	Duration(ctx context.Context, path string, kind probe.StreamKind) (float64, error)
}

// MediaValidator judges audio or video files by probed duration
type MediaValidator struct {
	Prober      Prober
	Category    classify.Category
	Kind        probe.StreamKind
	MinDuration float64 // seconds; the duration must exceed it
	Timeout     time.Duration
}

// NewAudioValidator returns a validator for audio streams
func NewAudioValidator(p Prober, floor float64, timeout time.Duration) *MediaValidator {
	return &MediaValidator{Prober: p, Category: classify.Audio, Kind: probe.Audio, MinDuration: floor, Timeout: timeout}
}

// NewVideoValidator returns a validator for video streams
func NewVideoValidator(p Prober, floor float64, timeout time.Duration) *MediaValidator {
	return &MediaValidator{Prober: p, Category: classify.Video, Kind: probe.Video, MinDuration: floor, Timeout: timeout}
}

// Validate probes path, bounded by the validator timeout
func (v *MediaValidator) Validate(ctx context.Context, path string) Result {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	d, err := v.Prober.Duration(ctx, path, v.Kind)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return invalid(v.Category, ProbeFault, fmt.Sprintf("probe timed out after %s", v.Timeout), err)
		}
		return invalid(v.Category, ProbeFault, "probe failed", err)
	}

	if d <= v.MinDuration {
		r := invalid(v.Category, ProbeFault,
			fmt.Sprintf("duration %.2fs at or below %.2fs floor", d, v.MinDuration), nil)
		r.Duration = d
		return r
	}

	r := valid(v.Category)
	r.Duration = d
	return r
}
