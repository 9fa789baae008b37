// Package probe measures media durations with ffprobe. A single JSON call
// per file returns the container duration and the durations of the
// streams of the requested kind.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// StreamKind selects the stream type a probe must find
type StreamKind int

const (
	Audio StreamKind = iota
	Video
)

// String returns the ffprobe codec_type for the kind
func (k StreamKind) String() string {
	if k == Video {
		return "video"
	}
	return "audio"
}

func (k StreamKind) selector() string {
	if k == Video {
		return "v"
	}
	return "a"
}

var (
	// ErrNoOutput is returned when ffprobe prints nothing
	ErrNoOutput = errors.New("ffprobe produced no output")
	// ErrNoDuration is returned when neither the container nor any stream
	// reports a duration
	ErrNoDuration = errors.New("no duration reported")
	// ErrNoStream is returned when the file has no stream of the kind
	ErrNoStream = errors.New("no matching stream")
)

// FFProbe runs the ffprobe binary
type FFProbe struct {
	Binary string
}

// New returns an FFProbe for binary, defaulting to "ffprobe" on PATH
func New(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{Binary: binary}
}

// Available reports whether the binary can be found
func (p *FFProbe) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Duration returns the playable duration of path in seconds
func (p *FFProbe) Duration(ctx context.Context, path string, kind StreamKind) (float64, error) {
	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "error",
		"-select_streams", kind.selector(),
		"-show_entries", "format=duration:stream=codec_type,duration",
		"-of", "json",
		path,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, fmt.Errorf("ffprobe %q: %w: %s", path, err, firstLine(msg))
		}
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	res, err := ParseJSON(out)
	if err != nil {
		return 0, err
	}
	return res.Duration(kind)
}

// Result is the parsed subset of ffprobe output this package asks for
type Result struct {
	FormatDuration float64
	Streams        []Stream
}

// Stream is one probed stream
type Stream struct {
	Type     string
	Duration float64
}

// Duration picks the container duration, falling back to the longest
// stream of kind. The file must contain at least one stream of kind.
func (r *Result) Duration(kind StreamKind) (float64, error) {
	var found bool
	var longest float64
	for _, s := range r.Streams {
		if s.Type != kind.String() {
			continue
		}
		found = true
		if s.Duration > longest {
			longest = s.Duration
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrNoStream, kind)
	}

	if r.FormatDuration > 0 {
		return r.FormatDuration, nil
	}
	if longest > 0 {
		return longest, nil
	}
	return 0, ErrNoDuration
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoOutput
	}

	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	res := &Result{FormatDuration: parseFloat(raw.Format.Duration)}
	for _, s := range raw.Streams {
		res.Streams = append(res.Streams, Stream{Type: s.CodecType, Duration: parseFloat(s.Duration)})
	}
	return res, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

// ffprobe prints numbers as strings and "N/A" when unknown
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
