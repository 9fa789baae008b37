package validate

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/fenilsonani/bytesweep/internal/classify"
)

// HeadSize is the number of leading bytes sampled from text files
const HeadSize = 2048

// NoiseScore is the share of non-printable bytes in a sampled window.
// Noisy and Sampled are the exact counts; ranking compares them as
// fractions, so scores are equal only when the ratios are exactly equal.
// Ratio and PPM are derived for reporting.
type NoiseScore struct {
	Ratio   float64 `json:"ratio" yaml:"ratio"`
	PPM     int64   `json:"ppm" yaml:"ppm"`
	Noisy   int64   `json:"noisy" yaml:"noisy"`
	Sampled int64   `json:"sampled" yaml:"sampled"`
}

// MaxNoise is the score of an empty or unreadable window
var MaxNoise = NoiseScore{Ratio: 1, PPM: 1_000_000, Noisy: 1, Sampled: 1}

// Compare returns -1, 0 or +1 as s is cleaner than, as noisy as, or
// noisier than o
func (s NoiseScore) Compare(o NoiseScore) int {
	a, b := s.norm(), o.norm()
	l, r := a.Noisy*b.Sampled, b.Noisy*a.Sampled
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// Saturated reports whether every sampled byte was noise
func (s NoiseScore) Saturated() bool {
	n := s.norm()
	return n.Noisy >= n.Sampled
}

// norm treats a zero-value score as MaxNoise
func (s NoiseScore) norm() NoiseScore {
	if s.Sampled <= 0 {
		return MaxNoise
	}
	return s
}

// Noise scores head. Printable means ASCII 0x20-0x7e plus tab, newline,
// vertical tab, form feed and carriage return.
func Noise(head []byte) NoiseScore {
	if len(head) == 0 {
		return MaxNoise
	}

	var noisy int64
	for _, b := range head {
		if !printable(b) {
			noisy++
		}
	}

	n := int64(len(head))
	return NoiseScore{
		Ratio:   float64(noisy) / float64(n),
		PPM:     noisy * 1_000_000 / n,
		Noisy:   noisy,
		Sampled: n,
	}
}

func printable(b byte) bool {
	return (b >= 0x20 && b <= 0x7e) || (b >= '\t' && b <= '\r')
}

// ReadHead reads up to n bytes from the start of path
func ReadHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:read], nil
}

// TextValidator judges text and structured-text files
type TextValidator struct {
	HeadSize int
}

// Validate reads the head of path. The file is valid iff the read succeeds
// and the head is neither empty nor only whitespace. The noise score is
// always filled in for ranking.
func (v TextValidator) Validate(path string) Result {
	size := v.HeadSize
	if size <= 0 {
		size = HeadSize
	}

	head, err := ReadHead(path, size)
	if err != nil {
		r := invalid(classify.Text, IOFault, describeIOError(err), err)
		r.Noise = MaxNoise
		return r
	}

	noise := Noise(head)
	switch {
	case len(head) == 0:
		r := invalid(classify.Text, DecodeFault, "empty file", nil)
		r.HeadRead = true
		r.Noise = noise
		return r
	case len(bytes.TrimSpace(head)) == 0:
		r := invalid(classify.Text, DecodeFault, "only whitespace in sampled head", nil)
		r.HeadRead = true
		r.Noise = noise
		return r
	}

	r := valid(classify.Text)
	r.HeadRead = true
	r.Noise = noise
	return r
}

func describeIOError(err error) string {
	switch {
	case os.IsNotExist(err):
		return "file vanished"
	case os.IsPermission(err):
		return "permission denied"
	default:
		return "read failed"
	}
}
