package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/scanner"
)

// Suite dispatches a file to the validator for its category
type Suite struct {
	classifier *classify.Classifier
	text       TextValidator
	image      *ImageValidator
	audio      *MediaValidator
	video      *MediaValidator
}

// NewSuite wires the validators from configuration. A nil prober leaves
// audio and video unvalidated; the classifier is expected to have those
// categories disabled in that case.
func NewSuite(cfg *config.Config, classifier *classify.Classifier, prober Prober, decoder ImageDecoder) (*Suite, error) {
	maxDecode, err := cfg.Probe.MaxDecodeBytes()
	if err != nil {
		return nil, err
	}

	if decoder == nil {
		decoder = StdDecoder{MaxPixels: cfg.Probe.MaxImagePixels}
	}

	s := &Suite{
		classifier: classifier,
		text:       TextValidator{HeadSize: HeadSize},
		image: &ImageValidator{
			Decoder:        decoder,
			Timeout:        cfg.Probe.ImageTimeout,
			MaxDecodeBytes: maxDecode,
		},
	}
	if prober != nil {
		s.audio = NewAudioValidator(prober, cfg.Probe.AudioMinDuration, cfg.Probe.ProbeTimeout)
		s.video = NewVideoValidator(prober, cfg.Probe.VideoMinDuration, cfg.Probe.ProbeTimeout)
	}
	return s, nil
}

// Check validates file as cat. Zero-length files are invalid in every
// category; text files still get a read so the head flags are accurate.
func (s *Suite) Check(ctx context.Context, file scanner.FileInfo, cat classify.Category) Result {
	if cat == classify.Text {
		r := s.text.Validate(file.Path)
		if file.Size == 0 && r.Valid {
			return invalid(cat, DecodeFault, "empty file", nil)
		}
		return r
	}

	if file.Size == 0 {
		return invalid(cat, DecodeFault, "empty file", nil)
	}

	switch cat {
	case classify.Image:
		return s.image.Validate(ctx, file.Path, file.Size)
	case classify.Audio:
		if s.audio == nil {
			return invalid(cat, ProbeFault, "no media prober configured", nil)
		}
		return s.audio.Validate(ctx, file.Path)
	case classify.Video:
		if s.video == nil {
			return invalid(cat, ProbeFault, "no media prober configured", nil)
		}
		return s.video.Validate(ctx, file.Path)
	case classify.SignatureBinary:
		sig, ok := s.classifier.Signature(file.Ext, strings.ToLower(file.Name))
		if !ok {
			return invalid(cat, SignatureMismatch, fmt.Sprintf("no signature declared for %s", file.Name), nil)
		}
		return ValidateSignature(file.Path, sig)
	default:
		return Result{Category: classify.Unclassified}
	}
}
