package validate

import (
	"context"
	"testing"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/scanner"
	"github.com/fenilsonani/bytesweep/internal/testutil"
)

func newSuite(t *testing.T, prober Prober) *Suite {
	t.Helper()

	cfg := config.GetDefault()
	c, err := classify.New(cfg)
	if err != nil {
		t.Fatalf("classify.New: %v", err)
	}
	s, err := NewSuite(cfg, c, prober, nil)
	if err != nil {
		t.Fatalf("NewSuite: %v", err)
	}
	return s
}

func fileInfo(t *testing.T, f *testutil.TestFixture, path string) scanner.FileInfo {
	t.Helper()
	res, err := scanner.New(config.GetDefault()).Scan(context.Background(), f.RootDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, fi := range res.Files {
		if fi.Path == path {
			return fi
		}
	}
	t.Fatalf("%s not scanned", path)
	return scanner.FileInfo{}
}

func TestSuiteDispatch(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newSuite(t, &fakeProber{duration: 30})

	tests := []struct {
		name      string
		path      string
		cat       classify.Category
		wantValid bool
	}{
		{"image", f.CreatePNG("a.png"), classify.Image, true},
		{"corrupt image", f.CreateTruncatedPNG("b.png"), classify.Image, false},
		{"text", f.CreateText("c.md", "# title"), classify.Text, true},
		{"audio", f.CreateText("d.mp3", "ID3"), classify.Audio, true},
		{"video", f.CreateText("e.mp4", "ftyp"), classify.Video, true},
		{"zip", f.CreateZip("f.zip"), classify.SignatureBinary, true},
		{"bad zip", f.CreateText("g_2.zip", "corrupted"), classify.SignatureBinary, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.Check(context.Background(), fileInfo(t, f, tt.path), tt.cat)
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (%s)", r.Valid, tt.wantValid, r.Cause())
			}
			if r.Category != tt.cat {
				t.Errorf("Category = %s, want %s", r.Category, tt.cat)
			}
		})
	}
}

func TestSuiteZeroLengthAlwaysInvalid(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newSuite(t, &fakeProber{duration: 30})

	for _, tt := range []struct {
		name string
		cat  classify.Category
	}{
		{"empty.png", classify.Image},
		{"empty.txt", classify.Text},
		{"empty.mp3", classify.Audio},
		{"empty.mov", classify.Video},
		{"empty.zip", classify.SignatureBinary},
	} {
		path := f.CreateFile(tt.name, nil)
		r := s.Check(context.Background(), fileInfo(t, f, path), tt.cat)
		if r.Valid {
			t.Errorf("%s: zero-length file must be invalid", tt.name)
		}
	}
}

func TestSuiteWithoutProber(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newSuite(t, nil)

	path := f.CreateText("song.mp3", "ID3")
	r := s.Check(context.Background(), fileInfo(t, f, path), classify.Audio)
	if r.Valid || r.Fault.Kind != ProbeFault {
		t.Errorf("result = %+v", r)
	}
}

func TestSuiteUnclassified(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newSuite(t, nil)

	path := f.CreateText("thing.xyz", "?")
	r := s.Check(context.Background(), fileInfo(t, f, path), classify.Unclassified)
	if r.Category != classify.Unclassified || r.Fault != nil {
		t.Errorf("result = %+v", r)
	}
}

func TestFaultError(t *testing.T) {
	f := &Fault{Kind: SignatureMismatch, Cause: "header mismatch"}
	if f.Error() != "signature mismatch: header mismatch" {
		t.Errorf("Error() = %q", f.Error())
	}
	if (Result{Valid: true}).Cause() != "" {
		t.Error("valid results have no cause")
	}
}
