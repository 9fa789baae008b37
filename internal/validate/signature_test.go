package validate

import (
	"testing"

	"github.com/fenilsonani/bytesweep/internal/classify"
	"github.com/fenilsonani/bytesweep/internal/testutil"
)

func TestValidateSignature(t *testing.T) {
	f := testutil.NewFixture(t)

	zip := classify.Signature{Key: ".zip", HeaderLength: 4, Prefixes: [][]byte{testutil.ZipHeader()}}
	adobe := classify.Signature{Key: ".ai", HeaderLength: 10, Prefixes: [][]byte{
		[]byte("%PDF-"),
		[]byte("%!PS-Adobe"),
	}}

	tests := []struct {
		name      string
		sig       classify.Signature
		content   []byte
		wantValid bool
	}{
		{"zip header", zip, append(testutil.ZipHeader(), 0x14, 0x00), true},
		{"zip exact length", zip, testutil.ZipHeader(), true},
		{"zip garbage", zip, []byte("GARBAGE!"), false},
		{"zip truncated header", zip, []byte{0x50, 0x4b}, false},
		{"ai pdf variant", adobe, []byte("%PDF-1.5 rest of file"), true},
		{"ai postscript variant", adobe, []byte("%!PS-Adobe-3.0"), true},
		{"ai neither", adobe, []byte("<svg xmlns=...>"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := f.CreateFile(tt.name, tt.content)
			r := ValidateSignature(path, tt.sig)

			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (%s)", r.Valid, tt.wantValid, r.Cause())
			}
			if !tt.wantValid && r.Fault.Kind != SignatureMismatch {
				t.Errorf("kind = %s, want signature mismatch", r.Fault.Kind)
			}
		})
	}
}

func TestValidateSignatureMissingFile(t *testing.T) {
	f := testutil.NewFixture(t)
	sig := classify.Signature{Key: ".zip", HeaderLength: 4, Prefixes: [][]byte{testutil.ZipHeader()}}

	r := ValidateSignature(f.Path("gone.zip"), sig)
	if r.Valid || r.Fault.Kind != IOFault {
		t.Errorf("result = %+v", r)
	}
}
