package validate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fenilsonani/bytesweep/internal/classify"
)

// ValidateSignature reads exactly the declared header length and checks it
// against the accepted prefixes. This is a structural sniff only.
func ValidateSignature(path string, sig classify.Signature) Result {
	f, err := os.Open(path)
	if err != nil {
		return invalid(classify.SignatureBinary, IOFault, describeIOError(err), err)
	}
	defer f.Close()

	head := make([]byte, sig.HeaderLength)
	n, err := io.ReadFull(f, head)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return invalid(classify.SignatureBinary, SignatureMismatch,
				fmt.Sprintf("header truncated: %d of %d bytes", n, sig.HeaderLength), nil)
		}
		return invalid(classify.SignatureBinary, IOFault, describeIOError(err), err)
	}

	if !sig.Match(head) {
		return invalid(classify.SignatureBinary, SignatureMismatch,
			fmt.Sprintf("header %x matches no %s signature", head, sig.Key), nil)
	}
	return valid(classify.SignatureBinary)
}
