package codec

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/lunixbochs/struc"
)

// Fixed-layout records made only of exported unsigned integer fields are
// packed with struc, which defaults to big-endian.

// FixedSize returns the packed size of v.
func FixedSize(v interface{}) int {
	n, err := struc.Sizeof(v)
	if err != nil {
		return 0
	}
	return n
}

// UnpackFixed decodes v from the start of b.
func UnpackFixed(b []byte, v interface{}) (int, error) {
	n := FixedSize(v)
	if n == 0 || len(b) < n {
		return 0, DecodeErrorf("fixed", 0, "need %d bytes, have %d", n, len(b))
	}
	if err := struc.Unpack(bytes.NewReader(b[:n]), v); err != nil {
		return 0, &Error{Kind: KindDecode, Op: "fixed", Offset: 0, Err: errors.WithStack(err)}
	}
	return n, nil
}

// PackFixed encodes v into the start of b.
func PackFixed(b []byte, v interface{}) (int, error) {
	var buf bytes.Buffer
	if err := struc.Pack(&buf, v); err != nil {
		return 0, &Error{Kind: KindValidation, Op: "fixed", Offset: -1, Err: errors.WithStack(err)}
	}
	if buf.Len() > len(b) {
		return 0, IOError("fixed", errors.Newf("%d-byte record outside %d-byte buffer", buf.Len(), len(b)))
	}
	return copy(b, buf.Bytes()), nil
}
