package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Record is implemented by every structured block of a BDMV file.
type Record interface {
	// Unmarshal decodes the record from the start of b and returns the
	// number of bytes consumed.
	Unmarshal(b []byte) (int, error)
	// Marshal encodes the record into b, which holds at least Len() bytes,
	// and returns the number of bytes written.
	Marshal(b []byte) (int, error)
	// Len returns the encoded size in bytes.
	Len() int
	// Children returns the nested records in wire order.
	Children() []Record
}

// Sized is implemented by records that carry a stored Length field.
type Sized interface {
	// DisplaySize is the size recorded on disc: the encoded size without
	// the length field itself.
	DisplaySize() int
	StoredLength() int
	SetStoredLength(n int)
}

// Updater is implemented by records with counts or addresses derived from
// their children.
type Updater interface {
	Update()
}

// Checker is implemented by records with invariants beyond the Length field.
type Checker interface {
	Check() error
}

// CanonicalSize returns the display size of r, or 0 for records without a
// stored length.
func CanonicalSize(r Record) int {
	if s, ok := r.(Sized); ok {
		return s.DisplaySize()
	}
	return 0
}

// Recompute walks r post-order, bringing every count, address and Length
// up to date with the current children. Running it twice changes nothing.
func Recompute(r Record) {
	for _, c := range r.Children() {
		Recompute(c)
	}
	if u, ok := r.(Updater); ok {
		u.Update()
	}
	if s, ok := r.(Sized); ok {
		s.SetStoredLength(s.DisplaySize())
	}
}

// Validate walks r post-order and reports the first broken invariant.
func Validate(r Record) error {
	for _, c := range r.Children() {
		if err := Validate(c); err != nil {
			return err
		}
	}
	if s, ok := r.(Sized); ok {
		if got, want := s.StoredLength(), s.DisplaySize(); got != want {
			return ValidationErrorf(recordName(r), "stored length %d, computed %d", got, want)
		}
	}
	if c, ok := r.(Checker); ok {
		if err := c.Check(); err != nil {
			return Wrap(err, recordName(r))
		}
	}
	return nil
}

// Encode validates r and serializes it.
func Encode(r Record) ([]byte, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	buf := make([]byte, r.Len())
	n, err := r.Marshal(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, ValidationErrorf(recordName(r), "wrote %d bytes, expected %d", n, len(buf))
	}
	return buf, nil
}

// Decode fills r from data. The whole buffer must be consumed and encoding
// the result must reproduce data exactly.
func Decode(data []byte, r Record) error {
	n, err := r.Unmarshal(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return DecodeErrorf(recordName(r), n, "%d trailing bytes", len(data)-n)
	}
	out, err := Encode(r)
	if err != nil {
		return &Error{Kind: KindDecode, Op: recordName(r), Offset: -1, Err: errors.Wrap(err, "re-encode")}
	}
	if !bytes.Equal(out, data) {
		return DecodeErrorf(recordName(r), firstDiff(out, data), "re-encoded bytes differ from input")
	}
	return nil
}

func recordName(r Record) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", r), "*")
}

func firstDiff(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}
