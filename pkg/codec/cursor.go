package codec

import (
	"github.com/cockroachdb/errors"
)

// Reader walks a record buffer front to back. The first failure sticks and
// every later read returns zero values, so callers check Err once.
type Reader struct {
	op  string
	buf []byte
	off int
	err error
}

// NewReader returns a Reader over b. op names the record for error messages.
func NewReader(b []byte, op string) *Reader {
	return &Reader{op: op, buf: b}
}

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.off >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.off
}

// Seek moves the read position to an absolute offset.
func (r *Reader) Seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.buf) {
		r.fail(errors.Newf("seek to %d outside %d-byte buffer", off, len(r.buf)))
		return
	}
	r.off = off
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = &Error{Kind: KindDecode, Op: r.op, Offset: r.off, Err: err}
	}
}

// Fail records a decode failure at the current offset.
func (r *Reader) Fail(format string, args ...interface{}) {
	r.fail(errors.Newf(format, args...))
}

// Err returns the first failure as a DecodeError.
func (r *Reader) Err() error { return r.err }

func (r *Reader) uint(width int) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := Uint(r.buf, r.off, width)
	if err != nil {
		r.fail(err)
		return 0
	}
	r.off += width
	return v
}

func (r *Reader) U8() uint8   { return uint8(r.uint(1)) }
func (r *Reader) U16() uint16 { return uint16(r.uint(2)) }
func (r *Reader) U32() uint32 { return uint32(r.uint(4)) }
func (r *Reader) U64() uint64 { return r.uint(8) }

func (r *Reader) peek(off, width int) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := Uint(r.buf, off, width)
	if err != nil {
		r.fail(err)
		return 0
	}
	return v
}

// PeekU8 reads a 1-byte field at an absolute offset without moving.
func (r *Reader) PeekU8(off int) uint8 { return uint8(r.peek(off, 1)) }

// PeekU16 reads a 2-byte field at an absolute offset without moving.
func (r *Reader) PeekU16(off int) uint16 { return uint16(r.peek(off, 2)) }

// PeekU32 reads a 4-byte field at an absolute offset without moving.
func (r *Reader) PeekU32(off int) uint32 { return uint32(r.peek(off, 4)) }

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail(IOError("read", errors.Newf("%d bytes at offset %d outside %d-byte buffer", n, r.off, len(r.buf))))
		return nil
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:])
	r.off += n
	return out
}

// Rest returns a copy of every unread byte.
func (r *Reader) Rest() []byte {
	return r.Bytes(r.Remaining())
}

// String reads an n-byte character field.
func (r *Reader) String(n int) string {
	return string(r.Bytes(n))
}

// Record decodes rec from the next size bytes. A negative size hands rec the
// rest of the buffer. With an explicit size rec must consume all of it.
func (r *Reader) Record(rec Record, size int) {
	if r.err != nil {
		return
	}
	end := r.off + size
	if size < 0 {
		end = len(r.buf)
	}
	if end > len(r.buf) {
		r.fail(errors.Newf("%d-byte record at offset %d outside %d-byte buffer", size, r.off, len(r.buf)))
		return
	}
	n, err := rec.Unmarshal(r.buf[r.off:end])
	if err != nil {
		if r.err == nil {
			r.err = Wrap(err, r.op)
		}
		return
	}
	if size >= 0 && n != size {
		r.fail(errors.Newf("record consumed %d of %d bytes", n, size))
		return
	}
	r.off += n
}

// Writer fills a preallocated buffer front to back with the same sticky
// error behaviour as Reader.
type Writer struct {
	op  string
	buf []byte
	off int
	err error
}

// NewWriter returns a Writer over b.
func NewWriter(b []byte, op string) *Writer {
	return &Writer{op: op, buf: b}
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int { return w.off }

// Err returns the first failure.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(kind Kind, err error) {
	if w.err == nil {
		w.err = &Error{Kind: kind, Op: w.op, Offset: w.off, Err: err}
	}
}

// Fail records a validation failure at the current offset.
func (w *Writer) Fail(format string, args ...interface{}) {
	w.fail(KindValidation, errors.Newf(format, args...))
}

func (w *Writer) uint(width int, v uint64) {
	if w.err != nil {
		return
	}
	if err := PutUint(w.buf, w.off, width, v); err != nil {
		w.fail(KindIO, err)
		return
	}
	w.off += width
}

func (w *Writer) U8(v uint8)   { w.uint(1, uint64(v)) }
func (w *Writer) U16(v uint16) { w.uint(2, uint64(v)) }
func (w *Writer) U32(v uint32) { w.uint(4, uint64(v)) }
func (w *Writer) U64(v uint64) { w.uint(8, v) }

// Bytes copies p verbatim.
func (w *Writer) Bytes(p []byte) {
	if w.err != nil {
		return
	}
	if w.off+len(p) > len(w.buf) {
		w.fail(KindIO, errors.Newf("%d bytes at offset %d outside %d-byte buffer", len(p), w.off, len(w.buf)))
		return
	}
	copy(w.buf[w.off:], p)
	w.off += len(p)
}

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	w.Bytes(make([]byte, n))
}

// String writes a fixed n-byte character field. s must be exactly n bytes.
func (w *Writer) String(s string, n int) {
	if len(s) != n {
		w.Fail("field %q is %d bytes, want %d", s, len(s), n)
		return
	}
	w.Bytes([]byte(s))
}

// FixedBytes writes p, which must be exactly n bytes.
func (w *Writer) FixedBytes(p []byte, n int) {
	if len(p) != n {
		w.Fail("byte field is %d bytes, want %d", len(p), n)
		return
	}
	w.Bytes(p)
}

// Record marshals rec at the current offset.
func (w *Writer) Record(rec Record) {
	if w.err != nil {
		return
	}
	if w.off+rec.Len() > len(w.buf) {
		w.fail(KindIO, errors.Newf("%d-byte record at offset %d outside %d-byte buffer", rec.Len(), w.off, len(w.buf)))
		return
	}
	n, err := rec.Marshal(w.buf[w.off:])
	if err != nil {
		w.err = Wrap(err, w.op)
		return
	}
	w.off += n
}
