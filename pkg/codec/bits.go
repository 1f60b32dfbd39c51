package codec

import (
	"github.com/cockroachdb/errors"
)

// BitReader splits a packed integer into bit groups, most significant group
// first. Reading the groups of widths w1..wn from a total-bit value is the
// repeated divmod(v, 2**remaining) split used by every flag word on disc.
type BitReader struct {
	v    uint64
	left uint
}

// NewBitReader returns a reader over the low total bits of v.
func NewBitReader(v uint64, total uint) *BitReader {
	return &BitReader{v: v, left: total}
}

// Get returns the next width bits. Asking for more bits than remain returns
// whatever is left.
func (b *BitReader) Get(width uint) uint64 {
	if width > b.left {
		width = b.left
	}
	b.left -= width
	out := b.v >> b.left
	if width < 64 {
		out &= (1 << width) - 1
	}
	return out
}

func (b *BitReader) Flag() uint8       { return uint8(b.Get(1)) }
func (b *BitReader) U8(w uint) uint8   { return uint8(b.Get(w)) }
func (b *BitReader) U16(w uint) uint16 { return uint16(b.Get(w)) }
func (b *BitReader) U32(w uint) uint32 { return uint32(b.Get(w)) }

// BitWriter packs bit groups by shift-and-add in the same order BitReader
// reads them.
type BitWriter struct {
	v   uint64
	n   uint
	err error
}

// Put appends the low width bits of v. A value wider than width is an error.
func (b *BitWriter) Put(width uint, v uint64) *BitWriter {
	if b.err != nil {
		return b
	}
	if width < 64 && v>>width != 0 {
		b.err = &Error{Kind: KindValidation, Op: "bits", Offset: -1,
			Err: errors.Newf("value %d does not fit in %d bits", v, width)}
		return b
	}
	if b.n+width > 64 {
		b.err = &Error{Kind: KindValidation, Op: "bits", Offset: -1,
			Err: errors.Newf("bit group overflows 64 bits")}
		return b
	}
	b.v = b.v<<width | v
	b.n += width
	return b
}

// Value returns the packed integer and the first packing error.
func (b *BitWriter) Value() (uint64, error) {
	return b.v, b.err
}

// Bits returns the number of bits packed so far.
func (b *BitWriter) Bits() uint { return b.n }
