package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}

	testCases := []struct {
		name   string
		offset int
		width  int
		want   uint64
	}{
		{name: "u8", offset: 0, width: 1, want: 0x01},
		{name: "u16", offset: 1, width: 2, want: 0x0203},
		{name: "u32", offset: 2, width: 4, want: 0x03040506},
		{name: "u64", offset: 1, width: 8, want: 0x0203040506070809},
		{name: "last byte", offset: 8, width: 1, want: 0x09},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Uint(data, tc.offset, tc.width)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUint_OutOfRange(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03}

	testCases := []struct {
		name   string
		offset int
		width  int
	}{
		{name: "past end", offset: 3, width: 2},
		{name: "negative offset", offset: -1, width: 1},
		{name: "bad width", offset: 0, width: 3},
		{name: "whole buffer too small", offset: 0, width: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Uint(data, tc.offset, tc.width)
			assert.ErrorIs(t, err, ErrIO)
		})
	}
}

func TestPutUint(t *testing.T) {
	buf := make([]byte, 8)
	require.NoError(t, PutUint(buf, 0, 2, 0xBEEF))
	require.NoError(t, PutUint(buf, 2, 4, 58))
	require.NoError(t, PutUint(buf, 6, 1, 0xFF))
	assert.Equal(t, []byte{0xBE, 0xEF, 0x00, 0x00, 0x00, 0x3A, 0xFF, 0x00}, buf)

	v, err := Uint(buf, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(58), v)

	assert.ErrorIs(t, PutUint(buf, 0, 1, 0x100), ErrIO)
	assert.ErrorIs(t, PutUint(buf, 7, 2, 1), ErrIO)
}

func TestBitReader(t *testing.T) {
	t.Run("nibbles", func(t *testing.T) {
		r := NewBitReader(0xA5, 8)
		assert.Equal(t, uint64(0xA), r.Get(4))
		assert.Equal(t, uint64(0x5), r.Get(4))
	})

	t.Run("play item flags", func(t *testing.T) {
		// reserved(11) multi-angle(1) connection condition(4)
		r := NewBitReader(0b0000_0000_0011_0101, 16)
		assert.Equal(t, uint64(1), r.Get(11))
		assert.Equal(t, uint8(1), r.Flag())
		assert.Equal(t, uint8(5), r.U8(4))
	})

	t.Run("64-bit mask", func(t *testing.T) {
		r := NewBitReader(1<<63|1, 64)
		assert.Equal(t, uint8(1), r.Flag())
		assert.Equal(t, uint64(1), r.Get(63))
	})
}

func TestBitWriter(t *testing.T) {
	var w BitWriter
	w.Put(11, 1).Put(1, 1).Put(4, 5)
	v, err := w.Value()
	require.NoError(t, err)
	assert.Equal(t, uint64(0b0000_0000_0011_0101), v)
	assert.Equal(t, uint(16), w.Bits())

	t.Run("overflowing group", func(t *testing.T) {
		var w BitWriter
		w.Put(4, 16).Put(4, 1)
		_, err := w.Value()
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("split then join is identity", func(t *testing.T) {
		for _, in := range []uint64{0, 1, 0x1234, 0xFFFF, 0x8001} {
			r := NewBitReader(in, 16)
			var w BitWriter
			w.Put(3, r.Get(3)).Put(2, r.Get(2)).Put(11, r.Get(11))
			out, err := w.Value()
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	})
}

func TestReader_StickyError(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03}, "test")
	assert.Equal(t, uint16(0x0102), r.U16())
	assert.Equal(t, uint32(0), r.U32())
	assert.Equal(t, uint8(0), r.U8())
	assert.ErrorIs(t, r.Err(), ErrDecode)
	assert.Equal(t, 2, r.Offset())
}

func TestWriter(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf, "test")
	w.String("MPLS", 4)
	w.U16(0x0102)
	w.Zero(2)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte("MPLS\x01\x02\x00\x00"), buf)

	t.Run("wrong width string", func(t *testing.T) {
		w := NewWriter(make([]byte, 8), "test")
		w.String("eng", 4)
		assert.ErrorIs(t, w.Err(), ErrValidation)
	})

	t.Run("past end", func(t *testing.T) {
		w := NewWriter(make([]byte, 1), "test")
		w.U16(1)
		assert.ErrorIs(t, w.Err(), ErrIO)
	})
}
