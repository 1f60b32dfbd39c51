//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzDecode checks that any buffer Decode accepts re-encodes to itself.
func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x00, 0x05, 0x02, 0x00, 0x01, 0x00, 0x02})
	f.Add([]byte{0x00, 0x01, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		var blk testBlock
		if err := Decode(data, &blk); err != nil {
			return
		}
		out, err := Encode(&blk)
		if err != nil {
			t.Fatalf("Encode failed after successful decode: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("round trip mismatch: %x != %x", out, data)
		}
	})
}

// FuzzBits checks that splitting and re-packing a 32-bit word is lossless.
func FuzzBits(f *testing.F) {
	f.Add(uint32(0), uint8(4))
	f.Add(uint32(0xFFFFFFFF), uint8(31))

	f.Fuzz(func(t *testing.T, v uint32, split uint8) {
		k := uint(split % 33)
		r := NewBitReader(uint64(v), 32)
		var w BitWriter
		w.Put(k, r.Get(k)).Put(32-k, r.Get(32-k))
		out, err := w.Value()
		if err != nil {
			t.Fatalf("pack failed: %v", err)
		}
		if out != uint64(v) {
			t.Fatalf("got %#x, want %#x", out, v)
		}
	})
}
