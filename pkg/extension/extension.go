// Package extension decodes the extension data block found at the end of
// MPLS, CLPI, MOBJ and INDX files.
//
// Only the block index is understood. Payload layouts differ per entry type
// and are not implemented: a block that lists any entry fails with
// codec.ErrUnsupported on decode and encode. A zero-length block, or an index
// with no entries, round-trips.
package extension

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

const (
	indexSize = 12 // Length(4) DataBlockStartAddress(4) reserved(3) NumberOfEntries(1)
	entrySize = 12
)

// Entry describes one payload in the data block.
type Entry struct {
	ID1          uint16
	ID2          uint16
	StartAddress uint32
	Length       uint32
}

// Data is an extension data block.
type Data struct {
	Length                uint32
	DataBlockStartAddress uint32
	Reserved1             [3]byte
	NumberOfEntries       uint8
	Entries               []Entry
	// Trailing holds any bytes after the index of an entry-less block.
	Trailing []byte
}

func (d *Data) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "ExtensionData")
	d.Length = r.U32()
	if err := r.Err(); err != nil {
		return 0, err
	}
	if d.Length == 0 {
		return r.Offset(), nil
	}
	d.DataBlockStartAddress = r.U32()
	copy(d.Reserved1[:], r.Bytes(3))
	d.NumberOfEntries = r.U8()
	if err := r.Err(); err != nil {
		return 0, err
	}
	if d.NumberOfEntries > 0 {
		return 0, codec.UnsupportedErrorf("ExtensionData", "%d extension data entries", d.NumberOfEntries)
	}
	d.Trailing = r.Bytes(int(d.Length) + 4 - indexSize)
	return r.Offset(), r.Err()
}

func (d *Data) Marshal(b []byte) (int, error) {
	if err := d.Check(); err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "ExtensionData")
	w.U32(d.Length)
	if d.Length == 0 {
		return w.Offset(), w.Err()
	}
	w.U32(d.DataBlockStartAddress)
	w.Bytes(d.Reserved1[:])
	w.U8(d.NumberOfEntries)
	w.Bytes(d.Trailing)
	return w.Offset(), w.Err()
}

func (d *Data) Len() int { return d.DisplaySize() + 4 }

func (d *Data) Children() []codec.Record { return nil }

func (d *Data) DisplaySize() int {
	if d.Length == 0 {
		return 0
	}
	return indexSize - 4 + entrySize*len(d.Entries) + len(d.Trailing)
}

func (d *Data) StoredLength() int     { return int(d.Length) }
func (d *Data) SetStoredLength(n int) { d.Length = uint32(n) }

func (d *Data) Update() {
	d.NumberOfEntries = uint8(len(d.Entries))
}

func (d *Data) Check() error {
	if d.NumberOfEntries > 0 || len(d.Entries) > 0 {
		return codec.UnsupportedErrorf("ExtensionData", "%d extension data entries", len(d.Entries))
	}
	return nil
}
