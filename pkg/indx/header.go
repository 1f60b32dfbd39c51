// Package indx reads and writes the Index Table (BDMV/index.bdmv).
//
//	[Preamble(40)][AppInfoBDMV(38)][Indexes][ExtensionData]
//
// AppInfoBDMV has a fixed size, so Indexes always starts at byte 78.
package indx

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/extension"
	"github.com/ssargent/bdmeta/pkg/store"
)

const (
	// TypeIndicator is the 4-byte magic at the start of every index table.
	TypeIndicator = "INDX"

	preambleSize = 40
	reservedSize = 24
	indexesStart = preambleSize + appInfoDisplaySize + 4
)

// Header is the root of a decoded index table.
type Header struct {
	TypeIndicator             string
	VersionNumber             string
	IndexesStartAddress       uint32
	ExtensionDataStartAddress uint32
	Reserved1                 [reservedSize]byte

	AppInfoBDMV AppInfoBDMV
	Indexes     Indexes
	// ExtensionData is set when ExtensionDataStartAddress is non-zero.
	ExtensionData *extension.Data
}

// Decode parses a complete index table.
func Decode(data []byte) (*Header, error) {
	h := &Header{}
	if err := codec.Decode(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Load reads and decodes the index table at path.
func Load(path string) (*Header, error) {
	data, err := store.Default.Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save recomputes derived fields and writes the index table to path.
func (h *Header) Save(path string, overwrite bool) error {
	return store.Default.Save(path, h, overwrite)
}

// Kind returns the type indicator of the file.
func (h *Header) Kind() string { return TypeIndicator }

func (h *Header) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "indx.Header")
	h.TypeIndicator = r.String(4)
	h.VersionNumber = r.String(4)
	h.IndexesStartAddress = r.U32()
	h.ExtensionDataStartAddress = r.U32()
	copy(h.Reserved1[:], r.Bytes(reservedSize))
	if err := r.Err(); err != nil {
		return 0, err
	}
	if h.TypeIndicator != TypeIndicator {
		return 0, codec.DecodeErrorf("indx.Header", 0, "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}

	appInfoSize := int(r.PeekU32(preambleSize))
	indexesSize := int(r.PeekU32(int(h.IndexesStartAddress)))
	var extSize int
	if h.ExtensionDataStartAddress != 0 {
		extSize = int(r.PeekU32(int(h.ExtensionDataStartAddress)))
	}
	if err := r.Err(); err != nil {
		return 0, err
	}

	if appInfoSize != appInfoDisplaySize {
		return 0, codec.DecodeErrorf("indx.Header", preambleSize, "AppInfoBDMV length %d, want %d", appInfoSize, appInfoDisplaySize)
	}
	if h.IndexesStartAddress != indexesStart {
		return 0, codec.DecodeErrorf("indx.Header", 8, "Indexes start address %d, want %d", h.IndexesStartAddress, indexesStart)
	}
	end := indexesStart + indexesSize + 4
	if h.ExtensionDataStartAddress != 0 {
		if end != int(h.ExtensionDataStartAddress) {
			return 0, codec.DecodeErrorf("indx.Header", 12, "ExtensionData start address %d, Indexes ends at %d", h.ExtensionDataStartAddress, end)
		}
		end += extSize + 4
	}
	if end != len(b) {
		return 0, codec.DecodeErrorf("indx.Header", end, "blocks end at %d, file is %d bytes", end, len(b))
	}

	r.Record(&h.AppInfoBDMV, appInfoSize+4)
	r.Record(&h.Indexes, indexesSize+4)
	h.ExtensionData = nil
	if h.ExtensionDataStartAddress != 0 {
		h.ExtensionData = &extension.Data{}
		r.Record(h.ExtensionData, extSize+4)
	}
	return r.Offset(), r.Err()
}

func (h *Header) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "indx.Header")
	w.String(h.TypeIndicator, 4)
	w.String(h.VersionNumber, 4)
	w.U32(h.IndexesStartAddress)
	w.U32(h.ExtensionDataStartAddress)
	w.Bytes(h.Reserved1[:])
	w.Record(&h.AppInfoBDMV)
	w.Record(&h.Indexes)
	if h.ExtensionData != nil {
		w.Record(h.ExtensionData)
	}
	return w.Offset(), w.Err()
}

func (h *Header) Len() int {
	n := preambleSize + h.AppInfoBDMV.Len() + h.Indexes.Len()
	if h.ExtensionData != nil {
		n += h.ExtensionData.Len()
	}
	return n
}

func (h *Header) Children() []codec.Record {
	out := []codec.Record{&h.AppInfoBDMV, &h.Indexes}
	if h.ExtensionData != nil {
		out = append(out, h.ExtensionData)
	}
	return out
}

// Update recomputes the block start addresses.
func (h *Header) Update() {
	h.IndexesStartAddress = uint32(preambleSize + h.AppInfoBDMV.Len())
	h.ExtensionDataStartAddress = 0
	if h.ExtensionData != nil {
		h.ExtensionDataStartAddress = h.IndexesStartAddress + uint32(h.Indexes.Len())
	}
}

func (h *Header) Check() error {
	if h.TypeIndicator != TypeIndicator {
		return codec.ValidationErrorf("indx.Header", "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}
	if h.IndexesStartAddress != indexesStart {
		return codec.ValidationErrorf("indx.Header", "Indexes start address %d, want %d", h.IndexesStartAddress, indexesStart)
	}
	if (h.ExtensionDataStartAddress != 0) != (h.ExtensionData != nil) {
		return codec.ValidationErrorf("indx.Header", "ExtensionData start address %d does not match block presence", h.ExtensionDataStartAddress)
	}
	if h.ExtensionData != nil {
		if want := h.IndexesStartAddress + uint32(h.Indexes.Len()); h.ExtensionDataStartAddress != want {
			return codec.ValidationErrorf("indx.Header", "ExtensionData start address %d, want %d", h.ExtensionDataStartAddress, want)
		}
	}
	return nil
}
