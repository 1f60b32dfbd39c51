// Package mobj reads and writes the Movie Object file (BDMV/MovieObject.bdmv).
//
// The file is a 40-byte preamble, the MovieObjects block and an optional
// extension data block:
//
//	[Preamble(40)][MovieObjects][ExtensionData]
//
// Each movie object is a small program of 12-byte navigation commands. See
// ResolveOpcode and Disassemble for turning commands into readable form.
package mobj

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/extension"
	"github.com/ssargent/bdmeta/pkg/store"
)

const (
	// TypeIndicator is the 4-byte magic at the start of every movie object file.
	TypeIndicator = "MOBJ"

	preambleSize = 40
	reservedSize = 28
)

// Header is the root of a decoded movie object file.
type Header struct {
	TypeIndicator             string
	VersionNumber             string
	ExtensionDataStartAddress uint32
	Reserved1                 [reservedSize]byte

	MovieObjects MovieObjects
	// ExtensionData is set when ExtensionDataStartAddress is non-zero.
	ExtensionData *extension.Data
}

// Decode parses a complete movie object file.
func Decode(data []byte) (*Header, error) {
	h := &Header{}
	if err := codec.Decode(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Load reads and decodes the movie object file at path.
func Load(path string) (*Header, error) {
	data, err := store.Default.Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save recomputes derived fields and writes the file to path.
func (h *Header) Save(path string, overwrite bool) error {
	return store.Default.Save(path, h, overwrite)
}

// Kind returns the type indicator of the file.
func (h *Header) Kind() string { return TypeIndicator }

func (h *Header) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "mobj.Header")
	h.TypeIndicator = r.String(4)
	h.VersionNumber = r.String(4)
	h.ExtensionDataStartAddress = r.U32()
	copy(h.Reserved1[:], r.Bytes(reservedSize))
	objectsSize := int(r.PeekU32(preambleSize))
	if err := r.Err(); err != nil {
		return 0, err
	}
	if h.TypeIndicator != TypeIndicator {
		return 0, codec.DecodeErrorf("mobj.Header", 0, "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}

	end := preambleSize + objectsSize + 4
	var extSize int
	if h.ExtensionDataStartAddress != 0 {
		if end != int(h.ExtensionDataStartAddress) {
			return 0, codec.DecodeErrorf("mobj.Header", 8, "ExtensionData start address %d, MovieObjects ends at %d", h.ExtensionDataStartAddress, end)
		}
		extSize = int(r.PeekU32(end))
		if err := r.Err(); err != nil {
			return 0, err
		}
		end += extSize + 4
	}
	if end != len(b) {
		return 0, codec.DecodeErrorf("mobj.Header", end, "blocks end at %d, file is %d bytes", end, len(b))
	}

	r.Record(&h.MovieObjects, objectsSize+4)
	h.ExtensionData = nil
	if h.ExtensionDataStartAddress != 0 {
		h.ExtensionData = &extension.Data{}
		r.Record(h.ExtensionData, extSize+4)
	}
	return r.Offset(), r.Err()
}

func (h *Header) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "mobj.Header")
	w.String(h.TypeIndicator, 4)
	w.String(h.VersionNumber, 4)
	w.U32(h.ExtensionDataStartAddress)
	w.Bytes(h.Reserved1[:])
	w.Record(&h.MovieObjects)
	if h.ExtensionData != nil {
		w.Record(h.ExtensionData)
	}
	return w.Offset(), w.Err()
}

func (h *Header) Len() int {
	n := preambleSize + h.MovieObjects.Len()
	if h.ExtensionData != nil {
		n += h.ExtensionData.Len()
	}
	return n
}

func (h *Header) Children() []codec.Record {
	out := []codec.Record{&h.MovieObjects}
	if h.ExtensionData != nil {
		out = append(out, h.ExtensionData)
	}
	return out
}

// Update places the extension data directly after the movie objects.
func (h *Header) Update() {
	h.ExtensionDataStartAddress = 0
	if h.ExtensionData != nil {
		h.ExtensionDataStartAddress = uint32(preambleSize + h.MovieObjects.Len())
	}
}

func (h *Header) Check() error {
	if h.TypeIndicator != TypeIndicator {
		return codec.ValidationErrorf("mobj.Header", "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}
	if (h.ExtensionDataStartAddress != 0) != (h.ExtensionData != nil) {
		return codec.ValidationErrorf("mobj.Header", "ExtensionData start address %d does not match block presence", h.ExtensionDataStartAddress)
	}
	if h.ExtensionData != nil {
		if want := uint32(preambleSize + h.MovieObjects.Len()); h.ExtensionDataStartAddress != want {
			return codec.ValidationErrorf("mobj.Header", "ExtensionData start address %d, want %d", h.ExtensionDataStartAddress, want)
		}
	}
	return nil
}
