// Package mpls reads and writes Movie PlayList files (BDMV/PLAYLIST/*.mpls).
//
// A playlist is a 40-byte preamble followed by four blocks located by start
// addresses in the preamble:
//
//	[Preamble(40)][AppInfoPlayList(18)][PlayList][PlayListMark][ExtensionData]
//
// Decode builds a *Header tree that re-encodes byte for byte. After editing
// the tree, call codec.Recompute (Save does this) before encoding.
package mpls

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/extension"
	"github.com/ssargent/bdmeta/pkg/store"
)

const (
	// TypeIndicator is the 4-byte magic at the start of every playlist.
	TypeIndicator = "MPLS"

	preambleSize       = 40
	appInfoDisplaySize = 14
	playListStart      = preambleSize + appInfoDisplaySize + 4
)

// Header is the root of a decoded playlist.
type Header struct {
	TypeIndicator             string
	VersionNumber             string
	PlayListStartAddress      uint32
	PlayListMarkStartAddress  uint32
	ExtensionDataStartAddress uint32
	Reserved1                 [20]byte

	AppInfoPlayList AppInfoPlayList
	PlayList        PlayList
	PlayListMark    PlayListMark
	// ExtensionData is set when ExtensionDataStartAddress is non-zero.
	ExtensionData *extension.Data
}

// Decode parses a complete playlist file.
func Decode(data []byte) (*Header, error) {
	h := &Header{}
	if err := codec.Decode(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Load reads and decodes the playlist at path.
func Load(path string) (*Header, error) {
	data, err := store.Default.Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save recomputes derived fields and writes the playlist to path. An
// existing file is only replaced when overwrite is set.
func (h *Header) Save(path string, overwrite bool) error {
	return store.Default.Save(path, h, overwrite)
}

// Kind returns the type indicator of the file.
func (h *Header) Kind() string { return TypeIndicator }

func (h *Header) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "mpls.Header")
	h.TypeIndicator = r.String(4)
	h.VersionNumber = r.String(4)
	h.PlayListStartAddress = r.U32()
	h.PlayListMarkStartAddress = r.U32()
	h.ExtensionDataStartAddress = r.U32()
	copy(h.Reserved1[:], r.Bytes(20))
	if err := r.Err(); err != nil {
		return 0, err
	}
	if h.TypeIndicator != TypeIndicator {
		return 0, codec.DecodeErrorf("mpls.Header", 0, "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}

	appInfoSize := int(r.PeekU32(preambleSize))
	playListSize := int(r.PeekU32(int(h.PlayListStartAddress)))
	markSize := int(r.PeekU32(int(h.PlayListMarkStartAddress)))
	var extSize int
	if h.ExtensionDataStartAddress != 0 {
		extSize = int(r.PeekU32(int(h.ExtensionDataStartAddress)))
	}
	if err := r.Err(); err != nil {
		return 0, err
	}

	if appInfoSize != appInfoDisplaySize {
		return 0, codec.DecodeErrorf("mpls.Header", preambleSize, "AppInfoPlayList length %d, want %d", appInfoSize, appInfoDisplaySize)
	}
	if h.PlayListStartAddress != playListStart {
		return 0, codec.DecodeErrorf("mpls.Header", 8, "PlayList start address %d, want %d", h.PlayListStartAddress, playListStart)
	}
	end := int(h.PlayListStartAddress) + playListSize + 4
	if end != int(h.PlayListMarkStartAddress) {
		return 0, codec.DecodeErrorf("mpls.Header", 12, "PlayListMark start address %d, PlayList ends at %d", h.PlayListMarkStartAddress, end)
	}
	end += markSize + 4
	if h.ExtensionDataStartAddress != 0 {
		if end != int(h.ExtensionDataStartAddress) {
			return 0, codec.DecodeErrorf("mpls.Header", 16, "ExtensionData start address %d, PlayListMark ends at %d", h.ExtensionDataStartAddress, end)
		}
		end += extSize + 4
	}
	if end != len(b) {
		return 0, codec.DecodeErrorf("mpls.Header", end, "blocks end at %d, file is %d bytes", end, len(b))
	}

	r.Record(&h.AppInfoPlayList, appInfoSize+4)
	r.Record(&h.PlayList, playListSize+4)
	r.Record(&h.PlayListMark, markSize+4)
	h.ExtensionData = nil
	if h.ExtensionDataStartAddress != 0 {
		h.ExtensionData = &extension.Data{}
		r.Record(h.ExtensionData, extSize+4)
	}
	return r.Offset(), r.Err()
}

func (h *Header) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "mpls.Header")
	w.String(h.TypeIndicator, 4)
	w.String(h.VersionNumber, 4)
	w.U32(h.PlayListStartAddress)
	w.U32(h.PlayListMarkStartAddress)
	w.U32(h.ExtensionDataStartAddress)
	w.Bytes(h.Reserved1[:])
	w.Record(&h.AppInfoPlayList)
	w.Record(&h.PlayList)
	w.Record(&h.PlayListMark)
	if h.ExtensionData != nil {
		w.Record(h.ExtensionData)
	}
	return w.Offset(), w.Err()
}

func (h *Header) Len() int {
	n := preambleSize + h.AppInfoPlayList.Len() + h.PlayList.Len() + h.PlayListMark.Len()
	if h.ExtensionData != nil {
		n += h.ExtensionData.Len()
	}
	return n
}

func (h *Header) Children() []codec.Record {
	out := []codec.Record{&h.AppInfoPlayList, &h.PlayList, &h.PlayListMark}
	if h.ExtensionData != nil {
		out = append(out, h.ExtensionData)
	}
	return out
}

// Update recomputes the block start addresses.
func (h *Header) Update() {
	h.PlayListStartAddress = uint32(preambleSize + h.AppInfoPlayList.Len())
	h.PlayListMarkStartAddress = h.PlayListStartAddress + uint32(h.PlayList.Len())
	if h.ExtensionData != nil {
		h.ExtensionDataStartAddress = h.PlayListMarkStartAddress + uint32(h.PlayListMark.Len())
	} else {
		h.ExtensionDataStartAddress = 0
	}
}

func (h *Header) Check() error {
	if h.TypeIndicator != TypeIndicator {
		return codec.ValidationErrorf("mpls.Header", "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}
	if h.AppInfoPlayList.DisplaySize() != appInfoDisplaySize {
		return codec.ValidationErrorf("mpls.Header", "AppInfoPlayList display size %d", h.AppInfoPlayList.DisplaySize())
	}
	if h.PlayListStartAddress != playListStart {
		return codec.ValidationErrorf("mpls.Header", "PlayList start address %d, want %d", h.PlayListStartAddress, playListStart)
	}
	if want := h.PlayListStartAddress + uint32(h.PlayList.Len()); h.PlayListMarkStartAddress != want {
		return codec.ValidationErrorf("mpls.Header", "PlayListMark start address %d, want %d", h.PlayListMarkStartAddress, want)
	}
	if (h.ExtensionDataStartAddress != 0) != (h.ExtensionData != nil) {
		return codec.ValidationErrorf("mpls.Header", "ExtensionData start address %d does not match block presence", h.ExtensionDataStartAddress)
	}
	if h.ExtensionData != nil {
		if want := h.PlayListMarkStartAddress + uint32(h.PlayListMark.Len()); h.ExtensionDataStartAddress != want {
			return codec.ValidationErrorf("mpls.Header", "ExtensionData start address %d, want %d", h.ExtensionDataStartAddress, want)
		}
	}
	return nil
}
