// Package clpi reads and writes Clip Information files (BDMV/CLIPINF/*.clpi).
//
// A clip information file is a 40-byte preamble followed by blocks located by
// start addresses in the preamble:
//
//	[Preamble(40)][ClipInfo][SequenceInfo][ProgramInfo][CPI][ClipMark][ExtensionData]
//
// Each block starts with a 4-byte length and begins where the previous one
// ends. ExtensionData is optional.
package clpi

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/extension"
	"github.com/ssargent/bdmeta/pkg/store"
)

const (
	// TypeIndicator is the 4-byte magic at the start of every clip information file.
	TypeIndicator = "HDMV"

	preambleSize = 40
)

// Header is the root of a decoded clip information file.
type Header struct {
	TypeIndicator             string
	VersionNumber             string
	SequenceInfoStartAddress  uint32
	ProgramInfoStartAddress   uint32
	CPIStartAddress           uint32
	ClipMarkStartAddress      uint32
	ExtensionDataStartAddress uint32
	Reserved1                 [12]byte

	ClipInfo     ClipInfo
	SequenceInfo SequenceInfo
	ProgramInfo  ProgramInfo
	CPI          CPI
	ClipMark     ClipMark
	// ExtensionData is set when ExtensionDataStartAddress is non-zero.
	ExtensionData *extension.Data
}

// Decode parses a complete clip information file.
func Decode(data []byte) (*Header, error) {
	h := &Header{}
	if err := codec.Decode(data, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Load reads and decodes the clip information file at path.
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

var blockNames = []string{"ClipInfo", "SequenceInfo", "ProgramInfo", "CPI", "ClipMark", "ExtensionData"}

func (h *Header) blocks() []codec.Record {
	out := []codec.Record{&h.ClipInfo, &h.SequenceInfo, &h.ProgramInfo, &h.CPI, &h.ClipMark}
	if h.ExtensionData != nil {
		out = append(out, h.ExtensionData)
	}
	return out
}

// Kind returns the type indicator of the file.
func (h *Header) Kind() string { return TypeIndicator }

func (h *Header) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "clpi.Header")
	h.TypeIndicator = r.String(4)
	h.VersionNumber = r.String(4)
	h.SequenceInfoStartAddress = r.U32()
	h.ProgramInfoStartAddress = r.U32()
	h.CPIStartAddress = r.U32()
	h.ClipMarkStartAddress = r.U32()
	h.ExtensionDataStartAddress = r.U32()
	copy(h.Reserved1[:], r.Bytes(12))
	if err := r.Err(); err != nil {
		return 0, err
	}
	if h.TypeIndicator != TypeIndicator {
		return 0, codec.DecodeErrorf("clpi.Header", 0, "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}

	starts := []int{
		preambleSize,
		int(h.SequenceInfoStartAddress),
		int(h.ProgramInfoStartAddress),
		int(h.CPIStartAddress),
		int(h.ClipMarkStartAddress),
	}
	h.ExtensionData = nil
	if h.ExtensionDataStartAddress != 0 {
		starts = append(starts, int(h.ExtensionDataStartAddress))
		h.ExtensionData = &extension.Data{}
	}
	sizes := make([]int, len(starts))
	for i, s := range starts {
		sizes[i] = int(r.PeekU32(s)) + 4
	}
	if err := r.Err(); err != nil {
		return 0, err
	}
	for i := 1; i < len(starts); i++ {
		if end := starts[i-1] + sizes[i-1]; end != starts[i] {
			return 0, codec.DecodeErrorf("clpi.Header", 8+4*(i-1), "%s start address %d, %s ends at %d",
				blockNames[i], starts[i], blockNames[i-1], end)
		}
	}
	last := len(starts) - 1
	if end := starts[last] + sizes[last]; end != len(b) {
		return 0, codec.DecodeErrorf("clpi.Header", end, "blocks end at %d, file is %d bytes", end, len(b))
	}

	for i, rec := range h.blocks() {
		r.Record(rec, sizes[i])
	}
	return r.Offset(), r.Err()
}

func (h *Header) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "clpi.Header")
	w.String(h.TypeIndicator, 4)
	w.String(h.VersionNumber, 4)
	w.U32(h.SequenceInfoStartAddress)
	w.U32(h.ProgramInfoStartAddress)
	w.U32(h.CPIStartAddress)
	w.U32(h.ClipMarkStartAddress)
	w.U32(h.ExtensionDataStartAddress)
	w.Bytes(h.Reserved1[:])
	for _, rec := range h.blocks() {
		w.Record(rec)
	}
	return w.Offset(), w.Err()
}

func (h *Header) Len() int {
	n := preambleSize
	for _, rec := range h.blocks() {
		n += rec.Len()
	}
	return n
}

func (h *Header) Children() []codec.Record { return h.blocks() }

// addresses returns the start address each block must have.
func (h *Header) addresses() (seq, prog, cpi, mark, ext uint32) {
	seq = uint32(preambleSize + h.ClipInfo.Len())
	prog = seq + uint32(h.SequenceInfo.Len())
	cpi = prog + uint32(h.ProgramInfo.Len())
	mark = cpi + uint32(h.CPI.Len())
	if h.ExtensionData != nil {
		ext = mark + uint32(h.ClipMark.Len())
	}
	return seq, prog, cpi, mark, ext
}

// Update recomputes the block start addresses.
func (h *Header) Update() {
	h.SequenceInfoStartAddress, h.ProgramInfoStartAddress, h.CPIStartAddress,
		h.ClipMarkStartAddress, h.ExtensionDataStartAddress = h.addresses()
}

func (h *Header) Check() error {
	if h.TypeIndicator != TypeIndicator {
		return codec.ValidationErrorf("clpi.Header", "type indicator %q, want %q", h.TypeIndicator, TypeIndicator)
	}
	seq, prog, cpi, mark, ext := h.addresses()
	got := []uint32{h.SequenceInfoStartAddress, h.ProgramInfoStartAddress, h.CPIStartAddress, h.ClipMarkStartAddress, h.ExtensionDataStartAddress}
	for i, want := range []uint32{seq, prog, cpi, mark, ext} {
		if got[i] != want {
			return codec.ValidationErrorf("clpi.Header", "%s start address %d, want %d", blockNames[i+1], got[i], want)
		}
	}
	return nil
}

// ClipMark is kept as opaque bytes; no layout for it is published.
type ClipMark struct {
	Length uint32
	Data   []byte
}

func (m *ClipMark) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "ClipMark")
	m.Length = r.U32()
	m.Data = r.Bytes(int(m.Length))
	return r.Offset(), r.Err()
}

func (m *ClipMark) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "ClipMark")
	w.U32(m.Length)
	w.Bytes(m.Data)
	return w.Offset(), w.Err()
}

func (m *ClipMark) Len() int                 { return 4 + len(m.Data) }
func (m *ClipMark) Children() []codec.Record { return nil }
func (m *ClipMark) DisplaySize() int         { return len(m.Data) }
func (m *ClipMark) StoredLength() int        { return int(m.Length) }
func (m *ClipMark) SetStoredLength(n int)    { m.Length = uint32(n) }
