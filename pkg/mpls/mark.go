package mpls

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// Mark types.
const (
	MarkTypeEntry = 1 // chapter
	MarkTypeLink  = 2
)

const markSize = 14

// PlayListMark holds the chapter and link marks of the playlist.
type PlayListMark struct {
	Length                uint32
	NumberOfPlayListMarks uint16
	Marks                 []*Mark
}

func (m *PlayListMark) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "PlayListMark")
	m.Length = r.U32()
	m.NumberOfPlayListMarks = r.U16()
	m.Marks = nil
	for i := 0; i < int(m.NumberOfPlayListMarks) && r.Err() == nil; i++ {
		mark := &Mark{}
		r.Record(mark, markSize)
		m.Marks = append(m.Marks, mark)
	}
	return r.Offset(), r.Err()
}

func (m *PlayListMark) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "PlayListMark")
	w.U32(m.Length)
	w.U16(m.NumberOfPlayListMarks)
	for _, mark := range m.Marks {
		w.Record(mark)
	}
	return w.Offset(), w.Err()
}

func (m *PlayListMark) Len() int { return m.DisplaySize() + 4 }

func (m *PlayListMark) Children() []codec.Record {
	out := make([]codec.Record, 0, len(m.Marks))
	for _, mark := range m.Marks {
		out = append(out, mark)
	}
	return out
}

func (m *PlayListMark) DisplaySize() int      { return 2 + markSize*len(m.Marks) }
func (m *PlayListMark) StoredLength() int     { return int(m.Length) }
func (m *PlayListMark) SetStoredLength(n int) { m.Length = uint32(n) }
func (m *PlayListMark) Update()               { m.NumberOfPlayListMarks = uint16(len(m.Marks)) }

func (m *PlayListMark) Check() error {
	if int(m.NumberOfPlayListMarks) != len(m.Marks) {
		return codec.ValidationErrorf("PlayListMark", "NumberOfPlayListMarks %d, have %d", m.NumberOfPlayListMarks, len(m.Marks))
	}
	return nil
}

// Mark is a single playlist mark. MarkTimeStamp is in 45 kHz ticks on the
// referenced play item's timeline.
type Mark struct {
	Reserved1       uint8
	MarkType        uint8
	RefToPlayItemID uint16
	MarkTimeStamp   uint32
	EntryESPID      uint16
	Duration        uint32
}

func (m *Mark) Unmarshal(b []byte) (int, error) { return codec.UnpackFixed(b, m) }
func (m *Mark) Marshal(b []byte) (int, error)   { return codec.PackFixed(b, m) }
func (m *Mark) Len() int                        { return markSize }
func (m *Mark) Children() []codec.Record        { return nil }
