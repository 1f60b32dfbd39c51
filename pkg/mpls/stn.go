package mpls

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/coding"
)

// StreamCategory indexes the stream lists of an STN table in wire order.
type StreamCategory int

const (
	PrimaryVideo StreamCategory = iota
	PrimaryAudio
	PrimaryPG
	PrimaryIG
	SecondaryAudio
	SecondaryVideo
	PiPPG
	DolbyVision
	NumStreamCategories
)

func (c StreamCategory) String() string {
	switch c {
	case PrimaryVideo:
		return "PrimaryVideo"
	case PrimaryAudio:
		return "PrimaryAudio"
	case PrimaryPG:
		return "PrimaryPG"
	case PrimaryIG:
		return "PrimaryIG"
	case SecondaryAudio:
		return "SecondaryAudio"
	case SecondaryVideo:
		return "SecondaryVideo"
	case PiPPG:
		return "PiPPG"
	case DolbyVision:
		return "DolbyVision"
	default:
		return "Unknown"
	}
}

// refLists returns how many stream reference lists follow each stream pair
// of category c.
func (c StreamCategory) refLists() int {
	switch c {
	case SecondaryAudio:
		return 1 // primary audio refs
	case SecondaryVideo:
		return 2 // secondary audio refs, PiP PG refs
	default:
		return 0
	}
}

// STNTable is the stream number table of a play item. A zero Length with no
// streams is an empty table that encodes as the length field alone.
type STNTable struct {
	Length          uint16
	Reserved1       uint16
	NumberOfStreams [NumStreamCategories]uint8
	Reserved2       uint32
	Streams         [NumStreamCategories][]*StreamPair
}

func (t *STNTable) streamCount() int {
	n := 0
	for _, s := range t.Streams {
		n += len(s)
	}
	return n
}

func (t *STNTable) empty() bool {
	return t.Length == 0 && t.streamCount() == 0
}

func (t *STNTable) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "STNTable")
	t.Length = r.U16()
	t.Streams = [NumStreamCategories][]*StreamPair{}
	if t.Length == 0 {
		return r.Offset(), r.Err()
	}
	t.Reserved1 = r.U16()
	for c := range t.NumberOfStreams {
		t.NumberOfStreams[c] = r.U8()
	}
	t.Reserved2 = r.U32()
	for c := StreamCategory(0); c < NumStreamCategories; c++ {
		for i := 0; i < int(t.NumberOfStreams[c]) && r.Err() == nil; i++ {
			sp := NewStreamPair(c)
			r.Record(sp, -1)
			t.Streams[c] = append(t.Streams[c], sp)
		}
	}
	return r.Offset(), r.Err()
}

func (t *STNTable) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "STNTable")
	w.U16(t.Length)
	if t.empty() {
		return w.Offset(), w.Err()
	}
	w.U16(t.Reserved1)
	for _, n := range t.NumberOfStreams {
		w.U8(n)
	}
	w.U32(t.Reserved2)
	for _, streams := range t.Streams {
		for _, sp := range streams {
			w.Record(sp)
		}
	}
	return w.Offset(), w.Err()
}

func (t *STNTable) Len() int { return t.DisplaySize() + 2 }

func (t *STNTable) Children() []codec.Record {
	out := make([]codec.Record, 0, t.streamCount())
	for _, streams := range t.Streams {
		for _, sp := range streams {
			out = append(out, sp)
		}
	}
	return out
}

func (t *STNTable) DisplaySize() int {
	if t.empty() {
		return 0
	}
	n := 16
	for _, streams := range t.Streams {
		for _, sp := range streams {
			n += sp.Len()
		}
	}
	return n - 2
}

func (t *STNTable) StoredLength() int     { return int(t.Length) }
func (t *STNTable) SetStoredLength(n int) { t.Length = uint16(n) }

func (t *STNTable) Update() {
	for c, streams := range t.Streams {
		t.NumberOfStreams[c] = uint8(len(streams))
	}
}

func (t *STNTable) Check() error {
	for c, streams := range t.Streams {
		cat := StreamCategory(c)
		if int(t.NumberOfStreams[c]) != len(streams) {
			return codec.ValidationErrorf("STNTable", "%s count %d, have %d", cat, t.NumberOfStreams[c], len(streams))
		}
		for i, sp := range streams {
			if len(sp.Refs) != cat.refLists() {
				return codec.ValidationErrorf("STNTable", "%s stream %d has %d reference lists, want %d", cat, i, len(sp.Refs), cat.refLists())
			}
		}
	}
	return nil
}

// StreamPair is one STN table entry: where the stream lives and how it is
// coded. Secondary audio and video streams carry trailing reference lists.
type StreamPair struct {
	Entry      StreamEntry
	Attributes StreamAttributes
	Refs       []*StreamRefList
}

// NewStreamPair returns an empty pair with the reference lists category c
// requires.
func NewStreamPair(c StreamCategory) *StreamPair {
	sp := &StreamPair{}
	for i := 0; i < c.refLists(); i++ {
		sp.Refs = append(sp.Refs, &StreamRefList{})
	}
	return sp
}

// Unmarshal reads the entry, the attributes and one reference list per
// element already present in Refs.
func (s *StreamPair) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "StreamPair")
	r.Record(&s.Entry, int(r.PeekU8(r.Offset()))+1)
	r.Record(&s.Attributes, int(r.PeekU8(r.Offset()))+1)
	for _, ref := range s.Refs {
		r.Record(ref, -1)
	}
	return r.Offset(), r.Err()
}

func (s *StreamPair) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamPair")
	w.Record(&s.Entry)
	w.Record(&s.Attributes)
	for _, ref := range s.Refs {
		w.Record(ref)
	}
	return w.Offset(), w.Err()
}

func (s *StreamPair) Len() int {
	n := s.Entry.Len() + s.Attributes.Len()
	for _, ref := range s.Refs {
		n += ref.Len()
	}
	return n
}

func (s *StreamPair) Children() []codec.Record {
	out := []codec.Record{&s.Entry, &s.Attributes}
	for _, ref := range s.Refs {
		out = append(out, ref)
	}
	return out
}

// StreamRefList lists stream numbers a secondary stream may be combined
// with. The ids are padded to an even count.
type StreamRefList struct {
	NumberOfRefs uint8
	Reserved     uint8
	IDs          []uint8
	Padding      uint8
}

func (l *StreamRefList) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "StreamRefList")
	l.NumberOfRefs = r.U8()
	l.Reserved = r.U8()
	l.IDs = r.Bytes(int(l.NumberOfRefs))
	l.Padding = 0
	if l.NumberOfRefs%2 == 1 {
		l.Padding = r.U8()
	}
	return r.Offset(), r.Err()
}

func (l *StreamRefList) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamRefList")
	w.U8(l.NumberOfRefs)
	w.U8(l.Reserved)
	w.Bytes(l.IDs)
	if len(l.IDs)%2 == 1 {
		w.U8(l.Padding)
	}
	return w.Offset(), w.Err()
}

func (l *StreamRefList) Len() int                 { return 2 + len(l.IDs) + len(l.IDs)%2 }
func (l *StreamRefList) Children() []codec.Record { return nil }
func (l *StreamRefList) Update()                  { l.NumberOfRefs = uint8(len(l.IDs)) }

func (l *StreamRefList) Check() error {
	if int(l.NumberOfRefs) != len(l.IDs) {
		return codec.ValidationErrorf("StreamRefList", "NumberOfRefs %d, have %d", l.NumberOfRefs, len(l.IDs))
	}
	return nil
}

// Stream entry types.
const (
	StreamTypePlayItem     = 1 // stream muxed in the play item's clip
	StreamTypeSubPath      = 2 // stream in a sub-path clip
	StreamTypeSubPathInMux = 3 // sub-path stream muxed in the main clip
	StreamTypeDolbyVision  = 4
)

const streamEntryDisplaySize = 9

// StreamEntry locates a stream. Which reference fields are meaningful
// depends on StreamType; the rest encode as zero padding.
type StreamEntry struct {
	Length         uint8
	StreamType     uint8
	RefToSubPathID uint8
	RefToSubClipID uint8
	RefToStreamPID uint16
}

func (e *StreamEntry) present() bool { return e.Length != 0 || e.StreamType != 0 }

func (e *StreamEntry) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "StreamEntry")
	e.Length = r.U8()
	if e.Length == 0 {
		return r.Offset(), r.Err()
	}
	e.StreamType = r.U8()
	switch e.StreamType {
	case StreamTypePlayItem:
		e.RefToStreamPID = r.U16()
	case StreamTypeSubPath:
		e.RefToSubPathID = r.U8()
		e.RefToSubClipID = r.U8()
		e.RefToStreamPID = r.U16()
	case StreamTypeSubPathInMux, StreamTypeDolbyVision:
		e.RefToSubPathID = r.U8()
		e.RefToStreamPID = r.U16()
	default:
		r.Fail("unknown stream type %d", e.StreamType)
	}
	r.Seek(int(e.Length) + 1)
	return r.Offset(), r.Err()
}

func (e *StreamEntry) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamEntry")
	w.U8(e.Length)
	if !e.present() {
		return w.Offset(), w.Err()
	}
	w.U8(e.StreamType)
	switch e.StreamType {
	case StreamTypePlayItem:
		w.U16(e.RefToStreamPID)
	case StreamTypeSubPath:
		w.U8(e.RefToSubPathID)
		w.U8(e.RefToSubClipID)
		w.U16(e.RefToStreamPID)
	case StreamTypeSubPathInMux, StreamTypeDolbyVision:
		w.U8(e.RefToSubPathID)
		w.U16(e.RefToStreamPID)
	default:
		w.Fail("unknown stream type %d", e.StreamType)
	}
	w.Zero(streamEntryDisplaySize + 1 - w.Offset())
	return w.Offset(), w.Err()
}

func (e *StreamEntry) Len() int                 { return e.DisplaySize() + 1 }
func (e *StreamEntry) Children() []codec.Record { return nil }

func (e *StreamEntry) DisplaySize() int {
	if !e.present() {
		return 0
	}
	return streamEntryDisplaySize
}

func (e *StreamEntry) StoredLength() int     { return int(e.Length) }
func (e *StreamEntry) SetStoredLength(n int) { e.Length = uint8(n) }

// Check rejects stream types with no known layout.
func (e *StreamEntry) Check() error {
	if !e.present() {
		return nil
	}
	switch e.StreamType {
	case StreamTypePlayItem, StreamTypeSubPath, StreamTypeSubPathInMux, StreamTypeDolbyVision:
		return nil
	default:
		return codec.ValidationErrorf("StreamEntry", "unknown stream type %d", e.StreamType)
	}
}

const streamAttributesDisplaySize = 5

// Attributes is the coding-type specific part of StreamAttributes. It is one
// of *VideoAttributes, *HDRVideoAttributes, *AudioAttributes,
// *GraphicsAttributes or *TextAttributes.
type Attributes interface {
	class() coding.Class
}

type VideoAttributes struct {
	VideoFormat uint8
	FrameRate   uint8
}

type HDRVideoAttributes struct {
	VideoFormat      uint8
	FrameRate        uint8
	DynamicRangeType uint8
	ColorSpace       uint8
	CRFlag           uint8
	HDRPlusFlag      uint8
	Reserved         uint8 // 6 bits
}

type AudioAttributes struct {
	AudioFormat  uint8
	SampleRate   uint8
	LanguageCode string
}

type GraphicsAttributes struct {
	LanguageCode string
}

type TextAttributes struct {
	CharacterCode uint8
	LanguageCode  string
}

func (*VideoAttributes) class() coding.Class    { return coding.Video }
func (*HDRVideoAttributes) class() coding.Class { return coding.HDRVideo }
func (*AudioAttributes) class() coding.Class    { return coding.Audio }
func (*GraphicsAttributes) class() coding.Class { return coding.Graphics }
func (*TextAttributes) class() coding.Class     { return coding.Text }

// StreamAttributes describes how a stream is coded.
type StreamAttributes struct {
	Length     uint8
	CodingType coding.Type
	Attrs      Attributes
}

func (a *StreamAttributes) present() bool { return a.Length != 0 || a.Attrs != nil }

func (a *StreamAttributes) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "StreamAttributes")
	a.Length = r.U8()
	a.Attrs = nil
	if a.Length == 0 {
		return r.Offset(), r.Err()
	}
	a.CodingType = coding.Type(r.U8())
	switch coding.Classify(a.CodingType) {
	case coding.Video:
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		a.Attrs = &VideoAttributes{VideoFormat: bits.U8(4), FrameRate: bits.U8(4)}
	case coding.HDRVideo:
		v := &HDRVideoAttributes{}
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		v.VideoFormat, v.FrameRate = bits.U8(4), bits.U8(4)
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.DynamicRangeType, v.ColorSpace = bits.U8(4), bits.U8(4)
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.CRFlag, v.HDRPlusFlag, v.Reserved = bits.Flag(), bits.Flag(), bits.U8(6)
		a.Attrs = v
	case coding.Audio:
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		v := &AudioAttributes{AudioFormat: bits.U8(4), SampleRate: bits.U8(4)}
		v.LanguageCode = r.String(3)
		a.Attrs = v
	case coding.Graphics:
		a.Attrs = &GraphicsAttributes{LanguageCode: r.String(3)}
	case coding.Text:
		v := &TextAttributes{CharacterCode: r.U8()}
		v.LanguageCode = r.String(3)
		a.Attrs = v
	default:
		r.Fail("unknown stream coding type %s", a.CodingType)
	}
	r.Seek(int(a.Length) + 1)
	return r.Offset(), r.Err()
}

func (a *StreamAttributes) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamAttributes")
	w.U8(a.Length)
	if !a.present() {
		return w.Offset(), w.Err()
	}
	w.U8(uint8(a.CodingType))
	switch v := a.Attrs.(type) {
	case *VideoAttributes:
		w.U8(v.VideoFormat<<4 | v.FrameRate)
	case *HDRVideoAttributes:
		w.U8(v.VideoFormat<<4 | v.FrameRate)
		w.U8(v.DynamicRangeType<<4 | v.ColorSpace)
		var bits codec.BitWriter
		bits.Put(1, uint64(v.CRFlag)).Put(1, uint64(v.HDRPlusFlag)).Put(6, uint64(v.Reserved))
		f, err := bits.Value()
		if err != nil {
			return 0, err
		}
		w.U8(uint8(f))
	case *AudioAttributes:
		w.U8(v.AudioFormat<<4 | v.SampleRate)
		w.String(v.LanguageCode, 3)
	case *GraphicsAttributes:
		w.String(v.LanguageCode, 3)
	case *TextAttributes:
		w.U8(v.CharacterCode)
		w.String(v.LanguageCode, 3)
	default:
		w.Fail("no attributes for coding type %s", a.CodingType)
	}
	w.Zero(streamAttributesDisplaySize + 1 - w.Offset())
	return w.Offset(), w.Err()
}

func (a *StreamAttributes) Len() int                 { return a.DisplaySize() + 1 }
func (a *StreamAttributes) Children() []codec.Record { return nil }

func (a *StreamAttributes) DisplaySize() int {
	if !a.present() {
		return 0
	}
	return streamAttributesDisplaySize
}

func (a *StreamAttributes) StoredLength() int     { return int(a.Length) }
func (a *StreamAttributes) SetStoredLength(n int) { a.Length = uint8(n) }

func (a *StreamAttributes) Check() error {
	if !a.present() {
		return nil
	}
	class := coding.Classify(a.CodingType)
	if class == coding.Unknown {
		return codec.ValidationErrorf("StreamAttributes", "unknown stream coding type %s", a.CodingType)
	}
	if a.Attrs == nil || a.Attrs.class() != class {
		return codec.ValidationErrorf("StreamAttributes", "coding type %s needs %s attributes", a.CodingType, class)
	}
	return nil
}
