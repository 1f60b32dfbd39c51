package clpi

import (
	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/coding"
)

// ProgramInfo lists the program sequences of the clip.
type ProgramInfo struct {
	Length           uint32
	Reserved1        uint8
	NumberOfPrograms uint8
	Programs         []*Program
}

func (p *ProgramInfo) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "ProgramInfo")
	p.Length = r.U32()
	p.Reserved1 = r.U8()
	p.NumberOfPrograms = r.U8()
	p.Programs = nil
	for i := 0; i < int(p.NumberOfPrograms) && r.Err() == nil; i++ {
		prog := &Program{}
		r.Record(prog, -1)
		p.Programs = append(p.Programs, prog)
	}
	return r.Offset(), r.Err()
}

func (p *ProgramInfo) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "ProgramInfo")
	w.U32(p.Length)
	w.U8(p.Reserved1)
	w.U8(p.NumberOfPrograms)
	for _, prog := range p.Programs {
		w.Record(prog)
	}
	return w.Offset(), w.Err()
}

func (p *ProgramInfo) Len() int {
	n := 6
	for _, prog := range p.Programs {
		n += prog.Len()
	}
	return n
}

func (p *ProgramInfo) Children() []codec.Record {
	out := make([]codec.Record, 0, len(p.Programs))
	for _, prog := range p.Programs {
		out = append(out, prog)
	}
	return out
}

func (p *ProgramInfo) DisplaySize() int      { return p.Len() - 4 }
func (p *ProgramInfo) StoredLength() int     { return int(p.Length) }
func (p *ProgramInfo) SetStoredLength(n int) { p.Length = uint32(n) }
func (p *ProgramInfo) Update()               { p.NumberOfPrograms = uint8(len(p.Programs)) }

func (p *ProgramInfo) Check() error {
	if int(p.NumberOfPrograms) != len(p.Programs) {
		return codec.ValidationErrorf("ProgramInfo", "NumberOfPrograms %d, have %d", p.NumberOfPrograms, len(p.Programs))
	}
	return nil
}

// Program is one program sequence: the elementary streams carried from
// SPNProgramSequenceStart on.
type Program struct {
	SPNProgramSequenceStart uint32
	ProgramMapPID           uint16
	NumberOfStreamsInPS     uint8
	NumberOfGroups          uint8
	Streams                 []*StreamInPS
}

func (p *Program) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "Program")
	p.SPNProgramSequenceStart = r.U32()
	p.ProgramMapPID = r.U16()
	p.NumberOfStreamsInPS = r.U8()
	p.NumberOfGroups = r.U8()
	p.Streams = nil
	for i := 0; i < int(p.NumberOfStreamsInPS) && r.Err() == nil; i++ {
		s := &StreamInPS{}
		r.Record(s, 3+int(r.PeekU8(r.Offset()+2)))
		p.Streams = append(p.Streams, s)
	}
	return r.Offset(), r.Err()
}

func (p *Program) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "Program")
	w.U32(p.SPNProgramSequenceStart)
	w.U16(p.ProgramMapPID)
	w.U8(p.NumberOfStreamsInPS)
	w.U8(p.NumberOfGroups)
	for _, s := range p.Streams {
		w.Record(s)
	}
	return w.Offset(), w.Err()
}

func (p *Program) Len() int {
	n := 8
	for _, s := range p.Streams {
		n += s.Len()
	}
	return n
}

func (p *Program) Children() []codec.Record {
	out := make([]codec.Record, 0, len(p.Streams))
	for _, s := range p.Streams {
		out = append(out, s)
	}
	return out
}

func (p *Program) Update() { p.NumberOfStreamsInPS = uint8(len(p.Streams)) }

func (p *Program) Check() error {
	if int(p.NumberOfStreamsInPS) != len(p.Streams) {
		return codec.ValidationErrorf("Program", "NumberOfStreamsInPS %d, have %d", p.NumberOfStreamsInPS, len(p.Streams))
	}
	return nil
}

// StreamInPS is one elementary stream of a program.
type StreamInPS struct {
	StreamPID        uint16
	StreamCodingInfo StreamCodingInfo
}

func (s *StreamInPS) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "StreamInPS")
	s.StreamPID = r.U16()
	r.Record(&s.StreamCodingInfo, -1)
	return r.Offset(), r.Err()
}

func (s *StreamInPS) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamInPS")
	w.U16(s.StreamPID)
	w.Record(&s.StreamCodingInfo)
	return w.Offset(), w.Err()
}

func (s *StreamInPS) Len() int                 { return 2 + s.StreamCodingInfo.Len() }
func (s *StreamInPS) Children() []codec.Record { return []codec.Record{&s.StreamCodingInfo} }

// CodingInfo is the coding-type specific part of StreamCodingInfo. It is one
// of *VideoInfo, *HDRVideoInfo, *AudioInfo, *GraphicsInfo or *TextInfo.
type CodingInfo interface {
	class() coding.Class
	size() int
}

type VideoInfo struct {
	VideoFormat uint8
	FrameRate   uint8
	VideoAspect uint8
	Reserved1   uint8 // 2 bits
	OCFlag      uint8
	Reserved2   uint8 // 1 bit
	Reserved3   uint16
}

type HDRVideoInfo struct {
	VideoFormat      uint8
	FrameRate        uint8
	VideoAspect      uint8
	Reserved4        uint8 // 2 bits
	OCFlag           uint8
	CRFlag           uint8
	DynamicRangeType uint8
	ColorSpace       uint8
	HDRPlusFlag      uint8
	Reserved5        uint8 // 7 bits
}

type AudioInfo struct {
	AudioFormat  uint8
	SampleRate   uint8
	LanguageCode string
}

type GraphicsInfo struct {
	LanguageCode string
}

type TextInfo struct {
	CharacterCode uint8
	LanguageCode  string
}

func (*VideoInfo) class() coding.Class    { return coding.Video }
func (*HDRVideoInfo) class() coding.Class { return coding.HDRVideo }
func (*AudioInfo) class() coding.Class    { return coding.Audio }
func (*GraphicsInfo) class() coding.Class { return coding.Graphics }
func (*TextInfo) class() coding.Class     { return coding.Text }

func (*VideoInfo) size() int    { return 4 }
func (*HDRVideoInfo) size() int { return 4 }
func (*AudioInfo) size() int    { return 4 }
func (*GraphicsInfo) size() int { return 3 }
func (*TextInfo) size() int     { return 4 }

// StreamCodingInfo describes how a stream is coded. Its Length is taken
// from the file, and any bytes after the variant fields are kept in Padding.
type StreamCodingInfo struct {
	Length     uint8
	CodingType coding.Type
	Attrs      CodingInfo
	Padding    []byte
}

func (s *StreamCodingInfo) Unmarshal(b []byte) (int, error) {
	if len(b) == 0 || int(b[0])+1 > len(b) {
		return 0, codec.DecodeErrorf("StreamCodingInfo", 0, "length outside %d-byte buffer", len(b))
	}
	r := codec.NewReader(b[:int(b[0])+1], "StreamCodingInfo")
	s.Length = r.U8()
	s.CodingType = coding.Type(r.U8())
	switch coding.Classify(s.CodingType) {
	case coding.Video:
		v := &VideoInfo{}
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		v.VideoFormat, v.FrameRate = bits.U8(4), bits.U8(4)
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.VideoAspect, v.Reserved1, v.OCFlag, v.Reserved2 = bits.U8(4), bits.U8(2), bits.Flag(), bits.Flag()
		v.Reserved3 = r.U16()
		s.Attrs = v
	case coding.HDRVideo:
		v := &HDRVideoInfo{}
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		v.VideoFormat, v.FrameRate = bits.U8(4), bits.U8(4)
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.VideoAspect, v.Reserved4, v.OCFlag, v.CRFlag = bits.U8(4), bits.U8(2), bits.Flag(), bits.Flag()
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.DynamicRangeType, v.ColorSpace = bits.U8(4), bits.U8(4)
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		v.HDRPlusFlag, v.Reserved5 = bits.Flag(), bits.U8(7)
		s.Attrs = v
	case coding.Audio:
		bits := codec.NewBitReader(uint64(r.U8()), 8)
		v := &AudioInfo{AudioFormat: bits.U8(4), SampleRate: bits.U8(4)}
		v.LanguageCode = r.String(3)
		s.Attrs = v
	case coding.Graphics:
		s.Attrs = &GraphicsInfo{LanguageCode: r.String(3)}
	case coding.Text:
		v := &TextInfo{CharacterCode: r.U8()}
		v.LanguageCode = r.String(3)
		s.Attrs = v
	default:
		r.Fail("unknown stream coding type %s", s.CodingType)
	}
	s.Padding = r.Rest()
	return r.Offset(), r.Err()
}

func (s *StreamCodingInfo) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "StreamCodingInfo")
	w.U8(s.Length)
	w.U8(uint8(s.CodingType))
	switch v := s.Attrs.(type) {
	case *VideoInfo:
		var bits codec.BitWriter
		bits.Put(4, uint64(v.VideoAspect)).Put(2, uint64(v.Reserved1)).Put(1, uint64(v.OCFlag)).Put(1, uint64(v.Reserved2))
		f, err := bits.Value()
		if err != nil {
			return 0, err
		}
		w.U8(v.VideoFormat<<4 | v.FrameRate)
		w.U8(uint8(f))
		w.U16(v.Reserved3)
	case *HDRVideoInfo:
		var flags, hdr codec.BitWriter
		flags.Put(4, uint64(v.VideoAspect)).Put(2, uint64(v.Reserved4)).Put(1, uint64(v.OCFlag)).Put(1, uint64(v.CRFlag))
		f, err := flags.Value()
		if err != nil {
			return 0, err
		}
		hdr.Put(1, uint64(v.HDRPlusFlag)).Put(7, uint64(v.Reserved5))
		g, err := hdr.Value()
		if err != nil {
			return 0, err
		}
		w.U8(v.VideoFormat<<4 | v.FrameRate)
		w.U8(uint8(f))
		w.U8(v.DynamicRangeType<<4 | v.ColorSpace)
		w.U8(uint8(g))
	case *AudioInfo:
		w.U8(v.AudioFormat<<4 | v.SampleRate)
		w.String(v.LanguageCode, 3)
	case *GraphicsInfo:
		w.String(v.LanguageCode, 3)
	case *TextInfo:
		w.U8(v.CharacterCode)
		w.String(v.LanguageCode, 3)
	default:
		w.Fail("no coding info for coding type %s", s.CodingType)
	}
	w.Bytes(s.Padding)
	return w.Offset(), w.Err()
}

func (s *StreamCodingInfo) Len() int                 { return s.DisplaySize() + 1 }
func (s *StreamCodingInfo) Children() []codec.Record { return nil }

func (s *StreamCodingInfo) DisplaySize() int {
	n := 1 + len(s.Padding)
	if s.Attrs != nil {
		n += s.Attrs.size()
	}
	return n
}

func (s *StreamCodingInfo) StoredLength() int     { return int(s.Length) }
func (s *StreamCodingInfo) SetStoredLength(n int) { s.Length = uint8(n) }

func (s *StreamCodingInfo) Check() error {
	class := coding.Classify(s.CodingType)
	if class == coding.Unknown {
		return codec.ValidationErrorf("StreamCodingInfo", "unknown stream coding type %s", s.CodingType)
	}
	if s.Attrs == nil || s.Attrs.class() != class {
		return codec.ValidationErrorf("StreamCodingInfo", "coding type %s needs %s coding info", s.CodingType, class)
	}
	return nil
}
