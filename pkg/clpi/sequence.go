package clpi

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

const stcSequenceSize = 14

// SequenceInfo lists the arrival time clock sequences of the clip.
type SequenceInfo struct {
	Length               uint32
	Reserved1            uint8
	NumberOfATCSequences uint8
	ATCSequences         []*ATCSequence
}

func (s *SequenceInfo) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "SequenceInfo")
	s.Length = r.U32()
	s.Reserved1 = r.U8()
	s.NumberOfATCSequences = r.U8()
	s.ATCSequences = nil
	for i := 0; i < int(s.NumberOfATCSequences) && r.Err() == nil; i++ {
		atc := &ATCSequence{}
		r.Record(atc, 6+stcSequenceSize*int(r.PeekU8(r.Offset()+4)))
		s.ATCSequences = append(s.ATCSequences, atc)
	}
	return r.Offset(), r.Err()
}

func (s *SequenceInfo) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "SequenceInfo")
	w.U32(s.Length)
	w.U8(s.Reserved1)
	w.U8(s.NumberOfATCSequences)
	for _, atc := range s.ATCSequences {
		w.Record(atc)
	}
	return w.Offset(), w.Err()
}

func (s *SequenceInfo) Len() int {
	n := 6
	for _, atc := range s.ATCSequences {
		n += atc.Len()
	}
	return n
}

func (s *SequenceInfo) Children() []codec.Record {
	out := make([]codec.Record, 0, len(s.ATCSequences))
	for _, atc := range s.ATCSequences {
		out = append(out, atc)
	}
	return out
}

func (s *SequenceInfo) DisplaySize() int      { return s.Len() - 4 }
func (s *SequenceInfo) StoredLength() int     { return int(s.Length) }
func (s *SequenceInfo) SetStoredLength(n int) { s.Length = uint32(n) }
func (s *SequenceInfo) Update()               { s.NumberOfATCSequences = uint8(len(s.ATCSequences)) }

func (s *SequenceInfo) Check() error {
	if int(s.NumberOfATCSequences) != len(s.ATCSequences) {
		return codec.ValidationErrorf("SequenceInfo", "NumberOfATCSequences %d, have %d", s.NumberOfATCSequences, len(s.ATCSequences))
	}
	return nil
}

// ATCSequence is a run of source packets with a continuous arrival clock.
type ATCSequence struct {
	SPNATCStart          uint32
	NumberOfSTCSequences uint8
	OffsetSTCID          uint8
	STCSequences         []*STCSequence
}

func (a *ATCSequence) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "ATCSequence")
	a.SPNATCStart = r.U32()
	a.NumberOfSTCSequences = r.U8()
	a.OffsetSTCID = r.U8()
	a.STCSequences = nil
	for i := 0; i < int(a.NumberOfSTCSequences) && r.Err() == nil; i++ {
		stc := &STCSequence{}
		r.Record(stc, stcSequenceSize)
		a.STCSequences = append(a.STCSequences, stc)
	}
	return r.Offset(), r.Err()
}

func (a *ATCSequence) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "ATCSequence")
	w.U32(a.SPNATCStart)
	w.U8(a.NumberOfSTCSequences)
	w.U8(a.OffsetSTCID)
	for _, stc := range a.STCSequences {
		w.Record(stc)
	}
	return w.Offset(), w.Err()
}

func (a *ATCSequence) Len() int { return 6 + stcSequenceSize*len(a.STCSequences) }

func (a *ATCSequence) Children() []codec.Record {
	out := make([]codec.Record, 0, len(a.STCSequences))
	for _, stc := range a.STCSequences {
		out = append(out, stc)
	}
	return out
}

func (a *ATCSequence) Update() { a.NumberOfSTCSequences = uint8(len(a.STCSequences)) }

func (a *ATCSequence) Check() error {
	if int(a.NumberOfSTCSequences) != len(a.STCSequences) {
		return codec.ValidationErrorf("ATCSequence", "NumberOfSTCSequences %d, have %d", a.NumberOfSTCSequences, len(a.STCSequences))
	}
	return nil
}

// STCSequence is a run with a continuous system time clock. Times are in
// 45 kHz ticks.
type STCSequence struct {
	PCRPID                uint16
	SPNSTCStart           uint32
	PresentationStartTime uint32
	PresentationEndTime   uint32
}

func (s *STCSequence) Unmarshal(b []byte) (int, error) { return codec.UnpackFixed(b, s) }
func (s *STCSequence) Marshal(b []byte) (int, error)   { return codec.PackFixed(b, s) }
func (s *STCSequence) Len() int                        { return stcSequenceSize }
func (s *STCSequence) Children() []codec.Record        { return nil }
