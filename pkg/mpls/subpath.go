package mpls

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// Sub-path types seen on discs.
const (
	SubPathPrimaryAudioSlideshow = 2
	SubPathIGMenu                = 3
	SubPathTextSubtitle          = 4
	SubPathOutOfMuxSync          = 5 // plug-in disc content synchronized with a play item
	SubPathOutOfMuxAsync         = 6
	SubPathInMuxSync             = 7
	SubPathStereoscopicVideo     = 8
	SubPathStereoscopicIG        = 9
	SubPathDolbyVision           = 10
)

// SubPath is an additional presentation path played alongside the main path.
type SubPath struct {
	Length               uint32
	Reserved1            uint8
	SubPathType          uint8
	Reserved2            uint16 // 15 bits
	IsRepeatSubPath      uint8
	Reserved3            uint8
	NumberOfSubPlayItems uint8
	SubPlayItems         []*SubPlayItem
}

func (s *SubPath) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "SubPath")
	s.Length = r.U32()
	s.Reserved1 = r.U8()
	s.SubPathType = r.U8()
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	s.Reserved2 = bits.U16(15)
	s.IsRepeatSubPath = bits.Flag()
	s.Reserved3 = r.U8()
	s.NumberOfSubPlayItems = r.U8()
	s.SubPlayItems = nil
	for i := 0; i < int(s.NumberOfSubPlayItems) && r.Err() == nil; i++ {
		item := &SubPlayItem{}
		r.Record(item, int(r.PeekU16(r.Offset()))+2)
		s.SubPlayItems = append(s.SubPlayItems, item)
	}
	return r.Offset(), r.Err()
}

func (s *SubPath) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	flags, err := bits.Put(15, uint64(s.Reserved2)).Put(1, uint64(s.IsRepeatSubPath)).Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "SubPath")
	w.U32(s.Length)
	w.U8(s.Reserved1)
	w.U8(s.SubPathType)
	w.U16(uint16(flags))
	w.U8(s.Reserved3)
	w.U8(s.NumberOfSubPlayItems)
	for _, item := range s.SubPlayItems {
		w.Record(item)
	}
	return w.Offset(), w.Err()
}

func (s *SubPath) Len() int {
	n := 10
	for _, item := range s.SubPlayItems {
		n += item.Len()
	}
	return n
}

func (s *SubPath) Children() []codec.Record {
	out := make([]codec.Record, 0, len(s.SubPlayItems))
	for _, item := range s.SubPlayItems {
		out = append(out, item)
	}
	return out
}

func (s *SubPath) DisplaySize() int      { return s.Len() - 4 }
func (s *SubPath) StoredLength() int     { return int(s.Length) }
func (s *SubPath) SetStoredLength(n int) { s.Length = uint32(n) }
func (s *SubPath) Update()               { s.NumberOfSubPlayItems = uint8(len(s.SubPlayItems)) }

func (s *SubPath) Check() error {
	if int(s.NumberOfSubPlayItems) != len(s.SubPlayItems) {
		return codec.ValidationErrorf("SubPath", "NumberOfSubPlayItems %d, have %d", s.NumberOfSubPlayItems, len(s.SubPlayItems))
	}
	return nil
}

// MultiClip lists the extra clips of a sub play item. Like angle counts,
// NumberOfMultiClipEntries includes the sub play item's own clip.
type MultiClip struct {
	NumberOfMultiClipEntries uint8
	Reserved2                uint8
	Clips                    []MultiClipEntry
}

// SubPlayItem plays part of a clip on a sub-path, synchronized to a play
// item of the main path.
type SubPlayItem struct {
	Length                  uint16
	ClipInformationFileName string
	ClipCodecIdentifier     string
	Reserved1               uint32 // 27 bits
	ConnectionCondition     uint8
	IsMultiClipEntries      uint8
	RefToSTCID              uint8
	INTime                  uint32
	OUTTime                 uint32
	SyncPlayItemID          uint16
	SyncStartPTS            uint32

	MultiClip *MultiClip
}

func (s *SubPlayItem) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "SubPlayItem")
	s.Length = r.U16()
	s.ClipInformationFileName = r.String(5)
	s.ClipCodecIdentifier = r.String(4)
	bits := codec.NewBitReader(uint64(r.U32()), 32)
	s.Reserved1 = bits.U32(27)
	s.ConnectionCondition = bits.U8(4)
	s.IsMultiClipEntries = bits.Flag()
	s.RefToSTCID = r.U8()
	s.INTime = r.U32()
	s.OUTTime = r.U32()
	s.SyncPlayItemID = r.U16()
	s.SyncStartPTS = r.U32()
	s.MultiClip = nil
	if s.IsMultiClipEntries == 1 {
		mc := &MultiClip{NumberOfMultiClipEntries: r.U8(), Reserved2: r.U8()}
		for i := 1; i < int(mc.NumberOfMultiClipEntries) && r.Err() == nil; i++ {
			mc.Clips = append(mc.Clips, readClipEntry(r))
		}
		s.MultiClip = mc
	}
	return r.Offset(), r.Err()
}

func (s *SubPlayItem) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	flags, err := bits.Put(27, uint64(s.Reserved1)).
		Put(4, uint64(s.ConnectionCondition)).
		Put(1, uint64(s.IsMultiClipEntries)).
		Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "SubPlayItem")
	w.U16(s.Length)
	w.String(s.ClipInformationFileName, 5)
	w.String(s.ClipCodecIdentifier, 4)
	w.U32(uint32(flags))
	w.U8(s.RefToSTCID)
	w.U32(s.INTime)
	w.U32(s.OUTTime)
	w.U16(s.SyncPlayItemID)
	w.U32(s.SyncStartPTS)
	if mc := s.MultiClip; mc != nil {
		w.U8(mc.NumberOfMultiClipEntries)
		w.U8(mc.Reserved2)
		for _, c := range mc.Clips {
			writeClipEntry(w, c)
		}
	}
	return w.Offset(), w.Err()
}

func (s *SubPlayItem) Len() int                 { return s.DisplaySize() + 2 }
func (s *SubPlayItem) Children() []codec.Record { return nil }

func (s *SubPlayItem) DisplaySize() int {
	if s.MultiClip != nil {
		return 30 + multiClipEntrySize*len(s.MultiClip.Clips)
	}
	return 28
}

func (s *SubPlayItem) StoredLength() int     { return int(s.Length) }
func (s *SubPlayItem) SetStoredLength(n int) { s.Length = uint16(n) }

func (s *SubPlayItem) Update() {
	s.IsMultiClipEntries = 0
	if s.MultiClip != nil {
		s.IsMultiClipEntries = 1
		s.MultiClip.NumberOfMultiClipEntries = uint8(len(s.MultiClip.Clips) + 1)
	}
}

func (s *SubPlayItem) Check() error {
	if (s.IsMultiClipEntries == 1) != (s.MultiClip != nil) {
		return codec.ValidationErrorf("SubPlayItem", "IsMultiClipEntries %d does not match clip block presence", s.IsMultiClipEntries)
	}
	if mc := s.MultiClip; mc != nil && int(mc.NumberOfMultiClipEntries) != len(mc.Clips)+1 {
		return codec.ValidationErrorf("SubPlayItem", "NumberOfMultiClipEntries %d, have %d clips besides the main clip", mc.NumberOfMultiClipEntries, len(mc.Clips))
	}
	return nil
}
