package mpls

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// PlayList holds the play items and sub-paths of the playlist.
type PlayList struct {
	Length            uint32
	Reserved1         uint16
	NumberOfPlayItems uint16
	NumberOfSubPaths  uint16
	PlayItems         []*PlayItem
	SubPaths          []*SubPath
}

func (p *PlayList) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "PlayList")
	p.Length = r.U32()
	p.Reserved1 = r.U16()
	p.NumberOfPlayItems = r.U16()
	p.NumberOfSubPaths = r.U16()
	p.PlayItems = nil
	for i := 0; i < int(p.NumberOfPlayItems) && r.Err() == nil; i++ {
		item := &PlayItem{}
		r.Record(item, int(r.PeekU16(r.Offset()))+2)
		p.PlayItems = append(p.PlayItems, item)
	}
	p.SubPaths = nil
	for i := 0; i < int(p.NumberOfSubPaths) && r.Err() == nil; i++ {
		sp := &SubPath{}
		r.Record(sp, int(r.PeekU32(r.Offset()))+4)
		p.SubPaths = append(p.SubPaths, sp)
	}
	return r.Offset(), r.Err()
}

func (p *PlayList) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "PlayList")
	w.U32(p.Length)
	w.U16(p.Reserved1)
	w.U16(p.NumberOfPlayItems)
	w.U16(p.NumberOfSubPaths)
	for _, item := range p.PlayItems {
		w.Record(item)
	}
	for _, sp := range p.SubPaths {
		w.Record(sp)
	}
	return w.Offset(), w.Err()
}

func (p *PlayList) Len() int {
	n := 10
	for _, item := range p.PlayItems {
		n += item.Len()
	}
	for _, sp := range p.SubPaths {
		n += sp.Len()
	}
	return n
}

func (p *PlayList) Children() []codec.Record {
	out := make([]codec.Record, 0, len(p.PlayItems)+len(p.SubPaths))
	for _, item := range p.PlayItems {
		out = append(out, item)
	}
	for _, sp := range p.SubPaths {
		out = append(out, sp)
	}
	return out
}

func (p *PlayList) DisplaySize() int      { return p.Len() - 4 }
func (p *PlayList) StoredLength() int     { return int(p.Length) }
func (p *PlayList) SetStoredLength(n int) { p.Length = uint32(n) }

func (p *PlayList) Update() {
	p.NumberOfPlayItems = uint16(len(p.PlayItems))
	p.NumberOfSubPaths = uint16(len(p.SubPaths))
}

func (p *PlayList) Check() error {
	if int(p.NumberOfPlayItems) != len(p.PlayItems) {
		return codec.ValidationErrorf("PlayList", "NumberOfPlayItems %d, have %d", p.NumberOfPlayItems, len(p.PlayItems))
	}
	if int(p.NumberOfSubPaths) != len(p.SubPaths) {
		return codec.ValidationErrorf("PlayList", "NumberOfSubPaths %d, have %d", p.NumberOfSubPaths, len(p.SubPaths))
	}
	return nil
}

// MultiClipEntry references an additional clip of a multi-angle play item
// or a multi-clip sub play item.
type MultiClipEntry struct {
	ClipInformationFileName string
	ClipCodecIdentifier     string
	RefToSTCID              uint8
}

const multiClipEntrySize = 10

func readClipEntry(r *codec.Reader) MultiClipEntry {
	return MultiClipEntry{
		ClipInformationFileName: r.String(5),
		ClipCodecIdentifier:     r.String(4),
		RefToSTCID:              r.U8(),
	}
}

func writeClipEntry(w *codec.Writer, c MultiClipEntry) {
	w.String(c.ClipInformationFileName, 5)
	w.String(c.ClipCodecIdentifier, 4)
	w.U8(c.RefToSTCID)
}

// MultiAngle lists the extra angles of a play item. NumberOfAngles counts
// the play item's own clip, so it is one more than len(Angles).
type MultiAngle struct {
	NumberOfAngles        uint8
	Reserved4             uint8 // 6 bits
	IsDifferentAudios     uint8
	IsSeamlessAngleChange uint8
	Angles                []MultiClipEntry
}

// PlayItem plays one clip between IN and OUT time, in 45 kHz ticks.
type PlayItem struct {
	Length                   uint16
	ClipInformationFileName  string
	ClipCodecIdentifier      string
	Reserved1                uint16 // 11 bits
	IsMultiAngle             uint8
	ConnectionCondition      uint8
	RefToSTCID               uint8
	INTime                   uint32
	OUTTime                  uint32
	UOMaskTable              UOMaskTable
	PlayItemRandomAccessFlag uint8
	Reserved2                uint8 // 7 bits
	StillMode                uint8
	// StillTime is reserved unless StillMode is 1.
	StillTime uint16

	MultiAngle *MultiAngle
	STNTable   STNTable
}

func (p *PlayItem) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "PlayItem")
	p.Length = r.U16()
	p.ClipInformationFileName = r.String(5)
	p.ClipCodecIdentifier = r.String(4)
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	p.Reserved1 = bits.U16(11)
	p.IsMultiAngle = bits.Flag()
	p.ConnectionCondition = bits.U8(4)
	p.RefToSTCID = r.U8()
	p.INTime = r.U32()
	p.OUTTime = r.U32()
	p.UOMaskTable = UOMaskTable(r.U64())
	bits = codec.NewBitReader(uint64(r.U8()), 8)
	p.PlayItemRandomAccessFlag = bits.Flag()
	p.Reserved2 = bits.U8(7)
	p.StillMode = r.U8()
	p.StillTime = r.U16()

	p.MultiAngle = nil
	if p.IsMultiAngle == 1 {
		ma := &MultiAngle{NumberOfAngles: r.U8()}
		bits = codec.NewBitReader(uint64(r.U8()), 8)
		ma.Reserved4 = bits.U8(6)
		ma.IsDifferentAudios = bits.Flag()
		ma.IsSeamlessAngleChange = bits.Flag()
		if r.Err() == nil && ma.NumberOfAngles == 0 {
			r.Fail("multi-angle play item with zero angles")
		}
		for i := 1; i < int(ma.NumberOfAngles) && r.Err() == nil; i++ {
			ma.Angles = append(ma.Angles, readClipEntry(r))
		}
		p.MultiAngle = ma
	}

	r.Record(&p.STNTable, -1)
	return r.Offset(), r.Err()
}

func (p *PlayItem) Marshal(b []byte) (int, error) {
	var flags codec.BitWriter
	flags.Put(11, uint64(p.Reserved1)).Put(1, uint64(p.IsMultiAngle)).Put(4, uint64(p.ConnectionCondition))
	f1, err := flags.Value()
	if err != nil {
		return 0, err
	}
	var ra codec.BitWriter
	ra.Put(1, uint64(p.PlayItemRandomAccessFlag)).Put(7, uint64(p.Reserved2))
	f2, err := ra.Value()
	if err != nil {
		return 0, err
	}

	w := codec.NewWriter(b, "PlayItem")
	w.U16(p.Length)
	w.String(p.ClipInformationFileName, 5)
	w.String(p.ClipCodecIdentifier, 4)
	w.U16(uint16(f1))
	w.U8(p.RefToSTCID)
	w.U32(p.INTime)
	w.U32(p.OUTTime)
	w.U64(uint64(p.UOMaskTable))
	w.U8(uint8(f2))
	w.U8(p.StillMode)
	w.U16(p.StillTime)
	if ma := p.MultiAngle; ma != nil {
		var af codec.BitWriter
		af.Put(6, uint64(ma.Reserved4)).Put(1, uint64(ma.IsDifferentAudios)).Put(1, uint64(ma.IsSeamlessAngleChange))
		f3, err := af.Value()
		if err != nil {
			return 0, err
		}
		w.U8(ma.NumberOfAngles)
		w.U8(uint8(f3))
		for _, c := range ma.Angles {
			writeClipEntry(w, c)
		}
	}
	w.Record(&p.STNTable)
	return w.Offset(), w.Err()
}

func (p *PlayItem) Len() int { return p.DisplaySize() + 2 }

func (p *PlayItem) Children() []codec.Record { return []codec.Record{&p.STNTable} }

func (p *PlayItem) DisplaySize() int {
	n := 34
	if p.MultiAngle != nil {
		n += 2 + multiClipEntrySize*len(p.MultiAngle.Angles)
	}
	return n + p.STNTable.Len() - 2
}

func (p *PlayItem) StoredLength() int     { return int(p.Length) }
func (p *PlayItem) SetStoredLength(n int) { p.Length = uint16(n) }

func (p *PlayItem) Update() {
	p.IsMultiAngle = 0
	if p.MultiAngle != nil {
		p.IsMultiAngle = 1
		p.MultiAngle.NumberOfAngles = uint8(len(p.MultiAngle.Angles) + 1)
	}
}

func (p *PlayItem) Check() error {
	if (p.IsMultiAngle == 1) != (p.MultiAngle != nil) {
		return codec.ValidationErrorf("PlayItem", "IsMultiAngle %d does not match angle block presence", p.IsMultiAngle)
	}
	if ma := p.MultiAngle; ma != nil && int(ma.NumberOfAngles) != len(ma.Angles)+1 {
		return codec.ValidationErrorf("PlayItem", "NumberOfAngles %d, have %d angles besides the main clip", ma.NumberOfAngles, len(ma.Angles))
	}
	if len(p.ClipInformationFileName) != 5 || len(p.ClipCodecIdentifier) != 4 {
		return codec.ValidationErrorf("PlayItem", "clip reference %q/%q must be 5 and 4 characters", p.ClipInformationFileName, p.ClipCodecIdentifier)
	}
	return nil
}

// Duration returns OUT minus IN in 45 kHz ticks.
func (p *PlayItem) Duration() uint32 {
	return p.OUTTime - p.INTime
}
