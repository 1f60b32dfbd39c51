package clpi

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// CPI types.
const (
	CPITypeEPMap = 1
)

const (
	epMapStart        = 6 // offset of the EP map within the CPI block
	streamPIDMetaSize = 12
	epCoarseEntrySize = 8
	epFineEntrySize   = 4
)

// CPI holds the EP map, which locates entry points of each stream by
// presentation time. A zero Length with no streams is an absent map.
//
// The map is laid out as all per-stream meta entries first and then, per
// stream, a block of [fine table start(4)][coarse entries][fine entries].
// Two addresses locate these blocks: EPMapForOneStreamPIDStartAddress is
// relative to the EP map, EPFineTableStartAddress is relative to the start
// of the stream's own block.
type CPI struct {
	Length                   uint32
	Reserved1                uint16 // 12 bits
	CPIType                  uint8
	Reserved2                uint8
	NumberOfStreamPIDEntries uint8
	StreamPIDEntries         []*StreamPIDEntry
}

// StreamPIDEntry is the EP map of one stream.
type StreamPIDEntry struct {
	StreamPID                        uint16
	Reserved3                        uint16 // 10 bits
	EPStreamType                     uint8
	NumberOfEPCoarseEntries          uint16
	NumberOfEPFineEntries            uint32 // 18 bits
	EPMapForOneStreamPIDStartAddress uint32
	EPFineTableStartAddress          uint32
	EPCoarseEntries                  []EPCoarseEntry
	EPFineEntries                    []EPFineEntry
}

// EPCoarseEntry is a coarse entry point. PTSEPCoarse holds the upper PTS bits.
type EPCoarseEntry struct {
	RefToEPFineID uint32 // 18 bits
	PTSEPCoarse   uint16 // 14 bits
	SPNEPCoarse   uint32
}

// EPFineEntry is a fine entry point refining the coarse entry that references it.
type EPFineEntry struct {
	IsAngleChangePoint uint8
	IEndPositionOffset uint8  // 3 bits
	PTSEPFine          uint16 // 11 bits
	SPNEPFine          uint32 // 17 bits
}

func (c *CPI) empty() bool { return c.Length == 0 && len(c.StreamPIDEntries) == 0 }

func (c *CPI) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "CPI")
	c.Length = r.U32()
	c.StreamPIDEntries = nil
	if c.Length == 0 {
		return r.Offset(), r.Err()
	}
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	c.Reserved1 = bits.U16(12)
	c.CPIType = bits.U8(4)
	c.Reserved2 = r.U8()
	c.NumberOfStreamPIDEntries = r.U8()

	for i := 0; i < int(c.NumberOfStreamPIDEntries) && r.Err() == nil; i++ {
		e := &StreamPIDEntry{}
		bits := codec.NewBitReader(r.U64(), 64)
		e.StreamPID = bits.U16(16)
		e.Reserved3 = bits.U16(10)
		e.EPStreamType = bits.U8(4)
		e.NumberOfEPCoarseEntries = bits.U16(16)
		e.NumberOfEPFineEntries = bits.U32(18)
		e.EPMapForOneStreamPIDStartAddress = r.U32()
		c.StreamPIDEntries = append(c.StreamPIDEntries, e)
	}

	for i, e := range c.StreamPIDEntries {
		if r.Err() != nil {
			break
		}
		block := r.Offset() - epMapStart
		if int(e.EPMapForOneStreamPIDStartAddress) != block {
			r.Fail("stream %d EP map start address %d, block is at %d", i, e.EPMapForOneStreamPIDStartAddress, block)
			break
		}
		e.EPFineTableStartAddress = r.U32()
		e.EPCoarseEntries = make([]EPCoarseEntry, 0, e.NumberOfEPCoarseEntries)
		for j := 0; j < int(e.NumberOfEPCoarseEntries) && r.Err() == nil; j++ {
			bits := codec.NewBitReader(uint64(r.U32()), 32)
			coarse := EPCoarseEntry{RefToEPFineID: bits.U32(18), PTSEPCoarse: bits.U16(14)}
			coarse.SPNEPCoarse = r.U32()
			e.EPCoarseEntries = append(e.EPCoarseEntries, coarse)
		}
		fine := r.Offset() - epMapStart - block
		if r.Err() == nil && int(e.EPFineTableStartAddress) != fine {
			r.Fail("stream %d EP fine table start address %d, table is at %d", i, e.EPFineTableStartAddress, fine)
			break
		}
		e.EPFineEntries = make([]EPFineEntry, 0, e.NumberOfEPFineEntries)
		for j := 0; j < int(e.NumberOfEPFineEntries) && r.Err() == nil; j++ {
			bits := codec.NewBitReader(uint64(r.U32()), 32)
			e.EPFineEntries = append(e.EPFineEntries, EPFineEntry{
				IsAngleChangePoint: bits.Flag(),
				IEndPositionOffset: bits.U8(3),
				PTSEPFine:          bits.U16(11),
				SPNEPFine:          bits.U32(17),
			})
		}
	}
	return r.Offset(), r.Err()
}

func (c *CPI) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "CPI")
	w.U32(c.Length)
	if c.empty() {
		return w.Offset(), w.Err()
	}
	var bits codec.BitWriter
	flags, err := bits.Put(12, uint64(c.Reserved1)).Put(4, uint64(c.CPIType)).Value()
	if err != nil {
		return 0, err
	}
	w.U16(uint16(flags))
	w.U8(c.Reserved2)
	w.U8(c.NumberOfStreamPIDEntries)
	for _, e := range c.StreamPIDEntries {
		var meta codec.BitWriter
		v, err := meta.Put(16, uint64(e.StreamPID)).
			Put(10, uint64(e.Reserved3)).
			Put(4, uint64(e.EPStreamType)).
			Put(16, uint64(e.NumberOfEPCoarseEntries)).
			Put(18, uint64(e.NumberOfEPFineEntries)).
			Value()
		if err != nil {
			return 0, err
		}
		w.U64(v)
		w.U32(e.EPMapForOneStreamPIDStartAddress)
	}
	for _, e := range c.StreamPIDEntries {
		w.U32(e.EPFineTableStartAddress)
		for _, coarse := range e.EPCoarseEntries {
			var bits codec.BitWriter
			v, err := bits.Put(18, uint64(coarse.RefToEPFineID)).Put(14, uint64(coarse.PTSEPCoarse)).Value()
			if err != nil {
				return 0, err
			}
			w.U32(uint32(v))
			w.U32(coarse.SPNEPCoarse)
		}
		for _, fine := range e.EPFineEntries {
			var bits codec.BitWriter
			v, err := bits.Put(1, uint64(fine.IsAngleChangePoint)).
				Put(3, uint64(fine.IEndPositionOffset)).
				Put(11, uint64(fine.PTSEPFine)).
				Put(17, uint64(fine.SPNEPFine)).
				Value()
			if err != nil {
				return 0, err
			}
			w.U32(uint32(v))
		}
	}
	return w.Offset(), w.Err()
}

func (c *CPI) Len() int                 { return c.DisplaySize() + 4 }
func (c *CPI) Children() []codec.Record { return nil }

func (c *CPI) DisplaySize() int {
	if c.empty() {
		return 0
	}
	n := 8 + streamPIDMetaSize*len(c.StreamPIDEntries)
	for _, e := range c.StreamPIDEntries {
		n += e.blockSize()
	}
	return n - 4
}

func (c *CPI) StoredLength() int     { return int(c.Length) }
func (c *CPI) SetStoredLength(n int) { c.Length = uint32(n) }

func (e *StreamPIDEntry) blockSize() int {
	return 4 + epCoarseEntrySize*len(e.EPCoarseEntries) + epFineEntrySize*len(e.EPFineEntries)
}

// addresses yields the two start addresses each stream entry must have.
func (c *CPI) addresses(fn func(i int, e *StreamPIDEntry, block, fine uint32)) {
	at := 8 + streamPIDMetaSize*len(c.StreamPIDEntries) - epMapStart
	for i, e := range c.StreamPIDEntries {
		fine := 4 + epCoarseEntrySize*len(e.EPCoarseEntries)
		fn(i, e, uint32(at), uint32(fine))
		at += e.blockSize()
	}
}

// Update recomputes the entry counts and both address formulas.
func (c *CPI) Update() {
	c.NumberOfStreamPIDEntries = uint8(len(c.StreamPIDEntries))
	c.addresses(func(_ int, e *StreamPIDEntry, block, fine uint32) {
		e.NumberOfEPCoarseEntries = uint16(len(e.EPCoarseEntries))
		e.NumberOfEPFineEntries = uint32(len(e.EPFineEntries))
		e.EPMapForOneStreamPIDStartAddress = block
		e.EPFineTableStartAddress = fine
	})
}

func (c *CPI) Check() error {
	if int(c.NumberOfStreamPIDEntries) != len(c.StreamPIDEntries) {
		return codec.ValidationErrorf("CPI", "NumberOfStreamPIDEntries %d, have %d", c.NumberOfStreamPIDEntries, len(c.StreamPIDEntries))
	}
	var err error
	c.addresses(func(i int, e *StreamPIDEntry, block, fine uint32) {
		switch {
		case err != nil:
		case int(e.NumberOfEPCoarseEntries) != len(e.EPCoarseEntries):
			err = codec.ValidationErrorf("CPI", "stream %d NumberOfEPCoarseEntries %d, have %d", i, e.NumberOfEPCoarseEntries, len(e.EPCoarseEntries))
		case int(e.NumberOfEPFineEntries) != len(e.EPFineEntries):
			err = codec.ValidationErrorf("CPI", "stream %d NumberOfEPFineEntries %d, have %d", i, e.NumberOfEPFineEntries, len(e.EPFineEntries))
		case e.EPMapForOneStreamPIDStartAddress != block:
			err = codec.ValidationErrorf("CPI", "stream %d EP map start address %d, want %d", i, e.EPMapForOneStreamPIDStartAddress, block)
		case e.EPFineTableStartAddress != fine:
			err = codec.ValidationErrorf("CPI", "stream %d EP fine table start address %d, want %d", i, e.EPFineTableStartAddress, fine)
		}
	})
	return err
}

// PTS returns the presentation time of fine entry f under coarse entry c in
// 90 kHz ticks, accurate to 512 ticks.
func (c EPCoarseEntry) PTS(f EPFineEntry) uint64 {
	return uint64(c.PTSEPCoarse&^1)<<19 + uint64(f.PTSEPFine)<<9
}

// SPN returns the source packet number of fine entry f under coarse entry c.
func (c EPCoarseEntry) SPN(f EPFineEntry) uint32 {
	return c.SPNEPCoarse&^0x1FFFF | f.SPNEPFine
}
