package mobj

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

const commandSize = 12

// MovieObjects is the list of movie objects in the file.
type MovieObjects struct {
	Length        uint32
	Reserved1     uint32
	NumberOfMobjs uint16
	Mobjs         []*Mobj
}

func (m *MovieObjects) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "MovieObjects")
	m.Length = r.U32()
	m.Reserved1 = r.U32()
	m.NumberOfMobjs = r.U16()
	m.Mobjs = nil
	for i := 0; i < int(m.NumberOfMobjs) && r.Err() == nil; i++ {
		obj := &Mobj{}
		r.Record(obj, 4+commandSize*int(r.PeekU16(r.Offset()+2)))
		m.Mobjs = append(m.Mobjs, obj)
	}
	return r.Offset(), r.Err()
}

func (m *MovieObjects) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "MovieObjects")
	w.U32(m.Length)
	w.U32(m.Reserved1)
	w.U16(m.NumberOfMobjs)
	for _, obj := range m.Mobjs {
		w.Record(obj)
	}
	return w.Offset(), w.Err()
}

func (m *MovieObjects) Len() int {
	n := 10
	for _, obj := range m.Mobjs {
		n += obj.Len()
	}
	return n
}

func (m *MovieObjects) Children() []codec.Record {
	out := make([]codec.Record, 0, len(m.Mobjs))
	for _, obj := range m.Mobjs {
		out = append(out, obj)
	}
	return out
}

func (m *MovieObjects) DisplaySize() int      { return m.Len() - 4 }
func (m *MovieObjects) StoredLength() int     { return int(m.Length) }
func (m *MovieObjects) SetStoredLength(n int) { m.Length = uint32(n) }
func (m *MovieObjects) Update()               { m.NumberOfMobjs = uint16(len(m.Mobjs)) }

func (m *MovieObjects) Check() error {
	if int(m.NumberOfMobjs) != len(m.Mobjs) {
		return codec.ValidationErrorf("MovieObjects", "NumberOfMobjs %d, have %d", m.NumberOfMobjs, len(m.Mobjs))
	}
	return nil
}

// Mobj is one movie object: a flag word and its navigation program.
type Mobj struct {
	ResumeIntentionFlag        uint8
	MenuCallMask               uint8
	TitleSearchMask            uint8
	Reserved1                  uint16 // 13 bits
	NumberOfNavigationCommands uint16
	NavigationCommands         []*NavigationCommand
}

func (m *Mobj) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "Mobj")
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	m.ResumeIntentionFlag = bits.Flag()
	m.MenuCallMask = bits.Flag()
	m.TitleSearchMask = bits.Flag()
	m.Reserved1 = bits.U16(13)
	m.NumberOfNavigationCommands = r.U16()
	m.NavigationCommands = nil
	for i := 0; i < int(m.NumberOfNavigationCommands) && r.Err() == nil; i++ {
		cmd := &NavigationCommand{}
		r.Record(cmd, commandSize)
		m.NavigationCommands = append(m.NavigationCommands, cmd)
	}
	return r.Offset(), r.Err()
}

func (m *Mobj) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	flags, err := bits.Put(1, uint64(m.ResumeIntentionFlag)).
		Put(1, uint64(m.MenuCallMask)).
		Put(1, uint64(m.TitleSearchMask)).
		Put(13, uint64(m.Reserved1)).
		Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "Mobj")
	w.U16(uint16(flags))
	w.U16(m.NumberOfNavigationCommands)
	for _, cmd := range m.NavigationCommands {
		w.Record(cmd)
	}
	return w.Offset(), w.Err()
}

func (m *Mobj) Len() int { return 4 + commandSize*len(m.NavigationCommands) }

func (m *Mobj) Children() []codec.Record {
	out := make([]codec.Record, 0, len(m.NavigationCommands))
	for _, cmd := range m.NavigationCommands {
		out = append(out, cmd)
	}
	return out
}

func (m *Mobj) Update() { m.NumberOfNavigationCommands = uint16(len(m.NavigationCommands)) }

func (m *Mobj) Check() error {
	if int(m.NumberOfNavigationCommands) != len(m.NavigationCommands) {
		return codec.ValidationErrorf("Mobj", "NumberOfNavigationCommands %d, have %d", m.NumberOfNavigationCommands, len(m.NavigationCommands))
	}
	return nil
}

// NavigationCommand is a single 12-byte HDMV instruction.
type NavigationCommand struct {
	OperandCount                  uint8 // 3 bits
	CommandGroup                  uint8 // 2 bits
	CommandSubGroup               uint8 // 3 bits
	DestinationImmediateValueFlag uint8
	SourceImmediateValueFlag      uint8
	Reserved1                     uint8 // 2 bits
	BranchOption                  uint8 // 4 bits
	Reserved2                     uint8 // 4 bits
	CompareOption                 uint8 // 4 bits
	Reserved3                     uint8 // 3 bits
	SetOption                     uint8 // 5 bits
	Destination                   uint32
	Source                        uint32
}

func (c *NavigationCommand) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "NavigationCommand")
	bits := codec.NewBitReader(uint64(r.U32()), 32)
	c.OperandCount = bits.U8(3)
	c.CommandGroup = bits.U8(2)
	c.CommandSubGroup = bits.U8(3)
	c.DestinationImmediateValueFlag = bits.Flag()
	c.SourceImmediateValueFlag = bits.Flag()
	c.Reserved1 = bits.U8(2)
	c.BranchOption = bits.U8(4)
	c.Reserved2 = bits.U8(4)
	c.CompareOption = bits.U8(4)
	c.Reserved3 = bits.U8(3)
	c.SetOption = bits.U8(5)
	c.Destination = r.U32()
	c.Source = r.U32()
	return r.Offset(), r.Err()
}

func (c *NavigationCommand) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	v, err := bits.Put(3, uint64(c.OperandCount)).
		Put(2, uint64(c.CommandGroup)).
		Put(3, uint64(c.CommandSubGroup)).
		Put(1, uint64(c.DestinationImmediateValueFlag)).
		Put(1, uint64(c.SourceImmediateValueFlag)).
		Put(2, uint64(c.Reserved1)).
		Put(4, uint64(c.BranchOption)).
		Put(4, uint64(c.Reserved2)).
		Put(4, uint64(c.CompareOption)).
		Put(3, uint64(c.Reserved3)).
		Put(5, uint64(c.SetOption)).
		Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "NavigationCommand")
	w.U32(uint32(v))
	w.U32(c.Destination)
	w.U32(c.Source)
	return w.Offset(), w.Err()
}

func (c *NavigationCommand) Len() int                 { return commandSize }
func (c *NavigationCommand) Children() []codec.Record { return nil }
