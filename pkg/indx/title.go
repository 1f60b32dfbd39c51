package indx

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// Title object types.
const (
	ObjectTypeHDMV = 1
	ObjectTypeBDJ  = 2
)

const titleSize = 12

// Indexes maps the first playback, the top menu and every numbered title to
// the object that implements it.
type Indexes struct {
	Length             uint32
	FirstPlaybackTitle Title
	TopMenuTitle       Title
	NumberOfTitles     uint16
	Titles             []*Title
}

func (x *Indexes) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "Indexes")
	x.Length = r.U32()
	r.Record(&x.FirstPlaybackTitle, titleSize)
	r.Record(&x.TopMenuTitle, titleSize)
	x.NumberOfTitles = r.U16()
	x.Titles = nil
	for i := 0; i < int(x.NumberOfTitles) && r.Err() == nil; i++ {
		t := &Title{}
		r.Record(t, titleSize)
		x.Titles = append(x.Titles, t)
	}
	return r.Offset(), r.Err()
}

func (x *Indexes) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "Indexes")
	w.U32(x.Length)
	w.Record(&x.FirstPlaybackTitle)
	w.Record(&x.TopMenuTitle)
	w.U16(x.NumberOfTitles)
	for _, t := range x.Titles {
		w.Record(t)
	}
	return w.Offset(), w.Err()
}

func (x *Indexes) Len() int { return 30 + titleSize*len(x.Titles) }

func (x *Indexes) Children() []codec.Record {
	out := []codec.Record{&x.FirstPlaybackTitle, &x.TopMenuTitle}
	for _, t := range x.Titles {
		out = append(out, t)
	}
	return out
}

func (x *Indexes) DisplaySize() int      { return x.Len() - 4 }
func (x *Indexes) StoredLength() int     { return int(x.Length) }
func (x *Indexes) SetStoredLength(n int) { x.Length = uint32(n) }
func (x *Indexes) Update()               { x.NumberOfTitles = uint16(len(x.Titles)) }

func (x *Indexes) Check() error {
	if int(x.NumberOfTitles) != len(x.Titles) {
		return codec.ValidationErrorf("Indexes", "NumberOfTitles %d, have %d", x.NumberOfTitles, len(x.Titles))
	}
	return nil
}

// Object is the target of a title: *HDMVObject or *BDJObject.
type Object interface {
	objectType() uint8
}

// HDMVObject points at a movie object in MovieObject.bdmv.
type HDMVObject struct {
	RefToMovieObjectID uint16
	Reserved3          uint32
}

// BDJObject names a BD-J object file.
type BDJObject struct {
	RefToBDJObjectID string
	Reserved4        uint8
}

func (*HDMVObject) objectType() uint8 { return ObjectTypeHDMV }
func (*BDJObject) objectType() uint8  { return ObjectTypeBDJ }

// Title is one entry of the index table.
type Title struct {
	ObjectType   uint8  // 2 bits
	AccessType   uint8  // 2 bits
	Reserved1    uint32 // 28 bits
	PlaybackType uint8  // 2 bits
	Reserved2    uint16 // 14 bits
	Object       Object
}

func (t *Title) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "Title")
	bits := codec.NewBitReader(uint64(r.U32()), 32)
	t.ObjectType = bits.U8(2)
	t.AccessType = bits.U8(2)
	t.Reserved1 = bits.U32(28)
	bits = codec.NewBitReader(uint64(r.U16()), 16)
	t.PlaybackType = bits.U8(2)
	t.Reserved2 = bits.U16(14)
	switch t.ObjectType {
	case ObjectTypeHDMV:
		t.Object = &HDMVObject{RefToMovieObjectID: r.U16(), Reserved3: r.U32()}
	case ObjectTypeBDJ:
		t.Object = &BDJObject{RefToBDJObjectID: r.String(5), Reserved4: r.U8()}
	default:
		if r.Err() == nil {
			return 0, codec.DecodeErrorf("Title", 0, "unknown object type %d", t.ObjectType)
		}
	}
	return r.Offset(), r.Err()
}

func (t *Title) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	head, err := bits.Put(2, uint64(t.ObjectType)).
		Put(2, uint64(t.AccessType)).
		Put(28, uint64(t.Reserved1)).
		Put(2, uint64(t.PlaybackType)).
		Put(14, uint64(t.Reserved2)).
		Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "Title")
	w.U32(uint32(head >> 16))
	w.U16(uint16(head))
	switch o := t.Object.(type) {
	case *HDMVObject:
		w.U16(o.RefToMovieObjectID)
		w.U32(o.Reserved3)
	case *BDJObject:
		w.String(o.RefToBDJObjectID, 5)
		w.U8(o.Reserved4)
	default:
		return 0, codec.ValidationErrorf("Title", "object type %d has no object", t.ObjectType)
	}
	return w.Offset(), w.Err()
}

func (t *Title) Len() int                 { return titleSize }
func (t *Title) Children() []codec.Record { return nil }

// Update derives ObjectType from the object variant.
func (t *Title) Update() {
	if t.Object != nil {
		t.ObjectType = t.Object.objectType()
	}
}

func (t *Title) Check() error {
	if t.Object == nil {
		return codec.ValidationErrorf("Title", "missing object")
	}
	if t.ObjectType != t.Object.objectType() {
		return codec.ValidationErrorf("Title", "object type %d, object is type %d", t.ObjectType, t.Object.objectType())
	}
	return nil
}
