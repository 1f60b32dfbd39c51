package indx

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

const (
	appInfoDisplaySize = 34
	userDataSize       = 32
)

// AppInfoBDMV carries disc-wide presentation settings.
type AppInfoBDMV struct {
	Length                      uint32
	Reserved1                   uint8
	InitialOutputModePreference uint8
	SSContentExistFlag          uint8
	Reserved2                   uint8
	InitialDynamicRangeType     uint8 // 4 bits
	VideoFormat                 uint8 // 4 bits
	FrameRate                   uint8 // 4 bits
	UserData                    [userDataSize]byte
}

func (a *AppInfoBDMV) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "AppInfoBDMV")
	a.Length = r.U32()
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	a.Reserved1 = bits.Flag()
	a.InitialOutputModePreference = bits.Flag()
	a.SSContentExistFlag = bits.Flag()
	a.Reserved2 = bits.Flag()
	a.InitialDynamicRangeType = bits.U8(4)
	a.VideoFormat = bits.U8(4)
	a.FrameRate = bits.U8(4)
	copy(a.UserData[:], r.Bytes(userDataSize))
	return r.Offset(), r.Err()
}

func (a *AppInfoBDMV) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	flags, err := bits.Put(1, uint64(a.Reserved1)).
		Put(1, uint64(a.InitialOutputModePreference)).
		Put(1, uint64(a.SSContentExistFlag)).
		Put(1, uint64(a.Reserved2)).
		Put(4, uint64(a.InitialDynamicRangeType)).
		Put(4, uint64(a.VideoFormat)).
		Put(4, uint64(a.FrameRate)).
		Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "AppInfoBDMV")
	w.U32(a.Length)
	w.U16(uint16(flags))
	w.Bytes(a.UserData[:])
	return w.Offset(), w.Err()
}

func (a *AppInfoBDMV) Len() int                 { return appInfoDisplaySize + 4 }
func (a *AppInfoBDMV) Children() []codec.Record { return nil }
func (a *AppInfoBDMV) DisplaySize() int         { return appInfoDisplaySize }
func (a *AppInfoBDMV) StoredLength() int        { return int(a.Length) }
func (a *AppInfoBDMV) SetStoredLength(n int)    { a.Length = uint32(n) }
