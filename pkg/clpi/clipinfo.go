package clpi

import (
	"github.com/ssargent/bdmeta/pkg/codec"
)

// Clip stream types and application types.
const (
	ClipStreamTypeAV = 1

	ApplicationMovie          = 1
	ApplicationTimeSlideshow  = 2
	ApplicationBrowsable      = 3
	ApplicationBrowsableAudio = 4
	ApplicationSubTS          = 5
	ApplicationSubPathTS      = 6
	ApplicationSubTSText      = 7
)

const (
	clipInfoDisplaySize      = 176
	followingClipSize        = 16
	tsTypeInfoBlockSize      = 32
	clipInfoReserved3Size    = 128
	tsTypeInfoNetworkInfoLen = 9
	tsTypeInfoFormatNameLen  = 16
)

// ClipInfo describes the transport stream of the clip.
type ClipInfo struct {
	Length                uint32
	Reserved1             uint16
	ClipStreamType        uint8
	ApplicationType       uint8
	Reserved2             uint32 // 31 bits
	IsCC5                 uint8
	TSRecordingRate       uint32
	NumberOfSourcePackets uint32
	Reserved3             [clipInfoReserved3Size]byte
	TSTypeInfoBlock       TSTypeInfoBlock

	// FollowingClip is set when IsCC5 is 1. Its layout comes from reverse
	// engineered discs and is kept verbatim.
	FollowingClip *FollowingClip
}

// FollowingClip names the clip that seamlessly follows this one.
type FollowingClip struct {
	Reserved4                        uint8
	FollowingClipStreamType          uint8
	Reserved5                        uint32
	FollowingClipInformationFileName string
	FollowingClipCodecIdentifier     string
	Reserved6                        uint8
}

func (c *ClipInfo) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "ClipInfo")
	c.Length = r.U32()
	c.Reserved1 = r.U16()
	c.ClipStreamType = r.U8()
	c.ApplicationType = r.U8()
	bits := codec.NewBitReader(uint64(r.U32()), 32)
	c.Reserved2 = bits.U32(31)
	c.IsCC5 = bits.Flag()
	c.TSRecordingRate = r.U32()
	c.NumberOfSourcePackets = r.U32()
	copy(c.Reserved3[:], r.Bytes(clipInfoReserved3Size))
	r.Record(&c.TSTypeInfoBlock, tsTypeInfoBlockSize)
	c.FollowingClip = nil
	if c.IsCC5 == 1 {
		c.FollowingClip = &FollowingClip{
			Reserved4:                        r.U8(),
			FollowingClipStreamType:          r.U8(),
			Reserved5:                        r.U32(),
			FollowingClipInformationFileName: r.String(5),
			FollowingClipCodecIdentifier:     r.String(4),
			Reserved6:                        r.U8(),
		}
	}
	return r.Offset(), r.Err()
}

func (c *ClipInfo) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	flags, err := bits.Put(31, uint64(c.Reserved2)).Put(1, uint64(c.IsCC5)).Value()
	if err != nil {
		return 0, err
	}
	w := codec.NewWriter(b, "ClipInfo")
	w.U32(c.Length)
	w.U16(c.Reserved1)
	w.U8(c.ClipStreamType)
	w.U8(c.ApplicationType)
	w.U32(uint32(flags))
	w.U32(c.TSRecordingRate)
	w.U32(c.NumberOfSourcePackets)
	w.Bytes(c.Reserved3[:])
	w.Record(&c.TSTypeInfoBlock)
	if f := c.FollowingClip; f != nil {
		w.U8(f.Reserved4)
		w.U8(f.FollowingClipStreamType)
		w.U32(f.Reserved5)
		w.String(f.FollowingClipInformationFileName, 5)
		w.String(f.FollowingClipCodecIdentifier, 4)
		w.U8(f.Reserved6)
	}
	return w.Offset(), w.Err()
}

func (c *ClipInfo) Len() int                 { return c.DisplaySize() + 4 }
func (c *ClipInfo) Children() []codec.Record { return []codec.Record{&c.TSTypeInfoBlock} }

func (c *ClipInfo) DisplaySize() int {
	if c.FollowingClip != nil {
		return clipInfoDisplaySize + followingClipSize
	}
	return clipInfoDisplaySize
}

func (c *ClipInfo) StoredLength() int     { return int(c.Length) }
func (c *ClipInfo) SetStoredLength(n int) { c.Length = uint32(n) }

func (c *ClipInfo) Update() {
	c.IsCC5 = 0
	if c.FollowingClip != nil {
		c.IsCC5 = 1
	}
}

func (c *ClipInfo) Check() error {
	if (c.IsCC5 == 1) != (c.FollowingClip != nil) {
		return codec.ValidationErrorf("ClipInfo", "IsCC5 %d does not match following clip presence", c.IsCC5)
	}
	return nil
}

// TSTypeInfoBlock identifies the transport stream format. The layout follows
// what muxers write; only the format identifier is commonly meaningful.
type TSTypeInfoBlock struct {
	Length             uint16
	ValidityFlags      uint8
	FormatIdentifier   string
	NetworkInformation [tsTypeInfoNetworkInfoLen]byte
	StreamFormatName   [tsTypeInfoFormatNameLen]byte
}

func (t *TSTypeInfoBlock) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "TSTypeInfoBlock")
	t.Length = r.U16()
	t.ValidityFlags = r.U8()
	t.FormatIdentifier = r.String(4)
	copy(t.NetworkInformation[:], r.Bytes(tsTypeInfoNetworkInfoLen))
	copy(t.StreamFormatName[:], r.Bytes(tsTypeInfoFormatNameLen))
	return r.Offset(), r.Err()
}

func (t *TSTypeInfoBlock) Marshal(b []byte) (int, error) {
	w := codec.NewWriter(b, "TSTypeInfoBlock")
	w.U16(t.Length)
	w.U8(t.ValidityFlags)
	w.String(t.FormatIdentifier, 4)
	w.Bytes(t.NetworkInformation[:])
	w.Bytes(t.StreamFormatName[:])
	return w.Offset(), w.Err()
}

func (t *TSTypeInfoBlock) Len() int                 { return tsTypeInfoBlockSize }
func (t *TSTypeInfoBlock) Children() []codec.Record { return nil }
func (t *TSTypeInfoBlock) DisplaySize() int         { return tsTypeInfoBlockSize - 2 }
func (t *TSTypeInfoBlock) StoredLength() int        { return int(t.Length) }
func (t *TSTypeInfoBlock) SetStoredLength(n int)    { t.Length = uint16(n) }
