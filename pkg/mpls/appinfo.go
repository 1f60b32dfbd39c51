package mpls

import (
	"strings"

	"github.com/ssargent/bdmeta/pkg/codec"
)

// Playback types.
const (
	PlaybackSequential = 1
	PlaybackRandom     = 2
	PlaybackShuffle    = 3
)

// UOMaskTable is the 64-bit user operation mask. A set bit forbids the
// operation while the playlist or play item is active.
type UOMaskTable uint64

const (
	UOMenuCall UOMaskTable = 1 << (63 - iota)
	UOTitleSearch
	UOChapterSearch
	UOTimeSearch
	UOSkipToNextPoint
	UOSkipToPrevPoint
	_
	UOStop
	UOPauseOn
	_
	UOStillOff
	UOForwardPlay
	UOBackwardPlay
	UOResume
	UOMoveUp
	UOMoveDown
	UOMoveLeft
	UOMoveRight
	UOSelectButton
	UOActivateButton
	UOSelectAndActivate
	UOPrimaryAudioStreamNumberChange
	_
	UOAngleNumberChange
	UOPopupOn
	UOPopupOff
	UOPrimaryPGEnableDisable
	UOPrimaryPGStreamNumberChange
	UOSecondaryVideoEnableDisable
	UOSecondaryVideoStreamNumberChange
	UOSecondaryAudioEnableDisable
	UOSecondaryAudioStreamNumberChange
	_
	UOSecondaryPGStreamNumberChange
)

// UONavigation masks the operations that let a viewer move through or skip
// content.
const UONavigation = UOChapterSearch | UOTimeSearch | UOSkipToNextPoint |
	UOSkipToPrevPoint | UOForwardPlay | UOBackwardPlay

var uoNames = []struct {
	flag UOMaskTable
	name string
}{
	{UOMenuCall, "MenuCall"},
	{UOTitleSearch, "TitleSearch"},
	{UOChapterSearch, "ChapterSearch"},
	{UOTimeSearch, "TimeSearch"},
	{UOSkipToNextPoint, "SkipToNextPoint"},
	{UOSkipToPrevPoint, "SkipToPrevPoint"},
	{UOStop, "Stop"},
	{UOPauseOn, "PauseOn"},
	{UOStillOff, "StillOff"},
	{UOForwardPlay, "ForwardPlay"},
	{UOBackwardPlay, "BackwardPlay"},
	{UOResume, "Resume"},
	{UOMoveUp, "MoveUp"},
	{UOMoveDown, "MoveDown"},
	{UOMoveLeft, "MoveLeft"},
	{UOMoveRight, "MoveRight"},
	{UOSelectButton, "SelectButton"},
	{UOActivateButton, "ActivateButton"},
	{UOSelectAndActivate, "SelectAndActivate"},
	{UOPrimaryAudioStreamNumberChange, "PrimaryAudioStreamNumberChange"},
	{UOAngleNumberChange, "AngleNumberChange"},
	{UOPopupOn, "PopupOn"},
	{UOPopupOff, "PopupOff"},
	{UOPrimaryPGEnableDisable, "PrimaryPGEnableDisable"},
	{UOPrimaryPGStreamNumberChange, "PrimaryPGStreamNumberChange"},
	{UOSecondaryVideoEnableDisable, "SecondaryVideoEnableDisable"},
	{UOSecondaryVideoStreamNumberChange, "SecondaryVideoStreamNumberChange"},
	{UOSecondaryAudioEnableDisable, "SecondaryAudioEnableDisable"},
	{UOSecondaryAudioStreamNumberChange, "SecondaryAudioStreamNumberChange"},
	{UOSecondaryPGStreamNumberChange, "SecondaryPGStreamNumberChange"},
}

// Has reports whether every bit of f is set.
func (m UOMaskTable) Has(f UOMaskTable) bool { return m&f == f }

// Set returns m with the bits of f set.
func (m UOMaskTable) Set(f UOMaskTable) UOMaskTable { return m | f }

// Clear returns m with the bits of f cleared.
func (m UOMaskTable) Clear(f UOMaskTable) UOMaskTable { return m &^ f }

// Names lists the named operations that are masked.
func (m UOMaskTable) Names() []string {
	var out []string
	for _, n := range uoNames {
		if m.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

func (m UOMaskTable) String() string {
	names := m.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// AppInfoPlayList holds playlist-wide playback settings.
type AppInfoPlayList struct {
	Length       uint32
	Reserved1    uint8
	PlaybackType uint8
	// PlaybackCount is reserved unless PlaybackType is random or shuffle.
	PlaybackCount uint16
	UOMaskTable   UOMaskTable

	RandomAccessFlag              uint8
	AudioMixAppFlag               uint8
	LosslessMayBypassMixerFlag    uint8
	MVCBaseViewRFlag              uint8
	SDRConversionNotificationFlag uint8
	Reserved3                     uint16 // 11 bits
}

func (a *AppInfoPlayList) Unmarshal(b []byte) (int, error) {
	r := codec.NewReader(b, "AppInfoPlayList")
	a.Length = r.U32()
	a.Reserved1 = r.U8()
	a.PlaybackType = r.U8()
	a.PlaybackCount = r.U16()
	a.UOMaskTable = UOMaskTable(r.U64())
	bits := codec.NewBitReader(uint64(r.U16()), 16)
	a.RandomAccessFlag = bits.Flag()
	a.AudioMixAppFlag = bits.Flag()
	a.LosslessMayBypassMixerFlag = bits.Flag()
	a.MVCBaseViewRFlag = bits.Flag()
	a.SDRConversionNotificationFlag = bits.Flag()
	a.Reserved3 = bits.U16(11)
	return r.Offset(), r.Err()
}

func (a *AppInfoPlayList) Marshal(b []byte) (int, error) {
	var bits codec.BitWriter
	bits.Put(1, uint64(a.RandomAccessFlag)).
		Put(1, uint64(a.AudioMixAppFlag)).
		Put(1, uint64(a.LosslessMayBypassMixerFlag)).
		Put(1, uint64(a.MVCBaseViewRFlag)).
		Put(1, uint64(a.SDRConversionNotificationFlag)).
		Put(11, uint64(a.Reserved3))
	flags, err := bits.Value()
	if err != nil {
		return 0, err
	}

	w := codec.NewWriter(b, "AppInfoPlayList")
	w.U32(a.Length)
	w.U8(a.Reserved1)
	w.U8(a.PlaybackType)
	w.U16(a.PlaybackCount)
	w.U64(uint64(a.UOMaskTable))
	w.U16(uint16(flags))
	return w.Offset(), w.Err()
}

func (a *AppInfoPlayList) Len() int                 { return 18 }
func (a *AppInfoPlayList) Children() []codec.Record { return nil }
func (a *AppInfoPlayList) DisplaySize() int         { return appInfoDisplaySize }
func (a *AppInfoPlayList) StoredLength() int        { return int(a.Length) }
func (a *AppInfoPlayList) SetStoredLength(n int)    { a.Length = uint32(n) }
