package clpi

import (
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/coding"
	"github.com/ssargent/bdmeta/pkg/extension"
)

func testStream(pid uint16, ct coding.Type, info CodingInfo, padding int) *StreamInPS {
	return &StreamInPS{
		StreamPID: pid,
		StreamCodingInfo: StreamCodingInfo{
			CodingType: ct,
			Attrs:      info,
			Padding:    make([]byte, padding),
		},
	}
}

func testEPMap(pid uint16, coarse, fine int) *StreamPIDEntry {
	e := &StreamPIDEntry{StreamPID: pid, EPStreamType: 1}
	for i := 0; i < coarse; i++ {
		e.EPCoarseEntries = append(e.EPCoarseEntries, EPCoarseEntry{
			RefToEPFineID: uint32(i * 2),
			PTSEPCoarse:   uint16(100 + i),
			SPNEPCoarse:   uint32(i * 0x20000),
		})
	}
	for i := 0; i < fine; i++ {
		e.EPFineEntries = append(e.EPFineEntries, EPFineEntry{
			IsAngleChangePoint: uint8(i % 2),
			IEndPositionOffset: 1,
			PTSEPFine:          uint16(i * 10),
			SPNEPFine:          uint32(i * 300),
		})
	}
	return e
}

// testClip builds a canonical clip with one program of three streams and an
// EP map for the video stream.
func testClip() *Header {
	h := &Header{
		TypeIndicator: TypeIndicator,
		VersionNumber: "0200",
		ClipInfo: ClipInfo{
			ClipStreamType:        ClipStreamTypeAV,
			ApplicationType:       ApplicationMovie,
			TSRecordingRate:       6000000,
			NumberOfSourcePackets: 123456,
			TSTypeInfoBlock:       TSTypeInfoBlock{ValidityFlags: 0x80, FormatIdentifier: "HDMV"},
		},
	}
	h.SequenceInfo.ATCSequences = []*ATCSequence{{
		STCSequences: []*STCSequence{{
			PCRPID:                0x1001,
			PresentationStartTime: 27000000,
			PresentationEndTime:   29700000,
		}},
	}}
	h.ProgramInfo.Programs = []*Program{{
		ProgramMapPID: 0x0100,
		Streams: []*StreamInPS{
			testStream(0x1011, coding.H264, &VideoInfo{VideoFormat: 6, FrameRate: 1, VideoAspect: 3}, 16),
			testStream(0x1100, coding.AC3, &AudioInfo{AudioFormat: 6, SampleRate: 1, LanguageCode: "eng"}, 16),
			testStream(0x1200, coding.PresentationGraphics, &GraphicsInfo{LanguageCode: "eng"}, 17),
		},
	}}
	h.CPI = CPI{
		CPIType:          CPITypeEPMap,
		StreamPIDEntries: []*StreamPIDEntry{testEPMap(0x1011, 2, 3)},
	}
	codec.Recompute(h)
	return h
}

func encodeClip(t *testing.T, h *Header) []byte {
	t.Helper()
	data, err := codec.Encode(h)
	require.NoError(t, err)
	return data
}

func TestDecode_RoundTrip(t *testing.T) {
	data := encodeClip(t, testClip())

	h, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, data, encodeClip(t, h))

	assert.Equal(t, "HDMV", h.ClipInfo.TSTypeInfoBlock.FormatIdentifier)
	assert.Equal(t, uint32(123456), h.ClipInfo.NumberOfSourcePackets)
	assert.Nil(t, h.ClipInfo.FollowingClip)

	require.Len(t, h.SequenceInfo.ATCSequences, 1)
	assert.Equal(t, uint32(29700000), h.SequenceInfo.ATCSequences[0].STCSequences[0].PresentationEndTime)

	streams := h.ProgramInfo.Programs[0].Streams
	require.Len(t, streams, 3)
	assert.Equal(t, uint8(21), streams[0].StreamCodingInfo.Length)
	assert.Equal(t, &VideoInfo{VideoFormat: 6, FrameRate: 1, VideoAspect: 3}, streams[0].StreamCodingInfo.Attrs)
	assert.Equal(t, &GraphicsInfo{LanguageCode: "eng"}, streams[2].StreamCodingInfo.Attrs)

	require.Len(t, h.CPI.StreamPIDEntries, 1)
	ep := h.CPI.StreamPIDEntries[0]
	assert.Equal(t, uint16(2), ep.NumberOfEPCoarseEntries)
	assert.Equal(t, uint32(3), ep.NumberOfEPFineEntries)
	assert.Equal(t, testEPMap(0x1011, 2, 3).EPFineEntries, ep.EPFineEntries)
}

func TestHeader_Addresses(t *testing.T) {
	h := testClip()
	assert.Equal(t, uint32(176), h.ClipInfo.Length)
	assert.Equal(t, uint16(30), h.ClipInfo.TSTypeInfoBlock.Length)
	assert.Equal(t, uint32(40+180), h.SequenceInfoStartAddress)
	assert.Equal(t, h.SequenceInfoStartAddress+h.SequenceInfo.Length+4, h.ProgramInfoStartAddress)
	assert.Equal(t, h.ProgramInfoStartAddress+h.ProgramInfo.Length+4, h.CPIStartAddress)
	assert.Equal(t, h.CPIStartAddress+h.CPI.Length+4, h.ClipMarkStartAddress)
	assert.Zero(t, h.ExtensionDataStartAddress)
	assert.Equal(t, uint32(2+14+6), h.SequenceInfo.Length)

	h.ExtensionData = &extension.Data{}
	codec.Recompute(h)
	assert.Equal(t, h.ClipMarkStartAddress+4, h.ExtensionDataStartAddress)

	data := encodeClip(t, h)
	_, err := Decode(data)
	require.NoError(t, err)
}

func TestClipInfo_FollowingClip(t *testing.T) {
	h := testClip()
	h.ClipInfo.FollowingClip = &FollowingClip{
		FollowingClipStreamType:          1,
		FollowingClipInformationFileName: "00002",
		FollowingClipCodecIdentifier:     "M2TS",
	}
	codec.Recompute(h)
	assert.Equal(t, uint8(1), h.ClipInfo.IsCC5)
	assert.Equal(t, uint32(192), h.ClipInfo.Length)
	assert.Equal(t, uint32(40+196), h.SequenceInfoStartAddress)

	decoded, err := Decode(encodeClip(t, h))
	require.NoError(t, err)
	require.NotNil(t, decoded.ClipInfo.FollowingClip)
	assert.Equal(t, "00002", decoded.ClipInfo.FollowingClip.FollowingClipInformationFileName)

	h.ClipInfo.FollowingClip = nil
	_, err = codec.Encode(h)
	assert.True(t, errors.Is(err, codec.ErrValidation))
}

func TestCPI_AddressFormulas(t *testing.T) {
	h := testClip()
	h.CPI.StreamPIDEntries = append(h.CPI.StreamPIDEntries, testEPMap(0x1100, 1, 4))
	codec.Recompute(h)

	first, second := h.CPI.StreamPIDEntries[0], h.CPI.StreamPIDEntries[1]
	// meta entries end at 8+12*2 within the block, 6 bytes in is the EP map
	assert.Equal(t, uint32(8+24-6), first.EPMapForOneStreamPIDStartAddress)
	assert.Equal(t, uint32(4+8*2), first.EPFineTableStartAddress)
	assert.Equal(t, first.EPMapForOneStreamPIDStartAddress+uint32(4+8*2+4*3), second.EPMapForOneStreamPIDStartAddress)
	assert.Equal(t, uint32(4+8), second.EPFineTableStartAddress)
	assert.Equal(t, uint32(8+24+32+28-4), h.CPI.Length)

	decoded, err := Decode(encodeClip(t, h))
	require.NoError(t, err)
	assert.Len(t, decoded.CPI.StreamPIDEntries, 2)
}

func TestCPI_StaleAfterEdit(t *testing.T) {
	h := testClip()
	ep := h.CPI.StreamPIDEntries[0]
	ep.EPCoarseEntries = append(ep.EPCoarseEntries, EPCoarseEntry{PTSEPCoarse: 7})

	_, err := codec.Encode(h)
	assert.True(t, errors.Is(err, codec.ErrValidation))

	codec.Recompute(h)
	assert.Equal(t, uint32(4+8*3), ep.EPFineTableStartAddress)
	_, err = Decode(encodeClip(t, h))
	require.NoError(t, err)
}

func TestCPI_CorruptAddresses(t *testing.T) {
	h := testClip()
	valid := encodeClip(t, h)
	cpi := int(h.CPIStartAddress)

	tests := []struct {
		name string
		at   int
	}{
		{"EP map start address", cpi + 8 + 8 + 3},
		{"fine table start address", cpi + epMapStart + int(h.CPI.StreamPIDEntries[0].EPMapForOneStreamPIDStartAddress) + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte(nil), valid...)
			data[tt.at]++
			_, err := Decode(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrDecode), "got %v", err)
		})
	}
}

func TestCPI_Empty(t *testing.T) {
	h := testClip()
	h.CPI = CPI{}
	codec.Recompute(h)
	assert.Equal(t, 4, h.CPI.Len())

	decoded, err := Decode(encodeClip(t, h))
	require.NoError(t, err)
	assert.Empty(t, decoded.CPI.StreamPIDEntries)
}

func TestEPEntry_Position(t *testing.T) {
	coarse := EPCoarseEntry{PTSEPCoarse: 3, SPNEPCoarse: 0x40123}
	fine := EPFineEntry{PTSEPFine: 2, SPNEPFine: 0x10}
	assert.Equal(t, uint64(2<<19+2<<9), coarse.PTS(fine))
	assert.Equal(t, uint32(0x40010), coarse.SPN(fine))
}

func TestStreamCodingInfo_Variants(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		attrs   CodingInfo
		padding []byte
	}{
		{"video", []byte{7, 0x1B, 0x61, 0x32, 0, 0, 0xAA, 0xBB}, &VideoInfo{VideoFormat: 6, FrameRate: 1, VideoAspect: 3, OCFlag: 1}, []byte{0xAA, 0xBB}},
		{"hevc", []byte{6, 0x24, 0x86, 0x31, 0x21, 0x80, 0}, &HDRVideoInfo{VideoFormat: 8, FrameRate: 6, VideoAspect: 3, CRFlag: 1, DynamicRangeType: 2, ColorSpace: 1, HDRPlusFlag: 1}, []byte{0}},
		{"audio", []byte{5, 0x81, 0x61, 'e', 'n', 'g'}, &AudioInfo{AudioFormat: 6, SampleRate: 1, LanguageCode: "eng"}, []byte{}},
		{"graphics", []byte{4, 0x90, 'e', 'n', 'g'}, &GraphicsInfo{LanguageCode: "eng"}, []byte{}},
		{"text", []byte{5, 0x92, 1, 'j', 'p', 'n'}, &TextInfo{CharacterCode: 1, LanguageCode: "jpn"}, []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StreamCodingInfo
			n, err := s.Unmarshal(tt.data)
			require.NoError(t, err)
			assert.Equal(t, len(tt.data), n)
			assert.Equal(t, tt.attrs, s.Attrs)
			assert.Equal(t, tt.padding, s.Padding)
			assert.Equal(t, int(s.Length), s.DisplaySize())

			buf := make([]byte, s.Len())
			_, err = s.Marshal(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.data, buf)
		})
	}
}

func TestStreamCodingInfo_Errors(t *testing.T) {
	var s StreamCodingInfo
	_, err := s.Unmarshal([]byte{2, 0x77, 0})
	assert.True(t, errors.Is(err, codec.ErrDecode))

	_, err = s.Unmarshal([]byte{9, 0x1B, 0x61})
	assert.True(t, errors.Is(err, codec.ErrDecode))

	s = StreamCodingInfo{Length: 5, CodingType: coding.AC3, Attrs: &GraphicsInfo{LanguageCode: "eng"}}
	assert.True(t, errors.Is(s.Check(), codec.ErrValidation))
}

func TestClipMark_Opaque(t *testing.T) {
	h := testClip()
	h.ClipMark.Data = []byte{0, 1, 2, 3, 4, 5}
	codec.Recompute(h)
	assert.Equal(t, uint32(6), h.ClipMark.Length)

	decoded, err := Decode(encodeClip(t, h))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5}, decoded.ClipMark.Data)
}

func TestDecode_Errors(t *testing.T) {
	valid := encodeClip(t, testClip())

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"bad magic", func(b []byte) []byte { copy(b, "MPLS"); return b }},
		{"truncated", func(b []byte) []byte { return b[:len(b)-1] }},
		{"trailing bytes", func(b []byte) []byte { return append(b, 0, 0) }},
		{"wrong program info address", func(b []byte) []byte { b[15] += 2; return b }},
		{"preamble only", func(b []byte) []byte { return b[:40] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.mutate(append([]byte(nil), valid...)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrDecode), "got %v", err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLIPINF", "00001.clpi")
	h := testClip()
	require.NoError(t, h.Save(path, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, encodeClip(t, h), encodeClip(t, loaded))
	assert.True(t, errors.Is(loaded.Save(path, false), codec.ErrDestinationExists))
}
