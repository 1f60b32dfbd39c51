// Package coding catalogs the elementary stream coding types that select the
// attribute layout of a stream in MPLS STN tables and CLPI program info.
package coding

import "fmt"

// Type is the stream_coding_type byte.
type Type uint8

const (
	MPEG1Video           Type = 0x01
	MPEG2Video           Type = 0x02
	MPEG1Audio           Type = 0x03
	MPEG2Audio           Type = 0x04
	H264                 Type = 0x1B
	HEVC                 Type = 0x24
	LPCM                 Type = 0x80
	AC3                  Type = 0x81
	DTS                  Type = 0x82
	TrueHD               Type = 0x83
	AC3Plus              Type = 0x84
	DTSHD                Type = 0x85
	DTSHDMA              Type = 0x86
	AC3PlusSecondary     Type = 0xA1
	DTSHDSecondary       Type = 0xA2
	PresentationGraphics Type = 0x90
	InteractiveGraphics  Type = 0x91
	TextSubtitle         Type = 0x92
	VC1                  Type = 0xEA
)

// Class groups coding types that share an attribute layout.
type Class uint8

const (
	Unknown Class = iota
	Video
	HDRVideo
	Audio
	Graphics
	Text
)

func (c Class) String() string {
	switch c {
	case Video:
		return "video"
	case HDRVideo:
		return "hdr-video"
	case Audio:
		return "audio"
	case Graphics:
		return "graphics"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Classify returns the attribute layout class of t.
func Classify(t Type) Class {
	switch t {
	case MPEG1Video, MPEG2Video, H264, VC1:
		return Video
	case HEVC:
		return HDRVideo
	case MPEG1Audio, MPEG2Audio, LPCM, AC3, DTS, TrueHD, AC3Plus, DTSHD, DTSHDMA,
		AC3PlusSecondary, DTSHDSecondary:
		return Audio
	case PresentationGraphics, InteractiveGraphics:
		return Graphics
	case TextSubtitle:
		return Text
	default:
		return Unknown
	}
}

func (t Type) String() string {
	switch t {
	case MPEG1Video:
		return "MPEG-1 Video"
	case MPEG2Video:
		return "MPEG-2 Video"
	case MPEG1Audio:
		return "MPEG-1 Audio"
	case MPEG2Audio:
		return "MPEG-2 Audio"
	case H264:
		return "AVC"
	case HEVC:
		return "HEVC"
	case LPCM:
		return "LPCM"
	case AC3:
		return "AC-3"
	case DTS:
		return "DTS"
	case TrueHD:
		return "TrueHD"
	case AC3Plus:
		return "E-AC-3"
	case DTSHD:
		return "DTS-HD HR"
	case DTSHDMA:
		return "DTS-HD MA"
	case AC3PlusSecondary:
		return "E-AC-3 (secondary)"
	case DTSHDSecondary:
		return "DTS-HD (secondary)"
	case PresentationGraphics:
		return "PGS"
	case InteractiveGraphics:
		return "IGS"
	case TextSubtitle:
		return "Text Subtitle"
	case VC1:
		return "VC-1"
	default:
		return fmt.Sprintf("0x%02X", uint8(t))
	}
}

// FrameRate returns the frames per second for a video frame_rate code as a
// numerator and denominator, or 0, 0 for reserved codes.
func FrameRate(code uint8) (num, den int) {
	switch code {
	case 1:
		return 24000, 1001
	case 2:
		return 24, 1
	case 3:
		return 25, 1
	case 4:
		return 30000, 1001
	case 6:
		return 50, 1
	case 7:
		return 60000, 1001
	default:
		return 0, 0
	}
}
