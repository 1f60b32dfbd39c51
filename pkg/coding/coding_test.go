package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		typ  Type
		want Class
	}{
		{MPEG2Video, Video},
		{H264, Video},
		{VC1, Video},
		{HEVC, HDRVideo},
		{LPCM, Audio},
		{DTSHDMA, Audio},
		{AC3PlusSecondary, Audio},
		{PresentationGraphics, Graphics},
		{InteractiveGraphics, Graphics},
		{TextSubtitle, Text},
		{Type(0x20), Unknown},
		{Type(0x00), Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.typ))
		})
	}
}

func TestFrameRate(t *testing.T) {
	num, den := FrameRate(1)
	assert.Equal(t, 24000, num)
	assert.Equal(t, 1001, den)

	num, den = FrameRate(5)
	assert.Zero(t, num)
	assert.Zero(t, den)
}
