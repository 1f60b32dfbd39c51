package chapter

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bdmeta/pkg/coding"
	"github.com/ssargent/bdmeta/pkg/mpls"
)

func testPlaylist() *mpls.Header {
	video := &mpls.PlayItem{ClipInformationFileName: "00001", INTime: 900000, OUTTime: 900000 + 45000*10}
	video.STNTable.Streams[mpls.PrimaryVideo] = []*mpls.StreamPair{{
		Attributes: mpls.StreamAttributes{
			CodingType: coding.H264,
			Attrs:      &mpls.VideoAttributes{VideoFormat: 6, FrameRate: 1},
		},
	}}

	h := &mpls.Header{}
	h.PlayList.PlayItems = []*mpls.PlayItem{
		video,
		{ClipInformationFileName: "00002", INTime: 0, OUTTime: 45000 * 5},
		{ClipInformationFileName: "00003", INTime: 0, OUTTime: 45000},
	}
	h.PlayListMark.Marks = []*mpls.Mark{
		{MarkType: mpls.MarkTypeEntry, RefToPlayItemID: 0, MarkTimeStamp: 990000},
		{MarkType: mpls.MarkTypeLink, RefToPlayItemID: 0, MarkTimeStamp: 945000},
		{MarkType: mpls.MarkTypeEntry, RefToPlayItemID: 1, MarkTimeStamp: 0},
		{MarkType: mpls.MarkTypeEntry, RefToPlayItemID: 1, MarkTimeStamp: 45000 * 3},
	}
	return h
}

func times(c *Chapters) []float64 {
	out := make([]float64, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e.Time)
	}
	return out
}

func TestFromPlaylist(t *testing.T) {
	lists, err := FromPlaylist(testPlaylist())
	require.NoError(t, err)
	require.Len(t, lists, 2)

	first := lists[0]
	assert.Equal(t, "00001", first.Clip)
	assert.Equal(t, []float64{0, 2}, times(first))
	assert.Equal(t, 10.0, first.Duration)
	assert.Equal(t, 24000, first.FrameRateNum)
	assert.Equal(t, 1001, first.FrameRateDen)
	assert.Equal(t, DefaultLanguage, first.Entries[0].Language)

	second := lists[1]
	assert.Equal(t, "00002", second.Clip)
	assert.Equal(t, []float64{0, 3}, times(second))
	assert.Equal(t, 5.0, second.Duration)
	assert.Zero(t, second.FrameRateNum)
}

func TestFromPlaylist_MarkBeforeIn(t *testing.T) {
	h := testPlaylist()
	h.PlayListMark.Marks[0].MarkTimeStamp = 45000

	_, err := FromPlaylist(h)
	assert.True(t, errors.Is(err, ErrMarkBeforeIn))
}

func TestAppend(t *testing.T) {
	lists, err := FromPlaylist(testPlaylist())
	require.NoError(t, err)

	joined := lists[0].Append(lists[1])
	assert.Equal(t, []float64{0, 2, 10, 13}, times(joined))
	assert.Equal(t, 15.0, joined.Duration)
	assert.Equal(t, []float64{0, 2}, times(lists[0]), "inputs unchanged")

	assert.Equal(t, joined, Join(lists))
	assert.Nil(t, Join(nil))
}

func TestSetLanguage(t *testing.T) {
	c := &Chapters{Entries: []Entry{{}, {Time: 1}}}
	require.NoError(t, c.SetLanguage("jpn"))
	assert.Equal(t, "jpn", c.Entries[1].Language)

	assert.True(t, errors.Is(c.SetLanguage("ja"), ErrInvalidLanguage))
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000000"},
		{2, "00:00:02.000000"},
		{1.1, "00:00:01.100000"},
		{3725.5, "01:02:05.500000"},
		{59.9999999, "00:01:00.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Timestamp(tt.seconds))
		})
	}
}

func TestWriteXML(t *testing.T) {
	c := &Chapters{Entries: []Entry{
		{Time: 0, Language: "eng"},
		{Time: 2, Language: "eng", Name: "Opening"},
	}}
	var buf bytes.Buffer
	require.NoError(t, c.WriteXML(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, xml.Header+xmlDoctype+"\n<Chapters>"))
	assert.Contains(t, out, "<ChapterTimeStart>00:00:02.000000</ChapterTimeStart>")
	assert.Contains(t, out, "<ChapterString>Chapter 01</ChapterString>")
	assert.Contains(t, out, "<ChapterString>Opening</ChapterString>")
	assert.Contains(t, out, "<EditionFlagDefault>1</EditionFlagDefault>")

	var doc xmlChapters
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Edition.Atoms, 2)
	assert.Equal(t, "eng", doc.Edition.Atoms[0].Display.Language)
	assert.Equal(t, 1, doc.Edition.Atoms[1].FlagEnabled)
}

func TestWriteQPFile(t *testing.T) {
	lists, err := FromPlaylist(testPlaylist())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, lists[0].WriteQPFile(&buf))
	assert.Equal(t, "0 I\n48 I\n", buf.String())

	err = lists[1].WriteQPFile(&buf)
	assert.True(t, errors.Is(err, ErrNoFrameRate))
}
