// Package chapter turns playlist entry marks into chapter lists and writes
// them as Matroska chapter XML or x264 QP files.
package chapter

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/bdmeta/pkg/coding"
	"github.com/ssargent/bdmeta/pkg/mpls"
)

// DefaultLanguage is used for chapter names unless SetLanguage is called.
const DefaultLanguage = "eng"

// ticksPerSecond is the playlist time base.
const ticksPerSecond = 45000

var (
	ErrMarkBeforeIn    = errors.New("chapter mark is earlier than the play item in-time")
	ErrInvalidLanguage = errors.New("chapter language must be 3 characters")
	ErrNoFrameRate     = errors.New("no frame rate for qp file")
)

// Entry is a single chapter. Time is in seconds from the start of the clip.
type Entry struct {
	Time     float64
	Language string
	Name     string
}

// Chapters is the chapter list of one play item.
type Chapters struct {
	Clip     string
	Entries  []Entry
	Duration float64

	// FrameRateNum and FrameRateDen come from the play item's primary video
	// stream and are zero when it has none.
	FrameRateNum int
	FrameRateDen int
}

// FromPlaylist returns one chapter list per play item that has entry marks,
// in play item order. The first chapter is always at 0.
func FromPlaylist(h *mpls.Header) ([]*Chapters, error) {
	marks := make(map[int][]uint32)
	for _, m := range h.PlayListMark.Marks {
		if m.MarkType == mpls.MarkTypeEntry {
			marks[int(m.RefToPlayItemID)] = append(marks[int(m.RefToPlayItemID)], m.MarkTimeStamp)
		}
	}

	var out []*Chapters
	for i, item := range h.PlayList.PlayItems {
		times, ok := marks[i]
		if !ok {
			continue
		}
		c := &Chapters{
			Clip:     item.ClipInformationFileName,
			Duration: float64(item.OUTTime-item.INTime) / ticksPerSecond,
		}
		c.FrameRateNum, c.FrameRateDen = frameRate(item)
		if times[0] > item.INTime {
			c.Entries = append(c.Entries, Entry{Language: DefaultLanguage})
		}
		for _, t := range times {
			if t < item.INTime {
				return nil, errors.Wrapf(ErrMarkBeforeIn, "play item %d mark %d, in-time %d", i, t, item.INTime)
			}
			c.Entries = append(c.Entries, Entry{
				Time:     float64(t-item.INTime) / ticksPerSecond,
				Language: DefaultLanguage,
			})
		}
		out = append(out, c)
	}
	return out, nil
}

func frameRate(item *mpls.PlayItem) (int, int) {
	for _, s := range item.STNTable.Streams[mpls.PrimaryVideo] {
		switch a := s.Attributes.Attrs.(type) {
		case *mpls.VideoAttributes:
			return coding.FrameRate(a.FrameRate)
		case *mpls.HDRVideoAttributes:
			return coding.FrameRate(a.FrameRate)
		}
	}
	return 0, 0
}

// SetLanguage sets the language of every entry.
func (c *Chapters) SetLanguage(lang string) error {
	if len(lang) != 3 {
		return errors.Wrapf(ErrInvalidLanguage, "%q", lang)
	}
	for i := range c.Entries {
		c.Entries[i].Language = lang
	}
	return nil
}

// Append returns a list with the entries of next following those of c,
// shifted by c's duration. Neither input is modified.
func (c *Chapters) Append(next *Chapters) *Chapters {
	out := *c
	out.Entries = make([]Entry, 0, len(c.Entries)+len(next.Entries))
	out.Entries = append(out.Entries, c.Entries...)
	for _, e := range next.Entries {
		e.Time += c.Duration
		out.Entries = append(out.Entries, e)
	}
	out.Duration += next.Duration
	return &out
}

// Join concatenates lists in order. It returns nil for an empty input.
func Join(lists []*Chapters) *Chapters {
	if len(lists) == 0 {
		return nil
	}
	out := lists[0]
	for _, next := range lists[1:] {
		out = out.Append(next)
	}
	return out
}

// Timestamp formats seconds as HH:MM:SS.ffffff.
func Timestamp(seconds float64) string {
	us := int64(math.Round(seconds * 1e6))
	s := us / 1e6
	return fmt.Sprintf("%02d:%02d:%02d.%06d", s/3600, s%3600/60, s%60, us%1e6)
}

// Frame returns the frame number a chapter starts on at the list's frame rate.
func (c *Chapters) Frame(e Entry) (int64, error) {
	if c.FrameRateNum == 0 || c.FrameRateDen == 0 {
		return 0, errors.Wrapf(ErrNoFrameRate, "clip %s", c.Clip)
	}
	return int64(math.Round(e.Time * float64(c.FrameRateNum) / float64(c.FrameRateDen))), nil
}
