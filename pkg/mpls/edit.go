package mpls

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/coding"
)

var (
	ErrClipNotFound  = errors.New("clip not found in playlist")
	ErrAmbiguousClip = errors.New("clip used by more than one play item")
)

// ClearUOMasks unmasks every user operation on the playlist and its play items.
func (h *Header) ClearUOMasks() {
	h.AppInfoPlayList.UOMaskTable = 0
	for _, item := range h.PlayList.PlayItems {
		item.UOMaskTable = 0
	}
}

// UnmaskOperations clears ops on the playlist and its play items.
func (h *Header) UnmaskOperations(ops UOMaskTable) {
	h.AppInfoPlayList.UOMaskTable = h.AppInfoPlayList.UOMaskTable.Clear(ops)
	for _, item := range h.PlayList.PlayItems {
		item.UOMaskTable = item.UOMaskTable.Clear(ops)
	}
}

// EnableNavigation unmasks chapter and time search, skipping and trick play
// so warnings and trailers can be skipped.
func (h *Header) EnableNavigation() { h.UnmaskOperations(UONavigation) }

// FindPlayItem returns the index of the single play item that plays clip.
func (h *Header) FindPlayItem(clip string) (int, error) {
	found := -1
	for i, item := range h.PlayList.PlayItems {
		if item.ClipInformationFileName != clip {
			continue
		}
		if found >= 0 {
			return -1, errors.Wrapf(ErrAmbiguousClip, "%s", clip)
		}
		found = i
	}
	if found < 0 {
		return -1, errors.Wrapf(ErrClipNotFound, "%s", clip)
	}
	return found, nil
}

// AddPGStream appends a presentation graphics stream in language to the STN
// table of the play item that plays clip. The new stream takes the PID after
// the last PG stream of that play item, or basePID when it has none.
func (h *Header) AddPGStream(clip, language string, basePID uint16) (*StreamPair, error) {
	if len(clip) != 5 {
		return nil, codec.ValidationErrorf("AddPGStream", "clip name %q must be 5 characters", clip)
	}
	if len(language) != 3 {
		return nil, codec.ValidationErrorf("AddPGStream", "language %q must be 3 characters", language)
	}
	idx, err := h.FindPlayItem(clip)
	if err != nil {
		return nil, err
	}
	stn := &h.PlayList.PlayItems[idx].STNTable
	pid := basePID
	if pg := stn.Streams[PrimaryPG]; len(pg) > 0 {
		pid = pg[len(pg)-1].Entry.RefToStreamPID + 1
	}
	sp := &StreamPair{
		Entry: StreamEntry{
			Length:         streamEntryDisplaySize,
			StreamType:     StreamTypePlayItem,
			RefToStreamPID: pid,
		},
		Attributes: StreamAttributes{
			Length:     streamAttributesDisplaySize,
			CodingType: coding.PresentationGraphics,
			Attrs:      &GraphicsAttributes{LanguageCode: language},
		},
	}
	stn.Streams[PrimaryPG] = append(stn.Streams[PrimaryPG], sp)
	return sp, nil
}

// PDIssue is a plug-in disc constraint broken by a sub play item.
type PDIssue struct {
	SubPath     int
	SubPlayItem int
	Reason      string
}

func (i PDIssue) String() string {
	return fmt.Sprintf("sub-path %d item %d: %s", i.SubPath, i.SubPlayItem, i.Reason)
}

// CheckPD checks the synchronized out-of-mux sub-paths used by plug-in discs.
// Each sub play item must start at its own IN time and at the IN time of the
// play item it syncs to, and PG streams of that play item must reference
// sub-clip 0.
func (h *Header) CheckPD() ([]PDIssue, error) { return h.checkPD(false) }

// FixPD resets the sub-clip references CheckPD reports and returns the
// remaining issues, which need a re-author rather than a field change.
func (h *Header) FixPD() ([]PDIssue, error) { return h.checkPD(true) }

func (h *Header) checkPD(fix bool) ([]PDIssue, error) {
	var issues []PDIssue
	for si, sp := range h.PlayList.SubPaths {
		if sp.SubPathType != SubPathOutOfMuxSync {
			continue
		}
		for ii, spi := range sp.SubPlayItems {
			if int(spi.SyncPlayItemID) >= len(h.PlayList.PlayItems) {
				return nil, codec.ValidationErrorf("CheckPD", "sub-path %d item %d syncs to play item %d of %d",
					si, ii, spi.SyncPlayItemID, len(h.PlayList.PlayItems))
			}
			item := h.PlayList.PlayItems[spi.SyncPlayItemID]
			if spi.SyncStartPTS != spi.INTime {
				issues = append(issues, PDIssue{si, ii, fmt.Sprintf("SyncStartPTS %d != INTime %d", spi.SyncStartPTS, spi.INTime)})
			}
			if spi.INTime != item.INTime {
				issues = append(issues, PDIssue{si, ii, fmt.Sprintf("INTime %d != play item INTime %d", spi.INTime, item.INTime)})
			}
			for _, pg := range item.STNTable.Streams[PrimaryPG] {
				if pg.Entry.RefToSubClipID == 0 {
					continue
				}
				if fix {
					pg.Entry.RefToSubClipID = 0
					continue
				}
				issues = append(issues, PDIssue{si, ii, fmt.Sprintf("PG stream PID %#x references sub-clip %d", pg.Entry.RefToStreamPID, pg.Entry.RefToSubClipID)})
			}
		}
	}
	return issues, nil
}

// FixExtensionDataAddress repairs a playlist whose ExtensionDataStartAddress
// does not point right after the PlayListMark block. It works on raw bytes so
// it can fix files Decode rejects, and reports whether anything changed.
func FixExtensionDataAddress(data []byte) ([]byte, bool, error) {
	mark, err := codec.Uint(data, 12, 4)
	if err != nil {
		return nil, false, err
	}
	ext, err := codec.Uint(data, 16, 4)
	if err != nil {
		return nil, false, err
	}
	markSize, err := codec.Uint(data, int(mark), 4)
	if err != nil {
		return nil, false, err
	}
	want := mark + markSize + 4
	if ext == 0 || ext == want {
		return data, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	if err := codec.PutUint(out, 16, 4, want); err != nil {
		return nil, false, err
	}
	return out, true, nil
}
