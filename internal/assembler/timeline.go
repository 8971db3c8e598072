package assembler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DJIMIGA/latigue/internal/models"
)

// CaptionWindow is one subtitle entry: the segment's text shown for exactly
// the segment's declared duration, at its cumulative offset in the final cut.
type CaptionWindow struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Timeline is the computed presentation plan for a set of completed segments.
// Order index drives everything; completion order never does.
type Timeline struct {
	Segments []models.Segment
	Captions []CaptionWindow
	Total    time.Duration
}

// BuildTimeline orders completed, selected segments by their order index and
// computes cumulative caption windows from the declared durations.
func BuildTimeline(segments []models.Segment) (*Timeline, error) {
	usable := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Selected && seg.Status == models.SegmentStatusCompleted {
			usable = append(usable, seg)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("no completed segments to assemble")
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].Order < usable[j].Order })

	tl := &Timeline{Segments: usable}
	offset := time.Duration(0)
	for i, seg := range usable {
		d := time.Duration(seg.Duration) * time.Second
		tl.Captions = append(tl.Captions, CaptionWindow{
			Index: i + 1,
			Start: offset,
			End:   offset + d,
			Text:  seg.Text,
		})
		offset += d
	}
	tl.Total = offset
	return tl, nil
}

// SRT renders the caption windows as a SubRip document.
func (t *Timeline) SRT() string {
	var sb strings.Builder
	for _, w := range t.Captions {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", w.Index, srtTimestamp(w.Start), srtTimestamp(w.End), w.Text)
	}
	return sb.String()
}

func srtTimestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
