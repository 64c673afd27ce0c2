package highlight

// SegmentKind tags a rendered segment as plain or highlighted text.
type SegmentKind string

const (
	SegmentPlain       SegmentKind = "plain"
	SegmentHighlighted SegmentKind = "highlighted"
)

// Segment is one contiguous run of the source text.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Render walks the normalized range set over text and produces the
// ordered segment sequence. Concatenating the segment texts reproduces
// text exactly, character for character. Ranges are clamped to the text
// length, so stale offsets degrade to empty highlighted segments instead
// of panicking. Empty plain runs are skipped; an empty highlighted run
// from a fully-clamped range is kept so the caller can see it was there.
func Render(text string, set []Range) []Segment {
	runes := []rune(text)
	n := len(runes)

	ranges := Normalize(set)
	segs := make([]Segment, 0, 2*len(ranges)+1)

	cursor := 0
	for _, r := range ranges {
		r = Clamp(r, n)
		if r.Start < cursor {
			r.Start = cursor
		}
		if r.End < r.Start {
			r.End = r.Start
		}
		if r.Start > cursor {
			segs = append(segs, Segment{Kind: SegmentPlain, Text: string(runes[cursor:r.Start])})
		}
		segs = append(segs, Segment{Kind: SegmentHighlighted, Text: string(runes[r.Start:r.End])})
		cursor = r.End
	}
	if cursor < n {
		segs = append(segs, Segment{Kind: SegmentPlain, Text: string(runes[cursor:])})
	}
	if len(segs) == 0 {
		segs = append(segs, Segment{Kind: SegmentPlain, Text: text})
	}
	return segs
}
