// Package highlight maintains character-offset highlight ranges over an
// immutable source text and renders them as plain/highlighted segments.
// Offsets are rune offsets so that selections over non-ASCII clinical
// text stay aligned with what the browser reports.
package highlight

import "sort"

// Range is a half-open [Start, End) rune-offset span into a source text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsEmpty reports whether the range covers no characters.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Clamp constrains r to [0, n]. Out-of-bounds offsets are pulled inside
// rather than rejected: saved highlight data may reference a since-edited
// text, and the contract is to degrade, never to panic.
func Clamp(r Range, n int) Range {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Start > n {
		r.Start = n
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	if r.End > n {
		r.End = n
	}
	return r
}

// Normalize merges a raw list of ranges into the minimal sorted disjoint
// set. Ranges that overlap or touch (next.Start == cur.End) merge into
// one. Empty ranges are dropped. The input slice is not modified.
func Normalize(ranges []Range) []Range {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsEmpty() {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		return nil
	}

	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Start != rs[j].Start {
			return rs[i].Start < rs[j].Start
		}
		return rs[i].End < rs[j].End
	})

	out := rs[:1]
	for _, next := range rs[1:] {
		cur := &out[len(out)-1]
		if next.Start <= cur.End {
			if next.End > cur.End {
				cur.End = next.End
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

// Add inserts r into an already-normalized set, merging as needed, and
// returns a new normalized set. Adding an empty range is a no-op.
func Add(set []Range, r Range) []Range {
	if r.IsEmpty() {
		return Normalize(set)
	}
	return Normalize(append(append([]Range{}, set...), r))
}
