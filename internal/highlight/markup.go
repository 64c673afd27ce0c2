package highlight

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// boldPattern is the minimal inline emphasis convention carried in the
// discharge summaries: **bold** becomes <strong>bold</strong> at display
// time. The transform runs inside already-escaped segment text and never
// shifts computed offsets.
var boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// ToHTML serializes text with the given range set applied as markup:
// segments are HTML-escaped, highlighted segments are wrapped in <mark>,
// and the **bold** display transform is applied within each segment.
// The result is what gets persisted in a response record.
func ToHTML(text string, set []Range) string {
	var b strings.Builder
	for _, seg := range Render(text, set) {
		frag := boldPattern.ReplaceAllString(html.EscapeString(seg.Text), "<strong>$1</strong>")
		if seg.Kind == SegmentHighlighted {
			b.WriteString("<mark>")
			b.WriteString(frag)
			b.WriteString("</mark>")
		} else {
			b.WriteString(frag)
		}
	}
	return b.String()
}

// ParseHTML walks a serialized markup string and recovers the plain text
// together with the rune-offset ranges covered by <mark> elements.
// <strong> markers contribute their literal ** back to the plain text so
// that parsing a ToHTML serialization recovers the original source text.
// Unknown tags are dropped from the text; this is a best-effort walk of
// self-produced markup, not a general HTML parser.
func ParseHTML(markup string) (string, []Range) {
	var (
		plain     strings.Builder
		ranges    []Range
		offset    int
		markDepth int
		markStart int
	)

	appendText := func(s string) {
		if s == "" {
			return
		}
		plain.WriteString(s)
		offset += utf8.RuneCountInString(s)
	}

	rest := markup
	for rest != "" {
		lt := strings.IndexByte(rest, '<')
		if lt < 0 {
			appendText(html.UnescapeString(rest))
			break
		}
		appendText(html.UnescapeString(rest[:lt]))
		rest = rest[lt:]

		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			// Dangling bracket: treat the remainder as text.
			appendText(html.UnescapeString(rest))
			break
		}
		tag := strings.ToLower(strings.TrimSpace(rest[1:gt]))
		rest = rest[gt+1:]

		switch {
		case tag == "mark":
			if markDepth == 0 {
				markStart = offset
			}
			markDepth++
		case tag == "/mark":
			if markDepth > 0 {
				markDepth--
				if markDepth == 0 && offset > markStart {
					ranges = append(ranges, Range{Start: markStart, End: offset})
				}
			}
		case tag == "strong" || tag == "/strong":
			appendText("**")
		case tag == "br" || tag == "br/" || tag == "br /":
			appendText("\n")
		default:
			// Foreign tag: drop it, keep its content.
		}
	}

	return plain.String(), Normalize(ranges)
}

// ReconcileHTML recovers a highlight set from saved markup against the
// text as it exists now. When the recovered plain text still matches,
// the parsed offsets are exact. When the text has been edited since the
// save, the offsets are clamped to the current length — best-effort
// recovery per the saved-data policy, never an error.
func ReconcileHTML(markup, currentText string) []Range {
	plain, ranges := ParseHTML(markup)
	if plain == currentText {
		return ranges
	}
	n := utf8.RuneCountInString(currentText)
	clamped := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		clamped = append(clamped, Clamp(r, n))
	}
	return Normalize(clamped)
}
