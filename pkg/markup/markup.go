// Package markup parses the content mini-language embedded in bot replies.
//
// Recognized forms:
//
//	CARD[title|body]  a titled card block; the body may contain literal newlines
//	**bold**          emphasis
//	[label]           an actionable suggestion chip
//
// Parsing is single-pass over the raw source and always produces the same
// segments for the same input, so re-parsing a growing message prefix on every
// stream chunk never double-wraps already converted content.
package markup

import (
	"regexp"
	"strings"
)

// Kind discriminates segment types.
type Kind int

const (
	KindText Kind = iota
	KindBold
	KindCard
	KindChip
)

// Segment is one parsed piece of a bot message.
type Segment struct {
	Kind  Kind
	Text  string // KindText, KindBold
	Title string // KindCard
	Body  string // KindCard
	Label string // KindChip
}

var (
	cardRe = regexp.MustCompile(`CARD\[([^|\]]+)\|([^\]]+)\]`)
	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	chipRe = regexp.MustCompile(`\[([^\[\]\n]+)\]`)
)

type matcher struct {
	re   *regexp.Regexp
	kind Kind
}

// Card syntax must win over the chip pattern, which would otherwise match the
// bracket portion of a card.
var matchers = []matcher{
	{cardRe, KindCard},
	{boldRe, KindBold},
	{chipRe, KindChip},
}

// Parse splits text into ordered segments. Plain text with no markup yields a
// single KindText segment. An empty input yields no segments.
func Parse(text string) []Segment {
	var segs []Segment
	rest := text

	for rest != "" {
		best := -1
		var bestLoc []int
		var bestKind Kind

		for _, m := range matchers {
			loc := m.re.FindStringSubmatchIndex(rest)
			if loc == nil {
				continue
			}
			if best == -1 || loc[0] < best {
				best = loc[0]
				bestLoc = loc
				bestKind = m.kind
			}
		}

		if best == -1 {
			segs = append(segs, Segment{Kind: KindText, Text: rest})
			break
		}

		if best > 0 {
			segs = append(segs, Segment{Kind: KindText, Text: rest[:best]})
		}

		switch bestKind {
		case KindCard:
			segs = append(segs, Segment{
				Kind:  KindCard,
				Title: rest[bestLoc[2]:bestLoc[3]],
				Body:  rest[bestLoc[4]:bestLoc[5]],
			})
		case KindBold:
			segs = append(segs, Segment{Kind: KindBold, Text: rest[bestLoc[2]:bestLoc[3]]})
		case KindChip:
			segs = append(segs, Segment{Kind: KindChip, Label: rest[bestLoc[2]:bestLoc[3]]})
		}

		rest = rest[bestLoc[1]:]
	}

	return segs
}

// Chips returns the chip labels of a message in order of appearance.
func Chips(segs []Segment) []string {
	var labels []string
	for _, s := range segs {
		if s.Kind == KindChip {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// PlainText reassembles segments into the raw source form. Parse(PlainText(Parse(t)))
// is identical to Parse(t) for any input.
func PlainText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case KindText:
			b.WriteString(s.Text)
		case KindBold:
			b.WriteString("**")
			b.WriteString(s.Text)
			b.WriteString("**")
		case KindCard:
			b.WriteString("CARD[")
			b.WriteString(s.Title)
			b.WriteString("|")
			b.WriteString(s.Body)
			b.WriteString("]")
		case KindChip:
			b.WriteString("[")
			b.WriteString(s.Label)
			b.WriteString("]")
		}
	}
	return b.String()
}
