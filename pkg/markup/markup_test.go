package markup

import (
	"reflect"
	"strings"
	"testing"
)

func TestParsePlainText(t *testing.T) {
	segs := Parse("שלום, מה שלומך היום?")
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Text != "שלום, מה שלומך היום?" {
		t.Errorf("unexpected segment: %+v", segs[0])
	}
}

func TestParseEmpty(t *testing.T) {
	if segs := Parse(""); segs != nil {
		t.Errorf("expected no segments for empty input, got %v", segs)
	}
}

func TestParseSegments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{
			name: "bold inside sentence",
			in:   "האתגר הוא **תקשורת וריבים** כרגע",
			want: []Segment{
				{Kind: KindText, Text: "האתגר הוא "},
				{Kind: KindBold, Text: "תקשורת וריבים"},
				{Kind: KindText, Text: " כרגע"},
			},
		},
		{
			name: "single chip",
			in:   "מה דעתך שננסה את [טבלת המחשבות]?",
			want: []Segment{
				{Kind: KindText, Text: "מה דעתך שננסה את "},
				{Kind: KindChip, Label: "טבלת המחשבות"},
				{Kind: KindText, Text: "?"},
			},
		},
		{
			name: "two chips",
			in:   "[ספר לי על מקרה ספציפי] או [שנבין קודם מושג מפתח]?",
			want: []Segment{
				{Kind: KindChip, Label: "ספר לי על מקרה ספציפי"},
				{Kind: KindText, Text: " או "},
				{Kind: KindChip, Label: "שנבין קודם מושג מפתח"},
				{Kind: KindText, Text: "?"},
			},
		},
		{
			name: "card with newline body",
			in:   "CARD[Title|Line1\nLine2]",
			want: []Segment{
				{Kind: KindCard, Title: "Title", Body: "Line1\nLine2"},
			},
		},
		{
			name: "card brackets not mistaken for chip",
			in:   "הנה CARD[מודל אפרת|אירוע, פרשנות, רגש, תגובה] להמשך",
			want: []Segment{
				{Kind: KindText, Text: "הנה "},
				{Kind: KindCard, Title: "מודל אפרת", Body: "אירוע, פרשנות, רגש, תגובה"},
				{Kind: KindText, Text: " להמשך"},
			},
		},
		{
			name: "mixed card bold chip",
			in:   "CARD[A|b] וגם **חזק** ואז [בחירה]",
			want: []Segment{
				{Kind: KindCard, Title: "A", Body: "b"},
				{Kind: KindText, Text: " וגם "},
				{Kind: KindBold, Text: "חזק"},
				{Kind: KindText, Text: " ואז "},
				{Kind: KindChip, Label: "בחירה"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q)\n got: %+v\nwant: %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{
		"טקסט רגיל בלי שום סימון מיוחד",
		"עם **הדגשה** ועם [כפתור]",
		"CARD[כותרת|גוף\nושורה שניה] וטקסט אחריו",
	}

	for _, in := range inputs {
		first := Parse(in)
		second := Parse(PlainText(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("re-parse changed segments for %q:\n first: %+v\nsecond: %+v", in, first, second)
		}
	}
}

func TestCardRoundTrip(t *testing.T) {
	segs := Parse("CARD[Title|Line1\nLine2]")

	var card *Segment
	for i := range segs {
		if segs[i].Kind == KindCard {
			card = &segs[i]
		}
	}
	if card == nil {
		t.Fatal("no card segment produced")
	}
	if card.Title != "Title" {
		t.Errorf("card title = %q, want Title", card.Title)
	}
	lines := strings.Split(card.Body, "\n")
	if len(lines) != 2 || lines[0] != "Line1" || lines[1] != "Line2" {
		t.Errorf("card body lines = %v", lines)
	}
	for _, s := range segs {
		if s.Kind == KindText && strings.Contains(s.Text, "CARD[") {
			t.Errorf("raw CARD syntax leaked into text segment: %q", s.Text)
		}
	}
}

func TestChips(t *testing.T) {
	segs := Parse("נסה [אפשרות אחת] או [אפשרות שניה]")
	got := Chips(segs)
	want := []string{"אפשרות אחת", "אפשרות שניה"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chips = %v, want %v", got, want)
	}
}
