package ui

import (
	"strconv"
	"strings"

	"github.com/yonatanbot/yonatan/pkg/markup"
)

// RenderBotMessage renders assistant text through the reply markup grammar:
// inline bold, bordered cards, and a trailing row of suggestion chips.
func RenderBotMessage(text string) string {
	segs := markup.Parse(text)

	var b strings.Builder
	b.WriteString(botLabelStyle.Render("יונתן"))
	b.WriteString("\n")

	var inline strings.Builder
	flushInline := func() {
		if s := strings.TrimRight(inline.String(), " \n"); s != "" {
			b.WriteString(botTextStyle.Render(s))
			b.WriteString("\n")
		}
		inline.Reset()
	}

	var chips []string
	for _, seg := range segs {
		switch seg.Kind {
		case markup.KindText:
			inline.WriteString(seg.Text)
		case markup.KindBold:
			inline.WriteString(boldStyle.Render(seg.Text))
		case markup.KindCard:
			flushInline()
			b.WriteString(renderCard(seg.Title, seg.Body))
			b.WriteString("\n")
		case markup.KindChip:
			chips = append(chips, seg.Label)
		}
	}
	flushInline()

	if len(chips) > 0 {
		b.WriteString(RenderChips(chips, false))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderUserMessage renders a user bubble.
func RenderUserMessage(text string) string {
	return userLabelStyle.Render("את/ה") + "\n" + userTextStyle.Render(text) + "\n"
}

func renderCard(title, body string) string {
	content := cardTitleStyle.Render(strings.TrimSpace(title)) + "\n" + strings.TrimSpace(body)
	return cardStyle.Render(content)
}

// RenderChips renders numbered suggestion chips. Used chips gray out.
func RenderChips(labels []string, used bool) string {
	style := chipStyle
	if used {
		style = chipUsedStyle
	}
	rendered := make([]string, 0, len(labels))
	for i, label := range labels {
		rendered = append(rendered, style.Render(strconv.Itoa(i+1)+". "+label))
	}
	return strings.Join(rendered, " ")
}
