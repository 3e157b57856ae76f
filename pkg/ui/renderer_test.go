package ui

import (
	"strings"
	"testing"

	"github.com/yonatanbot/yonatan/pkg/client"
)

var healthFixture = client.Health{
	Status:                  "degraded",
	DatabaseConnected:       true,
	AIModelWorking:          false,
	FallbackSystemAvailable: true,
}

func TestRenderBotMessageKeepsAllContent(t *testing.T) {
	out := RenderBotMessage("זה **חשוב** מאוד.\n\nCARD[תרגיל|חמש דקות ביום.]\n\n[רוצה דוגמה?] [לא עכשיו]")

	for _, want := range []string{"חשוב", "מאוד", "תרגיל", "חמש דקות ביום.", "רוצה דוגמה?", "לא עכשיו"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered message missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBotMessageStripsMarkupSyntax(t *testing.T) {
	out := RenderBotMessage("שלום **עולם** CARD[כותרת|גוף]")

	for _, leak := range []string{"**", "CARD["} {
		if strings.Contains(out, leak) {
			t.Errorf("markup syntax %q leaked into output:\n%s", leak, out)
		}
	}
}

func TestRenderChipsNumbersLabels(t *testing.T) {
	out := RenderChips([]string{"ראשון", "שני"}, false)
	for _, want := range []string{"1.", "ראשון", "2.", "שני"} {
		if !strings.Contains(out, want) {
			t.Errorf("chip row missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHealthReportDegraded(t *testing.T) {
	h := &healthFixture
	out := RenderHealthReport("http://localhost:5000", h)
	if !strings.Contains(out, "מצב מוגבל") {
		t.Errorf("degraded badge missing:\n%s", out)
	}
}
