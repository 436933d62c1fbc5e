package telephony

import (
	"strings"
	"testing"

	"launch-line/internal/callflow"
)

func TestRenderTwiMLEmptyResponse(t *testing.T) {
	xml, err := RenderTwiML(nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(xml, "<Response") {
		t.Fatalf("expected a Response element: %s", xml)
	}
	if strings.Contains(xml, "<Play") || strings.Contains(xml, "<Dial") {
		t.Fatalf("empty verb list must render no verbs: %s", xml)
	}
}

func TestRenderTwiMLMenuSequence(t *testing.T) {
	xml, err := RenderTwiML([]callflow.Verb{
		callflow.Play{URL: "/static/audio/greeting.wav"},
		callflow.Pause{Seconds: 1},
		callflow.Say{Text: "launch at noon"},
		callflow.Gather{
			Action:    "/call/gathered",
			Timeout:   30,
			NumDigits: 1,
			Prompt:    []callflow.Verb{callflow.Play{URL: "/static/audio/options.wav"}},
		},
		callflow.Redirect{URL: "/call/gather_failed"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	for _, want := range []string{
		"<Play>/static/audio/greeting.wav</Play>",
		`<Pause length="1">`,
		"<Say>launch at noon</Say>",
		`action="/call/gathered"`,
		`timeout="30"`,
		`numDigits="1"`,
		"<Redirect>/call/gather_failed</Redirect>",
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, xml)
		}
	}

	// The prompt must nest inside the gather.
	gatherStart := strings.Index(xml, "<Gather")
	gatherEnd := strings.Index(xml, "</Gather>")
	prompt := strings.Index(xml, "options.wav")
	if prompt < gatherStart || prompt > gatherEnd {
		t.Fatalf("gather prompt must nest inside Gather:\n%s", xml)
	}
}

func TestRenderTwiMLDial(t *testing.T) {
	xml, err := RenderTwiML([]callflow.Verb{callflow.Dial{
		Number:    "+447700900007",
		CallerID:  "+441223000000",
		Action:    "/call/human/7/0/end",
		PickupURL: "/call/human/7/0/pickup?parent_sid=CA1",
	}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{
		`callerId="+441223000000"`,
		`action="/call/human/7/0/end"`,
		">+447700900007</Number>",
		`url="/call/human/7/0/pickup?parent_sid=CA1"`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, xml)
		}
	}
}

func TestRenderTwiMLDialRequiresNumber(t *testing.T) {
	if _, err := RenderTwiML([]callflow.Verb{callflow.Dial{}}); err == nil {
		t.Fatalf("expected error for dial without number")
	}
}
