package callflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"launch-line/internal/calllog"
	"launch-line/internal/notify"
	"launch-line/internal/roster"
	"launch-line/internal/schedule"
)

type fixture struct {
	flow    *Flow
	store   *schedule.MemoryStore
	humans  *roster.MemoryRepo
	logRepo *calllog.MemoryRepo
	sink    *notify.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := schedule.NewMemoryStore()
	humans := roster.NewMemoryRepo()
	logRepo := calllog.NewMemoryRepo()
	sink := notify.NewMemorySink()

	f := New(
		schedule.NewResolver(store),
		roster.NewService(humans),
		calllog.NewService(logRepo, nil),
		sink,
		nil,
	)
	f.Now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	return &fixture{flow: f, store: store, humans: humans, logRepo: logRepo, sink: sink}
}

func (fx *fixture) messages(t *testing.T, sid string) []string {
	t.Helper()
	entries, err := fx.logRepo.List(context.Background(), sid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestStartNothingScheduledOffersMenu(t *testing.T) {
	fx := newFixture(t)
	cc := CallContext{SID: "CA1"}

	verbs, err := fx.flow.Start(context.Background(), cc, "+447700900001", "+441223000000")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// greeting, pause, none-scheduled notice, pause, gather, redirect
	if len(verbs) != 6 {
		t.Fatalf("expected 6 verbs, got %d: %#v", len(verbs), verbs)
	}
	if p, ok := verbs[2].(Play); !ok || !strings.Contains(p.URL, "none_three_days") {
		t.Fatalf("expected nothing-scheduled audio, got %#v", verbs[2])
	}
	g, ok := verbs[4].(Gather)
	if !ok || g.NumDigits != 1 || g.Timeout != 30 {
		t.Fatalf("expected one-digit 30s gather, got %#v", verbs[4])
	}
	if _, ok := verbs[5].(Redirect); !ok {
		t.Fatalf("expected timeout redirect after gather, got %#v", verbs[5])
	}
}

func TestStartAnnouncementWindowSaysCallText(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.store.Upsert(ctx, schedule.Window{
		ShortName: "flight",
		Lower:     time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
		Upper:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		CallText:  "launch at noon",
	}, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	verbs, err := fx.flow.Start(ctx, CallContext{SID: "CA1"}, "+44770", "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var spoken string
	for _, v := range verbs {
		if s, ok := v.(Say); ok {
			spoken = s.Text
		}
	}
	if spoken != "launch at noon" {
		t.Fatalf("expected call text spoken, got %q", spoken)
	}
}

func TestStartForwardWindowDialsDirectly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.humans.Put(roster.Human{ID: 7, Name: "duty officer", Phone: "+447700900007", Priority: 1})
	if _, err := fx.store.Upsert(ctx, schedule.Window{
		ShortName: "launch day",
		Lower:     time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
		Upper:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		ForwardTo: 7,
	}, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	verbs, err := fx.flow.Start(ctx, CallContext{SID: "CA1"}, "+44770", "+441223000000")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(verbs) != 1 {
		t.Fatalf("expected a single dial, got %#v", verbs)
	}
	d, ok := verbs[0].(Dial)
	if !ok || d.Number != "+447700900007" {
		t.Fatalf("expected dial to duty officer, got %#v", verbs[0])
	}
	if d.CallerID != "+441223000000" {
		t.Fatalf("caller id must be the line's own number, got %q", d.CallerID)
	}
}

func TestStartDanglingForwardFallsBackToMenu(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.store.Upsert(ctx, schedule.Window{
		ShortName: "launch day",
		Lower:     time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
		Upper:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		ForwardTo: 99,
	}, 0); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	verbs, err := fx.flow.Start(ctx, CallContext{SID: "CA1"}, "+44770", "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, v := range verbs {
		if _, ok := v.(Dial); ok {
			t.Fatalf("dangling forward target must not be dialed")
		}
	}
}

func TestGatheredDigitOneHangsUp(t *testing.T) {
	fx := newFixture(t)

	verbs, err := fx.flow.Gathered(context.Background(), CallContext{SID: "CA1"}, "1", "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(verbs) != 1 {
		t.Fatalf("expected hangup only, got %#v", verbs)
	}
	if _, ok := verbs[0].(Hangup); !ok {
		t.Fatalf("expected hangup, got %#v", verbs[0])
	}
}

func TestGatheredInvalidDigitReoffersMenu(t *testing.T) {
	fx := newFixture(t)

	verbs, err := fx.flow.Gathered(context.Background(), CallContext{SID: "CA1"}, "9", "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := verbs[0].(Gather); !ok {
		t.Fatalf("expected re-offered gather, got %#v", verbs[0])
	}
	msgs := fx.messages(t, "CA1")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Invalid keypress 9") {
		t.Fatalf("expected invalid keypress logged, got %v", msgs)
	}
}

func TestEscalationExhaustionWithoutDialing(t *testing.T) {
	fx := newFixture(t)
	for i := int64(1); i <= 3; i++ {
		fx.humans.Put(roster.Human{ID: i, Name: "h", Phone: "+4", Priority: 1})
	}

	// Index == roster length: straight to the failure notice, no Dial.
	verbs, err := fx.flow.HumanStep(context.Background(), CallContext{SID: "CA1", Seed: 5, Index: 3}, "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, v := range verbs {
		if _, ok := v.(Dial); ok {
			t.Fatalf("exhausted roster must not dial: %#v", verbs)
		}
	}
	if p, ok := verbs[0].(Play); !ok || !strings.Contains(p.URL, "humans_fail") {
		t.Fatalf("expected failure notice first, got %#v", verbs[0])
	}
	if _, ok := verbs[len(verbs)-1].(Hangup); !ok {
		t.Fatalf("expected trailing hangup, got %#v", verbs)
	}
}

func TestEscalationSeedIndexThreading(t *testing.T) {
	fx := newFixture(t)
	fx.humans.Put(roster.Human{ID: 1, Name: "a", Phone: "+1", Priority: 1})
	fx.humans.Put(roster.Human{ID: 2, Name: "b", Phone: "+2", Priority: 2})
	fx.flow.NewSeed = func() int64 { return 77 }

	verbs, err := fx.flow.Gathered(context.Background(), CallContext{SID: "CA1"}, "2", "+44122")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var dial Dial
	for _, v := range verbs {
		if d, ok := v.(Dial); ok {
			dial = d
		}
	}
	if dial.Number == "" {
		t.Fatalf("expected a dial verb, got %#v", verbs)
	}
	// The callback URLs must carry (seed, index) so the next invocation
	// can rebuild the machine state from scratch.
	if !strings.Contains(dial.Action, "/call/human/77/0/end") {
		t.Fatalf("completion callback must encode seed and index: %q", dial.Action)
	}
	if !strings.Contains(dial.PickupURL, "parent_sid=CA1") {
		t.Fatalf("pickup callback must carry the parent sid: %q", dial.PickupURL)
	}
}

// TestEndToEndEscalationScenario walks a full call: nothing scheduled,
// menu offered, invalid digit, then "2", first human fails, second
// succeeds, status callback emails the transcript.
func TestEndToEndEscalationScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.humans.Put(roster.Human{ID: 1, Name: "A", Phone: "+1", Priority: 1})
	fx.humans.Put(roster.Human{ID: 2, Name: "B", Phone: "+2", Priority: 2})
	fx.flow.NewSeed = func() int64 { return 424242 }

	cc := CallContext{SID: "CA-e2e"}
	line := "+441223000000"

	if _, err := fx.flow.Start(ctx, cc, "+447700900001", line); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := fx.flow.Gathered(ctx, cc, "5", line); err != nil {
		t.Fatalf("invalid digit: %v", err)
	}
	verbs, err := fx.flow.Gathered(ctx, cc, "2", line)
	if err != nil {
		t.Fatalf("digit 2: %v", err)
	}
	var first Dial
	for _, v := range verbs {
		if d, ok := v.(Dial); ok {
			first = d
		}
	}
	if first.Number != "+1" {
		t.Fatalf("priority 1 human must be dialed first, got %q", first.Number)
	}

	// Attempt 0 fails; the machine is rebuilt from (seed, index) as the
	// webhook layer would.
	verbs, err = fx.flow.HumanEnded(ctx, CallContext{SID: cc.SID, Seed: 424242, Index: 0}, "no-answer", line)
	if err != nil {
		t.Fatalf("human ended 0: %v", err)
	}
	var second Dial
	for _, v := range verbs {
		if d, ok := v.(Dial); ok {
			second = d
		}
	}
	if second.Number != "+2" {
		t.Fatalf("expected second human dialed, got %#v", verbs)
	}

	if _, err := fx.flow.HumanEnded(ctx, CallContext{SID: cc.SID, Seed: 424242, Index: 1}, "completed", line); err != nil {
		t.Fatalf("human ended 1: %v", err)
	}
	if err := fx.flow.Ended(ctx, cc, "+447700900001", "95", "completed"); err != nil {
		t.Fatalf("ended: %v", err)
	}

	want := []string{
		"Call started; from +447700900001",
		"Saying 'no launches in the next three days' and offering options",
		"Invalid keypress 5; offering options",
		"Trying humans (pressed 2); seed 424242",
		`Attempt 0: "A" on +1`,
		"Dialing human (attempt 0) failed: no-answer",
		`Attempt 1: "B" on +2`,
		"Dial (attempt 1) completed successfully; hanging up",
		"Call from +447700900001 ended after 95 seconds with status 'completed'",
	}
	got := fx.messages(t, cc.SID)
	if len(got) != len(want) {
		t.Fatalf("log length mismatch:\n got %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log line %d:\n got %q\nwant %q", i, got[i], want[i])
		}
	}

	entries, _ := fx.logRepo.List(ctx, cc.SID)
	for i := 1; i < len(entries); i++ {
		if entries[i].Time.Before(entries[i-1].Time) {
			t.Fatalf("timestamps must be non-decreasing")
		}
	}

	sent := fx.sink.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one summary email, got %d", len(sent))
	}
	if sent[0].Subject != "Call from +447700900001" {
		t.Fatalf("unexpected subject %q", sent[0].Subject)
	}
	for _, line := range want {
		if !strings.Contains(sent[0].Body, line) {
			t.Fatalf("summary body missing %q:\n%s", line, sent[0].Body)
		}
	}
}
