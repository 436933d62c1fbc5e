package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPlanLaunchMorningLaunch(t *testing.T) {
	// 09:00 launch: 08:00 on launch day is earlier than launch-3h.
	launch := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	p := PlanLaunch(launch)

	if want := time.Date(2026, 6, 10, 6, 0, 0, 0, time.UTC); !p.ForwardLower.Equal(want) {
		t.Fatalf("forward lower: want %s, got %s", want, p.ForwardLower)
	}
	if want := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC); !p.ForwardUpper.Equal(want) {
		t.Fatalf("forward upper: want %s, got %s", want, p.ForwardUpper)
	}
	if want := time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC); !p.CallLower.Equal(want) {
		t.Fatalf("call lower: want %s, got %s", want, p.CallLower)
	}
}

func TestPlanLaunchAfternoonLaunchUses0800(t *testing.T) {
	launch := time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)
	p := PlanLaunch(launch)

	if want := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC); !p.ForwardLower.Equal(want) {
		t.Fatalf("forward lower: want %s, got %s", want, p.ForwardLower)
	}
	if want := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC); !p.ForwardUpper.Equal(want) {
		t.Fatalf("forward upper: want %s, got %s", want, p.ForwardUpper)
	}
}

func TestPlanLaunchSubHourPrecisionExtendsEnd(t *testing.T) {
	launch := time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)
	p := PlanLaunch(launch)

	// launch-3h = 06:30 truncated to 06:00; launch+3h = 12:30 rounded up.
	if want := time.Date(2026, 6, 10, 6, 0, 0, 0, time.UTC); !p.ForwardLower.Equal(want) {
		t.Fatalf("forward lower: want %s, got %s", want, p.ForwardLower)
	}
	if want := time.Date(2026, 6, 10, 13, 0, 0, 0, time.UTC); !p.ForwardUpper.Equal(want) {
		t.Fatalf("forward upper: want %s, got %s", want, p.ForwardUpper)
	}
}

func TestWizardInsertsAdjacentWindows(t *testing.T) {
	s := NewMemoryStore()
	z := NewWizard(s)
	z.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := z.Schedule(context.Background(), LaunchInput{
		Launch:    time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC),
		ShortName: "flight 12",
		CallText:  "launch at nine",
		ForwardTo: 7,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	ws, _ := s.List(context.Background())
	if len(ws) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(ws))
	}
	if !ws[0].Upper.Equal(ws[1].Lower) {
		t.Fatalf("windows must be adjacent: %s vs %s", ws[0].Upper, ws[1].Lower)
	}
	if ws[0].CallText == "" || ws[0].ForwardTo != 0 {
		t.Fatalf("call window must carry call_text only: %+v", ws[0])
	}
	if ws[1].ForwardTo != 7 || ws[1].CallText != "" {
		t.Fatalf("forward window must carry forward_to only: %+v", ws[1])
	}
}

func TestWizardRejectsPastCombinedStart(t *testing.T) {
	z := NewWizard(NewMemoryStore())
	z.now = func() time.Time { return time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC) }

	// Combined window starts 3 days before launch day, i.e. in the past.
	_, err := z.Schedule(context.Background(), LaunchInput{
		Launch:    time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC),
		ShortName: "late",
		CallText:  "x",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWizardRejectsOccupiedRange(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.InsertPlain(ctx, Window{
		ShortName: "existing",
		Lower:     time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC),
		Upper:     time.Date(2026, 6, 9, 12, 0, 0, 0, time.UTC),
		CallText:  "x",
	}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	z := NewWizard(s)
	z.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := z.Schedule(ctx, LaunchInput{
		Launch:    time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC),
		ShortName: "blocked",
		CallText:  "x",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	ws, _ := s.List(ctx)
	if len(ws) != 1 {
		t.Fatalf("expected nothing written, got %d windows", len(ws))
	}
}

func TestWindowValidateBody(t *testing.T) {
	if err := (Window{CallText: "x"}).ValidateBody(); err != nil {
		t.Fatalf("call_text only should pass: %v", err)
	}
	if err := (Window{ForwardTo: 1}).ValidateBody(); err != nil {
		t.Fatalf("forward_to only should pass: %v", err)
	}
	if err := (Window{}).ValidateBody(); err == nil {
		t.Fatalf("neither set should fail")
	}
	if err := (Window{CallText: "x", ForwardTo: 1}).ValidateBody(); err == nil {
		t.Fatalf("both set should fail")
	}
}
