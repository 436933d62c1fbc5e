package schedule

import (
	"context"
	"fmt"
	"time"
)

// LaunchPlan is the pair of adjacent windows derived from a single launch
// instant: a multi-day spoken-announcement window followed by a forwarding
// window around the launch itself. The two ranges share a bound, so they
// never overlap and can be inserted without a conflict scan.
type LaunchPlan struct {
	Launch time.Time

	CallLower    time.Time // call window: [CallLower, ForwardLower)
	ForwardLower time.Time // forward window: [ForwardLower, ForwardUpper)
	ForwardUpper time.Time
}

const (
	forwardLeadTime = 3 * time.Hour
	forwardTailTime = 3 * time.Hour
	callLeadDays    = 3
	morningHour     = 8
)

// PlanLaunch derives the window bounds for a launch instant.
//
// The forward window opens at whichever is earlier: three hours before
// launch, or 08:00 on launch day, truncated to the hour. It closes three
// hours after launch, rounded up to the next hour when the launch itself
// is not on an hour boundary. The call window opens at midnight three
// days before launch day and closes where the forward window opens.
func PlanLaunch(launch time.Time) LaunchPlan {
	launch = launch.UTC()

	morning := time.Date(launch.Year(), launch.Month(), launch.Day(), morningHour, 0, 0, 0, time.UTC)
	fwLower := launch.Add(-forwardLeadTime)
	if morning.Before(fwLower) {
		fwLower = morning
	}
	fwLower = fwLower.Truncate(time.Hour)

	fwUpper := launch.Add(forwardTailTime)
	if !fwUpper.Truncate(time.Hour).Equal(fwUpper) {
		fwUpper = fwUpper.Truncate(time.Hour).Add(time.Hour)
	}

	midnight := time.Date(launch.Year(), launch.Month(), launch.Day(), 0, 0, 0, 0, time.UTC)
	callLower := midnight.AddDate(0, 0, -callLeadDays)

	return LaunchPlan{
		Launch:       launch,
		CallLower:    callLower,
		ForwardLower: fwLower,
		ForwardUpper: fwUpper,
	}
}

// LaunchInput is what the wizard needs beyond the instant itself.
type LaunchInput struct {
	Launch    time.Time
	ShortName string

	WebShortText string
	WebLongText  string

	// CallText is spoken during the call window.
	CallText string
	// ForwardTo is dialed directly during the forward window.
	ForwardTo int64
}

// Wizard turns one launch instant into the two persisted windows.
type Wizard struct {
	store Store
	now   func() time.Time
}

func NewWizard(store Store) *Wizard {
	return &Wizard{store: store, now: time.Now}
}

// Schedule validates the derived combined range and inserts both windows.
// The combined range must start in the future and must not overlap any
// existing window; both checks fail as scheduling errors before anything
// is written.
func (z *Wizard) Schedule(ctx context.Context, in LaunchInput) (LaunchPlan, error) {
	plan := PlanLaunch(in.Launch)

	if plan.CallLower.Before(z.now().UTC()) {
		return LaunchPlan{}, fmt.Errorf("%w: combined window starts in the past (%s)",
			ErrValidation, plan.CallLower.Format(time.RFC3339))
	}
	clear, err := z.store.RangeClear(ctx, plan.CallLower, plan.ForwardUpper)
	if err != nil {
		return LaunchPlan{}, err
	}
	if !clear {
		return LaunchPlan{}, fmt.Errorf("%w: combined window [%s, %s) overlaps an existing window",
			ErrValidation, plan.CallLower.Format(time.RFC3339), plan.ForwardUpper.Format(time.RFC3339))
	}

	callWindow := Window{
		ShortName:    in.ShortName,
		Lower:        plan.CallLower,
		Upper:        plan.ForwardLower,
		WebShortText: in.WebShortText,
		WebLongText:  in.WebLongText,
		CallText:     in.CallText,
	}
	forwardWindow := Window{
		ShortName:    in.ShortName + " (launch day)",
		Lower:        plan.ForwardLower,
		Upper:        plan.ForwardUpper,
		WebShortText: in.WebShortText,
		WebLongText:  in.WebLongText,
		ForwardTo:    in.ForwardTo,
	}

	if _, err := z.store.InsertPlain(ctx, callWindow); err != nil {
		return LaunchPlan{}, err
	}
	if _, err := z.store.InsertPlain(ctx, forwardWindow); err != nil {
		return LaunchPlan{}, err
	}
	return plan, nil
}
