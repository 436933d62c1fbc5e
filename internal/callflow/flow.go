package callflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"launch-line/internal/calllog"
	"launch-line/internal/notify"
	"launch-line/internal/roster"
	"launch-line/internal/schedule"
)

// Audio resource names served under /static/audio.
const (
	audioGreeting      = "greeting.wav"
	audioNoneThreeDays = "none_three_days.wav"
	audioRobotIntro    = "robot_intro.wav"
	audioOptions       = "options.wav"
	audioForwarding    = "forwarding.wav"
	audioHumansFail    = "humans_fail.wav"
)

const gatherTimeoutSeconds = 30

// Flow drives one call through greeting, options and escalation. Every
// method handles exactly one webhook invocation: it reads nothing but its
// arguments and the stores, logs each transition before emitting it, and
// returns the verbs for the provider to execute next.
type Flow struct {
	Windows *schedule.Resolver
	Humans  *roster.Service
	Log     *calllog.Service
	Sink    notify.Sink
	Links   Links

	// NewSeed mints the 32-bit escalation seed; tests pin it.
	NewSeed func() int64
	Now     func() time.Time

	Logger *slog.Logger
}

func New(windows *schedule.Resolver, humans *roster.Service, log *calllog.Service, sink notify.Sink, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		Windows: windows,
		Humans:  humans,
		Log:     log,
		Sink:    sink,
		Links:   PathLinks{},
		NewSeed: func() int64 { return rand.Int63() & 0xffffffff },
		Now:     time.Now,
		Logger:  logger,
	}
}

// Start handles the inbound call event. A window with a forward target
// dials it straight away; otherwise the caller hears the greeting, the
// active announcement (or the nothing-scheduled notice) and the options
// menu.
func (f *Flow) Start(ctx context.Context, cc CallContext, from, to string) ([]Verb, error) {
	if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Call started; from %s", from)); err != nil {
		return nil, err
	}

	active, err := f.Windows.ActiveAt(ctx, f.Now().UTC())
	if err != nil {
		// Includes the integrity fault; never degrade it to a guess.
		return nil, err
	}

	if active != nil && active.ForwardTo != 0 {
		human, err := f.Humans.Get(ctx, active.ForwardTo)
		switch {
		case errors.Is(err, roster.ErrNotFound):
			// Soft reference: the human was deleted after the window was
			// written. Degrade to the announcement path.
			if err := f.Log.Append(ctx, cc.SID, "Forward target no longer exists; offering options instead"); err != nil {
				return nil, err
			}
			active = nil
		case err != nil:
			return nil, err
		default:
			msg := fmt.Sprintf("Forwarding call straight to %q on %s", human.Name, human.Phone)
			if err := f.Log.Append(ctx, cc.SID, msg); err != nil {
				return nil, err
			}
			return []Verb{Dial{
				Number:    human.Phone,
				CallerID:  to,
				Action:    f.Links.ForwardEnded(),
				PickupURL: f.Links.ForwardPickup(cc.SID),
			}}, nil
		}
	}

	verbs := []Verb{
		Play{URL: f.Links.Audio(audioGreeting)},
		Pause{Seconds: 1},
	}
	if active == nil {
		if err := f.Log.Append(ctx, cc.SID, "Saying 'no launches in the next three days' and offering options"); err != nil {
			return nil, err
		}
		verbs = append(verbs, Play{URL: f.Links.Audio(audioNoneThreeDays)})
	} else {
		if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Introducing robot and saying %q", active.CallText)); err != nil {
			return nil, err
		}
		verbs = append(verbs,
			Play{URL: f.Links.Audio(audioRobotIntro)},
			Pause{Seconds: 1},
			Say{Text: active.CallText},
		)
	}
	verbs = append(verbs, Pause{Seconds: 1})
	return append(verbs, f.options()...), nil
}

// options emits the single-digit menu gather. The trailing redirect runs
// when the gather times out with no keypress.
func (f *Flow) options() []Verb {
	return []Verb{
		Gather{
			Action:    f.Links.Gathered(),
			Timeout:   gatherTimeoutSeconds,
			NumDigits: 1,
			Prompt:    []Verb{Play{URL: f.Links.Audio(audioOptions)}},
		},
		Redirect{URL: f.Links.GatherFailed()},
	}
}

// Gathered handles the menu keypress. "1" ends the call, "2" starts the
// escalation machine with a fresh seed, anything else re-offers the menu.
// There is no retry cap on the re-prompt.
func (f *Flow) Gathered(ctx context.Context, cc CallContext, digit, to string) ([]Verb, error) {
	switch digit {
	case "1":
		if err := f.Log.Append(ctx, cc.SID, "Hanging up (pressed 1)"); err != nil {
			return nil, err
		}
		return []Verb{Hangup{}}, nil

	case "2":
		seed := f.NewSeed()
		if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Trying humans (pressed 2); seed %d", seed)); err != nil {
			return nil, err
		}
		verbs := []Verb{
			Play{URL: f.Links.Audio(audioForwarding)},
			Pause{Seconds: 1},
		}
		dial, err := f.dialHuman(ctx, CallContext{SID: cc.SID, Seed: seed, Index: 0}, to)
		if err != nil {
			return nil, err
		}
		return append(verbs, dial...), nil

	default:
		if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Invalid keypress %s; offering options", digit)); err != nil {
			return nil, err
		}
		return f.options(), nil
	}
}

// GatherFailed handles the no-keypress timeout.
func (f *Flow) GatherFailed(ctx context.Context, cc CallContext) ([]Verb, error) {
	if err := f.Log.Append(ctx, cc.SID, "Gather failed - no keys pressed; hanging up"); err != nil {
		return nil, err
	}
	return []Verb{Hangup{}}, nil
}

// HumanStep handles an explicit redirect into Escalating(seed, index).
func (f *Flow) HumanStep(ctx context.Context, cc CallContext, to string) ([]Verb, error) {
	return f.dialHuman(ctx, cc, to)
}

// dialHuman dials roster[index] for the context's seed, or plays the
// exhaustion notice when the roster has run out.
func (f *Flow) dialHuman(ctx context.Context, cc CallContext, to string) ([]Verb, error) {
	ranked, err := f.Humans.Ordered(ctx, cc.Seed)
	if err != nil {
		return nil, err
	}

	if _, step := EnterEscalation(len(ranked), cc.Index); step == StepExhausted {
		if err := f.Log.Append(ctx, cc.SID, "Humans exhausted: apologising and hanging up"); err != nil {
			return nil, err
		}
		return []Verb{
			Play{URL: f.Links.Audio(audioHumansFail)},
			Pause{Seconds: 1},
			Hangup{},
		}, nil
	}

	target := ranked[cc.Index]
	msg := fmt.Sprintf("Attempt %d: %q on %s", cc.Index, target.Name, target.Phone)
	if err := f.Log.Append(ctx, cc.SID, msg); err != nil {
		return nil, err
	}

	// CallerID is our own number so people know why they are being
	// called at 7am before they pick up.
	return []Verb{Dial{
		Number:    target.Phone,
		CallerID:  to,
		Action:    f.Links.HumanEnded(cc.Seed, cc.Index),
		PickupURL: f.Links.HumanPickup(cc.Seed, cc.Index, cc.SID),
	}}, nil
}

// HumanPickup runs on the dialed party before the legs are bridged; it
// only logs.
func (f *Flow) HumanPickup(ctx context.Context, cc CallContext) ([]Verb, error) {
	if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Human (attempt %d) picked up", cc.Index)); err != nil {
		return nil, err
	}
	return nil, nil
}

// HumanEnded handles the dial completion callback for attempt Index.
func (f *Flow) HumanEnded(ctx context.Context, cc CallContext, status, to string) ([]Verb, error) {
	completed := status == "completed"
	if completed {
		if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Dial (attempt %d) completed successfully; hanging up", cc.Index)); err != nil {
			return nil, err
		}
		return []Verb{Hangup{}}, nil
	}

	if err := f.Log.Append(ctx, cc.SID, fmt.Sprintf("Dialing human (attempt %d) failed: %s", cc.Index, status)); err != nil {
		return nil, err
	}
	return f.dialHuman(ctx, CallContext{SID: cc.SID, Seed: cc.Seed, Index: cc.Index + 1}, to)
}

// ForwardPickup logs the direct-forward pickup.
func (f *Flow) ForwardPickup(ctx context.Context, cc CallContext) ([]Verb, error) {
	if err := f.Log.Append(ctx, cc.SID, "Forwarded call picked up"); err != nil {
		return nil, err
	}
	return nil, nil
}

// ForwardEnded handles the direct-forward completion; the call ends
// regardless of the outcome.
func (f *Flow) ForwardEnded(ctx context.Context, cc CallContext, status string) ([]Verb, error) {
	var msg string
	if status == "completed" {
		msg = "Forwarded call completed successfully. Hanging up."
	} else {
		msg = fmt.Sprintf("Forwarded call failed: %s. Hanging up.", status)
	}
	if err := f.Log.Append(ctx, cc.SID, msg); err != nil {
		return nil, err
	}
	return []Verb{Hangup{}}, nil
}

// Ended handles the final status callback: it writes the closing log line
// and sends the full transcript to the notification sink. The send is
// best-effort; a failure is logged and swallowed.
func (f *Flow) Ended(ctx context.Context, cc CallContext, from, duration, status string) error {
	msg := fmt.Sprintf("Call from %s ended after %s seconds with status '%s'", from, duration, status)
	if err := f.Log.Append(ctx, cc.SID, msg); err != nil {
		return err
	}

	transcript, err := f.Log.Transcript(ctx, cc.SID)
	if err != nil {
		return err
	}
	if err := f.Sink.Send(ctx, fmt.Sprintf("Call from %s", from), transcript); err != nil {
		f.Logger.Warn("call summary notification failed", "sid", cc.SID, "err", err)
	}
	return nil
}
