package schedule

import "sort"

// conflictPlan is the computed outcome of resolving one incoming range
// against the overlapping windows already persisted. Both store
// implementations apply the same plan so their semantics cannot drift.
type conflictPlan struct {
	deleteIDs   []int64
	truncations []truncation
	actions     []ConflictAction
}

type truncation struct {
	id     int64
	window Window // window with the adjusted bound already applied
}

// planConflicts resolves the incoming range [w.Lower, w.Upper) against the
// given overlapping windows (the window being updated must already be
// excluded by the caller).
//
// - fully contained windows are deleted
// - windows starting before the new lower bound get their upper bound
//   pulled back to it (end_earlier)
// - windows starting inside the new range get their lower bound pushed
//   out to the new upper bound (start_later)
//
// Actions are sorted by the resulting range so conflict reports read in
// chronological order regardless of store iteration order.
func planConflicts(overlapping []Window, w Window) conflictPlan {
	var plan conflictPlan

	type ordered struct {
		at     Window
		action ConflictAction
	}
	var out []ordered

	for _, ex := range overlapping {
		if !ex.Overlaps(w.Lower, w.Upper) {
			continue
		}
		switch {
		case ex.ContainedIn(w.Lower, w.Upper):
			plan.deleteIDs = append(plan.deleteIDs, ex.ID)
			out = append(out, ordered{
				at:     ex,
				action: ConflictAction{Kind: ConflictDeleted, Name: ex.ShortName},
			})

		case ex.Lower.Before(w.Lower):
			upper := w.Lower
			adjusted := ex
			adjusted.Upper = upper
			plan.truncations = append(plan.truncations, truncation{id: ex.ID, window: adjusted})
			out = append(out, ordered{
				at:     adjusted,
				action: ConflictAction{Kind: ConflictEndEarlier, Name: ex.ShortName, NewUpper: &upper},
			})

		default:
			lower := w.Upper
			adjusted := ex
			adjusted.Lower = lower
			plan.truncations = append(plan.truncations, truncation{id: ex.ID, window: adjusted})
			out = append(out, ordered{
				at:     adjusted,
				action: ConflictAction{Kind: ConflictStartLater, Name: ex.ShortName, NewLower: &lower},
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].at.Lower.Equal(out[j].at.Lower) {
			return out[i].at.Lower.Before(out[j].at.Lower)
		}
		return out[i].at.Upper.Before(out[j].at.Upper)
	})
	for _, o := range out {
		plan.actions = append(plan.actions, o.action)
	}
	return plan
}
