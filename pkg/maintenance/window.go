package maintenance

import (
	"sort"
	"time"
)

// FindIdleWindow returns the earliest window of length d that starts at or
// after now and overlaps none of the batches still running or scheduled.
//
// Batches that ended at or before now are ignored. The remaining batches are
// scanned once in start order while tracking the latest end seen so far, so
// overlapping batches merge into one busy block. If no gap is large enough the
// window opens when the last batch finishes.
func FindIdleWindow(schedule []ScheduledBatch, d time.Duration, now time.Time) Window {
	future := make([]ScheduledBatch, 0, len(schedule))
	for _, b := range schedule {
		if b.End.After(now) {
			future = append(future, b)
		}
	}
	sort.SliceStable(future, func(i, j int) bool {
		return future[i].Start.Before(future[j].Start)
	})

	busyUntil := now
	for _, b := range future {
		if b.Start.Sub(busyUntil) >= d {
			break
		}
		if b.End.After(busyUntil) {
			busyUntil = b.End
		}
	}
	return Window{Start: busyUntil, End: busyUntil.Add(d)}
}

// FindIdleWindow is FindIdleWindow evaluated at the engine clock.
func (e *Engine) FindIdleWindow(schedule []ScheduledBatch, d time.Duration) Window {
	return FindIdleWindow(schedule, d, e.clock.Now())
}
