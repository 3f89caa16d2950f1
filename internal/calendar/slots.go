package calendar

import (
	"iter"

	"github.com/venuehub/reservations/internal/domain"
)

// Granularity is the default slot step in minutes.
const Granularity = 30

// Slots yields step-aligned times from max(window.Start, floor) while they are
// strictly before window.End. The sequence can be ranged over repeatedly.
func Slots(window domain.TimeRange, step int, floor domain.TimeOfDay) iter.Seq[domain.TimeOfDay] {
	return func(yield func(domain.TimeOfDay) bool) {
		if step <= 0 {
			return
		}
		t := max(window.Start, floor)
		t = alignUp(t, window.Start, step)
		for ; t < window.End; t += domain.TimeOfDay(step) {
			if !yield(t) {
				return
			}
		}
	}
}

// EndSlots yields end candidates for a reservation starting at start: values
// after start, up to and including limit, whose duration lies in
// [minDur, maxDur]. maxDur <= 0 means no upper bound; minDur below one step
// is raised to one step.
func EndSlots(start, limit domain.TimeOfDay, step, minDur, maxDur int) iter.Seq[domain.TimeOfDay] {
	return func(yield func(domain.TimeOfDay) bool) {
		if step <= 0 {
			return
		}
		minDur = max(minDur, step)
		for t := start + domain.TimeOfDay(step); t <= limit; t += domain.TimeOfDay(step) {
			d := int(t - start)
			if d < minDur {
				continue
			}
			if maxDur > 0 && d > maxDur {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// alignUp moves t forward onto the grid anchored at origin.
func alignUp(t, origin domain.TimeOfDay, step int) domain.TimeOfDay {
	off := int(t - origin)
	if off <= 0 {
		return origin
	}
	if rem := off % step; rem != 0 {
		off += step - rem
	}
	return origin + domain.TimeOfDay(off)
}
