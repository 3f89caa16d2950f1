package calendar

import (
	"slices"

	"github.com/venuehub/reservations/internal/domain"
)

// Aggregate partitions the operating window of res on date into available
// and booked ranges. Only active reservations on date are considered.
//
// A blocked date short-circuits everything else, including a closed
// schedule. Blocking is whole-day only.
func Aggregate(res *domain.Resource, date domain.Date, reservations []domain.Reservation) domain.Snapshot {
	snap := domain.Snapshot{
		Date:      date,
		Available: []domain.TimeRange{},
		Booked:    []domain.TimeRange{},
	}

	if res.IsBlocked(date) {
		snap.Status = domain.DayBlocked
		return snap
	}

	window, ok := ResolveWindow(res, date)
	if !ok || window.Closed {
		snap.Window = domain.Window{Closed: true}
		snap.Status = domain.DayClosed
		return snap
	}
	snap.Window = window

	busy := make([]domain.TimeRange, 0, len(reservations))
	for _, r := range reservations {
		if r.Date != date || !r.Status.Active() || r.ResourceID != res.ID {
			continue
		}
		busy = append(busy, r.Range())
	}
	slices.SortFunc(busy, func(a, b domain.TimeRange) int {
		if a.Start != b.Start {
			return int(a.Start - b.Start)
		}
		return int(a.End - b.End)
	})

	cursor := window.Start
	overlapping := 0
	for _, b := range busy {
		if !b.Overlaps(window.TimeRange) {
			continue
		}
		overlapping++
		start := max(b.Start, cursor)
		end := min(b.End, window.End)
		if start > cursor {
			snap.Available = append(snap.Available, domain.TimeRange{Start: cursor, End: start})
		}
		if end > start {
			snap.Booked = append(snap.Booked, domain.TimeRange{Start: start, End: end})
		}
		cursor = max(cursor, end)
	}
	if cursor < window.End {
		snap.Available = append(snap.Available, domain.TimeRange{Start: cursor, End: window.End})
	}

	switch {
	case overlapping == 0:
		snap.Status = domain.DayAvailable
	case len(snap.Available) == 0:
		snap.Status = domain.DayFullyBooked
	default:
		snap.Status = domain.DayPartiallyBooked
	}
	return snap
}

// Coalesce merges touching or overlapping ranges. It returns a new slice and
// leaves the input untouched.
func Coalesce(ranges []domain.TimeRange) []domain.TimeRange {
	if len(ranges) == 0 {
		return []domain.TimeRange{}
	}
	sorted := slices.Clone(ranges)
	slices.SortFunc(sorted, func(a, b domain.TimeRange) int { return int(a.Start - b.Start) })

	out := []domain.TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Display returns a copy of snap with adjacent ranges merged for
// presentation.
func Display(snap domain.Snapshot) domain.Snapshot {
	snap.Available = Coalesce(snap.Available)
	snap.Booked = Coalesce(snap.Booked)
	return snap
}
