// Package calendar holds the pure interval arithmetic of the engine: the
// operating window of a date, slot enumeration and the availability
// partition. Nothing here touches storage.
package calendar

import "github.com/venuehub/reservations/internal/domain"

// ResolveWindow returns the operating window of res on date. ok is false when
// the resource publishes no schedule, in which case the date is unbookable.
func ResolveWindow(res *domain.Resource, date domain.Date) (w domain.Window, ok bool) {
	if res == nil || !res.HasSchedule {
		return domain.Window{}, false
	}

	day := res.Schedule[date.Weekday()]
	switch {
	case day.Closed:
		return domain.Window{Closed: true}, true
	case day.Is24Hours:
		return domain.Window{
			TimeRange: domain.TimeRange{Start: 0, End: domain.MinutesPerDay},
			Is24Hours: true,
		}, true
	case day.End <= day.Start:
		// A degenerate entry cannot take bookings.
		return domain.Window{Closed: true}, true
	default:
		return domain.Window{TimeRange: domain.TimeRange{Start: day.Start, End: day.End}}, true
	}
}
