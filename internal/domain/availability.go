package domain

import "fmt"

// TimeRange is a half-open [Start, End) interval within one day.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (r TimeRange) Minutes() int {
	return int(r.End - r.Start)
}

func (r TimeRange) Empty() bool {
	return r.End <= r.Start
}

func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Contains reports whether o lies entirely inside r.
func (r TimeRange) Contains(o TimeRange) bool {
	return r.Start <= o.Start && o.End <= r.End
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Window is the bookable range of a resource on one date.
type Window struct {
	TimeRange
	Closed    bool `json:"closed,omitempty"`
	Is24Hours bool `json:"is24Hours,omitempty"`
}

// DayStatus classifies a date in an availability snapshot.
type DayStatus int

const (
	DayAvailable DayStatus = iota
	DayPartiallyBooked
	DayFullyBooked
	DayClosed
	DayBlocked
)

func (s DayStatus) String() string {
	switch s {
	case DayAvailable:
		return "AVAILABLE"
	case DayPartiallyBooked:
		return "PARTIALLY_BOOKED"
	case DayFullyBooked:
		return "FULLY_BOOKED"
	case DayClosed:
		return "CLOSED"
	case DayBlocked:
		return "BLOCKED"
	}
	return fmt.Sprintf("DayStatus(%d)", int(s))
}

// Bookable reports whether any part of the day can still be reserved.
func (s DayStatus) Bookable() bool {
	switch s {
	case DayAvailable, DayPartiallyBooked:
		return true
	case DayFullyBooked, DayClosed, DayBlocked:
		return false
	}
	return false
}

func (s DayStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the derived available/booked partition of one date.
type Snapshot struct {
	Date      Date        `json:"date"`
	Status    DayStatus   `json:"status"`
	Window    Window      `json:"window"`
	Available []TimeRange `json:"available"`
	Booked    []TimeRange `json:"booked"`
}

// RangeContaining returns the available range that fully contains r.
func (s *Snapshot) RangeContaining(r TimeRange) (TimeRange, bool) {
	for _, a := range s.Available {
		if a.Contains(r) {
			return a, true
		}
	}
	return TimeRange{}, false
}
