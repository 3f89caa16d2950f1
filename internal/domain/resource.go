package domain

import "time"

// Money is an amount in minor currency units.
type Money int64

// DaySchedule is one weekday entry of a resource's operating schedule.
// Exactly one of Closed, Is24Hours or the Start/End pair applies.
type DaySchedule struct {
	Closed    bool      `json:"closed,omitempty" yaml:"closed"`
	Is24Hours bool      `json:"is24Hours,omitempty" yaml:"is_24_hours"`
	Start     TimeOfDay `json:"start" yaml:"start"`
	End       TimeOfDay `json:"end" yaml:"end"`
}

// WeeklySchedule is indexed by time.Weekday (0 = Sunday).
type WeeklySchedule [7]DaySchedule

type Pricing struct {
	HourlyRate     Money `json:"hourly_rate"`
	IncludedGuests int   `json:"included_guests"`
	ExtraGuestRate Money `json:"extra_guest_rate"`
	ServiceFee     Money `json:"service_fee"`
}

type Resource struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Timezone     string         `json:"timezone"`
	HasSchedule  bool           `json:"has_schedule"`
	Schedule     WeeklySchedule `json:"schedule"`
	MinCapacity  int            `json:"min_capacity"`
	MaxCapacity  int            `json:"max_capacity"`
	MinHours     int            `json:"min_hours"`
	MaxHours     int            `json:"max_hours"`
	Pricing      Pricing        `json:"pricing"`
	BlockedDates []Date         `json:"blocked_dates,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Location resolves the resource time zone, falling back to UTC.
func (r *Resource) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (r *Resource) IsBlocked(d Date) bool {
	for _, b := range r.BlockedDates {
		if b == d {
			return true
		}
	}
	return false
}

// MinDuration is the shortest bookable duration in minutes.
func (r *Resource) MinDuration() int {
	return r.MinHours * 60
}

// MaxDuration is the longest bookable duration in minutes, zero if unbounded.
func (r *Resource) MaxDuration() int {
	return r.MaxHours * 60
}
