package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// ActiveStatuses hold their interval against other reservations.
var ActiveStatuses = []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}

func (s ReservationStatus) Active() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusCompleted
}

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionConfirm, ActionReject, ActionCancel:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
}

var transitions = map[ReservationStatus]map[Action]ReservationStatus{
	ReservationStatusPending: {
		ActionConfirm: ReservationStatusConfirmed,
		ActionReject:  ReservationStatusCancelled,
		ActionCancel:  ReservationStatusCancelled,
	},
	ReservationStatusConfirmed: {
		ActionCancel:   ReservationStatusCancelled,
		ActionComplete: ReservationStatusCompleted,
	},
}

// Next applies a to s. Time-based guards (cut-off, elapsed) are the
// caller's concern.
func (s ReservationStatus) Next(a Action) (ReservationStatus, error) {
	if next, ok := transitions[s][a]; ok {
		return next, nil
	}
	return "", fmt.Errorf("%w: cannot %s a %s reservation", ErrLifecycleViolation, a, s)
}

type CancelReason string

const (
	CancelReasonRejected  CancelReason = "rejected"
	CancelReasonWithdrawn CancelReason = "withdrawn"
	CancelReasonCancelled CancelReason = "cancelled"
	CancelReasonExpired   CancelReason = "expired"
)

type PriceBreakdown struct {
	DurationMinutes int   `json:"duration_minutes"`
	BasePrice       Money `json:"base_price"`
	ExtraGuests     int   `json:"extra_guests"`
	Surcharge       Money `json:"extra_guest_surcharge"`
	Fees            Money `json:"fees"`
	Total           Money `json:"total"`
}

type Reservation struct {
	ID           string            `json:"id"`
	ResourceID   string            `json:"resource_id"`
	HolderID     string            `json:"holder_id"`
	Date         Date              `json:"date"`
	Start        TimeOfDay         `json:"start"`
	End          TimeOfDay         `json:"end"`
	GuestCount   int               `json:"guest_count"`
	Price        PriceBreakdown    `json:"price"`
	Status       ReservationStatus `json:"status"`
	CancelReason CancelReason      `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (r *Reservation) Range() TimeRange {
	return TimeRange{Start: r.Start, End: r.End}
}

// StartsAt and EndsAt place the reservation on the timeline of loc.
func (r *Reservation) StartsAt(loc *time.Location) time.Time {
	return r.Date.At(r.Start, loc)
}

func (r *Reservation) EndsAt(loc *time.Location) time.Time {
	return r.Date.At(r.End, loc)
}
