package domain

import "errors"

var (
	ErrPastDate            = errors.New("date is in the past")
	ErrUnavailableDate     = errors.New("date is not available")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidCapacity     = errors.New("invalid guest count")
	ErrSlotConflict        = errors.New("slot is no longer available")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrLifecycleViolation  = errors.New("illegal reservation transition")
	ErrStorage             = errors.New("storage failure")
	ErrInvalidInput        = errors.New("invalid input")
)

// Error codes exposed to API callers.
const (
	CodePastDate            = "PAST_DATE"
	CodeUnavailableDate     = "UNAVAILABLE_DATE"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeInvalidCapacity     = "INVALID_CAPACITY"
	CodeSlotConflict        = "SLOT_CONFLICT"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeReservationNotFound = "RESERVATION_NOT_FOUND"
	CodeLifecycleViolation  = "LIFECYCLE_VIOLATION"
	CodeStorage             = "STORAGE_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL"
)

var codes = []struct {
	err  error
	code string
}{
	// Storage first: a wrapped driver error may itself carry a domain sentinel.
	{ErrStorage, CodeStorage},
	{ErrPastDate, CodePastDate},
	{ErrUnavailableDate, CodeUnavailableDate},
	{ErrInvalidDuration, CodeInvalidDuration},
	{ErrInvalidCapacity, CodeInvalidCapacity},
	{ErrSlotConflict, CodeSlotConflict},
	{ErrResourceNotFound, CodeResourceNotFound},
	{ErrReservationNotFound, CodeReservationNotFound},
	{ErrLifecycleViolation, CodeLifecycleViolation},
	{ErrInvalidInput, CodeInvalidInput},
}

// Code maps an error chain onto the taxonomy code, or CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsUserError reports whether err is caused by caller input rather than by
// the system or an integration bug.
func IsUserError(err error) bool {
	switch Code(err) {
	case CodePastDate, CodeUnavailableDate, CodeInvalidDuration, CodeInvalidCapacity,
		CodeSlotConflict, CodeResourceNotFound, CodeReservationNotFound, CodeInvalidInput:
		return true
	}
	return false
}
