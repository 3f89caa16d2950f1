// Package pricing computes reservation price breakdowns in integer minor
// units.
package pricing

import "github.com/venuehub/reservations/internal/domain"

// Calculate prices a reservation of the given length and guest count.
// The base price is prorated per minute and rounded half up to the minor
// unit, so 90 minutes at 333 costs 500.
func Calculate(p domain.Pricing, durationMinutes, guests int) domain.PriceBreakdown {
	base := prorate(p.HourlyRate, durationMinutes)

	extra := max(0, guests-p.IncludedGuests)
	surcharge := domain.Money(extra) * p.ExtraGuestRate

	return domain.PriceBreakdown{
		DurationMinutes: durationMinutes,
		BasePrice:       base,
		ExtraGuests:     extra,
		Surcharge:       surcharge,
		Fees:            p.ServiceFee,
		Total:           base + surcharge + p.ServiceFee,
	}
}

func prorate(hourly domain.Money, minutes int) domain.Money {
	if minutes <= 0 || hourly <= 0 {
		return 0
	}
	return (hourly*domain.Money(minutes) + 30) / 60
}
