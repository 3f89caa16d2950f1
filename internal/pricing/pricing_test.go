package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/venuehub/reservations/internal/domain"
)

func TestCalculate(t *testing.T) {
	testCases := []struct {
		name    string
		pricing domain.Pricing
		minutes int
		guests  int
		want    domain.PriceBreakdown
	}{
		{
			name:    "two hours within included guests",
			pricing: domain.Pricing{HourlyRate: 500, IncludedGuests: 10},
			minutes: 120,
			guests:  4,
			want:    domain.PriceBreakdown{DurationMinutes: 120, BasePrice: 1000, Total: 1000},
		},
		{
			name:    "extra guest surcharge",
			pricing: domain.Pricing{HourlyRate: 500, IncludedGuests: 10, ExtraGuestRate: 50},
			minutes: 60,
			guests:  13,
			want:    domain.PriceBreakdown{DurationMinutes: 60, BasePrice: 500, ExtraGuests: 3, Surcharge: 150, Total: 650},
		},
		{
			name:    "half hours and flat fee",
			pricing: domain.Pricing{HourlyRate: 333, ServiceFee: 25},
			minutes: 90,
			guests:  1,
			want:    domain.PriceBreakdown{DurationMinutes: 90, BasePrice: 500, ExtraGuests: 1, Fees: 25, Total: 525},
		},
		{
			name:    "free venue",
			pricing: domain.Pricing{IncludedGuests: 100},
			minutes: 240,
			guests:  20,
			want:    domain.PriceBreakdown{DurationMinutes: 240},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Calculate(tc.pricing, tc.minutes, tc.guests))
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	p := domain.Pricing{HourlyRate: 1999, IncludedGuests: 3, ExtraGuestRate: 75, ServiceFee: 120}

	first := Calculate(p, 150, 7)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, first, Calculate(p, 150, 7))
	}
	assert.Equal(t, domain.Money(4998+300+120), first.Total)
}
