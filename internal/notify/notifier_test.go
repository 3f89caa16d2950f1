package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/kafka"
)

func testEvent(eventType string) kafka.ReservationEvent {
	return kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: "r-1",
		HolderID:      "guest-1",
		Date:          domain.NewDate(2026, time.October, 19),
		Start:         domain.NewTimeOfDay(10, 0),
		End:           domain.NewTimeOfDay(12, 0),
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name   string
		event  kafka.ReservationEvent
		want   string
		wantOK bool
	}{
		{"created", testEvent(kafka.EventReservationCreated), "Reservation request received for 2026-10-19 10:00-12:00", true},
		{"confirmed", testEvent(kafka.EventReservationConfirmed), "Reservation confirmed for 2026-10-19 10:00-12:00", true},
		{"completed", testEvent(kafka.EventReservationCompleted), "Thanks for your visit on 2026-10-19", true},
		{"unknown", testEvent("reservation.archived"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Subject(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	cancelled := testEvent(kafka.EventReservationCancelled)
	cancelled.CancelReason = domain.CancelReasonExpired
	got, ok := Subject(cancelled)
	assert.True(t, ok)
	assert.Equal(t, "Reservation for 2026-10-19 10:00-12:00 cancelled (expired)", got)
}

func TestNotifier_Notify(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), testEvent(kafka.EventReservationConfirmed)))
	require.NoError(t, n.Notify(context.Background(), testEvent("reservation.archived")))

	entries := logs.FilterMessage("notify holder").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "guest-1", entries[0].ContextMap()["holder_id"])
}
