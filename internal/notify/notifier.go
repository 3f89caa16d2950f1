package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/kafka"
)

// Notifier turns reservation events into holder-facing messages. Delivery is
// a log line; a mail or push gateway would plug in here.
type Notifier struct {
	log *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{log: log.With(zap.String("component", "notifier"))}
}

func (n *Notifier) Notify(ctx context.Context, event kafka.ReservationEvent) error {
	subject, ok := Subject(event)
	if !ok {
		n.log.Debug("no notification for event", zap.String("type", event.Type))
		return nil
	}
	n.log.Info("notify holder",
		zap.String("holder_id", event.HolderID),
		zap.String("reservation_id", event.ReservationID),
		zap.String("subject", subject))
	return nil
}

// Subject renders the message subject for event.
func Subject(event kafka.ReservationEvent) (string, bool) {
	when := fmt.Sprintf("%s %s-%s", event.Date, event.Start, event.End)
	switch event.Type {
	case kafka.EventReservationCreated:
		return "Reservation request received for " + when, true
	case kafka.EventReservationConfirmed:
		return "Reservation confirmed for " + when, true
	case kafka.EventReservationCancelled:
		if event.CancelReason != "" {
			return fmt.Sprintf("Reservation for %s cancelled (%s)", when, event.CancelReason), true
		}
		return "Reservation cancelled for " + when, true
	case kafka.EventReservationCompleted:
		return "Thanks for your visit on " + event.Date.String(), true
	}
	return "", false
}
