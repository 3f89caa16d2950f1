package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/domain"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
)

type ReservationEvent struct {
	Type          string                   `json:"type"`
	ReservationID string                   `json:"reservation_id"`
	ResourceID    string                   `json:"resource_id"`
	HolderID      string                   `json:"holder_id"`
	Date          domain.Date              `json:"date"`
	Start         domain.TimeOfDay         `json:"start"`
	End           domain.TimeOfDay         `json:"end"`
	GuestCount    int                      `json:"guest_count"`
	Total         domain.Money             `json:"total"`
	Status        domain.ReservationStatus `json:"status"`
	CancelReason  domain.CancelReason      `json:"cancel_reason,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *domain.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		ResourceID:    r.ResourceID,
		HolderID:      r.HolderID,
		Date:          r.Date,
		Start:         r.Start,
		End:           r.End,
		GuestCount:    r.GuestCount,
		Total:         r.Price.Total,
		Status:        r.Status,
		CancelReason:  r.CancelReason,
		OccurredAt:    at.UTC(),
	}
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	log     *zap.Logger
}

func NewProducer(brokers []string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		log:     log.With(zap.String("component", "kafka_producer")),
	}
}

// Publish writes payload as JSON to topic. Messages sharing a key land on the
// same partition, so events of one reservation stay ordered.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Debug("published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}
