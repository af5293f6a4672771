package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventSlotDeleted      = "slot_deleted"
	EventMoveInReminder   = "movein_reminder"
)

// BookingEvent is the wire format for slot and booking state changes. The
// notifications worker consumes these to trigger tenant/landlord email.
type BookingEvent struct {
	Type          string    `json:"type"`
	Reference     string    `json:"reference,omitempty"`
	SlotID        int64     `json:"slot_id"`
	ListingID     int64     `json:"listing_id"`
	TenantContact string    `json:"tenant_contact,omitempty"`
	Status        string    `json:"status,omitempty"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
