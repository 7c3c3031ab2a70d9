package events

import (
	"context"
	"fmt"
	"time"

	"vintrek/pkg/kafka"
	"vintrek/pkg/logger"
	"vintrek/pkg/middleware"
	"vintrek/pkg/model"
	"vintrek/pkg/pricing"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	SchemaVersion         = "1"
	Source                = "vintrek-booking-engine"
)

// BookingConfirmed is the payload of EventBookingConfirmed.
type BookingConfirmed struct {
	BookingID     string              `json:"booking_id"`
	TrailID       string              `json:"trail_id,omitempty"`
	Resources     []model.ResourceRef `json:"resources"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	PartySize     int                 `json:"party_size"`
	TotalPrice    pricing.Money       `json:"total_price"`
	Currency      string              `json:"currency"`
	TransactionID string              `json:"transaction_id"`
	ConfirmedAt   time.Time           `json:"confirmed_at"`
}

type Publisher interface {
	BookingConfirmed(ctx context.Context, b *model.Booking) error
}

// KafkaPublisher writes booking events to Kafka, keyed by booking id.
type KafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log}
}

func (p *KafkaPublisher) BookingConfirmed(ctx context.Context, b *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(b.ID).
		WithValue(NewBookingConfirmed(b)).
		WithEventType(EventBookingConfirmed).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", EventBookingConfirmed, err)
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return err
	}

	p.log.WithContext(ctx).Debug("Booking event published",
		"event_id", msg.GetEventID(),
		"booking_id", b.ID,
		"topic", p.producer.Topic(),
	)
	return nil
}

func NewBookingConfirmed(b *model.Booking) BookingConfirmed {
	return BookingConfirmed{
		BookingID:     b.ID,
		TrailID:       b.TrailID,
		Resources:     b.Resources(),
		StartDate:     b.StartDate.Format(time.DateOnly),
		EndDate:       b.EndDate.Format(time.DateOnly),
		PartySize:     b.PartySize,
		TotalPrice:    b.TotalPrice,
		Currency:      b.Currency,
		TransactionID: b.TransactionID,
		ConfirmedAt:   b.CreatedAt,
	}
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) BookingConfirmed(context.Context, *model.Booking) error { return nil }
