package fleetops

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

const EventNoCourierAvailable = "dispatch.no_courier_available"

var _ ports.FleetOps = (*KafkaPublisher)(nil)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NoCourierAvailableMessage is the JSON value written for an unmatched delivery.
type NoCourierAvailableMessage struct {
	Event         string    `json:"event"`
	DeliveryID    string    `json:"delivery_id"`
	PickupLat     float64   `json:"pickup_lat"`
	PickupLon     float64   `json:"pickup_lon"`
	MaxRadiusKm   float64   `json:"max_radius_km"`
	DispatchRound int       `json:"dispatch_round"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaPublisher escalates dispatch failures to the fleet operations topic.
// Messages are keyed by delivery id so one delivery's events stay ordered.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewWriter builds the writer used in production.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

func (p *KafkaPublisher) NoCourierAvailable(ctx context.Context, event ports.NoCourierAvailableEvent) error {
	value, err := json.Marshal(NoCourierAvailableMessage{
		Event:         EventNoCourierAvailable,
		DeliveryID:    event.DeliveryID.String(),
		PickupLat:     event.Pickup.Lat(),
		PickupLon:     event.Pickup.Lon(),
		MaxRadiusKm:   event.MaxRadiusKm,
		DispatchRound: event.DispatchRound,
		OccurredAt:    event.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal no-courier event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DeliveryID.String()),
		Value: value,
		Time:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write no-courier event for delivery %s: %w", event.DeliveryID, err)
	}
	return nil
}
