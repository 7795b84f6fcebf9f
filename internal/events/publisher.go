// Package events publishes reservation lifecycle events to a RabbitMQ topic
// exchange. The routing key is the event type, e.g. "reservation.cancelled".
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/codr1/CourtReserve/internal/booking"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// NewPublisher dials url and declares a durable topic exchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishJSON sends v as a persistent JSON message with routing key key.
func (p *Publisher) PublishJSON(ctx context.Context, key, messageID string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

type reservationPayload struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	CourtID    int64  `json:"courtId"`
	CourtName  string `json:"courtName"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	TotalPrice string `json:"totalPrice"`
	Status     string `json:"status"`
}

type eventPayload struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	OccurredAt  time.Time          `json:"occurredAt"`
	Reason      string             `json:"reason,omitempty"`
	Reservation reservationPayload `json:"reservation"`
}

// Notify publishes event, so a Publisher can serve as a booking.Notifier.
func (p *Publisher) Notify(ctx context.Context, event booking.Event) error {
	if p == nil || p.ch == nil {
		return nil
	}
	res := event.Reservation
	payload := eventPayload{
		ID:         event.ID,
		Type:       string(event.Type),
		OccurredAt: event.OccurredAt,
		Reason:     event.Reason,
		Reservation: reservationPayload{
			ID:         res.ID,
			UserID:     res.UserID,
			CourtID:    res.CourtID,
			CourtName:  event.CourtName,
			Date:       res.Date,
			StartTime:  res.StartTime,
			EndTime:    res.EndTime,
			TotalPrice: fmt.Sprintf("%d.%02d", res.TotalPriceCents/100, res.TotalPriceCents%100),
			Status:     string(res.Status),
		},
	}
	if err := p.PublishJSON(ctx, string(event.Type), event.ID, payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
