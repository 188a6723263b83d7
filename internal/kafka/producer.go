package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// TicketEvent is the message published on every ticket lifecycle change.
// The notification worker turns booked events into confirmation emails.
type TicketEvent struct {
	Type        string    `json:"type"`
	TicketID    string    `json:"ticket_id"`
	TicketCode  string    `json:"ticket_code"`
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	EventDate   string    `json:"event_date"`
	EventTime   string    `json:"event_time"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	UserEmail   string    `json:"user_email"`
	TicketCount int       `json:"ticket_count"`
	TotalPrice  string    `json:"total_price"`
	Payment     string    `json:"payment_method"`
	QRCode      string    `json:"qr_code"`
	BookedAt    time.Time `json:"booked_at"`
}

const (
	EventTypeBooked    = "ticket_booked"
	EventTypeCancelled = "ticket_cancelled"
)

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

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
