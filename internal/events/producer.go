package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Topic carrying every order lifecycle event.
const TopicOrderEvents = "meatshop.order-events"

// Envelope wraps every published event so consumers can dispatch on type
// without decoding the payload.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// Producer publishes order lifecycle events to Kafka. Publishing is fire and
// forget: a broker outage is logged, never surfaced to the customer.
type Producer struct {
	writer      *kafkago.Writer
	serviceName string
}

func NewProducer(brokers []string, serviceName string) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        TopicOrderEvents,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
			Async:        true,
		},
		serviceName: serviceName,
	}
}

// Publish wraps the payload in an envelope and writes it keyed by the order
// number, so events for one order stay in one partition.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("events: failed to marshal %s payload: %v", eventType, err)
		return
	}
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   p.serviceName,
		Payload:    body,
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("events: failed to marshal envelope: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		log.Printf("events: failed to publish %s for %s: %v", eventType, key, err)
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
