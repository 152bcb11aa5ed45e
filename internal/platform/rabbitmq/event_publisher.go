package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"mvp-foundry/internal/model"
)

const RecordedEventType = "blueprint.recorded"

type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// PublishRecorded announces that entry has been written to the history.
func (p *EventPublisher) PublishRecorded(ctx context.Context, entry model.HistoryEntry) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	event := model.RecordedEvent{
		EventID: uuid.NewString(),
		Entry:   entry,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal recorded event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         RecordedEventType,
			MessageId:    event.EventID,
			Timestamp:    time.Now(),
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish recorded event failed: %w", err)
	}
	return nil
}
