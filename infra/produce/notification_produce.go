package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-workorder-service/workflow"
)

const (
	NotificationExchange   = "workorder.exchange"
	NotificationQueue      = "workorder.notifications"
	NotificationRoutingKey = "workorder.notify"
)

// NotificationMessage is the wire form of a domain event handed to the
// delivery worker.
type NotificationMessage struct {
	Kind          string            `json:"kind"`
	RecipientRole string            `json:"recipient_role"`
	RecipientID   string            `json:"recipient_id,omitempty"`
	RelatedJobID  string            `json:"related_job_id,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
	Timestamp     int64             `json:"timestamp"`
}

// NotificationService publishes domain events for the consumer binary to
// deliver. It is the engine's EventSink.
type NotificationService struct {
	channel *amqp.Channel
}

func InitNotificationService(channel *amqp.Channel) *NotificationService {
	err := channel.ExchangeDeclare(
		NotificationExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Notification exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		NotificationQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Notification queue: " + err.Error())
	}

	err = channel.QueueBind(
		NotificationQueue,
		NotificationRoutingKey,
		NotificationExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Notification queue: " + err.Error())
	}

	return &NotificationService{channel: channel}
}

// Publish implements workflow.EventSink.
func (s *NotificationService) Publish(ctx context.Context, event workflow.Event) error {
	msg := NotificationMessage{
		Kind:          event.Kind,
		RecipientRole: string(event.RecipientRole),
		RecipientID:   event.RecipientID,
		RelatedJobID:  event.JobID,
		Payload:       event.Payload,
		Timestamp:     time.Now().Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		NotificationExchange,
		NotificationRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
