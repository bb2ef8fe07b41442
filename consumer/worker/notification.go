package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-workorder-service/infra"
	"github.com/tnqbao/gau-workorder-service/infra/produce"
)

// NotificationConsumer drains the notification queue and hands each domain
// event to the delivery channel (push, chat, whatever sits behind it).
// Delivery here is best-effort by design: the mutation that produced the
// event has already committed.
type NotificationConsumer struct {
	channel *amqp.Channel
	infra   *infra.Infra
}

func NewNotificationConsumer(channel *amqp.Channel, infra *infra.Infra) *NotificationConsumer {
	return &NotificationConsumer{
		channel: channel,
		infra:   infra,
	}
}

func (c *NotificationConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.NotificationQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register notification consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Notification Consumer] Started listening on queue: %s", produce.NotificationQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Notification Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Notification Consumer] Channel closed")
					return
				}
				c.handleNotification(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *NotificationConsumer) handleNotification(ctx context.Context, msg amqp.Delivery) {
	var notification produce.NotificationMessage
	if err := json.Unmarshal(msg.Body, &notification); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Notification Consumer] Malformed message, dropping: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := c.deliver(ctx, notification); err != nil {
		// Best-effort: log and drop rather than requeue-storm the broker
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Notification Consumer] Delivery failed for %s to %s: %v",
			notification.Kind, notification.RecipientID, err)
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
}

// deliver routes the event to the recipient's delivery channel. The stub
// records the delivery in the log; a push provider integration slots in
// here.
func (c *NotificationConsumer) deliver(ctx context.Context, n produce.NotificationMessage) error {
	c.infra.Logger.InfoWithContextf(ctx, "[Notification Consumer] %s -> %s %s (job %s)",
		n.Kind, n.RecipientRole, n.RecipientID, n.RelatedJobID)
	return nil
}
