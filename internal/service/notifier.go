// Package notifier publishes chat-notification events to RabbitMQ.  The
// publish is the fire-and-forget handoff out of the request path; the
// dedicated consumer in internal/queue performs the actual chat delivery.
// Errors are logged and returned so the state-change bus can apply its
// once-per-session warning policy without interrupting the ledger flow.
package notifier

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/auction-bin-tracker/internal/bus"
	q "github.com/iliyamo/auction-bin-tracker/internal/queue"
)

// Notifier converts state-change events into notification messages on the
// broker.  It implements bus.Sink.
type Notifier struct {
	url string
}

// New returns a notifier publishing to the given AMQP endpoint.
func New(url string) *Notifier { return &Notifier{url: url} }

// Name identifies the sink on the state-change bus.
func (n *Notifier) Name() string { return "chat-notification" }

// Deliver publishes a notification for bin assignments and show resets.
// Imports restore old state and are not announced.
func (n *Notifier) Deliver(ev bus.Event) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var msg q.NotificationEvent
	switch ev.Kind {
	case bus.KindTransaction:
		msg = q.NotificationEvent{
			Kind:       q.KindBinAssigned,
			Username:   ev.DisplayName,
			Bin:        ev.Bin,
			ShowID:     ev.ShowID,
			OccurredAt: now,
		}
	case bus.KindReset:
		msg = q.NotificationEvent{
			Kind:       q.KindNewShow,
			ShowID:     ev.ShowID,
			OccurredAt: now,
		}
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return n.publish(ctx, msg)
}

// publish opens a short-lived connection, declares the durable queue
// (idempotent) and sends the event as a persistent JSON message.
func (n *Notifier) publish(ctx context.Context, event q.NotificationEvent) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		q.NotificationQueueName, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		q.NotificationQueueName, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
