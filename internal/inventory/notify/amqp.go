package notify

import (
	"context"

	"github.com/stocktrack/stocktrack-backend/pkg/errors"
	"github.com/stocktrack/stocktrack-backend/pkg/logger"
	"github.com/stocktrack/stocktrack-backend/pkg/messaging"
)

// AMQPTransport publishes notifications to the inventory events exchange.
// The destination becomes part of the event payload; routing uses the
// alert event type.
type AMQPTransport struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAMQPTransport creates a broker-backed transport
func NewAMQPTransport(rmq *messaging.RabbitMQ, log *logger.Logger) (*AMQPTransport, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &AMQPTransport{
		publisher: publisher,
		logger:    log.WithComponent("notify"),
	}, nil
}

// Send publishes the notification. A broker error surfaces as a
// TransportFailure; the caller decides whether that matters.
func (t *AMQPTransport) Send(ctx context.Context, destination, message string) error {
	payload := map[string]string{
		"destination": destination,
		"message":     message,
	}

	if err := t.publisher.Publish(ctx, messaging.EventAlertGenerated, payload); err != nil {
		return errors.TransportFailure(err)
	}
	return nil
}
