package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seriouslegend2/hungerhearts-sub000/config"
	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Publisher sends order lifecycle events to the queue. Publishing is
// best-effort throughout the service layer: a failed publish is logged and
// never fails the originating request.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
	Close() error
}

// EventHandler processes a decoded order event.
type EventHandler func(ctx context.Context, event *models.OrderEvent) error

// ServiceBus wraps the Azure Service Bus client for one queue
type ServiceBus struct {
	client    *azservicebus.Client
	sender    *azservicebus.Sender
	queueName string
}

// NewServiceBus creates a new Azure Service Bus client for the configured queue
func NewServiceBus(cfg config.AzureConfig) (*ServiceBus, error) {
	if cfg.QueueConnStr == "" {
		return nil, errors.New("Azure Service Bus connection string is empty")
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus sender")
	}

	return &ServiceBus{
		client:    client,
		sender:    sender,
		queueName: cfg.QueueName,
	}, nil
}

// PublishOrderEvent sends an order lifecycle event to the queue
func (s *ServiceBus) PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order event")
	}

	msg := &azservicebus.Message{
		Body: data,
		ApplicationProperties: map[string]interface{}{
			"type": event.Type,
			"time": time.Now().UTC().Format(time.RFC3339),
		},
	}

	return s.sender.SendMessage(ctx, msg, nil)
}

// ProcessMessages receives order events from the queue and hands them to the
// handler until the context is cancelled. Handler failures abandon the
// message so it is redelivered.
func (s *ServiceBus) ProcessMessages(ctx context.Context, handler EventHandler) error {
	receiver, err := s.client.NewReceiverForQueue(s.queueName, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create Service Bus receiver")
	}
	defer receiver.Close(context.Background())

	for {
		messages, err := receiver.ReceiveMessages(ctx, 1, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to receive messages")
		}

		for _, msg := range messages {
			var event models.OrderEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				log.Error().Err(err).Msg("Failed to decode order event, dead-lettering")
				if dlErr := receiver.DeadLetterMessage(ctx, msg, nil); dlErr != nil {
					log.Error().Err(dlErr).Msg("Failed to dead-letter message")
				}
				continue
			}

			if err := handler(ctx, &event); err != nil {
				log.Error().Err(err).Str("type", event.Type).Msg("Failed to process order event")
				if abErr := receiver.AbandonMessage(ctx, msg, nil); abErr != nil {
					log.Error().Err(abErr).Msg("Failed to abandon message")
				}
				continue
			}

			if err := receiver.CompleteMessage(ctx, msg, nil); err != nil {
				log.Error().Err(err).Msg("Failed to complete message")
			}
		}
	}
}

// Close closes the Service Bus client
func (s *ServiceBus) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}

	if s.client != nil {
		return s.client.Close(context.Background())
	}

	return nil
}
