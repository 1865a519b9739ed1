package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const source = "smartproduct.backend"

// Publisher emits lifecycle notifications (command accepted, registration
// completed) on the internal event bus. Callers treat it as fire-and-forget.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new Publisher.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

var _ ports.LifecycleEvents = (*Publisher)(nil)

// Publish sends one event entry to the bus.
func (p *Publisher) Publish(ctx context.Context, detailType string, detail interface{}) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(source),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(raw)),
				Time:         aws.Time(time.Now()),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put event: %w", err)
	}

	if out.FailedEntryCount > 0 {
		return fmt.Errorf("event bus rejected %d entries", out.FailedEntryCount)
	}

	p.logger.Debug("lifecycle event published", zap.String("detailType", detailType))
	return nil
}
