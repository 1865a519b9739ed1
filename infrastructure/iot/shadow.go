package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	iotdptypes "github.com/aws/aws-sdk-go-v2/service/iotdataplane/types"
	"go.uber.org/zap"
)

// ShadowClient talks to the device shadow and command topics through the IoT
// data plane. The data-plane client must be built against the account's
// resolved ATS endpoint (see ProvideDataPlaneClient).
type ShadowClient struct {
	client *iotdataplane.Client
	logger *zap.Logger
}

// NewShadowClient creates a new ShadowClient.
func NewShadowClient(client *iotdataplane.Client, logger *zap.Logger) *ShadowClient {
	return &ShadowClient{client: client, logger: logger}
}

var _ ports.DeviceShadow = (*ShadowClient)(nil)
var _ ports.TopicPublisher = (*ShadowClient)(nil)

type shadowDocument struct {
	State struct {
		Desired  map[string]interface{} `json:"desired,omitempty"`
		Reported map[string]interface{} `json:"reported,omitempty"`
	} `json:"state"`
}

// Get returns the device's current shadow state, or (nil, nil) when no shadow
// exists yet. A fresh device legitimately has none.
func (c *ShadowClient) Get(ctx context.Context, thingName string) (map[string]interface{}, error) {
	out, err := c.client.GetThingShadow(ctx, &iotdataplane.GetThingShadowInput{
		ThingName: aws.String(thingName),
	})
	if err != nil {
		var notFound *iotdptypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thing shadow: %w", err)
	}

	var doc shadowDocument
	if err := json.Unmarshal(out.Payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse thing shadow: %w", err)
	}

	if doc.State.Reported != nil {
		return doc.State.Reported, nil
	}
	return doc.State.Desired, nil
}

// UpdateDesired writes a partial desired-state document to the shadow.
func (c *ShadowClient) UpdateDesired(ctx context.Context, thingName string, desired map[string]interface{}) error {
	var doc shadowDocument
	doc.State.Desired = desired

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal shadow document: %w", err)
	}

	if _, err := c.client.UpdateThingShadow(ctx, &iotdataplane.UpdateThingShadowInput{
		ThingName: aws.String(thingName),
		Payload:   payload,
	}); err != nil {
		return fmt.Errorf("failed to update thing shadow: %w", err)
	}

	c.logger.Info("shadow desired state updated", zap.String("thingName", thingName))
	return nil
}

// Publish sends a JSON payload on the given topic at QoS 0.
func (c *ShadowClient) Publish(ctx context.Context, topic string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal topic payload: %w", err)
	}

	if _, err := c.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     0,
		Payload: raw,
	}); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	return nil
}
