package main

import (
	"context"
	"log"

	"smartproduct-backend/application/services"
	"smartproduct-backend/infrastructure/di"
	apperrors "smartproduct-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var container *di.Container

// init runs during cold start
func init() {
	var err error
	container, err = di.InitializeContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

// DeviceEventMessage is the payload devices publish on their event topic.
// The IoT rule forwards it here verbatim.
type DeviceEventMessage struct {
	DeviceID  string                 `json:"deviceId"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Handler ingests one device event and runs the alert pipeline for it. A
// suppressed alert is a success; only pipeline failures surface to the
// invoker for retry.
func Handler(ctx context.Context, msg DeviceEventMessage) error {
	logger := container.Logger

	ev, err := container.EventService.CreateEvent(ctx, msg.DeviceID, services.CreateEventRequest{
		Type:      msg.Type,
		Message:   msg.Message,
		Details:   msg.Details,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		// Events from unregistered devices are dropped, not retried.
		if apperrors.IsKind(err, apperrors.KindMissingRegistration) {
			logger.Warn("event from unregistered device dropped",
				zap.String("deviceId", msg.DeviceID))
			return nil
		}
		logger.Error("event ingestion failed",
			zap.String("deviceId", msg.DeviceID),
			zap.Error(err),
		)
		return err
	}

	result, err := container.AlertService.SendAlert(ctx, ev)
	if err != nil {
		logger.Error("alert delivery failed",
			zap.String("deviceId", msg.DeviceID),
			zap.String("eventId", ev.ID),
			zap.Error(err),
		)
		return err
	}

	logger.Info("event ingested",
		zap.String("deviceId", msg.DeviceID),
		zap.String("eventId", ev.ID),
		zap.Bool("alertSent", result.Sent),
	)
	return nil
}

func main() {
	lambda.Start(Handler)
}
