package main

import (
	"context"
	"log"

	"smartproduct-backend/infrastructure/di"

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

// CertificateRegistrationEvent is the payload of the IoT rule listening on
// $aws/events/certificates/registered/#.
type CertificateRegistrationEvent struct {
	CertificateID     string `json:"certificateId"`
	CaCertificateID   string `json:"caCertificateId"`
	CertificateStatus string `json:"certificateStatus"`
	AwsAccountID      string `json:"awsAccountId"`
}

// Handler completes just-in-time registration for one freshly presented
// device certificate.
func Handler(ctx context.Context, event CertificateRegistrationEvent) error {
	logger := container.Logger

	reg, err := container.JITRService.RegisterDevice(ctx, event.CertificateID)
	if err != nil {
		logger.Error("device registration failed",
			zap.String("certificateId", event.CertificateID),
			zap.Error(err),
		)
		return err
	}

	logger.Info("device registered",
		zap.String("certificateId", event.CertificateID),
		zap.String("deviceId", reg.DeviceID),
		zap.String("userId", reg.UserID),
	)
	return nil
}

func main() {
	lambda.Start(Handler)
}
