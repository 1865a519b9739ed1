package notification

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSSender delivers SMS-class notifications through SNS direct publish.
type SNSSender struct {
	client *sns.Client
	logger *zap.Logger
}

// NewSNSSender creates a new SNSSender.
func NewSNSSender(client *sns.Client, logger *zap.Logger) *SNSSender {
	return &SNSSender{client: client, logger: logger}
}

var _ ports.SMSSender = (*SNSSender)(nil)

// SendSMS publishes the message directly to the phone number.
func (s *SNSSender) SendSMS(ctx context.Context, phoneNumber, message string) error {
	if _, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
	}); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	s.logger.Info("sms sent", zap.Int("length", len(message)))
	return nil
}
