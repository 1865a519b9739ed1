package iot

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiot "github.com/aws/aws-sdk-go-v2/service/iot"
	iottypes "github.com/aws/aws-sdk-go-v2/service/iot/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// RegistryClient covers the certificate/thing side of device onboarding
// through the IoT control plane.
type RegistryClient struct {
	client *awsiot.Client
	logger *zap.Logger
}

// NewRegistryClient creates a new RegistryClient.
func NewRegistryClient(client *awsiot.Client, logger *zap.Logger) *RegistryClient {
	return &RegistryClient{client: client, logger: logger}
}

var _ ports.DeviceRegistry = (*RegistryClient)(nil)

// DescribeCertificate returns the certificate ARN and the Common Name of its
// subject. Devices embed their serial in the CN, so it doubles as the thing
// name.
func (c *RegistryClient) DescribeCertificate(ctx context.Context, certificateID string) (string, string, error) {
	out, err := c.client.DescribeCertificate(ctx, &awsiot.DescribeCertificateInput{
		CertificateId: aws.String(certificateID),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to describe certificate: %w", err)
	}

	desc := out.CertificateDescription
	if desc == nil || desc.CertificatePem == nil {
		return "", "", fmt.Errorf("certificate %s has no PEM", certificateID)
	}

	commonName, err := commonNameFromPEM(*desc.CertificatePem)
	if err != nil {
		return "", "", err
	}

	return aws.ToString(desc.CertificateArn), commonName, nil
}

func commonNameFromPEM(certPEM string) (string, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return "", fmt.Errorf("failed to decode certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse certificate: %w", err)
	}

	if cert.Subject.CommonName == "" {
		return "", fmt.Errorf("certificate subject has no common name")
	}
	return cert.Subject.CommonName, nil
}

// ActivateCertificate transitions the certificate to ACTIVE.
func (c *RegistryClient) ActivateCertificate(ctx context.Context, certificateID string) error {
	if _, err := c.client.UpdateCertificate(ctx, &awsiot.UpdateCertificateInput{
		CertificateId: aws.String(certificateID),
		NewStatus:     iottypes.CertificateStatusActive,
	}); err != nil {
		return fmt.Errorf("failed to activate certificate: %w", err)
	}

	c.logger.Info("certificate activated", zap.String("certificateId", certificateID))
	return nil
}

// CreateThing registers the thing. Creating an existing thing is a no-op on
// the control plane, which keeps JITR retries safe.
func (c *RegistryClient) CreateThing(ctx context.Context, thingName string) error {
	if _, err := c.client.CreateThing(ctx, &awsiot.CreateThingInput{
		ThingName: aws.String(thingName),
	}); err != nil {
		return fmt.Errorf("failed to create thing: %w", err)
	}
	return nil
}

// DeleteThing removes the thing from the registry. A thing that is already
// gone is treated as deleted so registration cleanup stays retryable.
func (c *RegistryClient) DeleteThing(ctx context.Context, thingName string) error {
	if _, err := c.client.DeleteThing(ctx, &awsiot.DeleteThingInput{
		ThingName: aws.String(thingName),
	}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
			c.logger.Warn("thing already deleted", zap.String("thingName", thingName))
			return nil
		}
		return fmt.Errorf("failed to delete thing: %w", err)
	}
	return nil
}

// AttachThingPrincipal binds the certificate to the thing.
func (c *RegistryClient) AttachThingPrincipal(ctx context.Context, thingName, certificateARN string) error {
	if _, err := c.client.AttachThingPrincipal(ctx, &awsiot.AttachThingPrincipalInput{
		ThingName: aws.String(thingName),
		Principal: aws.String(certificateARN),
	}); err != nil {
		return fmt.Errorf("failed to attach thing principal: %w", err)
	}
	return nil
}

// AttachPolicy binds the device policy to the certificate.
func (c *RegistryClient) AttachPolicy(ctx context.Context, policyName, certificateARN string) error {
	if _, err := c.client.AttachPolicy(ctx, &awsiot.AttachPolicyInput{
		PolicyName: aws.String(policyName),
		Target:     aws.String(certificateARN),
	}); err != nil {
		return fmt.Errorf("failed to attach policy: %w", err)
	}
	return nil
}
