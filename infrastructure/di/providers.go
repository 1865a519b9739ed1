package di

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/application/services"
	"smartproduct-backend/infrastructure/config"
	"smartproduct-backend/infrastructure/identity"
	"smartproduct-backend/infrastructure/iot"
	"smartproduct-backend/infrastructure/messaging/eventbridge"
	"smartproduct-backend/infrastructure/notification"
	"smartproduct-backend/infrastructure/observability"
	"smartproduct-backend/infrastructure/persistence/dynamodb"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awscognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awsiot "github.com/aws/aws-sdk-go-v2/service/iot"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideIoTClient creates an IoT control-plane client
func ProvideIoTClient(awsCfg aws.Config) *awsiot.Client {
	return awsiot.NewFromConfig(awsCfg)
}

// ProvideDataPlaneClient creates an IoT data-plane client. The data plane
// lives on a per-account ATS endpoint that has to be resolved through the
// control plane first.
func ProvideDataPlaneClient(ctx context.Context, awsCfg aws.Config, iotClient *awsiot.Client) (*iotdataplane.Client, error) {
	out, err := iotClient.DescribeEndpoint(ctx, &awsiot.DescribeEndpointInput{
		EndpointType: aws.String("iot:Data-ATS"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve iot data endpoint: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s", aws.ToString(out.EndpointAddress))
	return iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// ProvideSNSClient creates an SNS client
func ProvideSNSClient(awsCfg aws.Config) *awssns.Client {
	return awssns.NewFromConfig(awsCfg)
}

// ProvideCognitoClient creates a Cognito identity provider client
func ProvideCognitoClient(awsCfg aws.Config) *awscognito.Client {
	return awscognito.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideRegistrationRepository creates the registration repository
func ProvideRegistrationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.RegistrationRepository {
	return dynamodb.NewRegistrationRepository(client, cfg.RegistrationTable, cfg.DeviceIndexName, logger)
}

// ProvideCommandRepository creates the command repository
func ProvideCommandRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.CommandRepository {
	return dynamodb.NewCommandRepository(client, cfg.CommandTable, cfg.CommandIndexName, logger)
}

// ProvideEventRepository creates the event repository
func ProvideEventRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EventRepository {
	return dynamodb.NewEventRepository(client, cfg.EventTable, cfg.EventDeviceIndex, cfg.EventUserIndex, logger)
}

// ProvideSettingRepository creates the user setting repository
func ProvideSettingRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SettingRepository {
	return dynamodb.NewSettingRepository(client, cfg.SettingTable, logger)
}

// ProvideReferenceRepository creates the model reference repository
func ProvideReferenceRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ReferenceRepository {
	return dynamodb.NewReferenceRepository(client, cfg.ReferenceTable, logger)
}

// ProvideShadowClient creates the device shadow / topic client
func ProvideShadowClient(client *iotdataplane.Client, logger *zap.Logger) *iot.ShadowClient {
	return iot.NewShadowClient(client, logger)
}

// ProvideRegistryClient creates the IoT registry client
func ProvideRegistryClient(client *awsiot.Client, logger *zap.Logger) ports.DeviceRegistry {
	return iot.NewRegistryClient(client, logger)
}

// ProvideIdentityProvider creates the Cognito-backed identity provider
func ProvideIdentityProvider(client *awscognito.Client, cfg *config.Config, logger *zap.Logger) ports.IdentityProvider {
	return identity.NewCognitoProvider(client, cfg.CognitoUserPoolID, logger)
}

// ProvideSMSSender creates the SNS-backed SMS sender
func ProvideSMSSender(client *awssns.Client, logger *zap.Logger) ports.SMSSender {
	return notification.NewSNSSender(client, logger)
}

// ProvideMetrics creates the usage metrics instance. Metrics are optional;
// when disabled the instance is a no-op with a nil client.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) ports.UsageMetrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideLifecycleEvents creates the EventBridge lifecycle publisher
func ProvideLifecycleEvents(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.LifecycleEvents {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideRegistrationGate creates the shared authorization gate
func ProvideRegistrationGate(registrations ports.RegistrationRepository, logger *zap.Logger) *services.RegistrationGate {
	return services.NewRegistrationGate(registrations, logger)
}

// ProvideCommandService creates the command engine
func ProvideCommandService(
	gate *services.RegistrationGate,
	commands ports.CommandRepository,
	shadow *iot.ShadowClient,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	cfg *config.Config,
	logger *zap.Logger,
) *services.CommandService {
	return services.NewCommandService(gate, commands, shadow, shadow, metrics, lifecycle, cfg.CommandTopic, logger)
}

// ProvideEventService creates the event engine
func ProvideEventService(
	gate *services.RegistrationGate,
	events ports.EventRepository,
	registrations ports.RegistrationRepository,
	logger *zap.Logger,
) *services.EventService {
	return services.NewEventService(gate, events, registrations, logger)
}

// ProvideAlertService creates the alert engine
func ProvideAlertService(
	registrations ports.RegistrationRepository,
	settings ports.SettingRepository,
	events ports.EventRepository,
	identityProvider ports.IdentityProvider,
	sms ports.SMSSender,
	metrics ports.UsageMetrics,
	logger *zap.Logger,
) *services.AlertService {
	return services.NewAlertService(registrations, settings, events, identityProvider, sms, metrics, logger)
}

// ProvideRegistrationService creates the registration workflow service
func ProvideRegistrationService(
	registrations ports.RegistrationRepository,
	references ports.ReferenceRepository,
	registry ports.DeviceRegistry,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	logger *zap.Logger,
) *services.RegistrationService {
	return services.NewRegistrationService(registrations, references, registry, metrics, lifecycle, logger)
}

// ProvideJITRService creates the just-in-time registration service
func ProvideJITRService(
	registrations ports.RegistrationRepository,
	registry ports.DeviceRegistry,
	cfg *config.Config,
	metrics ports.UsageMetrics,
	lifecycle ports.LifecycleEvents,
	logger *zap.Logger,
) *services.JITRService {
	return services.NewJITRService(registrations, registry, cfg.IoTPolicyName, metrics, lifecycle, logger)
}

// ProvideSettingService creates the user settings service
func ProvideSettingService(settings ports.SettingRepository) *services.SettingService {
	return services.NewSettingService(settings)
}
