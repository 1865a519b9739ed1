package di

import (
	"context"
	"fmt"

	"smartproduct-backend/application/services"
	"smartproduct-backend/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds the fully wired application graph. It is built once per
// process; invocations share nothing else.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	CommandService      *services.CommandService
	EventService        *services.EventService
	AlertService        *services.AlertService
	RegistrationService *services.RegistrationService
	JITRService         *services.JITRService
	SettingService      *services.SettingService
}

// InitializeContainer wires the whole dependency graph from environment
// configuration. Providers are plain functions so each dependency's
// construction stays independently testable.
func InitializeContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	ddbClient := ProvideDynamoDBClient(awsCfg)
	iotClient := ProvideIoTClient(awsCfg)
	snsClient := ProvideSNSClient(awsCfg)
	cognitoClient := ProvideCognitoClient(awsCfg)
	ebClient := ProvideEventBridgeClient(awsCfg)
	cwClient := ProvideCloudWatchClient(awsCfg)

	dataPlaneClient, err := ProvideDataPlaneClient(ctx, awsCfg, iotClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create iot data plane client: %w", err)
	}

	registrations := ProvideRegistrationRepository(ddbClient, cfg, logger)
	commands := ProvideCommandRepository(ddbClient, cfg, logger)
	events := ProvideEventRepository(ddbClient, cfg, logger)
	settings := ProvideSettingRepository(ddbClient, cfg, logger)
	references := ProvideReferenceRepository(ddbClient, cfg, logger)

	shadow := ProvideShadowClient(dataPlaneClient, logger)
	registry := ProvideRegistryClient(iotClient, logger)
	identityProvider := ProvideIdentityProvider(cognitoClient, cfg, logger)
	sms := ProvideSMSSender(snsClient, logger)
	metrics := ProvideMetrics(cwClient, cfg, logger)
	lifecycle := ProvideLifecycleEvents(ebClient, cfg, logger)

	gate := ProvideRegistrationGate(registrations, logger)

	return &Container{
		Config: cfg,
		Logger: logger,

		CommandService:      ProvideCommandService(gate, commands, shadow, metrics, lifecycle, cfg, logger),
		EventService:        ProvideEventService(gate, events, registrations, logger),
		AlertService:        ProvideAlertService(registrations, settings, events, identityProvider, sms, metrics, logger),
		RegistrationService: ProvideRegistrationService(registrations, references, registry, metrics, lifecycle, logger),
		JITRService:         ProvideJITRService(registrations, registry, cfg, metrics, lifecycle, logger),
		SettingService:      ProvideSettingService(settings),
	}, nil
}

// Shutdown flushes buffered log output.
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
