package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion string

	// DynamoDB tables and indexes
	RegistrationTable string
	CommandTable      string
	EventTable        string
	SettingTable      string
	ReferenceTable    string
	DeviceIndexName   string // registration GSI keyed on deviceId
	CommandIndexName  string // command GSI keyed on deviceId, sorted by updatedAt
	EventDeviceIndex  string // event GSI keyed on deviceId, sorted by timestamp
	EventUserIndex    string // event GSI keyed on userId, sorted by timestamp
	UserIndexName     string // registration GSI keyed on userId

	// IoT configuration
	IoTPolicyName string
	CommandTopic  string

	// Cognito configuration
	CognitoUserPoolID string

	// EventBridge configuration
	EventBusName string

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Metrics
	EnableMetrics    bool
	MetricsNamespace string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),

		RegistrationTable: getEnv("REGISTRATION_TABLE", "smartproduct-registrations"),
		CommandTable:      getEnv("COMMAND_TABLE", "smartproduct-commands"),
		EventTable:        getEnv("EVENT_TABLE", "smartproduct-events"),
		SettingTable:      getEnv("SETTING_TABLE", "smartproduct-settings"),
		ReferenceTable:    getEnv("REFERENCE_TABLE", "smartproduct-references"),
		DeviceIndexName:   getEnv("DEVICE_INDEX_NAME", "deviceId-index"),
		CommandIndexName:  getEnv("COMMAND_INDEX_NAME", "deviceId-updatedAt-index"),
		EventDeviceIndex:  getEnv("EVENT_DEVICE_INDEX_NAME", "deviceId-timestamp-index"),
		EventUserIndex:    getEnv("EVENT_USER_INDEX_NAME", "userId-timestamp-index"),
		UserIndexName:     getEnv("USER_INDEX_NAME", "userId-index"),

		IoTPolicyName: getEnv("IOT_POLICY_NAME", "smartproduct-device-policy"),
		CommandTopic:  getEnv("COMMAND_TOPIC_PREFIX", "smartproduct/commands"),

		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		EventBusName:      getEnv("EVENT_BUS_NAME", "smartproduct-events-bus"),

		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "smartproduct-backend"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "SmartProduct"),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" && !c.IsLambda {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.CognitoUserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseBool(value); err == nil {
		return parsed
	}
	return value == "yes"
}
