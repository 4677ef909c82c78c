package config

import (
	"fmt"
	"os"
	"strings"
)

// policyEnvPrefix marks the environment variables carrying role grants:
// POLICY_<ROLE> holds a space-separated list of policy names.
const policyEnvPrefix = "POLICY_"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // custom endpoint for local stacks, empty for AWS
	UsersTable       string
	LoginIndexName   string
	EventBusName     string

	// Password hashing salt material, immutable for the process lifetime
	SaltPrefix string
	SaltSuffix string

	// Role-to-policy grants, keyed by role name
	PolicyGrants map[string][]string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableEvents  bool
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AWSRegion:        getEnv("AWS_REGION", "us-west-2"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		UsersTable:       getEnv("USERS_TABLE", "USERS"),
		LoginIndexName:   getEnv("LOGIN_INDEX_NAME", "LOGIN"),
		EventBusName:     getEnv("EVENT_BUS_NAME", "userdir-events"),

		SaltPrefix: getEnv("PWD_PREFIX", ""),
		SaltSuffix: getEnv("PWD_SUFFIX", ""),

		PolicyGrants: loadPolicyGrants(os.Environ()),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "userdir-backend"),

		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present. Missing salt
// material is a startup failure: hashing with empty salt is never acceptable.
func (c *Config) Validate() error {
	if c.SaltPrefix == "" || c.SaltSuffix == "" {
		return fmt.Errorf("PWD_PREFIX and PWD_SUFFIX are required")
	}
	if c.UsersTable == "" {
		return fmt.Errorf("USERS_TABLE is required")
	}
	if c.LoginIndexName == "" {
		return fmt.Errorf("LOGIN_INDEX_NAME is required")
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
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

// loadPolicyGrants collects POLICY_<ROLE> variables from environ entries.
// Each value is a space-separated policy list; blank entries are dropped.
func loadPolicyGrants(environ []string) map[string][]string {
	grants := make(map[string][]string)
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, policyEnvPrefix) {
			continue
		}
		role := strings.TrimPrefix(key, policyEnvPrefix)
		if role == "" {
			continue
		}
		var policies []string
		for _, p := range strings.Fields(value) {
			policies = append(policies, strings.TrimSpace(p))
		}
		if len(policies) > 0 {
			grants[role] = policies
		}
	}
	return grants
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
	return value == "true" || value == "1" || value == "yes"
}
