// Package di wires the application's dependencies with plain constructor
// providers.
package di

import (
	"context"
	"time"

	"userdir-backend/application/ports"
	"userdir-backend/application/services"
	"userdir-backend/domain/user"
	"userdir-backend/infrastructure/config"
	"userdir-backend/infrastructure/messaging/eventbridge"
	ddb "userdir-backend/infrastructure/persistence/dynamodb"
	"userdir-backend/pkg/auth"
	"userdir-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// devJWTSecret keeps development setups working without configuration.
// Production requires JWT_SECRET (enforced by config validation).
const devJWTSecret = "development-secret-change-in-production"

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	UserRepo  *ddb.UserRepository
	Directory *services.DirectoryService
	Generator *auth.Generator
	Validator *auth.Validator
}

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

// ProvideDynamoDBClient creates a DynamoDB client, honoring a custom endpoint
// for local stacks.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideHasher creates the password hasher from the configured salt material
func ProvideHasher(cfg *config.Config) (*user.Hasher, error) {
	return user.NewHasher(cfg.SaltPrefix, cfg.SaltSuffix)
}

// ProvidePolicyMapper creates the role-to-policy mapper
func ProvidePolicyMapper(cfg *config.Config) *user.PolicyMapper {
	return user.NewPolicyMapper(cfg.PolicyGrants)
}

// ProvideUserRepository creates the user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *ddb.UserRepository {
	return ddb.NewUserRepository(client, cfg.UsersTable, cfg.LoginIndexName, logger)
}

// ProvideEventPublisher creates the lifecycle event publisher when enabled
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the operation metrics sink when enabled
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewMetrics("UserDir/"+cfg.Environment, client)
}

// ProvideJWT creates the token generator and validator pair
func ProvideJWT(cfg *config.Config) (*auth.Generator, *auth.Validator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = devJWTSecret
	}

	jwtConfig := auth.Config{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		Expiry:    24 * time.Hour,
	}

	generator, err := auth.NewGenerator(jwtConfig)
	if err != nil {
		return nil, nil, err
	}
	validator, err := auth.NewValidator(jwtConfig)
	if err != nil {
		return nil, nil, err
	}
	return generator, validator, nil
}

// InitializeContainer creates a fully wired container. With probe set, store
// connectivity is verified before the container is returned; without it,
// readiness is assumed immediately.
func InitializeContainer(ctx context.Context, cfg *config.Config, probe bool) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	hasher, err := ProvideHasher(cfg)
	if err != nil {
		return nil, err
	}

	generator, validator, err := ProvideJWT(cfg)
	if err != nil {
		return nil, err
	}

	repo := ProvideUserRepository(ProvideDynamoDBClient(awsCfg, cfg), cfg, logger)
	if err := repo.Initialize(ctx, probe); err != nil {
		return nil, err
	}

	directory := services.NewDirectoryService(
		repo,
		hasher,
		ProvidePolicyMapper(cfg),
		ProvideEventPublisher(ProvideEventBridgeClient(awsCfg), cfg, logger),
		ProvideMetrics(ProvideCloudWatchClient(awsCfg), cfg),
		logger,
	)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		UserRepo:  repo,
		Directory: directory,
		Generator: generator,
		Validator: validator,
	}, nil
}
