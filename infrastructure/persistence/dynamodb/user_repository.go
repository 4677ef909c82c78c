// Package dynamodb implements the user repository against AWS DynamoDB.
package dynamodb

import (
	"context"
	"sync/atomic"

	"userdir-backend/domain/user"
	appErrors "userdir-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// UserRepository implements ports.UserRepository against a single DynamoDB
// table with a GSI on username. The repository is stateless apart from the
// readiness flag; every operation is one request to the store, atomic at the
// store's granularity.
type UserRepository struct {
	client     *dynamodb.Client
	tableName  string
	loginIndex string
	logger     *zap.Logger
	ready      atomic.Bool
}

// NewUserRepository creates a repository. It is not ready until Initialize
// runs.
func NewUserRepository(client *dynamodb.Client, tableName, loginIndex string, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		client:     client,
		tableName:  tableName,
		loginIndex: loginIndex,
		logger:     logger,
	}
}

// Initialize establishes readiness. With probe set, the connection is
// verified by listing tables; on failure readiness stays false and the error
// is returned. Without probe, readiness is assumed immediately. That weak
// fire-and-forget guarantee is deliberate and kept.
func (r *UserRepository) Initialize(ctx context.Context, probe bool) error {
	if !probe {
		r.ready.Store(true)
		return nil
	}

	if _, err := r.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)}); err != nil {
		r.ready.Store(false)
		r.logger.Error("DynamoDB connectivity probe failed", zap.Error(err))
		return appErrors.NewStoreError("ListTables", err)
	}

	r.ready.Store(true)
	r.logger.Info("DynamoDB connection verified",
		zap.String("table", r.tableName),
		zap.String("loginIndex", r.loginIndex),
	)
	return nil
}

// Ready reports whether the repository accepts operations.
func (r *UserRepository) Ready() bool {
	return r.ready.Load()
}

func (r *UserRepository) guardReady() error {
	if !r.ready.Load() {
		return appErrors.NewNotReadyError()
	}
	return nil
}

// Create writes the full record as a new item. Unconditional put;
// last-write-wins when the key already exists.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := r.guardReady(); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(u)
	if err != nil {
		return appErrors.NewStoreError("PutItem", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to put user item",
			zap.String("uid", u.UID),
			zap.Error(err),
		)
		return appErrors.NewStoreError("PutItem", err)
	}

	return nil
}

// GetByUID fetches one record by primary key. Returns (nil, nil) when no
// record matches.
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*user.User, error) {
	if err := r.guardReady(); err != nil {
		return nil, err
	}
	if uid == "" {
		return nil, appErrors.NewInvalidSelectorError("uid must not be empty")
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			user.KeyAttribute: &types.AttributeValueMemberS{Value: uid},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, appErrors.NewStoreError("GetItem", err)
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var u user.User
	if err := attributevalue.UnmarshalMap(result.Item, &u); err != nil {
		return nil, appErrors.NewStoreError("GetItem", err)
	}
	return &u, nil
}

// GetByUsername queries the login index for one record. Returns (nil, nil)
// when no record matches.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if err := r.guardReady(); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, appErrors.NewInvalidSelectorError("username must not be empty")
	}

	keyCond := expression.Key("username").Equal(expression.Value(username))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.NewStoreError("Query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.loginIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, appErrors.NewStoreError("Query", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var u user.User
	if err := attributevalue.UnmarshalMap(result.Items[0], &u); err != nil {
		return nil, appErrors.NewStoreError("Query", err)
	}
	return &u, nil
}

// Update compiles the change set and issues one conditional-free partial
// write against the record's non-key attributes.
func (r *UserRepository) Update(ctx context.Context, uid string, changes *user.ChangeSet) error {
	if err := r.guardReady(); err != nil {
		return err
	}
	if uid == "" {
		return appErrors.NewMissingKeyError()
	}
	if changes.Empty() {
		return appErrors.NewNoChangesError()
	}

	compiled, err := compileUpdate(changes)
	if err != nil {
		return appErrors.NewStoreError("UpdateItem", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			user.KeyAttribute: &types.AttributeValueMemberS{Value: uid},
		},
		UpdateExpression:          aws.String(compiled.Expression),
		ExpressionAttributeValues: compiled.Values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if len(compiled.Names) > 0 {
		input.ExpressionAttributeNames = compiled.Names
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		r.logger.Error("Failed to update user item",
			zap.String("uid", uid),
			zap.String("changes", changes.String()),
			zap.Error(err),
		)
		return appErrors.NewStoreError("UpdateItem", err)
	}

	return nil
}

// UpdatePassword overwrites login.password with hashedPassword using the
// dedicated fixed expression.
func (r *UserRepository) UpdatePassword(ctx context.Context, uid, hashedPassword string) error {
	if err := r.guardReady(); err != nil {
		return err
	}
	if uid == "" {
		return appErrors.NewMissingKeyError()
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			user.KeyAttribute: &types.AttributeValueMemberS{Value: uid},
		},
		UpdateExpression: aws.String("set login.password = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: hashedPassword},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		r.logger.Error("Failed to update password", zap.String("uid", uid), zap.Error(err))
		return appErrors.NewStoreError("UpdateItem", err)
	}

	return nil
}

// Delete removes the record matching uid. DynamoDB's DeleteItem succeeds for
// absent keys, so delete is idempotent.
func (r *UserRepository) Delete(ctx context.Context, uid string) error {
	if err := r.guardReady(); err != nil {
		return err
	}
	if uid == "" {
		return appErrors.NewMissingKeyError()
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			user.KeyAttribute: &types.AttributeValueMemberS{Value: uid},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		r.logger.Error("Failed to delete user item", zap.String("uid", uid), zap.Error(err))
		return appErrors.NewStoreError("DeleteItem", err)
	}

	return nil
}
