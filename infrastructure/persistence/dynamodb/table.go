package dynamodb

import (
	"context"
	"time"

	appErrors "userdir-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CreateTable provisions the users table: hash key uid, plus the login index
// keyed on username projecting all attributes.
func (r *UserRepository) CreateTable(ctx context.Context) error {
	if err := r.guardReady(); err != nil {
		return err
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("uid"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("uid"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("username"), AttributeType: types.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(r.loginIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("username"), KeyType: types.KeyTypeHash},
				},
				Projection: &types.Projection{
					ProjectionType: types.ProjectionTypeAll,
				},
				ProvisionedThroughput: &types.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(1),
					WriteCapacityUnits: aws.Int64(1),
				},
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(1),
			WriteCapacityUnits: aws.Int64(1),
		},
	}

	if _, err := r.client.CreateTable(ctx, input); err != nil {
		r.logger.Error("Failed to create table", zap.String("table", r.tableName), zap.Error(err))
		return appErrors.NewStoreError("CreateTable", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	describe := &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}
	if err := waiter.Wait(ctx, describe, 2*time.Minute); err != nil {
		return appErrors.NewStoreError("CreateTable", err)
	}

	r.logger.Info("Table created", zap.String("table", r.tableName))
	return nil
}

// DeleteTable drops the users table.
func (r *UserRepository) DeleteTable(ctx context.Context) error {
	if err := r.guardReady(); err != nil {
		return err
	}

	input := &dynamodb.DeleteTableInput{TableName: aws.String(r.tableName)}
	if _, err := r.client.DeleteTable(ctx, input); err != nil {
		r.logger.Error("Failed to delete table", zap.String("table", r.tableName), zap.Error(err))
		return appErrors.NewStoreError("DeleteTable", err)
	}

	r.logger.Info("Table deleted", zap.String("table", r.tableName))
	return nil
}
