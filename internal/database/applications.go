package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

// ApplicationOperations handles all DynamoDB operations for applications
type ApplicationOperations struct {
	client    *Client
	tableName string
}

// NewApplicationOperations creates a new ApplicationOperations instance
func NewApplicationOperations(client *Client, tableName string) *ApplicationOperations {
	return &ApplicationOperations{
		client:    client,
		tableName: tableName,
	}
}

// PutApplication creates or replaces an application in DynamoDB
func (ao *ApplicationOperations) PutApplication(ctx context.Context, app *models.Application) error {
	av, err := attributevalue.MarshalMap(toApplicationItem(app))
	if err != nil {
		return fmt.Errorf("failed to marshal application: %w", err)
	}

	_, err = ao.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ao.tableName),
		Item:      av,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"application_id": app.Id,
			"error":          err.Error(),
		}).Error("Failed to put application in DynamoDB")
		return fmt.Errorf("failed to put application: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"application_id": app.Id,
		"name":           app.Name,
		"status":         app.Status,
	}).Debug("Application stored in DynamoDB")

	return nil
}

// DeleteApplication deletes an application from DynamoDB
func (ao *ApplicationOperations) DeleteApplication(ctx context.Context, id string) error {
	_, err := ao.client.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(ao.tableName),
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(Id)"),
	})

	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}

	return nil
}

// GetAllApplications retrieves every application from DynamoDB
func (ao *ApplicationOperations) GetAllApplications(ctx context.Context) ([]*models.Application, error) {
	apps := make([]*models.Application, 0)

	err := scanTable(ctx, ao.client, ao.tableName, func(item map[string]types.AttributeValue) error {
		var it applicationItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return fmt.Errorf("failed to unmarshal application: %w", err)
		}
		apps = append(apps, it.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// scanTable walks every page of a table scan
func scanTable(ctx context.Context, client *Client, table string, fn func(map[string]types.AttributeValue) error) error {
	paginator := dynamodb.NewScanPaginator(client.DynamoDB, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}

	return nil
}
