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

// ServerOperations handles all DynamoDB operations for servers
type ServerOperations struct {
	client    *Client
	tableName string
}

// NewServerOperations creates a new ServerOperations instance
func NewServerOperations(client *Client, tableName string) *ServerOperations {
	return &ServerOperations{
		client:    client,
		tableName: tableName,
	}
}

// PutServer creates or replaces a server in DynamoDB
func (so *ServerOperations) PutServer(ctx context.Context, srv *models.Server) error {
	av, err := attributevalue.MarshalMap(toServerItem(srv))
	if err != nil {
		return fmt.Errorf("failed to marshal server: %w", err)
	}

	_, err = so.client.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(so.tableName),
		Item:      av,
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"server_id": srv.Id,
			"error":     err.Error(),
		}).Error("Failed to put server in DynamoDB")
		return fmt.Errorf("failed to put server: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"server_id": srv.Id,
		"hostname":  srv.Hostname,
		"status":    srv.Status,
	}).Debug("Server stored in DynamoDB")

	return nil
}

// DeleteServer deletes a server from DynamoDB
func (so *ServerOperations) DeleteServer(ctx context.Context, id string) error {
	_, err := so.client.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(so.tableName),
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
		return fmt.Errorf("failed to delete server: %w", err)
	}

	return nil
}

// GetAllServers retrieves every server from DynamoDB
func (so *ServerOperations) GetAllServers(ctx context.Context) ([]*models.Server, error) {
	servers := make([]*models.Server, 0)

	err := scanTable(ctx, so.client, so.tableName, func(item map[string]types.AttributeValue) error {
		var it serverItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			return fmt.Errorf("failed to unmarshal server: %w", err)
		}
		servers = append(servers, it.toDomain())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return servers, nil
}
