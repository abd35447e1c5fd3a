package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	appConfig "github.com/imyashkale/shutdownmanager/internal/config"
	"github.com/imyashkale/shutdownmanager/internal/logger"
)

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")
)

// DynamoAPI is the subset of the DynamoDB client used by this package
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Config holds the DynamoDB configuration
type Config struct {
	ApplicationsTable string
	ServersTable      string
	Region            string
}

// Client wraps the DynamoDB client
type Client struct {
	DynamoDB DynamoAPI
}

// NewConfig creates a new database configuration from the application config
func NewConfig(appCfg *appConfig.Config) *Config {
	return &Config{
		ApplicationsTable: appCfg.DynamoDBApplicationsTable,
		ServersTable:      appCfg.DynamoDBServersTable,
		Region:            appCfg.AWSRegion,
	}
}

// NewClient creates a new DynamoDB client and checks that both tables are reachable
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := &Client{DynamoDB: dynamodb.NewFromConfig(awsCfg)}

	for _, table := range []string{cfg.ApplicationsTable, cfg.ServersTable} {
		if err := client.ensureTableExists(ctx, table); err != nil {
			logger.WithField("table", table).Warnf("Could not verify table existence: %v", err)
		}
	}

	return client, nil
}

// ensureTableExists checks if the DynamoDB table exists
func (c *Client) ensureTableExists(ctx context.Context, tableName string) error {
	_, err := c.DynamoDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})

	if err != nil {
		return fmt.Errorf("table %s does not exist or cannot be accessed: %w", tableName, err)
	}

	logger.WithField("table", tableName).Info("DynamoDB table verified successfully")
	return nil
}
