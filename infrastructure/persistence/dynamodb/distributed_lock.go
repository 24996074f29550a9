package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"retroboard-backend/application/ports"
	pkgerrors "retroboard-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DistributedLock provides named locks backed by DynamoDB conditional
// writes. An expired lock counts as free, so a crashed holder cannot wedge
// the resource past the TTL.
type DistributedLock struct {
	client    *dynamodb.Client
	tableName string
	ownerID   string
	logger    *zap.Logger
}

// lockRecord represents a lock item in DynamoDB
type lockRecord struct {
	PK         string `dynamodbav:"PK"` // LOCK#<key>
	SK         string `dynamodbav:"SK"` // LOCK
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"` // DynamoDB TTL reaps leftovers
}

// NewDistributedLock creates a new distributed lock instance. The owner
// identity distinguishes concurrent processes; the hostname plus process ID
// is unique enough for that.
func NewDistributedLock(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DistributedLock {
	hostname, _ := os.Hostname()
	return &DistributedLock{
		client:    client,
		tableName: tableName,
		ownerID:   fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		logger:    logger,
	}
}

// Acquire takes the named lock, failing if a live holder already has it
func (dl *DistributedLock) Acquire(ctx context.Context, key string, ttlSeconds int) error {
	now := time.Now()
	expiresAt := now.Add(time.Duration(ttlSeconds) * time.Second)

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", key)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"Owner":      &types.AttributeValueMemberS{Value: dl.ownerID},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)},
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(dl.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}

	if _, err := dl.client.PutItem(ctx, input); err != nil {
		var conditionalFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalFailed) {
			dl.logger.Debug("Lock contended",
				zap.String("key", key),
				zap.String("owner", dl.ownerID),
			)
			return pkgerrors.ErrLockContended.WithDetail("key", key)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	dl.logger.Debug("Lock acquired",
		zap.String("key", key),
		zap.String("owner", dl.ownerID),
		zap.Int("ttlSeconds", ttlSeconds),
	)

	return nil
}

// Release frees the named lock. A lock held by another owner is left alone;
// one that is already gone counts as released.
func (dl *DistributedLock) Release(ctx context.Context, key string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(dl.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", key)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR #owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: dl.ownerID},
		},
	}

	if _, err := dl.client.DeleteItem(ctx, input); err != nil {
		var conditionalFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalFailed) {
			dl.logger.Warn("Lock held by another owner, not released",
				zap.String("key", key),
				zap.String("owner", dl.ownerID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}

	dl.logger.Debug("Lock released",
		zap.String("key", key),
		zap.String("owner", dl.ownerID),
	)

	return nil
}
