package dynamodb

import (
	"context"
	"fmt"
	"time"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SessionRepository implements the SessionRepository interface using
// DynamoDB. Sessions share the board partition so the fan-out path can
// resolve every connection on a board with one Query.
type SessionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// sessionItem represents the DynamoDB item structure for a board session
type sessionItem struct {
	PK           string `dynamodbav:"PK"` // BOARD#<board_id>
	SK           string `dynamodbav:"SK"` // SESSION#<user_hash>
	EntityType   string `dynamodbav:"EntityType"`
	BoardID      string `dynamodbav:"BoardID"`
	UserHash     string `dynamodbav:"UserHash"`
	UserAlias    string `dynamodbav:"UserAlias,omitempty"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	LastSeenAt   string `dynamodbav:"LastSeenAt"`
	TTL          int64  `dynamodbav:"TTL"` // Stale sessions expire on their own
}

// sessionTTL bounds how long an abandoned session lingers before DynamoDB
// reaps it.
const sessionTTL = 24 * time.Hour

func sessionKey(boardID valueobjects.BoardID, userHash string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SESSION#%s", userHash)},
	}
}

// Save persists a session, overwriting any previous connection for the same
// user on the board
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	item := sessionItem{
		PK:           fmt.Sprintf("BOARD#%s", session.BoardID().String()),
		SK:           fmt.Sprintf("SESSION#%s", session.UserHash()),
		EntityType:   "SESSION",
		BoardID:      session.BoardID().String(),
		UserHash:     session.UserHash(),
		UserAlias:    session.UserAlias(),
		ConnectionID: session.ConnectionID(),
		ConnectedAt:  session.ConnectedAt().Format(time.RFC3339),
		LastSeenAt:   session.LastSeenAt().Format(time.RFC3339),
		TTL:          session.LastSeenAt().Add(sessionTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Debug("Session saved",
		zap.String("boardID", session.BoardID().String()),
		zap.String("userHash", session.UserHash()),
		zap.String("connectionID", session.ConnectionID()),
	)

	return nil
}

// GetByBoard retrieves all sessions on a board
func (r *SessionRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Session, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "SESSION#"},
		},
	}

	sessions := make([]*entities.Session, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query board sessions: %w", err)
		}
		for _, raw := range page.Items {
			var item sessionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal session item", zap.Error(err))
				continue
			}

			connectedAt, _ := time.Parse(time.RFC3339, item.ConnectedAt)
			lastSeenAt, _ := time.Parse(time.RFC3339, item.LastSeenAt)

			sessions = append(sessions, entities.ReconstructSession(
				boardID,
				item.UserHash,
				item.UserAlias,
				item.ConnectionID,
				connectedAt,
				lastSeenAt,
			))
		}
	}

	return sessions, nil
}

// Delete removes a user's session on a board
func (r *SessionRepository) Delete(ctx context.Context, boardID valueobjects.BoardID, userHash string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       sessionKey(boardID, userHash),
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteByBoard removes all sessions on a board and returns the number deleted
func (r *SessionRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "SESSION#"},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	keys := make([]map[string]types.AttributeValue, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to query board sessions for deletion: %w", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}
	}

	if err := batchDeleteKeys(ctx, r.client, r.tableName, keys); err != nil {
		return 0, fmt.Errorf("failed to batch delete sessions: %w", err)
	}

	r.logger.Info("Board sessions deleted",
		zap.String("boardID", boardID.String()),
		zap.Int("count", len(keys)),
	)

	return len(keys), nil
}
