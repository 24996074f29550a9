package dynamodb

import (
	"context"
	"fmt"
	"time"

	"retroboard-backend/application/ports"
	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	pkgerrors "retroboard-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// BoardRepository implements the BoardRepository interface using DynamoDB.
// The board metadata item shares the BOARD#<id> partition with its cards.
type BoardRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.BoardRepository = (*BoardRepository)(nil)

// NewBoardRepository creates a new BoardRepository. The concrete type is
// returned because Save sits outside the read-side port and is used by
// seeding tools.
func NewBoardRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *BoardRepository {
	return &BoardRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// boardItem represents the DynamoDB item structure for board metadata
type boardItem struct {
	PK                   string   `dynamodbav:"PK"` // BOARD#<board_id>
	SK                   string   `dynamodbav:"SK"` // METADATA
	EntityType           string   `dynamodbav:"EntityType"`
	BoardID              string   `dynamodbav:"BoardID"`
	Name                 string   `dynamodbav:"Name"`
	BoardState           string   `dynamodbav:"BoardState"`
	Columns              []string `dynamodbav:"Columns"`
	Admins               []string `dynamodbav:"Admins,omitempty"`
	CardLimitPerUser     *int     `dynamodbav:"CardLimitPerUser,omitempty"`
	ReactionLimitPerUser *int     `dynamodbav:"ReactionLimitPerUser,omitempty"`
	CreatedAt            string   `dynamodbav:"CreatedAt"`
	UpdatedAt            string   `dynamodbav:"UpdatedAt"`
}

func boardKey(id valueobjects.BoardID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", id.String())},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// GetByID retrieves a board's metadata
func (r *BoardRepository) GetByID(ctx context.Context, id valueobjects.BoardID) (*entities.Board, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       boardKey(id),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.ErrBoardNotFound.WithDetail("board_id", id.String())
	}

	var item boardItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return entities.ReconstructBoard(
		id,
		item.Name,
		entities.BoardState(item.BoardState),
		item.Columns,
		item.Admins,
		item.CardLimitPerUser,
		item.ReactionLimitPerUser,
		createdAt,
		updatedAt,
	)
}

// Save persists a board's metadata
func (r *BoardRepository) Save(ctx context.Context, board *entities.Board) error {
	item := boardItem{
		PK:         fmt.Sprintf("BOARD#%s", board.ID().String()),
		SK:         "METADATA",
		EntityType: "BOARD",
		BoardID:    board.ID().String(),
		Name:       board.Name(),
		BoardState: string(board.State()),
		Columns:    board.Columns(),
		CreatedAt:  board.CreatedAt().Format(time.RFC3339),
		UpdatedAt:  board.UpdatedAt().Format(time.RFC3339),
	}

	if limit, ok := board.CardLimitPerUser(); ok {
		item.CardLimitPerUser = &limit
	}
	if limit, ok := board.ReactionLimitPerUser(); ok {
		item.ReactionLimitPerUser = &limit
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}

	r.logger.Debug("Board saved",
		zap.String("boardID", board.ID().String()),
		zap.String("state", string(board.State())),
	)

	return nil
}

// Reopen flips a board back to the active state
func (r *BoardRepository) Reopen(ctx context.Context, id valueobjects.BoardID) error {
	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 boardKey(id),
		UpdateExpression:    aws.String("SET BoardState = :active, UpdatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberS{Value: string(entities.BoardStateActive)},
			":now":    &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to reopen board: %w", err)
	}

	r.logger.Info("Board reopened", zap.String("boardID", id.String()))

	return nil
}
