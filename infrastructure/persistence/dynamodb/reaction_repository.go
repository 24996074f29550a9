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

// ReactionRepository implements the ReactionRepository interface using
// DynamoDB. Reactions are keyed per card and user, which makes the per-user
// uniqueness rule a property of the key itself; GSI1 groups a user's
// reactions across a whole board for quota counting.
type ReactionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.ReactionRepository = (*ReactionRepository)(nil)

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ReactionRepository {
	return &ReactionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// reactionItem represents the DynamoDB item structure for a reaction
type reactionItem struct {
	PK           string `dynamodbav:"PK"`     // CARD#<card_id>
	SK           string `dynamodbav:"SK"`     // REACTION#<user_hash>
	GSI1PK       string `dynamodbav:"GSI1PK"` // BOARD#<board_id>
	GSI1SK       string `dynamodbav:"GSI1SK"` // USER#<user_hash>#CARD#<card_id>
	EntityType   string `dynamodbav:"EntityType"`
	CardID       string `dynamodbav:"CardID"`
	BoardID      string `dynamodbav:"BoardID"`
	UserHash     string `dynamodbav:"UserHash"`
	UserAlias    string `dynamodbav:"UserAlias,omitempty"`
	ReactionType string `dynamodbav:"ReactionType"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	UpdatedAt    string `dynamodbav:"UpdatedAt"`
}

func reactionKey(cardID valueobjects.CardID, userHash string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", cardID.String())},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("REACTION#%s", userHash)},
	}
}

func itemToReaction(item reactionItem) (*entities.Reaction, error) {
	cardID, err := valueobjects.NewCardIDFromString(item.CardID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored card ID: %w", err)
	}
	boardID, err := valueobjects.NewBoardIDFromString(item.BoardID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored board ID: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return entities.ReconstructReaction(
		cardID,
		boardID,
		item.UserHash,
		item.UserAlias,
		entities.ReactionType(item.ReactionType),
		createdAt,
		updatedAt,
	), nil
}

// Upsert writes a reaction and reports whether it was a genuinely new
// insert. A repeat by the same user refreshes alias and timestamp in place;
// the returned flag is what decides whether any counter moves.
func (r *ReactionRepository) Upsert(ctx context.Context, reaction *entities.Reaction) (bool, error) {
	now := time.Now().Format(time.RFC3339)

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       reactionKey(reaction.CardID(), reaction.UserHash()),
		UpdateExpression: aws.String(
			"SET GSI1PK = :gsi1pk, GSI1SK = :gsi1sk, EntityType = :entityType, " +
				"CardID = :cardId, BoardID = :boardId, UserHash = :userHash, " +
				"UserAlias = :userAlias, ReactionType = :reactionType, " +
				"CreatedAt = if_not_exists(CreatedAt, :now), UpdatedAt = :now",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":gsi1pk":       &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", reaction.BoardID().String())},
			":gsi1sk":       &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s#CARD#%s", reaction.UserHash(), reaction.CardID().String())},
			":entityType":   &types.AttributeValueMemberS{Value: "REACTION"},
			":cardId":       &types.AttributeValueMemberS{Value: reaction.CardID().String()},
			":boardId":      &types.AttributeValueMemberS{Value: reaction.BoardID().String()},
			":userHash":     &types.AttributeValueMemberS{Value: reaction.UserHash()},
			":userAlias":    &types.AttributeValueMemberS{Value: reaction.UserAlias()},
			":reactionType": &types.AttributeValueMemberS{Value: string(reaction.Type())},
			":now":          &types.AttributeValueMemberS{Value: now},
		},
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to upsert reaction: %w", err)
	}

	// No prior attributes means the update created the item
	inserted := len(result.Attributes) == 0

	r.logger.Debug("Reaction upserted",
		zap.String("cardID", reaction.CardID().String()),
		zap.String("userHash", reaction.UserHash()),
		zap.Bool("inserted", inserted),
	)

	return inserted, nil
}

// GetByCardAndUser retrieves a user's reaction on a card, nil when absent
func (r *ReactionRepository) GetByCardAndUser(ctx context.Context, cardID valueobjects.CardID, userHash string) (*entities.Reaction, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       reactionKey(cardID, userHash),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item reactionItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reaction: %w", err)
	}

	return itemToReaction(item)
}

// GetByCard retrieves all reactions on a card
func (r *ReactionRepository) GetByCard(ctx context.Context, cardID valueobjects.CardID) ([]*entities.Reaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", cardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "REACTION#"},
		},
	}

	reactions := make([]*entities.Reaction, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query card reactions: %w", err)
		}
		for _, raw := range page.Items {
			var item reactionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal reaction item", zap.Error(err))
				continue
			}
			reaction, err := itemToReaction(item)
			if err != nil {
				continue
			}
			reactions = append(reactions, reaction)
		}
	}

	return reactions, nil
}

// Delete removes a user's reaction from a card and reports whether one
// actually existed
func (r *ReactionRepository) Delete(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          reactionKey(cardID, userHash),
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := r.client.DeleteItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to delete reaction: %w", err)
	}

	existed := len(result.Attributes) > 0

	r.logger.Debug("Reaction deleted",
		zap.String("cardID", cardID.String()),
		zap.String("userHash", userHash),
		zap.Bool("existed", existed),
	)

	return existed, nil
}

// DeleteByCard removes all reactions on a card and returns the number deleted
func (r *ReactionRepository) DeleteByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", cardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "REACTION#"},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	keys := make([]map[string]types.AttributeValue, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to query card reactions for deletion: %w", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}
	}

	if err := batchDeleteKeys(ctx, r.client, r.tableName, keys); err != nil {
		return 0, fmt.Errorf("failed to batch delete reactions: %w", err)
	}

	return len(keys), nil
}

// DeleteByCards removes all reactions on the given cards
func (r *ReactionRepository) DeleteByCards(ctx context.Context, cardIDs []valueobjects.CardID) (int, error) {
	total := 0
	for _, cardID := range cardIDs {
		deleted, err := r.DeleteByCard(ctx, cardID)
		if err != nil {
			return total, err
		}
		total += deleted
	}

	if total > 0 {
		r.logger.Info("Reactions deleted across cards",
			zap.Int("cards", len(cardIDs)),
			zap.Int("reactions", total),
		)
	}

	return total, nil
}

// CountUserReactionsOnBoard counts a user's reactions across a whole board
func (r *ReactionRepository) CountUserReactionsOnBoard(ctx context.Context, boardID valueobjects.BoardID, userHash string) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s#CARD#", userHash)},
		},
		Select: types.SelectCount,
	}

	count := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count user reactions: %w", err)
		}
		count += int(page.Count)
	}

	return count, nil
}

// CountByCard counts the reactions on a single card
func (r *ReactionRepository) CountByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", cardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "REACTION#"},
		},
		Select: types.SelectCount,
	}

	count := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count card reactions: %w", err)
		}
		count += int(page.Count)
	}

	return count, nil
}

// HasUserReacted reports whether a user already has a reaction on a card
func (r *ReactionRepository) HasUserReacted(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName:            aws.String(r.tableName),
		Key:                  reactionKey(cardID, userHash),
		ProjectionExpression: aws.String("PK"),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to check reaction: %w", err)
	}

	return result.Item != nil, nil
}
