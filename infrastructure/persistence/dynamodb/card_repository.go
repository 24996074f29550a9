package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

// CardRepository implements the CardRepository interface using DynamoDB.
// Cards live under their board partition so a single Query serves full-board
// reads; GSI1 provides direct lookup by card ID.
type CardRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.CardRepository = (*CardRepository)(nil)

// NewCardRepository creates a new CardRepository
func NewCardRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *CardRepository {
	return &CardRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// cardItem represents the DynamoDB item structure for a card
type cardItem struct {
	PK              string   `dynamodbav:"PK"`                 // BOARD#<board_id>
	SK              string   `dynamodbav:"SK"`                 // CARD#<card_id>
	GSI1PK          string   `dynamodbav:"GSI1PK,omitempty"`   // CARD#<card_id> for direct lookup
	GSI1SK          string   `dynamodbav:"GSI1SK,omitempty"`   // Always "METADATA" for cards
	EntityType      string   `dynamodbav:"EntityType"`
	CardID          string   `dynamodbav:"CardID"`
	BoardID         string   `dynamodbav:"BoardID"`
	ColumnID        string   `dynamodbav:"ColumnID"`
	Text            string   `dynamodbav:"Text"`
	CardType        string   `dynamodbav:"CardType"`
	Anonymous       bool     `dynamodbav:"Anonymous"`
	CreatorHash     string   `dynamodbav:"CreatorHash"`
	CreatorAlias    string   `dynamodbav:"CreatorAlias,omitempty"`
	ParentID        string   `dynamodbav:"ParentID,omitempty"`
	LinkedFeedback  []string `dynamodbav:"LinkedFeedback,omitempty"`
	DirectCount     int      `dynamodbav:"DirectCount"`
	AggregatedCount int      `dynamodbav:"AggregatedCount"`
	CreatedAt       string   `dynamodbav:"CreatedAt"`
	UpdatedAt       string   `dynamodbav:"UpdatedAt"`
	Version         int      `dynamodbav:"Version"`
}

func cardKey(boardID valueobjects.BoardID, cardID valueobjects.CardID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", cardID.String())},
	}
}

func cardToItem(card *entities.Card) cardItem {
	item := cardItem{
		PK:              fmt.Sprintf("BOARD#%s", card.BoardID().String()),
		SK:              fmt.Sprintf("CARD#%s", card.ID().String()),
		GSI1PK:          fmt.Sprintf("CARD#%s", card.ID().String()),
		GSI1SK:          "METADATA",
		EntityType:      "CARD",
		CardID:          card.ID().String(),
		BoardID:         card.BoardID().String(),
		ColumnID:        card.ColumnID(),
		Text:            card.Text().String(),
		CardType:        string(card.Type()),
		Anonymous:       card.IsAnonymous(),
		CreatorHash:     card.CreatorHash(),
		CreatorAlias:    card.CreatorAlias(),
		DirectCount:     card.DirectReactionCount(),
		AggregatedCount: card.AggregatedReactionCount(),
		CreatedAt:       card.CreatedAt().Format(time.RFC3339),
		UpdatedAt:       card.UpdatedAt().Format(time.RFC3339),
		Version:         card.Version(),
	}

	if parentID, ok := card.ParentID(); ok {
		item.ParentID = parentID.String()
	}
	for _, id := range card.LinkedFeedbackIDs() {
		item.LinkedFeedback = append(item.LinkedFeedback, id.String())
	}

	return item
}

func itemToCard(item cardItem) (*entities.Card, error) {
	cardID, err := valueobjects.NewCardIDFromString(item.CardID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored card ID: %w", err)
	}
	boardID, err := valueobjects.NewBoardIDFromString(item.BoardID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored board ID: %w", err)
	}
	text, err := valueobjects.NewCardText(item.Text)
	if err != nil {
		return nil, fmt.Errorf("invalid stored card text: %w", err)
	}

	var parentID *valueobjects.CardID
	if item.ParentID != "" {
		pid, err := valueobjects.NewCardIDFromString(item.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid stored parent ID: %w", err)
		}
		parentID = &pid
	}

	linked := make([]valueobjects.CardID, 0, len(item.LinkedFeedback))
	for _, raw := range item.LinkedFeedback {
		id, err := valueobjects.NewCardIDFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored linked feedback ID: %w", err)
		}
		linked = append(linked, id)
	}

	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)

	return entities.ReconstructCard(
		cardID,
		boardID,
		item.ColumnID,
		text,
		entities.CardType(item.CardType),
		item.Anonymous,
		item.CreatorHash,
		item.CreatorAlias,
		parentID,
		linked,
		item.DirectCount,
		item.AggregatedCount,
		createdAt,
		updatedAt,
	)
}

// Save persists a card to DynamoDB
func (r *CardRepository) Save(ctx context.Context, card *entities.Card) error {
	item := cardToItem(card)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save card to DynamoDB",
			zap.Error(err),
			zap.String("cardID", card.ID().String()),
		)
		return fmt.Errorf("failed to save card: %w", err)
	}

	r.logger.Debug("Card saved",
		zap.String("cardID", card.ID().String()),
		zap.String("boardID", card.BoardID().String()),
	)

	return nil
}

// GetByID retrieves a card by its ID using GSI1
func (r *CardRepository) GetByID(ctx context.Context, id valueobjects.CardID) (*entities.Card, error) {
	item, err := r.getItemByCardID(ctx, id)
	if err != nil {
		return nil, err
	}
	return itemToCard(*item)
}

func (r *CardRepository) getItemByCardID(ctx context.Context, id valueobjects.CardID) (*cardItem, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CARD#%s", id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.ErrCardNotFound.WithDetail("card_id", id.String())
	}

	var item cardItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	return &item, nil
}

// GetByBoard retrieves all cards on a board
func (r *CardRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Card, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "CARD#"},
		},
	}

	cards := make([]*entities.Card, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query board cards: %w", err)
		}
		for _, raw := range page.Items {
			var item cardItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal card item", zap.Error(err))
				continue
			}
			card, err := itemToCard(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct card",
					zap.String("cardID", item.CardID),
					zap.Error(err),
				)
				continue
			}
			cards = append(cards, card)
		}
	}

	return cards, nil
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id valueobjects.CardID) error {
	item, err := r.getItemByCardID(ctx, id)
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	r.logger.Debug("Card deleted",
		zap.String("cardID", id.String()),
		zap.String("boardID", item.BoardID),
	)

	return nil
}

// DeleteByBoard removes all cards on a board and returns the number deleted
func (r *CardRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk": &types.AttributeValueMemberS{Value: "CARD#"},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	keys := make([]map[string]types.AttributeValue, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to query board cards for deletion: %w", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}
	}

	if err := batchDeleteKeys(ctx, r.client, r.tableName, keys); err != nil {
		return 0, fmt.Errorf("failed to batch delete cards: %w", err)
	}

	r.logger.Info("Board cards deleted",
		zap.String("boardID", boardID.String()),
		zap.Int("count", len(keys)),
	)

	return len(keys), nil
}

// CountUserCards counts cards of the given type a user has on a board
func (r *CardRepository) CountUserCards(ctx context.Context, boardID valueobjects.BoardID, userHash string, cardType entities.CardType) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		FilterExpression:       aws.String("CreatorHash = :creator AND CardType = :cardType"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":       &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk":       &types.AttributeValueMemberS{Value: "CARD#"},
			":creator":  &types.AttributeValueMemberS{Value: userHash},
			":cardType": &types.AttributeValueMemberS{Value: string(cardType)},
		},
		Select: types.SelectCount,
	}

	count := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count user cards: %w", err)
		}
		count += int(page.Count)
	}

	return count, nil
}

// IncrementReactionCounts atomically adjusts both the direct and aggregated
// counts of a card by delta and returns the resulting values. Decrements are
// floored at zero rather than failing.
func (r *CardRepository) IncrementReactionCounts(ctx context.Context, id valueobjects.CardID, delta int) (int, int, error) {
	item, err := r.getItemByCardID(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: item.PK},
		"SK": &types.AttributeValueMemberS{Value: item.SK},
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key,
		UpdateExpression: aws.String("ADD DirectCount :delta, AggregatedCount :delta SET UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	// A decrement may only fire while there is something to subtract; the
	// aggregated count is never below the direct count on the same card, so
	// one condition covers both.
	if delta < 0 {
		input.ConditionExpression = aws.String("DirectCount >= :abs")
		input.ExpressionAttributeValues[":abs"] = &types.AttributeValueMemberN{Value: strconv.Itoa(-delta)}
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionalFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalFailed) {
			return r.floorCounts(ctx, key, id)
		}
		return 0, 0, fmt.Errorf("failed to adjust reaction counts: %w", err)
	}

	var updated cardItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, 0, fmt.Errorf("failed to unmarshal updated counts: %w", err)
	}

	return updated.DirectCount, updated.AggregatedCount, nil
}

// floorCounts repairs a card whose stored counts drifted below a pending
// decrement. It pins the direct count to zero and drops the aggregated count
// by whatever the direct count still held.
func (r *CardRepository) floorCounts(ctx context.Context, key map[string]types.AttributeValue, id valueobjects.CardID) (int, int, error) {
	r.logger.Warn("Reaction count decrement hit floor, repairing",
		zap.String("cardID", id.String()),
	)

	item, err := r.getItemByCardID(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	aggregated := item.AggregatedCount - item.DirectCount
	if aggregated < 0 {
		aggregated = 0
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key,
		UpdateExpression: aws.String("SET DirectCount = :zero, AggregatedCount = :agg, UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":agg":  &types.AttributeValueMemberN{Value: strconv.Itoa(aggregated)},
			":now":  &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return 0, 0, fmt.Errorf("failed to floor reaction counts: %w", err)
	}

	return 0, aggregated, nil
}

// IncrementAggregatedCount atomically adjusts only the aggregated count of a
// card, used when a child's reactions propagate to its parent. Floored at zero.
func (r *CardRepository) IncrementAggregatedCount(ctx context.Context, id valueobjects.CardID, delta int) (int, error) {
	item, err := r.getItemByCardID(ctx, id)
	if err != nil {
		return 0, err
	}

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: item.PK},
		"SK": &types.AttributeValueMemberS{Value: item.SK},
	}

	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              key,
		UpdateExpression: aws.String("ADD AggregatedCount :delta SET UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":now":   &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	if delta < 0 {
		input.ConditionExpression = aws.String("AggregatedCount >= :abs")
		input.ExpressionAttributeValues[":abs"] = &types.AttributeValueMemberN{Value: strconv.Itoa(-delta)}
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		var conditionalFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalFailed) {
			r.logger.Warn("Aggregated count decrement hit floor",
				zap.String("cardID", id.String()),
			)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to adjust aggregated count: %w", err)
	}

	var updated cardItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("failed to unmarshal updated count: %w", err)
	}

	return updated.AggregatedCount, nil
}

// OrphanChildren detaches every child of the given parent card and returns
// their IDs. Children keep their own reaction counts.
func (r *CardRepository) OrphanChildren(ctx context.Context, parentID valueobjects.CardID) ([]valueobjects.CardID, error) {
	parent, err := r.getItemByCardID(ctx, parentID)
	if err != nil {
		if pkgerrors.IsDomainErrorWithCode(err, pkgerrors.ErrCardNotFound.Code) {
			return nil, nil
		}
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		FilterExpression:       aws.String("ParentID = :parent"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: parent.PK},
			":sk":     &types.AttributeValueMemberS{Value: "CARD#"},
			":parent": &types.AttributeValueMemberS{Value: parentID.String()},
		},
		ProjectionExpression: aws.String("PK, SK, CardID"),
	}

	type childRef struct {
		key map[string]types.AttributeValue
		id  valueobjects.CardID
	}
	children := make([]childRef, 0)

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query children: %w", err)
		}
		for _, raw := range page.Items {
			var item cardItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				continue
			}
			id, err := valueobjects.NewCardIDFromString(item.CardID)
			if err != nil {
				continue
			}
			children = append(children, childRef{
				key: map[string]types.AttributeValue{
					"PK": raw["PK"],
					"SK": raw["SK"],
				},
				id: id,
			})
		}
	}

	orphaned := make([]valueobjects.CardID, 0, len(children))
	for _, child := range children {
		update := &dynamodb.UpdateItemInput{
			TableName:        aws.String(r.tableName),
			Key:              child.key,
			UpdateExpression: aws.String("REMOVE ParentID SET UpdatedAt = :now"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
			},
		}
		if _, err := r.client.UpdateItem(ctx, update); err != nil {
			r.logger.Error("Failed to orphan child card",
				zap.String("childID", child.id.String()),
				zap.String("parentID", parentID.String()),
				zap.Error(err),
			)
			continue
		}
		orphaned = append(orphaned, child.id)
	}

	if len(orphaned) > 0 {
		r.logger.Info("Children orphaned",
			zap.String("parentID", parentID.String()),
			zap.Int("count", len(orphaned)),
		)
	}

	return orphaned, nil
}

// ScrubLinkedFeedback removes a deleted feedback card's ID from every action
// card on the board that references it
func (r *CardRepository) ScrubLinkedFeedback(ctx context.Context, boardID valueobjects.BoardID, feedbackID valueobjects.CardID) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		FilterExpression:       aws.String("CardType = :action AND contains(LinkedFeedback, :fid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: fmt.Sprintf("BOARD#%s", boardID.String())},
			":sk":     &types.AttributeValueMemberS{Value: "CARD#"},
			":action": &types.AttributeValueMemberS{Value: string(entities.CardTypeAction)},
			":fid":    &types.AttributeValueMemberS{Value: feedbackID.String()},
		},
	}

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to query linked action cards: %w", err)
		}
		for _, raw := range page.Items {
			var item cardItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal action card item", zap.Error(err))
				continue
			}

			remaining := make([]string, 0, len(item.LinkedFeedback))
			for _, id := range item.LinkedFeedback {
				if id != feedbackID.String() {
					remaining = append(remaining, id)
				}
			}

			update := &dynamodb.UpdateItemInput{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": raw["PK"],
					"SK": raw["SK"],
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
				},
			}

			if len(remaining) == 0 {
				update.UpdateExpression = aws.String("REMOVE LinkedFeedback SET UpdatedAt = :now")
			} else {
				links, err := attributevalue.MarshalList(remaining)
				if err != nil {
					return fmt.Errorf("failed to marshal remaining links: %w", err)
				}
				update.UpdateExpression = aws.String("SET LinkedFeedback = :links, UpdatedAt = :now")
				update.ExpressionAttributeValues[":links"] = &types.AttributeValueMemberL{Value: links}
			}

			if _, err := r.client.UpdateItem(ctx, update); err != nil {
				r.logger.Error("Failed to scrub linked feedback from action card",
					zap.String("actionID", item.CardID),
					zap.String("feedbackID", feedbackID.String()),
					zap.Error(err),
				)
				continue
			}
		}
	}

	return nil
}

// batchDeleteKeys deletes items in chunks of 25, the BatchWriteItem limit.
// Unprocessed keys are retried once before giving up.
func batchDeleteKeys(ctx context.Context, client *dynamodb.Client, tableName string, keys []map[string]types.AttributeValue) error {
	const batchSize = 25

	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				tableName: requests,
			},
		}

		result, err := client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("batch delete failed: %w", err)
		}

		if unprocessed, ok := result.UnprocessedItems[tableName]; ok && len(unprocessed) > 0 {
			retry := &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					tableName: unprocessed,
				},
			}
			if _, err := client.BatchWriteItem(ctx, retry); err != nil {
				return fmt.Errorf("batch delete retry failed: %w", err)
			}
		}
	}

	return nil
}
