package dynamodb

import (
	"context"
	"fmt"
	"strconv"
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

// DynamoDBUnitOfWork collects writes from the transaction-scoped
// repositories and commits them in a single TransactWriteItems call. Reads
// inside the transaction go straight to the table; only mutations are
// deferred. An instance serves exactly one operation and is not safe for
// concurrent use; handlers obtain a fresh one from the factory per call.
type DynamoDBUnitOfWork struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger

	cardRepo     *CardRepository
	reactionRepo *ReactionRepository
	sessionRepo  *SessionRepository

	active bool
	items  []types.TransactWriteItem
}

// transactItemLimit is the DynamoDB ceiling for a single transaction.
const transactItemLimit = 100

var _ ports.UnitOfWork = (*DynamoDBUnitOfWork)(nil)

// NewDynamoDBUnitOfWork creates a new unit of work
func NewDynamoDBUnitOfWork(
	client *dynamodb.Client,
	tableName string,
	cardRepo *CardRepository,
	reactionRepo *ReactionRepository,
	sessionRepo *SessionRepository,
	logger *zap.Logger,
) *DynamoDBUnitOfWork {
	return &DynamoDBUnitOfWork{
		client:       client,
		tableName:    tableName,
		cardRepo:     cardRepo,
		reactionRepo: reactionRepo,
		sessionRepo:  sessionRepo,
		logger:       logger,
	}
}

// Begin starts a new transaction
func (uow *DynamoDBUnitOfWork) Begin(ctx context.Context) error {
	if uow.active {
		return fmt.Errorf("transaction already active")
	}
	uow.active = true
	uow.items = uow.items[:0]
	return nil
}

// Commit flushes all registered writes in one transaction
func (uow *DynamoDBUnitOfWork) Commit(ctx context.Context) error {
	if !uow.active {
		return fmt.Errorf("no active transaction")
	}
	defer func() {
		uow.active = false
		uow.items = nil
	}()

	if len(uow.items) == 0 {
		return nil
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: uow.items,
	}

	if _, err := uow.client.TransactWriteItems(ctx, input); err != nil {
		uow.logger.Error("Transaction commit failed",
			zap.Int("items", len(uow.items)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	uow.logger.Debug("Transaction committed", zap.Int("items", len(uow.items)))

	return nil
}

// Rollback discards all registered writes
func (uow *DynamoDBUnitOfWork) Rollback() error {
	if !uow.active {
		return nil
	}
	uow.active = false
	uow.items = nil
	return nil
}

func (uow *DynamoDBUnitOfWork) register(item types.TransactWriteItem) error {
	if !uow.active {
		return fmt.Errorf("no active transaction")
	}
	if len(uow.items) >= transactItemLimit {
		return fmt.Errorf("transaction exceeds %d item limit", transactItemLimit)
	}
	uow.items = append(uow.items, item)
	return nil
}

// CardRepository returns the card repository bound to this transaction
func (uow *DynamoDBUnitOfWork) CardRepository() ports.CardRepository {
	return &txCardRepository{uow: uow}
}

// ReactionRepository returns the reaction repository bound to this transaction
func (uow *DynamoDBUnitOfWork) ReactionRepository() ports.ReactionRepository {
	return &txReactionRepository{uow: uow}
}

// SessionRepository returns the session repository bound to this transaction
func (uow *DynamoDBUnitOfWork) SessionRepository() ports.SessionRepository {
	return &txSessionRepository{uow: uow}
}

// txCardRepository defers card writes to the surrounding transaction. Reads
// pass through to the base repository.
type txCardRepository struct {
	uow *DynamoDBUnitOfWork
}

func (r *txCardRepository) Save(ctx context.Context, card *entities.Card) error {
	av, err := attributevalue.MarshalMap(cardToItem(card))
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	return r.uow.register(types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.uow.tableName),
			Item:      av,
		},
	})
}

func (r *txCardRepository) GetByID(ctx context.Context, id valueobjects.CardID) (*entities.Card, error) {
	return r.uow.cardRepo.GetByID(ctx, id)
}

func (r *txCardRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Card, error) {
	return r.uow.cardRepo.GetByBoard(ctx, boardID)
}

func (r *txCardRepository) Delete(ctx context.Context, id valueobjects.CardID) error {
	item, err := r.uow.cardRepo.getItemByCardID(ctx, id)
	if err != nil {
		return err
	}

	return r.uow.register(types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.uow.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
		},
	})
}

func (r *txCardRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	return 0, fmt.Errorf("board-wide card deletion is not supported inside a transaction")
}

func (r *txCardRepository) CountUserCards(ctx context.Context, boardID valueobjects.BoardID, userHash string, cardType entities.CardType) (int, error) {
	return r.uow.cardRepo.CountUserCards(ctx, boardID, userHash, cardType)
}

// IncrementReactionCounts registers an atomic ADD against the card and
// returns the counts the card will hold once the transaction commits. The
// conditional guard keeps a concurrent mutation from invalidating the
// projection: the transaction fails instead of committing stale numbers.
func (r *txCardRepository) IncrementReactionCounts(ctx context.Context, id valueobjects.CardID, delta int) (int, int, error) {
	item, err := r.uow.cardRepo.getItemByCardID(ctx, id)
	if err != nil {
		return 0, 0, err
	}

	update := &types.Update{
		TableName: aws.String(r.uow.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
		UpdateExpression:    aws.String("ADD DirectCount :delta, AggregatedCount :delta SET UpdatedAt = :now"),
		ConditionExpression: aws.String("DirectCount = :current"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta":   &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":current": &types.AttributeValueMemberN{Value: strconv.Itoa(item.DirectCount)},
			":now":     &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	}

	if err := r.uow.register(types.TransactWriteItem{Update: update}); err != nil {
		return 0, 0, err
	}

	return item.DirectCount + delta, item.AggregatedCount + delta, nil
}

func (r *txCardRepository) IncrementAggregatedCount(ctx context.Context, id valueobjects.CardID, delta int) (int, error) {
	item, err := r.uow.cardRepo.getItemByCardID(ctx, id)
	if err != nil {
		return 0, err
	}

	update := &types.Update{
		TableName: aws.String(r.uow.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
		UpdateExpression:    aws.String("ADD AggregatedCount :delta SET UpdatedAt = :now"),
		ConditionExpression: aws.String("AggregatedCount = :current"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta":   &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":current": &types.AttributeValueMemberN{Value: strconv.Itoa(item.AggregatedCount)},
			":now":     &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	}

	if err := r.uow.register(types.TransactWriteItem{Update: update}); err != nil {
		return 0, err
	}

	return item.AggregatedCount + delta, nil
}

func (r *txCardRepository) OrphanChildren(ctx context.Context, parentID valueobjects.CardID) ([]valueobjects.CardID, error) {
	return nil, fmt.Errorf("orphaning children is not supported inside a transaction")
}

func (r *txCardRepository) ScrubLinkedFeedback(ctx context.Context, boardID valueobjects.BoardID, feedbackID valueobjects.CardID) error {
	return fmt.Errorf("scrubbing linked feedback is not supported inside a transaction")
}

// txReactionRepository defers reaction writes to the surrounding transaction
type txReactionRepository struct {
	uow *DynamoDBUnitOfWork
}

// Upsert decides insert-versus-refresh with a read, then registers the
// matching write guarded by a condition. A racing writer makes the whole
// transaction fail rather than double-counting.
func (r *txReactionRepository) Upsert(ctx context.Context, reaction *entities.Reaction) (bool, error) {
	existed, err := r.uow.reactionRepo.HasUserReacted(ctx, reaction.CardID(), reaction.UserHash())
	if err != nil {
		return false, err
	}

	now := time.Now().Format(time.RFC3339)
	key := reactionKey(reaction.CardID(), reaction.UserHash())

	if existed {
		update := &types.Update{
			TableName:           aws.String(r.uow.tableName),
			Key:                 key,
			UpdateExpression:    aws.String("SET UserAlias = :alias, UpdatedAt = :now"),
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":alias": &types.AttributeValueMemberS{Value: reaction.UserAlias()},
				":now":   &types.AttributeValueMemberS{Value: now},
			},
		}
		if err := r.uow.register(types.TransactWriteItem{Update: update}); err != nil {
			return false, err
		}
		return false, nil
	}

	item := reactionItem{
		PK:           fmt.Sprintf("CARD#%s", reaction.CardID().String()),
		SK:           fmt.Sprintf("REACTION#%s", reaction.UserHash()),
		GSI1PK:       fmt.Sprintf("BOARD#%s", reaction.BoardID().String()),
		GSI1SK:       fmt.Sprintf("USER#%s#CARD#%s", reaction.UserHash(), reaction.CardID().String()),
		EntityType:   "REACTION",
		CardID:       reaction.CardID().String(),
		BoardID:      reaction.BoardID().String(),
		UserHash:     reaction.UserHash(),
		UserAlias:    reaction.UserAlias(),
		ReactionType: string(reaction.Type()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, fmt.Errorf("failed to marshal reaction: %w", err)
	}

	put := &types.Put{
		TableName:           aws.String(r.uow.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}
	if err := r.uow.register(types.TransactWriteItem{Put: put}); err != nil {
		return false, err
	}

	return true, nil
}

func (r *txReactionRepository) GetByCardAndUser(ctx context.Context, cardID valueobjects.CardID, userHash string) (*entities.Reaction, error) {
	return r.uow.reactionRepo.GetByCardAndUser(ctx, cardID, userHash)
}

func (r *txReactionRepository) GetByCard(ctx context.Context, cardID valueobjects.CardID) ([]*entities.Reaction, error) {
	return r.uow.reactionRepo.GetByCard(ctx, cardID)
}

func (r *txReactionRepository) Delete(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	existed, err := r.uow.reactionRepo.HasUserReacted(ctx, cardID, userHash)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}

	del := &types.Delete{
		TableName:           aws.String(r.uow.tableName),
		Key:                 reactionKey(cardID, userHash),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}
	if err := r.uow.register(types.TransactWriteItem{Delete: del}); err != nil {
		return false, err
	}

	return true, nil
}

func (r *txReactionRepository) DeleteByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	return 0, fmt.Errorf("card-wide reaction deletion is not supported inside a transaction")
}

func (r *txReactionRepository) DeleteByCards(ctx context.Context, cardIDs []valueobjects.CardID) (int, error) {
	return 0, fmt.Errorf("bulk reaction deletion is not supported inside a transaction")
}

func (r *txReactionRepository) CountUserReactionsOnBoard(ctx context.Context, boardID valueobjects.BoardID, userHash string) (int, error) {
	return r.uow.reactionRepo.CountUserReactionsOnBoard(ctx, boardID, userHash)
}

func (r *txReactionRepository) CountByCard(ctx context.Context, cardID valueobjects.CardID) (int, error) {
	return r.uow.reactionRepo.CountByCard(ctx, cardID)
}

func (r *txReactionRepository) HasUserReacted(ctx context.Context, cardID valueobjects.CardID, userHash string) (bool, error) {
	return r.uow.reactionRepo.HasUserReacted(ctx, cardID, userHash)
}

// txSessionRepository defers session writes to the surrounding transaction
type txSessionRepository struct {
	uow *DynamoDBUnitOfWork
}

func (r *txSessionRepository) Save(ctx context.Context, session *entities.Session) error {
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

	return r.uow.register(types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(r.uow.tableName),
			Item:      av,
		},
	})
}

func (r *txSessionRepository) GetByBoard(ctx context.Context, boardID valueobjects.BoardID) ([]*entities.Session, error) {
	return r.uow.sessionRepo.GetByBoard(ctx, boardID)
}

func (r *txSessionRepository) Delete(ctx context.Context, boardID valueobjects.BoardID, userHash string) error {
	return r.uow.register(types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.uow.tableName),
			Key:       sessionKey(boardID, userHash),
		},
	})
}

func (r *txSessionRepository) DeleteByBoard(ctx context.Context, boardID valueobjects.BoardID) (int, error) {
	return 0, fmt.Errorf("board-wide session deletion is not supported inside a transaction")
}
