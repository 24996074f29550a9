package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"retroboard-backend/domain/core/valueobjects"
	"retroboard-backend/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoDBEventStore implements the EventStore interface using DynamoDB.
// Events carry outbox fields so a background processor can relay them to the
// event bus without losing writes that raced a publish failure.
type DynamoDBEventStore struct {
	client    *dynamodb.Client
	tableName string
}

// PublishStatus represents the publishing status of an event
type PublishStatus string

const (
	PublishStatusPending   PublishStatus = "pending"
	PublishStatusPublished PublishStatus = "published"
	PublishStatusFailed    PublishStatus = "failed"
)

// eventRetention bounds how long event history is kept before DynamoDB TTL
// removes it.
const eventRetention = 90 * 24 * time.Hour

// EventRecord represents how events are stored in DynamoDB
type EventRecord struct {
	PK            string                 `dynamodbav:"PK"` // EVENTS#<aggregate_id>
	SK            string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<event_id>
	EventID       string                 `dynamodbav:"EventID"`
	EventType     string                 `dynamodbav:"EventType"`
	AggregateID   string                 `dynamodbav:"AggregateID"`
	AggregateType string                 `dynamodbav:"AggregateType"`
	EventData     map[string]interface{} `dynamodbav:"EventData"`
	Timestamp     string                 `dynamodbav:"Timestamp"`
	Version       int                    `dynamodbav:"Version"`

	// Outbox fields
	PublishStatus   string `dynamodbav:"PublishStatus"`
	PublishAttempts int    `dynamodbav:"PublishAttempts"`
	LastPublishTry  string `dynamodbav:"LastPublishTry,omitempty"`
	PublishedAt     string `dynamodbav:"PublishedAt,omitempty"`
	ErrorMessage    string `dynamodbav:"ErrorMessage,omitempty"`

	// GSI2 serves event-type queries across aggregates
	GSI2PK string `dynamodbav:"GSI2PK"` // EVENTTYPE#<type>
	GSI2SK string `dynamodbav:"GSI2SK"` // EVENT#<timestamp>

	TTL int64 `dynamodbav:"TTL,omitempty"`
}

// NewDynamoDBEventStore creates a new DynamoDB event store
func NewDynamoDBEventStore(client *dynamodb.Client, tableName string) *DynamoDBEventStore {
	return &DynamoDBEventStore{
		client:    client,
		tableName: tableName,
	}
}

// SaveEvents persists domain events to the event store
func (es *DynamoDBEventStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(domainEvents))

	for _, event := range domainEvents {
		record, err := es.eventToRecord(event)
		if err != nil {
			return fmt.Errorf("failed to convert event to record: %w", err)
		}

		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal event record: %w", err)
		}

		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: item,
			},
		})
	}

	// BatchWriteItem accepts at most 25 items per call
	for i := 0; i < len(writeRequests); i += 25 {
		end := i + 25
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		input := &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				es.tableName: writeRequests[i:end],
			},
		}

		result, err := es.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to write events batch: %w", err)
		}

		if len(result.UnprocessedItems) > 0 {
			return fmt.Errorf("failed to write %d events", len(result.UnprocessedItems[es.tableName]))
		}
	}

	return nil
}

// GetEvents retrieves all events for an aggregate in timestamp order
func (es *DynamoDBEventStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", aggregateID)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var allEvents []events.DomainEvent

	paginator := dynamodb.NewQueryPaginator(es.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}

		for _, item := range page.Items {
			var record EventRecord
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
			}

			event, err := es.recordToEvent(record)
			if err != nil {
				return nil, fmt.Errorf("failed to convert record to event: %w", err)
			}

			allEvents = append(allEvents, event)
		}
	}

	return allEvents, nil
}

// GetEventsByType retrieves the most recent events of a specific type
func (es *DynamoDBEventStore) GetEventsByType(ctx context.Context, eventType string, limit int) ([]events.DomainEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTTYPE#%s", eventType)},
		},
		ScanIndexForward: aws.Bool(false),
	}

	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := es.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by type: %w", err)
	}

	domainEvents := make([]events.DomainEvent, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}

		event, err := es.recordToEvent(record)
		if err != nil {
			return nil, fmt.Errorf("failed to convert record to event: %w", err)
		}

		domainEvents = append(domainEvents, event)
	}

	return domainEvents, nil
}

// DeleteEvents removes all events for an aggregate
func (es *DynamoDBEventStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EVENTS#%s", aggregateID)},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	keys := make([]map[string]types.AttributeValue, 0)
	paginator := dynamodb.NewQueryPaginator(es.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to query events for deletion: %w", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}
	}

	if err := batchDeleteKeys(ctx, es.client, es.tableName, keys); err != nil {
		return fmt.Errorf("failed to batch delete events: %w", err)
	}

	return nil
}

// DeleteEventsBatch removes all events for multiple aggregates
func (es *DynamoDBEventStore) DeleteEventsBatch(ctx context.Context, aggregateIDs []string) error {
	for _, id := range aggregateIDs {
		if err := es.DeleteEvents(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// eventToRecord converts a domain event to a DynamoDB record
func (es *DynamoDBEventStore) eventToRecord(event events.DomainEvent) (*EventRecord, error) {
	eventData := make(map[string]interface{})

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := json.Unmarshal(eventBytes, &eventData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event to map: %w", err)
	}

	timestamp := event.GetTimestamp()
	eventID := uuid.New().String()

	aggregateType := "card"
	if strings.HasPrefix(event.GetEventType(), "board.") {
		aggregateType = "board"
	}

	return &EventRecord{
		PK:            fmt.Sprintf("EVENTS#%s", event.GetAggregateID()),
		SK:            fmt.Sprintf("EVENT#%s#%s", timestamp.Format(time.RFC3339Nano), eventID),
		EventID:       eventID,
		EventType:     event.GetEventType(),
		AggregateID:   event.GetAggregateID(),
		AggregateType: aggregateType,
		EventData:     eventData,
		Timestamp:     timestamp.Format(time.RFC3339),
		Version:       event.GetVersion(),

		PublishStatus:   string(PublishStatusPending),
		PublishAttempts: 0,

		GSI2PK: fmt.Sprintf("EVENTTYPE#%s", event.GetEventType()),
		GSI2SK: fmt.Sprintf("EVENT#%s", timestamp.Format(time.RFC3339Nano)),
		TTL:    timestamp.Add(eventRetention).Unix(),
	}, nil
}

// recordToEvent converts a stored record back to a domain event. Types the
// factory does not know come back as the base event with the original type
// string intact.
func (es *DynamoDBEventStore) recordToEvent(record EventRecord) (events.DomainEvent, error) {
	timestamp, err := time.Parse(time.RFC3339, record.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	base := events.BaseEvent{
		AggregateID: record.AggregateID,
		EventType:   record.EventType,
		Timestamp:   timestamp,
		Version:     record.Version,
	}

	str := func(key string) string {
		v, _ := record.EventData[key].(string)
		return v
	}
	num := func(key string) int {
		if v, ok := record.EventData[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	cardID := func(key string) valueobjects.CardID {
		id, _ := valueobjects.NewCardIDFromString(str(key))
		return id
	}
	boardID := func(key string) valueobjects.BoardID {
		id, _ := valueobjects.NewBoardIDFromString(str(key))
		return id
	}

	switch record.EventType {
	case "card.created":
		anonymous, _ := record.EventData["anonymous"].(bool)
		return events.CardCreated{
			BaseEvent: base,
			CardID:    cardID("card_id"),
			BoardID:   boardID("board_id"),
			ColumnID:  str("column_id"),
			CardType:  str("card_type"),
			Text:      str("text"),
			Anonymous: anonymous,
			Alias:     str("alias"),
		}, nil

	case "card.deleted":
		var orphaned []string
		if raw, ok := record.EventData["orphaned_child_ids"].([]interface{}); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					orphaned = append(orphaned, s)
				}
			}
		}
		return events.CardDeleted{
			BaseEvent:        base,
			CardID:           cardID("card_id"),
			BoardID:          boardID("board_id"),
			CardType:         str("card_type"),
			OrphanedChildIDs: orphaned,
		}, nil

	case "cards.linked":
		return events.CardsLinked{
			BaseEvent: base,
			SourceID:  cardID("source_id"),
			TargetID:  cardID("target_id"),
			BoardID:   boardID("board_id"),
			LinkType:  str("link_type"),
		}, nil

	case "cards.unlinked":
		return events.CardsUnlinked{
			BaseEvent: base,
			SourceID:  cardID("source_id"),
			TargetID:  cardID("target_id"),
			BoardID:   boardID("board_id"),
			LinkType:  str("link_type"),
		}, nil

	case "reaction.added":
		return events.ReactionAdded{
			BaseEvent:       base,
			CardID:          cardID("card_id"),
			BoardID:         boardID("board_id"),
			UserHash:        str("user_hash"),
			ReactionType:    str("reaction_type"),
			DirectCount:     num("direct_count"),
			AggregatedCount: num("aggregated_count"),
			ParentID:        str("parent_id"),
		}, nil

	case "reaction.removed":
		return events.ReactionRemoved{
			BaseEvent:       base,
			CardID:          cardID("card_id"),
			BoardID:         boardID("board_id"),
			UserHash:        str("user_hash"),
			DirectCount:     num("direct_count"),
			AggregatedCount: num("aggregated_count"),
			ParentID:        str("parent_id"),
		}, nil

	case "board.cleared":
		return events.BoardCleared{
			BaseEvent:        base,
			BoardID:          boardID("board_id"),
			CardsDeleted:     num("cards_deleted"),
			ReactionsDeleted: num("reactions_deleted"),
			SessionsDeleted:  num("sessions_deleted"),
		}, nil

	case "board.reset":
		reopened, _ := record.EventData["reopened"].(bool)
		return events.BoardReset{
			BaseEvent: base,
			BoardID:   boardID("board_id"),
			Reopened:  reopened,
		}, nil

	default:
		return base, nil
	}
}

// Outbox methods

// GetPendingEvents retrieves events that have not been published yet
func (es *DynamoDBEventStore) GetPendingEvents(ctx context.Context, limit int32) ([]*EventRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	filter := expression.And(
		expression.Name("PublishStatus").Equal(expression.Value(string(PublishStatusPending))),
		expression.Name("PK").BeginsWith("EVENTS#"),
	)
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pending-events filter: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(es.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(limit),
	}

	result, err := es.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending events: %w", err)
	}

	records := make([]*EventRecord, 0, len(result.Items))
	for _, item := range result.Items {
		var record EventRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

// MarkEventAsPublished marks an event as successfully published
func (es *DynamoDBEventStore) MarkEventAsPublished(ctx context.Context, eventPK, eventSK string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :published, PublishedAt = :publishedAt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":published":   &types.AttributeValueMemberS{Value: string(PublishStatusPublished)},
			":publishedAt": &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	return nil
}

// MarkEventAsFailed records a publish failure. The event stays pending until
// the attempt budget runs out.
func (es *DynamoDBEventStore) MarkEventAsFailed(ctx context.Context, eventPK, eventSK, errorMsg string, attempts int) error {
	status := string(PublishStatusFailed)
	if attempts < 3 {
		status = string(PublishStatusPending)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: eventPK},
			"SK": &types.AttributeValueMemberS{Value: eventSK},
		},
		UpdateExpression: aws.String("SET PublishStatus = :status, PublishAttempts = :attempts, LastPublishTry = :lastTry, ErrorMessage = :error"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":   &types.AttributeValueMemberS{Value: status},
			":attempts": &types.AttributeValueMemberN{Value: strconv.Itoa(attempts)},
			":lastTry":  &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
			":error":    &types.AttributeValueMemberS{Value: errorMsg},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := es.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	return nil
}
