package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"retroboard-backend/application/commands"
	"retroboard-backend/application/commands/bus"
	commands_handlers "retroboard-backend/application/commands/handlers"
	"retroboard-backend/application/ports"
	"retroboard-backend/application/queries"
	querybus "retroboard-backend/application/queries/bus"
	queries_handlers "retroboard-backend/application/queries/handlers"
	"retroboard-backend/application/services"
	"retroboard-backend/domain/core/validators"
	"retroboard-backend/domain/events"
	domainservices "retroboard-backend/domain/services"
	"retroboard-backend/infrastructure/config"
	"retroboard-backend/infrastructure/messaging/eventbridge"
	"retroboard-backend/infrastructure/persistence/dynamodb"
	"retroboard-backend/pkg/auth"
	"retroboard-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCardRepository creates the card repository. The concrete type is
// returned because the unit of work needs access beyond the port surface.
func ProvideCardRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.CardRepository {
	return dynamodb.NewCardRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideBoardRepository creates the board repository
func ProvideBoardRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.BoardRepository {
	return dynamodb.NewBoardRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideReactionRepository creates the reaction repository
func ProvideReactionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.ReactionRepository {
	return dynamodb.NewReactionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSessionRepository creates the session repository
func ProvideSessionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.SessionRepository {
	return dynamodb.NewSessionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEventBus creates the EventBridge-backed event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideEventPublisher narrows the event bus to the publisher port
func ProvideEventPublisher(eventBus ports.EventBus) ports.EventPublisher {
	return &eventPublisherAdapter{eventBus: eventBus}
}

// ProvideBoardEventPublisher creates the typed board event publisher used
// by command handlers
func ProvideBoardEventPublisher(publisher ports.EventPublisher, logger *zap.Logger) ports.BoardEventPublisher {
	return eventbridge.NewBoardEventPublisher(publisher, logger)
}

// ProvideEventStore creates the DynamoDB event store
func ProvideEventStore(client *awsdynamodb.Client, cfg *config.Config) *dynamodb.DynamoDBEventStore {
	return dynamodb.NewDynamoDBEventStore(client, cfg.DynamoDBTable)
}

// ProvideOutboxProcessor creates the background relay for events that were
// saved but never published inline
func ProvideOutboxProcessor(
	eventStore *dynamodb.DynamoDBEventStore,
	eventPublisher ports.EventPublisher,
	logger *zap.Logger,
) *dynamodb.OutboxProcessor {
	return dynamodb.NewOutboxProcessor(eventStore, eventPublisher, logger)
}

// ProvideUnitOfWorkFactory creates the factory handlers use to open a
// fresh transaction per operation. The unit of work holds per-transaction
// state, so a shared instance would make concurrent upserts trip over each
// other.
func ProvideUnitOfWorkFactory(
	client *awsdynamodb.Client,
	cfg *config.Config,
	cardRepo *dynamodb.CardRepository,
	reactionRepo *dynamodb.ReactionRepository,
	sessionRepo *dynamodb.SessionRepository,
	logger *zap.Logger,
) ports.UnitOfWorkFactory {
	return func() ports.UnitOfWork {
		return dynamodb.NewDynamoDBUnitOfWork(client, cfg.DynamoDBTable, cardRepo, reactionRepo, sessionRepo, logger)
	}
}

// ProvideDistributedLock creates the lock used to serialize board teardowns
func ProvideDistributedLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DistributedLock {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideMetrics creates the CloudWatch metrics publisher
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("Retroboard/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer("retroboard-backend")
}

// ProvideDistributedRateLimiter creates a per-user rate limiter backed by
// the same table as the rest of the data
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedUserRateLimiter(client, cfg.DynamoDBTable, 120)
}

// ProvideQuotaEnforcer creates the per-user quota service
func ProvideQuotaEnforcer(cardRepo *dynamodb.CardRepository, reactionRepo *dynamodb.ReactionRepository, logger *zap.Logger) *services.QuotaEnforcer {
	return services.NewQuotaEnforcer(cardRepo, reactionRepo, logger)
}

// ProvideCounterAggregator creates the reaction counter propagation service
func ProvideCounterAggregator(cardRepo *dynamodb.CardRepository, logger *zap.Logger) *services.CounterAggregator {
	return services.NewCounterAggregator(cardRepo, logger)
}

// ProvideCascadeCoordinator creates the cascade deletion coordinator
func ProvideCascadeCoordinator(
	cardRepo *dynamodb.CardRepository,
	reactionRepo *dynamodb.ReactionRepository,
	sessionRepo *dynamodb.SessionRepository,
	boardRepo *dynamodb.BoardRepository,
	lock ports.DistributedLock,
	logger *zap.Logger,
) *services.CascadeCoordinator {
	return services.NewCascadeCoordinator(cardRepo, reactionRepo, sessionRepo, boardRepo, lock, logger)
}

// eventPublisherAdapter adapts EventBus to the narrower EventPublisher port
type eventPublisherAdapter struct {
	eventBus ports.EventBus
}

func (a *eventPublisherAdapter) Publish(ctx context.Context, event events.DomainEvent) error {
	return a.eventBus.Publish(ctx, event)
}

func (a *eventPublisherAdapter) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return a.eventBus.PublishBatch(ctx, batch)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with every write-side handler
// registered. Handlers that manage their own transactions (the reaction
// orchestrator, the teardown cascade) are registered as-is; the shared
// pipeline only adds logging and metrics.
func ProvideCommandBus(
	newUOW ports.UnitOfWorkFactory,
	cardRepo *dynamodb.CardRepository,
	boardRepo *dynamodb.BoardRepository,
	reactionRepo *dynamodb.ReactionRepository,
	eventStore *dynamodb.DynamoDBEventStore,
	publisher ports.BoardEventPublisher,
	quota *services.QuotaEnforcer,
	aggregator *services.CounterAggregator,
	cascade *services.CascadeCoordinator,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(
		bus.LoggingMiddleware(logger),
		bus.TracingMiddleware(tracer),
		bus.MetricsMiddleware(metrics),
	)

	register := func(cmdType bus.Command, handle func(context.Context, bus.Command) error) error {
		return commandBus.Register(cmdType, pipeline.Execute(&CommandHandlerAdapter{handler: handle}))
	}

	cardValidator := validators.NewCardValidator()
	linkValidator := domainservices.NewLinkValidator()

	createHandler := commands.NewCreateCardHandler(cardRepo, boardRepo, quota, cardValidator, publisher, logger)
	if err := register(commands.CreateCardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		createCmd, ok := cmd.(commands.CreateCardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		_, err := createHandler.Handle(ctx, createCmd)
		return err
	}); err != nil {
		return nil, err
	}

	updateHandler := commands_handlers.NewUpdateCardHandler(cardRepo, boardRepo, publisher, logger)
	if err := register(commands.UpdateCardContentCommand{}, func(ctx context.Context, cmd bus.Command) error {
		updateCmd, ok := cmd.(commands.UpdateCardContentCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return updateHandler.Handle(ctx, updateCmd)
	}); err != nil {
		return nil, err
	}

	moveHandler := commands_handlers.NewMoveCardHandler(cardRepo, boardRepo, cardValidator, publisher, logger)
	if err := register(commands.MoveCardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		moveCmd, ok := cmd.(commands.MoveCardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return moveHandler.Handle(ctx, moveCmd)
	}); err != nil {
		return nil, err
	}

	deleteHandler := commands_handlers.NewDeleteCardHandler(cardRepo, boardRepo, cascade, eventStore, publisher, logger)
	if err := register(commands.DeleteCardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		deleteCmd, ok := cmd.(commands.DeleteCardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return deleteHandler.Handle(ctx, deleteCmd)
	}); err != nil {
		return nil, err
	}

	bulkDeleteHandler := commands_handlers.NewBulkDeleteCardsHandler(cardRepo, boardRepo, cascade, publisher, logger)
	if err := register(commands.BulkDeleteCardsCommand{}, func(ctx context.Context, cmd bus.Command) error {
		bulkCmd, ok := cmd.(commands.BulkDeleteCardsCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		_, err := bulkDeleteHandler.Handle(ctx, bulkCmd)
		return err
	}); err != nil {
		return nil, err
	}

	linkHandler := commands_handlers.NewLinkCardHandler(cardRepo, boardRepo, linkValidator, publisher, logger)
	if err := register(commands.SetParentCardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		setCmd, ok := cmd.(commands.SetParentCardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return linkHandler.HandleSetParent(ctx, setCmd)
	}); err != nil {
		return nil, err
	}
	if err := register(commands.ClearParentCardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		clearCmd, ok := cmd.(commands.ClearParentCardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return linkHandler.HandleClearParent(ctx, clearCmd)
	}); err != nil {
		return nil, err
	}
	if err := register(commands.AddLinkedFeedbackCommand{}, func(ctx context.Context, cmd bus.Command) error {
		addCmd, ok := cmd.(commands.AddLinkedFeedbackCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return linkHandler.HandleAddLinkedFeedback(ctx, addCmd)
	}); err != nil {
		return nil, err
	}
	if err := register(commands.RemoveLinkedFeedbackCommand{}, func(ctx context.Context, cmd bus.Command) error {
		removeCmd, ok := cmd.(commands.RemoveLinkedFeedbackCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return linkHandler.HandleRemoveLinkedFeedback(ctx, removeCmd)
	}); err != nil {
		return nil, err
	}

	// Upserts go through the transactional orchestrator so the ledger
	// write and the counter increments commit together
	upsertOrchestrator := commands_handlers.NewUpsertReactionOrchestrator(newUOW, cardRepo, boardRepo, quota, publisher, logger)
	if err := register(commands.UpsertReactionCommand{}, func(ctx context.Context, cmd bus.Command) error {
		upsertCmd, ok := cmd.(commands.UpsertReactionCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return upsertOrchestrator.Handle(ctx, upsertCmd)
	}); err != nil {
		return nil, err
	}

	reactionHandler := commands_handlers.NewReactionHandler(cardRepo, boardRepo, reactionRepo, aggregator, publisher, logger)
	if err := register(commands.RemoveReactionCommand{}, func(ctx context.Context, cmd bus.Command) error {
		removeCmd, ok := cmd.(commands.RemoveReactionCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return reactionHandler.HandleRemove(ctx, removeCmd)
	}); err != nil {
		return nil, err
	}

	teardownHandler := commands_handlers.NewBoardTeardownHandler(boardRepo, cascade, eventStore, publisher, logger)
	if err := register(commands.ClearBoardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		clearCmd, ok := cmd.(commands.ClearBoardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return teardownHandler.HandleClear(ctx, clearCmd)
	}); err != nil {
		return nil, err
	}
	if err := register(commands.ResetBoardCommand{}, func(ctx context.Context, cmd bus.Command) error {
		resetCmd, ok := cmd.(commands.ResetBoardCommand)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return teardownHandler.HandleReset(ctx, resetCmd)
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with all read-side handlers registered.
// Board card listings are cached briefly; card and quota lookups stay
// uncached so reaction counts read fresh.
func ProvideQueryBus(
	cardRepo *dynamodb.CardRepository,
	boardRepo *dynamodb.BoardRepository,
	quota *services.QuotaEnforcer,
	cache ports.Cache,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	logging := querybus.NewLoggingMiddleware(logger)
	caching := querybus.NewCachingMiddleware(cache, 5)

	getCardHandler := queries_handlers.NewGetCardHandler(cardRepo, logger)
	if err := queryBus.Register(queries.GetCardQuery{}, logging.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetCardQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getCardHandler.Handle(ctx, getQuery)
		},
	})); err != nil {
		return nil, err
	}

	listHandler := queries_handlers.NewListBoardCardsHandler(cardRepo, boardRepo, logger)
	if err := queryBus.Register(queries.ListBoardCardsQuery{}, logging.Wrap(caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListBoardCardsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return listHandler.Handle(ctx, listQuery)
		},
	}))); err != nil {
		return nil, err
	}

	quotaHandler := queries_handlers.NewGetQuotaHandler(boardRepo, quota, logger)
	if err := queryBus.Register(queries.GetQuotaStatusQuery{}, logging.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			quotaQuery, ok := query.(queries.GetQuotaStatusQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return quotaHandler.Handle(ctx, quotaQuery)
		},
	})); err != nil {
		return nil, err
	}

	suggestHandler := queries_handlers.NewSuggestLinksHandler(services.NewLinkSuggester(cardRepo, logger), logger)
	if err := queryBus.Register(queries.SuggestLinksQuery{}, logging.Wrap(caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			suggestQuery, ok := query.(queries.SuggestLinksQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return suggestHandler.Handle(ctx, suggestQuery)
		},
	}))); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production, this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
