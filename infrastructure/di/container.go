package di

import (
	"go.uber.org/zap"

	"retroboard-backend/application/commands/bus"
	"retroboard-backend/application/ports"
	querybus "retroboard-backend/application/queries/bus"
	"retroboard-backend/infrastructure/config"
	"retroboard-backend/infrastructure/persistence/dynamodb"
	"retroboard-backend/pkg/auth"
	"retroboard-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	CardRepo      *dynamodb.CardRepository
	BoardRepo     *dynamodb.BoardRepository
	ReactionRepo  *dynamodb.ReactionRepository
	SessionRepo   *dynamodb.SessionRepository
	EventBus      ports.EventBus
	EventStore    *dynamodb.DynamoDBEventStore
	Outbox        *dynamodb.OutboxProcessor
	NewUnitOfWork ports.UnitOfWorkFactory
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Cache         ports.Cache
	Metrics       *observability.Metrics
	RateLimiter   *auth.DistributedRateLimiter
}
