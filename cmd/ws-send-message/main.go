// Package main implements the WebSocket fan-out Lambda. EventBridge
// delivers board events here; every session on the event's board gets
// the payload pushed over its connection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/valueobjects"
	dynamorepo "retroboard-backend/infrastructure/persistence/dynamodb"
)

var (
	sessionRepo *dynamorepo.SessionRepository
	awsCfg      aws.Config
	logger      *zap.Logger
)

// BroadcastMessage is the direct-invocation payload shape, used by
// tooling to push an ad-hoc message to a board
type BroadcastMessage struct {
	EventType string                 `json:"event_type"`
	BoardID   string                 `json:"board_id"`
	Payload   map[string]interface{} `json:"payload"`
}

// WebSocketMessage is the frame format pushed to clients
type WebSocketMessage struct {
	Type      string                 `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err = awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	tableName := os.Getenv("TABLE_NAME")
	if tableName == "" {
		tableName = "retroboard"
	}

	sessionRepo = dynamorepo.NewSessionRepository(dynamodb.NewFromConfig(awsCfg), tableName, logger)

	logger.Info("WebSocket fan-out handler initialized")
}

// managementClient creates an API Gateway Management API client bound to
// the board's websocket endpoint
func managementClient(endpoint string) *apigatewaymanagementapi.Client {
	return apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	})
}

// pushToConnection sends one frame. A GoneException means the client
// dropped without $disconnect firing; the session is swept on the spot.
func pushToConnection(ctx context.Context, client *apigatewaymanagementapi.Client, boardID valueobjects.BoardID, userHash, connectionID string, frame []byte) error {
	_, err := client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         frame,
	})
	if err != nil {
		var gone *apigwTypes.GoneException
		if errors.As(err, &gone) {
			logger.Info("Connection gone, sweeping session",
				zap.String("connection_id", connectionID),
				zap.String("board_id", boardID.String()))
			if delErr := sessionRepo.Delete(ctx, boardID, userHash); delErr != nil {
				logger.Warn("Failed to sweep stale session", zap.Error(delErr))
			}
			return nil
		}
		return fmt.Errorf("failed to post to connection: %w", err)
	}
	return nil
}

// fanOutToBoard pushes a frame to every session on the board
func fanOutToBoard(ctx context.Context, msg BroadcastMessage) error {
	boardID, err := valueobjects.NewBoardIDFromString(msg.BoardID)
	if err != nil {
		return fmt.Errorf("invalid board ID %q: %w", msg.BoardID, err)
	}

	sessions, err := sessionRepo.GetByBoard(ctx, boardID)
	if err != nil {
		return fmt.Errorf("failed to load board sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	frame, err := json.Marshal(WebSocketMessage{
		Type:      msg.EventType,
		Timestamp: time.Now().Unix(),
		Data:      msg.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	endpoint := os.Getenv("WEBSOCKET_ENDPOINT")
	if endpoint == "" {
		return fmt.Errorf("WEBSOCKET_ENDPOINT is not configured")
	}
	client := managementClient(endpoint)

	sent := 0
	failed := 0
	for _, session := range sessions {
		if session.ConnectionID() == "" {
			continue
		}
		if err := pushToConnection(ctx, client, boardID, session.UserHash(), session.ConnectionID(), frame); err != nil {
			logger.Warn("Failed to push frame",
				zap.String("connection_id", session.ConnectionID()),
				zap.Error(err))
			failed++
		} else {
			sent++
		}
	}

	logger.Info("Board fan-out complete",
		zap.String("board_id", msg.BoardID),
		zap.String("event_type", msg.EventType),
		zap.Int("sent", sent),
		zap.Int("failed", failed))

	if failed > 0 && sent == 0 {
		return fmt.Errorf("all pushes failed for board %s", msg.BoardID)
	}
	return nil
}

// handler accepts either an EventBridge-delivered board event or a direct
// BroadcastMessage invocation
func handler(ctx context.Context, event json.RawMessage) error {
	var cloudWatchEvent events.CloudWatchEvent
	if err := json.Unmarshal(event, &cloudWatchEvent); err == nil && cloudWatchEvent.DetailType != "" {
		var payload map[string]interface{}
		if err := json.Unmarshal(cloudWatchEvent.Detail, &payload); err != nil {
			return fmt.Errorf("failed to parse event detail: %w", err)
		}

		boardID, _ := payload["board_id"].(string)
		if boardID == "" {
			logger.Warn("Event without board scope, dropping",
				zap.String("detail_type", cloudWatchEvent.DetailType))
			return nil
		}

		return fanOutToBoard(ctx, BroadcastMessage{
			EventType: cloudWatchEvent.DetailType,
			BoardID:   boardID,
			Payload:   payload,
		})
	}

	var msg BroadcastMessage
	if err := json.Unmarshal(event, &msg); err == nil && msg.BoardID != "" {
		return fanOutToBoard(ctx, msg)
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	lambda.Start(handler)
}
