// Package main implements the session sweeper Lambda. Sessions carry a
// DynamoDB TTL, but TTL deletion lags by up to 48 hours; the sweeper runs
// on an EventBridge schedule and removes sessions whose connections have
// gone quiet, so fan-out stops posting to dead connections promptly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/valueobjects"
	dynamorepo "retroboard-backend/infrastructure/persistence/dynamodb"
)

var (
	sessionRepo  *dynamorepo.SessionRepository
	logger       *zap.Logger
	staleTimeout time.Duration
)

// SweepRequest is the direct-invocation payload
type SweepRequest struct {
	BoardID string `json:"board_id"`
	// DropAll removes every session on the board regardless of age,
	// used when a board is archived
	DropAll bool `json:"drop_all,omitempty"`
}

// SweepResult reports what the sweep removed
type SweepResult struct {
	BoardID string `json:"board_id"`
	Scanned int    `json:"scanned"`
	Removed int    `json:"removed"`
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	tableName := os.Getenv("TABLE_NAME")
	if tableName == "" {
		tableName = "retroboard"
	}

	staleTimeout = 30 * time.Minute
	if raw := os.Getenv("STALE_TIMEOUT_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			staleTimeout = time.Duration(minutes) * time.Minute
		}
	}

	sessionRepo = dynamorepo.NewSessionRepository(dynamodb.NewFromConfig(awsCfg), tableName, logger)

	logger.Info("Session sweeper initialized",
		zap.Duration("stale_timeout", staleTimeout))
}

// sweepBoard removes stale (or, with DropAll, every) session on a board
func sweepBoard(ctx context.Context, request SweepRequest) (*SweepResult, error) {
	boardID, err := valueobjects.NewBoardIDFromString(request.BoardID)
	if err != nil {
		return nil, fmt.Errorf("invalid board ID %q: %w", request.BoardID, err)
	}

	if request.DropAll {
		removed, err := sessionRepo.DeleteByBoard(ctx, boardID)
		if err != nil {
			return nil, fmt.Errorf("failed to drop board sessions: %w", err)
		}
		logger.Info("Dropped all board sessions",
			zap.String("board_id", request.BoardID),
			zap.Int("removed", removed))
		return &SweepResult{BoardID: request.BoardID, Scanned: removed, Removed: removed}, nil
	}

	sessions, err := sessionRepo.GetByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board sessions: %w", err)
	}

	removed := 0
	for _, session := range sessions {
		if !session.IsStale(staleTimeout) {
			continue
		}
		if err := sessionRepo.Delete(ctx, boardID, session.UserHash()); err != nil {
			logger.Warn("Failed to remove stale session",
				zap.String("user_hash", session.UserHash()),
				zap.Error(err))
			continue
		}
		removed++
	}

	logger.Info("Board sweep complete",
		zap.String("board_id", request.BoardID),
		zap.Int("scanned", len(sessions)),
		zap.Int("removed", removed))

	return &SweepResult{BoardID: request.BoardID, Scanned: len(sessions), Removed: removed}, nil
}

// handler accepts an EventBridge scheduled event carrying board IDs in its
// detail, a board.cleared/board.reset event, or a direct SweepRequest
func handler(ctx context.Context, event json.RawMessage) error {
	var cloudWatchEvent awsevents.CloudWatchEvent
	if err := json.Unmarshal(event, &cloudWatchEvent); err == nil && cloudWatchEvent.DetailType != "" {
		var detail struct {
			BoardID  string   `json:"board_id"`
			BoardIDs []string `json:"board_ids"`
		}
		if err := json.Unmarshal(cloudWatchEvent.Detail, &detail); err != nil {
			return fmt.Errorf("failed to parse event detail: %w", err)
		}

		boards := detail.BoardIDs
		if detail.BoardID != "" {
			boards = append(boards, detail.BoardID)
		}
		if len(boards) == 0 {
			logger.Warn("Sweep event without board scope, dropping",
				zap.String("detail_type", cloudWatchEvent.DetailType))
			return nil
		}

		// A reset tears down connections along with the cards
		dropAll := cloudWatchEvent.DetailType == "board.reset"

		for _, board := range boards {
			if _, err := sweepBoard(ctx, SweepRequest{BoardID: board, DropAll: dropAll}); err != nil {
				logger.Error("Sweep failed",
					zap.String("board_id", board),
					zap.Error(err))
			}
		}
		return nil
	}

	var request SweepRequest
	if err := json.Unmarshal(event, &request); err == nil && request.BoardID != "" {
		_, err := sweepBoard(ctx, request)
		return err
	}

	return fmt.Errorf("unable to parse event")
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handler)
		return
	}

	// Local mode sweeps one board given on the command line
	if len(os.Args) < 2 {
		log.Fatal("usage: session-sweeper <board-id>")
	}
	result, err := sweepBoard(context.Background(), SweepRequest{BoardID: os.Args[1]})
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	log.Printf("Sweep result:\n%s", out)
}
