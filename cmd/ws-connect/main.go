// Package main implements the WebSocket connect Lambda handler. It
// validates the board token passed on the query string and records the
// caller's session so board events can be fanned out to the connection.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"retroboard-backend/domain/core/entities"
	"retroboard-backend/domain/core/valueobjects"
	dynamorepo "retroboard-backend/infrastructure/persistence/dynamodb"
	"retroboard-backend/pkg/auth"
)

var (
	sessionRepo *dynamorepo.SessionRepository
	validator   *auth.JWTValidator
	logger      *zap.Logger
)

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	tableName := os.Getenv("TABLE_NAME")
	if tableName == "" {
		tableName = "retroboard"
	}

	sessionRepo = dynamorepo.NewSessionRepository(dynamodb.NewFromConfig(cfg), tableName, logger)

	validator, err = auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: os.Getenv("JWT_SECRET"),
		Issuer:    os.Getenv("JWT_ISSUER"),
	})
	if err != nil {
		logger.Fatal("Failed to create token validator", zap.Error(err))
	}

	logger.Info("WebSocket connect handler initialized")
}

// handler processes WebSocket $connect requests
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// Browsers cannot set headers on the upgrade request, so the token
	// travels on the query string
	token := request.QueryStringParameters["token"]
	if token == "" {
		token = request.Headers["Authorization"]
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket authentication failed",
			zap.String("connection_id", connectionID),
			zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	boardIDRaw := claims.BoardID
	if boardIDRaw == "" {
		boardIDRaw = request.QueryStringParameters["board_id"]
	}
	boardID, err := valueobjects.NewBoardIDFromString(boardIDRaw)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": "board_id is required"}`,
		}, nil
	}

	session, err := entities.NewSession(boardID, claims.UserHash, claims.Alias, connectionID)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": "invalid session"}`,
		}, nil
	}

	if err := sessionRepo.Save(ctx, session); err != nil {
		logger.Error("Failed to store session",
			zap.String("connection_id", connectionID),
			zap.String("board_id", boardID.String()),
			zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	welcome := map[string]interface{}{
		"type":          "connection_established",
		"connection_id": connectionID,
		"board_id":      boardID.String(),
		"timestamp":     time.Now().Unix(),
	}
	body, _ := json.Marshal(welcome)

	logger.Info("WebSocket connection established",
		zap.String("connection_id", connectionID),
		zap.String("board_id", boardID.String()))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}, nil
}

func main() {
	lambda.Start(handler)
}
