// Package dynamodb provides a DynamoDB-backed score storage implementation.
//
// The table uses game_id (S) as partition key and score (N) as sort key;
// player_name (S) and timestamp (S or N) are plain attributes.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
)

// Attribute names of the score table.
const (
	AttrGameID     = "game_id"
	AttrScore      = "score"
	AttrPlayerName = "player_name"
	AttrTimestamp  = "timestamp"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Options configures the DynamoDB client built by New.
type Options struct {
	// Region overrides the region resolved from the AWS environment.
	Region string
	// Endpoint points the client at a non-AWS endpoint such as DynamoDB Local.
	Endpoint string
}

// Store persists score entries in a DynamoDB table.
type Store struct {
	client API
	table  string
}

// New builds a DynamoDB client from the default AWS configuration chain.
func New(ctx context.Context, table string, opts Options) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewWithClient(client, table)
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, table string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("table name is required")
	}
	return &Store{client: client, table: table}, nil
}

// Put writes entry. An existing item with the same key is replaced.
func (s *Store) Put(ctx context.Context, entry domain.ScoreEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			AttrGameID:     &types.AttributeValueMemberS{Value: entry.GameID},
			AttrScore:      &types.AttributeValueMemberN{Value: entry.Score.String()},
			AttrPlayerName: &types.AttributeValueMemberS{Value: entry.PlayerName},
			AttrTimestamp:  timestampAttribute(entry.Timestamp),
		},
	})
	if err != nil {
		return storeError("put item", err)
	}
	return nil
}

// QueryTop queries the game partition in descending sort-key order.
func (s *Store) QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error) {
	if err := storage.ValidateQuery(gameID, limit); err != nil {
		return nil, err
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#game = :game"),
		ExpressionAttributeNames: map[string]string{
			"#game": AttrGameID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":game": &types.AttributeValueMemberS{Value: gameID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, storeError("query", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(out.Items))
	for _, item := range out.Items {
		entry, err := decodeItem(item)
		if err != nil {
			return nil, apperrors.Store("", fmt.Errorf("decode item: %w", err))
		}
		entries = append(entries, entry)
	}
	domain.SortByScoreDesc(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func timestampAttribute(ts domain.Timestamp) types.AttributeValue {
	if ts.IsNumber() {
		return &types.AttributeValueMemberN{Value: ts.Text()}
	}
	return &types.AttributeValueMemberS{Value: ts.Text()}
}

func decodeItem(item map[string]types.AttributeValue) (domain.ScoreEntry, error) {
	var entry domain.ScoreEntry

	gameID, ok := item[AttrGameID].(*types.AttributeValueMemberS)
	if !ok {
		return entry, fmt.Errorf("%s is not a string attribute", AttrGameID)
	}
	entry.GameID = gameID.Value

	score, ok := item[AttrScore].(*types.AttributeValueMemberN)
	if !ok {
		return entry, fmt.Errorf("%s is not a number attribute", AttrScore)
	}
	parsed, err := domain.ParsePreciseNumber(score.Value)
	if err != nil {
		return entry, err
	}
	entry.Score = parsed

	if name, ok := item[AttrPlayerName].(*types.AttributeValueMemberS); ok {
		entry.PlayerName = name.Value
	}

	switch ts := item[AttrTimestamp].(type) {
	case *types.AttributeValueMemberS:
		entry.Timestamp = domain.TimestampFromString(ts.Value)
	case *types.AttributeValueMemberN:
		if entry.Timestamp, err = domain.TimestampFromNumber(ts.Value); err != nil {
			return entry, err
		}
	}
	return entry, nil
}

func storeError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Store(apiErr.ErrorMessage(), err)
	}
	return apperrors.Store("", fmt.Errorf("%s: %w", op, err))
}

var _ storage.ScoreStore = (*Store)(nil)
