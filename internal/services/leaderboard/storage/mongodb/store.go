// Package mongodb provides a MongoDB-backed score storage implementation.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultDatabase is used when Options.Database is empty.
const DefaultDatabase = "leaderboard"

// Field names of a score document.
const (
	FieldGameID          = "game_id"
	FieldScore           = "score"
	FieldScoreKey        = "score_key"
	FieldPlayerName      = "player_name"
	FieldTimestamp       = "timestamp"
	FieldTimestampNumber = "timestamp_numeric"
	FieldRecordedAt      = "recorded_at"
)

// Collection is the subset of *mongo.Collection used by Store.
type Collection interface {
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Options configures the client built by Open.
type Options struct {
	URI      string
	Database string
}

// Store persists score entries in one MongoDB collection. Scores are stored
// as Decimal128 so the server sorts them exactly; score_key holds the
// canonical decimal text and is unique per game.
type Store struct {
	client     *mongo.Client
	collection Collection
	now        func() time.Time
}

type scoreDocument struct {
	GameID          string               `bson:"game_id"`
	Score           primitive.Decimal128 `bson:"score"`
	ScoreKey        string               `bson:"score_key"`
	PlayerName      string               `bson:"player_name"`
	Timestamp       string               `bson:"timestamp"`
	TimestampNumber bool                 `bson:"timestamp_numeric,omitempty"`
	RecordedAt      time.Time            `bson:"recorded_at"`
}

// Open connects to MongoDB, ensures the collection indexes and returns a
// Store for the named collection.
func Open(ctx context.Context, collection string, opts Options) (*Store, error) {
	uri := strings.TrimSpace(opts.URI)
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	database := strings.TrimSpace(opts.Database)
	if database == "" {
		database = DefaultDatabase
	}
	name := strings.TrimSpace(collection)
	if name == "" {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("collection name is required")
	}
	coll := client.Database(database).Collection(name)
	if err := EnsureIndexes(ctx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	store, err := NewWithCollection(coll)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	store.client = client
	return store, nil
}

// EnsureIndexes creates the unique score key index and the ranking index.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: FieldGameID, Value: 1}, {Key: FieldScoreKey, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("game_score_key"),
		},
		{
			Keys:    bson.D{{Key: FieldGameID, Value: 1}, {Key: FieldScore, Value: -1}},
			Options: options.Index().SetName("game_score_rank"),
		},
	})
	if err != nil {
		return fmt.Errorf("create score indexes: %w", err)
	}
	return nil
}

// NewWithCollection wraps an existing collection.
func NewWithCollection(coll Collection) (*Store, error) {
	if coll == nil {
		return nil, fmt.Errorf("mongodb collection is required")
	}
	return &Store{collection: coll, now: time.Now}, nil
}

// Close disconnects the client opened by Open.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// Put upserts entry, replacing the document with the same game and score.
func (s *Store) Put(ctx context.Context, entry domain.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.collection == nil {
		return apperrors.Store("storage is not configured", nil)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	doc, err := encodeDocument(entry, s.now())
	if err != nil {
		return err
	}

	filter := bson.D{{Key: FieldGameID, Value: doc.GameID}, {Key: FieldScoreKey, Value: doc.ScoreKey}}
	if _, err := s.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		return storeError("put score", err)
	}
	return nil
}

// QueryTop returns up to limit entries for gameID, highest score first.
func (s *Store) QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.collection == nil {
		return nil, apperrors.Store("storage is not configured", nil)
	}
	if err := storage.ValidateQuery(gameID, limit); err != nil {
		return nil, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: FieldScore, Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.D{{Key: FieldGameID, Value: gameID}}, findOpts)
	if err != nil {
		return nil, storeError("query top scores", err)
	}
	var docs []scoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("read top scores", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := decodeDocument(doc)
		if err != nil {
			return nil, apperrors.Store("", fmt.Errorf("decode score document: %w", err))
		}
		entries = append(entries, entry)
	}
	domain.SortByScoreDesc(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func encodeDocument(entry domain.ScoreEntry, now time.Time) (scoreDocument, error) {
	key := entry.Score.String()
	score, err := primitive.ParseDecimal128(key)
	if err != nil {
		return scoreDocument{}, apperrors.Validation(fmt.Sprintf("score %s does not fit a decimal128", key))
	}
	if back, err := decimal.NewFromString(score.String()); err != nil || !back.Equal(entry.Score.Decimal()) {
		return scoreDocument{}, apperrors.Validation(fmt.Sprintf("score %s does not fit a decimal128", key))
	}
	return scoreDocument{
		GameID:          entry.GameID,
		Score:           score,
		ScoreKey:        key,
		PlayerName:      entry.PlayerName,
		Timestamp:       entry.Timestamp.Text(),
		TimestampNumber: entry.Timestamp.IsNumber(),
		RecordedAt:      now.UTC(),
	}, nil
}

func decodeDocument(doc scoreDocument) (domain.ScoreEntry, error) {
	score, err := domain.ParsePreciseNumber(doc.Score.String())
	if err != nil {
		return domain.ScoreEntry{}, err
	}
	entry := domain.ScoreEntry{
		GameID:     doc.GameID,
		PlayerName: doc.PlayerName,
		Score:      score,
		Timestamp:  domain.TimestampFromString(doc.Timestamp),
	}
	if doc.TimestampNumber {
		if entry.Timestamp, err = domain.TimestampFromNumber(doc.Timestamp); err != nil {
			return domain.ScoreEntry{}, err
		}
	}
	return entry, nil
}

func storeError(op string, err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Message != "" {
		return apperrors.Store(cmdErr.Message, err)
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0 {
		return apperrors.Store(writeErr.WriteErrors[0].Message, err)
	}
	return apperrors.Store("", fmt.Errorf("%s: %w", op, err))
}

var _ storage.ScoreStore = (*Store)(nil)
