package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"content-curator/pkg/db"
	"content-curator/pkg/domain"
)

const mongoCloseTimeout = 10 * time.Second

// MongoStore is the catalog over a MongoDB collection. The record id is the
// document _id, so the server enforces uniqueness.
type MongoStore struct {
	client     *db.MongoClient
	collection *mongo.Collection
}

type document struct {
	ID         string  `bson:"_id"`
	Type       string  `bson:"type"`
	Title      string  `bson:"title"`
	SourceURL  string  `bson:"source_url"`
	EmbedURL   *string `bson:"embed_url"`
	Level      string  `bson:"level"`
	Duration   *int64  `bson:"duration"`
	Transcript *string `bson:"transcript"`
	// Tags is stored comma-joined like the SQL column so search semantics match.
	Tags      string  `bson:"tags"`
	Channel   *string `bson:"channel"`
	CreatedAt string  `bson:"created_at"`
}

// NewMongoStore returns a store that owns client.
func NewMongoStore(client *db.MongoClient) *MongoStore {
	return &MongoStore{client: client, collection: client.Collection()}
}

func (s *MongoStore) Insert(ctx context.Context, rec *domain.ContentRecord) (InsertResult, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.collection.InsertOne(ctx, toDocument(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return AlreadyExists, nil
		}
		return 0, fmt.Errorf("catalog insert %s: %w", rec.ID, err)
	}
	return Inserted, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*domain.ContentRecord, error) {
	var doc document
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("content %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("catalog get %s: %w", id, err)
	}

	rec, err := doc.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.find(ctx, "list all", bson.M{})
}

func (s *MongoStore) ListByLevel(ctx context.Context, level domain.Level) ([]domain.ContentRecord, error) {
	return s.find(ctx, "list by level", bson.M{"level": string(level)})
}

func (s *MongoStore) ListByType(ctx context.Context, t domain.ContentType) ([]domain.ContentRecord, error) {
	return s.find(ctx, "list by type", bson.M{"type": string(t)})
}

func (s *MongoStore) Search(ctx context.Context, query string) ([]domain.ContentRecord, error) {
	if query == "" {
		return s.ListAll(ctx)
	}
	pattern := regexp.QuoteMeta(query)
	filter := bson.M{"$or": bson.A{
		bson.M{"title": bson.M{"$regex": pattern}},
		bson.M{"tags": bson.M{"$regex": pattern}},
	}}
	return s.find(ctx, "search", filter)
}

func (s *MongoStore) Stats(ctx context.Context) (domain.Stats, error) {
	countIf := func(t domain.ContentType) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$type", string(t)}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total":          bson.M{"$sum": 1},
			"videos":         countIf(domain.ContentTypeVideoLink),
			"text":           countIf(domain.ContentTypeText),
			"total_duration": bson.M{"$sum": "$duration"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("catalog stats: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total         int64 `bson:"total"`
		Videos        int64 `bson:"videos"`
		Text          int64 `bson:"text"`
		TotalDuration int64 `bson:"total_duration"`
	}
	// An empty collection produces no group document.
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return domain.Stats{}, fmt.Errorf("catalog stats: decode: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("catalog stats: cursor error: %w", err)
	}
	return domain.Stats(result), nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return s.client.Close(ctx)
}

func (s *MongoStore) find(ctx context.Context, op string, filter bson.M) ([]domain.ContentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", op, err)
	}
	defer cursor.Close(ctx)

	out := make([]domain.ContentRecord, 0)
	for cursor.Next(ctx) {
		var doc document
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("catalog %s: decode: %w", op, err)
		}
		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("catalog %s: cursor error: %w", op, err)
	}
	return out, nil
}

func toDocument(rec *domain.ContentRecord) document {
	doc := document{
		ID:         rec.ID,
		Type:       string(rec.Type),
		Title:      rec.Title,
		SourceURL:  rec.SourceURL,
		EmbedURL:   rec.EmbedURL,
		Level:      string(rec.Level),
		Transcript: rec.Transcript,
		Tags:       domain.JoinTags(rec.Tags),
		Channel:    rec.Channel,
		CreatedAt:  domain.FormatTimestamp(rec.CreatedAt),
	}
	if rec.Duration != nil {
		d := int64(*rec.Duration)
		doc.Duration = &d
	}
	return doc
}

func (d document) toRecord() (domain.ContentRecord, error) {
	createdAt, err := domain.ParseTimestamp(d.CreatedAt)
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("content %s: %w", d.ID, err)
	}

	rec := domain.ContentRecord{
		ID:         d.ID,
		Type:       domain.ContentType(d.Type),
		Title:      d.Title,
		SourceURL:  d.SourceURL,
		EmbedURL:   d.EmbedURL,
		Level:      domain.Level(d.Level),
		Transcript: d.Transcript,
		Tags:       domain.SplitTags(d.Tags),
		Channel:    d.Channel,
		CreatedAt:  createdAt,
	}
	if d.Duration != nil {
		rec.Duration = domain.IntPtr(int(*d.Duration))
	}
	return rec, nil
}
