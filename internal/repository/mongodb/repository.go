package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/optica/internal/domain/models"
)

const (
	draftsCollection    = "sale_drafts"
	summariesCollection = "daily_summaries"
)

// SummaryRepository stores daily dashboard snapshots.
type SummaryRepository interface {
	SaveDailySummary(ctx context.Context, summary models.DashboardSummary) error
}

// MongoDBRepository persists sale drafts and daily summaries.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Save upserts a sale draft by id.
func (r *MongoDBRepository) Save(ctx context.Context, draft models.SaleDraft) error {
	_, err := r.collection(draftsCollection).ReplaceOne(ctx,
		bson.M{"_id": draft.ID},
		draft,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save draft %s: %w", draft.ID, err)
	}
	return nil
}

// Load fetches a sale draft by id.
func (r *MongoDBRepository) Load(ctx context.Context, id string) (models.SaleDraft, error) {
	var draft models.SaleDraft
	err := r.collection(draftsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&draft)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SaleDraft{}, models.ErrDraftNotFound
	}
	if err != nil {
		return models.SaleDraft{}, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	if draft.Items == nil {
		draft.Items = []models.SaleItem{}
	}
	if draft.Services == nil {
		draft.Services = []models.SaleService{}
	}
	return draft, nil
}

// Delete removes a sale draft.
func (r *MongoDBRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection(draftsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}

// SaveDailySummary stores the dashboard snapshot of a day, replacing an earlier one.
func (r *MongoDBRepository) SaveDailySummary(ctx context.Context, summary models.DashboardSummary) error {
	_, err := r.collection(summariesCollection).ReplaceOne(ctx,
		bson.M{"date": summary.Date},
		summary,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save daily summary: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
