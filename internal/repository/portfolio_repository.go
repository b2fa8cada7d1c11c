package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockfolio/backend/internal/models"
)

type PortfolioRepository interface {
	EnsureIndexes() error
	GetAllPositions() ([]*models.Position, error)
	GetPosition(symbol string) (*models.Position, error)
	UpsertPosition(position *models.Position) error
	DeletePosition(symbol string) error
	BulkUpdatePrices(prices map[string]float64) error
}

type MongoPortfolioRepository struct {
	collection *mongo.Collection
}

func NewPortfolioRepository(client *mongo.Client, dbName, collectionName string) PortfolioRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoPortfolioRepository{collection: collection}
}

func (r *MongoPortfolioRepository) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "symbol", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoPortfolioRepository) GetAllPositions() ([]*models.Position, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var positions []*models.Position
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *MongoPortfolioRepository) GetPosition(symbol string) (*models.Position, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var position models.Position
	err := r.collection.FindOne(ctx, bson.M{"symbol": symbol}).Decode(&position)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &position, err
}

func (r *MongoPortfolioRepository) UpsertPosition(position *models.Position) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	position.UpdatedAt = now
	update := bson.M{
		"$set": bson.M{
			"symbol":       position.Symbol,
			"quantity":     position.Quantity,
			"currentPrice": position.CurrentPrice,
			"totalValue":   position.TotalValue,
			"lastUpdated":  position.LastUpdated,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"symbol": position.Symbol}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoPortfolioRepository) DeletePosition(symbol string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"symbol": symbol})
	return err
}

// BulkUpdatePrices applies one batched write with a single upsert per
// symbol, setting the current price and its wall-clock timestamp.
func (r *MongoPortfolioRepository) BulkUpdatePrices(prices map[string]float64) error {
	if len(prices) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(prices))
	for symbol, price := range prices {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"symbol": symbol}).
			SetUpdate(bson.M{"$set": bson.M{"currentPrice": price, "lastUpdated": now}}).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}
