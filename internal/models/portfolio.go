package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Position is one portfolio holding, keyed by symbol.
type Position struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Symbol       string             `bson:"symbol" json:"symbol"`
	Quantity     float64            `bson:"quantity" json:"quantity"`
	CurrentPrice float64            `bson:"currentPrice" json:"currentPrice"`
	TotalValue   float64            `bson:"totalValue" json:"totalValue"`
	LastUpdated  time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
