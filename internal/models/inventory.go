package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StockMovement struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID  `bson:"product_id" json:"product_id"`
	Type      string              `bson:"type" json:"type"` // "sale", "restock", "adjustment"
	Quantity  int                 `bson:"quantity" json:"quantity"`
	PrevStock int                 `bson:"prev_stock" json:"prev_stock"`
	NewStock  int                 `bson:"new_stock" json:"new_stock"`
	Reason    string              `bson:"reason,omitempty" json:"reason,omitempty"`
	OrderID   *primitive.ObjectID `bson:"order_id,omitempty" json:"order_id,omitempty"`
	UserID    string              `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
