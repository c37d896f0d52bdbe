package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

// Wishlist is keyed by an opaque owner string (admin id, customer token or
// session id). Items behave as a set of product ids.
type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Owner     string             `bson:"owner" json:"owner"`
	Items     []WishlistItem     `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
