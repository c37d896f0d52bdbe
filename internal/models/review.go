package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AnonymousAuthor = "Anonymous"

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Author    string             `bson:"author" json:"author"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
