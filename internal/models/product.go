package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the catalog document. SalePrice only affects pricing while
// OnSale is true.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price"`
	SalePrice     *float64           `bson:"sale_price" json:"sale_price"`
	OnSale        bool               `bson:"on_sale" json:"on_sale"`
	Stock         int                `bson:"stock" json:"stock"`
	InStock       bool               `bson:"-" json:"inStock"`
	Category      string             `bson:"category" json:"category"`
	Subcategories StringList         `bson:"subcategories" json:"subcategories"`
	Rating        float64            `bson:"rating" json:"rating"`
	ReviewCount   int                `bson:"review_count" json:"review_count"`
	Images        []string           `bson:"images" json:"images"`
	IsDeleted     bool               `bson:"is_deleted" json:"-"`
	DeletedAt     *time.Time         `bson:"deleted_at,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
