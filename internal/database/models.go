package database

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is one node of the vendor classifier tree, flattened for storage.
// Children and Products are derived lists: Children is rebuilt during the
// catalog tree walk, Products is rebuilt by the linker at the end of every
// import run.
type Category struct {
	OID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID       string             `bson:"id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	ParentID *string            `bson:"parentId" json:"parentId"`
	Children []string           `bson:"children" json:"children"`
	Products []string           `bson:"products" json:"products"`
	Folder   string             `bson:"folder" json:"folder"`
}

// Product is one item of a vendor import feed. The external ID is unique only
// within its folder; (id, folder) is the join key used by price and stock
// updates.
type Product struct {
	OID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          string             `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Article     string             `bson:"article" json:"article"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Images      []string           `bson:"images" json:"images"`
	Folder      string             `bson:"folder" json:"folder"`
	LastUpdate  time.Time          `bson:"lastUpdate" json:"lastUpdate"`
}

// CategoryProducts is one linker update: the full replacement product-key list
// for a category.
type CategoryProducts struct {
	CategoryID  string
	ProductKeys []string
}
