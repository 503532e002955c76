// Package store defines the persistence contracts the handlers and services
// depend on. The Mongo implementation lives in this package; an in-memory
// implementation lives in store/memory.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
)

// Every Get/Update/Delete returns an error wrapping model.ErrNotFound when no
// document has the given id.

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) (model.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductStore returns products with their category populated.
type ProductStore interface {
	// List returns every product, or only those whose category is in
	// categories when it is non-empty.
	List(ctx context.Context, categories []primitive.ObjectID) ([]model.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.Product, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	SetImages(ctx context.Context, id primitive.ObjectID, images []string) (model.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	// Featured returns at most limit featured products; limit 0 means no limit.
	Featured(ctx context.Context, limit int64) ([]model.Product, error)
}

type OrderItemStore interface {
	Create(ctx context.Context, it model.OrderItem) (model.OrderItem, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error)
	// GetWithProduct resolves the item's product, and the product's category.
	GetWithProduct(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error)
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type OrderStore interface {
	// List returns orders newest first; a non-nil userID restricts to that user.
	List(ctx context.Context, userID *primitive.ObjectID) ([]model.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.Order, error)
	Create(ctx context.Context, o model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (model.Order, error)
	// Delete removes the order and returns it so its items can be removed.
	Delete(ctx context.Context, id primitive.ObjectID) (model.Order, error)
	TotalSales(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

// UserStore never returns password hashes except from GetByEmail, which
// login needs for comparison.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.User, error)
	Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserName, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// Stores bundles one of each store.
type Stores struct {
	Categories CategoryStore
	Products   ProductStore
	OrderItems OrderItemStore
	Orders     OrderStore
	Users      UserStore
}
