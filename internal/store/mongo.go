package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop-backend/internal/model"
)

const (
	categoriesCollection = "categories"
	productsCollection   = "products"
	orderItemsCollection = "orderitems"
	ordersCollection     = "orders"
	usersCollection      = "users"
)

// Connect dials MongoDB and pings it before returning the client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Println("Connected to MongoDB")
	return client, nil
}

// NewMongoStores builds every store on top of db.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Categories: NewCategoryStore(db),
		Products:   NewProductStore(db),
		OrderItems: NewOrderItemStore(db),
		Orders:     NewOrderStore(db),
		Users:      NewUserStore(db),
	}
}

// EnsureIndexes creates the indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	_, err = db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "dateOrdered", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("orders user index: %w", err)
	}
	return nil
}

// findOne decodes the single document matching filter into v, mapping
// mongo.ErrNoDocuments to a not-found error for kind.
func findOne(ctx context.Context, coll *mongo.Collection, filter any, v any, kind string, opts ...*options.FindOneOptions) error {
	err := coll.FindOne(ctx, filter, opts...).Decode(v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.NotFound(kind)
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", kind, err)
	}
	return nil
}

// findAll decodes every document matching filter into out. A nil result is
// replaced by an empty slice so responses render [] rather than null.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, filter, update, v any, kind string) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.NotFound(kind)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter any, kind string) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return model.NotFound(kind)
	}
	return nil
}
