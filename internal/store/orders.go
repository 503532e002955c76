package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop-backend/internal/model"
)

type orderItemStore struct {
	coll     *mongo.Collection
	products ProductStore
}

func NewOrderItemStore(db *mongo.Database) OrderItemStore {
	return &orderItemStore{
		coll:     db.Collection(orderItemsCollection),
		products: NewProductStore(db),
	}
}

func (s *orderItemStore) Create(ctx context.Context, it model.OrderItem) (model.OrderItem, error) {
	it.ID = primitive.NewObjectID()
	it.Product = nil
	if _, err := s.coll.InsertOne(ctx, it); err != nil {
		return model.OrderItem{}, fmt.Errorf("insert order item: %w", err)
	}
	return it, nil
}

func (s *orderItemStore) Get(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error) {
	var it model.OrderItem
	err := findOne(ctx, s.coll, bson.M{"_id": id}, &it, "order item")
	return it, err
}

func (s *orderItemStore) GetWithProduct(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return model.OrderItem{}, err
	}
	p, err := s.products.Get(ctx, it.ProductID)
	if err != nil {
		return model.OrderItem{}, fmt.Errorf("order item %s: %w", id.Hex(), err)
	}
	it.Product = &p
	return it, nil
}

func (s *orderItemStore) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete order items: %w", err)
	}
	return res.DeletedCount, nil
}

type orderStore struct{ coll *mongo.Collection }

func NewOrderStore(db *mongo.Database) OrderStore {
	return &orderStore{coll: db.Collection(ordersCollection)}
}

func (s *orderStore) List(ctx context.Context, userID *primitive.ObjectID) ([]model.Order, error) {
	filter := bson.M{}
	if userID != nil {
		filter["user"] = *userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}})
	orders, err := findAll[model.Order](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderStore) Get(ctx context.Context, id primitive.ObjectID) (model.Order, error) {
	var o model.Order
	err := findOne(ctx, s.coll, bson.M{"_id": id}, &o, "order")
	return o, err
}

func (s *orderStore) Create(ctx context.Context, o model.Order) (model.Order, error) {
	o.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *orderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (model.Order, error) {
	var o model.Order
	err := updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}}, &o, "order")
	return o, err
}

func (s *orderStore) Delete(ctx context.Context, id primitive.ObjectID) (model.Order, error) {
	var o model.Order
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, model.NotFound("order")
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("delete order: %w", err)
	}
	return o, nil
}

func (s *orderStore) TotalSales(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalsales", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("total sales: %w", err)
	}
	var rows []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("total sales: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalSales, nil
}

func (s *orderStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
