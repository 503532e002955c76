package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eshop-backend/internal/model"
)

type categoryStore struct{ coll *mongo.Collection }

func NewCategoryStore(db *mongo.Database) CategoryStore {
	return &categoryStore{coll: db.Collection(categoriesCollection)}
}

func (s *categoryStore) List(ctx context.Context) ([]model.Category, error) {
	cats, err := findAll[model.Category](ctx, s.coll, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *categoryStore) Get(ctx context.Context, id primitive.ObjectID) (model.Category, error) {
	var c model.Category
	err := findOne(ctx, s.coll, bson.M{"_id": id}, &c, "category")
	return c, err
}

func (s *categoryStore) Create(ctx context.Context, c model.Category) (model.Category, error) {
	c.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return model.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *categoryStore) Update(ctx context.Context, c model.Category) (model.Category, error) {
	var out model.Category
	err := updateOne(ctx, s.coll,
		bson.M{"_id": c.ID},
		bson.M{"$set": bson.M{"name": c.Name, "icon": c.Icon, "color": c.Color}},
		&out, "category")
	return out, err
}

func (s *categoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id}, "category")
}
