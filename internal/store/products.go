package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop-backend/internal/model"
)

type productStore struct {
	coll       *mongo.Collection
	categories *mongo.Collection
}

func NewProductStore(db *mongo.Database) ProductStore {
	return &productStore{
		coll:       db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
	}
}

// populate resolves the category of every product with a single $in query.
func (s *productStore) populate(ctx context.Context, ps []model.Product) error {
	if len(ps) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.CategoryID)
	}
	cats, err := findAll[model.Category](ctx, s.categories, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("populate categories: %w", err)
	}
	byID := make(map[primitive.ObjectID]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	for i := range ps {
		if c, ok := byID[ps[i].CategoryID]; ok {
			ps[i].Category = &c
		}
	}
	return nil
}

func (s *productStore) list(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]model.Product, error) {
	ps, err := findAll[model.Product](ctx, s.coll, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := s.populate(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *productStore) one(ctx context.Context, p model.Product) (model.Product, error) {
	ps := []model.Product{p}
	if err := s.populate(ctx, ps); err != nil {
		return model.Product{}, err
	}
	return ps[0], nil
}

func (s *productStore) List(ctx context.Context, categories []primitive.ObjectID) ([]model.Product, error) {
	filter := bson.M{}
	if len(categories) > 0 {
		filter["category"] = bson.M{"$in": categories}
	}
	return s.list(ctx, filter)
}

func (s *productStore) Get(ctx context.Context, id primitive.ObjectID) (model.Product, error) {
	var p model.Product
	if err := findOne(ctx, s.coll, bson.M{"_id": id}, &p, "product"); err != nil {
		return model.Product{}, err
	}
	return s.one(ctx, p)
}

func (s *productStore) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.ID = primitive.NewObjectID()
	if p.DateCreated.IsZero() {
		p.DateCreated = time.Now().UTC()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Category = nil
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return s.one(ctx, p)
}

func (s *productStore) Update(ctx context.Context, p model.Product) (model.Product, error) {
	var out model.Product
	err := updateOne(ctx, s.coll, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"richDescription": p.RichDescription,
		"image":           p.Image,
		"brand":           p.Brand,
		"price":           p.Price,
		"category":        p.CategoryID,
		"countInStock":    p.CountInStock,
		"rating":          p.Rating,
		"numReviews":      p.NumReviews,
		"isFeatured":      p.IsFeatured,
	}}, &out, "product")
	if err != nil {
		return model.Product{}, err
	}
	return s.one(ctx, out)
}

func (s *productStore) SetImages(ctx context.Context, id primitive.ObjectID, images []string) (model.Product, error) {
	if images == nil {
		images = []string{}
	}
	var out model.Product
	err := updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"images": images}}, &out, "product")
	if err != nil {
		return model.Product{}, err
	}
	return s.one(ctx, out)
}

func (s *productStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id}, "product")
}

func (s *productStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (s *productStore) Featured(ctx context.Context, limit int64) ([]model.Product, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.list(ctx, bson.M{"isFeatured": true}, opts)
}
