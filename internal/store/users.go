package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eshop-backend/internal/model"
)

var withoutHash = bson.M{"passwordHash": 0}

type userStore struct{ coll *mongo.Collection }

func NewUserStore(db *mongo.Database) UserStore {
	return &userStore{coll: db.Collection(usersCollection)}
}

func (s *userStore) List(ctx context.Context) ([]model.User, error) {
	users, err := findAll[model.User](ctx, s.coll, bson.M{}, options.Find().SetProjection(withoutHash))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userStore) Get(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	var u model.User
	err := findOne(ctx, s.coll, bson.M{"_id": id}, &u, "user", options.FindOne().SetProjection(withoutHash))
	return u, err
}

func (s *userStore) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserName, error) {
	out := make(map[primitive.ObjectID]model.UserName, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	names, err := findAll[model.UserName](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("user names: %w", err)
	}
	for _, n := range names {
		out[n.ID] = n
	}
	return out, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := findOne(ctx, s.coll, bson.M{"email": email}, &u, "user")
	return u, err
}

func (s *userStore) Create(ctx context.Context, u model.User) (model.User, error) {
	u.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, fmt.Errorf("user %s: %w", u.Email, model.ErrConflict)
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *userStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, s.coll, bson.M{"_id": id}, "user")
}

func (s *userStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
