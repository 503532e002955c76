package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eshop-backend/internal/model"
)

func TestMongoCategoryStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get decodes the document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.categories", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Phones"},
			{Key: "color", Value: "#fff"},
		}))

		c, err := NewCategoryStore(mt.DB).Get(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, model.Category{ID: id, Name: "Phones", Color: "#fff"}, c)
	})

	mt.Run("get maps no documents to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.categories", mtest.FirstBatch))

		_, err := NewCategoryStore(mt.DB).Get(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("delete of a missing id is not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewCategoryStore(mt.DB).Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, model.ErrNotFound)
	})

	mt.Run("create assigns an id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c, err := NewCategoryStore(mt.DB).Create(ctx, model.Category{Name: "Books"})
		require.NoError(mt, err)
		assert.False(mt, c.ID.IsZero())
		assert.Equal(mt, "Books", c.Name)
	})
}

func TestMongoProductStorePopulatesCategory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get", func(mt *mtest.T) {
		pid, cid := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "shop.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: pid},
				{Key: "name", Value: "Pixel"},
				{Key: "price", Value: 499.0},
				{Key: "category", Value: cid},
			}),
			mtest.CreateCursorResponse(0, "shop.categories", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: cid},
				{Key: "name", Value: "Phones"},
			}),
		)

		p, err := NewProductStore(mt.DB).Get(context.Background(), pid)
		require.NoError(mt, err)
		assert.Equal(mt, "Pixel", p.Name)
		require.NotNil(mt, p.Category)
		assert.Equal(mt, "Phones", p.Category.Name)
	})
}

func TestMongoOrderStoreAggregates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("total sales", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalsales", Value: 42.5},
		}))

		total, err := NewOrderStore(mt.DB).TotalSales(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, 42.5, total)
	})

	mt.Run("total sales without orders is zero", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch))

		total, err := NewOrderStore(mt.DB).TotalSales(ctx)
		require.NoError(mt, err)
		assert.Zero(mt, total)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.orders", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(3)},
		}))

		n, err := NewOrderStore(mt.DB).Count(ctx)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})
}

func TestMongoUserStoreDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := NewUserStore(mt.DB).Create(context.Background(), model.User{Email: "a@b.c", PasswordHash: "x"})
		assert.ErrorIs(mt, err, model.ErrConflict)
	})
}
