package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseID(t *testing.T) {
	want := primitive.NewObjectID()

	got, err := ParseID(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, bad := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", want.Hex() + "0"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestParseIDsStopsOnFirstBadID(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	ids, err := ParseIDs([]string{a.Hex(), b.Hex()})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, b}, ids)

	_, err = ParseIDs([]string{a.Hex(), "nope"})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestErrorHelpersWrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(NotFound("product"), ErrNotFound))
	assert.EqualError(t, NotFound("product"), "product not found")
	assert.True(t, errors.Is(Invalid("bad %s", "thing"), ErrInvalidInput))
	assert.EqualError(t, Invalid("bad %s", "thing"), "invalid input: bad thing")
}
