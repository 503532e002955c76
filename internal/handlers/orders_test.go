package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
)

func (a *testAPI) placeOrder(token string, body map[string]any) model.Order {
	a.t.Helper()
	w := a.json(http.MethodPost, "/api/v1/orders", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Order](a.t, w)
}

func line(p model.Product, qty int) map[string]any {
	return map[string]any{"product": p.ID.Hex(), "quantity": qty}
}

func TestPlaceOrderComputesTotal(t *testing.T) {
	api := newMemoryAPI(t)
	cat := api.category("Misc")
	a := api.product("A", 10, cat, false)
	b := api.product("B", 5, cat, false)

	o := api.placeOrder(api.userToken, map[string]any{
		"orderItems": []any{line(a, 2), line(b, 1)},
		"city":       "Oslo",
		"country":    "NO",
	})
	assert.Equal(t, 25.0, o.TotalPrice)
	assert.Len(t, o.OrderItems, 2)
	assert.Equal(t, api.user.ID, o.UserID)
	assert.Equal(t, model.DefaultOrderStatus, o.Status)
	assert.Equal(t, 2, api.db.OrderItemCount())

	w := api.do(http.MethodGet, "/api/v1/orders/"+o.ID.Hex(), api.adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[model.OrderDetail](t, w)
	require.NotNil(t, detail.User)
	assert.Equal(t, "Ada", detail.User.Name)
	require.Len(t, detail.OrderItems, 2)
	assert.Equal(t, a.ID, detail.OrderItems[0].ProductID)
	require.NotNil(t, detail.OrderItems[0].Product)
	assert.Equal(t, "A", detail.OrderItems[0].Product.Name)
	require.NotNil(t, detail.OrderItems[0].Product.Category)
	assert.Equal(t, "Misc", detail.OrderItems[0].Product.Category.Name)
}

func TestPlaceOrderRejected(t *testing.T) {
	api := newMemoryAPI(t)
	p := api.product("A", 10, api.category("Misc"), false)

	cases := map[string]map[string]any{
		"no items":        {"orderItems": []any{}},
		"zero quantity":   {"orderItems": []any{line(p, 0)}},
		"malformed id":    {"orderItems": []any{map[string]any{"product": "nope", "quantity": 1}}},
		"unknown product": {"orderItems": []any{line(p, 1), map[string]any{"product": primitive.NewObjectID().Hex(), "quantity": 1}}},
	}
	for name, body := range cases {
		w := api.json(http.MethodPost, "/api/v1/orders", api.userToken, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	assert.Zero(t, api.db.OrderItemCount(), "failed orders leave no items behind")

	w := api.json(http.MethodPost, "/api/v1/orders", "", map[string]any{"orderItems": []any{line(p, 1)}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrdersForAnotherUser(t *testing.T) {
	api := newMemoryAPI(t)
	p := api.product("A", 10, api.category("Misc"), false)
	other := primitive.NewObjectID().Hex()

	w := api.json(http.MethodPost, "/api/v1/orders", api.userToken, map[string]any{
		"orderItems": []any{line(p, 1)},
		"user":       other,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/orders/get/usersorders/"+other, api.userToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins may place and read orders on anyone's behalf.
	o := api.placeOrder(api.adminToken, map[string]any{"orderItems": []any{line(p, 3)}, "user": api.user.ID.Hex()})
	assert.Equal(t, api.user.ID, o.UserID)

	w = api.do(http.MethodGet, "/api/v1/orders/get/usersorders/"+api.user.ID.Hex(), api.userToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]model.OrderSummary](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)

	w = api.do(http.MethodGet, "/api/v1/orders/get/usersorders/"+other, api.adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrderAdminOperations(t *testing.T) {
	api := newMemoryAPI(t)
	cat := api.category("Misc")
	a := api.product("A", 10, cat, false)
	b := api.product("B", 2.5, cat, false)

	first := api.placeOrder(api.userToken, map[string]any{"orderItems": []any{line(a, 2), line(b, 2)}})
	second := api.placeOrder(api.userToken, map[string]any{"orderItems": []any{line(b, 1)}})

	w := api.do(http.MethodGet, "/api/v1/orders/get/totalsales", api.adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalsales":27.5}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/orders/get/count", api.adminToken, nil, "")
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = api.do(http.MethodGet, "/api/v1/orders", api.adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.OrderSummary](t, w), 2)

	w = api.json(http.MethodPut, "/api/v1/orders/"+first.ID.Hex(), api.adminToken, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Shipped", decode[model.Order](t, w).Status)

	w = api.json(http.MethodPut, "/api/v1/orders/"+first.ID.Hex(), api.adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/api/v1/orders/"+first.ID.Hex(), api.userToken, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.Equal(t, 3, api.db.OrderItemCount())
	w = api.do(http.MethodDelete, "/api/v1/orders/"+first.ID.Hex(), api.adminToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"The order is deleted!"}`, w.Body.String())
	assert.Equal(t, 1, api.db.OrderItemCount())

	w = api.do(http.MethodGet, "/api/v1/orders/"+first.ID.Hex(), api.adminToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = api.do(http.MethodDelete, "/api/v1/orders/"+first.ID.Hex(), api.adminToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/orders/get/totalsales", api.adminToken, nil, "")
	assert.JSONEq(t, `{"totalsales":2.5}`, w.Body.String())
	assert.NotEqual(t, first.ID, second.ID)
}
