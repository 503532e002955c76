package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
	"eshop-backend/internal/service"
)

type Orders struct {
	Service service.OrderService
}

type orderLine struct {
	Product  string `json:"product" binding:"required,objectid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type orderRequest struct {
	OrderItems       []orderLine `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress1 string      `json:"shippingAddress1"`
	ShippingAddress2 string      `json:"shippingAddress2"`
	City             string      `json:"city"`
	Zip              string      `json:"zip"`
	Country          string      `json:"country"`
	Phone            string      `json:"phone"`
	Status           string      `json:"status"`
	User             string      `json:"user" binding:"omitempty,objectid"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ownerOrAdmin resolves the user an order request acts for. Non-admins may
// only act for themselves; an empty id means the caller.
func ownerOrAdmin(c *gin.Context, raw string) (primitive.ObjectID, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return primitive.NilObjectID, model.ErrUnauthorized
	}
	if raw == "" {
		raw = claims.UserID
	}
	id, err := model.ParseID(raw)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !claims.IsAdmin && id.Hex() != claims.UserID {
		return primitive.NilObjectID, model.ErrForbidden
	}
	return id, nil
}

func (h *Orders) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.Service.List(ctx, nil)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Orders) ListByUser(c *gin.Context) {
	if _, err := paramID(c, "userId"); err != nil {
		fail(c, err)
		return
	}
	userID, err := ownerOrAdmin(c, c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.Service.List(ctx, &userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Orders) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Service.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Orders) Create(c *gin.Context) {
	var req orderRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	userID, err := ownerOrAdmin(c, req.User)
	if err != nil {
		fail(c, err)
		return
	}
	lines := make([]service.LineItem, 0, len(req.OrderItems))
	for _, l := range req.OrderItems {
		pid, err := model.ParseID(l.Product)
		if err != nil {
			fail(c, err)
			return
		}
		lines = append(lines, service.LineItem{Product: pid, Quantity: l.Quantity})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Service.Place(ctx, service.PlaceOrder{
		Items:            lines,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
		Status:           req.Status,
		User:             userID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// Update changes the order status, the only field mutable after placement.
func (h *Orders) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Orders) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Service.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	deleted(c, "order")
}

func (h *Orders) TotalSales(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	total, err := h.Service.TotalSales(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalsales": total})
}

func (h *Orders) Count(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.Service.Count(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
