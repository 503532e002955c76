package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eshop-backend/internal/model"
	"eshop-backend/internal/store"
)

type Categories struct {
	Store store.CategoryStore
}

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (h *Categories) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cats, err := h.Store.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Categories) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Store.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Categories) Create(c *gin.Context) {
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Store.Create(ctx, model.Category{Name: req.Name, Icon: req.Icon, Color: req.Color})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Categories) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req categoryRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.Store.Update(ctx, model.Category{ID: id, Name: req.Name, Icon: req.Icon, Color: req.Color})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Categories) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	deleted(c, "category")
}
