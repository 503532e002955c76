package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
	"eshop-backend/internal/store"
	"eshop-backend/internal/upload"
)

type Products struct {
	Store      store.ProductStore
	Categories store.CategoryStore
	Uploads    *upload.Uploader
}

type productForm struct {
	Name            string  `form:"name" binding:"required"`
	Description     string  `form:"description"`
	RichDescription string  `form:"richDescription"`
	Brand           string  `form:"brand"`
	Price           float64 `form:"price" binding:"gte=0"`
	Category        string  `form:"category"`
	CountInStock    int     `form:"countInStock" binding:"gte=0,lte=255"`
	Rating          float64 `form:"rating"`
	NumReviews      int     `form:"numReviews" binding:"gte=0"`
	IsFeatured      bool    `form:"isFeatured"`
}

func (f productForm) product(category primitive.ObjectID) model.Product {
	return model.Product{
		Name:            f.Name,
		Description:     f.Description,
		RichDescription: f.RichDescription,
		Brand:           f.Brand,
		Price:           f.Price,
		CategoryID:      category,
		CountInStock:    f.CountInStock,
		Rating:          f.Rating,
		NumReviews:      f.NumReviews,
		IsFeatured:      f.IsFeatured,
	}
}

// bindForm binds the product fields and resolves the category they name.
func (h *Products) bindForm(ctx context.Context, c *gin.Context) (productForm, primitive.ObjectID, error) {
	var f productForm
	if err := c.ShouldBind(&f); err != nil {
		return f, primitive.NilObjectID, model.Invalid("%v", err)
	}
	catID, err := model.ParseID(f.Category)
	if err != nil {
		return f, primitive.NilObjectID, err
	}
	if _, err := h.Categories.Get(ctx, catID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return f, primitive.NilObjectID, model.Invalid("category %s does not exist", catID.Hex())
		}
		return f, primitive.NilObjectID, err
	}
	return f, catID, nil
}

func (h *Products) List(c *gin.Context) {
	var cats []primitive.ObjectID
	if raw := c.Query("categories"); raw != "" {
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		ids, err := model.ParseIDs(parts)
		if err != nil {
			fail(c, err)
			return
		}
		cats = ids
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ps, err := h.Store.List(ctx, cats)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (h *Products) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Store.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Products) Create(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	f, catID, err := h.bindForm(ctx, c)
	if err != nil {
		fail(c, err)
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, model.Invalid("no image in the request"))
		return
	}
	url, err := h.Uploads.Image(ctx, fh, baseURL(c))
	if err != nil {
		fail(c, err)
		return
	}

	p := f.product(catID)
	p.Image = url
	created, err := h.Store.Create(ctx, p)
	if err != nil {
		h.Uploads.Discard(ctx, url)
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update replaces the product's fields. The image is only replaced when a
// new file is sent.
func (h *Products) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	f, catID, err := h.bindForm(ctx, c)
	if err != nil {
		fail(c, err)
		return
	}
	existing, err := h.Store.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	p := f.product(catID)
	p.ID = id
	p.Image = existing.Image
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		if p.Image, err = h.Uploads.Image(ctx, fh, baseURL(c)); err != nil {
			fail(c, err)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		fail(c, model.Invalid("%v", err))
		return
	}

	updated, err := h.Store.Update(ctx, p)
	if err != nil {
		if p.Image != existing.Image {
			h.Uploads.Discard(ctx, p.Image)
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Gallery replaces the product's image list with the uploaded files.
func (h *Products) Gallery(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Store.Get(ctx, id); err != nil {
		fail(c, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, model.Invalid("%v", err))
		return
	}
	urls, err := h.Uploads.Images(ctx, form.File["images"], baseURL(c))
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.Store.SetImages(ctx, id, urls)
	if err != nil {
		h.Uploads.Discard(ctx, urls...)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Products) Delete(c *gin.Context) {
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
	deleted(c, "product")
}

func (h *Products) Count(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := h.Store.Count(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// Featured returns up to :count featured products; 0 means all of them.
func (h *Products) Featured(c *gin.Context) {
	n, err := strconv.ParseInt(c.Param("count"), 10, 64)
	if err != nil || n < 0 {
		fail(c, model.Invalid("count must be a non-negative integer"))
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ps, err := h.Store.Featured(ctx, n)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}
