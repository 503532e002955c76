package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
)

const requestTimeout = 10 * time.Second

// statusFor is the single mapping from error kind to HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidID),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the status for err. Unexpected errors are
// logged and replaced by a generic message.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// paramID parses the named path parameter as an ObjectID.
func paramID(c *gin.Context, name string) (primitive.ObjectID, error) {
	return model.ParseID(c.Param(name))
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return model.Invalid("%v", err)
	}
	return nil
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "The " + what + " is deleted!"})
}

// baseURL is scheme://host of the current request, honouring a TLS-terminating proxy.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host
}
