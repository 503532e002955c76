package handlers

import (
	"log"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
	"eshop-backend/internal/service"
)

const claimsKey = "claims"

// Authenticate attaches the claims of a valid bearer token to the request.
// Any other request stays anonymous; RequireUser and RequireAdmin reject it.
func Authenticate(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, tok, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if ok && strings.EqualFold(scheme, "Bearer") && tok != "" {
			if claims, err := auth.ParseToken(tok); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

// RequireUser rejects anonymous requests.
func RequireUser(c *gin.Context) {
	if _, ok := claimsFrom(c); !ok {
		fail(c, model.ErrUnauthorized)
		return
	}
	c.Next()
}

// RequireAdmin rejects requests whose token lacks the admin flag.
func RequireAdmin(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		fail(c, model.ErrUnauthorized)
		return
	}
	if !claims.IsAdmin {
		fail(c, model.ErrForbidden)
		return
	}
	c.Next()
}

var registerOnce sync.Once

// RegisterValidators adds the objectid tag to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Printf("register objectid validator: unexpected engine %T", binding.Validator.Engine())
			return
		}
		err := v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
		if err != nil {
			log.Printf("register objectid validator: %v", err)
		}
	})
}
