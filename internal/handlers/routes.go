package handlers

import (
	"github.com/gin-gonic/gin"

	"eshop-backend/internal/service"
	"eshop-backend/internal/store"
	"eshop-backend/internal/upload"
)

type Deps struct {
	Stores  store.Stores
	Auth    service.AuthService
	Orders  service.OrderService
	Uploads *upload.Uploader
}

// Routes mounts every resource on api. Reads of the catalogue, register and
// login are public; placing orders and reading one's own orders need a
// token; everything else needs an admin token.
func Routes(api *gin.RouterGroup, d Deps) {
	RegisterValidators()
	api.Use(Authenticate(d.Auth))

	cats := &Categories{Store: d.Stores.Categories}
	api.GET("/categories", cats.List)
	api.GET("/categories/:id", cats.Get)
	api.POST("/categories", RequireAdmin, cats.Create)
	api.PUT("/categories/:id", RequireAdmin, cats.Update)
	api.DELETE("/categories/:id", RequireAdmin, cats.Delete)

	products := &Products{Store: d.Stores.Products, Categories: d.Stores.Categories, Uploads: d.Uploads}
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.GET("/products/get/count", products.Count)
	api.GET("/products/get/featured/:count", products.Featured)
	api.POST("/products", RequireAdmin, products.Create)
	api.PUT("/products/:id", RequireAdmin, products.Update)
	api.PUT("/products/gallery-images/:id", RequireAdmin, products.Gallery)
	api.DELETE("/products/:id", RequireAdmin, products.Delete)

	orders := &Orders{Service: d.Orders}
	api.POST("/orders", RequireUser, orders.Create)
	api.GET("/orders/get/usersorders/:userId", RequireUser, orders.ListByUser)
	api.GET("/orders", RequireAdmin, orders.List)
	api.GET("/orders/:id", RequireAdmin, orders.Get)
	api.PUT("/orders/:id", RequireAdmin, orders.Update)
	api.DELETE("/orders/:id", RequireAdmin, orders.Delete)
	api.GET("/orders/get/totalsales", RequireAdmin, orders.TotalSales)
	api.GET("/orders/get/count", RequireAdmin, orders.Count)

	users := &Users{Store: d.Stores.Users, Auth: d.Auth}
	api.POST("/users/register", users.Register)
	api.POST("/users/login", users.Login)
	api.GET("/users", RequireAdmin, users.List)
	api.GET("/users/:id", RequireAdmin, users.Get)
	api.DELETE("/users/:id", RequireAdmin, users.Delete)
	api.GET("/users/get/count", RequireAdmin, users.Count)
}
