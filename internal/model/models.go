// models.go

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Icon  string             `bson:"icon" json:"icon"`
	Color string             `bson:"color" json:"color"`
}

// Product stores its category as a reference. Populated is filled by the
// store when the category document is resolved and is never persisted.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	RichDescription string             `bson:"richDescription" json:"richDescription"`
	Image           string             `bson:"image" json:"image"`
	Images          []string           `bson:"images" json:"images"`
	Brand           string             `bson:"brand" json:"brand"`
	Price           float64            `bson:"price" json:"price"`
	CategoryID      primitive.ObjectID `bson:"category" json:"categoryId"`
	CountInStock    int                `bson:"countInStock" json:"countInStock"`
	Rating          float64            `bson:"rating" json:"rating"`
	NumReviews      int                `bson:"numReviews" json:"numReviews"`
	IsFeatured      bool               `bson:"isFeatured" json:"isFeatured"`
	DateCreated     time.Time          `bson:"dateCreated" json:"dateCreated"`

	Category *Category `bson:"-" json:"category,omitempty"`
}

type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ProductID primitive.ObjectID `bson:"product" json:"productId"`

	Product *Product `bson:"-" json:"product,omitempty"`
}

type Order struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderItems       []primitive.ObjectID `bson:"orderItems" json:"orderItems"`
	ShippingAddress1 string               `bson:"shippingAddress1" json:"shippingAddress1"`
	ShippingAddress2 string               `bson:"shippingAddress2" json:"shippingAddress2"`
	City             string               `bson:"city" json:"city"`
	Zip              string               `bson:"zip" json:"zip"`
	Country          string               `bson:"country" json:"country"`
	Phone            string               `bson:"phone" json:"phone"`
	Status           string               `bson:"status" json:"status"`
	TotalPrice       float64              `bson:"totalPrice" json:"totalPrice"`
	UserID           primitive.ObjectID   `bson:"user" json:"userId"`
	DateOrdered      time.Time            `bson:"dateOrdered" json:"dateOrdered"`
}

// PasswordHash never leaves the server: it is skipped by the JSON encoder and
// projected away on every read that returns users.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`
	Phone        string             `bson:"phone" json:"phone"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	Street       string             `bson:"street" json:"street"`
	Apartment    string             `bson:"apartment" json:"apartment"`
	Zip          string             `bson:"zip" json:"zip"`
	City         string             `bson:"city" json:"city"`
	Country      string             `bson:"country" json:"country"`
}

type UserName struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// OrderSummary is an order with its user's name resolved.
type OrderSummary struct {
	Order
	User *UserName `json:"user"`
}

// OrderDetail additionally resolves every item with its product and the
// product's category.
type OrderDetail struct {
	Order
	User       *UserName   `json:"user"`
	OrderItems []OrderItem `json:"orderItems"`
}

const DefaultOrderStatus = "Pending"
