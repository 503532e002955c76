// Package memory is a process-local implementation of the store interfaces.
// It backs STORE_DRIVER=memory and the handler and service tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop-backend/internal/model"
	"eshop-backend/internal/store"
)

var errInjected = errors.New("memory: injected order item failure")

type DB struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]model.Category
	products   map[primitive.ObjectID]model.Product
	orderItems map[primitive.ObjectID]model.OrderItem
	orders     map[primitive.ObjectID]model.Order
	users      map[primitive.ObjectID]model.User

	// FailOrderItemCreateAfter makes the n+1th order item insert fail when
	// it is positive. Tests use it to exercise placement rollback.
	FailOrderItemCreateAfter int
	orderItemCreates         int
}

func New() *DB {
	return &DB{
		categories: map[primitive.ObjectID]model.Category{},
		products:   map[primitive.ObjectID]model.Product{},
		orderItems: map[primitive.ObjectID]model.OrderItem{},
		orders:     map[primitive.ObjectID]model.Order{},
		users:      map[primitive.ObjectID]model.User{},
	}
}

// Stores exposes db through the store interfaces.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Categories: categories{db},
		Products:   products{db},
		OrderItems: orderItems{db},
		Orders:     orders{db},
		Users:      users{db},
	}
}

// OrderItemCount reports how many order items are stored.
func (db *DB) OrderItemCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.orderItems)
}

type categories struct{ db *DB }

func (s categories) List(ctx context.Context) ([]model.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.Category, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		out = append(out, c)
	}
	sortByID(out, func(c model.Category) primitive.ObjectID { return c.ID })
	return out, nil
}

func (s categories) Get(ctx context.Context, id primitive.ObjectID) (model.Category, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	c, ok := s.db.categories[id]
	if !ok {
		return model.Category{}, model.NotFound("category")
	}
	return c, nil
}

func (s categories) Create(ctx context.Context, c model.Category) (model.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = primitive.NewObjectID()
	s.db.categories[c.ID] = c
	return c, nil
}

func (s categories) Update(ctx context.Context, c model.Category) (model.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[c.ID]; !ok {
		return model.Category{}, model.NotFound("category")
	}
	s.db.categories[c.ID] = c
	return c, nil
}

func (s categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.categories[id]; !ok {
		return model.NotFound("category")
	}
	delete(s.db.categories, id)
	return nil
}

type products struct{ db *DB }

// populated must be called with the lock held.
func (s products) populated(p model.Product) model.Product {
	p.Images = slices.Clone(p.Images)
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Category = nil
	if c, ok := s.db.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

func (s products) filter(keep func(model.Product) bool, limit int64) []model.Product {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []model.Product{}
	for _, p := range s.db.products {
		if keep(p) {
			out = append(out, s.populated(p))
		}
	}
	sortByID(out, func(p model.Product) primitive.ObjectID { return p.ID })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (s products) List(ctx context.Context, cats []primitive.ObjectID) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool {
		return len(cats) == 0 || slices.Contains(cats, p.CategoryID)
	}, 0), nil
}

func (s products) Get(ctx context.Context, id primitive.ObjectID) (model.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	p, ok := s.db.products[id]
	if !ok {
		return model.Product{}, model.NotFound("product")
	}
	return s.populated(p), nil
}

func (s products) Create(ctx context.Context, p model.Product) (model.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p.ID = primitive.NewObjectID()
	if p.DateCreated.IsZero() {
		p.DateCreated = time.Now().UTC()
	}
	p.Category = nil
	s.db.products[p.ID] = p
	return s.populated(p), nil
}

func (s products) Update(ctx context.Context, p model.Product) (model.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	old, ok := s.db.products[p.ID]
	if !ok {
		return model.Product{}, model.NotFound("product")
	}
	p.Images = old.Images
	p.DateCreated = old.DateCreated
	p.Category = nil
	s.db.products[p.ID] = p
	return s.populated(p), nil
}

func (s products) SetImages(ctx context.Context, id primitive.ObjectID, images []string) (model.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.products[id]
	if !ok {
		return model.Product{}, model.NotFound("product")
	}
	p.Images = slices.Clone(images)
	s.db.products[id] = p
	return s.populated(p), nil
}

func (s products) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.products[id]; !ok {
		return model.NotFound("product")
	}
	delete(s.db.products, id)
	return nil
}

func (s products) Count(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.products)), nil
}

func (s products) Featured(ctx context.Context, limit int64) ([]model.Product, error) {
	return s.filter(func(p model.Product) bool { return p.IsFeatured }, limit), nil
}

type orderItems struct{ db *DB }

func (s orderItems) Create(ctx context.Context, it model.OrderItem) (model.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.orderItemCreates++
	if n := s.db.FailOrderItemCreateAfter; n > 0 && s.db.orderItemCreates > n {
		return model.OrderItem{}, errInjected
	}
	it.ID = primitive.NewObjectID()
	it.Product = nil
	s.db.orderItems[it.ID] = it
	return it, nil
}

func (s orderItems) Get(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	it, ok := s.db.orderItems[id]
	if !ok {
		return model.OrderItem{}, model.NotFound("order item")
	}
	return it, nil
}

func (s orderItems) GetWithProduct(ctx context.Context, id primitive.ObjectID) (model.OrderItem, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return model.OrderItem{}, err
	}
	p, err := products(s).Get(ctx, it.ProductID)
	if err != nil {
		return model.OrderItem{}, err
	}
	it.Product = &p
	return it, nil
}

func (s orderItems) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.db.orderItems[id]; ok {
			delete(s.db.orderItems, id)
			n++
		}
	}
	return n, nil
}

type orders struct{ db *DB }

func (s orders) List(ctx context.Context, userID *primitive.ObjectID) ([]model.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := []model.Order{}
	for _, o := range s.db.orders {
		if userID == nil || o.UserID == *userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b model.Order) int { return b.DateOrdered.Compare(a.DateOrdered) })
	return out, nil
}

func (s orders) Get(ctx context.Context, id primitive.ObjectID) (model.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	o, ok := s.db.orders[id]
	if !ok {
		return model.Order{}, model.NotFound("order")
	}
	return o, nil
}

func (s orders) Create(ctx context.Context, o model.Order) (model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.OrderItems = slices.Clone(o.OrderItems)
	s.db.orders[o.ID] = o
	return o, nil
}

func (s orders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[id]
	if !ok {
		return model.Order{}, model.NotFound("order")
	}
	o.Status = status
	s.db.orders[id] = o
	return o, nil
}

func (s orders) Delete(ctx context.Context, id primitive.ObjectID) (model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[id]
	if !ok {
		return model.Order{}, model.NotFound("order")
	}
	delete(s.db.orders, id)
	return o, nil
}

func (s orders) TotalSales(ctx context.Context) (float64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var total float64
	for _, o := range s.db.orders {
		total += o.TotalPrice
	}
	return total, nil
}

func (s orders) Count(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.orders)), nil
}

type users struct{ db *DB }

func redact(u model.User) model.User {
	u.PasswordHash = ""
	return u
}

func (s users) List(ctx context.Context) ([]model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make([]model.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, redact(u))
	}
	sortByID(out, func(u model.User) primitive.ObjectID { return u.ID })
	return out, nil
}

func (s users) Get(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, model.NotFound("user")
	}
	return redact(u), nil
}

func (s users) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserName, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	out := make(map[primitive.ObjectID]model.UserName, len(ids))
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			out[id] = model.UserName{ID: u.ID, Name: u.Name}
		}
	}
	return out, nil
}

func (s users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.NotFound("user")
}

func (s users) Create(ctx context.Context, u model.User) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return model.User{}, model.ErrConflict
		}
	}
	u.ID = primitive.NewObjectID()
	s.db.users[u.ID] = u
	return redact(u), nil
}

func (s users) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[id]; !ok {
		return model.NotFound("user")
	}
	delete(s.db.users, id)
	return nil
}

func (s users) Count(ctx context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.users)), nil
}

// sortByID orders by ObjectID, which sorts by creation time like a Mongo
// natural-order scan usually does.
func sortByID[T any](xs []T, id func(T) primitive.ObjectID) {
	slices.SortFunc(xs, func(a, b T) int {
		return strings.Compare(id(a).Hex(), id(b).Hex())
	})
}
