package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"eshop-backend/internal/model"
	"eshop-backend/internal/store"
)

// fanOut bounds the number of concurrent store calls made for one order.
const fanOut = 8

type LineItem struct {
	Product  primitive.ObjectID
	Quantity int
}

type PlaceOrder struct {
	Items            []LineItem
	ShippingAddress1 string
	ShippingAddress2 string
	City             string
	Zip              string
	Country          string
	Phone            string
	Status           string
	User             primitive.ObjectID
}

type OrderService interface {
	Place(ctx context.Context, in PlaceOrder) (model.Order, error)
	List(ctx context.Context, userID *primitive.ObjectID) ([]model.OrderSummary, error)
	Get(ctx context.Context, id primitive.ObjectID) (model.OrderDetail, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (model.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	TotalSales(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type orderService struct {
	orders store.OrderStore
	items  store.OrderItemStore
	users  store.UserStore
	now    func() time.Time
}

func NewOrderService(s store.Stores) OrderService {
	return &orderService{orders: s.Orders, items: s.OrderItems, users: s.Users, now: time.Now}
}

// Place creates one order item per line, prices every item against its
// product, and stores the order with the summed total. If any step fails the
// items created so far are deleted again before the error is returned.
func (s *orderService) Place(ctx context.Context, in PlaceOrder) (model.Order, error) {
	if len(in.Items) == 0 {
		return model.Order{}, model.Invalid("order has no items")
	}
	for _, li := range in.Items {
		if li.Quantity < 1 {
			return model.Order{}, model.Invalid("quantity of product %s must be at least 1", li.Product.Hex())
		}
	}

	ids, err := s.createItems(ctx, in.Items)
	if err != nil {
		s.rollback(ctx, ids)
		return model.Order{}, err
	}

	total, err := s.total(ctx, ids)
	if err != nil {
		s.rollback(ctx, ids)
		return model.Order{}, err
	}

	status := in.Status
	if status == "" {
		status = model.DefaultOrderStatus
	}
	order, err := s.orders.Create(ctx, model.Order{
		OrderItems:       ids,
		ShippingAddress1: in.ShippingAddress1,
		ShippingAddress2: in.ShippingAddress2,
		City:             in.City,
		Zip:              in.Zip,
		Country:          in.Country,
		Phone:            in.Phone,
		Status:           status,
		TotalPrice:       total.InexactFloat64(),
		UserID:           in.User,
		DateOrdered:      s.now().UTC(),
	})
	if err != nil {
		s.rollback(ctx, ids)
		return model.Order{}, err
	}
	return order, nil
}

// createItems stores the items concurrently. The returned slice keeps the
// request order; entries whose insert failed stay zero.
func (s *orderService) createItems(ctx context.Context, lines []LineItem) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, li := range lines {
		g.Go(func() error {
			it, err := s.items.Create(gctx, model.OrderItem{Quantity: li.Quantity, ProductID: li.Product})
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			ids[i] = it.ID
			return nil
		})
	}
	return ids, g.Wait()
}

func (s *orderService) total(ctx context.Context, ids []primitive.ObjectID) (decimal.Decimal, error) {
	lines := make([]decimal.Decimal, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, id := range ids {
		g.Go(func() error {
			it, err := s.items.GetWithProduct(gctx, id)
			if errors.Is(err, model.ErrNotFound) {
				return model.Invalid("order item %s references an unknown product", id.Hex())
			}
			if err != nil {
				return err
			}
			price := decimal.NewFromFloat(it.Product.Price)
			lines[i] = price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, lines...), nil
}

// rollback deletes the given order items, ignoring zero ids. It runs on a
// context detached from the request so a cancelled request still cleans up.
func (s *orderService) rollback(ctx context.Context, ids []primitive.ObjectID) {
	created := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			created = append(created, id)
		}
	}
	if len(created) == 0 {
		return
	}
	if _, err := s.items.DeleteMany(context.WithoutCancel(ctx), created); err != nil {
		log.Printf("order rollback: %d items left behind: %v", len(created), err)
	}
}

func (s *orderService) List(ctx context.Context, userID *primitive.ObjectID) ([]model.OrderSummary, error) {
	orders, err := s.orders.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.OrderSummary, 0, len(orders))
	for _, o := range orders {
		sum := model.OrderSummary{Order: o}
		if n, ok := names[o.UserID]; ok {
			sum.User = &n
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *orderService) Get(ctx context.Context, id primitive.ObjectID) (model.OrderDetail, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return model.OrderDetail{}, err
	}
	detail := model.OrderDetail{Order: o, OrderItems: []model.OrderItem{}}

	names, err := s.users.Names(ctx, []primitive.ObjectID{o.UserID})
	if err != nil {
		return model.OrderDetail{}, err
	}
	if n, ok := names[o.UserID]; ok {
		detail.User = &n
	}

	items := make([]*model.OrderItem, len(o.OrderItems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i, itemID := range o.OrderItems {
		g.Go(func() error {
			it, err := s.items.GetWithProduct(gctx, itemID)
			if errors.Is(err, model.ErrNotFound) {
				log.Printf("order %s: item %s unresolved: %v", o.ID.Hex(), itemID.Hex(), err)
				return nil
			}
			if err != nil {
				return err
			}
			items[i] = &it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.OrderDetail{}, err
	}
	for _, it := range items {
		if it != nil {
			detail.OrderItems = append(detail.OrderItems, *it)
		}
	}
	return detail, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (model.Order, error) {
	if status == "" {
		return model.Order{}, model.Invalid("status is required")
	}
	return s.orders.UpdateStatus(ctx, id, status)
}

// Delete removes the order and then its items. Failing to remove the items
// is logged, not returned: the order itself is gone either way.
func (s *orderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	o, err := s.orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.items.DeleteMany(context.WithoutCancel(ctx), o.OrderItems)
	if err != nil {
		log.Printf("order %s deleted, items not removed: %v", id.Hex(), err)
		return nil
	}
	if int(n) != len(o.OrderItems) {
		log.Printf("order %s deleted, %d of %d items removed", id.Hex(), n, len(o.OrderItems))
	}
	return nil
}

func (s *orderService) TotalSales(ctx context.Context) (float64, error) {
	return s.orders.TotalSales(ctx)
}

func (s *orderService) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}
