package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
)

type CartService struct {
	Repo     *repo.GormRepo
	Notifier Notifier
	Events   EventPublisher
	Now      func() time.Time
}

type CartLine struct {
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Available bool    `json:"available"`
}

type CartView struct {
	UserID uint       `json:"userId"`
	Items  []CartLine `json:"items"`
	Total  float64    `json:"total"`
}

func (s *CartService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Get returns the cart priced at current product prices.
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID, items)
}

func (s *CartService) view(ctx context.Context, userID uint, items []models.CartItem) (*CartView, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	v := &CartView{UserID: userID, Items: make([]CartLine, 0, len(items))}
	var prices []float64
	var qtys []uint
	for _, it := range items {
		line := CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := products[it.ProductID]; ok {
			line.Name = p.Name
			line.Price = p.Price
			line.Available = true
			line.Subtotal = LineTotal([]float64{p.Price}, []uint{it.Quantity})
			prices = append(prices, p.Price)
			qtys = append(qtys, it.Quantity)
		}
		v.Items = append(v.Items, line)
	}
	v.Total = LineTotal(prices, qtys)
	return v, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fail(ErrValidation, "productId is required")
	}
	if quantity == 0 {
		return nil, fail(ErrValidation, "quantity must be greater than zero")
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, notFound(err, "product")
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, mykafka.TopicCart, key(userID), "cart_item_added", item)
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity == 0 {
		return nil, fail(ErrValidation, "quantity must be greater than zero")
	}
	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	publish(ctx, s.Events, mykafka.TopicCart, key(userID), "cart_item_updated", item)
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return notFound(err, "cart item")
	}
	publish(ctx, s.Events, mykafka.TopicCart, key(userID), "cart_item_removed", map[string]uint{"userId": userID, "productId": productID})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	publish(ctx, s.Events, mykafka.TopicCart, key(userID), "cart_cleared", map[string]uint{"userId": userID})
	return nil
}

// Checkout turns the cart into a Pending order and empties the cart. Product
// names and prices are copied into the order at this instant.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout", "user_id", userID)

	var order *models.Order
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		items, err := tx.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fail(ErrValidation, "cart is empty")
		}

		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}

		lines := make([]models.OrderItem, 0, len(items))
		prices := make([]float64, 0, len(items))
		qtys := make([]uint, 0, len(items))
		for _, it := range items {
			p, ok := products[it.ProductID]
			if !ok {
				return fail(ErrNotFound, "product %d no longer exists", it.ProductID)
			}
			lines = append(lines, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  it.Quantity,
			})
			prices = append(prices, p.Price)
			qtys = append(qtys, it.Quantity)
		}

		order = &models.Order{
			UserID:      userID,
			Items:       lines,
			TotalAmount: LineTotal(prices, qtys),
			Status:      models.StatusPending,
			OrderDate:   s.now(),
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		var se *Error
		if !errors.As(err, &se) {
			l.Error("checkout_failed", "error", err)
		}
		return nil, err
	}

	l.Info("checkout_success", "order_id", order.ID, "total", order.TotalAmount)
	notify(ctx, s.Notifier, userID, fmt.Sprintf("Order #%d placed, total %.2f", order.ID, order.TotalAmount), KindOrder)
	publish(ctx, s.Events, mykafka.TopicOrders, key(order.ID), "order_created", order)
	return order, nil
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
