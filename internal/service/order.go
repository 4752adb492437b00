package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/util"
)

const (
	DefaultCancelWindow = 48 * time.Hour
	DefaultDeliverAfter = 48 * time.Hour

	MergeBehaviorMerge   = "merge"
	MergeBehaviorReplace = "replace"
)

// Actor is the authenticated caller of an order operation.
type Actor struct {
	UserID uint
	Admin  bool
}

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier Notifier
	Events   EventPublisher

	CancelWindow time.Duration
	DeliverAfter time.Duration
	Now          func() time.Time
}

type PayResult struct {
	Order  *models.Order  `json:"order"`
	Coupon *models.Coupon `json:"coupon,omitempty"`
	Saved  float64        `json:"saved"`
}

type ReorderResult struct {
	Items   []models.CartItem `json:"items"`
	Skipped []uint            `json:"skipped,omitempty"`
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) cancelWindow() time.Duration {
	if s.CancelWindow > 0 {
		return s.CancelWindow
	}
	return DefaultCancelWindow
}

func (s *OrderService) deliverAfter() time.Duration {
	if s.DeliverAfter > 0 {
		return s.DeliverAfter
	}
	return DefaultDeliverAfter
}

func isFinal(st models.OrderStatus) bool {
	return st == models.StatusShipped || st == models.StatusDelivered || st == models.StatusCancelled
}

func (s *OrderService) load(ctx context.Context, r *repo.GormRepo, actor Actor, id uint, lock bool) (*models.Order, error) {
	var (
		o   *models.Order
		err error
	)
	if lock {
		o, err = r.GetOrderForUpdate(ctx, id)
	} else {
		o, err = r.GetOrder(ctx, id)
	}
	if err != nil {
		return nil, notFound(err, "order")
	}
	if o.UserID != actor.UserID && !actor.Admin {
		return nil, fail(ErrForbidden, "order belongs to another user")
	}
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	return s.load(ctx, s.Repo, actor, id, false)
}

func (s *OrderService) List(ctx context.Context, userID uint, page, size int) (int64, []models.Order, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListOrders(ctx, userID, offset, limit)
}

// Pay moves a Pending order to Processing, optionally redeeming a coupon. The
// coupon and the order are written in one transaction.
func (s *OrderService) Pay(ctx context.Context, actor Actor, id uint, couponCode string) (*PayResult, error) {
	couponCode = strings.TrimSpace(couponCode)
	res := &PayResult{}

	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := s.load(ctx, tx, actor, id, true)
		if err != nil {
			return err
		}
		switch {
		case isFinal(o.Status):
			return fail(ErrConflict, "order is in a final state (%s)", o.Status)
		case o.Status == models.StatusProcessing:
			return fail(ErrConflict, "order already paid")
		}

		fields := map[string]any{"status": models.StatusProcessing}
		if couponCode != "" {
			c, err := tx.GetCouponForUpdate(ctx, couponCode)
			if err != nil {
				return notFound(err, "coupon")
			}
			if err := CheckRedeemable(c, s.now()); err != nil {
				return err
			}

			saved, final := ApplyDiscount(o.TotalAmount, c.DiscountPercentage)
			ok, err := tx.MarkCouponUsed(ctx, c.ID, o.UserID)
			if err != nil {
				return err
			}
			if !ok {
				return fail(ErrCouponInvalid, "coupon has already been used")
			}
			c.IsUsed = true
			c.UsedBy = &o.UserID

			fields["total_amount"] = final
			fields["discount_amount"] = saved
			fields["coupon_code"] = c.Code
			o.TotalAmount = final
			o.DiscountAmount = saved
			o.CouponCode = c.Code
			res.Coupon = c
			res.Saved = saved
		}

		if err := tx.SaveOrderFields(ctx, o, fields); err != nil {
			return err
		}
		o.Status = models.StatusProcessing
		res.Order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	o := res.Order
	logging.FromContext(ctx).Info("order_paid", "order_id", o.ID, "total", o.TotalAmount, "saved", res.Saved)
	notify(ctx, s.Notifier, o.UserID, fmt.Sprintf("Payment received for order #%d, total %.2f", o.ID, o.TotalAmount), KindOrder)
	publish(ctx, s.Events, mykafka.TopicOrders, key(o.ID), "order_paid", res)
	return res, nil
}

func (s *OrderService) Ship(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	return s.transition(ctx, actor, id, models.StatusShipped, "order_shipped", func(o *models.Order) error {
		if o.Status != models.StatusProcessing {
			return fail(ErrConflict, "only processing orders can be shipped (status %s)", o.Status)
		}
		return nil
	})
}

func (s *OrderService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	return s.transition(ctx, actor, id, models.StatusCancelled, "order_cancelled", func(o *models.Order) error {
		if isFinal(o.Status) {
			return fail(ErrConflict, "order cannot be cancelled in status %s", o.Status)
		}
		if s.now().Sub(o.OrderDate) > s.cancelWindow() {
			return fail(ErrConflict, "cancellation window has passed")
		}
		return nil
	})
}

func (s *OrderService) Reopen(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	return s.transition(ctx, actor, id, models.StatusPending, "order_reopened", func(o *models.Order) error {
		if o.Status != models.StatusCancelled {
			return fail(ErrConflict, "only cancelled orders can be reopened")
		}
		return nil
	})
}

func (s *OrderService) Deliver(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	return s.transition(ctx, actor, id, models.StatusDelivered, "order_delivered", func(o *models.Order) error {
		if o.Status == models.StatusDelivered || o.Status == models.StatusCancelled {
			return fail(ErrConflict, "order is already %s", strings.ToLower(string(o.Status)))
		}
		return nil
	})
}

func (s *OrderService) transition(ctx context.Context, actor Actor, id uint, to models.OrderStatus, event string, guard func(*models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := s.load(ctx, tx, actor, id, true)
		if err != nil {
			return err
		}
		if err := guard(o); err != nil {
			return err
		}
		if err := tx.SaveOrderFields(ctx, o, map[string]any{"status": to}); err != nil {
			return err
		}
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info(event, "order_id", order.ID, "status", order.Status)
	notify(ctx, s.Notifier, order.UserID, fmt.Sprintf("Order #%d is now %s", order.ID, order.Status), KindOrder)
	publish(ctx, s.Events, mykafka.TopicOrders, key(order.ID), event, order)
	return order, nil
}

// Review records the owner's single review of a delivered order and mirrors the
// rating onto every product in it.
func (s *OrderService) Review(ctx context.Context, actor Actor, id uint, rating int, comment string) (*models.OrderReview, error) {
	if rating < 1 || rating > 5 {
		return nil, fail(ErrValidation, "rating must be between 1 and 5")
	}

	var review *models.OrderReview
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := s.load(ctx, tx, actor, id, true)
		if err != nil {
			return err
		}
		if o.UserID != actor.UserID {
			return fail(ErrForbidden, "only the order owner can review it")
		}
		if o.Status != models.StatusDelivered {
			return fail(ErrConflict, "only delivered orders can be reviewed")
		}

		review = &models.OrderReview{OrderID: o.ID, UserID: actor.UserID, Rating: rating, Comment: strings.TrimSpace(comment)}
		if _, err := tx.UpsertOrderReview(ctx, review); err != nil {
			return err
		}
		if !o.IsReviewed {
			if err := tx.SaveOrderFields(ctx, o, map[string]any{"is_reviewed": true}); err != nil {
				return err
			}
		}

		seen := make(map[uint]bool, len(o.Items))
		for _, it := range o.Items {
			if seen[it.ProductID] {
				continue
			}
			seen[it.ProductID] = true
			orderID := o.ID
			pr := &models.ProductReview{
				ProductID: it.ProductID,
				UserID:    actor.UserID,
				OrderID:   &orderID,
				Rating:    rating,
				Comment:   review.Comment,
			}
			if err := tx.UpsertOrderProductReview(ctx, pr); err != nil {
				return err
			}
			if _, err := tx.RecomputeProductRating(ctx, it.ProductID, Round2); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.Notifier, actor.UserID, fmt.Sprintf("Thanks for reviewing order #%d", id), KindOrder)
	publish(ctx, s.Events, mykafka.TopicOrders, key(id), "order_reviewed", review)
	return review, nil
}

// ReorderToCart copies the order lines into the owner's cart. Products that no
// longer exist are skipped and reported.
func (s *OrderService) ReorderToCart(ctx context.Context, actor Actor, id uint, mergeBehavior string) (*ReorderResult, error) {
	mode := strings.ToLower(strings.TrimSpace(mergeBehavior))
	if mode == "" {
		mode = MergeBehaviorMerge
	}
	if mode != MergeBehaviorMerge && mode != MergeBehaviorReplace {
		return nil, fail(ErrValidation, "mergeBehavior must be %q or %q", MergeBehaviorMerge, MergeBehaviorReplace)
	}

	res := &ReorderResult{}
	var owner uint
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := s.load(ctx, tx, actor, id, false)
		if err != nil {
			return err
		}
		owner = o.UserID

		ids := make([]uint, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}

		if mode == MergeBehaviorReplace {
			if err := tx.ClearCart(ctx, owner); err != nil {
				return err
			}
		}
		for _, it := range o.Items {
			if _, ok := products[it.ProductID]; !ok {
				res.Skipped = append(res.Skipped, it.ProductID)
				continue
			}
			if err := tx.AddToCart(ctx, &models.CartItem{UserID: owner, ProductID: it.ProductID, Quantity: it.Quantity}); err != nil {
				return err
			}
		}

		res.Items, err = tx.GetCart(ctx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicCart, key(owner), "cart_reordered", map[string]any{"orderId": id, "mergeBehavior": mode})
	return res, nil
}

// Delete removes the order for its owner regardless of status.
func (s *OrderService) Delete(ctx context.Context, actor Actor, id uint) error {
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if o.UserID != actor.UserID {
			return fail(ErrForbidden, "only the order owner can delete it")
		}
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.Events, mykafka.TopicOrders, key(id), "order_deleted", map[string]uint{"orderId": id, "userId": actor.UserID})
	return nil
}

// AutoDeliver marks Shipped orders older than the delivery threshold as
// Delivered and returns how many changed.
func (s *OrderService) AutoDeliver(ctx context.Context, now time.Time) (int, error) {
	l := logging.FromContext(ctx).With("svc", "order.auto_deliver")
	cutoff := now.UTC().Add(-s.deliverAfter())

	due, err := s.Repo.ListShippedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, o := range due {
		ok, err := s.Repo.MarkDeliveredIfShipped(ctx, o.ID)
		if err != nil {
			l.Error("auto_deliver_failed", "order_id", o.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		delivered++
		o.Status = models.StatusDelivered
		notify(ctx, s.Notifier, o.UserID, fmt.Sprintf("Order #%d has been delivered", o.ID), KindOrder)
		publish(ctx, s.Events, mykafka.TopicOrders, key(o.ID), "order_delivered", o)
	}

	l.Info("auto_deliver_done", "cutoff", cutoff, "candidates", len(due), "delivered", delivered)
	return delivered, nil
}
