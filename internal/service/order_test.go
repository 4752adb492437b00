package service

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = Actor{UserID: 1}

func TestCheckoutThenPayWithCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Widget", 10)

	_, err := f.carts().Add(ctx, owner.UserID, p.ID, 2)
	require.NoError(t, err)
	order, err := f.carts().Checkout(ctx, owner.UserID)
	require.NoError(t, err)
	require.Equal(t, 20.0, order.TotalAmount)

	coupons := f.coupons()
	coupons.NewDiscount = func() float64 { return 10 }
	c, err := coupons.Generate(ctx, nil)
	require.NoError(t, err)

	res, err := f.orders().Pay(ctx, owner, order.ID, c.Code)
	require.NoError(t, err)
	assert.Equal(t, 18.0, res.Order.TotalAmount)
	assert.Equal(t, 2.0, res.Saved)
	assert.Equal(t, models.StatusProcessing, res.Order.Status)

	stored, err := f.Repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 18.0, stored.TotalAmount)
	assert.Equal(t, 2.0, stored.DiscountAmount)
	assert.Equal(t, c.Code, stored.CouponCode)
	assert.Equal(t, models.StatusProcessing, stored.Status)

	used, err := coupons.GetByCode(ctx, c.Code)
	require.NoError(t, err)
	assert.True(t, used.IsUsed)
	require.NotNil(t, used.UsedBy)
	assert.Equal(t, owner.UserID, *used.UsedBy)

	_, err = f.orders().Pay(ctx, owner, order.ID, "")
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "order already paid")
}

func TestPayGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 10, Quantity: 1}

	for _, st := range []models.OrderStatus{models.StatusShipped, models.StatusDelivered, models.StatusCancelled} {
		o := f.order(t, owner.UserID, st, time.Hour, item)
		_, err := f.orders().Pay(ctx, owner, o.ID, "")
		assert.ErrorIs(t, err, ErrConflict, st)
	}

	o := f.order(t, owner.UserID, models.StatusPending, time.Hour, item)
	_, err := f.orders().Pay(ctx, Actor{UserID: 2}, o.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders().Pay(ctx, owner, 9999, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders().Pay(ctx, owner, o.ID, "000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayRejectsBadCouponWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 50, Quantity: 1}

	expired := &models.Coupon{Code: "100001", DiscountPercentage: 10, IsActive: true, ExpiresAt: f.Now.Add(-time.Hour)}
	used := &models.Coupon{Code: "100002", DiscountPercentage: 10, IsActive: true, ExpiresAt: f.Now.Add(time.Hour)}
	require.NoError(t, f.Repo.CreateCoupon(ctx, expired))
	require.NoError(t, f.Repo.CreateCoupon(ctx, used))
	_, err := f.Repo.MarkCouponUsed(ctx, used.ID, 5)
	require.NoError(t, err)

	for _, code := range []string{expired.Code, used.Code} {
		o := f.order(t, owner.UserID, models.StatusPending, time.Hour, item)
		_, err := f.orders().Pay(ctx, owner, o.ID, code)
		assert.ErrorIs(t, err, ErrCouponInvalid, code)

		stored, err := f.Repo.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
		assert.Equal(t, 50.0, stored.TotalAmount)
	}
}

func TestCouponCannotBeReapplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 10, Quantity: 1}

	c := &models.Coupon{Code: "123123", DiscountPercentage: 20, IsActive: true, ExpiresAt: f.Now.Add(time.Hour)}
	require.NoError(t, f.Repo.CreateCoupon(ctx, c))

	first := f.order(t, owner.UserID, models.StatusPending, time.Hour, item)
	second := f.order(t, owner.UserID, models.StatusPending, time.Hour, item)

	res, err := f.orders().Pay(ctx, owner, first.ID, c.Code)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Order.TotalAmount)

	_, err = f.orders().Pay(ctx, owner, second.ID, c.Code)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 10, Quantity: 1}

	tests := []struct {
		name   string
		status models.OrderStatus
		age    time.Duration
		ok     bool
	}{
		{"pending fresh", models.StatusPending, time.Hour, true},
		{"processing fresh", models.StatusProcessing, 47 * time.Hour, true},
		{"pending too old", models.StatusPending, 49 * time.Hour, false},
		{"processing too old", models.StatusProcessing, 72 * time.Hour, false},
		{"shipped", models.StatusShipped, time.Hour, false},
		{"delivered", models.StatusDelivered, time.Hour, false},
		{"already cancelled", models.StatusCancelled, time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := f.order(t, owner.UserID, tt.status, tt.age, item)
			got, err := f.orders().Cancel(ctx, owner, o.ID)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, models.StatusCancelled, got.Status)
				return
			}
			assert.ErrorIs(t, err, ErrConflict)
			stored, err := f.Repo.GetOrder(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
		})
	}
}

func TestReopenDeliverShip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.orders()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 10, Quantity: 1}

	o := f.order(t, owner.UserID, models.StatusPending, time.Hour, item)
	_, err := svc.Reopen(ctx, owner, o.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Cancel(ctx, owner, o.ID)
	require.NoError(t, err)
	_, err = svc.Deliver(ctx, owner, o.ID)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.Reopen(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	_, err = svc.Ship(ctx, Actor{UserID: 99, Admin: true}, o.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Pay(ctx, owner, o.ID, "")
	require.NoError(t, err)
	got, err = svc.Ship(ctx, Actor{UserID: 99, Admin: true}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)

	got, err = svc.Deliver(ctx, owner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	_, err = svc.Deliver(ctx, owner, o.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// cancel, reopen, pay, ship and deliver each notified the owner
	assert.Equal(t, 5, f.Notifier.count())
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.orders()
	a := f.product(t, "A", 10)
	b := f.product(t, "B", 5)

	pending := f.order(t, owner.UserID, models.StatusPending, time.Hour, models.OrderItem{ProductID: a.ID, Name: "A", Price: 10, Quantity: 1})
	_, err := svc.Review(ctx, owner, pending.ID, 5, "")
	assert.ErrorIs(t, err, ErrConflict)

	o := f.order(t, owner.UserID, models.StatusDelivered, 72*time.Hour,
		models.OrderItem{ProductID: a.ID, Name: "A", Price: 10, Quantity: 1},
		models.OrderItem{ProductID: b.ID, Name: "B", Price: 5, Quantity: 2},
	)

	_, err = svc.Review(ctx, owner, o.ID, 6, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Review(ctx, Actor{UserID: 2, Admin: true}, o.ID, 4, "")
	assert.ErrorIs(t, err, ErrForbidden)

	r1, err := svc.Review(ctx, owner, o.ID, 2, "meh")
	require.NoError(t, err)
	r2, err := svc.Review(ctx, owner, o.ID, 4, "better")
	require.NoError(t, err)
	assert.Equal(t, r1.ID, r2.ID)

	stored, err := f.Repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsReviewed)

	_, _, err = (&ProductService{Repo: f.Repo}).AddReview(ctx, a.ID, 3, 5, "")
	require.NoError(t, err)

	pa, err := f.Repo.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, pa.Rating)
	pb, err := f.Repo.GetProduct(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, pb.Rating)
}

func TestReorderToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.orders()
	a := f.product(t, "A", 10)
	b := f.product(t, "B", 5)
	c := f.product(t, "C", 1)

	o := f.order(t, owner.UserID, models.StatusDelivered, time.Hour,
		models.OrderItem{ProductID: a.ID, Name: "A", Price: 10, Quantity: 2},
		models.OrderItem{ProductID: b.ID, Name: "B", Price: 5, Quantity: 1},
	)

	_, err := svc.ReorderToCart(ctx, owner, o.ID, "append")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.carts().Add(ctx, owner.UserID, a.ID, 1)
	require.NoError(t, err)
	_, err = f.carts().Add(ctx, owner.UserID, c.ID, 4)
	require.NoError(t, err)

	res, err := svc.ReorderToCart(ctx, owner, o.ID, "merge")
	require.NoError(t, err)
	qty := map[uint]uint{}
	for _, it := range res.Items {
		qty[it.ProductID] = it.Quantity
	}
	assert.Equal(t, map[uint]uint{a.ID: 3, b.ID: 1, c.ID: 4}, qty)

	res, err = svc.ReorderToCart(ctx, owner, o.ID, "replace")
	require.NoError(t, err)
	qty = map[uint]uint{}
	for _, it := range res.Items {
		qty[it.ProductID] = it.Quantity
	}
	assert.Equal(t, map[uint]uint{a.ID: 2, b.ID: 1}, qty)

	stored, err := f.Repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)

	_, err = f.Repo.DeleteProduct(ctx, b.ID)
	require.NoError(t, err)
	res, err = svc.ReorderToCart(ctx, owner, o.ID, "replace")
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, res.Skipped)
	assert.Len(t, res.Items, 1)
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.orders()
	o := f.order(t, owner.UserID, models.StatusShipped, time.Hour, models.OrderItem{ProductID: 1, Name: "A", Price: 1, Quantity: 1})

	assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: 2, Admin: true}, o.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, o.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, o.ID), ErrNotFound)
}

func TestAutoDeliver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.orders()
	item := models.OrderItem{ProductID: 1, Name: "A", Price: 1, Quantity: 1}

	oldShipped := f.order(t, 1, models.StatusShipped, 72*time.Hour, item)
	newShipped := f.order(t, 1, models.StatusShipped, 24*time.Hour, item)
	oldPending := f.order(t, 2, models.StatusPending, 96*time.Hour, item)
	oldCancelled := f.order(t, 2, models.StatusCancelled, 96*time.Hour, item)

	n, err := svc.AutoDeliver(ctx, f.Now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want := map[uint]models.OrderStatus{
		oldShipped.ID:   models.StatusDelivered,
		newShipped.ID:   models.StatusShipped,
		oldPending.ID:   models.StatusPending,
		oldCancelled.ID: models.StatusCancelled,
	}
	for id, st := range want {
		o, err := f.Repo.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, st, o.Status, "order %d", id)
	}

	n, err = svc.AutoDeliver(ctx, f.Now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, f.Notifier.count())
}
