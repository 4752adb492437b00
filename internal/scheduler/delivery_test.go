package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDeliverer struct {
	calls atomic.Int32
	err   error
}

func (d *countingDeliverer) AutoDeliver(_ context.Context, _ time.Time) (int, error) {
	d.calls.Add(1)
	return 1, d.err
}

func TestNewDeliverySweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewDeliverySweeper(&countingDeliverer{}, "every tuesday", nil)
	assert.Error(t, err)
}

func TestRunOnceDeliversOverdueOrders(t *testing.T) {
	ctx := context.Background()
	r := repo.New(testutil.InitTestDB(t))
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	old := &models.Order{UserID: 1, Status: models.StatusShipped, OrderDate: now.Add(-72 * time.Hour), TotalAmount: 1}
	recent := &models.Order{UserID: 1, Status: models.StatusShipped, OrderDate: now.Add(-time.Hour), TotalAmount: 1}
	pending := &models.Order{UserID: 1, Status: models.StatusPending, OrderDate: now.Add(-72 * time.Hour), TotalAmount: 1}
	for _, o := range []*models.Order{old, recent, pending} {
		require.NoError(t, r.CreateOrder(ctx, o))
	}

	s, err := NewDeliverySweeper(&service.OrderService{Repo: r}, "@daily", nil)
	require.NoError(t, err)
	s.Now = func() time.Time { return now }

	assert.Equal(t, 1, s.RunOnce(ctx))
	assert.Equal(t, 0, s.RunOnce(ctx))

	for o, want := range map[*models.Order]models.OrderStatus{
		old:     models.StatusDelivered,
		recent:  models.StatusShipped,
		pending: models.StatusPending,
	} {
		got, err := r.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}
}

func TestRunOnceSwallowsErrors(t *testing.T) {
	d := &countingDeliverer{err: errors.New("db down")}
	s, err := NewDeliverySweeper(d, "@daily", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, s.RunOnce(context.Background()))
	assert.Equal(t, int32(1), d.calls.Load())
}

func TestStartRunsOnSchedule(t *testing.T) {
	d := &countingDeliverer{}
	s, err := NewDeliverySweeper(d, "@every 1s", nil)
	require.NoError(t, err)

	s.Start()
	assert.False(t, s.Next().IsZero())
	require.Eventually(t, func() bool { return d.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
