package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/testutil"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	UserID  uint
	Message string
	Kind    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, userID uint, message, kind string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentNotification{userID, message, kind})
	return &models.Notification{UserID: &userID, Message: message, Type: kind}, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type publishedEvent struct {
	Topic, Key, Type string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	ev, _ := event.(mykafka.Event)
	f.events = append(f.events, publishedEvent{topic, key, ev.Type})
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type emitted struct {
	UserID uint
	Event  string
	Data   any
}

type fakePusher struct {
	online    map[uint]bool
	emitted   []emitted
	broadcast []string
}

func (f *fakePusher) IsOnline(userID uint) bool { return f.online[userID] }

func (f *fakePusher) EmitToUser(userID uint, event string, data any) int {
	f.emitted = append(f.emitted, emitted{userID, event, data})
	return 1
}

func (f *fakePusher) Broadcast(event string, data any) int {
	f.broadcast = append(f.broadcast, event)
	return len(f.online)
}

var errBoom = errors.New("boom")

type fixture struct {
	Repo     *repo.GormRepo
	Notifier *fakeNotifier
	Events   *fakePublisher
	Now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		Repo:     repo.New(testutil.InitTestDB(t)),
		Notifier: &fakeNotifier{},
		Events:   &fakePublisher{},
		Now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.Now }

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price}
	require.NoError(t, f.Repo.CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) carts() *CartService {
	return &CartService{Repo: f.Repo, Notifier: f.Notifier, Events: f.Events, Now: f.clock}
}

func (f *fixture) orders() *OrderService {
	return &OrderService{Repo: f.Repo, Notifier: f.Notifier, Events: f.Events, Now: f.clock}
}

func (f *fixture) coupons() *CouponService {
	return &CouponService{Repo: f.Repo, Now: f.clock}
}

func (f *fixture) order(t *testing.T, userID uint, status models.OrderStatus, age time.Duration, items ...models.OrderItem) *models.Order {
	t.Helper()
	o := &models.Order{UserID: userID, Status: status, OrderDate: f.Now.Add(-age), Items: items}
	var prices []float64
	var qtys []uint
	for _, it := range items {
		prices = append(prices, it.Price)
		qtys = append(qtys, it.Quantity)
	}
	o.TotalAmount = LineTotal(prices, qtys)
	require.NoError(t, f.Repo.CreateOrder(context.Background(), o))
	return o
}
