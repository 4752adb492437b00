package service

import (
	"context"
	"testing"

	"github.com/Skotchmaster/shopcore/internal/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyOnlineUserGetsPushes(t *testing.T) {
	f := newFixture(t)
	hub := &fakePusher{online: map[uint]bool{1: true}}
	svc := &NotificationService{Repo: f.Repo, Hub: hub, Events: f.Events}
	ctx := context.Background()

	_, err := svc.Notify(ctx, 1, "first", KindOrder)
	require.NoError(t, err)
	n, err := svc.Notify(ctx, 1, "second", KindOrder)
	require.NoError(t, err)
	assert.Equal(t, "second", n.Message)

	require.Len(t, hub.emitted, 4)
	assert.Equal(t, socket.EventNewNotification, hub.emitted[2].Event)
	assert.Equal(t, socket.EventNotificationCount, hub.emitted[3].Event)
	assert.Equal(t, countPayload{Count: 2}, hub.emitted[3].Data)

	assert.Equal(t, []string{"notification_created", "notification_created"}, f.Events.types())
}

func TestNotifyOfflineUserIsPersistedOnly(t *testing.T) {
	f := newFixture(t)
	hub := &fakePusher{online: map[uint]bool{}}
	svc := &NotificationService{Repo: f.Repo, Hub: hub}
	ctx := context.Background()

	_, err := svc.Notify(ctx, 7, "hello", "")
	require.NoError(t, err)
	assert.Empty(t, hub.emitted)

	total, items, err := svc.List(ctx, 7, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, KindInfo, items[0].Type)
}

func TestNotifyValidationAndPublisherFailure(t *testing.T) {
	f := newFixture(t)
	f.Events.err = errBoom
	svc := &NotificationService{Repo: f.Repo, Events: f.Events}
	ctx := context.Background()

	_, err := svc.Notify(ctx, 0, "x", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Notify(ctx, 1, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Notify(ctx, 1, "kafka down", "")
	assert.NoError(t, err)
}

func TestMarkReadAndDelete(t *testing.T) {
	f := newFixture(t)
	hub := &fakePusher{online: map[uint]bool{1: true}}
	svc := &NotificationService{Repo: f.Repo, Hub: hub}
	ctx := context.Background()

	a, err := svc.Notify(ctx, 1, "a", "")
	require.NoError(t, err)
	_, err = svc.Notify(ctx, 1, "b", "")
	require.NoError(t, err)
	other, err := svc.Notify(ctx, 2, "c", "")
	require.NoError(t, err)
	hub.emitted = nil

	_, err = svc.MarkRead(ctx, 1, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := svc.MarkRead(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
	require.Len(t, hub.emitted, 2)
	assert.Equal(t, socket.EventNotificationRead, hub.emitted[0].Event)
	assert.Equal(t, countPayload{Count: 1}, hub.emitted[1].Data)

	unread, err := svc.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	changed, err := svc.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	deleted, err := svc.DeleteAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	total, _, err := svc.List(ctx, 2, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	hub := &fakePusher{online: map[uint]bool{1: true, 2: true}}
	svc := &NotificationService{Repo: f.Repo, Hub: hub}
	ctx := context.Background()

	n, err := svc.Broadcast(ctx, "flash sale", "")
	require.NoError(t, err)
	assert.Nil(t, n.UserID)
	assert.Equal(t, KindBroadcast, n.Type)
	assert.Equal(t, []string{socket.EventNewNotification}, hub.broadcast)

	for _, uid := range []uint{1, 2, 3} {
		total, _, err := svc.List(ctx, uid, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	}

	_, err = svc.Broadcast(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
