package repo

import (
	"context"

	"github.com/Skotchmaster/shopcore/internal/models"
)

func (r *GormRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// ListNotifications returns the user's notifications plus broadcasts, newest first.
func (r *GormRepo) ListNotifications(ctx context.Context, userID uint, offset, limit int) (int64, []models.Notification, error) {
	q := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? OR user_id IS NULL", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.Notification
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *GormRepo) MarkNotificationRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	n.Read = true
	return &n, nil
}

func (r *GormRepo) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// DeleteNotifications removes the user's own rows; broadcasts stay.
func (r *GormRepo) DeleteNotifications(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
