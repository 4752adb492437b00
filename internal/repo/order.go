package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
func (r *GormRepo) GetOrderForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Where("order_id = ?", o.ID).Order("id ASC").Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Preload("Items").Order("order_date DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// SaveOrderFields writes only the named columns of the order.
func (r *GormRepo) SaveOrderFields(ctx context.Context, o *models.Order, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(o).Updates(fields).Error
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uint) error {
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func (r *GormRepo) ListShippedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Where("status = ? AND order_date < ?", models.StatusShipped, cutoff).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// MarkDeliveredIfShipped flips a single order and reports whether it was still Shipped.
func (r *GormRepo) MarkDeliveredIfShipped(ctx context.Context, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.StatusShipped).
		Update("status", models.StatusDelivered)
	return res.RowsAffected > 0, res.Error
}
