package repo

import (
	"context"

	"github.com/Skotchmaster/shopcore/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) CouponCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Coupon{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) GetCouponForUpdate(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkCouponUsed only succeeds once per coupon.
func (r *GormRepo) MarkCouponUsed(ctx context.Context, id, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{"is_used": true, "used_by": userID})
	return res.RowsAffected > 0, res.Error
}
