package repo

import (
	"context"

	"github.com/Skotchmaster/shopcore/internal/models"
	"gorm.io/gorm"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart increments an existing line or creates it.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
