package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/shopcore/internal/models"
	"gorm.io/gorm"
)

// UpsertOrderReview keeps a single review per (order, user) and reports
// whether it was newly created.
func (r *GormRepo) UpsertOrderReview(ctx context.Context, rev *models.OrderReview) (bool, error) {
	var existing models.OrderReview
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", rev.OrderID, rev.UserID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.DB.WithContext(ctx).Create(rev).Error
	}
	if err != nil {
		return false, err
	}

	if err := r.DB.WithContext(ctx).Model(&existing).
		Updates(map[string]any{"rating": rev.Rating, "comment": rev.Comment}).Error; err != nil {
		return false, err
	}
	*rev = existing
	return false, r.DB.WithContext(ctx).First(rev, existing.ID).Error
}

// UpsertOrderProductReview mirrors an order review onto one product.
func (r *GormRepo) UpsertOrderProductReview(ctx context.Context, rev *models.ProductReview) error {
	if rev.OrderID == nil {
		return errors.New("order id required")
	}
	res := r.DB.WithContext(ctx).Model(&models.ProductReview{}).
		Where("product_id = ? AND user_id = ? AND order_id = ?", rev.ProductID, rev.UserID, *rev.OrderID).
		Updates(map[string]any{"rating": rev.Rating, "comment": rev.Comment})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(rev).Error
}

func (r *GormRepo) CreateProductReview(ctx context.Context, rev *models.ProductReview) error {
	return r.DB.WithContext(ctx).Create(rev).Error
}

func (r *GormRepo) ListProductReviews(ctx context.Context, productID uint, offset, limit int) (int64, []models.ProductReview, error) {
	q := r.DB.WithContext(ctx).Model(&models.ProductReview{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var items []models.ProductReview
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// RecomputeProductRating stores the mean review rating on the product and returns it.
func (r *GormRepo) RecomputeProductRating(ctx context.Context, productID uint, round func(float64) float64) (float64, error) {
	var avg struct {
		Value *float64
	}
	if err := r.DB.WithContext(ctx).Model(&models.ProductReview{}).
		Select("AVG(rating) AS value").
		Where("product_id = ?", productID).
		Scan(&avg).Error; err != nil {
		return 0, err
	}

	rating := 0.0
	if avg.Value != nil {
		rating = round(*avg.Value)
	}
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("rating", rating).Error; err != nil {
		return 0, err
	}
	return rating, nil
}
