package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/shopcore/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs returns the products keyed by id; missing ids are absent.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is the database fallback when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	like := "%" + strings.ToLower(query) + "%"
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", like, like, like)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, patch map[string]any) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected > 0, res.Error
}
