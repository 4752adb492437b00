package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/shopcore/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNegativeStock = errors.New("stock would go below zero")

func (r *GormRepo) ListVaccineStock(ctx context.Context, hospitalID uint) ([]models.VaccineStock, error) {
	q := r.DB.WithContext(ctx).Model(&models.VaccineStock{})
	if hospitalID != 0 {
		q = q.Where("hospital_id = ?", hospitalID)
	}
	var items []models.VaccineStock
	err := q.Order("hospital_id ASC, vaccine_id ASC").Find(&items).Error
	return items, err
}

// SetVaccineStock upserts the quantity for the (hospital, vaccine) pair.
func (r *GormRepo) SetVaccineStock(ctx context.Context, s *models.VaccineStock) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hospital_id"}, {Name: "vaccine_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return err
	}

	var got models.VaccineStock
	if err := r.DB.WithContext(ctx).
		Where("hospital_id = ? AND vaccine_id = ?", s.HospitalID, s.VaccineID).
		First(&got).Error; err != nil {
		return err
	}
	*s = got
	return nil
}

// AdjustVaccineStock adds delta to the pair's counter, creating it at zero first.
func (r *GormRepo) AdjustVaccineStock(ctx context.Context, hospitalID, vaccineID uint, delta int) (*models.VaccineStock, error) {
	var out models.VaccineStock
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.VaccineStock{HospitalID: hospitalID, VaccineID: vaccineID}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("hospital_id = ? AND vaccine_id = ?", hospitalID, vaccineID).
			First(&out).Error; err != nil {
			return err
		}
		if out.Quantity+delta < 0 {
			return ErrNegativeStock
		}
		out.Quantity += delta
		return tx.Model(&out).Update("quantity", out.Quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
