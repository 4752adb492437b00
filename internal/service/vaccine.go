package service

import (
	"context"
	"errors"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
)

type VaccineStockService struct {
	Repo *repo.GormRepo
}

func (s *VaccineStockService) List(ctx context.Context, hospitalID uint) ([]models.VaccineStock, error) {
	return s.Repo.ListVaccineStock(ctx, hospitalID)
}

func (s *VaccineStockService) Set(ctx context.Context, hospitalID, vaccineID uint, quantity int) (*models.VaccineStock, error) {
	if hospitalID == 0 || vaccineID == 0 {
		return nil, fail(ErrValidation, "hospitalId and vaccineId are required")
	}
	if quantity < 0 {
		return nil, fail(ErrValidation, "quantity cannot be negative")
	}

	st := &models.VaccineStock{HospitalID: hospitalID, VaccineID: vaccineID, Quantity: quantity}
	if err := s.Repo.SetVaccineStock(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *VaccineStockService) Adjust(ctx context.Context, hospitalID, vaccineID uint, delta int) (*models.VaccineStock, error) {
	if hospitalID == 0 || vaccineID == 0 {
		return nil, fail(ErrValidation, "hospitalId and vaccineId are required")
	}
	if delta == 0 {
		return nil, fail(ErrValidation, "delta must not be zero")
	}

	st, err := s.Repo.AdjustVaccineStock(ctx, hospitalID, vaccineID, delta)
	if errors.Is(err, repo.ErrNegativeStock) {
		return nil, fail(ErrValidation, "stock cannot go below zero")
	}
	return st, err
}
