package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/mykafka"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/util"
)

// SearchIndex is the full-text index kept alongside the product table.
type SearchIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductService struct {
	Repo   *repo.GormRepo
	Index  SearchIndex
	Events EventPublisher
}

type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, page, size int) (int64, []models.Product, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProducts(ctx, offset, limit)
}

// Search asks the index first and falls back to the database when the index
// is missing or failing.
func (s *ProductService) Search(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fail(ErrValidation, "query is required")
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.SearchProducts(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "query", query, "error", err)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fail(ErrValidation, "name is required")
	}
	if p.Price < 0 {
		return fail(ErrValidation, "price cannot be negative")
	}
	p.ID = 0
	p.Rating = 0
	p.Price = Round2(p.Price)

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.reindex(ctx, *p)
	publish(ctx, s.Events, mykafka.TopicProducts, key(p.ID), "product_created", p)
	return nil
}

func (s *ProductService) Update(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fail(ErrValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fail(ErrValidation, "price cannot be negative")
		}
		fields["price"] = Round2(*patch.Price)
	}
	if len(fields) == 0 {
		return nil, fail(ErrValidation, "nothing to update")
	}

	p, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "product")
	}
	s.reindex(ctx, *p)
	publish(ctx, s.Events, mykafka.TopicProducts, key(p.ID), "product_updated", p)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fail(ErrNotFound, "product not found")
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, key(id), "product_deleted", map[string]uint{"id": id})
	return nil
}

// AddReview stores a stand-alone product review and refreshes the product rating.
func (s *ProductService) AddReview(ctx context.Context, productID, userID uint, rating int, comment string) (*models.ProductReview, float64, error) {
	if rating < 1 || rating > 5 {
		return nil, 0, fail(ErrValidation, "rating must be between 1 and 5")
	}

	rev := &models.ProductReview{ProductID: productID, UserID: userID, Rating: rating, Comment: strings.TrimSpace(comment)}
	var avg float64
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return notFound(err, "product")
		}
		if err := tx.CreateProductReview(ctx, rev); err != nil {
			return err
		}
		var err error
		avg, err = tx.RecomputeProductRating(ctx, productID, Round2)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	if p, err := s.Repo.GetProduct(ctx, productID); err == nil {
		s.reindex(ctx, *p)
	}
	return rev, avg, nil
}

func (s *ProductService) ListReviews(ctx context.Context, productID uint, page, size int) (int64, []models.ProductReview, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return 0, nil, notFound(err, "product")
	}
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProductReviews(ctx, productID, offset, limit)
}

func (s *ProductService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}
