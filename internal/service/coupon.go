package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/shopspring/decimal"
)

const (
	maxCodeAttempts    = 10
	maxDiscountPercent = 20
	DefaultCouponTTL   = 30 * 24 * time.Hour
)

type CouponService struct {
	Repo *repo.GormRepo
	TTL  time.Duration

	Now         func() time.Time
	NewCode     func() string
	NewDiscount func() float64
}

func RandomCouponCode() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}

// RandomDiscount returns a percentage in [0, 20] rounded to two decimals.
func RandomDiscount() float64 {
	d, _ := decimal.NewFromFloat(rand.Float64() * maxDiscountPercent).Round(2).Float64()
	return d
}

func (s *CouponService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Generate stores a coupon under a fresh code. Codes are resampled while they
// collide with stored ones, at most maxCodeAttempts times.
func (s *CouponService) Generate(ctx context.Context, expiresAt *time.Time) (*models.Coupon, error) {
	l := logging.FromContext(ctx).With("svc", "coupon.generate")
	now := s.now()

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultCouponTTL
	}
	exp := now.Add(ttl)
	if expiresAt != nil {
		if !expiresAt.After(now) {
			return nil, fail(ErrValidation, "expiresAt must be in the future")
		}
		exp = expiresAt.UTC()
	}

	newCode := s.NewCode
	if newCode == nil {
		newCode = RandomCouponCode
	}
	newDiscount := s.NewDiscount
	if newDiscount == nil {
		newDiscount = RandomDiscount
	}

	code := ""
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		candidate := newCode()
		exists, err := s.Repo.CouponCodeExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			code = candidate
			break
		}
		l.Debug("coupon_code_collision", "attempt", attempt)
	}
	if code == "" {
		l.Error("coupon_code_exhausted", "attempts", maxCodeAttempts)
		return nil, fail(ErrCodeExhausted, "could not generate a unique coupon code after %d attempts", maxCodeAttempts)
	}

	c := &models.Coupon{
		Code:               code,
		DiscountPercentage: newDiscount(),
		IsActive:           true,
		ExpiresAt:          exp,
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fail(ErrValidation, "coupon code is required")
	}
	c, err := s.Repo.GetCouponByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "coupon")
	}
	return c, nil
}

// CheckRedeemable reports why a coupon cannot be applied at the given instant.
func CheckRedeemable(c *models.Coupon, now time.Time) error {
	switch {
	case !c.IsActive:
		return fail(ErrCouponInvalid, "coupon is not active")
	case c.IsUsed:
		return fail(ErrCouponInvalid, "coupon has already been used")
	case !c.ExpiresAt.After(now):
		return fail(ErrCouponInvalid, "coupon has expired")
	}
	return nil
}
