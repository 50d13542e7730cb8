package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/aurum/backend/internal/domain/pricing"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGoldRateRepository implements pricing.RateRepository using GORM
type GormGoldRateRepository struct {
	db *gorm.DB
}

// NewGormGoldRateRepository creates a new GormGoldRateRepository
func NewGormGoldRateRepository(db *gorm.DB) *GormGoldRateRepository {
	return &GormGoldRateRepository{db: db}
}

// FindByID finds a rate by its ID. Returns nil when no rate exists.
func (r *GormGoldRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.GoldRate, error) {
	var rate pricing.GoldRate
	if err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// FindOpen finds the open-ended rate window for a karat grade, if any
func (r *GormGoldRateRepository) FindOpen(ctx context.Context, karat valueobject.KaratGrade) (*pricing.GoldRate, error) {
	var rate pricing.GoldRate
	if err := r.db.WithContext(ctx).
		Where("karat = ? AND effective_to IS NULL", karat).
		First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// FindEffectiveAt finds the rate whose window covers the given instant.
// Windows are half open: effective_from inclusive, effective_to exclusive.
func (r *GormGoldRateRepository) FindEffectiveAt(ctx context.Context, karat valueobject.KaratGrade, at time.Time) (*pricing.GoldRate, error) {
	var rate pricing.GoldRate
	if err := r.db.WithContext(ctx).
		Where("karat = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)", karat, at, at).
		Order("effective_from DESC").
		First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// FindHistory lists rate windows for a karat grade, newest first
func (r *GormGoldRateRepository) FindHistory(ctx context.Context, karat valueobject.KaratGrade, filter shared.Filter) ([]pricing.GoldRate, error) {
	var rates []pricing.GoldRate
	query := r.db.WithContext(ctx).
		Model(&pricing.GoldRate{}).
		Where("karat = ?", karat).
		Order("effective_from DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Save creates or updates a rate
func (r *GormGoldRateRepository) Save(ctx context.Context, rate *pricing.GoldRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// Ensure the repository implements the domain interface
var _ pricing.RateRepository = (*GormGoldRateRepository)(nil)
