package pricing

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoldRate represents an effective-dated price-per-gram for a karat grade.
// Rates form non-overlapping windows per grade; the open window (nil
// EffectiveTo) is the current one.
type GoldRate struct {
	shared.BaseAggregateRoot
	Karat         valueobject.KaratGrade `gorm:"type:varchar(4);not null;index:idx_gold_rate_karat_from,priority:1"`
	RatePerGram   decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	EffectiveFrom time.Time              `gorm:"type:timestamptz;not null;index:idx_gold_rate_karat_from,priority:2"`
	EffectiveTo   *time.Time             `gorm:"type:timestamptz"`
	SetBy         *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (GoldRate) TableName() string {
	return "gold_rates"
}

// NewGoldRate creates a new open-ended rate window
func NewGoldRate(karat valueobject.KaratGrade, ratePerGram decimal.Decimal, effectiveFrom time.Time) (*GoldRate, error) {
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}
	if ratePerGram.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate per gram must be positive")
	}

	rate := &GoldRate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Karat:             karat,
		RatePerGram:       ratePerGram.Round(2),
		EffectiveFrom:     effectiveFrom,
	}
	rate.AddDomainEvent(NewRateSetEvent(rate))
	return rate, nil
}

// IsOpen returns true if the rate's validity window has no end
func (r *GoldRate) IsOpen() bool {
	return r.EffectiveTo == nil
}

// IsEffectiveAt returns true if the rate's window covers the given instant
func (r *GoldRate) IsEffectiveAt(t time.Time) bool {
	if t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || t.Before(*r.EffectiveTo)
}

// CloseWindow ends the rate's validity at the given instant
func (r *GoldRate) CloseWindow(at time.Time) error {
	if r.EffectiveTo != nil {
		return shared.NewDomainError("INVALID_STATE", "Rate window is already closed")
	}
	if at.Before(r.EffectiveFrom) {
		return shared.NewDomainError("INVALID_INPUT", "Window end cannot precede its start")
	}
	r.EffectiveTo = &at
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// PriceFor returns the value of the given weight at this rate
func (r *GoldRate) PriceFor(weight valueobject.Weight) valueobject.Money {
	return valueobject.NewMoneyEGP(weight.Grams().Mul(r.RatePerGram).Round(2))
}
