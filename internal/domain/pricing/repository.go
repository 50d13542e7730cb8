package pricing

import (
	"context"
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RateRepository defines the interface for gold rate persistence
type RateRepository interface {
	// FindByID finds a rate by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*GoldRate, error)

	// FindOpen finds the open-ended rate window for a karat grade, if any
	FindOpen(ctx context.Context, karat valueobject.KaratGrade) (*GoldRate, error)

	// FindEffectiveAt finds the rate whose window covers the given instant
	FindEffectiveAt(ctx context.Context, karat valueobject.KaratGrade, at time.Time) (*GoldRate, error)

	// FindHistory lists rate windows for a karat grade, newest first
	FindHistory(ctx context.Context, karat valueobject.KaratGrade, filter shared.Filter) ([]GoldRate, error)

	// Save creates or updates a rate
	Save(ctx context.Context, rate *GoldRate) error
}
