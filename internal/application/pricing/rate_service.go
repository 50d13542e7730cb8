package pricing

import (
	"context"
	"time"

	"github.com/aurum/backend/internal/domain/pricing"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateCache caches the open rate window per karat grade. A nil result
// with a nil error means a cache miss. Implementations must tolerate an
// unavailable backend by reporting misses rather than failing reads.
type RateCache interface {
	GetCurrent(ctx context.Context, karat valueobject.KaratGrade) (*pricing.GoldRate, error)
	SetCurrent(ctx context.Context, rate *pricing.GoldRate, ttl time.Duration) error
	Invalidate(ctx context.Context, karat valueobject.KaratGrade) error
}

// DefaultRateCacheTTL bounds how long a cached current rate is served
// without consulting the store.
const DefaultRateCacheTTL = 5 * time.Minute

// RateService manages effective-dated gold rates. Every karat grade has
// at most one open window at a time; setting a new rate closes the
// previous window at the instant the new one begins, so the windows
// tile the timeline without gaps or overlaps.
type RateService struct {
	scope          TransactionScope
	rateRepo       pricing.RateRepository
	cache          RateCache
	eventPublisher shared.EventPublisher
}

// NewRateService creates a rate service. The cache may be nil, in which
// case every read goes to the repository.
func NewRateService(scope TransactionScope, rateRepo pricing.RateRepository, cache RateCache, eventPublisher shared.EventPublisher) *RateService {
	return &RateService{
		scope:          scope,
		rateRepo:       rateRepo,
		cache:          cache,
		eventPublisher: eventPublisher,
	}
}

// SetRateRequest carries the input for opening a new rate window.
type SetRateRequest struct {
	Karat         valueobject.KaratGrade
	RatePerGram   decimal.Decimal
	EffectiveFrom time.Time // zero means now
	ActorID       *uuid.UUID
}

// SetRate opens a new rate window for the karat grade and closes the
// previously open window at the same instant. The new window must not
// begin before the open window does; backdating past the current
// window's start would retroactively reprice recorded history.
func (s *RateService) SetRate(ctx context.Context, req SetRateRequest) (*pricing.GoldRate, error) {
	effectiveFrom := req.EffectiveFrom
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}

	var rate *pricing.GoldRate
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		open, err := repos.RateRepo().FindOpen(ctx, req.Karat)
		if err != nil {
			return err
		}
		if open != nil {
			if effectiveFrom.Before(open.EffectiveFrom) {
				return shared.NewDomainError("INVALID_INPUT",
					"New rate cannot take effect before the current window started")
			}
			if err := open.CloseWindow(effectiveFrom); err != nil {
				return err
			}
			if err := repos.RateRepo().Save(ctx, open); err != nil {
				return err
			}
		}

		rate, err = pricing.NewGoldRate(req.Karat, req.RatePerGram, effectiveFrom)
		if err != nil {
			return err
		}
		rate.SetBy = req.ActorID
		return repos.RateRepo().Save(ctx, rate)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Stale cache entries would quote the old rate until TTL expiry.
		_ = s.cache.Invalidate(ctx, req.Karat)
	}
	s.publishEvents(ctx, rate)
	return rate, nil
}

// CurrentRate returns the open rate window for a karat grade, consulting
// the cache first.
func (s *RateService) CurrentRate(ctx context.Context, karat valueobject.KaratGrade) (*pricing.GoldRate, error) {
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}

	if s.cache != nil {
		if cached, err := s.cache.GetCurrent(ctx, karat); err == nil && cached != nil {
			return cached, nil
		}
	}

	rate, err := s.rateRepo.FindOpen(ctx, karat)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No rate set for karat "+string(karat))
	}

	if s.cache != nil {
		_ = s.cache.SetCurrent(ctx, rate, DefaultRateCacheTTL)
	}
	return rate, nil
}

// RateAt returns the rate window that covered the given instant.
func (s *RateService) RateAt(ctx context.Context, karat valueobject.KaratGrade, at time.Time) (*pricing.GoldRate, error) {
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}
	rate, err := s.rateRepo.FindEffectiveAt(ctx, karat, at)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No rate covered the given instant")
	}
	return rate, nil
}

// RateHistory lists rate windows for a karat grade, newest first.
func (s *RateService) RateHistory(ctx context.Context, karat valueobject.KaratGrade, filter shared.Filter) ([]pricing.GoldRate, error) {
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}
	return s.rateRepo.FindHistory(ctx, karat, filter)
}

// PriceFor values the given weight at the current rate for the karat grade.
func (s *RateService) PriceFor(ctx context.Context, karat valueobject.KaratGrade, weight valueobject.Weight) (valueobject.Money, error) {
	rate, err := s.CurrentRate(ctx, karat)
	if err != nil {
		return valueobject.ZeroEGP(), err
	}
	return rate.PriceFor(weight), nil
}

func (s *RateService) publishEvents(ctx context.Context, rate *pricing.GoldRate) {
	if s.eventPublisher == nil || rate == nil {
		return
	}
	events := rate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	rate.ClearDomainEvents()
}
