package pricing

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeGoldRate = "GoldRate"

// Event type constants
const (
	EventTypeRateSet          = "GoldRateSet"
	EventTypeRateWindowClosed = "GoldRateWindowClosed"
)

// RateSetEvent is raised when a new rate window opens for a karat grade
type RateSetEvent struct {
	shared.BaseDomainEvent
	RateID        uuid.UUID              `json:"rate_id"`
	Karat         valueobject.KaratGrade `json:"karat"`
	RatePerGram   decimal.Decimal        `json:"rate_per_gram"`
	EffectiveFrom time.Time              `json:"effective_from"`
}

// NewRateSetEvent creates a new RateSetEvent
func NewRateSetEvent(rate *GoldRate) *RateSetEvent {
	return &RateSetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRateSet, AggregateTypeGoldRate, rate.ID, uuid.Nil),
		RateID:          rate.ID,
		Karat:           rate.Karat,
		RatePerGram:     rate.RatePerGram,
		EffectiveFrom:   rate.EffectiveFrom,
	}
}

// EventType returns the event type name
func (e *RateSetEvent) EventType() string {
	return EventTypeRateSet
}
