package rawgold

import (
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeRawGoldLot = "RawGoldLot"

// Event type constants
const (
	EventTypeLotReceived = "RawGoldLotReceived"
	EventTypeLotConsumed = "RawGoldLotConsumed"
	EventTypeLotRestored = "RawGoldLotRestored"
)

// LotReceivedEvent is raised when weight is received into a lot
type LotReceivedEvent struct {
	shared.BaseDomainEvent
	LotID          uuid.UUID       `json:"lot_id"`
	Karat          string          `json:"karat"`
	Weight         decimal.Decimal `json:"weight"`
	AvailableAfter decimal.Decimal `json:"available_after"`
}

// NewLotReceivedEvent creates a new LotReceivedEvent
func NewLotReceivedEvent(lot *RawGoldLot, weight valueobject.Weight) *LotReceivedEvent {
	return &LotReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotReceived, AggregateTypeRawGoldLot, lot.ID, lot.BranchID),
		LotID:           lot.ID,
		Karat:           lot.Karat.String(),
		Weight:          weight.Grams(),
		AvailableAfter:  lot.WeightAvailable,
	}
}

// EventType returns the event type name
func (e *LotReceivedEvent) EventType() string {
	return EventTypeLotReceived
}

// LotConsumedEvent is raised when weight is drawn from a lot
type LotConsumedEvent struct {
	shared.BaseDomainEvent
	LotID          uuid.UUID       `json:"lot_id"`
	Consumed       decimal.Decimal `json:"consumed"`
	Wasted         decimal.Decimal `json:"wasted"`
	AvailableAfter decimal.Decimal `json:"available_after"`
	Depleted       bool            `json:"depleted"`
}

// NewLotConsumedEvent creates a new LotConsumedEvent
func NewLotConsumedEvent(lot *RawGoldLot, consumed, wasted valueobject.Weight) *LotConsumedEvent {
	return &LotConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotConsumed, AggregateTypeRawGoldLot, lot.ID, lot.BranchID),
		LotID:           lot.ID,
		Consumed:        consumed.Grams(),
		Wasted:          wasted.Grams(),
		AvailableAfter:  lot.WeightAvailable,
		Depleted:        lot.Status == LotStatusDepleted,
	}
}

// EventType returns the event type name
func (e *LotConsumedEvent) EventType() string {
	return EventTypeLotConsumed
}

// LotRestoredEvent is raised when a reversal returns weight to a lot
type LotRestoredEvent struct {
	shared.BaseDomainEvent
	LotID          uuid.UUID       `json:"lot_id"`
	Consumed       decimal.Decimal `json:"consumed"`
	Wasted         decimal.Decimal `json:"wasted"`
	AvailableAfter decimal.Decimal `json:"available_after"`
}

// NewLotRestoredEvent creates a new LotRestoredEvent
func NewLotRestoredEvent(lot *RawGoldLot, consumed, wasted valueobject.Weight) *LotRestoredEvent {
	return &LotRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotRestored, AggregateTypeRawGoldLot, lot.ID, lot.BranchID),
		LotID:           lot.ID,
		Consumed:        consumed.Grams(),
		Wasted:          wasted.Grams(),
		AvailableAfter:  lot.WeightAvailable,
	}
}

// EventType returns the event type name
func (e *LotRestoredEvent) EventType() string {
	return EventTypeLotRestored
}
