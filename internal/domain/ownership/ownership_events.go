package ownership

import (
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOwnershipRecord = "OwnershipRecord"

// Event type constants
const (
	EventTypePaymentApplied = "OwnershipPaymentApplied"
	EventTypeRecordOpened   = "OwnershipRecordOpened"
)

// RecordOpenedEvent is raised when a record is opened for a stock position
type RecordOpenedEvent struct {
	shared.BaseDomainEvent
	RecordID     uuid.UUID       `json:"record_id"`
	StockRefKind StockRefKind    `json:"stock_ref_kind"`
	StockRefID   uuid.UUID       `json:"stock_ref_id"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// NewRecordOpenedEvent creates a new RecordOpenedEvent
func NewRecordOpenedEvent(record *OwnershipRecord) *RecordOpenedEvent {
	return &RecordOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecordOpened, AggregateTypeOwnershipRecord, record.ID, record.BranchID),
		RecordID:        record.ID,
		StockRefKind:    record.StockRefKind,
		StockRefID:      record.StockRefID,
		Percentage:      record.Percentage(),
	}
}

// EventType returns the event type name
func (e *RecordOpenedEvent) EventType() string {
	return EventTypeRecordOpened
}

// PaymentAppliedEvent is raised when a payment grows the owned portion
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	RecordID    uuid.UUID       `json:"record_id"`
	Amount      decimal.Decimal `json:"amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(record *OwnershipRecord, amount valueobject.Money) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeOwnershipRecord, record.ID, record.BranchID),
		RecordID:        record.ID,
		Amount:          amount.Amount(),
		Outstanding:     record.OutstandingAmount,
		Percentage:      record.Percentage(),
	}
}

// EventType returns the event type name
func (e *PaymentAppliedEvent) EventType() string {
	return EventTypePaymentApplied
}
