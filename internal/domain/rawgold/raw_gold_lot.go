package rawgold

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus represents the lifecycle state of a raw gold lot
type LotStatus string

const (
	LotStatusOpen     LotStatus = "OPEN"
	LotStatusDepleted LotStatus = "DEPLETED"
	LotStatusClosed   LotStatus = "CLOSED"
)

// IsValid returns true if the lot status is valid
func (s LotStatus) IsValid() bool {
	switch s {
	case LotStatusOpen, LotStatusDepleted, LotStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of LotStatus
func (s LotStatus) String() string {
	return string(s)
}

// RawGoldLot is the aggregate root of the raw gold weight ledger.
// Every gram received must be accounted for as consumed, wasted, or
// still available; the lot rejects any mutation that would break that
// balance. Lots are never deleted, only marked Closed.
type RawGoldLot struct {
	shared.BranchAggregateRoot
	PurchaseOrderItemID uuid.UUID              `gorm:"type:uuid;not null;index:idx_raw_gold_lot_po_item"`
	Karat               valueobject.KaratGrade `gorm:"type:varchar(4);not null;index:idx_raw_gold_lot_karat"`
	WeightOrdered       decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	WeightReceived      decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	WeightConsumed      decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	WeightWasted        decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	WeightAvailable     decimal.Decimal        `gorm:"type:decimal(12,3);not null;default:0"`
	UnitCostPerGram     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	Status              LotStatus              `gorm:"type:varchar(20);not null;default:'OPEN'"`
}

// TableName returns the table name for GORM
func (RawGoldLot) TableName() string {
	return "raw_gold_lots"
}

// NewRawGoldLot creates an empty lot for a purchase order line
func NewRawGoldLot(branchID, purchaseOrderItemID uuid.UUID, karat valueobject.KaratGrade, weightOrdered valueobject.Weight, unitCostPerGram decimal.Decimal) (*RawGoldLot, error) {
	if purchaseOrderItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase order item ID cannot be empty")
	}
	if !karat.IsValid() {
		return nil, shared.NewDomainError("INVALID_KARAT", "Unknown karat grade")
	}
	if weightOrdered.IsNegative() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Ordered weight cannot be negative")
	}
	if unitCostPerGram.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	return &RawGoldLot{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		PurchaseOrderItemID: purchaseOrderItemID,
		Karat:               karat,
		WeightOrdered:       weightOrdered.Grams(),
		WeightReceived:      decimal.Zero,
		WeightConsumed:      decimal.Zero,
		WeightWasted:        decimal.Zero,
		WeightAvailable:     decimal.Zero,
		UnitCostPerGram:     unitCostPerGram.Round(2),
		Status:              LotStatusOpen,
	}, nil
}

// Available returns the weight still available for consumption
func (l *RawGoldLot) Available() valueobject.Weight {
	return valueobject.NewWeight(l.WeightAvailable)
}

// RemainingWeight returns received minus consumed minus wasted.
// Equal to Available whenever the conservation balance holds.
func (l *RawGoldLot) RemainingWeight() valueobject.Weight {
	return valueobject.NewWeight(l.WeightReceived.Sub(l.WeightConsumed).Sub(l.WeightWasted))
}

// IsBalanced verifies the conservation equation
// received == consumed + wasted + available within one milligram
func (l *RawGoldLot) IsBalanced() bool {
	accounted := valueobject.NewWeight(l.WeightConsumed.Add(l.WeightWasted).Add(l.WeightAvailable))
	return valueobject.NewWeight(l.WeightReceived).EqualsWithin(accounted)
}

// Receive records a physical receipt against the lot
func (l *RawGoldLot) Receive(weight valueobject.Weight) error {
	if l.Status == LotStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Cannot receive into a closed lot")
	}
	if !weight.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Received weight must be positive")
	}

	l.WeightReceived = l.WeightReceived.Add(weight.Grams())
	l.WeightAvailable = l.WeightAvailable.Add(weight.Grams())
	if l.Status == LotStatusDepleted {
		l.Status = LotStatusOpen
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotReceivedEvent(l, weight))
	return nil
}

// Consume moves weight from available into consumed and wasted.
// The combined draw must fit in the available balance within one
// milligram; the lot flips to Depleted when availability reaches zero.
func (l *RawGoldLot) Consume(consumed, wasted valueobject.Weight) error {
	if l.Status == LotStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Cannot consume from a closed lot")
	}
	if consumed.IsNegative() || wasted.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Consumed and wasted weights cannot be negative")
	}
	total := consumed.Add(wasted)
	if !total.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Consumption must draw a positive weight")
	}
	available := l.Available()
	if total.GreaterThan(available) && !total.EqualsWithin(available) {
		return shared.NewDomainError("INSUFFICIENT_RAW_GOLD",
			"Requested "+total.String()+" exceeds available "+available.String())
	}

	l.WeightConsumed = l.WeightConsumed.Add(consumed.Grams())
	l.WeightWasted = l.WeightWasted.Add(wasted.Grams())
	l.WeightAvailable = l.WeightReceived.Sub(l.WeightConsumed).Sub(l.WeightWasted)
	if l.WeightAvailable.IsNegative() {
		// Milligram tolerance may leave a negative dust residue
		l.WeightAvailable = decimal.Zero
	}
	if l.WeightAvailable.IsZero() {
		l.Status = LotStatusDepleted
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotConsumedEvent(l, consumed, wasted))
	return nil
}

// Restore returns previously consumed and wasted weight to availability.
// Used when a consumption is reversed.
func (l *RawGoldLot) Restore(consumed, wasted valueobject.Weight) error {
	if l.Status == LotStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Cannot restore into a closed lot")
	}
	if consumed.IsNegative() || wasted.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Restored weights cannot be negative")
	}
	if consumed.Grams().GreaterThan(l.WeightConsumed) || wasted.Grams().GreaterThan(l.WeightWasted) {
		return shared.NewDomainError("INVALID_WEIGHT", "Cannot restore more than was drawn")
	}

	l.WeightConsumed = l.WeightConsumed.Sub(consumed.Grams())
	l.WeightWasted = l.WeightWasted.Sub(wasted.Grams())
	l.WeightAvailable = l.WeightReceived.Sub(l.WeightConsumed).Sub(l.WeightWasted)
	if l.Status == LotStatusDepleted && l.WeightAvailable.IsPositive() {
		l.Status = LotStatusOpen
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLotRestoredEvent(l, consumed, wasted))
	return nil
}

// Close marks the lot closed. Closed lots accept no further mutation.
func (l *RawGoldLot) Close() error {
	if l.Status == LotStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Lot is already closed")
	}
	l.Status = LotStatusClosed
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}
