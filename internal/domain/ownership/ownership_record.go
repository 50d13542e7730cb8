package ownership

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRefKind identifies what kind of stock a record covers
type StockRefKind string

const (
	StockRefProduct StockRefKind = "PRODUCT"
	StockRefRawLot  StockRefKind = "RAW_LOT"
)

// IsValid returns true if the stock reference kind is valid
func (k StockRefKind) IsValid() bool {
	return k == StockRefProduct || k == StockRefRawLot
}

// String returns the string representation of StockRefKind
func (k StockRefKind) String() string {
	return string(k)
}

// FundingSource identifies how the unpaid portion of stock is backed
type FundingSource string

const (
	FundingSupplier FundingSource = "SUPPLIER"
	FundingTradeIn  FundingSource = "TRADE_IN"
	FundingSelf     FundingSource = "SELF"
)

// IsValid returns true if the funding source is valid
func (f FundingSource) IsValid() bool {
	switch f {
	case FundingSupplier, FundingTradeIn, FundingSelf:
		return true
	}
	return false
}

// String returns the string representation of FundingSource
func (f FundingSource) String() string {
	return string(f)
}

// percentageScale is the fractional precision of derived ownership
// percentages. Stored snapshots use the same scale but are never
// treated as the source of truth.
const percentageScale int32 = 4

// OwnershipRecord tracks how much of a stock position the shop has
// paid for versus what is still owed to the supplier or backed by a
// trade-in. The ownership percentage is always derived from weights,
// never read back from storage.
type OwnershipRecord struct {
	shared.BranchAggregateRoot
	StockRefKind      StockRefKind    `gorm:"type:varchar(20);not null;uniqueIndex:idx_ownership_stock_ref,priority:1"`
	StockRefID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_ownership_stock_ref,priority:2"`
	FundingSource     FundingSource   `gorm:"type:varchar(20);not null"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid;index:idx_ownership_supplier"`
	TotalQuantity     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	TotalWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	OwnedQuantity     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	OwnedWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AmountPaid        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (OwnershipRecord) TableName() string {
	return "ownership_records"
}

// NewOwnershipRecord opens a record for a stock position. The owned
// portion is seeded pro-rata from the initial payment; zero total cost
// means the position is fully owned.
func NewOwnershipRecord(branchID uuid.UUID, refKind StockRefKind, refID uuid.UUID, funding FundingSource, supplierID *uuid.UUID, totalQuantity decimal.Decimal, totalWeight valueobject.Weight, totalCost valueobject.Money, initialPayment valueobject.Money) (*OwnershipRecord, error) {
	if !refKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown stock reference kind")
	}
	if refID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock reference ID cannot be empty")
	}
	if !funding.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown funding source")
	}
	if funding == FundingSupplier && (supplierID == nil || *supplierID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier-funded records require a supplier")
	}
	if totalQuantity.IsNegative() || totalWeight.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantities and weights cannot be negative")
	}
	if totalCost.IsNegative() || initialPayment.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amounts cannot be negative")
	}
	exceeds, err := initialPayment.GreaterThan(totalCost)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment and cost currencies must match")
	}
	if exceeds {
		return nil, shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING", "Initial payment exceeds total cost")
	}

	record := &OwnershipRecord{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		StockRefKind:        refKind,
		StockRefID:          refID,
		FundingSource:       funding,
		SupplierID:          supplierID,
		TotalQuantity:       totalQuantity,
		TotalWeight:         totalWeight.Grams(),
		TotalCost:           totalCost.Amount().Round(2),
		AmountPaid:          initialPayment.Amount().Round(2),
	}
	record.OutstandingAmount = record.TotalCost.Sub(record.AmountPaid)
	record.recomputeOwned()
	record.AddDomainEvent(NewRecordOpenedEvent(record))
	return record, nil
}

// NewDerivedOwnershipRecord opens a record whose owned portion is
// inherited from source positions rather than derived from the paid
// fraction. Used when finished stock is produced from raw material
// with a mixed ownership history.
func NewDerivedOwnershipRecord(branchID uuid.UUID, refKind StockRefKind, refID uuid.UUID, funding FundingSource, supplierID *uuid.UUID, totalQuantity decimal.Decimal, totalWeight, ownedWeight valueobject.Weight, totalCost valueobject.Money, amountPaid valueobject.Money) (*OwnershipRecord, error) {
	record, err := NewOwnershipRecord(branchID, refKind, refID, funding, supplierID, totalQuantity, totalWeight, totalCost, amountPaid)
	if err != nil {
		return nil, err
	}
	if ownedWeight.IsNegative() || ownedWeight.Grams().GreaterThan(record.TotalWeight) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Owned weight outside [0, total]")
	}
	record.OwnedWeight = ownedWeight.Grams()
	if !record.TotalWeight.IsZero() {
		record.OwnedQuantity = record.TotalQuantity.Mul(record.OwnedWeight.Div(record.TotalWeight)).RoundBank(3)
	}
	return record, nil
}

// paidFraction returns AmountPaid / TotalCost, or one when cost is zero
func (r *OwnershipRecord) paidFraction() decimal.Decimal {
	if r.TotalCost.IsZero() {
		return decimal.NewFromInt(1)
	}
	return r.AmountPaid.Div(r.TotalCost)
}

// recomputeOwned derives owned weight and quantity from the paid
// fraction, clamped into [0, total]
func (r *OwnershipRecord) recomputeOwned() {
	fraction := r.paidFraction()
	r.OwnedWeight = r.TotalWeight.Mul(fraction).RoundBank(3)
	r.OwnedQuantity = r.TotalQuantity.Mul(fraction).RoundBank(3)
	if r.OwnedWeight.GreaterThan(r.TotalWeight) {
		r.OwnedWeight = r.TotalWeight
	}
	if r.OwnedQuantity.GreaterThan(r.TotalQuantity) {
		r.OwnedQuantity = r.TotalQuantity
	}
}

// Percentage derives the owned fraction of the total weight,
// banker's-rounded to four digits. A zero-weight record with no
// outstanding amount counts as fully owned.
func (r *OwnershipRecord) Percentage() decimal.Decimal {
	if r.TotalWeight.IsZero() {
		if r.OutstandingAmount.IsZero() {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	return r.OwnedWeight.Div(r.TotalWeight).RoundBank(percentageScale)
}

// IsFullyOwned returns true when nothing is outstanding
func (r *OwnershipRecord) IsFullyOwned() bool {
	return r.OutstandingAmount.IsZero()
}

// ApplyPayment moves the paid amount up and re-derives the owned
// portion. A payment above the outstanding amount is rejected without
// touching the record.
func (r *OwnershipRecord) ApplyPayment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(r.OutstandingAmount) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING",
			"Payment "+amount.StringFixed(2)+" exceeds outstanding "+r.OutstandingAmount.StringFixed(2))
	}

	r.AmountPaid = r.AmountPaid.Add(amount.Amount()).Round(2)
	r.OutstandingAmount = r.TotalCost.Sub(r.AmountPaid)
	r.recomputeOwned()
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewPaymentAppliedEvent(r, amount))
	return nil
}

// ReceiveAdditional grows the position with more stock and its cost
func (r *OwnershipRecord) ReceiveAdditional(quantity decimal.Decimal, weight valueobject.Weight, cost valueobject.Money, paid valueobject.Money) error {
	if quantity.IsNegative() || weight.IsNegative() || cost.IsNegative() || paid.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Additions cannot be negative")
	}
	exceeds, err := paid.GreaterThan(cost)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", "Payment and cost currencies must match")
	}
	if exceeds {
		return shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING", "Paid portion exceeds the added cost")
	}

	r.TotalQuantity = r.TotalQuantity.Add(quantity)
	r.TotalWeight = r.TotalWeight.Add(weight.Grams())
	r.TotalCost = r.TotalCost.Add(cost.Amount()).Round(2)
	r.AmountPaid = r.AmountPaid.Add(paid.Amount()).Round(2)
	r.OutstandingAmount = r.TotalCost.Sub(r.AmountPaid)
	r.recomputeOwned()
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// ConsumeOut moves stock and its proportional cost basis out of the
// position. The paid fraction is unchanged, so any remaining debt to
// the supplier stays on this record.
func (r *OwnershipRecord) ConsumeOut(quantity decimal.Decimal, weight valueobject.Weight, cost valueobject.Money, paid valueobject.Money) error {
	if quantity.IsNegative() || weight.IsNegative() || cost.IsNegative() || paid.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Consumed portions cannot be negative")
	}
	if weight.Grams().GreaterThan(r.TotalWeight) || quantity.GreaterThan(r.TotalQuantity) {
		return shared.NewDomainError("INVALID_INPUT", "Consumed portion exceeds the position")
	}

	r.TotalQuantity = r.TotalQuantity.Sub(quantity)
	r.TotalWeight = r.TotalWeight.Sub(weight.Grams())
	r.TotalCost = r.TotalCost.Sub(cost.Amount()).Round(2)
	if r.TotalCost.IsNegative() {
		r.TotalCost = decimal.Zero
	}
	r.AmountPaid = r.AmountPaid.Sub(paid.Amount()).Round(2)
	if r.AmountPaid.IsNegative() {
		r.AmountPaid = decimal.Zero
	}
	if r.AmountPaid.GreaterThan(r.TotalCost) {
		r.AmountPaid = r.TotalCost
	}
	r.OutstandingAmount = r.TotalCost.Sub(r.AmountPaid)
	r.recomputeOwned()
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// CheckInvariants verifies the record's structural constraints
func (r *OwnershipRecord) CheckInvariants() error {
	if r.OwnedWeight.IsNegative() || r.OwnedWeight.GreaterThan(r.TotalWeight) {
		return shared.NewDomainError("INVALID_STATE", "Owned weight outside [0, total]")
	}
	if r.OutstandingAmount.IsNegative() {
		return shared.NewDomainError("INVALID_STATE", "Outstanding amount is negative")
	}
	if !r.OutstandingAmount.Equal(r.TotalCost.Sub(r.AmountPaid)) {
		return shared.NewDomainError("INVALID_STATE", "Outstanding does not equal cost minus paid")
	}
	return nil
}
