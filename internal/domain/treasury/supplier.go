package treasury

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier carries the outstanding balance the shop owes a supplier.
// The balance is mutated only inside the pay-supplier unit of work,
// in lockstep with the treasury account.
type Supplier struct {
	shared.BaseAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	Phone          string          `gorm:"type:varchar(30)"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a supplier with a zero outstanding balance
func NewSupplier(name string) (*Supplier, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name is required")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrentBalance:    decimal.Zero,
	}, nil
}

// AddInvoice grows the outstanding balance when goods are received
func (s *Supplier) AddInvoice(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Invoice amount must be positive")
	}
	s.CurrentBalance = s.CurrentBalance.Add(amount.Amount()).Round(2)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// ApplyPayment shrinks the outstanding balance. A payment above the
// balance is rejected with PAYMENT_EXCEEDS_OUTSTANDING and the
// supplier is left untouched.
func (s *Supplier) ApplyPayment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(s.CurrentBalance) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_OUTSTANDING",
			"Payment "+amount.StringFixed(2)+" exceeds outstanding "+s.CurrentBalance.StringFixed(2))
	}

	s.CurrentBalance = s.CurrentBalance.Sub(amount.Amount()).Round(2)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SupplierTransactionType represents the kind of supplier balance change
type SupplierTransactionType string

const (
	SupplierTxPayment    SupplierTransactionType = "PAYMENT"
	SupplierTxInvoice    SupplierTransactionType = "INVOICE"
	SupplierTxAdjustment SupplierTransactionType = "ADJUSTMENT"
)

// String returns the string representation of SupplierTransactionType
func (t SupplierTransactionType) String() string {
	return string(t)
}

// IsValid returns true if the supplier transaction type is valid
func (t SupplierTransactionType) IsValid() bool {
	switch t {
	case SupplierTxPayment, SupplierTxInvoice, SupplierTxAdjustment:
		return true
	}
	return false
}

// SupplierTransaction is an immutable record of one change to a
// supplier's outstanding balance
type SupplierTransaction struct {
	shared.BaseEntity
	SupplierID    uuid.UUID               `gorm:"type:uuid;not null;index:idx_supplier_tx_supplier_time,priority:1"`
	Type          SupplierTransactionType `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal         `gorm:"type:decimal(14,2);not null"`
	BalanceBefore decimal.Decimal         `gorm:"type:decimal(14,2);not null"`
	BalanceAfter  decimal.Decimal         `gorm:"type:decimal(14,2);not null"`
	ReferenceType string                  `gorm:"type:varchar(30)"`
	ReferenceID   string                  `gorm:"type:varchar(50)"`
	ActorID       *uuid.UUID              `gorm:"type:uuid"`
	Notes         string                  `gorm:"type:text"`
	OccurredAt    time.Time               `gorm:"type:timestamptz;not null;index:idx_supplier_tx_supplier_time,priority:2"`
}

// TableName returns the table name for GORM
func (SupplierTransaction) TableName() string {
	return "supplier_transactions"
}

// NewSupplierTransaction creates a transaction carrying the supplier
// balance around the change it records
func NewSupplierTransaction(supplier *Supplier, txType SupplierTransactionType, amount, balanceBefore decimal.Decimal) *SupplierTransaction {
	return &SupplierTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		SupplierID:    supplier.ID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  supplier.CurrentBalance,
		OccurredAt:    time.Now(),
	}
}

// WithReference attaches the source document to the transaction
func (t *SupplierTransaction) WithReference(refType, refID string) *SupplierTransaction {
	t.ReferenceType = refType
	t.ReferenceID = refID
	return t
}

// WithActor records who triggered the transaction
func (t *SupplierTransaction) WithActor(actorID uuid.UUID) *SupplierTransaction {
	t.ActorID = &actorID
	return t
}

// WithNotes attaches free-form notes
func (t *SupplierTransaction) WithNotes(notes string) *SupplierTransaction {
	t.Notes = notes
	return t
}
