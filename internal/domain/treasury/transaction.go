package treasury

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents which way money moved
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// TransactionType represents the business reason for a treasury transaction
type TransactionType string

const (
	TransactionTypeAdjustment      TransactionType = "ADJUSTMENT"
	TransactionTypeFeedFromDrawer  TransactionType = "FEED_FROM_DRAWER"
	TransactionTypeSupplierPayment TransactionType = "SUPPLIER_PAYMENT"
	TransactionTypeTransferIn      TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut     TransactionType = "TRANSFER_OUT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeAdjustment, TransactionTypeFeedFromDrawer, TransactionTypeSupplierPayment,
		TransactionTypeTransferIn, TransactionTypeTransferOut:
		return true
	}
	return false
}

// TreasuryTransaction is an immutable record of one balance change on
// a treasury account. The amount is always positive; the direction
// carries the sign.
type TreasuryTransaction struct {
	shared.BaseEntity
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_treasury_tx_account_time,priority:1"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_treasury_tx_branch"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Direction     Direction       `gorm:"type:varchar(10);not null"`
	Type          TransactionType `gorm:"type:varchar(30);not null;index:idx_treasury_tx_type"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ReferenceType string          `gorm:"type:varchar(30)"`
	ReferenceID   string          `gorm:"type:varchar(50)"`
	ActorID       *uuid.UUID      `gorm:"type:uuid"`
	Notes         string          `gorm:"type:text"`
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_treasury_tx_account_time,priority:2"`
}

// TableName returns the table name for GORM
func (TreasuryTransaction) TableName() string {
	return "treasury_transactions"
}

// NewTreasuryTransaction creates a transaction carrying the account
// balance around the change it records
func NewTreasuryTransaction(account *TreasuryAccount, amount decimal.Decimal, direction Direction, txType TransactionType, balanceBefore decimal.Decimal) *TreasuryTransaction {
	return &TreasuryTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		AccountID:     account.ID,
		BranchID:      account.BranchID,
		Amount:        amount,
		Direction:     direction,
		Type:          txType,
		BalanceBefore: balanceBefore,
		BalanceAfter:  account.Balance,
		OccurredAt:    time.Now(),
	}
}

// WithReference attaches the source document to the transaction
func (t *TreasuryTransaction) WithReference(refType, refID string) *TreasuryTransaction {
	t.ReferenceType = refType
	t.ReferenceID = refID
	return t
}

// WithActor records who triggered the transaction
func (t *TreasuryTransaction) WithActor(actorID uuid.UUID) *TreasuryTransaction {
	t.ActorID = &actorID
	return t
}

// WithNotes attaches free-form notes
func (t *TreasuryTransaction) WithNotes(notes string) *TreasuryTransaction {
	t.Notes = notes
	return t
}

// WithOccurredAt overrides the transaction time, used when the
// physical cash movement happened earlier than its recording
func (t *TreasuryTransaction) WithOccurredAt(at time.Time) *TreasuryTransaction {
	t.OccurredAt = at
	return t
}
