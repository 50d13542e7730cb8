package treasury

import (
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/aurum/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TreasuryAccount is the cash ledger of a branch. One account exists
// per branch, created lazily on first use. Balance changes only
// through Credit and Debit, each mirrored by a transaction row.
type TreasuryAccount struct {
	shared.BaseAggregateRoot
	BranchID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_treasury_account_branch"`
	Balance  decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null;default:'EGP'"`
	Deleted  bool                 `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TreasuryAccount) TableName() string {
	return "treasury_accounts"
}

// NewTreasuryAccount creates an empty account for a branch
func NewTreasuryAccount(branchID uuid.UUID) (*TreasuryAccount, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Branch ID cannot be empty")
	}
	return &TreasuryAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		Balance:           decimal.Zero,
		Currency:          valueobject.DefaultCurrency,
	}, nil
}

// Credit adds to the balance
func (a *TreasuryAccount) Credit(amount valueobject.Money) error {
	if a.Deleted {
		return shared.NewDomainError("INVALID_STATE", "Account is deleted")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Credit amount must be positive")
	}
	if amount.Currency() != a.Currency {
		return shared.NewDomainError("INVALID_INPUT", "Amount currency does not match the account")
	}

	a.Balance = a.Balance.Add(amount.Amount()).Round(2)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Debit removes from the balance. When allowNegative is false a debit
// that would push the balance below zero is rejected with
// INSUFFICIENT_TREASURY_BALANCE and the account is left untouched.
func (a *TreasuryAccount) Debit(amount valueobject.Money, allowNegative bool) error {
	if a.Deleted {
		return shared.NewDomainError("INVALID_STATE", "Account is deleted")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Debit amount must be positive")
	}
	if amount.Currency() != a.Currency {
		return shared.NewDomainError("INVALID_INPUT", "Amount currency does not match the account")
	}
	result := a.Balance.Sub(amount.Amount())
	if result.IsNegative() && !allowNegative {
		return shared.NewDomainError("INSUFFICIENT_TREASURY_BALANCE",
			"Debit "+amount.StringFixed(2)+" exceeds balance "+a.Balance.StringFixed(2))
	}

	a.Balance = result.Round(2)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
