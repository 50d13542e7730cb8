package treasury

import (
	"context"
	"time"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository defines the interface for treasury account persistence
type AccountRepository interface {
	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TreasuryAccount, error)

	// FindByBranch finds the account for a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID) (*TreasuryAccount, error)

	// GetOrCreate returns the account for a branch, creating it
	// if none exists. Concurrent creation resolves to one row.
	GetOrCreate(ctx context.Context, branchID uuid.UUID) (*TreasuryAccount, error)

	// Save creates or updates an account without a version check
	Save(ctx context.Context, account *TreasuryAccount) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, account *TreasuryAccount) error
}

// TransactionFilter narrows treasury transaction queries
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
	Type *TransactionType
	shared.Filter
}

// TransactionRepository defines the interface for the append-only
// treasury transaction log
type TransactionRepository interface {
	// Create appends a transaction
	Create(ctx context.Context, tx *TreasuryTransaction) error

	// FindByID finds a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TreasuryTransaction, error)

	// FindByAccount lists an account's transactions, most recent first
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) ([]TreasuryTransaction, error)

	// CountByAccount counts an account's transactions matching the filter
	CountByAccount(ctx context.Context, accountID uuid.UUID, filter TransactionFilter) (int64, error)
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindAll lists suppliers
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Save creates or updates a supplier without a version check
	Save(ctx context.Context, supplier *Supplier) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, supplier *Supplier) error
}

// SupplierTransactionRepository defines the interface for the
// append-only supplier transaction log
type SupplierTransactionRepository interface {
	// Create appends a transaction
	Create(ctx context.Context, tx *SupplierTransaction) error

	// FindBySupplier lists a supplier's transactions, most recent first
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]SupplierTransaction, error)
}
