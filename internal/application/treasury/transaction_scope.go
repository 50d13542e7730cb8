package treasury

import (
	"context"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to the treasury
// repositories. Paying a supplier touches the account, the supplier,
// both transaction logs, and the ownership ledger in one transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories spans the treasury and ownership
// repositories inside one transaction. The embedded ownership
// interface lets the ownership service settle supplier-funded records
// inside the payment's unit of work.
type TransactionalRepositories interface {
	ownershipapp.TransactionalRepositories

	// AccountRepo returns the account repository scoped to the current transaction
	AccountRepo() treasury.AccountRepository
	// TreasuryTransactionRepo returns the transaction repository scoped to the current transaction
	TreasuryTransactionRepo() treasury.TransactionRepository
	// SupplierRepo returns the supplier repository scoped to the current transaction
	SupplierRepo() treasury.SupplierRepository
	// SupplierTransactionRepo returns the supplier transaction repository scoped to the current transaction
	SupplierTransactionRepo() treasury.SupplierTransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	accountRepo           treasury.AccountRepository
	transactionRepo       treasury.TransactionRepository
	supplierRepo          treasury.SupplierRepository
	supplierTxRepo        treasury.SupplierTransactionRepository
	ownershipRecordRepo   ownership.RecordRepository
	ownershipMovementRepo ownership.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	supplierRepo treasury.SupplierRepository,
	supplierTxRepo treasury.SupplierTransactionRepository,
	ownershipRecordRepo ownership.RecordRepository,
	ownershipMovementRepo ownership.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo:           accountRepo,
		transactionRepo:       transactionRepo,
		supplierRepo:          supplierRepo,
		supplierTxRepo:        supplierTxRepo,
		ownershipRecordRepo:   ownershipRecordRepo,
		ownershipMovementRepo: ownershipMovementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the account repository.
func (s *NoOpTransactionScope) AccountRepo() treasury.AccountRepository {
	return s.accountRepo
}

// TreasuryTransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TreasuryTransactionRepo() treasury.TransactionRepository {
	return s.transactionRepo
}

// SupplierRepo returns the supplier repository.
func (s *NoOpTransactionScope) SupplierRepo() treasury.SupplierRepository {
	return s.supplierRepo
}

// SupplierTransactionRepo returns the supplier transaction repository.
func (s *NoOpTransactionScope) SupplierTransactionRepo() treasury.SupplierTransactionRepository {
	return s.supplierTxRepo
}

// OwnershipRecordRepo returns the ownership record repository.
func (s *NoOpTransactionScope) OwnershipRecordRepo() ownership.RecordRepository {
	return s.ownershipRecordRepo
}

// OwnershipMovementRepo returns the ownership movement repository.
func (s *NoOpTransactionScope) OwnershipMovementRepo() ownership.MovementRepository {
	return s.ownershipMovementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
