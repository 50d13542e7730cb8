package purchasing

import (
	"context"

	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	treasuryapp "github.com/aurum/backend/internal/application/treasury"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to everything a
// purchase receipt touches: the raw gold ledger, the ownership
// ledger, and the supplier balance.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories spans the raw gold, ownership, and
// treasury repositories inside one transaction
type TransactionalRepositories interface {
	rawgoldapp.TransactionalRepositories
	treasuryapp.TransactionalRepositories
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	lotRepo               rawgold.LotRepository
	rawGoldMovementRepo   rawgold.MovementRepository
	ownershipRecordRepo   ownership.RecordRepository
	ownershipMovementRepo ownership.MovementRepository
	accountRepo           treasury.AccountRepository
	transactionRepo       treasury.TransactionRepository
	supplierRepo          treasury.SupplierRepository
	supplierTxRepo        treasury.SupplierTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	lotRepo rawgold.LotRepository,
	rawGoldMovementRepo rawgold.MovementRepository,
	ownershipRecordRepo ownership.RecordRepository,
	ownershipMovementRepo ownership.MovementRepository,
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	supplierRepo treasury.SupplierRepository,
	supplierTxRepo treasury.SupplierTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:               lotRepo,
		rawGoldMovementRepo:   rawGoldMovementRepo,
		ownershipRecordRepo:   ownershipRecordRepo,
		ownershipMovementRepo: ownershipMovementRepo,
		accountRepo:           accountRepo,
		transactionRepo:       transactionRepo,
		supplierRepo:          supplierRepo,
		supplierTxRepo:        supplierTxRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the lot repository.
func (s *NoOpTransactionScope) LotRepo() rawgold.LotRepository {
	return s.lotRepo
}

// MovementRepo returns the raw gold movement repository.
func (s *NoOpTransactionScope) MovementRepo() rawgold.MovementRepository {
	return s.rawGoldMovementRepo
}

// OwnershipRecordRepo returns the ownership record repository.
func (s *NoOpTransactionScope) OwnershipRecordRepo() ownership.RecordRepository {
	return s.ownershipRecordRepo
}

// OwnershipMovementRepo returns the ownership movement repository.
func (s *NoOpTransactionScope) OwnershipMovementRepo() ownership.MovementRepository {
	return s.ownershipMovementRepo
}

// AccountRepo returns the account repository.
func (s *NoOpTransactionScope) AccountRepo() treasury.AccountRepository {
	return s.accountRepo
}

// TreasuryTransactionRepo returns the treasury transaction repository.
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

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
