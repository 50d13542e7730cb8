package ownership

import (
	"context"

	"github.com/aurum/backend/internal/domain/ownership"
)

// TransactionScope provides transactional access to ownership
// repositories. Everything executed within one scope commits or rolls
// back as a unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ownership
// repositories within a transaction
type TransactionalRepositories interface {
	// OwnershipRecordRepo returns the record repository scoped to the current transaction
	OwnershipRecordRepo() ownership.RecordRepository
	// OwnershipMovementRepo returns the movement repository scoped to the current transaction
	OwnershipMovementRepo() ownership.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	recordRepo   ownership.RecordRepository
	movementRepo ownership.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(recordRepo ownership.RecordRepository, movementRepo ownership.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		recordRepo:   recordRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OwnershipRecordRepo returns the record repository.
func (s *NoOpTransactionScope) OwnershipRecordRepo() ownership.RecordRepository {
	return s.recordRepo
}

// OwnershipMovementRepo returns the movement repository.
func (s *NoOpTransactionScope) OwnershipMovementRepo() ownership.MovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
