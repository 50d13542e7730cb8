package rawgold

import (
	"context"

	"github.com/aurum/backend/internal/domain/rawgold"
)

// TransactionScope provides transactional access to raw gold repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the raw gold repositories
// within a transaction. Both repositories share the same underlying
// database transaction, so a lot update and its movement row land
// together or not at all.
type TransactionalRepositories interface {
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() rawgold.LotRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() rawgold.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	lotRepo      rawgold.LotRepository
	movementRepo rawgold.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(lotRepo rawgold.LotRepository, movementRepo rawgold.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
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

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() rawgold.MovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
