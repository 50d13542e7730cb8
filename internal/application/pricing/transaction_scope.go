package pricing

import (
	"context"

	"github.com/aurum/backend/internal/domain/pricing"
)

// TransactionScope provides transactional access to the rate repository.
// Closing the previous window and opening the next one must land together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the rate repository within
// a transaction.
type TransactionalRepositories interface {
	// RateRepo returns the rate repository scoped to the current transaction
	RateRepo() pricing.RateRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	rateRepo pricing.RateRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repository.
func NewNoOpTransactionScope(rateRepo pricing.RateRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{rateRepo: rateRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RateRepo returns the rate repository.
func (s *NoOpTransactionScope) RateRepo() pricing.RateRepository {
	return s.rateRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
