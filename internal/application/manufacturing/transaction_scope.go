package manufacturing

import (
	"context"

	ownershipapp "github.com/aurum/backend/internal/application/ownership"
	rawgoldapp "github.com/aurum/backend/internal/application/rawgold"
	"github.com/aurum/backend/internal/domain/manufacturing"
	"github.com/aurum/backend/internal/domain/ownership"
	"github.com/aurum/backend/internal/domain/rawgold"
)

// TransactionScope provides transactional access to the repositories a
// workflow transition touches. A transition that consumes raw gold
// writes the record, its history entry, the lots, and the movement
// logs in one database transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories spans the manufacturing, raw gold, and
// ownership repositories inside one transaction. The embedded
// interfaces let the raw gold ledger and ownership service run their
// Within operations against the same unit of work.
type TransactionalRepositories interface {
	rawgoldapp.TransactionalRepositories
	ownershipapp.TransactionalRepositories

	// RecordRepo returns the record repository scoped to the current transaction
	RecordRepo() manufacturing.RecordRepository
	// HistoryRepo returns the history repository scoped to the current transaction
	HistoryRepo() manufacturing.HistoryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	recordRepo            manufacturing.RecordRepository
	historyRepo           manufacturing.HistoryRepository
	lotRepo               rawgold.LotRepository
	rawGoldMovementRepo   rawgold.MovementRepository
	ownershipRecordRepo   ownership.RecordRepository
	ownershipMovementRepo ownership.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	recordRepo manufacturing.RecordRepository,
	historyRepo manufacturing.HistoryRepository,
	lotRepo rawgold.LotRepository,
	rawGoldMovementRepo rawgold.MovementRepository,
	ownershipRecordRepo ownership.RecordRepository,
	ownershipMovementRepo ownership.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		recordRepo:            recordRepo,
		historyRepo:           historyRepo,
		lotRepo:               lotRepo,
		rawGoldMovementRepo:   rawGoldMovementRepo,
		ownershipRecordRepo:   ownershipRecordRepo,
		ownershipMovementRepo: ownershipMovementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// RecordRepo returns the record repository.
func (s *NoOpTransactionScope) RecordRepo() manufacturing.RecordRepository {
	return s.recordRepo
}

// HistoryRepo returns the history repository.
func (s *NoOpTransactionScope) HistoryRepo() manufacturing.HistoryRepository {
	return s.historyRepo
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

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
