package manufacturing

import (
	"context"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordRepository defines the interface for manufacturing record persistence
type RecordRepository interface {
	// FindByID finds a record by its ID, materials included
	FindByID(ctx context.Context, id uuid.UUID) (*ManufacturingRecord, error)

	// FindByIDForBranch finds a record by ID within a branch
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*ManufacturingRecord, error)

	// FindByBatchNumber finds a record by its batch number within a branch
	FindByBatchNumber(ctx context.Context, branchID uuid.UUID, batchNumber string) (*ManufacturingRecord, error)

	// FindAllForBranch lists records for a branch
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ManufacturingRecord, error)

	// FindByStatus lists records in a given status for a branch
	FindByStatus(ctx context.Context, branchID uuid.UUID, status WorkflowStatus, filter shared.Filter) ([]ManufacturingRecord, error)

	// Save creates or updates a record and its materials without a version check
	Save(ctx context.Context, record *ManufacturingRecord) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, record *ManufacturingRecord) error

	// CountForBranch counts records for a branch
	CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)
}

// HistoryRepository defines the interface for the append-only workflow
// history log
type HistoryRepository interface {
	// Create appends a history entry
	Create(ctx context.Context, entry *WorkflowHistoryEntry) error

	// FindByRecord lists a record's history in chronological order
	FindByRecord(ctx context.Context, recordID uuid.UUID) ([]WorkflowHistoryEntry, error)
}
