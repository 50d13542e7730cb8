package ownership

import (
	"context"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordRepository defines the interface for ownership record persistence
type RecordRepository interface {
	// FindByID finds a record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*OwnershipRecord, error)

	// FindByIDForBranch finds a record by ID within a branch
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*OwnershipRecord, error)

	// FindByStockRef finds the record covering a stock position
	FindByStockRef(ctx context.Context, refKind StockRefKind, refID uuid.UUID) (*OwnershipRecord, error)

	// FindOutstandingBySupplier lists records with an outstanding
	// amount still owed to a supplier, oldest first
	FindOutstandingBySupplier(ctx context.Context, supplierID uuid.UUID) ([]OwnershipRecord, error)

	// FindAllForBranch lists records for a branch
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]OwnershipRecord, error)

	// Save creates or updates a record without a version check
	Save(ctx context.Context, record *OwnershipRecord) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, record *OwnershipRecord) error

	// CountForBranch counts records for a branch
	CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementRepository defines the interface for the append-only
// ownership movement log
type MovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *OwnershipMovement) error

	// FindByRecord lists a record's movements in chronological order
	FindByRecord(ctx context.Context, recordID uuid.UUID) ([]OwnershipMovement, error)
}
