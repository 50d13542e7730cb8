package rawgold

import (
	"context"

	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotRepository defines the interface for raw gold lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RawGoldLot, error)

	// FindByIDForBranch finds a lot by ID within a branch
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*RawGoldLot, error)

	// FindByPurchaseOrderItem finds the lot backing a purchase order line
	FindByPurchaseOrderItem(ctx context.Context, purchaseOrderItemID uuid.UUID) (*RawGoldLot, error)

	// FindAllForBranch lists lots for a branch
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]RawGoldLot, error)

	// FindOpenByKarat lists open lots of a karat grade with available weight
	FindOpenByKarat(ctx context.Context, branchID uuid.UUID, karat string) ([]RawGoldLot, error)

	// Save creates or updates a lot without a version check
	Save(ctx context.Context, lot *RawGoldLot) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, lot *RawGoldLot) error

	// CountForBranch counts lots for a branch
	CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementRepository defines the interface for the append-only
// raw gold movement log. Movements are created, never updated.
type MovementRepository interface {
	// Create appends a movement to the log
	Create(ctx context.Context, movement *RawGoldMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RawGoldMovement, error)

	// FindByLot lists a lot's movements in chronological order
	FindByLot(ctx context.Context, lotID uuid.UUID) ([]RawGoldMovement, error)

	// FindByReference lists movements tied to a source document
	FindByReference(ctx context.Context, refType, refID string) ([]RawGoldMovement, error)

	// FindReversalOf finds the reversal of a movement, if one exists
	FindReversalOf(ctx context.Context, movementID uuid.UUID) (*RawGoldMovement, error)

	// SumDeltasForLot replays the log, returning the sum of all
	// weight deltas for a lot
	SumDeltasForLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error)
}
