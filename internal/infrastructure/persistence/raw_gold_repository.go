package persistence

import (
	"context"
	"errors"

	"github.com/aurum/backend/internal/domain/rawgold"
	"github.com/aurum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRawGoldLotRepository implements rawgold.LotRepository using GORM
type GormRawGoldLotRepository struct {
	db *gorm.DB
}

// NewGormRawGoldLotRepository creates a new GormRawGoldLotRepository
func NewGormRawGoldLotRepository(db *gorm.DB) *GormRawGoldLotRepository {
	return &GormRawGoldLotRepository{db: db}
}

// FindByID finds a lot by its ID. Returns nil when no lot exists.
func (r *GormRawGoldLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*rawgold.RawGoldLot, error) {
	var lot rawgold.RawGoldLot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

// FindByIDForBranch finds a lot by ID within a branch
func (r *GormRawGoldLotRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*rawgold.RawGoldLot, error) {
	var lot rawgold.RawGoldLot
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

// FindByPurchaseOrderItem finds the lot backing a purchase order line
func (r *GormRawGoldLotRepository) FindByPurchaseOrderItem(ctx context.Context, purchaseOrderItemID uuid.UUID) (*rawgold.RawGoldLot, error) {
	var lot rawgold.RawGoldLot
	if err := r.db.WithContext(ctx).
		Where("purchase_order_item_id = ?", purchaseOrderItemID).
		First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

// FindAllForBranch lists lots for a branch
func (r *GormRawGoldLotRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]rawgold.RawGoldLot, error) {
	var lots []rawgold.RawGoldLot
	query := r.db.WithContext(ctx).Model(&rawgold.RawGoldLot{}).Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)
	query = applyListOptions(query, filter, RawGoldLotSortFields, "created_at")

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindOpenByKarat lists open lots of a karat grade with available weight
func (r *GormRawGoldLotRepository) FindOpenByKarat(ctx context.Context, branchID uuid.UUID, karat string) ([]rawgold.RawGoldLot, error) {
	var lots []rawgold.RawGoldLot
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND karat = ? AND status = ? AND weight_available > 0",
			branchID, karat, rawgold.LotStatusOpen).
		Order("created_at ASC").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// Save creates or updates a lot without a version check
func (r *GormRawGoldLotRepository) Save(ctx context.Context, lot *rawgold.RawGoldLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormRawGoldLotRepository) SaveWithLock(ctx context.Context, lot *rawgold.RawGoldLot) error {
	result := r.db.WithContext(ctx).
		Model(lot).
		Where("id = ? AND version = ?", lot.ID, lot.Version-1).
		Updates(map[string]interface{}{
			"weight_ordered":   lot.WeightOrdered,
			"weight_received":  lot.WeightReceived,
			"weight_consumed":  lot.WeightConsumed,
			"weight_wasted":    lot.WeightWasted,
			"weight_available": lot.WeightAvailable,
			"status":           lot.Status,
			"version":          lot.Version,
			"updated_at":       lot.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForBranch counts lots for a branch
func (r *GormRawGoldLotRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&rawgold.RawGoldLot{}).Where("branch_id = ?", branchID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRawGoldLotRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "karat":
			query = query.Where("karat = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "has_available":
			if value == true {
				query = query.Where("weight_available > 0")
			}
		}
	}
	return query
}

// GormRawGoldMovementRepository implements rawgold.MovementRepository using GORM.
// The movement log is append only; there is no update path.
type GormRawGoldMovementRepository struct {
	db *gorm.DB
}

// NewGormRawGoldMovementRepository creates a new GormRawGoldMovementRepository
func NewGormRawGoldMovementRepository(db *gorm.DB) *GormRawGoldMovementRepository {
	return &GormRawGoldMovementRepository{db: db}
}

// Create appends a movement to the log
func (r *GormRawGoldMovementRepository) Create(ctx context.Context, movement *rawgold.RawGoldMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByID finds a movement by its ID
func (r *GormRawGoldMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*rawgold.RawGoldMovement, error) {
	var movement rawgold.RawGoldMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// FindByLot lists a lot's movements in chronological order
func (r *GormRawGoldMovementRepository) FindByLot(ctx context.Context, lotID uuid.UUID) ([]rawgold.RawGoldMovement, error) {
	var movements []rawgold.RawGoldMovement
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("occurred_at ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference lists movements tied to a source document
func (r *GormRawGoldMovementRepository) FindByReference(ctx context.Context, refType, refID string) ([]rawgold.RawGoldMovement, error) {
	var movements []rawgold.RawGoldMovement
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindReversalOf finds the reversal of a movement, if one exists
func (r *GormRawGoldMovementRepository) FindReversalOf(ctx context.Context, movementID uuid.UUID) (*rawgold.RawGoldMovement, error) {
	var movement rawgold.RawGoldMovement
	if err := r.db.WithContext(ctx).
		Where("reversed_movement_id = ?", movementID).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// SumDeltasForLot replays the log, returning the sum of all weight deltas for a lot
func (r *GormRawGoldMovementRepository) SumDeltasForLot(ctx context.Context, lotID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&rawgold.RawGoldMovement{}).
		Select("COALESCE(SUM(weight_delta), 0) as total").
		Where("lot_id = ?", lotID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure the repositories implement their domain interfaces
var _ rawgold.LotRepository = (*GormRawGoldLotRepository)(nil)
var _ rawgold.MovementRepository = (*GormRawGoldMovementRepository)(nil)
